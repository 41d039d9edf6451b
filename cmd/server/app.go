package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wordpath/wordpath-api/internal/api"
	"github.com/wordpath/wordpath-api/internal/api/middleware"
	"github.com/wordpath/wordpath-api/internal/auth"
	"github.com/wordpath/wordpath-api/internal/config"
	"github.com/wordpath/wordpath-api/internal/events"
	"github.com/wordpath/wordpath-api/internal/exam"
	"github.com/wordpath/wordpath-api/internal/notify"
	llmplatform "github.com/wordpath/wordpath-api/internal/platform/llm"
	"github.com/wordpath/wordpath-api/internal/platform/postgres"
	"github.com/wordpath/wordpath-api/internal/study"
	"github.com/wordpath/wordpath-api/internal/task"
	"github.com/wordpath/wordpath-api/internal/wordimport"
)

// shutdownTimeout bounds how long a graceful shutdown may take.
const shutdownTimeout = 15 * time.Second

// application holds the assembled service: database, task runner and
// HTTP server.
type application struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	runner *task.TaskRunner
	server *http.Server
}

// newApplication wires every layer together: stores over one database
// pool, services over the stores, task factories over the services, and
// the HTTP router over everything.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := applyMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Stores.
	userStore := postgres.NewPostgresUserStore(db, log)
	collectionStore := postgres.NewPostgresCollectionStore(db, log)
	wordStore := postgres.NewPostgresWordStore(db, log)
	itemStore := postgres.NewPostgresItemStore(db, log)
	examStore := postgres.NewPostgresExamStore(db, log)
	messageStore := postgres.NewPostgresMessageStore(db, log)
	taskStore := postgres.NewPostgresTaskStore(db)

	// Platform services.
	llmService, err := llmplatform.New(ctx, log, cfg.LLM)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to build language model client: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	notifier := notify.NewInboxNotifier(messageStore, log)
	emitter := events.NewBus(log)

	// Domain services.
	authService := auth.NewService(userStore, jwtService, auth.NewBcryptHasher(cfg.Auth.BcryptCost), log)
	studyService := study.NewService(collectionStore, itemStore, log)
	examService := exam.NewService(
		examStore, itemStore, collectionStore,
		llmService, llmService, notifier, emitter, log)
	importService := wordimport.NewService(
		db, wordStore, itemStore, collectionStore,
		llmService, notifier, emitter, cfg.LLM.BatchSize, log)

	// Background task runner. Services emit task request events; the
	// event handler persists them as tasks and the runner executes them.
	registry := task.NewRegistry()
	registry.Register(task.NewExamGenerationFactory(examService, log))
	registry.Register(task.NewExamGradingFactory(examService, log))
	registry.Register(task.NewWordImportFactory(importService, log))

	runnerCfg := task.DefaultTaskRunnerConfig()
	if cfg.Task.WorkerCount > 0 {
		runnerCfg.WorkerCount = cfg.Task.WorkerCount
	}
	if cfg.Task.QueueSize > 0 {
		runnerCfg.QueueSize = cfg.Task.QueueSize
	}
	if cfg.Task.StuckTaskAge > 0 {
		runnerCfg.StuckTaskAge = time.Duration(cfg.Task.StuckTaskAge) * time.Minute
	}
	runner := task.NewTaskRunner(taskStore, registry, runnerCfg, log)
	emitter.RegisterHandler(task.NewEventHandler(registry, runner, log))

	router := api.NewRouter(api.RouterDeps{
		Auth:        api.NewAuthHandler(authService),
		Collections: api.NewCollectionHandler(importService),
		Study:       api.NewStudyHandler(studyService),
		Exams:       api.NewExamHandler(examService),
		Messages:    api.NewMessageHandler(messageStore),
		AuthMW:      middleware.NewAuthMiddleware(jwtService),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &application{
		cfg:    cfg,
		logger: log,
		db:     db,
		runner: runner,
		server: server,
	}, nil
}

// Run starts the task runner and HTTP server, then blocks until the
// context is cancelled or the server fails.
func (app *application) Run(ctx context.Context) error {
	if err := app.runner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", slog.String("addr", app.server.Addr))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", slog.String("error", err.Error()))
	}

	app.runner.Stop()
	return nil
}

// Close releases the application's resources.
func (app *application) Close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}
}
