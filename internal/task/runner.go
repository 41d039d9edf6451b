package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull indicates the in-memory task queue has no room left.
var ErrQueueFull = errors.New("task queue is full")

// defaultStuckTaskCheckInterval is how often the stuck-task monitor runs
// when the config leaves the interval unset.
const defaultStuckTaskCheckInterval = 5 * time.Minute

// TaskRunnerConfig holds configuration for the task runner.
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue.
	QueueSize int

	// StuckTaskAge defines how long a task can sit in processing state
	// before it is considered stuck and reset.
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks.
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults.
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: defaultStuckTaskCheckInterval,
	}
}

// TaskRunner manages background task processing: it persists every
// submitted task, drains the queue with a worker pool, recovers
// unfinished tasks on startup and resets tasks stuck in processing.
type TaskRunner struct {
	store      TaskStore
	registry   *Registry
	taskChan   chan Task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
}

// NewTaskRunner creates a new TaskRunner. Panics if store, registry or
// logger is nil.
func NewTaskRunner(store TaskStore, registry *Registry, config TaskRunnerConfig, log *slog.Logger) *TaskRunner {
	if store == nil {
		panic("store cannot be nil")
	}
	if registry == nil {
		panic("registry cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}

	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.StuckTaskCheckInterval <= 0 {
		config.StuckTaskCheckInterval = defaultStuckTaskCheckInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:      store,
		registry:   registry,
		taskChan:   make(chan Task, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     log.With(slog.String("component", "task_runner")),
	}
}

// Submit persists a task and adds it to the queue.
func (r *TaskRunner) Submit(ctx context.Context, t Task) error {
	if err := r.store.SaveTask(ctx, t); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	select {
	case r.taskChan <- t:
		return nil
	default:
		// The task stays pending in the database and will be picked up
		// by the next recovery pass.
		return ErrQueueFull
	}
}

// Start recovers unfinished tasks and begins processing.
func (r *TaskRunner) Start() error {
	if err := r.recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop gracefully shuts down the task runner, waiting for in-flight
// tasks to finish.
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.taskChan)
}

// recover requeues tasks left unfinished by a previous run. Pending
// tasks are requeued as-is; processing tasks were interrupted mid-flight
// and are reset to pending first.
func (r *TaskRunner) recover() error {
	ctx := context.Background()

	pending, err := r.store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending tasks: %w", err)
	}

	processing, err := r.store.ListProcessing(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		slog.Int("pending_count", len(pending)),
		slog.Int("processing_count", len(processing)))

	for _, stored := range pending {
		r.requeueStored(ctx, stored)
	}

	for _, stored := range processing {
		if err := r.store.UpdateTaskStatus(ctx, stored.ID, TaskStatusPending, "reset after restart"); err != nil {
			r.logger.Error("failed to reset interrupted task",
				slog.String("task_id", stored.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		r.requeueStored(ctx, stored)
	}

	return nil
}

// requeueStored rehydrates a stored task through the registry and puts
// it back on the queue. Tasks of unknown type are marked failed so they
// do not get recovered forever.
func (r *TaskRunner) requeueStored(ctx context.Context, stored *StoredTask) {
	log := r.logger.With(
		slog.String("task_id", stored.ID.String()),
		slog.String("task_type", stored.Type))

	t, err := r.registry.New(stored.Type, stored.ID, stored.Payload)
	if err != nil {
		log.Error("failed to rehydrate stored task", slog.String("error", err.Error()))
		if updateErr := r.store.UpdateTaskStatus(ctx, stored.ID, TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to mark unrecoverable task failed",
				slog.String("error", updateErr.Error()))
		}
		return
	}

	select {
	case r.taskChan <- t:
	default:
		// Still pending in the database, the next recovery gets it.
		log.Error("failed to requeue task, queue is full")
	}
}

// worker drains the task queue until shutdown.
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", slog.Int("worker_id", id))

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", slog.Int("worker_id", id))
			return

		case t, ok := <-r.taskChan:
			if !ok {
				return
			}
			r.processTask(t, id)
		}
	}
}

// processTask handles execution of a single task, bracketing it with
// status updates.
func (r *TaskRunner) processTask(t Task, workerID int) {
	ctx := context.Background()
	log := r.logger.With(
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()),
		slog.Int("worker_id", workerID))

	if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to update task status to processing",
			slog.String("error", err.Error()))
		return
	}

	log.Info("processing task")

	if err := t.Execute(ctx); err != nil {
		log.Error("task execution failed", slog.String("error", err.Error()))
		if updateErr := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to update task status to failed",
				slog.String("error", updateErr.Error()))
		}
		return
	}

	log.Info("task completed")
	if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusCompleted, ""); err != nil {
		log.Error("failed to update task status to completed",
			slog.String("error", err.Error()))
	}
}

// stuckTaskMonitor periodically resets tasks that have sat in processing
// state longer than the configured age. A worker crash between status
// updates would otherwise strand them forever.
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()

			stuck, err := r.store.ListProcessing(ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks",
					slog.String("error", err.Error()))
				continue
			}
			if len(stuck) == 0 {
				continue
			}

			r.logger.Info("found stuck tasks", slog.Int("count", len(stuck)))

			for _, stored := range stuck {
				if err := r.store.UpdateTaskStatus(ctx, stored.ID, TaskStatusPending,
					"reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck task",
						slog.String("task_id", stored.ID.String()),
						slog.String("error", err.Error()))
					continue
				}
				r.requeueStored(ctx, stored)
			}
		}
	}
}
