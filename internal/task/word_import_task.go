package task

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/events"
	"github.com/wordpath/wordpath-api/internal/wordimport"
)

// WordImportRunner is the slice of the word import service that import
// tasks need.
type WordImportRunner interface {
	RunImport(ctx context.Context, payload wordimport.ImportPayload) error
}

// WordImportFactory builds word import tasks.
type WordImportFactory struct {
	svc    WordImportRunner
	logger *slog.Logger
}

// NewWordImportFactory creates a factory for word import tasks. Panics if
// svc or logger is nil.
func NewWordImportFactory(svc WordImportRunner, log *slog.Logger) *WordImportFactory {
	if svc == nil {
		panic("svc cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &WordImportFactory{
		svc:    svc,
		logger: log.With(slog.String("task_type", events.TaskTypeWordImport)),
	}
}

// Type returns the task type this factory builds.
func (f *WordImportFactory) Type() string {
	return events.TaskTypeWordImport
}

// New creates an executable word import task from a serialized payload.
func (f *WordImportFactory) New(id uuid.UUID, payload []byte) (Task, error) {
	var p wordimport.ImportPayload
	if err := decodePayload(f.Type(), payload, &p); err != nil {
		return nil, err
	}

	return newRunTask(id, f.Type(), payload, func(ctx context.Context) error {
		return f.svc.RunImport(ctx, p)
	}), nil
}

var _ Factory = (*WordImportFactory)(nil)
