package task

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/events"
	"github.com/wordpath/wordpath-api/internal/exam"
)

// ExamGenerationRunner is the slice of the exam service that generation
// tasks need.
type ExamGenerationRunner interface {
	RunGeneration(ctx context.Context, payload exam.GenerationPayload) error
}

// ExamGenerationFactory builds exam generation tasks.
type ExamGenerationFactory struct {
	svc    ExamGenerationRunner
	logger *slog.Logger
}

// NewExamGenerationFactory creates a factory for exam generation tasks.
// Panics if svc or logger is nil.
func NewExamGenerationFactory(svc ExamGenerationRunner, log *slog.Logger) *ExamGenerationFactory {
	if svc == nil {
		panic("svc cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &ExamGenerationFactory{
		svc:    svc,
		logger: log.With(slog.String("task_type", events.TaskTypeExamGeneration)),
	}
}

// Type returns the task type this factory builds.
func (f *ExamGenerationFactory) Type() string {
	return events.TaskTypeExamGeneration
}

// New creates an executable exam generation task from a serialized payload.
func (f *ExamGenerationFactory) New(id uuid.UUID, payload []byte) (Task, error) {
	var p exam.GenerationPayload
	if err := decodePayload(f.Type(), payload, &p); err != nil {
		return nil, err
	}

	return newRunTask(id, f.Type(), payload, func(ctx context.Context) error {
		return f.svc.RunGeneration(ctx, p)
	}), nil
}

var _ Factory = (*ExamGenerationFactory)(nil)
