package task

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/events"
	"github.com/wordpath/wordpath-api/internal/exam"
)

// ExamGradingRunner is the slice of the exam service that grading tasks
// need.
type ExamGradingRunner interface {
	RunGrading(ctx context.Context, payload exam.GradingPayload) error
}

// ExamGradingFactory builds exam grading tasks.
type ExamGradingFactory struct {
	svc    ExamGradingRunner
	logger *slog.Logger
}

// NewExamGradingFactory creates a factory for exam grading tasks. Panics
// if svc or logger is nil.
func NewExamGradingFactory(svc ExamGradingRunner, log *slog.Logger) *ExamGradingFactory {
	if svc == nil {
		panic("svc cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &ExamGradingFactory{
		svc:    svc,
		logger: log.With(slog.String("task_type", events.TaskTypeExamGrading)),
	}
}

// Type returns the task type this factory builds.
func (f *ExamGradingFactory) Type() string {
	return events.TaskTypeExamGrading
}

// New creates an executable exam grading task from a serialized payload.
func (f *ExamGradingFactory) New(id uuid.UUID, payload []byte) (Task, error) {
	var p exam.GradingPayload
	if err := decodePayload(f.Type(), payload, &p); err != nil {
		return nil, err
	}

	return newRunTask(id, f.Type(), payload, func(ctx context.Context) error {
		return f.svc.RunGrading(ctx, p)
	}), nil
}

var _ Factory = (*ExamGradingFactory)(nil)
