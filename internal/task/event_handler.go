package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wordpath/wordpath-api/internal/events"
)

// Submitter accepts tasks for background execution.
type Submitter interface {
	Submit(ctx context.Context, t Task) error
}

// EventHandler turns task request events into persisted, queued tasks.
// It is the bridge between services, which only emit events, and the
// task runner.
type EventHandler struct {
	registry *Registry
	runner   Submitter
	logger   *slog.Logger
}

// NewEventHandler creates an event handler over the given registry and
// runner. Panics if any dependency is nil.
func NewEventHandler(registry *Registry, runner Submitter, log *slog.Logger) *EventHandler {
	if registry == nil {
		panic("registry cannot be nil")
	}
	if runner == nil {
		panic("runner cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &EventHandler{
		registry: registry,
		runner:   runner,
		logger:   log.With(slog.String("component", "task_event_handler")),
	}
}

// HandleEvent builds the task named by the event and submits it. The
// event ID becomes the task ID so a request can be traced end to end.
func (h *EventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	log := h.logger.With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type))

	t, err := h.registry.New(event.Type, event.ID, event.Payload)
	if err != nil {
		log.Error("failed to create task from event", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create task from event: %w", err)
	}

	if err := h.runner.Submit(ctx, t); err != nil {
		log.Error("failed to submit task", slog.String("error", err.Error()))
		return fmt.Errorf("failed to submit task: %w", err)
	}

	log.Info("task submitted", slog.String("task_id", t.ID().String()))
	return nil
}

var _ events.EventHandler = (*EventHandler)(nil)
