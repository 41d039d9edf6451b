package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Bus fans task request events out to registered handlers in process.
// Services share one Bus; the task layer registers its handler during
// wiring, and registration is safe to interleave with emission.
type Bus struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

var _ EventEmitter = (*Bus)(nil)

// NewBus creates a Bus with no handlers.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger: logger.With(slog.String("component", "event_bus")),
	}
}

// RegisterHandler subscribes a handler to every subsequent event.
func (b *Bus) RegisterHandler(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// EmitEvent delivers the event to every registered handler. Events carrying
// a task type no factory exists for are rejected before dispatch. A failing
// handler does not stop delivery to the rest; the first failure is returned.
func (b *Bus) EmitEvent(ctx context.Context, event *TaskRequestEvent) error {
	if !KnownTaskType(event.Type) {
		return fmt.Errorf("%w: %q", ErrUnknownTaskType, event.Type)
	}

	b.mu.RLock()
	handlers := make([]EventHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Warn("event dropped, no handlers registered",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type))
		return nil
	}

	var firstErr error
	for _, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			b.logger.Error("event handler failed",
				slog.String("error", err.Error()),
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.Type))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
