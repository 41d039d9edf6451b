package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *Bus {
	return NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBusRejectsUnknownTaskType(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	handler := &MockEventHandler{}
	bus.RegisterHandler(handler)

	event, err := NewTaskRequestEvent("reindex", nil)
	require.NoError(t, err)

	err = bus.EmitEvent(context.Background(), event)
	assert.ErrorIs(t, err, ErrUnknownTaskType)
	assert.Zero(t, handler.HandledCount, "a rejected event must not reach handlers")
}

func TestBusWithNoHandlersDropsEvent(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	event, err := NewTaskRequestEvent(TaskTypeWordImport, map[string]string{"k": "v"})
	require.NoError(t, err)

	assert.NoError(t, bus.EmitEvent(context.Background(), event))
}

func TestBusDeliversToAllHandlers(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	first := &MockEventHandler{}
	second := &MockEventHandler{}
	bus.RegisterHandler(first)
	bus.RegisterHandler(second)

	event, err := NewTaskRequestEvent(TaskTypeExamGeneration, map[string]string{"k": "v"})
	require.NoError(t, err)
	require.NoError(t, bus.EmitEvent(context.Background(), event))

	assert.Equal(t, 1, first.HandledCount)
	assert.Equal(t, 1, second.HandledCount)
	assert.Equal(t, event, first.LastEvent)
	assert.Equal(t, event, second.LastEvent)
}

func TestBusContinuesPastFailingHandler(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	failing := &MockEventHandler{HandlerError: errors.New("handler error")}
	healthy := &MockEventHandler{}
	bus.RegisterHandler(failing)
	bus.RegisterHandler(healthy)

	event, err := NewTaskRequestEvent(TaskTypeExamGrading, nil)
	require.NoError(t, err)

	err = bus.EmitEvent(context.Background(), event)
	assert.EqualError(t, err, "handler error")
	assert.Equal(t, 1, healthy.HandledCount, "later handlers still receive the event")
}
