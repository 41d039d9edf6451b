package task

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordpath/wordpath-api/internal/events"
)

type captureSubmitter struct {
	submitted []Task
	err       error
}

func (c *captureSubmitter) Submit(_ context.Context, t Task) error {
	if c.err != nil {
		return c.err
	}
	c.submitted = append(c.submitted, t)
	return nil
}

func TestEventHandlerSubmitsTaskForKnownType(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&stubFactory{taskType: "stub", executed: make(chan uuid.UUID, 1)})
	submitter := &captureSubmitter{}
	handler := NewEventHandler(registry, submitter, slog.Default())

	event, err := events.NewTaskRequestEvent("stub", map[string]string{"k": "v"})
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))
	require.Len(t, submitter.submitted, 1)
	assert.Equal(t, event.ID, submitter.submitted[0].ID())
	assert.Equal(t, "stub", submitter.submitted[0].Type())
}

func TestEventHandlerRejectsUnknownType(t *testing.T) {
	t.Parallel()

	handler := NewEventHandler(NewRegistry(), &captureSubmitter{}, slog.Default())

	event, err := events.NewTaskRequestEvent("mystery", nil)
	require.NoError(t, err)

	assert.Error(t, handler.HandleEvent(context.Background(), event))
}

func TestEventHandlerPropagatesSubmitFailure(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&stubFactory{taskType: "stub", executed: make(chan uuid.UUID, 1)})
	submitter := &captureSubmitter{err: errors.New("queue full")}
	handler := NewEventHandler(registry, submitter, slog.Default())

	event, err := events.NewTaskRequestEvent("stub", nil)
	require.NoError(t, err)

	assert.Error(t, handler.HandleEvent(context.Background(), event))
}
