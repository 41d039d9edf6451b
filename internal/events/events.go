package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownTaskType is returned when an event names a task type this
// service does not dispatch.
var ErrUnknownTaskType = errors.New("unknown task type")

// Task type identifiers carried in TaskRequestEvent.Type. The task package
// registers a factory per type.
const (
	// TaskTypeExamGeneration requests background content generation for a
	// pending exam.
	TaskTypeExamGeneration = "exam_generation"

	// TaskTypeExamGrading requests background grading of a submitted exam.
	TaskTypeExamGrading = "exam_grading"

	// TaskTypeWordImport requests background translation and import of a
	// word list into a collection.
	TaskTypeWordImport = "word_import"
)

// KnownTaskType reports whether taskType is one of the task types this
// service dispatches.
func KnownTaskType(taskType string) bool {
	switch taskType {
	case TaskTypeExamGeneration, TaskTypeExamGrading, TaskTypeWordImport:
		return true
	}
	return false
}

// TaskRequestEvent is a request to create a background task. It carries
// everything task creation needs without a dependency on the task package.
type TaskRequestEvent struct {
	// ID uniquely identifies this event.
	ID uuid.UUID `json:"id"`

	// Type names the task type to create.
	Type string `json:"type"`

	// Payload holds the task-specific data serialized as JSON.
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent creates a TaskRequestEvent of the given type with the
// payload serialized to JSON.
func NewTaskRequestEvent(eventType string, payload interface{}) (*TaskRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler processes emitted events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter publishes events to registered handlers. Services hold an
// EventEmitter and never see who consumes their events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
