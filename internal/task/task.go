// Package task provides the background task infrastructure: a persisted
// task queue, a worker pool that drains it, and a registry that turns
// stored task rows back into executable work after a restart.
package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task represents a unit of background work to be processed.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type returns the task type identifier.
	Type() string

	// Payload returns the task data as a byte slice.
	Payload() []byte

	// Status returns the current task status.
	Status() TaskStatus

	// Execute runs the task logic.
	Execute(ctx context.Context) error
}

// StoredTask is a task row as persisted, without its execution logic. A
// Factory rehydrates it into an executable Task.
type StoredTask struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       TaskStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TaskStore defines the interface for persisting tasks.
type TaskStore interface {
	// SaveTask persists a task to the database.
	SaveTask(ctx context.Context, t Task) error

	// UpdateTaskStatus updates the status of a task.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// ListPending retrieves all tasks with pending status, oldest first.
	ListPending(ctx context.Context) ([]*StoredTask, error)

	// ListProcessing retrieves tasks with processing status. If olderThan
	// is non-zero, only tasks last updated before that age are returned.
	ListProcessing(ctx context.Context, olderThan time.Duration) ([]*StoredTask, error)

	// WithTx returns a TaskStore that runs on the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}

// Factory builds an executable task of one type from its persisted form.
type Factory interface {
	// Type returns the task type this factory builds.
	Type() string

	// New creates an executable task with the given identity and payload.
	New(id uuid.UUID, payload []byte) (Task, error)
}

// Registry maps task types to their factories so stored tasks can be
// turned back into executable work.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty task factory registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Registering two factories for the same type is
// a wiring bug and panics.
func (r *Registry) Register(factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[factory.Type()]; exists {
		panic(fmt.Sprintf("task factory already registered for type %q", factory.Type()))
	}
	r.factories[factory.Type()] = factory
}

// New builds an executable task of the given type.
func (r *Registry) New(taskType string, id uuid.UUID, payload []byte) (Task, error) {
	r.mu.RLock()
	factory, ok := r.factories[taskType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no task factory registered for type %q", taskType)
	}
	return factory.New(id, payload)
}

// runTask is the standard Task implementation: identity and payload plus
// a closure holding the actual work.
type runTask struct {
	id       uuid.UUID
	taskType string
	payload  []byte
	status   TaskStatus
	run      func(ctx context.Context) error
}

// newRunTask wraps a work closure as a Task.
func newRunTask(id uuid.UUID, taskType string, payload []byte, run func(ctx context.Context) error) *runTask {
	return &runTask{
		id:       id,
		taskType: taskType,
		payload:  payload,
		status:   TaskStatusPending,
		run:      run,
	}
}

func (t *runTask) ID() uuid.UUID      { return t.id }
func (t *runTask) Type() string       { return t.taskType }
func (t *runTask) Payload() []byte    { return t.payload }
func (t *runTask) Status() TaskStatus { return t.status }

func (t *runTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	if err := t.run(ctx); err != nil {
		t.status = TaskStatusFailed
		return err
	}
	t.status = TaskStatusCompleted
	return nil
}

// decodePayload unmarshals a task payload, wrapping failures with the
// task type for context.
func decodePayload(taskType string, data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", taskType, err)
	}
	return nil
}
