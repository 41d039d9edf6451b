package task

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryTaskStore is an in-memory TaskStore for runner tests.
type memoryTaskStore struct {
	mu     sync.Mutex
	status map[uuid.UUID]TaskStatus
	errMsg map[uuid.UUID]string
	stored []*StoredTask
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{
		status: map[uuid.UUID]TaskStatus{},
		errMsg: map[uuid.UUID]string{},
	}
}

func (m *memoryTaskStore) SaveTask(_ context.Context, t Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[t.ID()] = t.Status()
	return nil
}

func (m *memoryTaskStore) UpdateTaskStatus(_ context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[taskID] = status
	m.errMsg[taskID] = errorMsg
	return nil
}

func (m *memoryTaskStore) ListPending(_ context.Context) ([]*StoredTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*StoredTask
	for _, s := range m.stored {
		if m.status[s.ID] == TaskStatusPending {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryTaskStore) ListProcessing(_ context.Context, _ time.Duration) ([]*StoredTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*StoredTask
	for _, s := range m.stored {
		if m.status[s.ID] == TaskStatusProcessing {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryTaskStore) WithTx(*sql.Tx) TaskStore { return m }

func (m *memoryTaskStore) statusOf(id uuid.UUID) TaskStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status[id]
}

func (m *memoryTaskStore) seed(s *StoredTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append(m.stored, s)
	m.status[s.ID] = s.Status
}

// stubFactory builds tasks that record their executions on a channel.
type stubFactory struct {
	taskType string
	executed chan uuid.UUID
	err      error
}

func (f *stubFactory) Type() string { return f.taskType }

func (f *stubFactory) New(id uuid.UUID, payload []byte) (Task, error) {
	return newRunTask(id, f.taskType, payload, func(context.Context) error {
		f.executed <- id
		return f.err
	}), nil
}

func testConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            1,
		QueueSize:              10,
		StuckTaskAge:           time.Minute,
		StuckTaskCheckInterval: time.Hour,
	}
}

func TestRunnerProcessesSubmittedTask(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	factory := &stubFactory{taskType: "stub", executed: make(chan uuid.UUID, 1)}
	registry := NewRegistry()
	registry.Register(factory)

	runner := NewTaskRunner(store, registry, testConfig(), slog.Default())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	taskID := uuid.New()
	queued, err := factory.New(taskID, []byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, runner.Submit(context.Background(), queued))

	select {
	case got := <-factory.executed:
		assert.Equal(t, taskID, got)
	case <-time.After(5 * time.Second):
		t.Fatal("task was never executed")
	}

	assert.Eventually(t, func() bool {
		return store.statusOf(taskID) == TaskStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRunnerMarksFailedTask(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	factory := &stubFactory{
		taskType: "stub",
		executed: make(chan uuid.UUID, 1),
		err:      errors.New("boom"),
	}
	registry := NewRegistry()
	registry.Register(factory)

	runner := NewTaskRunner(store, registry, testConfig(), slog.Default())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	taskID := uuid.New()
	queued, err := factory.New(taskID, []byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, runner.Submit(context.Background(), queued))

	<-factory.executed

	assert.Eventually(t, func() bool {
		return store.statusOf(taskID) == TaskStatusFailed
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRunnerRecoversStoredTasks(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	factory := &stubFactory{taskType: "stub", executed: make(chan uuid.UUID, 2)}
	registry := NewRegistry()
	registry.Register(factory)

	pendingID, interruptedID := uuid.New(), uuid.New()
	store.seed(&StoredTask{ID: pendingID, Type: "stub", Payload: []byte(`{}`), Status: TaskStatusPending})
	store.seed(&StoredTask{ID: interruptedID, Type: "stub", Payload: []byte(`{}`), Status: TaskStatusProcessing})

	runner := NewTaskRunner(store, registry, testConfig(), slog.Default())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	executed := map[uuid.UUID]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-factory.executed:
			executed[id] = true
		case <-time.After(5 * time.Second):
			t.Fatal("recovered tasks were not executed")
		}
	}

	assert.True(t, executed[pendingID])
	assert.True(t, executed[interruptedID])
}

func TestRunnerFailsUnknownStoredTaskType(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	registry := NewRegistry()

	orphanID := uuid.New()
	store.seed(&StoredTask{ID: orphanID, Type: "long_gone", Payload: []byte(`{}`), Status: TaskStatusPending})

	runner := NewTaskRunner(store, registry, testConfig(), slog.Default())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	assert.Eventually(t, func() bool {
		return store.statusOf(orphanID) == TaskStatusFailed
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRegistryRejectsDuplicateFactory(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&stubFactory{taskType: "stub"})

	assert.Panics(t, func() {
		registry.Register(&stubFactory{taskType: "stub"})
	})
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	_, err := registry.New("nope", uuid.New(), nil)
	assert.Error(t, err)
}
