package service

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/extraction"
	"github.com/taskwell/taskwell-api/internal/store"
	"github.com/taskwell/taskwell-api/internal/task"
)

// MockTaskStore is a mock implementation of store.TaskStore
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) Create(ctx context.Context, t *domain.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*domain.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskStore) Update(ctx context.Context, t *domain.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskStore) ListWithWorkbench(ctx context.Context, status *domain.EnrichmentStatus) ([]*store.TaskWithWorkbench, error) {
	args := m.Called(ctx, status)
	if pairs, ok := args.Get(0).([]*store.TaskWithWorkbench); ok {
		return pairs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	return m
}

// MockWorkbenchStore is a mock implementation of store.WorkbenchStore
type MockWorkbenchStore struct {
	mock.Mock
}

func (m *MockWorkbenchStore) Create(ctx context.Context, entry *domain.WorkbenchEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockWorkbenchStore) GetByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.WorkbenchEntry, error) {
	args := m.Called(ctx, taskID)
	if entry, ok := args.Get(0).(*domain.WorkbenchEntry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWorkbenchStore) Update(ctx context.Context, entry *domain.WorkbenchEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockWorkbenchStore) WithTx(_ *sql.Tx) store.WorkbenchStore {
	return m
}

// MockTodoStore is a mock implementation of store.TodoStore
type MockTodoStore struct {
	mock.Mock
}

func (m *MockTodoStore) Create(ctx context.Context, todo *domain.Todo) error {
	args := m.Called(ctx, todo)
	return args.Error(0)
}

func (m *MockTodoStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Todo, error) {
	args := m.Called(ctx, id)
	if todo, ok := args.Get(0).(*domain.Todo); ok {
		return todo, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTodoStore) GetByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.Todo, error) {
	args := m.Called(ctx, taskID)
	if todo, ok := args.Get(0).(*domain.Todo); ok {
		return todo, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTodoStore) Update(ctx context.Context, todo *domain.Todo) error {
	args := m.Called(ctx, todo)
	return args.Error(0)
}

func (m *MockTodoStore) List(ctx context.Context, status *domain.TodoStatus) ([]*domain.Todo, error) {
	args := m.Called(ctx, status)
	if todos, ok := args.Get(0).([]*domain.Todo); ok {
		return todos, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTodoStore) WithTx(_ *sql.Tx) store.TodoStore {
	return m
}

// MockTaskRunner is a mock implementation of the TaskRunner interface
type MockTaskRunner struct {
	mock.Mock
}

func (m *MockTaskRunner) Submit(ctx context.Context, t task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// MockEnrichmentTaskFactory is a mock implementation of the
// EnrichmentTaskFactory interface
type MockEnrichmentTaskFactory struct {
	mock.Mock
}

func (m *MockEnrichmentTaskFactory) CreateTask(taskID uuid.UUID) (task.Task, error) {
	args := m.Called(taskID)
	if t, ok := args.Get(0).(task.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type serviceFixture struct {
	taskStore      *MockTaskStore
	workbenchStore *MockWorkbenchStore
	todoStore      *MockTodoStore
	runner         *MockTaskRunner
	factory        *MockEnrichmentTaskFactory
	service        *taskServiceImpl
}

// newServiceFixture builds a service over mock stores. The *sql.DB is a
// placeholder that is never dereferenced: transactional paths need a real
// database and are exercised elsewhere.
func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		taskStore:      new(MockTaskStore),
		workbenchStore: new(MockWorkbenchStore),
		todoStore:      new(MockTodoStore),
		runner:         new(MockTaskRunner),
		factory:        new(MockEnrichmentTaskFactory),
	}

	svc, err := NewTaskService(new(sql.DB), f.taskStore, f.workbenchStore, f.todoStore, f.runner, slog.Default())
	require.NoError(t, err)
	svc.SetTaskFactory(f.factory)
	f.service = svc

	return f
}

func TestNewTaskService(t *testing.T) {
	t.Parallel()

	db := new(sql.DB)
	taskStore := new(MockTaskStore)
	workbenchStore := new(MockWorkbenchStore)
	todoStore := new(MockTodoStore)
	runner := new(MockTaskRunner)

	tests := []struct {
		name  string
		build func() (*taskServiceImpl, error)
	}{
		{"nil db", func() (*taskServiceImpl, error) {
			return NewTaskService(nil, taskStore, workbenchStore, todoStore, runner, slog.Default())
		}},
		{"nil task store", func() (*taskServiceImpl, error) {
			return NewTaskService(db, nil, workbenchStore, todoStore, runner, slog.Default())
		}},
		{"nil workbench store", func() (*taskServiceImpl, error) {
			return NewTaskService(db, taskStore, nil, todoStore, runner, slog.Default())
		}},
		{"nil todo store", func() (*taskServiceImpl, error) {
			return NewTaskService(db, taskStore, workbenchStore, nil, runner, slog.Default())
		}},
		{"nil runner", func() (*taskServiceImpl, error) {
			return NewTaskService(db, taskStore, workbenchStore, todoStore, nil, slog.Default())
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, err := tc.build()
			assert.Nil(t, svc)
			var svcErr *TaskServiceError
			assert.ErrorAs(t, err, &svcErr)
		})
	}

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()

		svc, err := NewTaskService(db, taskStore, workbenchStore, todoStore, runner, nil)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	t.Run("returns the stored task", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		captured, err := domain.NewTask("call mom urgent")
		require.NoError(t, err)

		f.taskStore.On("GetByID", mock.Anything, captured.ID).Return(captured, nil)

		got, err := f.service.GetTask(context.Background(), captured.ID)
		require.NoError(t, err)
		assert.Equal(t, captured, got)
	})

	t.Run("maps store not-found to the service sentinel", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		taskID := uuid.New()
		f.taskStore.On("GetByID", mock.Anything, taskID).Return(nil, store.ErrTaskNotFound)

		got, err := f.service.GetTask(context.Background(), taskID)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestGetWorkbenchEntry(t *testing.T) {
	t.Parallel()

	t.Run("returns the entry", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		entry, err := domain.NewWorkbenchEntry(uuid.New())
		require.NoError(t, err)

		f.workbenchStore.On("GetByTaskID", mock.Anything, entry.TaskID).Return(entry, nil)

		got, err := f.service.GetWorkbenchEntry(context.Background(), entry.TaskID)
		require.NoError(t, err)
		assert.Equal(t, entry, got)
	})

	t.Run("maps store not-found", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		taskID := uuid.New()
		f.workbenchStore.On("GetByTaskID", mock.Anything, taskID).
			Return(nil, store.ErrWorkbenchNotFound)

		_, err := f.service.GetWorkbenchEntry(context.Background(), taskID)
		assert.ErrorIs(t, err, ErrWorkbenchNotFound)
	})
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	t.Run("returns joined pairs from the store", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		first, err := domain.NewTask("first")
		require.NoError(t, err)
		firstEntry, err := domain.NewWorkbenchEntry(first.ID)
		require.NoError(t, err)
		second, err := domain.NewTask("second")
		require.NoError(t, err)
		secondEntry, err := domain.NewWorkbenchEntry(second.ID)
		require.NoError(t, err)

		pairs := []*store.TaskWithWorkbench{
			{Task: second, Entry: secondEntry},
			{Task: first, Entry: firstEntry},
		}
		f.taskStore.On("ListWithWorkbench", mock.Anything, (*domain.EnrichmentStatus)(nil)).
			Return(pairs, nil)

		got, err := f.service.ListTasks(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, second.ID, got[0].Task.ID)
		assert.Equal(t, second.ID, got[0].Entry.TaskID)
	})

	t.Run("passes the status filter through", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		captured, err := domain.NewTask("failed capture")
		require.NoError(t, err)
		entry, err := domain.NewWorkbenchEntry(captured.ID)
		require.NoError(t, err)

		status := domain.EnrichmentStatusFailed
		f.taskStore.On("ListWithWorkbench", mock.Anything, &status).
			Return([]*store.TaskWithWorkbench{{Task: captured, Entry: entry}}, nil)

		got, err := f.service.ListTasks(context.Background(), &status)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, captured.ID, got[0].Task.ID)
		f.taskStore.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("wraps store failures", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		f.taskStore.On("ListWithWorkbench", mock.Anything, (*domain.EnrichmentStatus)(nil)).
			Return(nil, assert.AnError)

		_, err := f.service.ListTasks(context.Background(), nil)
		var svcErr *TaskServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "list_tasks", svcErr.Operation)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	t.Run("deletes through the store", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		taskID := uuid.New()
		f.taskStore.On("Delete", mock.Anything, taskID).Return(nil)

		require.NoError(t, f.service.DeleteTask(context.Background(), taskID))
		f.taskStore.AssertExpectations(t)
	})

	t.Run("maps store not-found", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		taskID := uuid.New()
		f.taskStore.On("Delete", mock.Anything, taskID).Return(store.ErrTaskNotFound)

		err := f.service.DeleteTask(context.Background(), taskID)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestListTodos(t *testing.T) {
	t.Parallel()

	t.Run("passes the status filter through", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		status := domain.TodoStatusOpen
		todo, err := domain.NewTodo(uuid.New(), nil)
		require.NoError(t, err)

		f.todoStore.On("List", mock.Anything, &status).Return([]*domain.Todo{todo}, nil)

		got, err := f.service.ListTodos(context.Background(), &status)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		f.todoStore.AssertExpectations(t)
	})

	t.Run("nil filter lists everything", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		f.todoStore.On("List", mock.Anything, (*domain.TodoStatus)(nil)).
			Return([]*domain.Todo{}, nil)

		got, err := f.service.ListTodos(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestEnqueueEnrichment(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()

	t.Run("creates and submits the enrichment task", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		enrichment := task.NewMockTask(uuid.New(), task.TaskTypeEnrichment, nil)

		f.factory.On("CreateTask", taskID).Return(enrichment, nil)
		f.runner.On("Submit", mock.Anything, enrichment).Return(nil)

		require.NoError(t, f.service.enqueueEnrichment(context.Background(), taskID))
		f.runner.AssertExpectations(t)
	})

	t.Run("missing factory fails", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		f.service.SetTaskFactory(nil)

		err := f.service.enqueueEnrichment(context.Background(), taskID)
		var svcErr *TaskServiceError
		require.ErrorAs(t, err, &svcErr)
		f.runner.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("full queue surfaces ErrQueueFull", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		enrichment := task.NewMockTask(uuid.New(), task.TaskTypeEnrichment, nil)

		f.factory.On("CreateTask", taskID).Return(enrichment, nil)
		f.runner.On("Submit", mock.Anything, enrichment).Return(assert.AnError)

		err := f.service.enqueueEnrichment(context.Background(), taskID)
		assert.ErrorIs(t, err, ErrQueueFull)
	})
}

func TestApplyGatedFields(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("confident values populate and resolve the deadline", func(t *testing.T) {
		t.Parallel()

		captured, err := domain.NewTask("ship the beta")
		require.NoError(t, err)

		project := "beta launch"
		deadlineText := "tomorrow"
		taskType := domain.TaskTypeDevelopment
		priority := domain.PriorityHigh
		effort := 90

		result := &extraction.Result{
			Project:            &project,
			ProjectConfidence:  0.9,
			Persons:            []string{"Ana"},
			PersonsConfidence:  0.8,
			DeadlineText:       &deadlineText,
			DeadlineConfidence: 0.95,
			TaskType:           &taskType,
			TaskTypeConfidence: 0.85,
			Priority:           &priority,
			PriorityConfidence: 0.9,
			EffortEstimate:     &effort,
			EffortConfidence:   0.75,
			Tags:               []string{"launch"},
			TagsConfidence:     0.8,
		}

		applyGatedFields(captured, result, now)

		require.NotNil(t, captured.Project)
		assert.Equal(t, "beta launch", *captured.Project)
		assert.Equal(t, []string{"Ana"}, captured.Persons)
		require.NotNil(t, captured.TaskType)
		assert.Equal(t, domain.TaskTypeDevelopment, *captured.TaskType)
		assert.Equal(t, domain.PriorityHigh, captured.Priority)
		require.NotNil(t, captured.EffortEstimate)
		assert.Equal(t, 90, *captured.EffortEstimate)
		assert.Equal(t, []string{"launch"}, captured.Tags)

		require.NotNil(t, captured.DeadlineText)
		assert.Equal(t, "tomorrow", *captured.DeadlineText)
		require.NotNil(t, captured.DeadlineParsed)
		assert.Equal(t, time.Date(2026, 3, 3, 23, 59, 59, 0, time.UTC), *captured.DeadlineParsed)
	})

	t.Run("low confidence leaves existing values alone", func(t *testing.T) {
		t.Parallel()

		captured, err := domain.NewTask("follow up with ops")
		require.NoError(t, err)

		existing := "infrastructure"
		captured.Project = &existing
		captured.Persons = []string{"Marta"}

		guess := "maybe-ops"
		result := &extraction.Result{
			Project:           &guess,
			ProjectConfidence: 0.4,
			PersonsConfidence: 0.2,
		}

		applyGatedFields(captured, result, now)

		require.NotNil(t, captured.Project)
		assert.Equal(t, "infrastructure", *captured.Project)
		assert.Equal(t, []string{"Marta"}, captured.Persons)
	})

	t.Run("confident null clears a stale value", func(t *testing.T) {
		t.Parallel()

		captured, err := domain.NewTask("reread the rfc")
		require.NoError(t, err)

		stale := "wrong project"
		staleDeadline := "friday"
		staleParsed := now
		captured.Project = &stale
		captured.DeadlineText = &staleDeadline
		captured.DeadlineParsed = &staleParsed
		captured.Priority = domain.PriorityUrgent

		result := &extraction.Result{
			ProjectConfidence:  0.9,
			DeadlineConfidence: 0.9,
			PriorityConfidence: 0.9,
		}

		applyGatedFields(captured, result, now)

		assert.Nil(t, captured.Project)
		assert.Nil(t, captured.DeadlineText)
		assert.Nil(t, captured.DeadlineParsed)
		// Priority has no null state, so the current value survives.
		assert.Equal(t, domain.PriorityUrgent, captured.Priority)
	})
}
