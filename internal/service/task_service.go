package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/deadline"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/extraction"
	"github.com/taskwell/taskwell-api/internal/store"
	"github.com/taskwell/taskwell-api/internal/task"
)

// TaskRunner defines the interface for submitting background tasks
type TaskRunner interface {
	// Submit adds a task to the processing queue
	Submit(ctx context.Context, task task.Task) error
}

// EnrichmentTaskFactory creates enrichment tasks for captured tasks
type EnrichmentTaskFactory interface {
	// CreateTask creates a new enrichment task for the specified captured task
	CreateTask(taskID uuid.UUID) (task.Task, error)
}

// TaskService provides capture, enrichment workflow, and todo operations
// for tasks.
type TaskService interface {
	// CreateTaskAndEnqueue captures raw input as a new task with a pending
	// workbench entry and enqueues it for background enrichment
	CreateTaskAndEnqueue(ctx context.Context, userInput string) (*domain.Task, error)

	// GetTask retrieves a task by its ID
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// GetWorkbenchEntry retrieves the enrichment workflow state for a task
	GetWorkbenchEntry(ctx context.Context, taskID uuid.UUID) (*domain.WorkbenchEntry, error)

	// ListTasks retrieves tasks with their workbench entries, newest first,
	// optionally filtered by enrichment status
	ListTasks(ctx context.Context, status *domain.EnrichmentStatus) ([]*store.TaskWithWorkbench, error)

	// DeleteTask removes a task along with its workbench and todo entries
	DeleteTask(ctx context.Context, taskID uuid.UUID) error

	// MarkProcessing transitions a task's workbench entry to processing
	MarkProcessing(ctx context.Context, taskID uuid.UUID) error

	// ApplyExtraction writes enrichment output onto the task: the enriched
	// text, every extracted field whose confidence clears the gate, the
	// parsed deadline, and the full suggestion set on the workbench entry,
	// which is marked completed. All of it commits atomically.
	ApplyExtraction(ctx context.Context, taskID uuid.UUID, enrichedText string, result *extraction.Result) error

	// MarkFailed records an enrichment failure message on the workbench entry
	MarkFailed(ctx context.Context, taskID uuid.UUID, message string) error

	// RetryTask resets a failed or completed workbench entry to pending and
	// re-enqueues enrichment
	RetryTask(ctx context.Context, taskID uuid.UUID) (*domain.WorkbenchEntry, error)

	// MoveToTodos graduates a task from the workbench to the todo list.
	// The move is one-way; a second call returns ErrAlreadyMoved.
	MoveToTodos(ctx context.Context, taskID uuid.UUID) (*domain.Todo, error)

	// ListTodos retrieves todos, optionally filtered by status
	ListTodos(ctx context.Context, status *domain.TodoStatus) ([]*domain.Todo, error)

	// UpdateTodo changes a todo's status and/or manual position. Nil
	// arguments leave the corresponding field unchanged.
	UpdateTodo(ctx context.Context, todoID uuid.UUID, status *domain.TodoStatus, position *int) (*domain.Todo, error)
}

// taskServiceImpl implements the TaskService interface. It also satisfies
// task.EnrichmentService so the background enrichment task can drive the
// workflow through the same transactional code paths the API uses.
type taskServiceImpl struct {
	db             *sql.DB
	taskStore      store.TaskStore
	workbenchStore store.WorkbenchStore
	todoStore      store.TodoStore
	runner         TaskRunner
	taskFactory    EnrichmentTaskFactory
	logger         *slog.Logger
}

// Interface conformance checks.
var (
	_ TaskService            = (*taskServiceImpl)(nil)
	_ task.EnrichmentService = (*taskServiceImpl)(nil)
)

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	db *sql.DB,
	taskStore store.TaskStore,
	workbenchStore store.WorkbenchStore,
	todoStore store.TodoStore,
	runner TaskRunner,
	logger *slog.Logger,
) (*taskServiceImpl, error) {
	if db == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if taskStore == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "taskStore cannot be nil"}
	}
	if workbenchStore == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "workbenchStore cannot be nil"}
	}
	if todoStore == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "todoStore cannot be nil"}
	}
	if runner == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "runner cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		db:             db,
		taskStore:      taskStore,
		workbenchStore: workbenchStore,
		todoStore:      todoStore,
		runner:         runner,
		logger:         logger.With("component", "task_service"),
	}, nil
}

// SetTaskFactory wires the enrichment task factory. The factory depends on
// this service, so it is attached after construction rather than passed to
// NewTaskService.
func (s *taskServiceImpl) SetTaskFactory(factory EnrichmentTaskFactory) {
	s.taskFactory = factory
}

// CreateTaskAndEnqueue captures raw input and starts background enrichment.
// The task and its workbench entry commit in one transaction before the
// enqueue, so a full queue leaves a pending entry behind rather than
// losing the capture.
func (s *taskServiceImpl) CreateTaskAndEnqueue(ctx context.Context, userInput string) (*domain.Task, error) {
	newTask, err := domain.NewTask(userInput)
	if err != nil {
		s.logger.Error("failed to create task object", "error", err)
		return nil, NewTaskServiceError("create_task", "failed to create task object", err)
	}

	entry, err := domain.NewWorkbenchEntry(newTask.ID)
	if err != nil {
		return nil, NewTaskServiceError("create_task", "failed to create workbench entry", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.taskStore.WithTx(tx).Create(ctx, newTask); err != nil {
			return NewTaskServiceError("create_task", "failed to save task", err)
		}
		if err := s.workbenchStore.WithTx(tx).Create(ctx, entry); err != nil {
			return NewTaskServiceError("create_task", "failed to save workbench entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task captured",
		"task_id", newTask.ID,
		"input_length", len(userInput))

	if err := s.enqueueEnrichment(ctx, newTask.ID); err != nil {
		// The capture is durable; enrichment can be retried through the
		// API once the queue drains.
		s.logger.Error("failed to enqueue enrichment for new task",
			"task_id", newTask.ID,
			"error", err)
	}

	return newTask, nil
}

// GetTask retrieves a task by its ID
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	t, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}
	return t, nil
}

// GetWorkbenchEntry retrieves the enrichment workflow state for a task
func (s *taskServiceImpl) GetWorkbenchEntry(ctx context.Context, taskID uuid.UUID) (*domain.WorkbenchEntry, error) {
	entry, err := s.workbenchStore.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, NewTaskServiceError("get_workbench_entry", "failed to retrieve workbench entry", err)
	}
	return entry, nil
}

// ListTasks retrieves tasks with their workbench entries, newest first. A
// non-nil status narrows the list to tasks whose entry is in that
// enrichment state. The joined store query keeps the listing at a single
// round trip regardless of task count.
func (s *taskServiceImpl) ListTasks(ctx context.Context, status *domain.EnrichmentStatus) ([]*store.TaskWithWorkbench, error) {
	pairs, err := s.taskStore.ListWithWorkbench(ctx, status)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}
	return pairs, nil
}

// DeleteTask removes a task; workbench and todo entries cascade with it
func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	if err := s.taskStore.Delete(ctx, taskID); err != nil {
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	s.logger.Info("task deleted", "task_id", taskID)
	return nil
}

// MarkProcessing transitions a task's workbench entry to processing
func (s *taskServiceImpl) MarkProcessing(ctx context.Context, taskID uuid.UUID) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.workbenchStore.WithTx(tx)

		entry, err := txStore.GetByTaskID(ctx, taskID)
		if err != nil {
			return NewTaskServiceError("mark_processing", "failed to retrieve workbench entry", err)
		}

		if err := entry.MarkProcessing(); err != nil {
			return NewTaskServiceError("mark_processing", "invalid status transition", err)
		}

		if err := txStore.Update(ctx, entry); err != nil {
			return NewTaskServiceError("mark_processing", "failed to save workbench entry", err)
		}
		return nil
	})
}

// ApplyExtraction writes enrichment output onto the task and completes the
// workbench entry atomically.
func (s *taskServiceImpl) ApplyExtraction(
	ctx context.Context,
	taskID uuid.UUID,
	enrichedText string,
	result *extraction.Result,
) error {
	if result == nil {
		return NewTaskServiceError("apply_extraction", "extraction result cannot be nil",
			errors.New("nil result"))
	}

	suggestions, err := extraction.MarshalSuggestions(result)
	if err != nil {
		return NewTaskServiceError("apply_extraction", "failed to serialize suggestions", err)
	}

	now := time.Now().UTC()

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)
		txWorkbench := s.workbenchStore.WithTx(tx)

		t, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			return NewTaskServiceError("apply_extraction", "failed to retrieve task", err)
		}

		entry, err := txWorkbench.GetByTaskID(ctx, taskID)
		if err != nil {
			return NewTaskServiceError("apply_extraction", "failed to retrieve workbench entry", err)
		}

		t.EnrichedText = &enrichedText
		applyGatedFields(t, result, now)
		t.ExtractedAt = &now
		t.RequiresAttention = extraction.RequiresAttention(result)
		t.Touch()

		entry.MetadataSuggestions = &suggestions
		if err := entry.MarkCompleted(); err != nil {
			return NewTaskServiceError("apply_extraction", "invalid status transition", err)
		}

		if err := txTasks.Update(ctx, t); err != nil {
			return NewTaskServiceError("apply_extraction", "failed to save task", err)
		}
		if err := txWorkbench.Update(ctx, entry); err != nil {
			return NewTaskServiceError("apply_extraction", "failed to save workbench entry", err)
		}

		s.logger.Info("extraction applied",
			"task_id", taskID,
			"requires_attention", t.RequiresAttention)
		return nil
	})
}

// applyGatedFields copies each extracted field onto the task when its
// confidence clears the gate. Assignment past the gate is unconditional, so
// a confident null overwrites a stale value left by an earlier attempt.
// Priority is the exception: the field is non-nullable, so a null suggestion
// leaves the current value alone. The deadline phrase and its parsed
// timestamp are stored together, and a phrase the parser cannot resolve
// still keeps the text with a nil timestamp.
func applyGatedFields(t *domain.Task, result *extraction.Result, now time.Time) {
	if extraction.ShouldPopulate(result.ProjectConfidence) {
		t.Project = result.Project
	}
	if extraction.ShouldPopulate(result.PersonsConfidence) {
		t.Persons = result.Persons
	}
	if extraction.ShouldPopulate(result.TaskTypeConfidence) {
		t.TaskType = result.TaskType
	}
	if result.Priority != nil && extraction.ShouldPopulate(result.PriorityConfidence) {
		t.Priority = *result.Priority
	}
	if extraction.ShouldPopulate(result.DeadlineConfidence) {
		t.DeadlineText = result.DeadlineText
		t.DeadlineParsed = nil
		if result.DeadlineText != nil {
			t.DeadlineParsed = deadline.Parse(*result.DeadlineText, now)
		}
	}
	if extraction.ShouldPopulate(result.EffortConfidence) {
		t.EffortEstimate = result.EffortEstimate
	}
	if extraction.ShouldPopulate(result.DependenciesConfidence) {
		t.Dependencies = result.Dependencies
	}
	if extraction.ShouldPopulate(result.TagsConfidence) {
		t.Tags = result.Tags
	}
}

// MarkFailed records an enrichment failure message on the workbench entry
func (s *taskServiceImpl) MarkFailed(ctx context.Context, taskID uuid.UUID, message string) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.workbenchStore.WithTx(tx)

		entry, err := txStore.GetByTaskID(ctx, taskID)
		if err != nil {
			return NewTaskServiceError("mark_failed", "failed to retrieve workbench entry", err)
		}

		if err := entry.MarkFailed(message); err != nil {
			return NewTaskServiceError("mark_failed", "invalid status transition", err)
		}

		if err := txStore.Update(ctx, entry); err != nil {
			return NewTaskServiceError("mark_failed", "failed to save workbench entry", err)
		}
		return nil
	})
}

// RetryTask resets the workbench entry to pending, clears the previous
// extraction timestamp, and re-enqueues enrichment. Metadata already on the
// task stays put until the new run overwrites it.
func (s *taskServiceImpl) RetryTask(ctx context.Context, taskID uuid.UUID) (*domain.WorkbenchEntry, error) {
	var entry *domain.WorkbenchEntry

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)
		txWorkbench := s.workbenchStore.WithTx(tx)

		t, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			return NewTaskServiceError("retry_task", "failed to retrieve task", err)
		}

		entry, err = txWorkbench.GetByTaskID(ctx, taskID)
		if err != nil {
			return NewTaskServiceError("retry_task", "failed to retrieve workbench entry", err)
		}

		if err := entry.ResetForRetry(); err != nil {
			return NewTaskServiceError("retry_task", "invalid status transition", err)
		}

		t.ExtractedAt = nil
		t.Touch()

		if err := txTasks.Update(ctx, t); err != nil {
			return NewTaskServiceError("retry_task", "failed to save task", err)
		}
		if err := txWorkbench.Update(ctx, entry); err != nil {
			return NewTaskServiceError("retry_task", "failed to save workbench entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.enqueueEnrichment(ctx, taskID); err != nil {
		return nil, err
	}

	s.logger.Info("task enrichment retry enqueued", "task_id", taskID)
	return entry, nil
}

// MoveToTodos graduates a task from the workbench to the todo list
func (s *taskServiceImpl) MoveToTodos(ctx context.Context, taskID uuid.UUID) (*domain.Todo, error) {
	var todo *domain.Todo

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txWorkbench := s.workbenchStore.WithTx(tx)
		txTodos := s.todoStore.WithTx(tx)

		entry, err := txWorkbench.GetByTaskID(ctx, taskID)
		if err != nil {
			return NewTaskServiceError("move_to_todos", "failed to retrieve workbench entry", err)
		}

		if entry.MovedToTodosAt != nil {
			return ErrAlreadyMoved
		}

		todo, err = domain.NewTodo(taskID, nil)
		if err != nil {
			return NewTaskServiceError("move_to_todos", "failed to create todo", err)
		}

		if err := txTodos.Create(ctx, todo); err != nil {
			return NewTaskServiceError("move_to_todos", "failed to save todo", err)
		}

		entry.MarkMovedToTodos(time.Now().UTC())
		if err := txWorkbench.Update(ctx, entry); err != nil {
			return NewTaskServiceError("move_to_todos", "failed to save workbench entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task moved to todos", "task_id", taskID, "todo_id", todo.ID)
	return todo, nil
}

// ListTodos retrieves todos, optionally filtered by status
func (s *taskServiceImpl) ListTodos(ctx context.Context, status *domain.TodoStatus) ([]*domain.Todo, error) {
	todos, err := s.todoStore.List(ctx, status)
	if err != nil {
		return nil, NewTaskServiceError("list_todos", "failed to list todos", err)
	}
	return todos, nil
}

// UpdateTodo changes a todo's status and/or manual position
func (s *taskServiceImpl) UpdateTodo(
	ctx context.Context,
	todoID uuid.UUID,
	status *domain.TodoStatus,
	position *int,
) (*domain.Todo, error) {
	var todo *domain.Todo

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTodos := s.todoStore.WithTx(tx)

		var err error
		todo, err = txTodos.GetByID(ctx, todoID)
		if err != nil {
			return NewTaskServiceError("update_todo", "failed to retrieve todo", err)
		}

		if status != nil {
			if err := todo.UpdateStatus(*status); err != nil {
				return NewTaskServiceError("update_todo", "invalid todo status", err)
			}
		}
		if position != nil {
			todo.Position = position
			todo.UpdatedAt = time.Now().UTC()
		}

		if err := txTodos.Update(ctx, todo); err != nil {
			return NewTaskServiceError("update_todo", "failed to save todo", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return todo, nil
}

// enqueueEnrichment creates and submits a background enrichment task.
func (s *taskServiceImpl) enqueueEnrichment(ctx context.Context, taskID uuid.UUID) error {
	if s.taskFactory == nil {
		return NewTaskServiceError("enqueue_enrichment", "task factory is not configured",
			errors.New("nil task factory"))
	}

	enrichment, err := s.taskFactory.CreateTask(taskID)
	if err != nil {
		return NewTaskServiceError("enqueue_enrichment", "failed to create enrichment task", err)
	}

	if err := s.runner.Submit(ctx, enrichment); err != nil {
		return NewTaskServiceError("enqueue_enrichment", "failed to submit enrichment task", ErrQueueFull)
	}

	return nil
}
