package service

import (
	"errors"
	"fmt"

	"github.com/taskwell/taskwell-api/internal/store"
)

// Common sentinel errors for TaskService
var (
	// ErrTaskNotFound indicates that the captured task does not exist
	ErrTaskNotFound = errors.New("task not found")

	// ErrWorkbenchNotFound indicates that the task has no workbench entry
	ErrWorkbenchNotFound = errors.New("workbench entry not found")

	// ErrTodoNotFound indicates that the todo does not exist
	ErrTodoNotFound = errors.New("todo not found")

	// ErrAlreadyMoved indicates the task was already moved to the todo list
	ErrAlreadyMoved = errors.New("task already moved to todos")

	// ErrQueueFull indicates the background queue cannot accept more work
	ErrQueueFull = errors.New("enrichment queue is full")
)

// TaskServiceError wraps errors from the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "retry_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError. Known sentinels, both
// service-level and their store-level counterparts, are returned directly
// without wrapping so callers can match on them.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, ErrWorkbenchNotFound), errors.Is(err, store.ErrWorkbenchNotFound):
		return ErrWorkbenchNotFound
	case errors.Is(err, ErrTodoNotFound), errors.Is(err, store.ErrTodoNotFound):
		return ErrTodoNotFound
	case errors.Is(err, ErrAlreadyMoved), errors.Is(err, store.ErrAlreadyMoved), errors.Is(err, store.ErrTodoExists):
		return ErrAlreadyMoved
	case errors.Is(err, ErrQueueFull):
		return ErrQueueFull
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
