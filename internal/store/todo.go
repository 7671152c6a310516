package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
)

// TodoStore defines the interface for todo workflow persistence.
// Version: 1.0
type TodoStore interface {
	// Create saves a new todo entry. Returns ErrTodoExists if the task
	// already has one.
	Create(ctx context.Context, todo *domain.Todo) error

	// GetByID retrieves a todo by its unique ID.
	// Returns ErrTodoNotFound if the todo does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Todo, error)

	// GetByTaskID retrieves the todo for the given task.
	// Returns ErrTodoNotFound if no todo exists.
	GetByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.Todo, error)

	// Update saves changes to an existing todo (status, position).
	// Returns ErrTodoNotFound if the todo does not exist.
	Update(ctx context.Context, todo *domain.Todo) error

	// List retrieves todos, optionally filtered by status, ordered by
	// position ascending with nulls first, then creation time descending.
	List(ctx context.Context, status *domain.TodoStatus) ([]*domain.Todo, error)

	// WithTx returns a new TodoStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) TodoStore
}
