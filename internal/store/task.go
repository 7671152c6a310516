package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
)

// TaskWithWorkbench pairs a task with its enrichment workflow entry, as
// produced by the joined list query.
type TaskWithWorkbench struct {
	Task  *domain.Task
	Entry *domain.WorkbenchEntry
}

// TaskStore defines the interface for task data persistence.
// Version: 1.0
type TaskStore interface {
	// Create saves a new task to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update saves changes to an existing task, including its metadata
	// bundle. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task. Workbench and todo entries cascade.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListWithWorkbench retrieves tasks joined with their workbench entries,
	// ordered by creation time descending. The ordering is stable regardless
	// of when enrichment completes. A non-nil status narrows the list to
	// tasks whose entry is in that enrichment state.
	ListWithWorkbench(ctx context.Context, status *domain.EnrichmentStatus) ([]*TaskWithWorkbench, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TaskStore
}
