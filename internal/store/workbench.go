package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
)

// WorkbenchStore defines the interface for enrichment workflow persistence.
// Version: 1.0
type WorkbenchStore interface {
	// Create saves a new workbench entry to the store.
	Create(ctx context.Context, entry *domain.WorkbenchEntry) error

	// GetByTaskID retrieves the workbench entry for the given task.
	// Returns ErrWorkbenchNotFound if no entry exists.
	GetByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.WorkbenchEntry, error)

	// Update saves changes to an existing workbench entry (status, error
	// message, suggestions blob, moved_to_todos_at).
	// Returns ErrWorkbenchNotFound if the entry does not exist.
	Update(ctx context.Context, entry *domain.WorkbenchEntry) error

	// WithTx returns a new WorkbenchStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) WorkbenchStore
}
