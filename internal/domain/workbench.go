package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkbenchEntry tracks a task's enrichment workflow. Each task has exactly
// one entry, created alongside it and removed with it. The entry holds the
// enrichment state machine, the raw metadata suggestions kept for human
// review, and the timestamp marking graduation to the todo list.
type WorkbenchEntry struct {
	ID                  uuid.UUID        `json:"id"`
	TaskID              uuid.UUID        `json:"task_id"`
	EnrichmentStatus    EnrichmentStatus `json:"enrichment_status"`
	ErrorMessage        *string          `json:"error_message"`
	MetadataSuggestions *string          `json:"metadata_suggestions"`
	MovedToTodosAt      *time.Time       `json:"moved_to_todos_at"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// NewWorkbenchEntry creates a workbench entry for the given task with
// pending enrichment status.
func NewWorkbenchEntry(taskID uuid.UUID) (*WorkbenchEntry, error) {
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}

	now := time.Now().UTC()
	return &WorkbenchEntry{
		ID:               uuid.New(),
		TaskID:           taskID,
		EnrichmentStatus: EnrichmentStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Validate checks if the WorkbenchEntry has valid data.
func (w *WorkbenchEntry) Validate() error {
	if w.ID == uuid.Nil || w.TaskID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if !IsValidEnrichmentStatus(w.EnrichmentStatus) {
		return ErrInvalidEnrichmentStatus
	}

	return nil
}

// MarkProcessing transitions the entry from pending to processing so a
// polling client can observe the in-flight state.
func (w *WorkbenchEntry) MarkProcessing() error {
	if w.EnrichmentStatus != EnrichmentStatusPending {
		return w.transitionError(EnrichmentStatusProcessing)
	}

	w.EnrichmentStatus = EnrichmentStatusProcessing
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkCompleted transitions the entry from processing to completed and
// clears any stale error message.
func (w *WorkbenchEntry) MarkCompleted() error {
	if w.EnrichmentStatus != EnrichmentStatusProcessing {
		return w.transitionError(EnrichmentStatusCompleted)
	}

	w.EnrichmentStatus = EnrichmentStatusCompleted
	w.ErrorMessage = nil
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkFailed transitions the entry from processing to failed, recording the
// failure reason verbatim.
func (w *WorkbenchEntry) MarkFailed(errorMessage string) error {
	if w.EnrichmentStatus != EnrichmentStatusProcessing {
		return w.transitionError(EnrichmentStatusFailed)
	}

	w.EnrichmentStatus = EnrichmentStatusFailed
	w.ErrorMessage = &errorMessage
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// ResetForRetry resets a failed (or completed, for an idempotent re-run)
// entry back to pending and clears the error message.
func (w *WorkbenchEntry) ResetForRetry() error {
	if w.EnrichmentStatus != EnrichmentStatusFailed &&
		w.EnrichmentStatus != EnrichmentStatusCompleted {
		return w.transitionError(EnrichmentStatusPending)
	}

	w.EnrichmentStatus = EnrichmentStatusPending
	w.ErrorMessage = nil
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkMovedToTodos records graduation out of the workbench. The caller is
// responsible for creating the matching todo entry in the same transaction.
func (w *WorkbenchEntry) MarkMovedToTodos(at time.Time) {
	w.MovedToTodosAt = &at
	w.UpdatedAt = time.Now().UTC()
}

func (w *WorkbenchEntry) transitionError(target EnrichmentStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, w.EnrichmentStatus, target)
}
