package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingEntry(t *testing.T) *WorkbenchEntry {
	t.Helper()
	entry, err := NewWorkbenchEntry(uuid.New())
	require.NoError(t, err)
	return entry
}

func TestNewWorkbenchEntry(t *testing.T) {
	t.Parallel()

	t.Run("starts pending", func(t *testing.T) {
		t.Parallel()

		taskID := uuid.New()
		entry, err := NewWorkbenchEntry(taskID)
		require.NoError(t, err)

		assert.Equal(t, taskID, entry.TaskID)
		assert.Equal(t, EnrichmentStatusPending, entry.EnrichmentStatus)
		assert.Nil(t, entry.ErrorMessage)
		assert.Nil(t, entry.MovedToTodosAt)
	})

	t.Run("rejects nil task ID", func(t *testing.T) {
		t.Parallel()

		entry, err := NewWorkbenchEntry(uuid.Nil)
		assert.Nil(t, entry)
		assert.ErrorIs(t, err, ErrEmptyTaskID)
	})
}

func TestWorkbenchEntryTransitions(t *testing.T) {
	t.Parallel()

	t.Run("pending to processing", func(t *testing.T) {
		t.Parallel()

		entry := newPendingEntry(t)
		require.NoError(t, entry.MarkProcessing())
		assert.Equal(t, EnrichmentStatusProcessing, entry.EnrichmentStatus)
	})

	t.Run("processing to completed clears error", func(t *testing.T) {
		t.Parallel()

		entry := newPendingEntry(t)
		require.NoError(t, entry.MarkProcessing())

		msg := "stale"
		entry.ErrorMessage = &msg

		require.NoError(t, entry.MarkCompleted())
		assert.Equal(t, EnrichmentStatusCompleted, entry.EnrichmentStatus)
		assert.Nil(t, entry.ErrorMessage)
	})

	t.Run("processing to failed records message", func(t *testing.T) {
		t.Parallel()

		entry := newPendingEntry(t)
		require.NoError(t, entry.MarkProcessing())
		require.NoError(t, entry.MarkFailed("rate limit exceeded"))

		assert.Equal(t, EnrichmentStatusFailed, entry.EnrichmentStatus)
		require.NotNil(t, entry.ErrorMessage)
		assert.Equal(t, "rate limit exceeded", *entry.ErrorMessage)
	})

	t.Run("cannot complete from pending", func(t *testing.T) {
		t.Parallel()

		entry := newPendingEntry(t)
		err := entry.MarkCompleted()
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
		assert.Equal(t, EnrichmentStatusPending, entry.EnrichmentStatus)
	})

	t.Run("cannot fail from pending", func(t *testing.T) {
		t.Parallel()

		entry := newPendingEntry(t)
		assert.ErrorIs(t, entry.MarkFailed("boom"), ErrInvalidStatusTransition)
	})

	t.Run("cannot mark processing twice", func(t *testing.T) {
		t.Parallel()

		entry := newPendingEntry(t)
		require.NoError(t, entry.MarkProcessing())
		assert.ErrorIs(t, entry.MarkProcessing(), ErrInvalidStatusTransition)
	})
}

func TestWorkbenchEntryResetForRetry(t *testing.T) {
	t.Parallel()

	t.Run("resets failed entry and clears error", func(t *testing.T) {
		t.Parallel()

		entry := newPendingEntry(t)
		require.NoError(t, entry.MarkProcessing())
		require.NoError(t, entry.MarkFailed("gateway timeout"))

		require.NoError(t, entry.ResetForRetry())
		assert.Equal(t, EnrichmentStatusPending, entry.EnrichmentStatus)
		assert.Nil(t, entry.ErrorMessage)
	})

	t.Run("resets completed entry for re-run", func(t *testing.T) {
		t.Parallel()

		entry := newPendingEntry(t)
		require.NoError(t, entry.MarkProcessing())
		require.NoError(t, entry.MarkCompleted())

		require.NoError(t, entry.ResetForRetry())
		assert.Equal(t, EnrichmentStatusPending, entry.EnrichmentStatus)
	})

	t.Run("rejects reset while processing", func(t *testing.T) {
		t.Parallel()

		entry := newPendingEntry(t)
		require.NoError(t, entry.MarkProcessing())
		assert.ErrorIs(t, entry.ResetForRetry(), ErrInvalidStatusTransition)
	})

	t.Run("rejects reset while pending", func(t *testing.T) {
		t.Parallel()

		entry := newPendingEntry(t)
		assert.ErrorIs(t, entry.ResetForRetry(), ErrInvalidStatusTransition)
	})
}

func TestWorkbenchEntryMarkMovedToTodos(t *testing.T) {
	t.Parallel()

	entry := newPendingEntry(t)
	movedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	entry.MarkMovedToTodos(movedAt)

	require.NotNil(t, entry.MovedToTodosAt)
	assert.Equal(t, movedAt, *entry.MovedToTodosAt)
}
