package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// PostgresWorkbenchStore implements the store.WorkbenchStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWorkbenchStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWorkbenchStore creates a new PostgreSQL implementation of the
// WorkbenchStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresWorkbenchStore(db store.DBTX, logger *slog.Logger) *PostgresWorkbenchStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWorkbenchStore{
		db:     db,
		logger: logger.With(slog.String("component", "workbench_store")),
	}
}

// Ensure PostgresWorkbenchStore implements store.WorkbenchStore interface
var _ store.WorkbenchStore = (*PostgresWorkbenchStore)(nil)

// WithTx implements store.WorkbenchStore.WithTx
func (s *PostgresWorkbenchStore) WithTx(tx *sql.Tx) store.WorkbenchStore {
	return &PostgresWorkbenchStore{
		db:     tx,
		logger: s.logger,
	}
}

const workbenchColumns = `id, task_id, enrichment_status, error_message,
	metadata_suggestions, moved_to_todos_at, created_at, updated_at`

// Create implements store.WorkbenchStore.Create
// Returns store.ErrInvalidEntity if the referenced task doesn't exist.
func (s *PostgresWorkbenchStore) Create(ctx context.Context, entry *domain.WorkbenchEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("workbench entry validation failed during create",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return err
	}

	query := `
		INSERT INTO workbench_entries (` + workbenchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.TaskID,
		string(entry.EnrichmentStatus),
		entry.ErrorMessage,
		entry.MetadataSuggestions,
		entry.MovedToTodosAt,
		entry.CreatedAt,
		entry.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
			log.Warn("foreign key violation during workbench entry creation",
				slog.String("error", err.Error()),
				slog.String("task_id", entry.TaskID.String()))
			return fmt.Errorf("%w: task with ID %s not found",
				store.ErrInvalidEntity, entry.TaskID)
		}

		log.Error("failed to create workbench entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return err
	}

	log.Debug("workbench entry created successfully",
		slog.String("entry_id", entry.ID.String()),
		slog.String("task_id", entry.TaskID.String()))
	return nil
}

// GetByTaskID implements store.WorkbenchStore.GetByTaskID
// Returns store.ErrWorkbenchNotFound if no entry exists for the task.
func (s *PostgresWorkbenchStore) GetByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.WorkbenchEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + workbenchColumns + ` FROM workbench_entries WHERE task_id = $1`

	entry, err := scanWorkbenchEntry(s.db.QueryRowContext(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("workbench entry not found",
				slog.String("task_id", taskID.String()))
			return nil, store.ErrWorkbenchNotFound
		}
		log.Error("failed to get workbench entry",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	return entry, nil
}

// Update implements store.WorkbenchStore.Update
// Returns store.ErrWorkbenchNotFound if the entry does not exist.
func (s *PostgresWorkbenchStore) Update(ctx context.Context, entry *domain.WorkbenchEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("workbench entry validation failed during update",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return err
	}

	query := `
		UPDATE workbench_entries
		SET enrichment_status = $1, error_message = $2,
			metadata_suggestions = $3, moved_to_todos_at = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		string(entry.EnrichmentStatus),
		entry.ErrorMessage,
		entry.MetadataSuggestions,
		entry.MovedToTodosAt,
		entry.UpdatedAt,
		entry.ID,
	)

	if err != nil {
		log.Error("failed to update workbench entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("workbench entry not found for update",
			slog.String("entry_id", entry.ID.String()))
		return store.ErrWorkbenchNotFound
	}

	log.Debug("workbench entry updated successfully",
		slog.String("entry_id", entry.ID.String()),
		slog.String("status", string(entry.EnrichmentStatus)))
	return nil
}

// scanWorkbenchEntry reads one workbench entry row.
func scanWorkbenchEntry(row rowScanner) (*domain.WorkbenchEntry, error) {
	var entry domain.WorkbenchEntry
	var status string

	err := row.Scan(
		&entry.ID,
		&entry.TaskID,
		&status,
		&entry.ErrorMessage,
		&entry.MetadataSuggestions,
		&entry.MovedToTodosAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.EnrichmentStatus = domain.EnrichmentStatus(status)
	return &entry, nil
}
