package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// PostgreSQL error codes
const (
	pgForeignKeyViolationCode = "23503"
	pgUniqueViolationCode     = "23505"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

const taskColumns = `id, user_input, enriched_text, project, persons, task_type,
	priority, deadline_text, deadline_parsed, effort_estimate, dependencies,
	tags, extracted_at, requires_attention, created_at, updated_at`

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	persons, dependencies, tags, err := marshalTaskLists(task)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserInput,
		task.EnrichedText,
		task.Project,
		persons,
		taskTypeValue(task.TaskType),
		string(task.Priority),
		task.DeadlineText,
		task.DeadlineParsed,
		task.EffortEstimate,
		dependencies,
		tags,
		task.ExtractedAt,
		task.RequiresAttention,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Warn("unique violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
			return fmt.Errorf("%w: task with ID %s already exists",
				store.ErrDuplicate, task.ID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	persons, dependencies, tags, err := marshalTaskLists(task)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET enriched_text = $1, project = $2, persons = $3, task_type = $4,
			priority = $5, deadline_text = $6, deadline_parsed = $7,
			effort_estimate = $8, dependencies = $9, tags = $10,
			extracted_at = $11, requires_attention = $12, updated_at = $13
		WHERE id = $14
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.EnrichedText,
		task.Project,
		persons,
		taskTypeValue(task.TaskType),
		string(task.Priority),
		task.DeadlineText,
		task.DeadlineParsed,
		task.EffortEstimate,
		dependencies,
		tags,
		task.ExtractedAt,
		task.RequiresAttention,
		task.UpdatedAt,
		task.ID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("task not found for update",
			slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Debug("task updated successfully",
		slog.String("task_id", task.ID.String()))
	return nil
}

// Delete implements store.TaskStore.Delete
// Workbench and todo entries are removed by the schema's cascade rules.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("task not found for delete", slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}

// ListWithWorkbench implements store.TaskStore.ListWithWorkbench
// The join keeps the listing at a single round trip regardless of task
// count. Returns an empty slice if no tasks match.
func (s *PostgresTaskStore) ListWithWorkbench(
	ctx context.Context,
	status *domain.EnrichmentStatus,
) ([]*store.TaskWithWorkbench, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT t.id, t.user_input, t.enriched_text, t.project, t.persons,
			t.task_type, t.priority, t.deadline_text, t.deadline_parsed,
			t.effort_estimate, t.dependencies, t.tags, t.extracted_at,
			t.requires_attention, t.created_at, t.updated_at,
			w.id, w.task_id, w.enrichment_status, w.error_message,
			w.metadata_suggestions, w.moved_to_todos_at, w.created_at, w.updated_at
		FROM tasks t
		JOIN workbench_entries w ON w.task_id = t.id`

	args := []any{}
	if status != nil {
		query += ` WHERE w.enrichment_status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	pairs := []*store.TaskWithWorkbench{}
	for rows.Next() {
		pair, err := scanTaskWithWorkbench(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		pairs = append(pairs, pair)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed tasks", slog.Int("count", len(pairs)))
	return pairs, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// taskRowBuffers holds the raw column values that need decoding after scan.
type taskRowBuffers struct {
	persons      []byte
	dependencies []byte
	tags         []byte
	taskType     sql.NullString
	priority     string
}

// taskScanDest returns the scan destinations for one task row, in column
// order.
func taskScanDest(task *domain.Task, buf *taskRowBuffers) []any {
	return []any{
		&task.ID,
		&task.UserInput,
		&task.EnrichedText,
		&task.Project,
		&buf.persons,
		&buf.taskType,
		&buf.priority,
		&task.DeadlineText,
		&task.DeadlineParsed,
		&task.EffortEstimate,
		&buf.dependencies,
		&buf.tags,
		&task.ExtractedAt,
		&task.RequiresAttention,
		&task.CreatedAt,
		&task.UpdatedAt,
	}
}

// finishTaskScan decodes the JSON-encoded list columns and the enum columns
// into their domain types.
func finishTaskScan(task *domain.Task, buf *taskRowBuffers) error {
	if err := unmarshalList(buf.persons, &task.Persons); err != nil {
		return fmt.Errorf("failed to decode persons: %w", err)
	}
	if err := unmarshalList(buf.dependencies, &task.Dependencies); err != nil {
		return fmt.Errorf("failed to decode dependencies: %w", err)
	}
	if err := unmarshalList(buf.tags, &task.Tags); err != nil {
		return fmt.Errorf("failed to decode tags: %w", err)
	}

	if buf.taskType.Valid {
		tt := domain.TaskType(buf.taskType.String)
		task.TaskType = &tt
	}
	task.Priority = domain.Priority(buf.priority)
	return nil
}

// scanTask reads one task row.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var buf taskRowBuffers

	if err := row.Scan(taskScanDest(&task, &buf)...); err != nil {
		return nil, err
	}
	if err := finishTaskScan(&task, &buf); err != nil {
		return nil, err
	}
	return &task, nil
}

// scanTaskWithWorkbench reads one joined task and workbench entry row.
func scanTaskWithWorkbench(row rowScanner) (*store.TaskWithWorkbench, error) {
	var task domain.Task
	var buf taskRowBuffers
	var entry domain.WorkbenchEntry
	var entryStatus string

	dest := taskScanDest(&task, &buf)
	dest = append(dest,
		&entry.ID,
		&entry.TaskID,
		&entryStatus,
		&entry.ErrorMessage,
		&entry.MetadataSuggestions,
		&entry.MovedToTodosAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := finishTaskScan(&task, &buf); err != nil {
		return nil, err
	}
	entry.EnrichmentStatus = domain.EnrichmentStatus(entryStatus)

	return &store.TaskWithWorkbench{Task: &task, Entry: &entry}, nil
}

// marshalTaskLists JSON-encodes the task's list fields for storage.
func marshalTaskLists(task *domain.Task) (persons, dependencies, tags []byte, err error) {
	if persons, err = marshalList(task.Persons); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode persons: %w", err)
	}
	if dependencies, err = marshalList(task.Dependencies); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode dependencies: %w", err)
	}
	if tags, err = marshalList(task.Tags); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return persons, dependencies, tags, nil
}

func marshalList(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	return json.Marshal(list)
}

func unmarshalList(data []byte, dst *[]string) error {
	if len(data) == 0 {
		*dst = []string{}
		return nil
	}
	return json.Unmarshal(data, dst)
}

func taskTypeValue(tt *domain.TaskType) any {
	if tt == nil {
		return nil
	}
	return string(*tt)
}
