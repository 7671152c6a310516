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

// PostgresTodoStore implements the store.TodoStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTodoStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTodoStore creates a new PostgreSQL implementation of the
// TodoStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTodoStore(db store.DBTX, logger *slog.Logger) *PostgresTodoStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTodoStore{
		db:     db,
		logger: logger.With(slog.String("component", "todo_store")),
	}
}

// Ensure PostgresTodoStore implements store.TodoStore interface
var _ store.TodoStore = (*PostgresTodoStore)(nil)

// WithTx implements store.TodoStore.WithTx
func (s *PostgresTodoStore) WithTx(tx *sql.Tx) store.TodoStore {
	return &PostgresTodoStore{
		db:     tx,
		logger: s.logger,
	}
}

const todoColumns = `id, task_id, status, position, created_at, updated_at`

// Create implements store.TodoStore.Create
// Returns store.ErrTodoExists if the task already has a todo entry.
// Returns store.ErrInvalidEntity if the referenced task doesn't exist.
func (s *PostgresTodoStore) Create(ctx context.Context, todo *domain.Todo) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := todo.Validate(); err != nil {
		log.Warn("todo validation failed during create",
			slog.String("error", err.Error()),
			slog.String("todo_id", todo.ID.String()))
		return err
	}

	query := `
		INSERT INTO todos (` + todoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		todo.ID,
		todo.TaskID,
		string(todo.Status),
		todo.Position,
		todo.CreatedAt,
		todo.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolationCode:
				log.Warn("todo already exists for task",
					slog.String("task_id", todo.TaskID.String()))
				return fmt.Errorf("%w: task %s", store.ErrTodoExists, todo.TaskID)
			case pgForeignKeyViolationCode:
				log.Warn("foreign key violation during todo creation",
					slog.String("task_id", todo.TaskID.String()))
				return fmt.Errorf("%w: task with ID %s not found",
					store.ErrInvalidEntity, todo.TaskID)
			}
		}

		log.Error("failed to create todo",
			slog.String("error", err.Error()),
			slog.String("todo_id", todo.ID.String()))
		return err
	}

	log.Info("todo created successfully",
		slog.String("todo_id", todo.ID.String()),
		slog.String("task_id", todo.TaskID.String()))
	return nil
}

// GetByID implements store.TodoStore.GetByID
// Returns store.ErrTodoNotFound if the todo does not exist.
func (s *PostgresTodoStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Todo, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`

	todo, err := scanTodo(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("todo not found", slog.String("todo_id", id.String()))
			return nil, store.ErrTodoNotFound
		}
		log.Error("failed to get todo by ID",
			slog.String("error", err.Error()),
			slog.String("todo_id", id.String()))
		return nil, err
	}

	return todo, nil
}

// GetByTaskID implements store.TodoStore.GetByTaskID
// Returns store.ErrTodoNotFound if no todo exists for the task.
func (s *PostgresTodoStore) GetByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.Todo, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + todoColumns + ` FROM todos WHERE task_id = $1`

	todo, err := scanTodo(s.db.QueryRowContext(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("todo not found for task",
				slog.String("task_id", taskID.String()))
			return nil, store.ErrTodoNotFound
		}
		log.Error("failed to get todo by task ID",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	return todo, nil
}

// Update implements store.TodoStore.Update
// Returns store.ErrTodoNotFound if the todo does not exist.
func (s *PostgresTodoStore) Update(ctx context.Context, todo *domain.Todo) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := todo.Validate(); err != nil {
		log.Warn("todo validation failed during update",
			slog.String("error", err.Error()),
			slog.String("todo_id", todo.ID.String()))
		return err
	}

	query := `
		UPDATE todos
		SET status = $1, position = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		string(todo.Status),
		todo.Position,
		todo.UpdatedAt,
		todo.ID,
	)

	if err != nil {
		log.Error("failed to update todo",
			slog.String("error", err.Error()),
			slog.String("todo_id", todo.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("todo_id", todo.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("todo not found for update",
			slog.String("todo_id", todo.ID.String()))
		return store.ErrTodoNotFound
	}

	log.Debug("todo updated successfully",
		slog.String("todo_id", todo.ID.String()),
		slog.String("status", string(todo.Status)))
	return nil
}

// List implements store.TodoStore.List
// Unpositioned todos come first, newest first; manually positioned ones
// follow in position order. Returns an empty slice if no todos match.
func (s *PostgresTodoStore) List(ctx context.Context, status *domain.TodoStatus) ([]*domain.Todo, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + todoColumns + ` FROM todos`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY position ASC NULLS FIRST, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query todos", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	todos := []*domain.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			log.Error("failed to scan todo row", slog.String("error", err.Error()))
			return nil, err
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed todos", slog.Int("count", len(todos)))
	return todos, nil
}

// scanTodo reads one todo row.
func scanTodo(row rowScanner) (*domain.Todo, error) {
	var todo domain.Todo
	var status string

	err := row.Scan(
		&todo.ID,
		&todo.TaskID,
		&status,
		&todo.Position,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	todo.Status = domain.TodoStatus(status)
	return &todo, nil
}
