package domain

import (
	"time"

	"github.com/google/uuid"
)

// Todo is a task's entry in the execution workflow. It exists only once the
// task graduates out of the enrichment workbench.
type Todo struct {
	ID        uuid.UUID  `json:"id"`
	TaskID    uuid.UUID  `json:"task_id"`
	Status    TodoStatus `json:"status"`
	Position  *int       `json:"position"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewTodo creates an open todo entry for the given task. Position is
// optional manual ordering; nil sorts before positioned entries.
func NewTodo(taskID uuid.UUID, position *int) (*Todo, error) {
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}

	now := time.Now().UTC()
	return &Todo{
		ID:        uuid.New(),
		TaskID:    taskID,
		Status:    TodoStatusOpen,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate checks if the Todo has valid data.
func (t *Todo) Validate() error {
	if t.ID == uuid.Nil || t.TaskID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if !IsValidTodoStatus(t.Status) {
		return ErrInvalidTodoStatus
	}

	return nil
}

// UpdateStatus changes the todo's status, rejecting unknown values.
func (t *Todo) UpdateStatus(status TodoStatus) error {
	if !IsValidTodoStatus(status) {
		return ErrInvalidTodoStatus
	}

	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}
