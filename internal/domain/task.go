package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task represents a captured task: the immutable raw user input plus the
// best-known metadata populated by the enrichment pipeline or by explicit
// user correction.
type Task struct {
	ID           uuid.UUID `json:"id"`
	UserInput    string    `json:"user_input"`
	EnrichedText *string   `json:"enriched_text"`

	Project           *string    `json:"project"`
	Persons           []string   `json:"persons"`
	TaskType          *TaskType  `json:"task_type"`
	Priority          Priority   `json:"priority"`
	DeadlineText      *string    `json:"deadline_text"`
	DeadlineParsed    *time.Time `json:"deadline_parsed"`
	EffortEstimate    *int       `json:"effort_estimate"`
	Dependencies      []string   `json:"dependencies"`
	Tags              []string   `json:"tags"`
	ExtractedAt       *time.Time `json:"extracted_at"`
	RequiresAttention bool       `json:"requires_attention"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask creates a new Task from raw user input. The priority defaults to
// low; this default applies only at creation time, later extraction runs
// overwrite it when the LLM's priority guess clears the confidence gate.
// Returns an error if validation fails.
func NewTask(userInput string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		UserInput: userInput,
		Priority:  PriorityLow,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if strings.TrimSpace(t.UserInput) == "" {
		return ErrEmptyUserInput
	}

	if t.EffortEstimate != nil && *t.EffortEstimate <= 0 {
		return ErrInvalidEffortEstimate
	}

	return nil
}

// Touch updates the UpdatedAt timestamp. Called by stores and services
// whenever the task is mutated.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}
