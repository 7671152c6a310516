package domain

// TaskType is the closed set of task categories recognized by metadata
// extraction.
type TaskType string

// Possible task type values
const (
	TaskTypeMeeting        TaskType = "meeting"
	TaskTypeCall           TaskType = "call"
	TaskTypeEmail          TaskType = "email"
	TaskTypeReview         TaskType = "review"
	TaskTypeDevelopment    TaskType = "development"
	TaskTypeResearch       TaskType = "research"
	TaskTypeAdministrative TaskType = "administrative"
	TaskTypeOther          TaskType = "other"
)

// TaskTypeFromString maps a free-form string onto the closed TaskType set.
// Values outside the set coerce to TaskTypeOther rather than being rejected,
// since the LLM occasionally invents categories.
func TaskTypeFromString(s string) TaskType {
	switch TaskType(s) {
	case TaskTypeMeeting, TaskTypeCall, TaskTypeEmail, TaskTypeReview,
		TaskTypeDevelopment, TaskTypeResearch, TaskTypeAdministrative, TaskTypeOther:
		return TaskType(s)
	default:
		return TaskTypeOther
	}
}

// Priority is the closed set of task priority levels.
type Priority string

// Possible priority values
const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// PriorityFromString maps a free-form string onto the closed Priority set,
// coercing unknown values to PriorityNormal.
func PriorityFromString(s string) Priority {
	switch Priority(s) {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return Priority(s)
	default:
		return PriorityNormal
	}
}

// EnrichmentStatus represents the processing state of a task's enrichment
// workflow entry.
type EnrichmentStatus string

// Possible enrichment status values
const (
	EnrichmentStatusPending    EnrichmentStatus = "pending"
	EnrichmentStatusProcessing EnrichmentStatus = "processing"
	EnrichmentStatusCompleted  EnrichmentStatus = "completed"
	EnrichmentStatusFailed     EnrichmentStatus = "failed"
)

// IsValidEnrichmentStatus checks if the given status is a known state.
func IsValidEnrichmentStatus(status EnrichmentStatus) bool {
	switch status {
	case EnrichmentStatusPending, EnrichmentStatusProcessing,
		EnrichmentStatusCompleted, EnrichmentStatusFailed:
		return true
	default:
		return false
	}
}

// TodoStatus represents the completion state of a todo entry.
type TodoStatus string

// Possible todo status values
const (
	TodoStatusOpen      TodoStatus = "open"
	TodoStatusCompleted TodoStatus = "completed"
	TodoStatusArchived  TodoStatus = "archived"
)

// IsValidTodoStatus checks if the given status is a known todo state.
func IsValidTodoStatus(status TodoStatus) bool {
	switch status {
	case TodoStatusOpen, TodoStatusCompleted, TodoStatusArchived:
		return true
	default:
		return false
	}
}
