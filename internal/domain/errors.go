package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyTaskID is returned when a task ID is missing.
	ErrEmptyTaskID = errors.New("task ID cannot be empty")

	// ErrEmptyUserInput is returned when a task's raw input is empty.
	ErrEmptyUserInput = errors.New("task input cannot be empty")

	// ErrInvalidEnrichmentStatus is returned when an enrichment status is
	// not one of the known states.
	ErrInvalidEnrichmentStatus = errors.New("invalid enrichment status")

	// ErrInvalidStatusTransition is returned when an enrichment status
	// change violates the state machine (pending → processing →
	// {completed, failed}, with retry resetting to pending).
	ErrInvalidStatusTransition = errors.New("invalid enrichment status transition")

	// ErrInvalidTodoStatus is returned when a todo status is not valid.
	ErrInvalidTodoStatus = errors.New("invalid todo status")

	// ErrInvalidEffortEstimate is returned when an effort estimate is not
	// a positive number of minutes.
	ErrInvalidEffortEstimate = errors.New("effort estimate must be a positive number of minutes")
)
