package api

import (
	"errors"
	"net/http"

	"github.com/taskwell/taskwell-api/internal/api/shared"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/service"
	"github.com/taskwell/taskwell-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrWorkbenchNotFound),
		errors.Is(err, service.ErrTodoNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrAlreadyMoved),
		errors.Is(err, domain.ErrInvalidStatusTransition):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyUserInput),
		errors.Is(err, domain.ErrEmptyTaskID),
		errors.Is(err, domain.ErrInvalidTodoStatus),
		errors.Is(err, domain.ErrInvalidEffortEstimate),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Overload
	case errors.Is(err, service.ErrQueueFull):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal
// details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, service.ErrWorkbenchNotFound):
		return "Workbench entry not found"

	case errors.Is(err, service.ErrTodoNotFound):
		return "Todo not found"

	case errors.Is(err, service.ErrAlreadyMoved):
		return "Task has already been moved to todos"

	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return "Operation not allowed in the current enrichment state"

	case errors.Is(err, domain.ErrEmptyUserInput):
		return "Task input cannot be empty"

	case errors.Is(err, domain.ErrInvalidTodoStatus):
		return "Invalid todo status"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.Is(err, service.ErrQueueFull):
		return "Enrichment queue is full, try again later"

	default:
		return "An unexpected error occurred"
	}
}

// HandleServiceError writes an error response using the status code and
// safe message derived from the error.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
