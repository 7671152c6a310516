package llm

import (
	"errors"
	"fmt"
	"time"
)

// Common errors returned by gateway implementations.
var (
	// ErrEmptyInput is returned when a caller passes empty or
	// whitespace-only text to a gateway operation. Always synchronous,
	// never retried.
	ErrEmptyInput = errors.New("input text cannot be empty")

	// ErrInvalidConfig is returned when gateway configuration is invalid.
	// Construction fails fast on it; it never appears at call time.
	ErrInvalidConfig = errors.New("invalid gateway configuration")

	// ErrInvalidResponse is returned when the provider's response cannot be
	// parsed or is malformed. Never retryable.
	ErrInvalidResponse = errors.New("invalid response from language model")
)

// GatewayError is a classified failure of an external LLM call. The
// Retryable flag drives the retry policy; StatusCode, ErrorCode and
// RetryAfter carry optional provider detail.
type GatewayError struct {
	// Message is the human-readable description of the failure.
	Message string
	// StatusCode is the provider HTTP status, 0 when unknown.
	StatusCode int
	// ErrorCode is the provider-specific structured error code, if any.
	ErrorCode string
	// RetryAfter is the provider-suggested wait before retrying, 0 when no
	// hint was given. Only meaningful when Retryable is true.
	RetryAfter time.Duration
	// Retryable reports whether the retry policy may re-attempt the call.
	Retryable bool
	// Err is the originating error, if any.
	Err error
}

// Error implements the error interface for GatewayError.
func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway error: %s", e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a GatewayError marked retryable.
// Validation errors and anything unclassified are not retryable.
func IsRetryable(err error) bool {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Retryable
	}
	return false
}

// RetryAfterHint extracts the provider-suggested retry delay from err,
// returning 0 when err carries none.
func RetryAfterHint(err error) time.Duration {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.RetryAfter
	}
	return 0
}
