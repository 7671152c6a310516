package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/taskwell/taskwell-api/internal/llm"
	"google.golang.org/genai"
)

// defaultRetryAfter is the wait applied to rate-limit errors when the
// provider does not suggest one.
const defaultRetryAfter = 60 * time.Second

// classifyError converts a raw provider error into a classified
// llm.GatewayError. Classification is uniform for both gateway operations:
// authentication failures are terminal, rate limits and provider
// unavailability are retryable, timeouts are retryable, anything
// unrecognized is surfaced verbatim as non-retryable.
func classifyError(err error) *llm.GatewayError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &llm.GatewayError{
			Message:   "Gemini API timeout",
			Retryable: true,
			Err:       err,
		}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return &llm.GatewayError{
				Message:    "Gemini API authentication failed, check your API key",
				StatusCode: http.StatusUnauthorized,
				ErrorCode:  apiErr.Status,
				Retryable:  false,
				Err:        err,
			}
		case apiErr.Code == http.StatusTooManyRequests:
			return &llm.GatewayError{
				Message:    "rate limit exceeded",
				StatusCode: http.StatusTooManyRequests,
				ErrorCode:  apiErr.Status,
				RetryAfter: defaultRetryAfter,
				Retryable:  true,
				Err:        err,
			}
		case apiErr.Code >= http.StatusInternalServerError:
			return &llm.GatewayError{
				Message:    "Gemini service temporarily unavailable",
				StatusCode: apiErr.Code,
				ErrorCode:  apiErr.Status,
				Retryable:  true,
				Err:        err,
			}
		}
	}

	// Fall back to message inspection for transports that do not surface a
	// structured APIError.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "api key"):
		return &llm.GatewayError{
			Message:    "Gemini API authentication failed, check your API key",
			StatusCode: http.StatusUnauthorized,
			Retryable:  false,
			Err:        err,
		}
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota"):
		return &llm.GatewayError{
			Message:    "rate limit exceeded",
			StatusCode: http.StatusTooManyRequests,
			RetryAfter: defaultRetryAfter,
			Retryable:  true,
			Err:        err,
		}
	case strings.Contains(msg, "server error") || strings.Contains(msg, "503") ||
		strings.Contains(msg, "unavailable"):
		status := http.StatusServiceUnavailable
		if strings.Contains(msg, "500") {
			status = http.StatusInternalServerError
		}
		return &llm.GatewayError{
			Message:    "Gemini service temporarily unavailable",
			StatusCode: status,
			Retryable:  true,
			Err:        err,
		}
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return &llm.GatewayError{
			Message:   "Gemini API timeout",
			Retryable: true,
			Err:       err,
		}
	default:
		return &llm.GatewayError{
			Message:   err.Error(),
			Retryable: false,
			Err:       err,
		}
	}
}
