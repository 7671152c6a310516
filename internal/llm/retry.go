package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryPolicy controls the exponential backoff applied around gateway
// calls. The policy is invoked by callers (the enrichment pipeline), not
// buried inside gateway implementations, so tests and one-shot tools can
// call the gateway without it.
type RetryPolicy struct {
	// MaxRetries is the number of re-attempts after the first call.
	// Zero means a single attempt.
	MaxRetries int

	// BaseDelay is the delay before the first retry; it doubles on each
	// subsequent attempt.
	BaseDelay time.Duration
}

// Delay computes the wait before retry number attempt (0-based). When the
// triggering error carries a retry-after hint, the actual delay is the max
// of the computed backoff and the hint.
func (p RetryPolicy) Delay(attempt int, err error) time.Duration {
	delay := p.BaseDelay << uint(attempt)
	if hint := RetryAfterHint(err); hint > delay {
		delay = hint
	}
	return delay
}

// WithRetry invokes fn, re-attempting per the policy when the returned
// error is a retryable GatewayError. Non-retryable errors abort immediately
// without consuming the retry budget; exhausting the budget surfaces the
// last error. Waits respect context cancellation.
func WithRetry[T any](
	ctx context.Context,
	logger *slog.Logger,
	policy RetryPolicy,
	operation string,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			logger.Error("gateway call failed with non-retryable error",
				"operation", operation,
				"attempt", attempt+1,
				"error", err)
			return zero, err
		}

		if attempt >= policy.MaxRetries {
			logger.Warn("gateway retry budget exhausted",
				"operation", operation,
				"attempts", attempt+1,
				"error", err)
			return zero, fmt.Errorf("%s failed after %d attempts: %w", operation, attempt+1, err)
		}

		delay := policy.Delay(attempt, err)
		logger.Warn("gateway call failed, retrying",
			"operation", operation,
			"attempt", attempt+1,
			"max_attempts", policy.MaxRetries+1,
			"delay", delay,
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, fmt.Errorf("%s cancelled during retry delay: %w (last error: %v)",
				operation, ctx.Err(), lastErr)
		}
	}
}
