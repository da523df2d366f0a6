package common

import (
	"context"
	"time"
)

// RetryWithBackoff runs fn up to attempts times, sleeping between tries
// with an exponentially growing delay (baseDelay, then doubled after each
// failure). The whole operation is retried, not individual sub-steps, and
// the caller blocks for the sleep duration. Cancelling ctx stops further
// attempts.
func RetryWithBackoff[T any](ctx context.Context, attempts int, baseDelay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	if attempts <= 0 {
		return zero, Errorf("attempts must be > 0, got %d", attempts)
	}

	var lastErr error
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return zero, Errorf("after %d attempts: %w", attempts, lastErr)
}
