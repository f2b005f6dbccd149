package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // linear backoff: attempt * Delay

	// Retryable decides whether an error is worth another attempt. Nil
	// retries every error.
	Retryable func(error) bool
}

// Do runs fn until it succeeds, the policy gives up, or ctx is done.
func Do(ctx context.Context, p Policy, op string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == attempts || (p.Retryable != nil && !p.Retryable(err)) {
			break
		}

		delay := p.Delay
		if p.Backoff {
			delay = time.Duration(attempt) * p.Delay
		}
		slog.Debug("Retrying", "op", op, "attempt", attempt, "max_attempts", attempts, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}
