package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // Exponential backoff
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// WithRetry runs fn until it succeeds, returns a permanent error, the
// attempts run out, or ctx ends.
func WithRetry(ctx context.Context, config RetryConfig, fn func(ctx context.Context) error) error {
	attempts := config.MaxAttempts
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

		if IsPermanent(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		delay := config.Delay
		if config.Backoff {
			delay = time.Duration(1<<(attempt-1)) * config.Delay
		}
		slog.Debug("retrying", "attempt", attempt, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
