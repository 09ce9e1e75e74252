// Package retry runs an operation with exponential backoff and an optional
// fallback on the final attempt.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Policy controls how many times an operation runs and how long to wait between runs.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Fallback switches the final attempt to the fallback path. Ignored when MaxAttempts is 1.
	Fallback bool
}

// DefaultPolicy mirrors the generation defaults: 3 attempts, 1s base, fallback enabled.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second, Fallback: true}
}

// Attempt describes the current try.
type Attempt struct {
	Number      int // zero-based
	UseFallback bool
}

// Delay returns the wait after the given zero-based attempt fails: BaseDelay * 2^attempt.
func (p Policy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
	}
	return d
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs op until it succeeds, returns a permanent error, the parent context
// is done, or the policy's attempts are exhausted. The last error is returned.
func Do[T any](ctx context.Context, p Policy, logger *slog.Logger, op func(ctx context.Context, a Attempt) (T, error)) (T, error) {
	var zero T
	if logger == nil {
		logger = slog.Default()
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		a := Attempt{Number: i, UseFallback: p.Fallback && attempts > 1 && i == attempts-1}
		v, err := op(ctx, a)
		if err == nil {
			return v, nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		if ctx.Err() != nil {
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
		if i == attempts-1 {
			break
		}

		delay := p.Delay(i)
		logger.Warn("attempt failed, retrying",
			"attempt", i+1,
			"max_attempts", attempts,
			"delay", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return zero, lastErr
}
