package gateway

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// retryConfig holds the Gateway's bounded exponential backoff settings
// (spec.md §4.1): retries start at InitialBackoff, double each
// attempt, cap at MaxBackoff, up to MaxRetries attempts.
type retryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// isTransient reports whether an error returned by a single backend call
// should be retried. Permanent errors (an already-classified
// *PermanentError, or context cancellation or deadline) are never retried.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var perm *PermanentError
	if errors.As(err, &perm) {
		return false
	}
	return true
}

// withRetry runs fn, retrying transient failures with jittered
// exponential backoff. A permanent error returns immediately. Exhausted
// retries on a transient error return a *TransientExhaustedError
// wrapping the last attempt's error.
func withRetry(ctx context.Context, cfg retryConfig, op string, fn func(context.Context) error) error {
	var lastErr error
	backoff := cfg.InitialBackoff

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTransient(err) {
			return err
		}

		if attempt == cfg.MaxRetries {
			break
		}

		sleep := backoff + jitter(backoff, 0.2)
		if sleep > cfg.MaxBackoff {
			sleep = cfg.MaxBackoff
		}

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff = time.Duration(float64(backoff) * 2)
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	return &TransientExhaustedError{Op: op, Attempts: cfg.MaxRetries + 1, Err: lastErr}
}

// jitter returns a random duration in [-fraction*d, +fraction*d].
func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return 0
	}
	span := float64(d) * fraction
	return time.Duration((rand.Float64()*2 - 1) * span)
}
