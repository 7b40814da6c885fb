package gateway

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	cfg := retryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
	attempts := 0

	err := withRetry(context.Background(), cfg, "op", func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetryDoesNotRetryPermanent(t *testing.T) {
	cfg := retryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
	attempts := 0
	permErr := &PermanentError{Kind: PermanentAuth, Op: "op", Err: errors.New("denied")}

	err := withRetry(context.Background(), cfg, "op", func(ctx context.Context) error {
		attempts++
		return permErr
	})
	if !errors.Is(err, permErr) && err != permErr {
		t.Fatalf("err = %v, want permErr", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (no retry on permanent error)", attempts)
	}
}

func TestWithRetryExhaustsToTransientExhausted(t *testing.T) {
	cfg := retryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
	attempts := 0

	err := withRetry(context.Background(), cfg, "op", func(ctx context.Context) error {
		attempts++
		return errors.New("still down")
	})

	var exhausted *TransientExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want *TransientExhaustedError", err)
	}
	if attempts != cfg.MaxRetries+1 {
		t.Fatalf("attempts = %d, want %d", attempts, cfg.MaxRetries+1)
	}
}
