package gateway

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterJitterCapScalesWithActiveWorkers(t *testing.T) {
	r := newRateLimiter(time.Second, 2*time.Second)

	if got := r.jitterCapNow(); got != 0 {
		t.Fatalf("jitterCapNow() with 1 active worker = %v, want 0", got)
	}

	r.SetActiveWorkers(3)
	// 0.5 * (3-1) = 1s
	if got := r.jitterCapNow(); got != time.Second {
		t.Fatalf("jitterCapNow() with 3 active workers = %v, want 1s", got)
	}

	r.SetActiveWorkers(9)
	// 0.5 * (9-1) = 4s, capped at jitterCap=2s
	if got := r.jitterCapNow(); got != 2*time.Second {
		t.Fatalf("jitterCapNow() with 9 active workers = %v, want 2s (capped)", got)
	}

	r.SetActiveWorkers(0)
	if got := r.jitterCapNow(); got != 0 {
		t.Fatalf("jitterCapNow() with SetActiveWorkers(0) = %v, want 0 (floored to 1)", got)
	}
}

func TestRateLimiterFirstCallDoesNotBlock(t *testing.T) {
	r := newRateLimiter(50*time.Millisecond, 0)
	start := time.Now()
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Fatalf("first Wait() blocked, want immediate return")
	}
}

func TestRateLimiterWaitRespectsContextCancellation(t *testing.T) {
	r := newRateLimiter(time.Hour, 0)
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Wait(ctx); err == nil {
		t.Fatalf("Wait() with an exhausted bucket and a short deadline = nil, want an error")
	}
}
