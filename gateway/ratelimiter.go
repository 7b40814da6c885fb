package gateway

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter enforces the Gateway's adaptive spacing (spec.md §4.1):
// at least baseInterval between calls, plus a uniform jitter in
// [0, jitterCap] where jitterCap scales with the observed active
// worker population. The base spacing reuses golang.org/x/time/rate,
// the same token-bucket library the teacher's http/ratelimit.go uses
// per-domain; here there is a single process-wide bucket, since the
// Gateway serializes all calls (§4.1 Serialization).
//
// The active worker count is pushed in via SetActiveWorkers rather
// than pulled through a callback, mirroring
// original_source/src/orc/gateway/_retry.py's module-level
// update_active_workers(count): the caller (the orchestrator's main
// loop) decides when a fresh count is worth the read, at most once a
// minute, and hands it to the limiter.
type rateLimiter struct {
	limiter   *rate.Limiter
	jitterCap time.Duration

	mu            sync.Mutex
	activeWorkers int
}

func newRateLimiter(baseInterval, jitterCap time.Duration) *rateLimiter {
	return &rateLimiter{
		limiter:       rate.NewLimiter(rate.Every(baseInterval), 1),
		jitterCap:     jitterCap,
		activeWorkers: 1,
	}
}

// Wait blocks until the base-interval token bucket admits the next
// call, then sleeps an additional worker-scaled jitter. Call sites
// must hold the Gateway's serialization lock while calling Wait, since
// the Gateway permits only one in-flight call at a time.
func (r *rateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}

	j := r.jitter()
	if j <= 0 {
		return nil
	}
	select {
	case <-time.After(j):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetActiveWorkers updates the population used to scale jitter. Values
// below 1 are floored to 1, matching update_active_workers's
// max(1, count).
func (r *rateLimiter) SetActiveWorkers(n int) {
	if n < 1 {
		n = 1
	}
	r.mu.Lock()
	r.activeWorkers = n
	r.mu.Unlock()
}

// jitter computes a uniform random delay in [0, cap], where cap is
// max(0, 0.5*(active_workers-1)) seconds, itself capped at 2.0s per
// spec.md §4.1.
func (r *rateLimiter) jitter() time.Duration {
	jitterCap := r.jitterCapNow()
	if jitterCap <= 0 {
		return 0
	}
	return time.Duration(rand.Float64() * float64(jitterCap))
}

func (r *rateLimiter) jitterCapNow() time.Duration {
	r.mu.Lock()
	active := r.activeWorkers
	r.mu.Unlock()

	scaled := time.Duration(0)
	if active > 1 {
		scaled = time.Duration(float64(time.Second) * 0.5 * float64(active-1))
	}
	if scaled > r.jitterCap {
		return r.jitterCap
	}
	return scaled
}
