// Package election implements lease-based leader election over the
// Leader Election sheet (spec.md §4.4), grounded almost directly on
// original_source/src/orc/gateway/leader.py.
package election

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"orc/gateway"
	"orc/schema"
)

// readBackBase is the base interval for the read-back confirmation
// jitter: uniformly [0.5*base, 1.5*base] seconds (spec.md §4.4). Per
// DESIGN.md Open Question 1, this does NOT scale with active_workers —
// only the Gateway's rate-limit jitter does.
const readBackBase = 2 * time.Second

// Election acquires, renews, and releases named leases for a single
// worker identity.
type Election struct {
	gw       gateway.Gateway
	workerID string
}

// New returns an Election bound to workerID. The Leader Election sheet
// is created with its header on first use.
func New(ctx context.Context, gw gateway.Gateway, workerID string) (*Election, error) {
	if err := gw.EnsureHeader(ctx, schema.LeaderElectionSheet, schema.LeaderElectionHeader); err != nil {
		return nil, fmt.Errorf("election: ensure header: %w", err)
	}
	return &Election{gw: gw, workerID: workerID}, nil
}

// Acquire attempts to become the holder of electionName with the given
// ttl (spec.md §4.4 steps 1-6). It returns true iff the read-back
// confirmation shows this worker as the holder with the expiry it
// wrote.
func (e *Election) Acquire(ctx context.Context, electionName string, ttl time.Duration) (bool, error) {
	rows, err := e.gw.ReadAll(ctx, schema.LeaderElectionSheet)
	if err != nil {
		return false, fmt.Errorf("election: read: %w", err)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	rowIndex := -1
	var lease schema.Lease
	for i, row := range rows {
		if gateway.IsEmptyRow(row) {
			continue
		}
		l := schema.LeaseFromRow(row)
		if l.ElectionName == electionName {
			rowIndex = i
			lease = l
			break
		}
	}

	if rowIndex == -1 {
		newLease := schema.Lease{ElectionName: electionName, Holder: e.workerID, ExpiresAt: formatTime(expiresAt)}
		if err := e.gw.Append(ctx, schema.LeaderElectionSheet, newLease.ToRow()); err != nil {
			return false, fmt.Errorf("election: append: %w", err)
		}
		return e.confirm(ctx, electionName, expiresAt)
	}

	currentExpiry, _ := parseTime(lease.ExpiresAt)
	shouldWrite := lease.Holder == e.workerID || !currentExpiry.After(now)
	if !shouldWrite {
		return false, nil
	}

	rowNumber := rowIndex + 2
	updated := schema.Lease{ElectionName: electionName, Holder: e.workerID, ExpiresAt: formatTime(expiresAt)}
	if err := e.gw.UpdateRow(ctx, schema.LeaderElectionSheet, rowNumber, updated.ToRow(), nil); err != nil {
		return false, fmt.Errorf("election: write: %w", err)
	}

	return e.confirm(ctx, electionName, expiresAt)
}

// Renew is Acquire with the same precondition; on confirmation failure
// the caller must treat the lease as lost (spec.md §4.4 Renew).
func (e *Election) Renew(ctx context.Context, electionName string, ttl time.Duration) (bool, error) {
	return e.Acquire(ctx, electionName, ttl)
}

// Release overwrites expires_at with a timestamp in the past so
// another worker need not wait out the TTL (spec.md §4.4 Release).
// Non-critical: a crash before Release leaves the lease to expire
// naturally.
func (e *Election) Release(ctx context.Context, electionName string) error {
	rows, err := e.gw.ReadAll(ctx, schema.LeaderElectionSheet)
	if err != nil {
		return fmt.Errorf("election: read: %w", err)
	}
	for i, row := range rows {
		if gateway.IsEmptyRow(row) {
			continue
		}
		l := schema.LeaseFromRow(row)
		if l.ElectionName != electionName || l.Holder != e.workerID {
			continue
		}
		l.ExpiresAt = formatTime(time.Now().UTC().Add(-1 * time.Second))
		return e.gw.UpdateRow(ctx, schema.LeaderElectionSheet, i+2, l.ToRow(), nil)
	}
	return nil
}

// confirm is the read-back confirmation: wait a jittered interval,
// re-read, and hold the lease iff holder and expiry match what was
// just written (spec.md §4.4 Lost-Update Window).
func (e *Election) confirm(ctx context.Context, electionName string, expiresAt time.Time) (bool, error) {
	time.Sleep(jitteredReadBack())

	rows, err := e.gw.ReadAll(ctx, schema.LeaderElectionSheet)
	if err != nil {
		return false, fmt.Errorf("election: confirm read: %w", err)
	}
	for _, row := range rows {
		if gateway.IsEmptyRow(row) {
			continue
		}
		l := schema.LeaseFromRow(row)
		if l.ElectionName != electionName {
			continue
		}
		return l.Holder == e.workerID && l.ExpiresAt == formatTime(expiresAt), nil
	}
	return false, nil
}

func jitteredReadBack() time.Duration {
	lo := float64(readBackBase) * 0.5
	hi := float64(readBackBase) * 1.5
	return time.Duration(lo + rand.Float64()*(hi-lo))
}

func formatTime(t time.Time) string { return t.Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }
