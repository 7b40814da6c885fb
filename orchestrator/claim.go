package orchestrator

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"orc/gateway"
	"orc/schema"
)

// claimReadBackBase mirrors election.readBackBase: the claim protocol
// uses the same read-back-confirmation shape as lease acquisition
// (spec.md §4.5.1, original_source's pop_first_row_by_columns).
const claimReadBackBase = 2 * time.Second

// claimRow scans sheet top to bottom for the first row that is either
// unclaimed PENDING or a CLAIMED row whose claimed_at is older than
// claimTTL (stale-claim recovery, spec.md §7), writes workerID as its
// assigned_worker and CLAIMED as its status, and confirms the write
// with a jittered read-back before declaring victory. Rows lost to a
// concurrent claimant (ErrOwnershipLost, or a read-back that shows
// another worker's claim) are skipped in favor of the next candidate,
// exactly as original_source's pop_first_row_by_columns does. Any other
// error — in particular a *gateway.PermanentError — is fatal per
// spec.md §7 and is returned to the caller immediately instead of being
// treated as a lost race.
func claimRow(ctx context.Context, gw gateway.Gateway, sheet string, cols columns, workerID string, claimTTL time.Duration) (rowNumber int, row []string, ok bool, err error) {
	rows, err := gw.ReadAll(ctx, sheet)
	if err != nil {
		return 0, nil, false, err
	}

	now := time.Now().UTC()

	for i, candidate := range rows {
		if gateway.IsEmptyRow(candidate) {
			continue
		}

		status := schema.PipelineStatus(cellAt(candidate, cols.Status))
		assigned := cellAt(candidate, cols.AssignedWorker)

		claimable := false
		switch {
		case status == schema.Pending && assigned == "":
			claimable = true
		case status == schema.Claimed:
			claimedAt, perr := time.Parse(time.RFC3339, cellAt(candidate, cols.ClaimedAt))
			if perr == nil && now.Sub(claimedAt) > claimTTL {
				claimable = true
			}
		}
		if !claimable {
			continue
		}

		n := i + 2
		width := len(candidate)
		if cols.AssignedWorker+1 > width {
			width = cols.AssignedWorker + 1
		}
		attempt := padTo(candidate, width)
		attempt[cols.Status] = string(schema.Claimed)
		attempt[cols.AssignedWorker] = workerID
		attempt[cols.ClaimedAt] = now.Format(time.RFC3339)

		if err := gw.UpdateRow(ctx, sheet, n, attempt, nil); err != nil {
			if errors.Is(err, gateway.ErrOwnershipLost) {
				continue
			}
			return 0, nil, false, err
		}

		time.Sleep(jitteredClaimReadBack())

		confirmed, err := gw.GetRow(ctx, sheet, n)
		if err != nil {
			if errors.Is(err, gateway.ErrOwnershipLost) {
				continue
			}
			return 0, nil, false, err
		}
		if cellAt(confirmed, cols.AssignedWorker) == workerID && schema.PipelineStatus(cellAt(confirmed, cols.Status)) == schema.Claimed {
			return n, confirmed, true, nil
		}
		// Lost the race to a faster claimant's own read-back window;
		// try the next candidate.
	}

	return 0, nil, false, nil
}

func jitteredClaimReadBack() time.Duration {
	lo := float64(claimReadBackBase) * 0.5
	hi := float64(claimReadBackBase) * 1.5
	return time.Duration(lo + rand.Float64()*(hi-lo))
}
