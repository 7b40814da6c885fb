package orchestrator

import (
	"context"
	"log"

	"orc/gateway"
)

// settle appends finalRow to destSheet and then removes rowNumber from
// pendingSheet, guarded by workerID still owning the row (spec.md
// §4.5.2 Settle). Append happens before delete so a crash between the
// two leaves the record duplicated, never lost (spec.md invariant:
// "never neither").
//
// If the guarded delete fails, settle makes a best-effort attempt to
// roll back the just-appended row so the duplicate doesn't linger
// (SPEC_FULL.md supplement 4); rollback failure is logged as CRITICAL
// and the original delete error is returned, since a stray DONE/FAILED
// row alongside an unclaimed CLAIMED-looking Pending row is tolerable
// but not silent.
func settle(ctx context.Context, gw gateway.Gateway, pendingSheet, destSheet string, rowNumber int, cols columns, workerID string, finalRow []string) error {
	if err := gw.Append(ctx, destSheet, finalRow); err != nil {
		return err
	}

	guard := &gateway.OwnershipGuard{ColumnIndex: cols.AssignedWorker, Value: workerID}
	if err := gw.DeleteRow(ctx, pendingSheet, rowNumber, guard); err != nil {
		if rbErr := rollbackAppend(ctx, gw, destSheet); rbErr != nil {
			log.Printf("orchestrator: CRITICAL: settle rollback failed for %s row %d after delete error %v: rollback error %v", pendingSheet, rowNumber, err, rbErr)
		}
		return err
	}
	return nil
}

// rollbackAppend removes the row most recently appended to sheet,
// mirroring original_source's move_row rollback that deletes
// target_ws.row_count on a failed source-row delete.
func rollbackAppend(ctx context.Context, gw gateway.Gateway, sheet string) error {
	rows, err := gw.ReadAll(ctx, sheet)
	if err != nil {
		return err
	}
	lastRow := len(rows) + 1 // header occupies row 1
	return gw.DeleteRow(ctx, sheet, lastRow, nil)
}
