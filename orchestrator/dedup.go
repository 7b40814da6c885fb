package orchestrator

import (
	"context"
	"fmt"

	"orc/gateway"
	"orc/schema"
)

// existingTaskIDs returns every Task id already present in Tasks,
// Tasks History, or Tasks DLQ (spec.md §4.5.3 dedup), read one column
// at a time so a large backlog doesn't require reading full rows.
func existingTaskIDs(ctx context.Context, gw gateway.Gateway) (map[string]bool, error) {
	ids := make(map[string]bool)
	for _, sheet := range []string{schema.TasksSheet, schema.TasksHistorySheet, schema.TasksDLQSheet} {
		values, err := gw.ReadColumn(ctx, sheet, 0)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: dedup read %s: %w", sheet, err)
		}
		for _, v := range values {
			if v != "" {
				ids[v] = true
			}
		}
	}
	return ids, nil
}
