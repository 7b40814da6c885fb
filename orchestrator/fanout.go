package orchestrator

import (
	"context"
	"log"
	"time"

	"orc/schema"
)

const fanOutBatchSize = 10

// fanOut appends a new Task row for every video not already known
// (spec.md §4.5.4), in batches of fanOutBatchSize so a large source
// doesn't require one Append call per video (SPEC_FULL.md supplement
// 1). Entries whose video id isn't exactly 11 characters are treated
// as a single bad extractor entry, logged and skipped, rather than
// failing the whole source (spec.md §8 boundary behavior).
func (o *Orchestrator) fanOut(ctx context.Context, source schema.Source, videos []Video) (int, error) {
	existing, err := existingTaskIDs(ctx, o.gw)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	created := 0
	var batch [][]string

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := o.gw.AppendRows(ctx, schema.TasksSheet, batch); err != nil {
			return err
		}
		batch = nil
		return nil
	}

	for _, v := range videos {
		if len(v.ID) != 11 {
			log.Printf("orchestrator: skipping malformed video id %q from source %s", v.ID, source.ID)
			continue
		}
		if existing[v.ID] {
			continue
		}
		existing[v.ID] = true

		task := schema.Task{
			ID:        v.ID,
			SourceID:  source.ID,
			URL:       v.URL,
			Name:      v.Title,
			Duration:  v.Duration,
			CreatedAt: now,
			Status:    schema.Pending,
		}
		batch = append(batch, task.ToRow())
		created++

		if len(batch) >= fanOutBatchSize {
			if err := flush(); err != nil {
				return created, err
			}
		}
	}
	if err := flush(); err != nil {
		return created, err
	}

	return created, nil
}
