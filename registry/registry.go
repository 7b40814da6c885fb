// Package registry manages a worker's identity row in the Workers
// sheet: registration/recovery, heartbeat, counters, and the
// active-worker count the Gateway's rate limiter consults.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"orc/gateway"
	"orc/schema"
)

// Registry owns the calling process's Worker row. Grounded on
// original_source/src/orc/tables/worker_table.py, adapted to spec.md
// §4.3's name-based lookup instead of the original's local UUID cache
// file (see DESIGN.md Open Question 4).
type Registry struct {
	gw gateway.Gateway

	mu     sync.Mutex
	worker schema.Worker
	row    int // 1-based row number of this worker's row
}

// New registers or recovers the row for workerName and returns a
// Registry bound to it. If a row with a matching worker_name already
// exists, its worker_id is adopted and its counters retained (spec.md
// §4.3 Register/Recover); otherwise a new UUID is generated and a new
// row appended.
func New(ctx context.Context, gw gateway.Gateway, workerName string) (*Registry, error) {
	if err := gw.EnsureHeader(ctx, schema.WorkersSheet, schema.WorkersHeader); err != nil {
		return nil, fmt.Errorf("registry: ensure header: %w", err)
	}

	rows, err := gw.ReadAll(ctx, schema.WorkersSheet)
	if err != nil {
		return nil, fmt.Errorf("registry: read workers: %w", err)
	}

	for i, row := range rows {
		if gateway.IsEmptyRow(row) {
			continue
		}
		w := schema.WorkerFromRow(row)
		if w.WorkerName == workerName {
			w.Status = schema.WorkerActive
			w.LastHeartbeat = nowISO()
			rowNumber := i + 2
			if err := gw.UpdateRow(ctx, schema.WorkersSheet, rowNumber, w.ToRow(), nil); err != nil {
				return nil, fmt.Errorf("registry: recover row: %w", err)
			}
			return &Registry{gw: gw, worker: w, row: rowNumber}, nil
		}
	}

	w := schema.Worker{
		WorkerID:      uuid.NewString(),
		WorkerName:    workerName,
		LastHeartbeat: nowISO(),
		Status:        schema.WorkerActive,
	}
	if err := gw.Append(ctx, schema.WorkersSheet, w.ToRow()); err != nil {
		return nil, fmt.Errorf("registry: register: %w", err)
	}
	return &Registry{gw: gw, worker: w, row: len(rows) + 2}, nil
}

// WorkerID returns this process's stable identifier.
func (r *Registry) WorkerID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.worker.WorkerID
}

// SendHeartbeat writes the current UTC time to this worker's
// last_heartbeat cell (spec.md §4.3).
func (r *Registry) SendHeartbeat(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.worker.LastHeartbeat = nowISO()
	return r.gw.UpdateRow(ctx, schema.WorkersSheet, r.row, r.worker.ToRow(), nil)
}

// IncrementTasks adds count to tasks_processed and persists it.
func (r *Registry) IncrementTasks(ctx context.Context, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.worker.TasksProcessed += count
	return r.gw.UpdateRow(ctx, schema.WorkersSheet, r.row, r.worker.ToRow(), nil)
}

// IncrementSources adds count to sources_processed and persists it.
func (r *Registry) IncrementSources(ctx context.Context, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.worker.SourcesProcessed += count
	return r.gw.UpdateRow(ctx, schema.WorkersSheet, r.row, r.worker.ToRow(), nil)
}

// Shutdown marks this worker INACTIVE and writes a final heartbeat
// (spec.md §5). Idempotent: calling it twice writes the same values
// again.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.worker.Status = schema.WorkerInactive
	r.worker.LastHeartbeat = nowISO()
	return r.gw.UpdateRow(ctx, schema.WorkersSheet, r.row, r.worker.ToRow(), nil)
}

// ActiveWorkers returns the number of rows whose status is ACTIVE and
// whose last_heartbeat is within activeWindow of now (spec.md §4.3).
// Workers outside the window are not deleted or marked INACTIVE by
// peers; they simply don't count here.
func (r *Registry) ActiveWorkers(ctx context.Context, activeWindow time.Duration) (int, error) {
	rows, err := r.gw.ReadAll(ctx, schema.WorkersSheet)
	if err != nil {
		return 0, fmt.Errorf("registry: active workers: %w", err)
	}

	now := time.Now().UTC()
	count := 0
	for _, row := range rows {
		if gateway.IsEmptyRow(row) {
			continue
		}
		w := schema.WorkerFromRow(row)
		if w.Status != schema.WorkerActive {
			continue
		}
		ts, err := time.Parse(time.RFC3339, w.LastHeartbeat)
		if err != nil {
			continue
		}
		if now.Sub(ts) <= activeWindow {
			count++
		}
	}
	return count, nil
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
