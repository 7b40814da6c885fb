package registry

import (
	"context"
	"testing"
	"time"

	"orc/gateway"
	"orc/schema"
)

func TestNewRegistersNewWorker(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewMemoryGateway()

	r, err := New(ctx, gw, "alpha")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.WorkerID() == "" {
		t.Fatalf("WorkerID() is empty")
	}

	rows, _ := gw.ReadAll(ctx, schema.WorkersSheet)
	if len(rows) != 1 {
		t.Fatalf("got %d worker rows, want 1", len(rows))
	}
	w := schema.WorkerFromRow(rows[0])
	if w.WorkerName != "alpha" || w.Status != schema.WorkerActive {
		t.Fatalf("worker row = %+v, want name=alpha status=ACTIVE", w)
	}
}

func TestNewRecoversExistingWorkerByName(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewMemoryGateway()

	first, err := New(ctx, gw, "alpha")
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	first.IncrementTasks(ctx, 5)
	firstID := first.WorkerID()

	second, err := New(ctx, gw, "alpha")
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	if second.WorkerID() != firstID {
		t.Fatalf("WorkerID() = %q, want recovered id %q", second.WorkerID(), firstID)
	}

	rows, _ := gw.ReadAll(ctx, schema.WorkersSheet)
	if len(rows) != 1 {
		t.Fatalf("got %d worker rows, want 1 (recover must not duplicate)", len(rows))
	}
	w := schema.WorkerFromRow(rows[0])
	if w.TasksProcessed != 5 {
		t.Fatalf("TasksProcessed = %d, want 5 (counters retained across restart)", w.TasksProcessed)
	}
}

func TestActiveWorkersExcludesStaleHeartbeat(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewMemoryGateway()

	r, _ := New(ctx, gw, "alpha")

	// A peer still marked ACTIVE whose heartbeat is outside the window.
	stale := schema.Worker{
		WorkerID: "old", WorkerName: "beta", Status: schema.WorkerActive,
		LastHeartbeat: time.Now().UTC().Add(-10 * time.Minute).Format(time.RFC3339),
	}
	gw.Append(ctx, schema.WorkersSheet, stale.ToRow())

	count, err := r.ActiveWorkers(ctx, 120*time.Second)
	if err != nil {
		t.Fatalf("ActiveWorkers: %v", err)
	}
	if count != 1 {
		t.Fatalf("ActiveWorkers() = %d, want 1", count)
	}

	r.Shutdown(ctx)
	count, _ = r.ActiveWorkers(ctx, 120*time.Second)
	if count != 0 {
		t.Fatalf("ActiveWorkers() after shutdown = %d, want 0", count)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewMemoryGateway()
	r, _ := New(ctx, gw, "alpha")

	if err := r.Shutdown(ctx); err != nil {
		t.Fatalf("first Shutdown: %v", err)
	}
	if err := r.Shutdown(ctx); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}
