package election

import (
	"context"
	"testing"
	"time"

	"orc/gateway"
)

func TestAcquireCreatesNewLease(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewMemoryGateway()
	e, err := New(ctx, gw, "w1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ok, err := e.Acquire(ctx, "source_processor", 300*time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !ok {
		t.Fatalf("Acquire() = false, want true for an empty election")
	}
}

func TestSecondWorkerCannotAcquireHeldLease(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewMemoryGateway()
	e1, _ := New(ctx, gw, "w1")
	e2, _ := New(ctx, gw, "w2")

	ok, err := e1.Acquire(ctx, "source_processor", 300*time.Second)
	if err != nil || !ok {
		t.Fatalf("w1 Acquire() = %v, %v, want true, nil", ok, err)
	}

	ok, err = e2.Acquire(ctx, "source_processor", 300*time.Second)
	if err != nil {
		t.Fatalf("w2 Acquire: %v", err)
	}
	if ok {
		t.Fatalf("w2 Acquire() = true, want false while w1 holds an unexpired lease")
	}
}

func TestAcquireAfterExpirySucceeds(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewMemoryGateway()
	e1, _ := New(ctx, gw, "w1")
	e2, _ := New(ctx, gw, "w2")

	// w1 acquires with a lease that is already expired by the time w2 tries.
	if ok, err := e1.Acquire(ctx, "source_processor", -1*time.Second); err != nil || !ok {
		t.Fatalf("w1 Acquire() = %v, %v", ok, err)
	}

	ok, err := e2.Acquire(ctx, "source_processor", 300*time.Second)
	if err != nil {
		t.Fatalf("w2 Acquire: %v", err)
	}
	if !ok {
		t.Fatalf("w2 Acquire() = false, want true once w1's lease has expired")
	}
}

func TestReleaseLetsAnotherWorkerAcquireImmediately(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewMemoryGateway()
	e1, _ := New(ctx, gw, "w1")
	e2, _ := New(ctx, gw, "w2")

	e1.Acquire(ctx, "source_processor", 300*time.Second)
	if err := e1.Release(ctx, "source_processor"); err != nil {
		t.Fatalf("Release: %v", err)
	}

	ok, err := e2.Acquire(ctx, "source_processor", 300*time.Second)
	if err != nil || !ok {
		t.Fatalf("w2 Acquire() after release = %v, %v, want true, nil", ok, err)
	}
}

func TestRenewByHolderSucceeds(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewMemoryGateway()
	e1, _ := New(ctx, gw, "w1")

	e1.Acquire(ctx, "source_processor", 300*time.Second)
	ok, err := e1.Renew(ctx, "source_processor", 300*time.Second)
	if err != nil || !ok {
		t.Fatalf("Renew() = %v, %v, want true, nil", ok, err)
	}
}
