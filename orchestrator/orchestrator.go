// Package orchestrator drives the claim/settle/fan-out state machine
// and the main worker loop (spec.md §4.5), grounded on
// original_source/src/orc/orchestrator.py.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"orc/config"
	"orc/election"
	"orc/gateway"
	"orc/registry"
	"orc/schema"
)

// sourceProcessorLease is the single named lease source processing
// competes for (spec.md §4.4, §4.5.4).
const sourceProcessorLease = "source_processor"

// leaseRenewInterval is how often a held lease is renewed by the main
// loop (spec.md §4.5.4 point 1).
const leaseRenewInterval = 60 * time.Second

// Orchestrator is the programmatic surface an embedding program drives
// (spec.md §6): it owns this process's worker identity, the
// source-processor election, and the claim/settle pipeline for both
// Sources and Tasks.
type Orchestrator struct {
	gw        gateway.Gateway
	reg       *registry.Registry
	el        *election.Election
	extractor Extractor
	cfg       *config.Config

	holdingLease bool
	lastRenew    time.Time

	lastActiveWorkersRefresh time.Time
}

// activeWorkersRefreshInterval bounds how often the main loop re-reads
// the Workers sheet to refresh the Gateway's rate-limiter jitter
// (spec.md §4.1: "no more than once per minute").
const activeWorkersRefreshInterval = time.Minute

// New wires a Gateway, this process's Registry entry, its Election, and
// the caller's Extractor into an Orchestrator, ensuring every sheet's
// header exists first.
func New(ctx context.Context, cfg *config.Config, gw gateway.Gateway, extractor Extractor) (*Orchestrator, error) {
	headers := []struct {
		sheet  string
		header []string
	}{
		{schema.SourcesSheet, schema.SourcesHeader},
		{schema.SourcesHistorySheet, schema.SourcesHeader},
		{schema.SourcesDLQSheet, schema.SourcesDLQHeader},
		{schema.TasksSheet, schema.TasksHeader},
		{schema.TasksHistorySheet, schema.TasksHeader},
		{schema.TasksDLQSheet, schema.TasksDLQHeader},
	}
	for _, h := range headers {
		if err := gw.EnsureHeader(ctx, h.sheet, h.header); err != nil {
			return nil, fmt.Errorf("orchestrator: ensure header %s: %w", h.sheet, err)
		}
	}

	reg, err := registry.New(ctx, gw, cfg.WorkerName)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: registry: %w", err)
	}

	el, err := election.New(ctx, gw, reg.WorkerID())
	if err != nil {
		return nil, fmt.Errorf("orchestrator: election: %w", err)
	}

	return &Orchestrator{gw: gw, reg: reg, el: el, extractor: extractor, cfg: cfg}, nil
}

// SendHeartbeat writes this worker's current heartbeat (spec.md §4.3).
func (o *Orchestrator) SendHeartbeat(ctx context.Context) error {
	return o.reg.SendHeartbeat(ctx)
}

// Shutdown marks this worker INACTIVE and releases the source-processor
// lease if held (spec.md §5).
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	if o.holdingLease {
		if err := o.el.Release(ctx, sourceProcessorLease); err != nil {
			log.Printf("orchestrator: release lease on shutdown: %v", err)
		}
		o.holdingLease = false
	}
	return o.reg.Shutdown(ctx)
}

// ProcessNextTask claims one Task row, if any is available, runs
// callback against its url, and settles the row to Tasks History or
// Tasks DLQ depending on the outcome (spec.md §4.5.1, §4.5.2). It
// returns false with a nil error when no claimable Task exists.
func (o *Orchestrator) ProcessNextTask(ctx context.Context, callback Callback) (bool, error) {
	rowNumber, row, ok, err := claimRow(ctx, o.gw, schema.TasksSheet, taskColumns, o.reg.WorkerID(), o.cfg.ClaimTTL)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	task := schema.TaskFromRow(row)
	cbErr := runCallback(ctx, callback, task.URL)
	now := time.Now().UTC().Format(time.RFC3339)
	task.CompletedAt = now

	// The settle that follows a completed callback must not be cut short
	// by a signal that lands mid-callback: ctx is only used for polling
	// and for the callback itself, never for the write that records its
	// outcome (spec.md §5).
	settleCtx := context.WithoutCancel(ctx)

	if cbErr == nil {
		task.Status = schema.Done
		if err := settle(settleCtx, o.gw, schema.TasksSheet, schema.TasksHistorySheet, rowNumber, taskColumns, o.reg.WorkerID(), task.ToRow()); err != nil {
			if isPermanent(err) {
				return true, err
			}
			log.Printf("orchestrator: settle task %s to history: %v", task.ID, err)
		}
		if err := o.reg.IncrementTasks(settleCtx, 1); err != nil {
			if isPermanent(err) {
				return true, err
			}
			log.Printf("orchestrator: increment tasks_processed: %v", err)
		}
		return true, nil
	}

	task.Status = schema.Failed
	task.Error = cbErr.Error()
	if err := settle(settleCtx, o.gw, schema.TasksSheet, schema.TasksDLQSheet, rowNumber, taskColumns, o.reg.WorkerID(), task.ToDLQRow()); err != nil {
		if isPermanent(err) {
			return true, err
		}
		log.Printf("orchestrator: settle task %s to DLQ: %v", task.ID, err)
	}
	return true, nil
}

// isPermanent reports whether err is a *gateway.PermanentError: fatal to
// the worker per spec.md §7, and never something claimRow's or settle's
// callers should log-and-continue past.
func isPermanent(err error) bool {
	var perm *gateway.PermanentError
	return errors.As(err, &perm)
}

// runCallback invokes callback, converting a panic into an error the
// way a raised exception in the callback becomes a FAILED task in
// original_source: the row still settles to the DLQ instead of
// crashing the worker.
func runCallback(ctx context.Context, callback Callback, url string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panicked: %v", r)
		}
	}()
	return callback(ctx, url)
}

// processOneSource claims one Source row, if any is available,
// extracts it, fans its videos out into new Tasks, and settles the
// row (spec.md §4.5.4). It returns false with a nil error when no
// claimable Source exists.
func (o *Orchestrator) processOneSource(ctx context.Context) (bool, error) {
	rowNumber, row, ok, err := claimRow(ctx, o.gw, schema.SourcesSheet, sourceColumns, o.reg.WorkerID(), o.cfg.ClaimTTL)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	source := schema.SourceFromRow(row)
	if source.ID == "" {
		source.ID = uuid.NewString()
		guard := &gateway.OwnershipGuard{ColumnIndex: sourceColumns.AssignedWorker, Value: o.reg.WorkerID()}
		if err := o.gw.UpdateRow(ctx, schema.SourcesSheet, rowNumber, source.ToRow(), guard); err != nil {
			if isPermanent(err) {
				return true, err
			}
			log.Printf("orchestrator: assign source id: %v", err)
		}
	}

	result, extractErr := o.extractor.Extract(ctx, source.URL)
	now := time.Now().UTC().Format(time.RFC3339)

	// As in ProcessNextTask, the settle that follows extraction/fan-out
	// must complete even if ctx was canceled while extraction was
	// running (spec.md §5).
	settleCtx := context.WithoutCancel(ctx)

	if extractErr != nil {
		source.Status = schema.Failed
		source.CompletedAt = now
		source.Error = extractErr.Error()
		if err := settle(settleCtx, o.gw, schema.SourcesSheet, schema.SourcesDLQSheet, rowNumber, sourceColumns, o.reg.WorkerID(), source.ToDLQRow()); err != nil {
			if isPermanent(err) {
				return true, err
			}
			log.Printf("orchestrator: settle source %s to DLQ: %v", source.ID, err)
		}
		return true, nil
	}

	if _, err := o.fanOut(ctx, source, result.Videos); err != nil {
		return true, fmt.Errorf("orchestrator: fan out source %s: %w", source.ID, err)
	}

	source.Name = result.Name
	source.VideoCount = strconv.Itoa(len(result.Videos))
	source.Status = schema.Done
	source.CompletedAt = now
	if err := settle(settleCtx, o.gw, schema.SourcesSheet, schema.SourcesHistorySheet, rowNumber, sourceColumns, o.reg.WorkerID(), source.ToRow()); err != nil {
		if isPermanent(err) {
			return true, err
		}
		log.Printf("orchestrator: settle source %s to history: %v", source.ID, err)
	}
	if err := o.reg.IncrementSources(settleCtx, 1); err != nil {
		if isPermanent(err) {
			return true, err
		}
		log.Printf("orchestrator: increment sources_processed: %v", err)
	}

	return true, nil
}

// Run drives the main loop (spec.md §4.5.5): heartbeat, then try a
// Task, then try to hold the source-processor lease and process one
// Source, else sleep poll_interval. It returns nil when it observes ctx
// canceled between iterations or while sleeping, without invoking a
// fresh callback or calling Shutdown; a cancellation that instead
// surfaces as the error of a Gateway call made during an iteration is
// returned as that error. Callers own the graceful
// shutdown sequence and its 60s cap by calling Shutdown themselves once
// Run returns. A callback already in flight when ctx is canceled always
// finishes, and the settle that records its outcome runs on a
// context.WithoutCancel derivative of ctx so it is never aborted by the
// same signal that is winding the loop down (spec.md §5): a signal
// arriving mid-callback lets the callback finish and its row settle
// before Run's next iteration observes ctx.Err() and returns. Run
// returns non-nil immediately on any error from the task or source
// pass other than a *gateway.TransientExhaustedError, in particular a
// permanent error from the Gateway.
func (o *Orchestrator) Run(ctx context.Context, callback Callback) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := o.SendHeartbeat(ctx); err != nil {
			log.Printf("orchestrator: heartbeat: %v", err)
		}

		o.refreshActiveWorkers(ctx)

		did, err := o.ProcessNextTask(ctx, callback)
		if err != nil {
			if !isTransientExhausted(err) {
				return err
			}
			log.Printf("orchestrator: task claim: %v", err)
		}
		if did {
			continue
		}

		if o.holdingLease && time.Since(o.lastRenew) >= leaseRenewInterval {
			ok, err := o.el.Renew(ctx, sourceProcessorLease, o.cfg.LeaseTTL)
			if err != nil || !ok {
				if err != nil {
					log.Printf("orchestrator: renew lease: %v", err)
				}
				o.holdingLease = false
			} else {
				o.lastRenew = time.Now()
			}
		}

		if !o.holdingLease {
			ok, err := o.el.Acquire(ctx, sourceProcessorLease, o.cfg.LeaseTTL)
			if err != nil {
				log.Printf("orchestrator: acquire lease: %v", err)
			} else if ok {
				o.holdingLease = true
				o.lastRenew = time.Now()
			}
		}

		if o.holdingLease {
			didSource, err := o.processOneSource(ctx)
			if err != nil {
				if !isTransientExhausted(err) {
					return err
				}
				log.Printf("orchestrator: source claim: %v", err)
			}
			if didSource {
				continue
			}
			if err := o.el.Release(ctx, sourceProcessorLease); err != nil {
				log.Printf("orchestrator: release lease: %v", err)
			}
			o.holdingLease = false
			continue
		}

		select {
		case <-time.After(o.cfg.PollInterval):
		case <-ctx.Done():
			return nil
		}
	}
}

// refreshActiveWorkers re-reads the Workers sheet at most once every
// activeWorkersRefreshInterval and pushes the count to the Gateway's
// rate limiter (SPEC_FULL.md supplement 5).
func (o *Orchestrator) refreshActiveWorkers(ctx context.Context) {
	if time.Since(o.lastActiveWorkersRefresh) < activeWorkersRefreshInterval {
		return
	}
	n, err := o.reg.ActiveWorkers(ctx, o.cfg.ActiveWindow)
	if err != nil {
		log.Printf("orchestrator: refresh active workers: %v", err)
		return
	}
	o.gw.SetActiveWorkers(n)
	o.lastActiveWorkersRefresh = time.Now()
}

func isTransientExhausted(err error) bool {
	var te *gateway.TransientExhaustedError
	return errors.As(err, &te)
}
