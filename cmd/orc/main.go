// Command orc runs a single worker process against a spreadsheet-backed
// coordination backend (spec.md §5, §6).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orc/config"
	"orc/extractor"
	"orc/gateway"
	"orc/orchestrator"
)

// gracefulShutdownTimeout bounds the lease-release/deregister sequence
// (Orchestrator.Shutdown) that runs once Run has returned after a
// SIGINT/SIGTERM. It does not bound an in-flight callback or its
// settle: those finish inside Run before this timeout starts.
const gracefulShutdownTimeout = 60 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "orc: configuration error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw, err := gateway.NewSheetsGateway(
		ctx, cfg.SpreadsheetID, cfg.ServiceAccountFile,
		cfg.RateBaseInterval, cfg.RateJitterCap,
		cfg.MaxRetries, cfg.InitialBackoff, cfg.MaxBackoff,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "orc: could not reach backend: %v\n", err)
		os.Exit(1)
	}

	orc, err := orchestrator.New(ctx, cfg, gw, extractor.New())
	if err != nil {
		fmt.Fprintf(os.Stderr, "orc: startup failed: %v\n", err)
		os.Exit(1)
	}

	runErr := orc.Run(ctx, defaultCallback)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := orc.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "orc: shutdown: %v\n", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		fmt.Fprintf(os.Stderr, "orc: exiting after fatal error: %v\n", runErr)
		os.Exit(1)
	}
}

// defaultCallback is the Callback wired when the embedding program
// supplies none of its own: a placeholder that simply reports success,
// since the actual per-video work (spec.md §1) is out of scope for
// this module (§1 Non-goals).
func defaultCallback(ctx context.Context, url string) error {
	return nil
}
