// Package orc drives a single worker in a fleet that coordinates
// through a spreadsheet backend: claiming Sources and Tasks, extracting
// video lists, fanning them out, and settling results to history or a
// dead-letter queue.
//
// Overview
//
// orc wires four independent packages behind the Orchestrator type:
//
//   - gateway: rate-limited, retried access to the spreadsheet backend
//   - registry: worker registration, heartbeats, active-worker counts
//   - election: the source-processor lease
//   - extractor: pluggable video-listing (a yt-dlp subprocess by default)
//
// Quick Start
//
// Run a worker against a live spreadsheet:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	gw, err := gateway.NewSheetsGateway(ctx, cfg.SpreadsheetID, cfg.ServiceAccountFile,
//		cfg.RateBaseInterval, cfg.RateJitterCap, cfg.MaxRetries, cfg.InitialBackoff, cfg.MaxBackoff)
//	if err != nil {
//		log.Fatal(err)
//	}
//	worker, err := orchestrator.New(ctx, cfg, gw, extractor.New())
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = worker.Run(ctx, myCallback)
//
// Configuration
//
// orc loads settings from environment variables, optionally sourced from
// a .env file (github.com/joho/godotenv), with defaults for every
// tunable except the three required fields:
//
//   - WORKER_NAME, SPREADSHEET_ID, SERVICE_ACCOUNT_FILE (required)
//   - ORC_CLAIM_TTL, ORC_LEASE_TTL, ORC_POLL_INTERVAL, ORC_ACTIVE_WINDOW
//   - ORC_RATE_BASE_INTERVAL, ORC_RATE_JITTER_CAP
//   - ORC_MAX_RETRIES, ORC_INITIAL_BACKOFF, ORC_MAX_BACKOFF
//
// Error Handling
//
// Every operation returns errors implementing standard Go error
// handling. Checking for a sentinel:
//
//	if errors.Is(err, orc.ErrOwnershipLost) {
//		// lost a claim race, not a fatal condition
//	}
//
// Extracting a wrapped error's details:
//
//	var perm *orc.PermanentError
//	if errors.As(err, &perm) {
//		fmt.Printf("%s failed permanently: %v\n", perm.Op, perm.Err)
//	}
//
// A TransientExhaustedError means every retry against the backend was
// exhausted; the orchestrator's main loop logs it and moves on to the
// next iteration rather than treating it as a row failure.
//
// Dependencies
//
// The default extractor.New() requires yt-dlp on PATH; set its Path
// field directly to point at a different binary. Install yt-dlp:
// https://github.com/yt-dlp/yt-dlp
package orc
