// Package config manages orchestrator configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the orchestrator needs to run: the three
// required identity/backend variables plus the tunables governing rate
// limiting, leases, and claim recovery.
type Config struct {
	// WorkerName is the stable per-process identifier used to locate or
	// create this worker's row in the Workers sheet.
	WorkerName string
	// SpreadsheetID is the opaque handle for the backend spreadsheet.
	SpreadsheetID string
	// ServiceAccountFile is the path to the credentials file used to
	// authenticate against the backend.
	ServiceAccountFile string

	// PollInterval is how long the main loop sleeps when neither a task
	// nor the source-processor lease could be obtained.
	PollInterval time.Duration
	// LeaseTTL is the source-processor lease lifetime.
	LeaseTTL time.Duration
	// ClaimTTL is how long a CLAIMED row may sit before it is treated as
	// abandoned and eligible for stale-claim recovery.
	ClaimTTL time.Duration
	// ActiveWindow bounds how recent a heartbeat must be for a worker to
	// count toward active_workers().
	ActiveWindow time.Duration

	// RateBaseInterval is the Gateway's minimum inter-call spacing.
	RateBaseInterval time.Duration
	// RateJitterCap bounds the additional worker-count-scaled jitter
	// added on top of RateBaseInterval.
	RateJitterCap time.Duration

	// MaxRetries is the number of retry attempts the Gateway makes on
	// transient backend errors before surfacing TransientExhausted.
	MaxRetries int
	// InitialBackoff is the first retry delay.
	InitialBackoff time.Duration
	// MaxBackoff caps the exponential retry delay.
	MaxBackoff time.Duration
}

// DefaultConfig returns configuration with the defaults spec.md names
// for every tunable.
func DefaultConfig() *Config {
	return &Config{
		PollInterval:     5 * time.Second,
		LeaseTTL:         300 * time.Second,
		ClaimTTL:         15 * time.Minute,
		ActiveWindow:     120 * time.Second,
		RateBaseInterval: 1 * time.Second,
		RateJitterCap:    2 * time.Second,
		MaxRetries:       5,
		InitialBackoff:   1 * time.Second,
		MaxBackoff:       32 * time.Second,
	}
}

// Load loads configuration from a .env file (if present), then process
// environment variables, then validates. Priority: env vars > .env file
// > defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// .env is optional; godotenv.Load only populates process env for
	// keys not already set, so real env vars always win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.WorkerName = os.Getenv("WORKER_NAME")
	cfg.SpreadsheetID = os.Getenv("SPREADSHEET_ID")
	cfg.ServiceAccountFile = os.Getenv("SERVICE_ACCOUNT_FILE")

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("ORC_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PollInterval = d
		}
	}
	if v := os.Getenv("ORC_LEASE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.LeaseTTL = d
		}
	}
	if v := os.Getenv("ORC_CLAIM_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ClaimTTL = d
		}
	}
	if v := os.Getenv("ORC_ACTIVE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ActiveWindow = d
		}
	}
	if v := os.Getenv("ORC_RATE_BASE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RateBaseInterval = d
		}
	}
	if v := os.Getenv("ORC_RATE_JITTER_CAP"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RateJitterCap = d
		}
	}
	if v := os.Getenv("ORC_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("ORC_INITIAL_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.InitialBackoff = d
		}
	}
	if v := os.Getenv("ORC_MAX_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MaxBackoff = d
		}
	}
}

// Validate checks that the required identity/backend variables are
// present and that every tunable is internally consistent.
func (c *Config) Validate() error {
	if c.WorkerName == "" {
		return fmt.Errorf("WORKER_NAME is required")
	}
	if c.SpreadsheetID == "" {
		return fmt.Errorf("SPREADSHEET_ID is required")
	}
	if c.ServiceAccountFile == "" {
		return fmt.Errorf("SERVICE_ACCOUNT_FILE is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.LeaseTTL <= 0 {
		return fmt.Errorf("lease ttl must be positive")
	}
	if c.ClaimTTL <= 0 {
		return fmt.Errorf("claim ttl must be positive")
	}
	if c.ActiveWindow <= 0 {
		return fmt.Errorf("active window must be positive")
	}
	if c.RateBaseInterval <= 0 {
		return fmt.Errorf("rate base interval must be positive")
	}
	if c.RateJitterCap < 0 {
		return fmt.Errorf("rate jitter cap must be non-negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative")
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial backoff must be positive")
	}
	if c.MaxBackoff <= 0 {
		return fmt.Errorf("max backoff must be positive")
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max backoff must be >= initial backoff")
	}
	return nil
}
