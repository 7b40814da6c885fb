package config

import (
	"strings"
	"testing"
)

func TestValidateRequiresIdentity(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want string
	}{
		{
			name: "missing worker name",
			cfg:  &Config{SpreadsheetID: "s", ServiceAccountFile: "f"},
			want: "WORKER_NAME",
		},
		{
			name: "missing spreadsheet id",
			cfg:  &Config{WorkerName: "w", ServiceAccountFile: "f"},
			want: "SPREADSHEET_ID",
		},
		{
			name: "missing service account file",
			cfg:  &Config{WorkerName: "w", SpreadsheetID: "s"},
			want: "SERVICE_ACCOUNT_FILE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.WorkerName = tt.cfg.WorkerName
			cfg.SpreadsheetID = tt.cfg.SpreadsheetID
			cfg.ServiceAccountFile = tt.cfg.ServiceAccountFile

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error mentioning %q, got nil", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkerName = "alpha"
	cfg.SpreadsheetID = "sheet-1"
	cfg.ServiceAccountFile = "creds.json"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsInvertedBackoff(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkerName = "alpha"
	cfg.SpreadsheetID = "sheet-1"
	cfg.ServiceAccountFile = "creds.json"
	cfg.InitialBackoff = cfg.MaxBackoff + 1

	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() = nil, want error for backoff bounds")
	}
}
