// Package extractor defines the Extractor contract the orchestrator
// consumes (spec.md §1, §6) and a yt-dlp-subprocess implementation of
// it, grounded on
// _examples/jsight-ytsync/internal/youtube/ytdlp.go.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"orc/internal/retry"
	"orc/orchestrator"
)

const (
	defaultPath    = "yt-dlp"
	defaultTimeout = 10 * time.Minute
)

// Sentinel errors a yt-dlp run can surface; ErrNotInstalled and
// ErrSourceNotFound are permanent (isRetryable rejects them),
// everything else is treated as transient.
var (
	ErrNotInstalled  = errors.New("extractor: yt-dlp not installed")
	ErrSourceNotFound = errors.New("extractor: source not found")
)

// YtdlpExtractor implements orchestrator.Extractor by shelling out to
// yt-dlp and parsing its flat-playlist JSON output.
type YtdlpExtractor struct {
	// Path is the yt-dlp executable. Defaults to "yt-dlp".
	Path string
	// Timeout bounds a single yt-dlp invocation. Defaults to 10 minutes.
	Timeout time.Duration
	// ExtraArgs are appended to every invocation.
	ExtraArgs []string
	// RetryConfig governs retries on transient yt-dlp failures.
	RetryConfig *retry.Config
}

// New returns a YtdlpExtractor with the teacher's defaults.
func New() *YtdlpExtractor {
	cfg := retry.DefaultConfig()
	return &YtdlpExtractor{Path: defaultPath, Timeout: defaultTimeout, RetryConfig: &cfg}
}

// Extract runs yt-dlp against url and returns the source's name and
// every video it lists (spec.md §1: "url -> {name, videos[...]}, or
// error").
func (y *YtdlpExtractor) Extract(ctx context.Context, url string) (orchestrator.ExtractResult, error) {
	if err := y.checkInstalled(ctx); err != nil {
		return orchestrator.ExtractResult{}, err
	}

	cfg := y.RetryConfig
	if cfg == nil {
		defaultCfg := retry.DefaultConfig()
		cfg = &defaultCfg
	}

	var out ytdlpPlaylist
	err := retry.Do(ctx, *cfg, isRetryable, func(ctx context.Context) error {
		parsed, err := y.run(ctx, url)
		if err != nil {
			return err
		}
		out = parsed
		return nil
	})
	if err != nil {
		return orchestrator.ExtractResult{}, err
	}

	name := out.Title
	if name == "" {
		name = out.Uploader
	}

	videos := make([]orchestrator.Video, 0, len(out.Entries))
	for _, e := range out.Entries {
		videos = append(videos, orchestrator.Video{
			ID:       e.ID,
			URL:      "https://www.youtube.com/watch?v=" + e.ID,
			Title:    e.Title,
			Duration: strconv.FormatFloat(e.Duration, 'f', -1, 64),
		})
	}

	return orchestrator.ExtractResult{Name: name, Videos: videos}, nil
}

func (y *YtdlpExtractor) run(ctx context.Context, url string) (ytdlpPlaylist, error) {
	timeout := y.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{"--flat-playlist", "-J", "--no-warnings"}, y.ExtraArgs...)
	args = append(args, url)

	cmd := exec.CommandContext(cmdCtx, y.path(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return ytdlpPlaylist{}, fmt.Errorf("extractor: yt-dlp timed out on %s", url)
		}
		if cmdCtx.Err() == context.Canceled {
			return ytdlpPlaylist{}, context.Canceled
		}

		msg := stderr.String()
		if strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist") {
			return ytdlpPlaylist{}, ErrSourceNotFound
		}
		return ytdlpPlaylist{}, fmt.Errorf("extractor: yt-dlp failed for %s: %w: %s", url, err, msg)
	}

	var playlist ytdlpPlaylist
	if err := json.Unmarshal(stdout.Bytes(), &playlist); err != nil {
		return ytdlpPlaylist{}, fmt.Errorf("extractor: parse yt-dlp output for %s: %w", url, err)
	}
	return playlist, nil
}

func (y *YtdlpExtractor) checkInstalled(ctx context.Context) error {
	if err := exec.CommandContext(ctx, y.path(), "--version").Run(); err != nil {
		return ErrNotInstalled
	}
	return nil
}

func (y *YtdlpExtractor) path() string {
	if y.Path != "" {
		return y.Path
	}
	return defaultPath
}

type ytdlpPlaylist struct {
	Title    string       `json:"title"`
	Uploader string       `json:"uploader"`
	Entries  []ytdlpEntry `json:"entries"`
}

type ytdlpEntry struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrNotInstalled) || errors.Is(err, ErrSourceNotFound) {
		return false
	}
	return true
}
