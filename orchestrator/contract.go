package orchestrator

import "context"

// Video is one entry yielded by an Extractor (spec.md §6 extractor
// contract).
type Video struct {
	ID       string
	URL      string
	Title    string
	Duration string
}

// ExtractResult is the successful output of an Extractor.Extract call.
type ExtractResult struct {
	Name   string
	Videos []Video
}

// Extractor is the out-of-scope external collaborator (spec.md §1,
// §6): given a URL, it returns the source's name and the videos it
// yields, or an error. The core treats any error as DLQ-worthy.
type Extractor interface {
	Extract(ctx context.Context, url string) (ExtractResult, error)
}

// Callback is the per-Task processing capability supplied by the
// embedding program (spec.md §6). Returning nil means DONE; returning
// an error means FAILED, with the error's message recorded in the DLQ
// row.
type Callback func(ctx context.Context, url string) error
