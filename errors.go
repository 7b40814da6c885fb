package orc

import (
	"orc/extractor"
	"orc/gateway"
)

// Error handling types re-exported for callers that only import the
// root package.
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, orc.ErrOwnershipLost) {
//		fmt.Println("lost the claim race")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var perm *orc.PermanentError
//	if errors.As(err, &perm) {
//		fmt.Printf("%s: %v\n", perm.Op, perm.Err)
//	}

// Type aliases for convenient error handling.
type (
	// PermanentError wraps a non-retryable backend failure.
	PermanentError = gateway.PermanentError
	// TransientExhaustedError wraps a transient failure that survived
	// every retry attempt.
	TransientExhaustedError = gateway.TransientExhaustedError
)

// Sentinel errors re-exported from sub-packages.
var (
	// ErrOwnershipLost indicates a guarded write lost its claim before
	// it could apply.
	ErrOwnershipLost = gateway.ErrOwnershipLost

	// ErrNotInstalled indicates the yt-dlp binary was not found.
	ErrNotInstalled = extractor.ErrNotInstalled
	// ErrSourceNotFound indicates the extractor's source URL does not
	// resolve to anything listable.
	ErrSourceNotFound = extractor.ErrSourceNotFound
)
