package gateway

import "context"

// OwnershipGuard is an optional precondition on a mutating call: the
// write proceeds only if the row's ColumnIndex cell still equals
// Value at the moment of the write, matching original_source's
// _verify_ownership guard (SPEC_FULL.md supplement 3). A nil guard
// means unconditional write.
type OwnershipGuard struct {
	ColumnIndex int
	Value       string
}

// Gateway is the single serialized, rate-limited, retrying mediator
// over the spreadsheet backend (spec.md §4.1). Every read, write,
// append, or delete against the backend goes through one of these
// methods. Row numbers are 1-based, with row 1 reserved for the
// header, matching the backend's own addressing.
type Gateway interface {
	// EnsureHeader writes header as row 1 if the sheet's first row is
	// empty, and creates the sheet first if it does not exist. If the
	// sheet already has a non-empty first row, it must equal header
	// exactly or a *PermanentError{Kind: PermanentSchemaMismatch} is
	// returned.
	EnsureHeader(ctx context.Context, sheet string, header []string) error

	// ReadAll returns every row of sheet below the header, in sheet
	// order. Rows whose cells are all empty (soft-deleted, per
	// SPEC_FULL.md supplement 2) are included as empty slices; callers
	// filter them out the way original_source's scans do.
	ReadAll(ctx context.Context, sheet string) ([][]string, error)

	// ReadColumn returns every value of the given 0-based column index,
	// below the header, without reading the rest of the row. Used by
	// dedup (reads only the id column).
	ReadColumn(ctx context.Context, sheet string, columnIndex int) ([]string, error)

	// GetRow reads a single row by its 1-based row number. Returns a
	// nil slice if the row is out of range or entirely empty.
	GetRow(ctx context.Context, sheet string, rowNumber int) ([]string, error)

	// Append adds a single row to the end of sheet.
	Append(ctx context.Context, sheet string, row []string) error

	// AppendRows adds multiple rows in one backend call.
	AppendRows(ctx context.Context, sheet string, rows [][]string) error

	// UpdateRow overwrites rowNumber's contents with row. If guard is
	// non-nil, the write is preceded by a re-read of the row; if the
	// guarded cell no longer equals guard.Value, ErrOwnershipLost is
	// returned and no write occurs.
	UpdateRow(ctx context.Context, sheet string, rowNumber int, row []string, guard *OwnershipGuard) error

	// DeleteRow "deletes" rowNumber by overwriting every cell with the
	// empty string (SPEC_FULL.md supplement 2: soft delete, not a
	// true row removal, to avoid shifting concurrent readers' row
	// indices). Same guard semantics as UpdateRow.
	DeleteRow(ctx context.Context, sheet string, rowNumber int, guard *OwnershipGuard) error

	// SetActiveWorkers updates the active-worker population the rate
	// limiter's jitter scales against (spec.md §4.1). A no-op on
	// implementations with no rate limiter of their own.
	SetActiveWorkers(n int)
}

// IsEmptyRow reports whether every cell of row is empty, the soft-
// delete tombstone produced by DeleteRow (SPEC_FULL.md supplement 2).
// Scans over ReadAll results use this to treat a cleared row as
// absent.
func IsEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
