package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// scopes is the OAuth scope this Gateway requests, matching
// original_source/src/orc/gateway/connection.py's SCOPES constant.
const scopes = "https://www.googleapis.com/auth/spreadsheets"

// SheetsGateway implements Gateway against a live Google Sheets
// spreadsheet, authenticated with a service-account credentials file
// (original_source/src/orc/gateway/connection.py's
// _connect_service_account). All calls are serialized through mu,
// rate-limited through limiter, and wrapped in withRetry.
type SheetsGateway struct {
	srv           *sheets.Service
	spreadsheetID string

	mu      sync.Mutex
	limiter *rateLimiter
	retry   retryConfig

	colCountMu sync.Mutex
	colCount   map[string]int
}

// NewSheetsGateway authenticates against serviceAccountFile and returns
// a Gateway backed by the spreadsheet identified by spreadsheetID. The
// rate limiter starts assuming a single active worker; callers refresh
// it with SetActiveWorkers as the real population becomes known
// (spec.md §4.1).
func NewSheetsGateway(ctx context.Context, spreadsheetID, serviceAccountFile string, baseInterval, jitterCap time.Duration, maxRetries int, initialBackoff, maxBackoff time.Duration) (*SheetsGateway, error) {
	srv, err := sheets.NewService(ctx, option.WithCredentialsFile(serviceAccountFile), option.WithScopes(scopes))
	if err != nil {
		return nil, &PermanentError{Kind: PermanentAuth, Op: "connect", Err: err}
	}

	return &SheetsGateway{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		limiter:       newRateLimiter(baseInterval, jitterCap),
		retry: retryConfig{
			MaxRetries:     maxRetries,
			InitialBackoff: initialBackoff,
			MaxBackoff:     maxBackoff,
		},
		colCount: make(map[string]int),
	}, nil
}

// SetActiveWorkers updates the population the rate limiter's jitter is
// scaled against (spec.md §4.1, SPEC_FULL.md supplement 5). The
// orchestrator's main loop calls this after refreshing
// registry.ActiveWorkers, at most once a minute.
func (g *SheetsGateway) SetActiveWorkers(n int) {
	g.limiter.SetActiveWorkers(n)
}

// call serializes, rate-limits, and retries a single backend
// invocation. Every Gateway method funnels through here so the
// Serialization/Adaptive rate limiting/Retry policies in spec.md §4.1
// apply uniformly.
func (g *SheetsGateway) call(ctx context.Context, op string, fn func(context.Context) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	return withRetry(ctx, g.retry, op, func(ctx context.Context) error {
		err := fn(ctx)
		return classifyBackendError(op, err)
	})
}

// classifyBackendError turns a raw googleapi error into the spec's
// Transient/Permanent taxonomy (spec.md §4.1, §7). 401/403/404/400 are
// permanent; any other status code (429, 5xx, ...) and any non-API
// error (network resets, timeouts) is left as-is, and isTransient
// treats it as transient unless it is a context cancellation or
// deadline.
func classifyBackendError(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if asGoogleAPIError(err, &gerr) {
		switch gerr.Code {
		case 401, 403:
			return &PermanentError{Kind: PermanentAuth, Op: op, Err: err}
		case 404:
			return &PermanentError{Kind: PermanentNotFound, Op: op, Err: err}
		case 400:
			return &PermanentError{Kind: PermanentMalformedRange, Op: op, Err: err}
		default:
			return err
		}
	}
	return err
}

// asGoogleAPIError is a thin errors.As wrapper kept as a named function
// so classifyBackendError reads as a decision table, not a type
// assertion.
func asGoogleAPIError(err error, target **googleapi.Error) bool {
	return errors.As(err, target)
}

func (g *SheetsGateway) EnsureHeader(ctx context.Context, sheet string, header []string) error {
	var existing []string
	err := g.call(ctx, "EnsureHeader.read", func(ctx context.Context) error {
		resp, err := g.srv.Spreadsheets.Values.Get(g.spreadsheetID, rangeRow(sheet, 1)).Context(ctx).Do()
		if err != nil {
			return err
		}
		existing = firstRowOf(resp)
		return nil
	})
	if err != nil {
		var perm *PermanentError
		if !errors.As(err, &perm) {
			return err
		}
		if perm.Kind != PermanentNotFound {
			return err
		}
		if createErr := g.createSheet(ctx, sheet); createErr != nil {
			return createErr
		}
		existing = nil
	}

	g.setColCount(sheet, len(header))

	if len(existing) == 0 {
		return g.call(ctx, "EnsureHeader.write", func(ctx context.Context) error {
			return g.writeRow(ctx, sheet, 1, header)
		})
	}

	if !stringsEqual(existing, header) {
		return &PermanentError{Kind: PermanentSchemaMismatch, Op: "EnsureHeader", Err: fmt.Errorf("sheet %q header %v does not match expected %v", sheet, existing, header)}
	}
	return nil
}

func (g *SheetsGateway) createSheet(ctx context.Context, sheet string) error {
	return g.call(ctx, "createSheet", func(ctx context.Context) error {
		_, err := g.srv.Spreadsheets.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{
				{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: sheet}}},
			},
		}).Context(ctx).Do()
		return err
	})
}

func (g *SheetsGateway) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	var rows [][]string
	err := g.call(ctx, "ReadAll", func(ctx context.Context) error {
		resp, err := g.srv.Spreadsheets.Values.Get(g.spreadsheetID, sheet).Context(ctx).Do()
		if err != nil {
			return err
		}
		rows = rowsOf(resp)
		if len(rows) > 0 {
			rows = rows[1:] // drop header
		}
		return nil
	})
	return rows, err
}

func (g *SheetsGateway) ReadColumn(ctx context.Context, sheet string, columnIndex int) ([]string, error) {
	var values []string
	colLetter := columnLetter(columnIndex)
	err := g.call(ctx, "ReadColumn", func(ctx context.Context) error {
		resp, err := g.srv.Spreadsheets.Values.Get(g.spreadsheetID, fmt.Sprintf("%s!%s2:%s", sheet, colLetter, colLetter)).Context(ctx).Do()
		if err != nil {
			return err
		}
		for _, row := range rowsOf(resp) {
			if len(row) > 0 {
				values = append(values, row[0])
			} else {
				values = append(values, "")
			}
		}
		return nil
	})
	return values, err
}

func (g *SheetsGateway) GetRow(ctx context.Context, sheet string, rowNumber int) ([]string, error) {
	var row []string
	err := g.call(ctx, "GetRow", func(ctx context.Context) error {
		resp, err := g.srv.Spreadsheets.Values.Get(g.spreadsheetID, rangeRow(sheet, rowNumber)).Context(ctx).Do()
		if err != nil {
			return err
		}
		row = firstRowOf(resp)
		return nil
	})
	return row, err
}

func (g *SheetsGateway) Append(ctx context.Context, sheet string, row []string) error {
	return g.call(ctx, "Append", func(ctx context.Context) error {
		_, err := g.srv.Spreadsheets.Values.Append(g.spreadsheetID, sheet, &sheets.ValueRange{
			Values: [][]interface{}{toInterfaceRow(row)},
		}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		return err
	})
}

func (g *SheetsGateway) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = toInterfaceRow(row)
	}
	return g.call(ctx, "AppendRows", func(ctx context.Context) error {
		_, err := g.srv.Spreadsheets.Values.Append(g.spreadsheetID, sheet, &sheets.ValueRange{
			Values: values,
		}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		return err
	})
}

func (g *SheetsGateway) UpdateRow(ctx context.Context, sheet string, rowNumber int, row []string, guard *OwnershipGuard) error {
	if err := g.verifyOwnership(ctx, sheet, rowNumber, guard); err != nil {
		return err
	}
	return g.call(ctx, "UpdateRow", func(ctx context.Context) error {
		return g.writeRow(ctx, sheet, rowNumber, row)
	})
}

func (g *SheetsGateway) DeleteRow(ctx context.Context, sheet string, rowNumber int, guard *OwnershipGuard) error {
	if err := g.verifyOwnership(ctx, sheet, rowNumber, guard); err != nil {
		return err
	}
	width := g.getColCount(sheet)
	empty := make([]string, width)
	return g.call(ctx, "DeleteRow", func(ctx context.Context) error {
		return g.writeRow(ctx, sheet, rowNumber, empty)
	})
}

// verifyOwnership re-reads the row and confirms the guarded cell still
// matches before a mutating call proceeds, per original_source's
// _verify_ownership (SPEC_FULL.md supplement 3). A 1s wait before the
// read lets concurrent writes propagate, matching the Python original.
func (g *SheetsGateway) verifyOwnership(ctx context.Context, sheet string, rowNumber int, guard *OwnershipGuard) error {
	if guard == nil {
		return nil
	}
	time.Sleep(1 * time.Second)

	row, err := g.GetRow(ctx, sheet, rowNumber)
	if err != nil {
		return err
	}
	current := ""
	if guard.ColumnIndex < len(row) {
		current = row[guard.ColumnIndex]
	}
	if current != guard.Value {
		return ErrOwnershipLost
	}
	return nil
}

// writeRow issues a single Values.Update for one full row. Callers are
// expected to already be inside g.call for serialization/retry.
func (g *SheetsGateway) writeRow(ctx context.Context, sheet string, rowNumber int, row []string) error {
	_, err := g.srv.Spreadsheets.Values.Update(g.spreadsheetID, rangeRow(sheet, rowNumber), &sheets.ValueRange{
		Values: [][]interface{}{toInterfaceRow(row)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (g *SheetsGateway) setColCount(sheet string, n int) {
	g.colCountMu.Lock()
	defer g.colCountMu.Unlock()
	g.colCount[sheet] = n
}

func (g *SheetsGateway) getColCount(sheet string) int {
	g.colCountMu.Lock()
	defer g.colCountMu.Unlock()
	return g.colCount[sheet]
}

var _ Gateway = (*SheetsGateway)(nil)
