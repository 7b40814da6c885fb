package gateway

import (
	"context"
	"fmt"
	"sync"
)

// MemoryGateway is an in-memory Gateway implementation used by the
// orchestrator/registry/election test suites in place of a live
// spreadsheet, the way the teacher tests its real storage.JSONStore
// directly against a temp directory rather than mocking the lowest
// layer (internal/storage/integration_test.go). It implements the
// exact same soft-delete, guard, and header semantics as SheetsGateway
// so tests exercise real Gateway behavior, not a stub.
type MemoryGateway struct {
	mu     sync.Mutex
	sheets map[string]*memorySheet
}

type memorySheet struct {
	header []string
	rows   [][]string
}

// NewMemoryGateway returns an empty Gateway with no sheets.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{sheets: make(map[string]*memorySheet)}
}

func (g *MemoryGateway) sheet(name string) *memorySheet {
	s, ok := g.sheets[name]
	if !ok {
		s = &memorySheet{}
		g.sheets[name] = s
	}
	return s
}

func (g *MemoryGateway) EnsureHeader(_ context.Context, sheet string, header []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.sheet(sheet)
	if s.header == nil {
		s.header = append([]string{}, header...)
		return nil
	}
	if !stringsEqual(s.header, header) {
		return &PermanentError{Kind: PermanentSchemaMismatch, Op: "EnsureHeader", Err: fmt.Errorf("sheet %q header mismatch", sheet)}
	}
	return nil
}

func (g *MemoryGateway) ReadAll(_ context.Context, sheet string) ([][]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.sheet(sheet)
	out := make([][]string, len(s.rows))
	for i, row := range s.rows {
		out[i] = append([]string{}, row...)
	}
	return out, nil
}

func (g *MemoryGateway) ReadColumn(_ context.Context, sheet string, columnIndex int) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.sheet(sheet)
	values := make([]string, len(s.rows))
	for i, row := range s.rows {
		if columnIndex < len(row) {
			values[i] = row[columnIndex]
		}
	}
	return values, nil
}

func (g *MemoryGateway) GetRow(_ context.Context, sheet string, rowNumber int) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.sheet(sheet)
	idx := rowNumber - 2 // row 1 is header, row 2 is rows[0]
	if idx < 0 || idx >= len(s.rows) || IsEmptyRow(s.rows[idx]) {
		return nil, nil
	}
	return append([]string{}, s.rows[idx]...), nil
}

func (g *MemoryGateway) Append(_ context.Context, sheet string, row []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.sheet(sheet)
	s.rows = append(s.rows, append([]string{}, row...))
	return nil
}

func (g *MemoryGateway) AppendRows(_ context.Context, sheet string, rows [][]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.sheet(sheet)
	for _, row := range rows {
		s.rows = append(s.rows, append([]string{}, row...))
	}
	return nil
}

func (g *MemoryGateway) UpdateRow(_ context.Context, sheet string, rowNumber int, row []string, guard *OwnershipGuard) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.sheet(sheet)
	idx := rowNumber - 2
	if idx < 0 || idx >= len(s.rows) {
		return &PermanentError{Kind: PermanentMalformedRange, Op: "UpdateRow", Err: fmt.Errorf("row %d out of range", rowNumber)}
	}
	if !ownerMatches(s.rows[idx], guard) {
		return ErrOwnershipLost
	}
	s.rows[idx] = append([]string{}, row...)
	return nil
}

func (g *MemoryGateway) DeleteRow(_ context.Context, sheet string, rowNumber int, guard *OwnershipGuard) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.sheet(sheet)
	idx := rowNumber - 2
	if idx < 0 || idx >= len(s.rows) {
		return &PermanentError{Kind: PermanentMalformedRange, Op: "DeleteRow", Err: fmt.Errorf("row %d out of range", rowNumber)}
	}
	if !ownerMatches(s.rows[idx], guard) {
		return ErrOwnershipLost
	}
	width := len(s.rows[idx])
	if len(s.header) > width {
		width = len(s.header)
	}
	s.rows[idx] = make([]string, width)
	return nil
}

// SetActiveWorkers is a no-op: MemoryGateway has no rate limiter, since
// tests exercise claim/settle logic, not real network pacing.
func (g *MemoryGateway) SetActiveWorkers(n int) {}

func ownerMatches(row []string, guard *OwnershipGuard) bool {
	if guard == nil {
		return true
	}
	current := ""
	if guard.ColumnIndex < len(row) {
		current = row[guard.ColumnIndex]
	}
	return current == guard.Value
}

var _ Gateway = (*MemoryGateway)(nil)
