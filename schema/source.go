package schema

// Source is a YouTube URL that fans out into Tasks (spec.md §3).
type Source struct {
	ID             string
	URL            string
	Name           string
	VideoCount     string
	ClaimedAt      string
	CompletedAt    string
	Status         PipelineStatus
	AssignedWorker string
	// Error is only populated for rows decoded from the DLQ variant.
	Error string
}

// ToRow encodes a Source into the Sources/Sources History column order.
func (s Source) ToRow() []string {
	return []string{
		s.ID, s.URL, s.Name, s.VideoCount, s.ClaimedAt, s.CompletedAt,
		string(s.Status), s.AssignedWorker,
	}
}

// ToDLQRow encodes a Source with its trailing error cell, for Sources
// DLQ.
func (s Source) ToDLQRow() []string {
	return append(s.ToRow(), s.Error)
}

// SourceFromRow decodes a row shared by Sources and Sources History.
func SourceFromRow(row []string) Source {
	return Source{
		ID:             cell(row, 0),
		URL:            cell(row, 1),
		Name:           cell(row, 2),
		VideoCount:     cell(row, 3),
		ClaimedAt:      cell(row, 4),
		CompletedAt:    cell(row, 5),
		Status:         decodePipelineStatus(cell(row, 6)),
		AssignedWorker: cell(row, 7),
	}
}

// SourceFromDLQRow decodes a row of Sources DLQ, including the
// trailing error cell. Any additional unknown trailing columns beyond
// the error cell are preserved by the caller reading raw rows directly
// if needed; the typed record only exposes the one DLQ-specific field
// the schema declares.
func SourceFromDLQRow(row []string) Source {
	s := SourceFromRow(row)
	s.Error = cell(row, 8)
	return s
}
