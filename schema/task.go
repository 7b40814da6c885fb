package schema

// Task is a single YouTube video to be processed (spec.md §3).
type Task struct {
	ID             string
	SourceID       string
	URL            string
	Name           string
	Duration       string
	CreatedAt      string
	ClaimedAt      string
	CompletedAt    string
	Status         PipelineStatus
	AssignedWorker string
	// Error is only populated for rows decoded from the DLQ variant.
	Error string
}

// ToRow encodes a Task into the Tasks/Tasks History column order.
func (t Task) ToRow() []string {
	return []string{
		t.ID, t.SourceID, t.URL, t.Name, t.Duration, t.CreatedAt,
		t.ClaimedAt, t.CompletedAt, string(t.Status), t.AssignedWorker,
	}
}

// ToDLQRow encodes a Task with its trailing error cell, for Tasks DLQ.
func (t Task) ToDLQRow() []string {
	return append(t.ToRow(), t.Error)
}

// TaskFromRow decodes a row shared by Tasks and Tasks History.
func TaskFromRow(row []string) Task {
	return Task{
		ID:             cell(row, 0),
		SourceID:       cell(row, 1),
		URL:            cell(row, 2),
		Name:           cell(row, 3),
		Duration:       cell(row, 4),
		CreatedAt:      cell(row, 5),
		ClaimedAt:      cell(row, 6),
		CompletedAt:    cell(row, 7),
		Status:         decodePipelineStatus(cell(row, 8)),
		AssignedWorker: cell(row, 9),
	}
}

// TaskFromDLQRow decodes a row of Tasks DLQ, including the trailing
// error cell.
func TaskFromDLQRow(row []string) Task {
	t := TaskFromRow(row)
	t.Error = cell(row, 10)
	return t
}
