package schema

// Lease is a (election_name, holder, expires_at) triple granting
// time-bounded exclusive rights to a named role (spec.md §3, §4.4).
// ExpiresAt is stored as an opaque string; the election package writes
// it as an RFC 3339 UTC timestamp with nanoseconds and its read-back
// confirmation compares it as a string.
type Lease struct {
	ElectionName string
	Holder       string
	ExpiresAt    string
}

// ToRow encodes a Lease into the Leader Election column order.
func (l Lease) ToRow() []string {
	return []string{l.ElectionName, l.Holder, l.ExpiresAt}
}

// LeaseFromRow decodes a row of the Leader Election sheet.
func LeaseFromRow(row []string) Lease {
	return Lease{
		ElectionName: cell(row, 0),
		Holder:       cell(row, 1),
		ExpiresAt:    cell(row, 2),
	}
}
