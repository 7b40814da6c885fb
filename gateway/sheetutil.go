package gateway

import (
	"fmt"

	"google.golang.org/api/sheets/v4"
)

// rangeRow builds an A1-style range addressing a single full row.
func rangeRow(sheet string, rowNumber int) string {
	return fmt.Sprintf("%s!%d:%d", sheet, rowNumber, rowNumber)
}

// columnLetter converts a 0-based column index to an A1 column letter
// (0 -> "A", 25 -> "Z", 26 -> "AA", ...).
func columnLetter(index int) string {
	letters := ""
	n := index
	for {
		letters = string(rune('A'+n%26)) + letters
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return letters
}

// rowsOf converts a ValueRange's cells to [][]string, padding nothing:
// short rows stay short, matching the backend's own sparse response.
func rowsOf(resp *sheets.ValueRange) [][]string {
	if resp == nil {
		return nil
	}
	rows := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		rows[i] = toStringRow(raw)
	}
	return rows
}

func firstRowOf(resp *sheets.ValueRange) []string {
	rows := rowsOf(resp)
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

func toStringRow(raw []interface{}) []string {
	row := make([]string, len(raw))
	for i, v := range raw {
		row[i] = fmt.Sprintf("%v", v)
	}
	return row
}

func toInterfaceRow(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
