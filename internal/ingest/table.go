package ingest

import "strings"

// Table is a raw tabular structure: an ordered header row and data rows of
// cells. Rows may be shorter than the header (ragged CSV input); Cell treats
// the missing cells as empty.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of the named column in the header.
// Matching is exact and case-sensitive, per the source contract.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// HasColumn reports whether the named column exists in the header.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Cell returns the trimmed cell at the given column index of a row, or the
// empty string when the row is too short.
func (t *Table) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
