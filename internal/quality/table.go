// Package quality scores the completeness and consistency of uploaded
// tabular datasets.
package quality

import (
	"strings"
)

// missingMarkers are cell values treated as absent in addition to blanks.
// Matching is case sensitive, so "None" is missing and "none" is data.
var missingMarkers = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// Table is a rectangular dataset of named string columns. Rows shorter than
// the header are padded with missing cells by NewTable.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates a table and normalises row widths to the header width
func NewTable(columns []string, rows [][]string) *Table {
	width := len(columns)
	normalized := make([][]string, len(rows))
	for i, row := range rows {
		r := make([]string, width)
		copy(r, row)
		normalized[i] = r
	}
	return &Table{Columns: columns, Rows: normalized}
}

// IsMissing reports whether a cell value counts as absent
func IsMissing(value string) bool {
	return missingMarkers[strings.TrimSpace(value)]
}

// ColumnIndex returns the position of the named column or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table has the named column
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Column returns the values of the named column, or nil if absent
func (t *Table) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}

// Value returns the cell at row i in the named column
func (t *Table) Value(i int, name string) string {
	idx := t.ColumnIndex(name)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][idx]
}

// NumRows returns the number of data rows
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns
func (t *Table) NumColumns() int {
	return len(t.Columns)
}
