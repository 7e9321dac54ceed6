package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Table is an ordered-column, ordered-row view of a CSV payload. Cells are
// kept as raw strings; a cell that is blank after trimming is missing.
// Tables are immutable after construction; filters return new tables.
type Table struct {
	cols []string
	rows [][]string
}

// NewTable builds a table from a header and rows. Rows shorter than the
// header are padded with missing cells; longer rows are truncated.
func NewTable(cols []string, rows [][]string) Table {
	normalized := make([][]string, len(rows))
	for i, row := range rows {
		r := make([]string, len(cols))
		copy(r, row)
		normalized[i] = r
	}
	return Table{cols: append([]string(nil), cols...), rows: normalized}
}

// ParseCSV reads a comma-separated payload with a header row. Ragged or
// otherwise malformed input is a parse failure; an input with only a header
// yields an empty table.
func ParseCSV(r io.Reader) (Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("parse csv: missing header row")
	}
	return NewTable(records[0], records[1:]), nil
}

// WriteCSV serializes the table with its header row.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range t.rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Columns returns the column names in declaration order.
func (t Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// NumRows returns the number of data rows.
func (t Table) NumRows() int {
	return len(t.rows)
}

// ColumnIndex returns the position of the exact column name, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.cols {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed value at (row, col). ok is false when the
// coordinates are out of range or the cell is missing.
func (t Table) Cell(row, col int) (string, bool) {
	if row < 0 || row >= len(t.rows) || col < 0 || col >= len(t.cols) {
		return "", false
	}
	v := strings.TrimSpace(t.rows[row][col])
	return v, v != ""
}

// Row returns a copy of one data row.
func (t Table) Row(i int) []string {
	return append([]string(nil), t.rows[i]...)
}

// Float parses the cell at (row, col) as a number.
func (t Table) Float(row, col int) (float64, bool) {
	v, ok := t.Cell(row, col)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ColumnSummary describes one column in a Summary.
type ColumnSummary struct {
	Name    string `json:"name"`
	Missing int    `json:"missing"`
	Type    string `json:"type"`
}

// Summary is a read-only profile of a table: row count, column names, and
// per-column missing counts and inferred types.
type Summary struct {
	Records     int             `json:"records"`
	Columns     []ColumnSummary `json:"columns"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Summarize profiles a table. Inferred types: "empty" when every cell is
// missing, "integer" when every present cell parses as an integer, "float"
// when every present cell parses as a number, otherwise "text".
func Summarize(t Table) Summary {
	cols := make([]ColumnSummary, len(t.cols))
	for c, name := range t.cols {
		cols[c] = ColumnSummary{
			Name:    name,
			Missing: t.missingCount(c),
			Type:    t.inferType(c),
		}
	}
	return Summary{
		Records:     len(t.rows),
		Columns:     cols,
		GeneratedAt: clock.Now().UTC(),
	}
}

func (t Table) missingCount(col int) int {
	missing := 0
	for row := range t.rows {
		if _, ok := t.Cell(row, col); !ok {
			missing++
		}
	}
	return missing
}

func (t Table) inferType(col int) string {
	present, integer, numeric := 0, true, true
	for row := range t.rows {
		v, ok := t.Cell(row, col)
		if !ok {
			continue
		}
		present++
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			integer = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			numeric = false
		}
	}
	switch {
	case present == 0:
		return "empty"
	case integer:
		return "integer"
	case numeric:
		return "float"
	default:
		return "text"
	}
}
