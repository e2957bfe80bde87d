package statement

import (
	"github.com/sirupsen/logrus"

	"investflow/ibkr-csv/internal/parsererror"
)

// Table is the materialized form of one header+data block. Every row holds
// exactly len(Columns) cells; cells that had to be padded are nil.
type Table struct {
	Key     string
	Columns []string
	Rows    [][]*string

	index map[string]int
}

// NewTable materializes a block from its header and raw rows. Rows longer
// than the header are truncated, shorter ones are right-padded with nil.
// Duplicate column names make field access ambiguous, so they fail
// materialization; the caller is expected to drop the block with a warning.
func NewTable(key string, columns []string, rows [][]string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := index[col]; dup {
			return nil, &parsererror.ParseError{
				Section: key,
				Field:   col,
				Reason:  "duplicate column name",
			}
		}
		index[col] = i
	}

	width := len(columns)
	cleaned := make([][]*string, 0, len(rows))
	for _, row := range rows {
		cells := make([]*string, width)
		if len(row) > width {
			log.WithFields(logrus.Fields{
				"section": key,
				"have":    len(row),
				"want":    width,
			}).Warn("Data row has too many columns, trimming")
			row = row[:width]
		} else if len(row) < width {
			log.WithFields(logrus.Fields{
				"section": key,
				"have":    len(row),
				"want":    width,
			}).Warn("Data row has too few columns, padding")
		}
		for i := range row {
			v := row[i]
			cells[i] = &v
		}
		cleaned = append(cleaned, cells)
	}

	return &Table{
		Key:     key,
		Columns: columns,
		Rows:    cleaned,
		index:   index,
	}, nil
}

// Len returns the number of data rows in the table.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Value returns the cell at the given row for the named column. The second
// return is false when the column does not exist or the cell is null.
func (t *Table) Value(row int, column string) (string, bool) {
	col, ok := t.index[column]
	if !ok {
		return "", false
	}
	return t.ValueAt(row, col)
}

// ValueAt returns the cell at the given row and column position.
func (t *Table) ValueAt(row, col int) (string, bool) {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Columns) {
		return "", false
	}
	cell := t.Rows[row][col]
	if cell == nil {
		return "", false
	}
	return *cell, true
}

// RowMap returns the row as a column-name keyed mapping, with null and empty
// cells coerced to nil. This is the cleaned copy that ends up as the raw_data
// payload of normalized records.
func (t *Table) RowMap(row int) map[string]any {
	m := make(map[string]any, len(t.Columns))
	for i, col := range t.Columns {
		cell := t.Rows[row][i]
		if cell == nil || *cell == "" {
			m[col] = nil
			continue
		}
		m[col] = *cell
	}
	return m
}
