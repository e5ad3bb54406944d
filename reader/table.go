package reader

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrTableNotFound is returned when no table matches the requested name or ID.
	ErrTableNotFound = errors.New("table not found")
	// ErrInvalidTable is returned when stored content is not a list of rows.
	ErrInvalidTable = errors.New("invalid table data")
	// ErrUnsupportedFormat is returned for files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported table format")
)

// Table is a header row plus data rows. Rows[0] is the header. Rows may be
// ragged; consumers must tolerate short rows.
type Table struct {
	ID    int64
	Title string
	Rows  [][]string
}

// Header returns the header row, or nil for an empty table.
func (t *Table) Header() []string {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Data returns the rows after the header.
func (t *Table) Data() [][]string {
	if t == nil || len(t.Rows) < 2 {
		return nil
	}
	return t.Rows[1:]
}

// Validate reports ErrInvalidTable when the table has no header row.
func (t *Table) Validate() error {
	if t == nil || len(t.Rows) == 0 {
		return fmt.Errorf("%w: no header row", ErrInvalidTable)
	}
	return nil
}

// Store fetches tables by title or by ID.
type Store interface {
	TableByName(ctx context.Context, name string) (*Table, error)
	TableByID(ctx context.Context, id int64) (*Table, error)
}

// TableInfo describes a table a store can serve.
type TableInfo struct {
	ID    int64
	Title string
	Path  string // empty for database-backed tables
}

var breakTag = regexp.MustCompile(`(?i)<br\s*/?>`)

// NormalizeCell converts <br>, <br/> and <br /> tags to newlines.
func NormalizeCell(s string) string {
	return breakTag.ReplaceAllString(s, "\n")
}

// normalizeRows applies NormalizeCell to every cell in place.
func normalizeRows(rows [][]string) [][]string {
	for _, row := range rows {
		for i, cell := range row {
			row[i] = NormalizeCell(cell)
		}
	}
	return rows
}
