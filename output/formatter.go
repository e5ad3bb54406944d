package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/tablequery/query"
)

// ErrUnknownFormat is returned by ForName for a format it does not know.
var ErrUnknownFormat = errors.New("unknown output format")

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to render a finished query and
// SetOutput to change the output destination.
type Formatter interface {
	// Format writes the query result in the formatter's specific format
	Format(q *query.Query) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Formats lists the names accepted by ForName.
var Formats = []string{"table", "card", "json", "csv", "text"}

// ForName returns the formatter called name, writing to w. "html" is an
// alias for "table".
func ForName(name string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "table", "html", "":
		return NewHTMLTableFormatter(w), nil
	case "card", "cards":
		return NewHTMLCardFormatter(w), nil
	case "json", "jsonl":
		return NewJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "text":
		return NewTextFormatter(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// visibleColumns returns the positions and names of the output columns
// that are not empty in every row.
func visibleColumns(q *query.Query) ([]int, []string) {
	var positions []int
	var names []string
	for i, name := range q.Columns().Names() {
		if q.IsEmptyColumn(name) {
			continue
		}
		positions = append(positions, i)
		names = append(names, name)
	}
	return positions, names
}
