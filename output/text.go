package output

import (
	"io"
	"regexp"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/tablequery/query"
)

// TextFormatter outputs records as an aligned plain-text table
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new plain-text table formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// SetOutput sets the output writer
func (t *TextFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

var markupTag = regexp.MustCompile(`<[^>]*>`)

// plainText drops markup produced by the transform functions.
func plainText(s string) string {
	return strings.TrimSpace(markupTag.ReplaceAllString(s, " "))
}

// Format writes the visible columns as a text table.
func (t *TextFormatter) Format(q *query.Query) error {
	if err := q.Err(); err != nil {
		return err
	}

	positions, _ := visibleColumns(q)

	table := tablewriter.NewWriter(t.writer)
	header := make([]string, len(positions))
	for i, pos := range positions {
		header[i] = q.Label(pos)
	}
	table.SetHeader(header)
	table.SetAutoWrapText(false)

	for _, rec := range q.Records() {
		line := make([]string, len(positions))
		for i, pos := range positions {
			line[i] = plainText(rec.Values[pos])
		}
		table.Append(line)
	}
	table.Render()
	return nil
}
