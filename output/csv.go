package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/tablequery/query"
)

// CSVFormatter outputs records as CSV format
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes a header of column labels followed by one line per record.
func (c *CSVFormatter) Format(q *query.Query) error {
	if err := q.Err(); err != nil {
		return err
	}

	csvWriter := csv.NewWriter(c.writer)

	names := q.Columns().Names()
	header := make([]string, len(names))
	for i := range names {
		header[i] = formatValue(q.Label(i))
	}
	if err := csvWriter.Write(header); err != nil {
		return err
	}

	for _, rec := range q.Records() {
		record := make([]string, len(rec.Values))
		for i, v := range rec.Values {
			record[i] = formatValue(v)
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	// Flush and check for errors
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return nil
}

// formatValue guards a cell against formula execution in spreadsheet
// applications.
func formatValue(val string) string {
	if len(val) > 0 {
		switch val[0] {
		case '=', '+', '-', '@', '\t', '\r', '\n', '|':
			// Escape existing single quotes and prefix with quote to prevent formula injection
			return "'" + strings.ReplaceAll(val, "'", "''")
		}
	}
	return val
}
