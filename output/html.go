package output

import (
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/vegasq/tablequery/query"
)

// HTMLTableFormatter renders a query as an HTML table.
type HTMLTableFormatter struct {
	writer io.Writer
}

// NewHTMLTableFormatter creates a new HTML table formatter
func NewHTMLTableFormatter(w io.Writer) *HTMLTableFormatter {
	return &HTMLTableFormatter{writer: w}
}

// SetOutput sets the output writer
func (h *HTMLTableFormatter) SetOutput(w io.Writer) {
	h.writer = w
}

// Format writes the table markup, or the query's error message.
func (h *HTMLTableFormatter) Format(q *query.Query) error {
	if err := q.Err(); err != nil {
		_, werr := io.WriteString(h.writer, err.Error())
		return werr
	}

	positions, names := visibleColumns(q)

	var b strings.Builder
	b.WriteString(`<div class='table-press-query-slider'>`)
	b.WriteString(`<div class="parent-of-table-press-query"><div class="table-press-query">`)
	writeTitle(&b, q.Title())
	b.WriteString(`<table class="table-press-query-table ` + html.EscapeString(q.CSSClass()) + `" >`)

	b.WriteString(`<thead class="table-press-header"><tr>`)
	for _, pos := range positions {
		b.WriteString("<th>" + html.EscapeString(q.Label(pos)) + "</th>")
	}
	b.WriteString("</tr></thead>")

	b.WriteString("<tbody>")
	for _, row := range q.FilteredRows() {
		writeTableRow(&b, q, row, names)
	}
	b.WriteString("</tbody>")
	b.WriteString("</table></div></div></div>")

	_, err := io.WriteString(h.writer, b.String())
	return err
}

func writeTitle(b *strings.Builder, title string) {
	if title == "" {
		return
	}
	b.WriteString(`<div class="table-press-query-title">` + html.EscapeString(title) + `</div>`)
}

func writeTableRow(b *strings.Builder, q *query.Query, row query.Row, names []string) {
	closest := q.IsClosestRow(row)

	b.WriteString("<tr>")
	for _, name := range names {
		expr, _ := q.Columns().Expression(name)
		value := q.ResolveDisplayValue(row, expr)

		if q.IsLinkColumn(name) {
			if href, label, ok := q.LinkCell(name, value); ok {
				value = `<a href="` + html.EscapeString(href) + `">` + label + `</a>`
			} else {
				value = "."
			}
		}
		if closest {
			value = "<b><i>" + value + "</i></b>"
		}
		b.WriteString("<td>" + value + "</td>")
	}
	b.WriteString("</tr>")
}

// HTMLCardFormatter renders a query as one contact card per row.
type HTMLCardFormatter struct {
	writer io.Writer
}

// NewHTMLCardFormatter creates a new HTML card formatter
func NewHTMLCardFormatter(w io.Writer) *HTMLCardFormatter {
	return &HTMLCardFormatter{writer: w}
}

// SetOutput sets the output writer
func (h *HTMLCardFormatter) SetOutput(w io.Writer) {
	h.writer = w
}

// Format writes the card markup, or the query's error message. Empty values
// are left off a card; a label is shown only when a column name was given
// for that column.
func (h *HTMLCardFormatter) Format(q *query.Query) error {
	if err := q.Err(); err != nil {
		_, werr := io.WriteString(h.writer, err.Error())
		return werr
	}

	positions, names := visibleColumns(q)
	labels := q.ColumnNames()

	var b strings.Builder
	b.WriteString(`<div class="parent-of-table-press-query">`)
	b.WriteString(`<div class="table-press-query">`)
	writeTitle(&b, q.Title())
	b.WriteString(`<div class="` + html.EscapeString(q.CSSClass()) + ` contact-cards-container">`)

	for _, row := range q.FilteredRows() {
		b.WriteString(`<div class="contact-card">`)
		for i, name := range names {
			expr, _ := q.Columns().Expression(name)
			value := q.ResolveDisplayValue(row, expr)
			if value == "" {
				continue
			}

			class := cardClass(name)
			b.WriteString(`<div class="card-row">`)
			if pos := positions[i]; pos < len(labels) && labels[pos] != "" {
				b.WriteString(`<div class="card-label column-` + class + `-label">` + html.EscapeString(labels[pos]) + ":</div>")
			}
			if isProbablyURL(value) {
				if strings.HasPrefix(value, "www.") {
					value = "http://" + value
				}
				value = `<a href="` + value + `" target="_blank">` + value + `</a>`
			}
			b.WriteString(`<div class="card-value column-` + class + `-value">` + value + "</div>")
			b.WriteString("</div>")
		}
		b.WriteString("</div>")
	}

	b.WriteString("</div></div></div>")

	_, err := io.WriteString(h.writer, b.String())
	return err
}

var unsafeClassChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// cardClass turns a column name into a CSS class fragment: characters
// outside [A-Za-z0-9_-] and function names are removed.
func cardClass(column string) string {
	return query.StripFunctionNames(unsafeClassChars.ReplaceAllString(column, ""))
}

func isProbablyURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "www.")
}
