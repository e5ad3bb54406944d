package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vegasq/tablequery/internal/logging"
	"github.com/vegasq/tablequery/reader"
)

// DefaultDownloadDescription labels download links when neither the
// options nor the LINK condition give one.
const DefaultDownloadDescription = "Download"

// FileLister lists the downloadable files of a LINK directory.
type FileLister interface {
	ListFiles(dir string) ([]string, error)
}

// Options describes one query over a table. Every string uses the
// brace/colon/comma syntax of the shortcode it came from; empty strings
// mean "not given".
type Options struct {
	Columns     string // {Name,Label:expression}
	ColumnNames string // {Label1,,Label3}
	Filter      string // {Field:{v1,v2}},{Date:{TODAY,0,30}}
	Select      string // boolean filter expression
	Sort        string // Field1+Field2,Descending

	Title    string
	CSSClass string

	// DownloadDescription labels LINK anchors unless the condition has its own.
	DownloadDescription string
	// ContentURL prefixes LINK hrefs.
	ContentURL string
	// Lister resolves LINK directories. Without one no links are produced.
	Lister FileLister

	// Now overrides the clock, for TODAY conditions and date functions.
	Now func() time.Time
}

// Query is the result of running Options against one table. It is
// read-only once Run returns.
type Query struct {
	id         string
	tableTitle string
	opts       Options
	err        error

	engine      *Engine
	columnIndex ColumnIndex
	columns     ColumnSpec
	columnNames []string
	conditions  FilterConditionSet
	rows        []Row
	empty       map[string]bool
	emptyOrder  []string

	closest  *closestTracker
	files    map[string][]string // LINK column -> file names
	duration time.Duration
}

// Run executes a query: it indexes the header, parses the column spec,
// keeps rows matching the structural filter and then the select expression,
// sorts them and detects empty columns. Configuration problems are recorded
// on the returned Query rather than returned.
func Run(ctx context.Context, table *reader.Table, opts Options) *Query {
	start := time.Now()
	q := &Query{
		id:      uuid.NewString(),
		opts:    opts,
		empty:   make(map[string]bool),
		closest: newClosestTracker(),
		files:   make(map[string][]string),
	}
	ctx = logging.WithQueryID(ctx, q.id)
	log := logging.LoggerFromContext(ctx)

	if table != nil {
		q.tableTitle = table.Title
	}
	if err := table.Validate(); err != nil {
		q.err = fmt.Errorf("%w: %v", ErrInvalidTable, err)
		log.Warn("query rejected", "table", q.tableTitle, "error", q.err)
		return q
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	header := table.Header()
	q.columnIndex = BuildColumnIndex(header)
	q.engine = NewEngine(q.columnIndex, WithNow(now))
	q.columns = ParseColumnSpec(opts.Columns, header)
	q.conditions = ParseStructuralFilter(opts.Filter)
	q.loadLinkFiles(log)

	today := now()
	for _, r := range table.Data() {
		row := Row(r)
		if matchConditions(row, q.conditions, q.columnIndex, today, q.closest) {
			q.rows = append(q.rows, row)
		}
	}

	if strings.TrimSpace(opts.Select) != "" {
		q.rows = q.applySelect(opts.Select, log)
	}

	sorted, err := ApplySort(q.rows, ParseSort(opts.Sort), q.columnIndex)
	if err != nil {
		q.err = err
		log.Warn("query rejected", "table", q.tableTitle, "error", err)
		return q
	}
	q.rows = sorted

	q.columnNames = ParseColumnNames(opts.ColumnNames, q.columns)
	q.findEmptyColumns()

	q.duration = time.Since(start)
	logging.QueryDone(ctx, q.tableTitle, len(q.rows), q.duration, "empty_columns", len(q.emptyOrder))
	return q
}

func (q *Query) applySelect(expr string, log *slog.Logger) []Row {
	f, err := q.engine.CompileFilter(expr)
	if err != nil {
		log.Debug("malformed select expression", "expression", expr, "error", err)
		return nil
	}
	var kept []Row
	for _, row := range q.rows {
		if f.Match(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

func (q *Query) loadLinkFiles(log *slog.Logger) {
	if q.opts.Lister == nil {
		return
	}
	for _, c := range q.conditions.All() {
		if c.Kind != ConditionLink {
			continue
		}
		files, err := q.opts.Lister.ListFiles(c.LinkPath)
		if err != nil {
			log.Warn("link directory unreadable", "path", c.LinkPath, "error", err)
			continue
		}
		q.files[c.Field] = files
	}
}

func (q *Query) findEmptyColumns() {
	for _, name := range q.columns.Names() {
		expr, _ := q.columns.Expression(name)
		empty := true
		for _, row := range q.rows {
			if q.engine.EvaluateExpression(row, expr) != "" {
				empty = false
				break
			}
		}
		if empty {
			q.empty[name] = true
			q.emptyOrder = append(q.emptyOrder, name)
		}
	}
}

// ID returns the random ID the query logs under.
func (q *Query) ID() string { return q.id }

// Err returns the configuration error that stopped the query, if any.
func (q *Query) Err() error { return q.err }

// TableTitle returns the title of the queried table.
func (q *Query) TableTitle() string { return q.tableTitle }

// Title returns the caption requested for rendering.
func (q *Query) Title() string { return q.opts.Title }

// CSSClass returns the extra CSS class requested for rendering.
func (q *Query) CSSClass() string { return q.opts.CSSClass }

// Duration returns how long Run took.
func (q *Query) Duration() time.Duration { return q.duration }

// ColumnIndexMap returns the header index.
func (q *Query) ColumnIndexMap() ColumnIndex { return q.columnIndex }

// FilteredRows returns the surviving rows in output order.
func (q *Query) FilteredRows() []Row { return q.rows }

// Columns returns the parsed column spec.
func (q *Query) Columns() ColumnSpec { return q.columns }

// ColumnNames returns the display labels, one per output column. Labels may
// be empty.
func (q *Query) ColumnNames() []string { return q.columnNames }

// Label returns the display label of the i-th output column, falling back
// to the column name.
func (q *Query) Label(i int) string {
	if i < len(q.columnNames) && q.columnNames[i] != "" {
		return q.columnNames[i]
	}
	names := q.columns.Names()
	if i < len(names) {
		return names[i]
	}
	return ""
}

// EmptyColumns returns the output columns whose value is "" in every row.
func (q *Query) EmptyColumns() []string {
	out := make([]string, len(q.emptyOrder))
	copy(out, q.emptyOrder)
	return out
}

// IsEmptyColumn reports whether column is empty in every row.
func (q *Query) IsEmptyColumn(column string) bool { return q.empty[column] }

// Conditions returns the parsed structural filter.
func (q *Query) Conditions() FilterConditionSet { return q.conditions }

// Engine returns the expression engine bound to the table's columns.
func (q *Query) Engine() *Engine { return q.engine }

// ResolveDisplayValue evaluates a display expression against row.
func (q *Query) ResolveDisplayValue(row Row, expr string) string {
	if q.engine == nil {
		return ""
	}
	return q.engine.EvaluateExpression(row, expr)
}

// RowMatchesFilter evaluates a boolean filter expression against row.
func (q *Query) RowMatchesFilter(row Row, expr string) bool {
	if q.engine == nil {
		return false
	}
	return q.engine.RowMatchesFilter(row, expr)
}

// Record is one output row: column names and their resolved values, in
// column order.
type Record struct {
	Columns []string
	Values  []string
}

// Get returns the value of column.
func (r Record) Get(column string) (string, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return "", false
}

// Records resolves every output column for every surviving row.
func (q *Query) Records() []Record {
	if q.engine == nil {
		return nil
	}
	names := q.columns.Names()
	records := make([]Record, len(q.rows))
	for i, row := range q.rows {
		values := make([]string, len(names))
		for j, name := range names {
			expr, _ := q.columns.Expression(name)
			values[j] = q.engine.EvaluateExpression(row, expr)
		}
		records[i] = Record{Columns: names, Values: values}
	}
	return records
}

// ClosestValue returns the date cell nearest to today seen by a TODAY
// condition.
func (q *Query) ClosestValue() (string, bool) {
	if q.closest == nil || !q.closest.found {
		return "", false
	}
	return q.closest.value, true
}

// IsClosestRow reports whether row holds the closest date in one of its
// TODAY columns.
func (q *Query) IsClosestRow(row Row) bool {
	closest, ok := q.ClosestValue()
	if !ok {
		return false
	}
	for _, name := range q.columns.Names() {
		c, ok := q.conditions.Get(name)
		if !ok || c.Kind != ConditionToday {
			continue
		}
		expr, _ := q.columns.Expression(name)
		if q.engine.EvaluateExpression(row, expr) == closest {
			return true
		}
	}
	return false
}

// IsLinkColumn reports whether column carries a LINK condition.
func (q *Query) IsLinkColumn(column string) bool {
	c, ok := q.conditions.Get(column)
	return ok && c.Kind == ConditionLink
}

// LinkCell finds the first file in column's LINK directory whose name
// contains value and returns its URL and the anchor text. ok is false when
// column is not a LINK column or nothing matches.
func (q *Query) LinkCell(column, value string) (href, label string, ok bool) {
	c, isLink := q.conditions.Get(column)
	if !isLink || c.Kind != ConditionLink || value == "" {
		return "", "", false
	}
	for _, file := range q.files[column] {
		if strings.Contains(file, value) {
			label = c.LinkDescription
			if label == "" {
				label = q.opts.DownloadDescription
			}
			if label == "" {
				label = DefaultDownloadDescription
			}
			return joinURL(q.opts.ContentURL, c.LinkPath, file), label, true
		}
	}
	return "", "", false
}

// joinURL joins URL segments with single slashes.
func joinURL(parts ...string) string {
	var segs []string
	for i, p := range parts {
		if i > 0 {
			p = strings.TrimLeft(p, "/")
		}
		if i < len(parts)-1 {
			p = strings.TrimRight(p, "/")
		}
		if p != "" {
			segs = append(segs, p)
		}
	}
	return strings.Join(segs, "/")
}
