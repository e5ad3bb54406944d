package query

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/vegasq/tablequery/internal/logging"
)

// maxCallsPerExpression bounds the function-call loop of EvaluateExpression.
const maxCallsPerExpression = 256

var emailAddress = regexp.MustCompile(
	"^[A-Za-z0-9.!#$%&'*+/=?^_`{|}~-]+@[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?(?:\\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)+$")

// Engine evaluates display and filter expressions against rows of one
// table. It holds no per-evaluation state and is safe for concurrent use.
type Engine struct {
	columns ColumnIndex
	now     func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithNow sets the clock used by date functions.
func WithNow(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine over the given column index.
func NewEngine(columns ColumnIndex, opts ...EngineOption) *Engine {
	e := &Engine{columns: columns, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.columns == nil {
		e.columns = ColumnIndex{}
	}
	return e
}

// Columns returns the engine's column index.
func (e *Engine) Columns() ColumnIndex { return e.columns }

// IsEmail reports whether s is a single e-mail address.
func IsEmail(s string) bool {
	return len(s) <= 254 && emailAddress.MatchString(s)
}

// mailto wraps an e-mail address in a mailto link and returns anything
// else unchanged.
func mailto(s string) string {
	if !IsEmail(s) {
		return s
	}
	return `<a href="mailto:` + s + `">` + html.EscapeString(s) + `</a>`
}

// stripWhitespace drops whitespace outside '...' and "..." literals. A
// literal ends only at the quote character that opened it.
func stripWhitespace(expr string) string {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(expr); i++ {
		ch := expr[i]
		switch {
		case quote == 0 && (ch == '\'' || ch == '"'):
			quote = ch
		case quote != 0 && ch == quote:
			quote = 0
		case quote == 0 && isSpace(ch):
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// firstCall locates the leftmost name( outside a literal.
func firstCall(expr string) (name string, start, openEnd int, ok bool) {
	offset := 0
	for offset < len(expr) {
		loc := functionCallStart.FindStringIndex(expr[offset:])
		if loc == nil {
			return "", 0, 0, false
		}
		start, openEnd = offset+loc[0], offset+loc[1]
		if !insideLiteral(expr, start) {
			return expr[start : openEnd-1], start, openEnd, true
		}
		offset = openEnd
	}
	return "", 0, 0, false
}

// splitOutside splits s on sep wherever sep is outside a '...' literal and
// outside parentheses.
func splitOutside(s string, sep byte) []string {
	var parts []string
	depth := 0
	inQuote := false
	last := 0
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case ch == '\'':
			inQuote = !inQuote
		case inQuote:
		case ch == '(':
			depth++
		case ch == ')':
			if depth > 0 {
				depth--
			}
		case ch == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}

// isQuoted reports whether s is a single '...' literal.
func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' && strings.Count(s, "'") == 2
}

// cell returns the stored value of a column, with '' decoded to a double
// quote and e-mail addresses linked.
func (e *Engine) cell(row Row, name string) string {
	v := row.Cell(e.columns[name])
	v = strings.ReplaceAll(v, "''", `"`)
	return mailto(v)
}

// EvaluateExpression evaluates a display expression against row: a column
// name, a function call, a '+' concatenation or a quoted literal. It never
// fails; problems surface as "" or as an inline message.
func (e *Engine) EvaluateExpression(row Row, expr string) string {
	if name := strings.TrimSpace(expr); e.columns.Has(name) {
		return e.cell(row, name)
	}

	expr = stripWhitespace(expr)
	if IsEmail(expr) {
		return mailto(expr)
	}

	for i := 0; i < maxCallsPerExpression; i++ {
		name, start, openEnd, ok := firstCall(expr)
		if !ok {
			break
		}
		end, closed := findCallEnd(expr, openEnd)
		if !closed {
			logging.Debug("unclosed function call", "expression", expr)
			return ""
		}
		fn, known := LookupFunction(name)
		if !known {
			logging.Debug("unsupported function", "function", name)
			return "Unsupported function " + name
		}

		raw := expr[openEnd : end-1]
		arg := e.EvaluateExpression(row, raw)
		if arg == "" {
			arg = raw
		}
		result := fn.Evaluate(arg, e.now())

		spliced := expr[:start] + result + expr[end:]
		if !strings.Contains(spliced, "+") {
			return spliced
		}
		expr = expr[:start] + "'" + result + "'" + expr[end:]
	}

	if e.columns.Has(expr) {
		return e.cell(row, expr)
	}

	if parts := splitOutside(expr, '+'); len(parts) > 1 {
		var b strings.Builder
		for _, part := range parts {
			if isQuoted(part) {
				b.WriteString(part[1 : len(part)-1])
				continue
			}
			b.WriteString(e.EvaluateExpression(row, strings.TrimSpace(part)))
		}
		return b.String()
	}

	if isQuoted(expr) {
		return expr[1 : len(expr)-1]
	}
	return ""
}

// Resolve turns one filter token into a value for row. Term placeholders
// are expanded and evaluated as display expressions; literals lose their
// quotes; column names yield the cell, or the name itself when the cell is
// empty; anything else is returned as written.
func (e *Engine) Resolve(row Row, tok Token, terms TermMap) string {
	v := tok.Value
	if text, ok := terms[v]; ok {
		return e.EvaluateExpression(row, terms.Expand(text))
	}

	v = RestoreLiterals(v)
	if strings.Contains(v, "'") {
		return strings.ReplaceAll(v, "'", "")
	}
	if strings.Contains(v, `"`) {
		return strings.ReplaceAll(v, `"`, "")
	}
	if e.columns.Has(v) {
		if val := e.EvaluateExpression(row, v); val != "" {
			return val
		}
	}
	return v
}
