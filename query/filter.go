package query

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vegasq/tablequery/internal/logging"
)

// Filter is a compiled filter expression. It is immutable and may be
// matched against any number of rows, concurrently.
type Filter struct {
	engine *Engine
	source string
	terms  TermMap
	root   FilterNode
}

// Root returns the parsed expression tree.
func (f *Filter) Root() FilterNode { return f.root }

// Terms returns the placeholder map built while compiling.
func (f *Filter) Terms() TermMap { return f.terms }

// String returns the expression the filter was compiled from.
func (f *Filter) String() string { return f.source }

// CompileFilter parses a boolean filter expression such as
// "Dept = 'Sales' and (Age > 30 or Role in 'lead,manager')".
//
// Connectives and operators are split at their first occurrence, in the
// priority or, and, in, =, >, <, <=, >=, <>. Parenthesised groups are
// resolved first, innermost pair first.
func (e *Engine) CompileFilter(expr string) (*Filter, error) {
	if err := ValidateExpression(expr); err != nil {
		return nil, err
	}
	prepared, terms := ExtractTerms(decodeEntities(expr))
	tokens := Tokenize(prepared)
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}

	items := make([]item, len(tokens))
	for i, tok := range tokens {
		if tok.Unterminated {
			return nil, fmt.Errorf("%w: %s", ErrUnterminatedLiteral, RestoreLiterals(tok.Value))
		}
		items[i] = item{tok: tok}
	}

	root, err := parseFilter(items)
	if err != nil {
		return nil, err
	}
	return &Filter{engine: e, source: expr, terms: terms, root: root}, nil
}

// RowMatchesFilter compiles expr and matches it against row. Malformed
// expressions match nothing.
func (e *Engine) RowMatchesFilter(row Row, expr string) bool {
	f, err := e.CompileFilter(expr)
	if err != nil {
		logging.Debug("malformed filter expression", "expression", expr, "error", err)
		return false
	}
	return f.Match(row)
}

// Match evaluates the filter against row.
func (f *Filter) Match(row Row) bool {
	return f.evaluate(row, f.root)
}

// item is a token or an already-parsed parenthesised group.
type item struct {
	tok  Token
	node FilterNode
}

func (it item) isOperator(op Operator) bool {
	if it.node != nil {
		return false
	}
	switch op {
	case OpOr, OpAnd, OpIn:
		return it.tok.isKeyword(string(op))
	default:
		return it.tok.Kind == TokenOperator && it.tok.Value == string(op)
	}
}

func (it item) isParen(kind TokenKind) bool {
	return it.node == nil && it.tok.Kind == kind
}

// parseFilter builds the tree for a run of items.
func parseFilter(items []item) (FilterNode, error) {
	closeAt := -1
	for i, it := range items {
		if it.isParen(TokenRightParen) {
			closeAt = i
			break
		}
	}
	openAt := -1
	limit := len(items)
	if closeAt >= 0 {
		limit = closeAt
	}
	for i := limit - 1; i >= 0; i-- {
		if items[i].isParen(TokenLeftParen) {
			openAt = i
			break
		}
	}

	switch {
	case closeAt >= 0 && openAt < 0:
		return nil, fmt.Errorf("%w: ')' without '('", ErrUnbalancedParens)
	case closeAt < 0 && openAt >= 0:
		return nil, fmt.Errorf("%w: '(' without ')'", ErrUnbalancedParens)
	case closeAt >= 0:
		group, err := parseFilter(items[openAt+1 : closeAt])
		if err != nil {
			return nil, err
		}
		merged := make([]item, 0, len(items)-(closeAt-openAt))
		merged = append(merged, items[:openAt]...)
		merged = append(merged, item{node: group})
		merged = append(merged, items[closeAt+1:]...)
		return parseFilter(merged)
	}

	for _, op := range operatorPriority {
		for i, it := range items {
			if !it.isOperator(op) {
				continue
			}
			left, right := items[:i], items[i+1:]
			if op == OpOr || op == OpAnd {
				l, err := parseFilter(left)
				if err != nil {
					return nil, err
				}
				r, err := parseFilter(right)
				if err != nil {
					return nil, err
				}
				return &BinaryNode{Op: op, Left: l, Right: r}, nil
			}
			return &BinaryNode{Op: op, Left: operand(left), Right: operand(right)}, nil
		}
	}
	return operand(items), nil
}

// operand wraps a run of items. A lone parsed group is returned as-is.
func operand(items []item) FilterNode {
	if len(items) == 1 && items[0].node != nil {
		return items[0].node
	}
	o := &Operand{}
	for _, it := range items {
		if it.node != nil {
			o.nested = true
			continue
		}
		o.Tokens = append(o.Tokens, it.tok)
	}
	return o
}

// value resolves a scalar operand. Groups and multi-token runs are not
// scalars.
func (f *Filter) value(row Row, n FilterNode) (string, bool) {
	o, ok := n.(*Operand)
	if !ok {
		return "", false
	}
	tok, ok := o.scalar()
	if !ok {
		return "", false
	}
	return f.engine.Resolve(row, tok, f.terms), true
}

func (f *Filter) evaluate(row Row, n FilterNode) bool {
	switch node := n.(type) {
	case BoolLeaf:
		return bool(node)
	case *BinaryNode:
		switch node.Op {
		case OpAnd:
			l := f.evaluate(row, node.Left)
			r := f.evaluate(row, node.Right)
			return l && r
		case OpOr:
			l := f.evaluate(row, node.Left)
			r := f.evaluate(row, node.Right)
			return l || r
		case OpIn:
			needle, _ := f.value(row, node.Left)
			haystack, _ := f.value(row, node.Right)
			return strings.Contains(haystack, needle)
		default:
			l, lok := f.value(row, node.Left)
			r, rok := f.value(row, node.Right)
			if !lok || !rok {
				return false
			}
			return compare(l, node.Op, r)
		}
	default:
		return false
	}
}

var numericString = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)

// toFloat64 parses a numeric string, allowing surrounding whitespace.
func toFloat64(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numericString.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// compare applies op loosely: two numeric strings compare as numbers,
// anything else compares as strings.
func compare(left string, op Operator, right string) bool {
	leftNum, leftIsNum := toFloat64(left)
	rightNum, rightIsNum := toFloat64(right)
	if leftIsNum && rightIsNum {
		return compareNumbers(leftNum, op, rightNum)
	}
	return compareStrings(left, op, right)
}

// compareNumbers compares two numbers
func compareNumbers(left float64, op Operator, right float64) bool {
	const epsilon = 1e-9
	equal := math.Abs(left-right) < epsilon*max(1.0, math.Abs(left), math.Abs(right))
	switch op {
	case OpEqual:
		return equal
	case OpNotEqual:
		return !equal
	case OpLess:
		return left < right && !equal
	case OpGreater:
		return left > right && !equal
	case OpLessEqual:
		return left < right || equal
	case OpGreaterEqual:
		return left > right || equal
	default:
		return false
	}
}

// compareStrings compares two strings (case-sensitive)
func compareStrings(left string, op Operator, right string) bool {
	switch op {
	case OpEqual:
		return left == right
	case OpNotEqual:
		return left != right
	case OpLess:
		return left < right
	case OpGreater:
		return left > right
	case OpLessEqual:
		return left <= right
	case OpGreaterEqual:
		return left >= right
	default:
		return false
	}
}
