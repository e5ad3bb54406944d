package query

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidTable is attached to a Query whose table has no header row.
	ErrInvalidTable = errors.New("invalid table")
	// ErrInvalidSortField is attached to a Query sorting on an unknown column.
	ErrInvalidSortField = errors.New("invalid sort field")
	// ErrUnterminatedLiteral is returned when a quoted literal is never closed.
	ErrUnterminatedLiteral = errors.New("unterminated literal")
	// ErrUnbalancedParens is returned when a '(' or ')' has no partner.
	ErrUnbalancedParens = errors.New("unbalanced parentheses")
)

// TokenKind tags a token produced by Tokenize.
type TokenKind int

const (
	TokenWord       TokenKind = iota // column name, keyword, bare value or placeholder
	TokenLiteral                     // '...' including its quotes
	TokenOperator                    // = < > <= >= <>
	TokenLeftParen                   // (
	TokenRightParen                  // )
)

func (k TokenKind) String() string {
	switch k {
	case TokenWord:
		return "word"
	case TokenLiteral:
		return "literal"
	case TokenOperator:
		return "operator"
	case TokenLeftParen:
		return "("
	case TokenRightParen:
		return ")"
	default:
		return "unknown"
	}
}

// Token is one lexical unit of a filter expression.
type Token struct {
	Kind  TokenKind
	Value string
	// Unterminated marks a literal whose closing quote is missing; Value
	// then holds the rest of the input.
	Unterminated bool
}

// isKeyword reports whether the token is the connective kw, written all
// lowercase or all uppercase.
func (t Token) isKeyword(kw string) bool {
	return t.Kind == TokenWord && (t.Value == kw || t.Value == strings.ToUpper(kw))
}

// Row is one data row. Rows may be shorter than the header.
type Row []string

// Cell returns the value at i, or "" when the row is too short.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// ColumnIndex maps a column name to its position in a row.
type ColumnIndex map[string]int

// BuildColumnIndex indexes a header row. A duplicated name keeps its first
// position.
func BuildColumnIndex(header []string) ColumnIndex {
	idx := make(ColumnIndex, len(header))
	for i, name := range header {
		if _, exists := idx[name]; !exists {
			idx[name] = i
		}
	}
	return idx
}

// Has reports whether name is a known column.
func (c ColumnIndex) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// ColumnSpec is an ordered mapping from output column name to display
// expression.
type ColumnSpec struct {
	names []string
	exprs map[string]string
}

// Set adds name, or replaces its expression while keeping its position.
func (s *ColumnSpec) Set(name, expr string) {
	if s.exprs == nil {
		s.exprs = make(map[string]string)
	}
	if _, exists := s.exprs[name]; !exists {
		s.names = append(s.names, name)
	}
	s.exprs[name] = expr
}

// Names returns the output column names in order.
func (s ColumnSpec) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Expression returns the display expression for name.
func (s ColumnSpec) Expression(name string) (string, bool) {
	e, ok := s.exprs[name]
	return e, ok
}

// Len returns the number of output columns.
func (s ColumnSpec) Len() int { return len(s.names) }

// TermMap maps a term placeholder to the text it replaced.
type TermMap map[string]string

// Expand replaces every placeholder embedded in text with its original
// text, repeating until none remain, and restores protected literals.
func (m TermMap) Expand(text string) string {
	for i := 0; i <= len(m); i++ {
		changed := false
		for ph, orig := range m {
			if strings.Contains(text, ph) {
				text = strings.ReplaceAll(text, ph, orig)
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return RestoreLiterals(text)
}

// Operator is a filter operator or connective.
type Operator string

const (
	OpOr           Operator = "or"
	OpAnd          Operator = "and"
	OpIn           Operator = "in"
	OpEqual        Operator = "="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreaterEqual Operator = ">="
	OpNotEqual     Operator = "<>"
)

// operatorPriority is the order in which the parser looks for a split
// point. The first operator found anywhere in a token run wins.
var operatorPriority = []Operator{
	OpOr, OpAnd, OpIn,
	OpEqual, OpGreater, OpLess, OpLessEqual, OpGreaterEqual, OpNotEqual,
}

// FilterNode is a node of a compiled filter expression: a BoolLeaf, a
// BinaryNode or an Operand.
type FilterNode interface {
	filterNode()
}

// BoolLeaf is an already-decided truth value.
type BoolLeaf bool

// BinaryNode applies Op to two sub-trees.
type BinaryNode struct {
	Op          Operator
	Left, Right FilterNode
}

// Operand is a run of tokens on one side of an operator. Only a single
// token resolves to a scalar value; longer runs act as a value list.
type Operand struct {
	Tokens []Token
	nested bool // run contained a parenthesised group
}

func (BoolLeaf) filterNode()    {}
func (*BinaryNode) filterNode() {}
func (*Operand) filterNode()    {}

// scalar returns the single token of a one-token operand.
func (o *Operand) scalar() (Token, bool) {
	if o.nested || len(o.Tokens) != 1 {
		return Token{}, false
	}
	return o.Tokens[0], true
}
