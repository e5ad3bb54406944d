package query

import "strings"

// Lexer splits a filter expression into tokens. Words end at whitespace,
// at a quote, at a parenthesis or at an operator character.
type Lexer struct {
	input string
	pos   int
	ch    byte
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.pos]
	}
	l.pos++
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) atEOF() bool {
	return l.pos > len(l.input)
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isDelimiter(ch byte) bool {
	return isSpace(ch) || ch == '\'' || ch == '=' || ch == '(' || ch == ')' || ch == '<' || ch == '>'
}

// skipWhitespace skips whitespace characters
func (l *Lexer) skipWhitespace() {
	for !l.atEOF() && isSpace(l.ch) {
		l.readChar()
	}
}

// readLiteral reads a '...' literal, quotes included. Without a closing
// quote the rest of the input is returned as an unterminated literal.
func (l *Lexer) readLiteral() Token {
	start := l.pos - 1
	l.readChar() // skip opening quote
	for !l.atEOF() && l.ch != '\'' {
		l.readChar()
	}
	if l.atEOF() {
		return Token{Kind: TokenLiteral, Value: l.input[start:], Unterminated: true}
	}
	l.readChar() // skip closing quote
	return Token{Kind: TokenLiteral, Value: l.input[start : l.pos-1]}
}

// readWord reads up to the next delimiter.
func (l *Lexer) readWord() string {
	start := l.pos - 1
	for !l.atEOF() && !isDelimiter(l.ch) {
		l.readChar()
	}
	return l.input[start : l.pos-1]
}

// NextToken returns the next token and false once the input is exhausted.
func (l *Lexer) NextToken() (Token, bool) {
	l.skipWhitespace()
	if l.atEOF() {
		return Token{}, false
	}

	var tok Token
	switch l.ch {
	case '\'':
		return l.readLiteral(), true
	case '(':
		tok = Token{Kind: TokenLeftParen, Value: "("}
		l.readChar()
	case ')':
		tok = Token{Kind: TokenRightParen, Value: ")"}
		l.readChar()
	case '=':
		tok = Token{Kind: TokenOperator, Value: "="}
		l.readChar()
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = Token{Kind: TokenOperator, Value: "<="}
		case '>':
			l.readChar()
			tok = Token{Kind: TokenOperator, Value: "<>"}
		default:
			tok = Token{Kind: TokenOperator, Value: "<"}
		}
		l.readChar()
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Kind: TokenOperator, Value: ">="}
		} else {
			tok = Token{Kind: TokenOperator, Value: ">"}
		}
		l.readChar()
	default:
		tok = Token{Kind: TokenWord, Value: l.readWord()}
	}
	return tok, true
}

// Tokenize splits expr into tokens. Run ExtractTerms first so that function
// calls, concatenations and the insides of literals arrive as single units.
func Tokenize(expr string) []Token {
	l := NewLexer(expr)
	var tokens []Token
	for {
		tok, ok := l.NextToken()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// decodeEntities turns the HTML-escaped comparison operators an editor may
// leave in an expression back into < and >.
func decodeEntities(expr string) string {
	r := strings.NewReplacer("&lt;", "<", "&gt;", ">", "&lt", "<", "&gt", ">")
	return r.Replace(expr)
}
