package query

import (
	"regexp"
	"strings"
)

// literalPlaceholders stand in for characters inside a quoted literal that
// the tokenizer would otherwise split on. Protection replaces in this order
// and restoration walks the same order.
var literalPlaceholders = []struct {
	placeholder string
	text        string
}{
	{"ssxxaxxss", " "},
	{"ssxxbxxss", "="},
	{"ssxxcxxss", "("},
	{"ssxxdxxss", ")"},
	{"ssxxexxss", "<"},
	{"ssxxfxxss", ">"},
	{"ssxxgxxss", "<="},
	{"ssxxhxxss", ">="},
	{"ssxxixxss", "<>"},
	{"ssxxjxxss", `"`},
}

var (
	functionCallStart = regexp.MustCompile(`\w+\(`)
	concatenationRun  = regexp.MustCompile(`(?:'[^']*'|[\w-]+)(?:\+(?:'[^']*'|[\w-]+))+`)
)

// protectLiteral masks the sensitive characters of one literal.
func protectLiteral(lit string) string {
	for _, p := range literalPlaceholders {
		lit = strings.ReplaceAll(lit, p.text, p.placeholder)
	}
	return lit
}

// ProtectLiterals masks spaces, operators, parentheses and double quotes
// inside every closed '...' literal of expr. An opening quote without a
// partner stops the scan; the rest of expr is left as-is.
func ProtectLiterals(expr string) string {
	var b strings.Builder
	rest := expr
	for {
		open := strings.IndexByte(rest, '\'')
		if open < 0 {
			break
		}
		closing := strings.IndexByte(rest[open+1:], '\'')
		if closing < 0 {
			break
		}
		closing += open + 1
		b.WriteString(rest[:open])
		b.WriteString(protectLiteral(rest[open : closing+1]))
		rest = rest[closing+1:]
	}
	b.WriteString(rest)
	return b.String()
}

// RestoreLiterals reverses ProtectLiterals.
func RestoreLiterals(s string) string {
	for _, p := range literalPlaceholders {
		s = strings.ReplaceAll(s, p.placeholder, p.text)
	}
	return s
}

// insideLiteral reports whether position pos of s lies within a '...'
// literal, counting quotes from the start of s.
func insideLiteral(s string, pos int) bool {
	return strings.Count(s[:pos], "'")%2 == 1
}

// numberToLetters encodes n in bijective base 26: 1 is "a", 26 is "z",
// 27 is "aa".
func numberToLetters(n int) string {
	var letters []byte
	for n > 0 {
		code := (n - 1) % 26
		letters = append([]byte{byte('a' + code)}, letters...)
		n = (n - code - 1) / 26
	}
	return string(letters)
}

// termPlaceholder returns the placeholder for the n-th extracted term.
func termPlaceholder(n int) string {
	return "xxterm" + numberToLetters(n) + "xx"
}

// findCallEnd returns the index just past the ')' closing the call whose
// '(' ends at openEnd, or len(s) when the call is never closed.
func findCallEnd(s string, openEnd int) (int, bool) {
	depth := 1
	inQuote := false
	for i := openEnd; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
				if depth == 0 {
					return i + 1, true
				}
			}
		}
	}
	return len(s), false
}

// span is a half-open byte range of an expression.
type span struct{ start, end int }

// functionCalls returns each outermost name(...) span of s, left to right.
func functionCalls(s string) []span {
	var calls []span
	offset := 0
	for offset < len(s) {
		loc := functionCallStart.FindStringIndex(s[offset:])
		if loc == nil {
			break
		}
		start, openEnd := offset+loc[0], offset+loc[1]
		if insideLiteral(s, start) {
			offset = openEnd
			continue
		}
		end, _ := findCallEnd(s, openEnd)
		calls = append(calls, span{start, end})
		offset = end
	}
	return calls
}

// concatenations returns each maximal a+b+... run of s that does not start
// inside a literal.
func concatenations(s string) []span {
	var runs []span
	for _, loc := range concatenationRun.FindAllStringIndex(s, -1) {
		if insideLiteral(s, loc[0]) {
			continue
		}
		runs = append(runs, span{loc[0], loc[1]})
	}
	return runs
}

// collapsePlus removes whitespace next to every '+'.
func collapsePlus(s string) string {
	for strings.Contains(s, " +") || strings.Contains(s, "+ ") {
		s = strings.ReplaceAll(s, " +", "+")
		s = strings.ReplaceAll(s, "+ ", "+")
	}
	return s
}

// ExtractTerms rewrites expr so that literal contents, function calls and
// concatenation chains each become one atomic word, and returns the map
// needed to expand those words again.
//
// Literals are protected first. Function calls, nested calls included, are
// then replaced by placeholders. Finally, with spaces around '+' removed,
// every a+b+... run of literals, words and earlier placeholders is replaced
// too. Placeholders number from 1 across both passes.
func ExtractTerms(expr string) (string, TermMap) {
	terms := make(TermMap)
	counter := 1

	replace := func(s string, found []span) string {
		var b strings.Builder
		last := 0
		for _, sp := range found {
			ph := termPlaceholder(counter)
			counter++
			terms[ph] = s[sp.start:sp.end]
			b.WriteString(s[last:sp.start])
			b.WriteString(ph)
			last = sp.end
		}
		b.WriteString(s[last:])
		return b.String()
	}

	s := ProtectLiterals(expr)
	s = replace(s, functionCalls(s))
	s = collapsePlus(s)
	s = replace(s, concatenations(s))
	return s, terms
}
