package query

import (
	"regexp"
	"strings"
	"time"
)

// String Functions

// UppercaseFunc converts text to uppercase
type UppercaseFunc struct{}

func (f *UppercaseFunc) Name() string        { return "uppercase" }
func (f *UppercaseFunc) Description() string { return "Converts text to uppercase." }
func (f *UppercaseFunc) Evaluate(arg string, _ time.Time) string {
	return strings.ToUpper(arg)
}

// LowercaseFunc converts text to lowercase
type LowercaseFunc struct{}

func (f *LowercaseFunc) Name() string        { return "lowercase" }
func (f *LowercaseFunc) Description() string { return "Converts text to lowercase." }
func (f *LowercaseFunc) Evaluate(arg string, _ time.Time) string {
	return strings.ToLower(arg)
}

// trimSet is stripped from both ends by trim().
const trimSet = " \t\n,-."

// TrimFunc strips spaces, tabs, newlines, commas, hyphens and periods from both ends
type TrimFunc struct{}

func (f *TrimFunc) Name() string { return "trim" }
func (f *TrimFunc) Description() string {
	return "Strips spaces, tabs, newlines, commas, hyphens and periods from both ends."
}
func (f *TrimFunc) Evaluate(arg string, _ time.Time) string {
	return strings.Trim(arg, trimSet)
}

// CommaFunc ignores its argument and returns a comma
type CommaFunc struct{}

func (f *CommaFunc) Name() string        { return "comma" }
func (f *CommaFunc) Description() string { return "Returns a comma (,)." }
func (f *CommaFunc) Evaluate(string, time.Time) string {
	return ","
}

// Markup Functions

// BoldFunc wraps the value in <b>
type BoldFunc struct{}

func (f *BoldFunc) Name() string        { return "bold" }
func (f *BoldFunc) Description() string { return "Converts the value to bold." }
func (f *BoldFunc) Evaluate(arg string, _ time.Time) string {
	return "<b>" + arg + "</b>"
}

// ItalicsFunc wraps the value in <i>
type ItalicsFunc struct{}

func (f *ItalicsFunc) Name() string        { return "italics" }
func (f *ItalicsFunc) Description() string { return "Converts the value to italics." }
func (f *ItalicsFunc) Evaluate(arg string, _ time.Time) string {
	return "<i>" + arg + "</i>"
}

// H3Func wraps the value in <h3>
type H3Func struct{}

func (f *H3Func) Name() string        { return "h3" }
func (f *H3Func) Description() string { return "Converts the value to h3." }
func (f *H3Func) Evaluate(arg string, _ time.Time) string {
	return "<h3>" + arg + "</h3>"
}

var listBreak = regexp.MustCompile(`(?i)<br\s*/?>`)

// BulletedListFunc renders one list item per line. Lines starting with "-"
// become second-order items.
type BulletedListFunc struct{}

func (f *BulletedListFunc) Name() string { return "bulleted_list" }
func (f *BulletedListFunc) Description() string {
	return "Converts a string with newlines or <br/> tags into a bulleted list."
}
func (f *BulletedListFunc) Evaluate(arg string, _ time.Time) string {
	if arg == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, line := range strings.Split(listBreak.ReplaceAllString(arg, "\n"), "\n") {
		item := strings.TrimSpace(line)
		if item == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(item, "-"); ok {
			item = `<div class="second-order">` + rest + `</div>`
		}
		b.WriteString("<li>" + item + "</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}
