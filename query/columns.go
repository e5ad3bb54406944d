package query

import "strings"

// ParseColumnSpec parses "{Name,Label:expression,...}". An entry without a
// colon shows the column of that name; otherwise the text after the first
// colon is the display expression. Commas inside literals or parentheses
// do not separate entries. An empty spec selects every header column.
func ParseColumnSpec(s string, header []string) ColumnSpec {
	var spec ColumnSpec
	s = strings.Trim(strings.TrimSpace(s), "{}")
	if strings.TrimSpace(s) == "" {
		for _, name := range header {
			spec.Set(name, name)
		}
		return spec
	}

	for _, def := range splitOutside(s, ',') {
		name, expr, found := strings.Cut(strings.TrimSpace(def), ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !found {
			spec.Set(name, name)
			continue
		}
		spec.Set(name, strings.TrimSpace(expr))
	}
	return spec
}

// ParseColumnNames parses "{Label1,,Label3}" into one display label per
// output column. Without a names string the spec's column names are used.
func ParseColumnNames(s string, spec ColumnSpec) []string {
	s = strings.Trim(strings.TrimSpace(s), "{}")
	if s == "" {
		return spec.Names()
	}
	parts := strings.Split(s, ",")
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = strings.TrimSpace(p)
	}
	return names
}
