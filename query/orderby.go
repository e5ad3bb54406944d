package query

import (
	"fmt"
	"sort"
	"strings"
)

// SortSpec orders rows by one or more columns.
type SortSpec struct {
	Fields []string
	Desc   bool
}

// IsZero reports whether the spec sorts nothing.
func (s SortSpec) IsZero() bool { return len(s.Fields) == 0 }

func isDescending(dir string) bool {
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "descending", "desc":
		return true
	default:
		return false
	}
}

func isDirection(word string) bool {
	switch strings.ToLower(word) {
	case "ascending", "asc", "descending", "desc":
		return true
	default:
		return false
	}
}

// ParseSort parses "Field1+Field2,Descending". The direction may also
// follow the fields after a space ("Field desc"). Ascending is the default.
func ParseSort(s string) SortSpec {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortSpec{}
	}

	fields, dir, found := strings.Cut(s, ",")
	if !found {
		if i := strings.LastIndexAny(fields, " \t"); i >= 0 && isDirection(fields[i+1:]) {
			fields, dir = fields[:i], fields[i+1:]
		}
	}

	var spec SortSpec
	for _, f := range strings.Split(fields, "+") {
		if f = strings.TrimSpace(f); f != "" {
			spec.Fields = append(spec.Fields, f)
		}
	}
	spec.Desc = isDescending(dir)
	return spec
}

// compareFold compares two strings ignoring case.
func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// ApplySort returns rows sorted by spec. The sort is stable: rows equal on
// every field keep their order. Every field must be a known column.
func ApplySort(rows []Row, spec SortSpec, columns ColumnIndex) ([]Row, error) {
	if len(rows) == 0 || spec.IsZero() {
		return rows, nil
	}

	indexes := make([]int, len(spec.Fields))
	for i, f := range spec.Fields {
		idx, ok := columns[f]
		if !ok {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidSortField, f)
		}
		indexes[i] = idx
	}

	// Create a copy to avoid modifying the original slice
	sorted := make([]Row, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		for _, idx := range indexes {
			cmp := compareFold(sorted[i].Cell(idx), sorted[j].Cell(idx))
			if cmp != 0 {
				if spec.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		return false
	})

	return sorted, nil
}
