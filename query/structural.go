package query

import (
	"math"
	"strings"
	"time"
)

// ConditionKind tells how a structural condition selects rows.
type ConditionKind int

const (
	// ConditionValues keeps rows whose cell equals one of Values, ignoring case.
	ConditionValues ConditionKind = iota
	// ConditionToday keeps rows whose date cell lies MinDays..MaxDays from today.
	ConditionToday
	// ConditionLink keeps every row and renders the column as a download link.
	ConditionLink
)

// FilterCondition is the condition on one column of a structural filter.
type FilterCondition struct {
	Field  string
	Kind   ConditionKind
	Values []string

	MinDays, MaxDays int

	LinkPath        string
	LinkDescription string
}

// FilterConditionSet holds structural conditions in the order written.
// Every condition must hold for a row to be kept.
type FilterConditionSet struct {
	conditions []FilterCondition
}

// All returns the conditions in order.
func (s FilterConditionSet) All() []FilterCondition {
	out := make([]FilterCondition, len(s.conditions))
	copy(out, s.conditions)
	return out
}

// Get returns the condition on field.
func (s FilterConditionSet) Get(field string) (FilterCondition, bool) {
	for _, c := range s.conditions {
		if c.Field == field {
			return c, true
		}
	}
	return FilterCondition{}, false
}

// Len returns the number of conditions.
func (s FilterConditionSet) Len() int { return len(s.conditions) }

func (s *FilterConditionSet) set(c FilterCondition) {
	for i := range s.conditions {
		if s.conditions[i].Field == c.Field {
			s.conditions[i] = c
			return
		}
	}
	s.conditions = append(s.conditions, c)
}

const linkMarker = "LINK/"

// ParseStructuralFilter parses "{Field:{v1,v2}},{Field2:{...}}".
//
// A value list containing TODAY selects by date: the numeric values give
// the allowed day offset range [min,max] from today, each defaulting to 0.
// A value of the form LINK/path;description marks the column as a download
// link into path. Entries without a colon are ignored.
func ParseStructuralFilter(s string) FilterConditionSet {
	var set FilterConditionSet
	s = strings.Trim(strings.TrimSpace(s), "{}")
	if s == "" {
		return set
	}

	for _, part := range strings.Split(s, "},") {
		field, values, found := strings.Cut(strings.Trim(strings.TrimSpace(part), "{}"), ":")
		if !found {
			continue
		}
		c := FilterCondition{Field: strings.TrimSpace(field)}
		values = strings.Trim(strings.TrimSpace(values), "{}")

		if _, link, ok := strings.Cut(values, linkMarker); ok {
			c.Kind = ConditionLink
			c.LinkPath, c.LinkDescription, _ = strings.Cut(link, ";")
			set.set(c)
			continue
		}

		list := strings.Split(values, ",")
		for i := range list {
			list[i] = strings.TrimSpace(list[i])
		}

		if containsFold(list, "TODAY") {
			c.Kind = ConditionToday
			var offsets []int
			for _, v := range list {
				if n, ok := toFloat64(v); ok {
					offsets = append(offsets, int(n))
				}
			}
			if len(offsets) > 0 {
				c.MinDays = offsets[0]
			}
			if len(offsets) > 1 {
				c.MaxDays = offsets[1]
			}
		} else {
			c.Values = list
		}
		set.set(c)
	}
	return set
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// closestTracker remembers the date cell nearest to today among the cells
// a TODAY condition looked at.
type closestTracker struct {
	value   string
	minDiff int
	found   bool
}

func newClosestTracker() *closestTracker {
	return &closestTracker{minDiff: math.MaxInt}
}

func (t *closestTracker) observe(value string, diff int) {
	if diff < 0 {
		diff = -diff
	}
	if diff < t.minDiff {
		t.minDiff = diff
		t.value = value
		t.found = true
	}
}

// matchConditions reports whether row satisfies every condition. Conditions
// are checked in order and checking stops at the first failure.
func matchConditions(row Row, set FilterConditionSet, columns ColumnIndex, today time.Time, closest *closestTracker) bool {
	for _, c := range set.conditions {
		idx, ok := columns[c.Field]
		if !ok {
			return false
		}
		cell := strings.TrimSpace(row.Cell(idx))

		switch c.Kind {
		case ConditionLink:
			continue
		case ConditionToday:
			date, ok := ParseDutchDate(cell)
			if !ok {
				return false
			}
			diff := DaysBetween(today, date)
			closest.observe(cell, diff)
			if diff < c.MinDays || diff > c.MaxDays {
				return false
			}
		default:
			if !containsFold(c.Values, cell) {
				return false
			}
		}
	}
	return true
}
