package query

import (
	"errors"
	"strings"
	"testing"
)

func TestCompileFilterLimits(t *testing.T) {
	e := NewEngine(BuildColumnIndex([]string{"A"}))

	tests := []struct {
		name string
		expr string
		want error
	}{
		{"too long", strings.Repeat("x", MaxExpressionLength+1), ErrExpressionTooLong},
		{"too many tokens", strings.Repeat("A ", MaxTokens+1), ErrTooManyTokens},
		{"too deep", strings.Repeat("(", MaxGroupDepth+1) + "A=1" + strings.Repeat(")", MaxGroupDepth+1), ErrExpressionTooDeep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.CompileFilter(tt.expr)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if e.RowMatchesFilter(Row{"1"}, tt.expr) {
				t.Error("expression over the limits should not match")
			}
		})
	}

	deep := strings.Repeat("(", MaxGroupDepth) + "A=1" + strings.Repeat(")", MaxGroupDepth)
	if !e.RowMatchesFilter(Row{"1"}, deep) {
		t.Error("expression at the depth limit should still compile")
	}
}
