package query

import (
	"errors"
	"sync"
	"testing"
)

func TestRowMatchesFilter(t *testing.T) {
	header := []string{"A", "B", "C", "Naam", "Status", "Voornaam", "Achternaam", "Rol"}
	e := NewEngine(BuildColumnIndex(header), WithNow(fixedClock))

	row := func(a, b, c string) Row {
		return Row{a, b, c, "Jan Jansen", "open", "Jan", "Jansen", "lead,manager"}
	}

	tests := []struct {
		name string
		row  Row
		expr string
		want bool
	}{
		{"and binds tighter than or", row("1", "9", "3"), "A=1 and B=2 or C=3", true},
		{"neither side of or holds", row("1", "9", "4"), "A=1 and B=2 or C=3", false},
		{"explicit grouping", row("1", "9", "3"), "(A=1 and B=2) or C=3", true},
		{"group on the right", row("1", "9", "3"), "A = 1 and (B = 2 or C = 3)", true},
		{"group on the right fails", row("2", "9", "3"), "A = 1 and (B = 2 or C = 3)", false},
		{"two groups", row("0", "2", "0"), "(A=1) or (B=2)", true},
		{"nested groups", row("1", "0", "3"), "((A=1 or B=2) and C=3)", true},
		{"uppercase connectives", row("1", "2", "0"), "A=1 AND B=2", true},
		{"literal with space", row("", "", ""), "Naam = 'Jan Jansen'", true},
		{"literal with operator chars", row("", "", ""), "Naam <> 'a = (b)'", true},
		{"in", row("", "", ""), "'Jan' in Naam", true},
		{"in fails", row("", "", ""), "'Piet' in Naam", false},
		{"in on list column", row("", "", ""), "manager in Rol", true},
		{"function term", row("", "", ""), "uppercase(Status) = 'OPEN'", true},
		{"concatenation term", row("", "", ""), "Voornaam + ' ' + Achternaam = 'Jan Jansen'", true},
		{"numeric greater", row("10", "", ""), "A > 5", true},
		{"numeric less than string order", row("10", "", ""), "A < 9", false},
		{"numeric equality ignores format", row("5.0", "", ""), "A = 5", true},
		{"less or equal", row("5", "", ""), "A <= 5", true},
		{"greater or equal", row("4", "", ""), "A >= 5", false},
		{"not equal", row("2", "", ""), "A <> 1", true},
		{"not equal fails", row("1", "", ""), "A <> 1", false},
		{"string comparison", row("", "", ""), "Status > 'dicht'", true},
		{"escaped greater than", row("10", "", ""), "A &gt; 5", true},
		{"escaped less or equal", row("5", "", ""), "A &lt;= 5", true},
		{"unterminated literal", row("", "", ""), "Status = 'open", false},
		{"unclosed paren", row("1", "", ""), "(A = 1", false},
		{"stray close paren", row("1", "", ""), "A = 1)", false},
		{"close before open", row("1", "2", ""), "A = 1) and (B = 2", false},
		{"list operand", row("1", "", ""), "A B = 1", false},
		{"bare operand", row("1", "", ""), "A", false},
		{"empty expression", row("1", "", ""), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.RowMatchesFilter(tt.row, tt.expr); got != tt.want {
				t.Errorf("RowMatchesFilter(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCompileFilterErrors(t *testing.T) {
	e := NewEngine(BuildColumnIndex([]string{"A"}))

	tests := []struct {
		expr string
		want error
	}{
		{"A = 'open", ErrUnterminatedLiteral},
		{"(A = 1", ErrUnbalancedParens},
		{"A = 1)", ErrUnbalancedParens},
		{"(A = 1) and (B = 2", ErrUnbalancedParens},
	}
	for _, tt := range tests {
		_, err := e.CompileFilter(tt.expr)
		if !errors.Is(err, tt.want) {
			t.Errorf("CompileFilter(%q) error = %v, want %v", tt.expr, err, tt.want)
		}
	}
}

func TestCompileFilterTree(t *testing.T) {
	e := NewEngine(BuildColumnIndex([]string{"A", "B", "C"}))
	f, err := e.CompileFilter("A=1 and B=2 or C=3")
	if err != nil {
		t.Fatalf("CompileFilter: %v", err)
	}
	if f.String() != "A=1 and B=2 or C=3" {
		t.Errorf("String() = %q", f.String())
	}

	root, ok := f.Root().(*BinaryNode)
	if !ok || root.Op != OpOr {
		t.Fatalf("root = %#v, want or node", f.Root())
	}
	left, ok := root.Left.(*BinaryNode)
	if !ok || left.Op != OpAnd {
		t.Fatalf("left = %#v, want and node", root.Left)
	}
	right, ok := root.Right.(*BinaryNode)
	if !ok || right.Op != OpEqual {
		t.Fatalf("right = %#v, want = node", root.Right)
	}
}

func TestFilterSharedAcrossGoroutines(t *testing.T) {
	e := NewEngine(BuildColumnIndex([]string{"A", "B"}))
	f, err := e.CompileFilter("uppercase(A) = 'X' and B > 10")
	if err != nil {
		t.Fatalf("CompileFilter: %v", err)
	}

	rows := []Row{{"x", "11"}, {"y", "11"}, {"x", "9"}, {"X", "100"}}
	want := []bool{true, false, false, true}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, r := range rows {
				if got := f.Match(r); got != want[i] {
					t.Errorf("Match(%v) = %v, want %v", r, got, want[i])
				}
			}
		}()
	}
	wg.Wait()
}

func TestCompare(t *testing.T) {
	tests := []struct {
		left  string
		op    Operator
		right string
		want  bool
	}{
		{"10", OpGreater, "9", true},
		{"10", OpEqual, "10.0", true},
		{"1e2", OpEqual, "100", true},
		{"abc", OpLess, "abd", true},
		{"10", OpGreater, "9a", false},
		{"Jan", OpEqual, "jan", false},
		{"", OpEqual, "", true},
	}
	for _, tt := range tests {
		if got := compare(tt.left, tt.op, tt.right); got != tt.want {
			t.Errorf("compare(%q %s %q) = %v, want %v", tt.left, tt.op, tt.right, got, tt.want)
		}
	}
}
