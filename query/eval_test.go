package query

import (
	"testing"
	"time"
)

var fixedNow = time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var personHeader = []string{"Voornaam", "Achternaam", "Email", "Omschrijving", "Leeg", "Eerste naam", "Quote"}

var personRow = Row{
	"Jan",
	"Jansen",
	"jan@example.nl",
	"regel1\n-sub\nregel2",
	"",
	"Piet",
	"zei ''hoi''",
}

func newPersonEngine() *Engine {
	return NewEngine(BuildColumnIndex(personHeader), WithNow(fixedClock))
}

func TestEvaluateExpression(t *testing.T) {
	e := newPersonEngine()

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"column", "Voornaam", "Jan"},
		{"column with surrounding spaces", "  Achternaam ", "Jansen"},
		{"column name containing a space", "Eerste naam", "Piet"},
		{"doubled quotes in cell", "Quote", `zei "hoi"`},
		{"email cell", "Email", `<a href="mailto:jan@example.nl">jan@example.nl</a>`},
		{"email expression", "info@example.nl", `<a href="mailto:info@example.nl">info@example.nl</a>`},
		{"concatenation", "Voornaam+' '+Achternaam", "Jan Jansen"},
		{"concatenation with spaces", "Achternaam + ', ' + Voornaam", "Jansen, Jan"},
		{"nested calls", "uppercase(lowercase('AbC'))", "ABC"},
		{"call on column", "uppercase(Voornaam)", "JAN"},
		{"calls inside concatenation", "bold(Voornaam)+' '+italics(Achternaam)", "<b>Jan</b> <i>Jansen</i>"},
		{"trim literal", "trim(' -hallo. ')", "hallo"},
		{"comma without argument", "comma()", ","},
		{"comma between columns", "Voornaam+comma()+Achternaam", "Jan,Jansen"},
		{"h3", "h3(Achternaam)", "<h3>Jansen</h3>"},
		{"bulleted list", "bulleted_list(Omschrijving)",
			`<ul><li>regel1</li><li><div class="second-order">sub</div></li><li>regel2</li></ul>`},
		{"days plus", "days_plus(5)", "250325"},
		{"date description of days plus", "date_description(days_plus(5))", "Dinsdag 25 maart"},
		{"empty argument falls back to raw text", "bold(Leeg)", "<b>Leeg</b>"},
		{"unsupported function", "onbekend(Voornaam)", "Unsupported function onbekend"},
		{"function names are case-sensitive", "Uppercase(Voornaam)", "Unsupported function Uppercase"},
		{"unclosed call", "bold(Voornaam", ""},
		{"unknown column", "Onbekend", ""},
		{"literal", "'letterlijk'", "letterlijk"},
		{"empty expression", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.EvaluateExpression(personRow, tt.expr); got != tt.want {
				t.Errorf("EvaluateExpression(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateExpressionShortRow(t *testing.T) {
	e := newPersonEngine()
	if got := e.EvaluateExpression(Row{"Jan"}, "Voornaam+'/'+Quote"); got != "Jan/" {
		t.Errorf("got %q, want %q", got, "Jan/")
	}
}

func TestResolve(t *testing.T) {
	e := newPersonEngine()

	tests := []struct {
		name string
		tok  Token
		want string
	}{
		{"column", Token{Kind: TokenWord, Value: "Voornaam"}, "Jan"},
		{"empty column yields its name", Token{Kind: TokenWord, Value: "Leeg"}, "Leeg"},
		{"bare word", Token{Kind: TokenWord, Value: "open"}, "open"},
		{"single-quoted literal", Token{Kind: TokenLiteral, Value: "'x'"}, "x"},
		{"double-quoted word", Token{Kind: TokenWord, Value: `"dicht"`}, "dicht"},
		{"protected literal", Token{Kind: TokenLiteral, Value: "'assxxaxxssb'"}, "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Resolve(personRow, tt.tok, nil); got != tt.want {
				t.Errorf("Resolve(%+v) = %q, want %q", tt.tok, got, tt.want)
			}
		})
	}

	t.Run("term placeholder", func(t *testing.T) {
		terms := TermMap{"xxtermaxx": "uppercase(Voornaam)+'ssxxaxxss'+Achternaam"}
		tok := Token{Kind: TokenWord, Value: "xxtermaxx"}
		if got := e.Resolve(personRow, tok, terms); got != "JAN Jansen" {
			t.Errorf("Resolve(placeholder) = %q, want %q", got, "JAN Jansen")
		}
	})
}

func TestIsEmail(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"jan@example.nl", true},
		{"first.last+tag@sub.example.com", true},
		{"niet-een-adres", false},
		{"jan@", false},
		{"jan@example", false},
		{"jan @example.nl", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsEmail(tt.input); got != tt.want {
			t.Errorf("IsEmail(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSplitOutside(t *testing.T) {
	tests := []struct {
		input string
		sep   byte
		want  []string
	}{
		{"a+b+c", '+', []string{"a", "b", "c"}},
		{"a+'x+y'+b", '+', []string{"a", "'x+y'", "b"}},
		{"f(a,b),c", ',', []string{"f(a,b)", "c"}},
		{"single", ',', []string{"single"}},
	}
	for _, tt := range tests {
		got := splitOutside(tt.input, tt.sep)
		if len(got) != len(tt.want) {
			t.Errorf("splitOutside(%q) = %q, want %q", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitOutside(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}
