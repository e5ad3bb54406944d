package reader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

type courseRow struct {
	Course string `parquet:"Cursus"`
	Date   string `parquet:"Datum"`
	Seats  int64  `parquet:"Plaatsen"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func createParquetFile(t *testing.T, dir string, rows []courseRow) string {
	t.Helper()
	path := filepath.Join(dir, "courses.parquet")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	defer func() { _ = f.Close() }()

	writer := parquet.NewGenericWriter[courseRow](f)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("failed to write test data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return path
}

func createXLSXFile(t *testing.T, dir string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(dir, "agenda.xlsx")

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("bad coordinates: %v", err)
			}
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatalf("failed to set cell: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

func TestNormalizeCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a<br>b", "a\nb"},
		{"a<br/>b", "a\nb"},
		{"a<br />b", "a\nb"},
		{"a<BR>b", "a\nb"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCell(tt.in); got != tt.want {
			t.Errorf("NormalizeCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTableAccessors(t *testing.T) {
	var empty *Table
	if empty.Header() != nil || empty.Data() != nil {
		t.Error("nil table should have no header or data")
	}
	if err := empty.Validate(); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("Validate() = %v, want ErrInvalidTable", err)
	}

	tbl := &Table{Rows: [][]string{{"A"}, {"1"}, {"2"}}}
	if got := tbl.Header(); len(got) != 1 || got[0] != "A" {
		t.Errorf("Header() = %v", got)
	}
	if got := tbl.Data(); len(got) != 2 {
		t.Errorf("Data() has %d rows, want 2", len(got))
	}
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cursussen.csv", "\ufeffNaam,Omschrijving\nBasis,regel1<br>regel2\nKort\n")

	tbl, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if tbl.Title != "cursussen" {
		t.Errorf("Title = %q, want cursussen", tbl.Title)
	}
	if tbl.Rows[0][0] != "Naam" {
		t.Errorf("BOM not stripped: %q", tbl.Rows[0][0])
	}
	if tbl.Rows[1][1] != "regel1\nregel2" {
		t.Errorf("break tag not normalised: %q", tbl.Rows[1][1])
	}
	if len(tbl.Rows[2]) != 1 {
		t.Errorf("short row should stay short, got %v", tbl.Rows[2])
	}
}

func TestReadXLSX(t *testing.T) {
	dir := t.TempDir()
	path := createXLSXFile(t, dir, [][]string{
		{"Cursus", "Datum"},
		{"Excel", "01-jan-2025"},
	})

	tbl, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if tbl.Title != "agenda" {
		t.Errorf("Title = %q", tbl.Title)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[1][0] != "Excel" || tbl.Rows[1][1] != "01-jan-2025" {
		t.Errorf("Rows = %v", tbl.Rows)
	}
}

func TestReadParquet(t *testing.T) {
	dir := t.TempDir()
	path := createParquetFile(t, dir, []courseRow{
		{Course: "Go", Date: "01-jan-2025", Seats: 12},
		{Course: "SQL", Date: "02-feb-2025", Seats: 8},
	})

	tbl, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(tbl.Rows))
	}

	header := tbl.Header()
	idx := map[string]int{}
	for i, h := range header {
		idx[h] = i
	}
	for _, name := range []string{"Cursus", "Datum", "Plaatsen"} {
		if _, ok := idx[name]; !ok {
			t.Fatalf("header %v missing %q", header, name)
		}
	}
	if got := tbl.Rows[1][idx["Cursus"]]; got != "Go" {
		t.Errorf("Cursus = %q, want Go", got)
	}
	if got := tbl.Rows[2][idx["Plaatsen"]]; got != "8" {
		t.Errorf("Plaatsen = %q, want 8", got)
	}
}

func TestDecodeJSONTable(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    [][]string
		wantErr bool
	}{
		{
			name:    "strings",
			content: `[["A","B"],["1","x<br>y"]]`,
			want:    [][]string{{"A", "B"}, {"1", "x\ny"}},
		},
		{
			name:    "scalars",
			content: `[["A","B","C","D"],[1,2.5,true,null]]`,
			want:    [][]string{{"A", "B", "C", "D"}, {"1", "2.5", "1", ""}},
		},
		{name: "empty", content: "  ", wantErr: true},
		{name: "object", content: `{"a":1}`, wantErr: true},
		{name: "row not array", content: `[["A"],"B"]`, wantErr: true},
		{name: "malformed", content: `[["A"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeJSONTable(tt.content)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTable) {
					t.Fatalf("error = %v, want ErrInvalidTable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				for j := range got[i] {
					if got[i][j] != tt.want[i][j] {
						t.Errorf("cell [%d][%d] = %q, want %q", i, j, got[i][j], tt.want[i][j])
					}
				}
			}
		})
	}
}

func TestEncodeDecodeJSONTable(t *testing.T) {
	rows := [][]string{{"Naam", "Quote"}, {"O'Brien", `zei "hoi"`}}
	got, err := DecodeJSONTable(EncodeJSONTable(rows))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if got[1][0] != "O'Brien" || got[1][1] != `zei "hoi"` {
		t.Errorf("round trip = %v", got)
	}
}

func TestReadFileUnsupported(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "hello")
	if _, err := ReadFile(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDirStore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-tabel.csv", "X\n2\n")
	writeFile(t, dir, "a-tabel.json", `[["Y"],["1"]]`)
	writeFile(t, dir, "readme.md", "# ignored")

	store := NewDirStore(dir)
	infos, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("List() = %v, want 2 tables", infos)
	}
	if infos[0].Title != "a-tabel" || infos[0].ID != 1 || infos[1].ID != 2 {
		t.Errorf("List() order = %v", infos)
	}

	ctx := context.Background()
	tbl, err := store.TableByName(ctx, "b-tabel")
	if err != nil {
		t.Fatalf("TableByName() error = %v", err)
	}
	if tbl.ID != 2 || tbl.Rows[1][0] != "2" {
		t.Errorf("TableByName() = %+v", tbl)
	}

	tbl, err = store.TableByID(ctx, 1)
	if err != nil {
		t.Fatalf("TableByID() error = %v", err)
	}
	if tbl.Title != "a-tabel" {
		t.Errorf("TableByID(1).Title = %q", tbl.Title)
	}

	if _, err := store.TableByName(ctx, "B-TABEL"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("lookup should be exact, got %v", err)
	}
	if _, err := store.TableByID(ctx, 9); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("TableByID(9) error = %v", err)
	}
}

func TestDirLister(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "cursus", "go")
	if err := os.MkdirAll(docs, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, docs, "z-handout.pdf", "%PDF")
	writeFile(t, docs, "a-intro.pdf", "%PDF")
	writeFile(t, docs, "notes.txt", "x")

	l := DirLister{Root: root}
	got, err := l.ListFiles("cursus/go")
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(got) != 2 || got[0] != "a-intro.pdf" || got[1] != "z-handout.pdf" {
		t.Errorf("ListFiles() = %v", got)
	}

	got, err = l.ListFiles("missing")
	if err != nil || len(got) != 0 {
		t.Errorf("missing dir: got %v, %v", got, err)
	}

	l.Pattern = "*.txt"
	got, _ = l.ListFiles("cursus/go")
	if len(got) != 1 || got[0] != "notes.txt" {
		t.Errorf("custom pattern: got %v", got)
	}
}
