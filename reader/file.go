package reader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"
	"github.com/xuri/excelize/v2"
)

// ReadFile loads a table from path, picking the loader by extension.
func ReadFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx":
		return ReadXLSX(path)
	case ".json":
		return ReadJSON(path)
	case ".parquet":
		return ReadParquet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadCSV loads a comma-separated file. Rows may have differing lengths.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", path, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return &Table{Title: titleFromPath(path), Rows: normalizeRows(rows)}, nil
}

// ReadXLSX loads the first sheet of an Excel workbook.
func ReadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets found in %s", ErrInvalidTable, path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return &Table{Title: titleFromPath(path), Rows: normalizeRows(rows)}, nil
}

// ReadJSON loads a file holding a JSON array of rows, each an array of cells.
func ReadJSON(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	rows, err := DecodeJSONTable(string(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Table{Title: titleFromPath(path), Rows: rows}, nil
}

// DecodeJSONTable decodes TablePress-style content: [["h1","h2"],["a","b"]].
// Non-string scalars are rendered as text; rows that are not arrays are
// rejected.
func DecodeJSONTable(content string) ([][]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidTable)
	}

	data, err := oj.ParseString(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	list, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: content is %T, not an array", ErrInvalidTable, data)
	}

	rows := make([][]string, 0, len(list))
	for i, item := range list {
		cells, ok := item.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: row %d is %T, not an array", ErrInvalidTable, i, item)
		}
		row := make([]string, len(cells))
		for j, c := range cells {
			row[j] = jsonCellString(c)
		}
		rows = append(rows, row)
	}
	return normalizeRows(rows), nil
}

// EncodeJSONTable is the inverse of DecodeJSONTable.
func EncodeJSONTable(rows [][]string) string {
	list := make([]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, c := range row {
			cells[j] = c
		}
		list[i] = cells
	}
	return oj.JSON(list)
}

func jsonCellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return oj.JSON(val)
	}
}
