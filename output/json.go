package output

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/vegasq/tablequery/query"
)

// JSONFormatter outputs records as JSON Lines format
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes one JSON object per record, keys in column order.
func (j *JSONFormatter) Format(q *query.Query) error {
	if err := q.Err(); err != nil {
		return err
	}
	encoder := json.NewEncoder(j.writer)
	for _, rec := range q.Records() {
		if err := encoder.Encode(orderedRecord(rec)); err != nil {
			return err
		}
	}
	return nil
}

// orderedRecord marshals a record as an object whose keys keep column order.
type orderedRecord query.Record

func (r orderedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
