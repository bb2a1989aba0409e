package table

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/tidwall/gjson"
)

// Decode parses an ingestion response of the form
//
//	{"columns": ["a", "b"], "rows": [{"a": 1, "b": "x"}, ...]}
//
// Row objects may carry extra keys (ignored) or miss keys (null cells).
// Anything that is not such an object yields the Empty sentinel; Decode never
// fails outright so callers can always render a "no data" state.
func Decode(data []byte) *Table {
	if !gjson.ValidBytes(data) {
		return Empty("invalid JSON document")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Empty("document is not an object")
	}
	colsRes := root.Get("columns")
	if !colsRes.IsArray() {
		return Empty("missing columns")
	}
	rowsRes := root.Get("rows")
	if !rowsRes.IsArray() {
		return Empty("missing rows")
	}

	var columns []string
	for i, c := range colsRes.Array() {
		if c.Type != gjson.String {
			return Empty(fmt.Sprintf("column %d is not a string", i))
		}
		columns = append(columns, c.String())
	}

	rowItems := rowsRes.Array()
	rows := make([][]Value, 0, len(rowItems))
	var skipped int
	for _, item := range rowItems {
		cells := make([]Value, len(columns))
		if !item.IsObject() {
			skipped++
			rows = append(rows, cells)
			continue
		}
		fields := make(map[string]gjson.Result, len(columns))
		item.ForEach(func(key, val gjson.Result) bool {
			fields[key.String()] = val
			return true
		})
		for j, c := range columns {
			if val, ok := fields[c]; ok {
				cells[j] = fromJSON(val)
			}
		}
		rows = append(rows, cells)
	}
	if skipped > 0 {
		slog.Debug("ingestion rows were not objects; kept as empty rows", "count", skipped)
	}

	t, err := newOwned(columns, rows)
	if err != nil {
		return Empty(err.Error())
	}
	return t
}

// DecodeReader reads r fully and decodes it. Read failures yield the Empty sentinel.
func DecodeReader(r io.Reader) *Table {
	data, err := io.ReadAll(r)
	if err != nil {
		return Empty(fmt.Sprintf("read input: %v", err))
	}
	return Decode(data)
}

func fromJSON(v gjson.Result) Value {
	switch v.Type {
	case gjson.Number:
		return Num(v.Float())
	case gjson.String:
		return Str(v.Str)
	case gjson.True, gjson.False:
		return Str(v.Raw)
	case gjson.JSON:
		return Str(v.Raw)
	default:
		return Null()
	}
}
