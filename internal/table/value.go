package table

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind is the dynamic type of a cell.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// Value is a single table cell: a number, a string, or null.
// The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Null returns the missing value.
func Null() Value { return Value{} }

// Num returns a numeric cell. NaN and infinities are stored as null.
func Num(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Str returns a string cell.
func Str(s string) Value { return Value{kind: KindString, str: s} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float coerces the cell to a finite number. Strings are parsed leniently
// (surrounding spaces, percent signs, locale separators); ok is false for
// null cells and anything that does not parse.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		return ParseNumber(v.str)
	default:
		return 0, false
	}
}

// String renders the cell for display; null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return v.str
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

// ParseCell infers a cell from raw text as read from CSV or XLSX.
// Empty text and nan/inf spellings are null.
func ParseCell(s string) Value {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Null()
	}
	switch strings.ToLower(raw) {
	case "nan", "inf", "+inf", "-inf", "infinity", "-infinity", "null", "none", "na", "n/a":
		return Null()
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Num(f)
	}
	return Str(raw)
}

// ParseNumber parses s as a finite float. Plain Go float syntax is tried
// first; otherwise a percent sign is stripped and the decimal separator is
// detected from the last of ',' and '.', the other one being treated as a
// thousands separator.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return finite(f)
	}
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := '.'
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	if cpos > dpos {
		dec = ','
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
