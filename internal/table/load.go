package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnsupportedFormat indicates a file extension no loader handles.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// CSVOptions controls raw CSV ingestion.
type CSVOptions struct {
	// Delimiter between fields; 0 means ','.
	Delimiter rune
	// Comment marks comment lines; 0 means '#', as in NASA archive exports.
	Comment rune
}

// Load reads a table from path, choosing a loader by extension:
// .json (ingestion response), .csv, .tsv and .xlsx.
// A malformed JSON document is not an error: the Empty sentinel is returned.
func Load(path string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read json: %w", err)
		}
		return Decode(b), nil
	case ".csv", ".tsv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		defer f.Close()
		opt := CSVOptions{}
		if ext == ".tsv" {
			opt.Delimiter = '\t'
		}
		return LoadCSV(f, opt)
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, "")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// LoadCSV reads a raw catalog export. Comment lines are skipped, lines with
// more fields than the header are dropped, short lines are padded with nulls
// and input that is not valid UTF-8 is decoded as Latin-1.
func LoadCSV(r io.Reader, opt CSVOptions) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode latin1: %w", err)
		}
		data = decoded
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = ','
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	cr.Comment = '#'
	if opt.Comment != 0 {
		cr.Comment = opt.Comment
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(nil, nil)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := uniqueHeader(header)

	var rows [][]Value
	var bad int
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				bad++
				continue
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if len(rec) > len(columns) {
			bad++
			continue
		}
		rows = append(rows, parseRecord(rec, len(columns)))
	}
	if bad > 0 {
		slog.Debug("skipped malformed csv lines", "count", bad)
	}
	return newOwned(columns, rows)
}

// LoadXLSX reads one worksheet; an empty sheet name selects the first sheet.
func LoadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return New(nil, nil)
		}
		sheet = list[0]
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return New(nil, nil)
	}
	columns := uniqueHeader(records[0])
	rows := make([][]Value, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) > len(columns) {
			rec = rec[:len(columns)]
		}
		rows = append(rows, parseRecord(rec, len(columns)))
	}
	return newOwned(columns, rows)
}

func parseRecord(rec []string, ncol int) []Value {
	cells := make([]Value, ncol)
	for j, raw := range rec {
		cells[j] = ParseCell(raw)
	}
	return cells
}

// uniqueHeader trims header names and suffixes repeats with ".1", ".2", ...
func uniqueHeader(header []string) []string {
	used := make(map[string]bool, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		candidate := name
		for n := 1; used[candidate]; n++ {
			candidate = name + "." + strconv.Itoa(n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}
