package classify

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/exoscope/internal/table"
)

// DefaultSheet is the worksheet name used by WriteXLSX.
const DefaultSheet = "Predictions"

// Export builds the download table: the given source columns in order, then
// Predicted_Disposition and, when any row has one, Confidence. A nil columns
// slice keeps every column of the classified table. Existing prediction
// columns are replaced rather than duplicated.
func (s *Set) Export(columns []string) (*table.Table, error) {
	if s.table.Malformed() {
		return s.table, nil
	}
	if columns == nil {
		columns = s.table.Columns()
	}
	src := make([]string, 0, len(columns))
	for _, c := range columns {
		if c == PredictedColumn || c == ConfidenceColumn {
			continue
		}
		src = append(src, c)
	}
	out := append(append([]string{}, src...), PredictedColumn)
	if s.hasConfidence {
		out = append(out, ConfidenceColumn)
	}
	rows := make([][]table.Value, len(s.rows))
	for i, cr := range s.rows {
		cells := make([]table.Value, 0, len(out))
		for _, c := range src {
			cells = append(cells, cr.Row.Get(c))
		}
		cells = append(cells, table.Str(cr.Label.String()))
		if s.hasConfidence {
			v := table.Null()
			if c, ok := cr.Confidence(); ok {
				v = table.Num(c)
			}
			cells = append(cells, v)
		}
		rows[i] = cells
	}
	return table.New(out, rows)
}

// WriteCSV writes the export table as comma-separated values with a header.
func (s *Set) WriteCSV(w io.Writer, columns []string) error {
	t, err := s.Export(columns)
	if err != nil {
		return err
	}
	if err := t.Err(); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range t.Rows() {
		vals := r.Values()
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = v.String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.Index(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the export table to a single-sheet workbook. Numbers are
// stored as numeric cells and nulls as blanks.
func (s *Set) WriteXLSX(w io.Writer, columns []string, sheet string) error {
	t, err := s.Export(columns)
	if err != nil {
		return err
	}
	if err := t.Err(); err != nil {
		return err
	}
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}
	header := make([]interface{}, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	for _, r := range t.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, r.Index()+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, xlsxCells(r.Values())); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", r.Index(), err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush xlsx: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func xlsxCells(vals []table.Value) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		switch v.Kind() {
		case table.KindNumber:
			f, _ := v.Float()
			out[i] = f
		case table.KindString:
			out[i] = v.String()
		default:
			out[i] = nil
		}
	}
	return out
}
