package table

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrDuplicateColumn is returned when a table would contain the same column name twice.
var ErrDuplicateColumn = errors.New("duplicate column name")

// MalformedInputError describes why an input could not be read as a table.
// It is carried by the empty sentinel table rather than returned to the caller.
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

// Table is an immutable, ordered set of uniquely named columns and ordered
// rows. Every row holds exactly one cell per column. Each Table gets a fresh
// version identifier on construction, used as its identity by derived-state caches.
type Table struct {
	version string
	columns []string
	index   map[string]int
	rows    [][]Value
	err     *MalformedInputError
}

// New builds a Table. Rows shorter than the column list are padded with null
// cells and longer rows are truncated. Input slices are copied.
func New(columns []string, rows [][]Value) (*Table, error) {
	index := make(map[string]int, len(columns))
	cols := make([]string, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		index[c] = i
		cols[i] = c
	}
	data := make([][]Value, len(rows))
	for i, r := range rows {
		cells := make([]Value, len(cols))
		copy(cells, r)
		data[i] = cells
	}
	return &Table{
		version: uuid.NewString(),
		columns: cols,
		index:   index,
		rows:    data,
	}, nil
}

// Empty returns the "no data" sentinel for an input that is not a well-formed table.
func Empty(reason string) *Table {
	return &Table{
		version: uuid.NewString(),
		index:   map[string]int{},
		err:     &MalformedInputError{Reason: reason},
	}
}

// Err reports why the table is the empty sentinel, or nil for a real table.
func (t *Table) Err() error {
	if t == nil {
		return &MalformedInputError{Reason: "nil table"}
	}
	if t.err == nil {
		return nil
	}
	return t.err
}

// Malformed reports whether t is the empty sentinel.
func (t *Table) Malformed() bool { return t == nil || t.err != nil }

// Version is the table's identity for caching.
func (t *Table) Version() string {
	if t == nil {
		return ""
	}
	return t.version
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[name]
	return ok
}

// Len is the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns the i-th row view. It panics if i is out of range, like a slice index.
func (t *Table) Row(i int) Row {
	_ = t.rows[i]
	return Row{t: t, i: i}
}

// Rows returns views of all rows in insertion order.
func (t *Table) Rows() []Row {
	return t.Page(0, t.Len())
}

// Head returns up to the first n rows.
func (t *Table) Head(n int) []Row {
	return t.Page(0, n)
}

// Page returns up to limit rows starting at offset. Out-of-range requests yield an empty slice.
func (t *Table) Page(offset, limit int) []Row {
	n := t.Len()
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= n {
		return []Row{}
	}
	end := offset + limit
	if end > n {
		end = n
	}
	out := make([]Row, 0, end-offset)
	for i := offset; i < end; i++ {
		out = append(out, Row{t: t, i: i})
	}
	return out
}

// Augment returns a new table with extra columns appended after the existing
// ones. fill is called once per row, in order, and must return one value per
// extra column (missing trailing values are null).
func (t *Table) Augment(extra []string, fill func(Row) []Value) (*Table, error) {
	if t.Malformed() {
		return t, nil
	}
	cols := make([]string, 0, len(t.columns)+len(extra))
	cols = append(cols, t.columns...)
	cols = append(cols, extra...)
	rows := make([][]Value, len(t.rows))
	for i, src := range t.rows {
		cells := make([]Value, len(cols))
		copy(cells, src)
		added := fill(Row{t: t, i: i})
		copy(cells[len(t.columns):], added)
		rows[i] = cells
	}
	return newOwned(cols, rows)
}

// Preview drops columns whose cells are all null and then rows whose
// remaining cells are all null.
func (t *Table) Preview() *Table {
	if t.Malformed() {
		return t
	}
	var keep []int
	for j := range t.columns {
		for _, r := range t.rows {
			if !r[j].IsNull() {
				keep = append(keep, j)
				break
			}
		}
	}
	cols := make([]string, len(keep))
	for k, j := range keep {
		cols[k] = t.columns[j]
	}
	rows := make([][]Value, 0, len(t.rows))
	for _, r := range t.rows {
		cells := make([]Value, len(keep))
		empty := true
		for k, j := range keep {
			cells[k] = r[j]
			if !r[j].IsNull() {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, cells)
		}
	}
	out, _ := newOwned(cols, rows)
	return out
}

// MarshalJSON encodes the table in the ingestion shape {"columns": [...], "rows": [{...}]},
// keeping column order inside each row object.
func (t *Table) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte(`{"columns":[],"rows":[]}`), nil
	}
	names := t.Columns()
	if names == nil {
		names = []string{}
	}
	cols, err := json.Marshal(names)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	b.WriteString(`{"columns":`)
	b.Write(cols)
	b.WriteString(`,"rows":[`)
	keys := make([][]byte, len(t.columns))
	for j, c := range t.columns {
		keys[j], _ = json.Marshal(c)
	}
	for i, r := range t.rows {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('{')
		for j, v := range r {
			if j > 0 {
				b.WriteByte(',')
			}
			b.Write(keys[j])
			b.WriteByte(':')
			vb, err := v.MarshalJSON()
			if err != nil {
				return nil, err
			}
			b.Write(vb)
		}
		b.WriteByte('}')
	}
	b.WriteString("]}")
	return b.Bytes(), nil
}

// newOwned builds a table that takes ownership of rows without copying.
func newOwned(columns []string, rows [][]Value) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		index[c] = i
	}
	return &Table{version: uuid.NewString(), columns: columns, index: index, rows: rows}, nil
}

// Row is a read-only view of one table row.
type Row struct {
	t *Table
	i int
}

// Index is the row's position in its table.
func (r Row) Index() int { return r.i }

// Lookup returns the cell in column name and whether the column exists.
func (r Row) Lookup(name string) (Value, bool) {
	if r.t == nil {
		return Null(), false
	}
	j, ok := r.t.index[name]
	if !ok {
		return Null(), false
	}
	return r.t.rows[r.i][j], true
}

// Get returns the cell in column name; unknown columns read as null.
func (r Row) Get(name string) Value {
	v, _ := r.Lookup(name)
	return v
}

// Float returns the numeric projection of the cell in column name.
func (r Row) Float(name string) (float64, bool) {
	return r.Get(name).Float()
}

// Values returns a copy of the row's cells in column order.
func (r Row) Values() []Value {
	if r.t == nil {
		return nil
	}
	out := make([]Value, len(r.t.rows[r.i]))
	copy(out, r.t.rows[r.i])
	return out
}
