// Package classify merges an immutable table with per-row classifier output
// and aggregates the result by label.
package classify

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/exoscope/internal/label"
	"github.com/KaramelBytes/exoscope/internal/table"
)

// Column names the classification service adds to each row.
const (
	PredictedColumn  = "Predicted_Disposition"
	ConfidenceColumn = "Confidence"
)

// ErrRowCountMismatch is returned when predictions do not line up with table rows.
var ErrRowCountMismatch = errors.New("prediction count does not match row count")

// ClassifiedRow is a table row with its canonical label and optional confidence.
type ClassifiedRow struct {
	Row   table.Row
	Label label.Label

	confidence    float64
	hasConfidence bool
}

// NewClassifiedRow builds a ClassifiedRow. A non-nil confidence is clamped to
// [0,1]; NaN is treated as absent.
func NewClassifiedRow(row table.Row, l label.Label, confidence *float64) ClassifiedRow {
	cr := ClassifiedRow{Row: row, Label: l}
	if confidence != nil && !math.IsNaN(*confidence) {
		cr.confidence = clamp01(*confidence)
		cr.hasConfidence = true
	}
	return cr
}

// Confidence returns the clamped confidence and whether one was provided.
func (c ClassifiedRow) Confidence() (float64, bool) { return c.confidence, c.hasConfidence }

// RenderConfidence is the confidence used for display: 0 when absent.
func (c ClassifiedRow) RenderConfidence() float64 {
	if !c.hasConfidence {
		return 0
	}
	return c.confidence
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Options selects where labels and confidences are read from.
type Options struct {
	// LabelColumn holds the disposition token; defaults to PredictedColumn.
	// Use a mission's disposition column to aggregate catalog ground truth.
	LabelColumn string
	// ConfidenceColumn holds the optional confidence; defaults to ConfidenceColumn.
	ConfidenceColumn string
	// Canonicalizer memoizes token lookups; a fresh one is used when nil.
	Canonicalizer *label.Canonicalizer
}

func (o Options) withDefaults() Options {
	if o.LabelColumn == "" {
		o.LabelColumn = PredictedColumn
	}
	if o.ConfidenceColumn == "" {
		o.ConfidenceColumn = ConfidenceColumn
	}
	if o.Canonicalizer == nil {
		o.Canonicalizer = label.NewCanonicalizer()
	}
	return o
}

// Set is the immutable classified view of one table.
type Set struct {
	table         *table.Table
	rows          []ClassifiedRow
	hasConfidence bool
}

// FromTable classifies every row of t from its own label and confidence
// columns. Rows without a label token are Unknown; a missing label column
// makes every row Unknown.
func FromTable(t *table.Table, opt Options) *Set {
	opt = opt.withDefaults()
	s := &Set{table: t}
	if t.Malformed() {
		return s
	}
	s.rows = make([]ClassifiedRow, 0, t.Len())
	for _, r := range t.Rows() {
		var conf *float64
		if f, ok := r.Float(opt.ConfidenceColumn); ok {
			conf = &f
		}
		cr := NewClassifiedRow(r, opt.Canonicalizer.FromValue(r.Get(opt.LabelColumn)), conf)
		s.hasConfidence = s.hasConfidence || cr.hasConfidence
		s.rows = append(s.rows, cr)
	}
	return s
}

// Prediction is one row of external classifier output.
type Prediction struct {
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Merge pairs t's rows with predictions in order. The two must have the same length.
func Merge(t *table.Table, predictions []Prediction) (*Set, error) {
	if t.Len() != len(predictions) {
		return nil, fmt.Errorf("%w: %d rows, %d predictions", ErrRowCountMismatch, t.Len(), len(predictions))
	}
	canon := label.NewCanonicalizer()
	s := &Set{table: t, rows: make([]ClassifiedRow, 0, len(predictions))}
	for i, r := range t.Rows() {
		p := predictions[i]
		cr := NewClassifiedRow(r, canon.Canonicalize(p.Label), p.Confidence)
		s.hasConfidence = s.hasConfidence || cr.hasConfidence
		s.rows = append(s.rows, cr)
	}
	return s, nil
}

// Table is the classified table.
func (s *Set) Table() *table.Table { return s.table }

// Len is the number of classified rows.
func (s *Set) Len() int { return len(s.rows) }

// HasConfidence reports whether any row carries a confidence.
func (s *Set) HasConfidence() bool { return s.hasConfidence }

// Rows returns all classified rows in table order.
func (s *Set) Rows() []ClassifiedRow {
	out := make([]ClassifiedRow, len(s.rows))
	copy(out, s.rows)
	return out
}

// Filter returns the rows with label l, in table order.
func (s *Set) Filter(l label.Label) []ClassifiedRow {
	return Filter(s.rows, l)
}

// Filter returns the rows of rows with label l, keeping their order.
func Filter(rows []ClassifiedRow, l label.Label) []ClassifiedRow {
	out := make([]ClassifiedRow, 0)
	for _, r := range rows {
		if r.Label == l {
			out = append(out, r)
		}
	}
	return out
}

// TableRows returns the underlying table rows of rows.
func TableRows(rows []ClassifiedRow) []table.Row {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = r.Row
	}
	return out
}
