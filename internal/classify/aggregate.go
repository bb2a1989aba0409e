package classify

import (
	"fmt"
	"maps"
	"slices"

	"github.com/KaramelBytes/exoscope/internal/label"
	"github.com/KaramelBytes/exoscope/internal/table"
)

// Aggregation holds per-label counts and row subsets.
// Counts always has an entry for each of the four labels.
type Aggregation struct {
	Total   int
	Counts  map[label.Label]int
	ByLabel map[label.Label][]ClassifiedRow
}

// Aggregate counts rows per label and groups them, preserving row order.
func Aggregate(rows []ClassifiedRow) Aggregation {
	a := Aggregation{
		Total:   len(rows),
		Counts:  make(map[label.Label]int, len(label.All)),
		ByLabel: make(map[label.Label][]ClassifiedRow, len(label.All)),
	}
	for _, l := range label.All {
		a.Counts[l] = 0
		a.ByLabel[l] = []ClassifiedRow{}
	}
	for _, r := range rows {
		l := r.Label
		if !l.Valid() {
			l = label.Unknown
		}
		a.Counts[l]++
		a.ByLabel[l] = append(a.ByLabel[l], r)
	}
	return a
}

// AggregateLabels aggregates t against a parallel slice of labels.
func AggregateLabels(t *table.Table, labels []label.Label) (Aggregation, error) {
	if t.Len() != len(labels) {
		return Aggregate(nil), fmt.Errorf("%w: %d rows, %d labels", ErrRowCountMismatch, t.Len(), len(labels))
	}
	rows := make([]ClassifiedRow, t.Len())
	for i, r := range t.Rows() {
		rows[i] = NewClassifiedRow(r, labels[i], nil)
	}
	return Aggregate(rows), nil
}

// Clone returns a deep copy whose maps and row slices are not shared with a.
func (a Aggregation) Clone() Aggregation {
	out := Aggregation{
		Total:   a.Total,
		Counts:  maps.Clone(a.Counts),
		ByLabel: make(map[label.Label][]ClassifiedRow, len(a.ByLabel)),
	}
	for l, rows := range a.ByLabel {
		out.ByLabel[l] = slices.Clone(rows)
	}
	return out
}

// Count is the number of rows with label l.
func (a Aggregation) Count(l label.Label) int { return a.Counts[l] }

// Percentage is the fraction of rows with label l, in [0,1]; 0 when there are no rows.
func (a Aggregation) Percentage(l label.Label) float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Counts[l]) / float64(a.Total)
}

// MeanConfidence averages the confidences present among rows labeled l.
// ok is false when no such row has a confidence.
func (a Aggregation) MeanConfidence(l label.Label) (mean float64, ok bool) {
	var sum float64
	var n int
	for _, r := range a.ByLabel[l] {
		if c, has := r.Confidence(); has {
			sum += c
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
