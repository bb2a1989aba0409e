// Package stats computes column summaries, histogram bins and normalized
// scatter coordinates over table rows.
package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/exoscope/internal/table"
)

// ColumnStatistic summarizes the numeric projection of one column.
type ColumnStatistic struct {
	Column string  `json:"column"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

// Numeric returns the finite numeric values of column across rows, in row
// order. Text cells that parse as numbers are included.
func Numeric(rows []table.Row, column string) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		f, ok := r.Float(column)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ColumnSummary summarizes column. ok is false when the column has no
// numeric values. Median is the element at index n/2 of the sorted values.
func ColumnSummary(rows []table.Row, column string) (ColumnStatistic, bool) {
	vals := Numeric(rows, column)
	if len(vals) == 0 {
		return ColumnStatistic{Column: column}, false
	}
	s := Summarize(vals)
	s.Column = column
	return s, true
}

// Summarize computes the statistic of vals, which must be non-empty and finite.
// vals is not modified.
func Summarize(vals []float64) ColumnStatistic {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	sd, err := mstats.StandardDeviation(mstats.Float64Data(sorted))
	if err != nil {
		sd = 0
	}
	return ColumnStatistic{
		Min:    sorted[0],
		Max:    sorted[n-1],
		Mean:   stat.Mean(sorted, nil),
		Median: sorted[n/2],
		StdDev: sd,
		Count:  n,
	}
}

// Summaries summarizes each column in order, omitting columns with no
// numeric values.
func Summaries(rows []table.Row, columns []string) []ColumnStatistic {
	out := make([]ColumnStatistic, 0, len(columns))
	for _, c := range columns {
		if s, ok := ColumnSummary(rows, c); ok {
			out = append(out, s)
		}
	}
	return out
}
