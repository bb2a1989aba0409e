package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/KaramelBytes/exoscope/internal/table"
)

// DefaultBins is the bin count of the default fixed policy.
const DefaultBins = 20

// minSqrtBins is the floor of the square-root policy.
const minSqrtBins = 5

// BinPolicy decides how many bins a histogram of n values gets.
type BinPolicy struct {
	fixed int
	sqrt  bool
}

// FixedBins always uses n bins. n < 1 falls back to DefaultBins.
func FixedBins(n int) BinPolicy {
	if n < 1 {
		n = DefaultBins
	}
	return BinPolicy{fixed: n}
}

// SqrtBins uses max(5, round(sqrt(n))) bins for n values.
func SqrtBins() BinPolicy { return BinPolicy{sqrt: true} }

// DefaultPolicy is FixedBins(DefaultBins).
func DefaultPolicy() BinPolicy { return FixedBins(DefaultBins) }

// Count is the number of bins for n values.
func (p BinPolicy) Count(n int) int {
	if p.sqrt {
		b := int(math.Round(math.Sqrt(float64(n))))
		if b < minSqrtBins {
			b = minSqrtBins
		}
		return b
	}
	if p.fixed < 1 {
		return DefaultBins
	}
	return p.fixed
}

func (p BinPolicy) String() string {
	if p.sqrt {
		return "sqrt"
	}
	return strconv.Itoa(p.Count(0))
}

// ParseBinPolicy accepts "sqrt" or a positive bin count.
func ParseBinPolicy(s string) (BinPolicy, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "":
		return DefaultPolicy(), nil
	case "sqrt":
		return SqrtBins(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return BinPolicy{}, fmt.Errorf("invalid bin policy %q: want \"sqrt\" or a positive integer", s)
	}
	return FixedBins(n), nil
}

// HistogramBin counts the values in [RangeStart, RangeEnd). The last bin
// also includes RangeEnd.
type HistogramBin struct {
	RangeStart float64 `json:"range_start"`
	RangeEnd   float64 `json:"range_end"`
	Count      int     `json:"count"`
}

// Histogram bins vals under policy. Empty input yields no bins. When every
// value is equal the bin width is 1 and all values fall in bin 0. The bin
// counts always sum to len(vals).
func Histogram(vals []float64, policy BinPolicy) []HistogramBin {
	n := len(vals)
	if n == 0 {
		return []HistogramBin{}
	}
	lo, hi := floats.Min(vals), floats.Max(vals)
	bins := policy.Count(n)

	edges := make([]float64, bins+1)
	width := (hi - lo) / float64(bins)
	degenerate := hi == lo || n <= 1
	if degenerate {
		width = 1
		for i := range edges {
			edges[i] = lo + float64(i)
		}
	} else {
		floats.Span(edges, lo, hi)
	}

	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{RangeStart: edges[i], RangeEnd: edges[i+1]}
	}
	for _, v := range vals {
		idx := 0
		if !degenerate {
			idx = int(math.Floor((v - lo) / width))
		}
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}

// ColumnHistogram bins the numeric values of column across rows.
func ColumnHistogram(rows []table.Row, column string, policy BinPolicy) []HistogramBin {
	return Histogram(Numeric(rows, column), policy)
}
