package stats

import (
	"math"

	"github.com/KaramelBytes/exoscope/internal/classify"
	"github.com/KaramelBytes/exoscope/internal/label"
)

// PlotArea is the target coordinate range of a scatter plot.
type PlotArea struct {
	Width  float64
	Height float64
}

// DefaultArea is the plot area used when none is configured.
var DefaultArea = PlotArea{Width: 800, Height: 400}

// ScatterPoint is one row projected into a PlotArea. RawX and RawY keep the
// source values for tooltips.
type ScatterPoint struct {
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	RawX  float64     `json:"raw_x"`
	RawY  float64     `json:"raw_y"`
	Label label.Label `json:"label"`
	Row   int         `json:"row"`
}

// Scatter projects rows onto (xColumn, yColumn), scaled by the column maxima
// into area. Rows missing either coordinate are dropped. A non-positive
// maximum scales by 1, and coordinates are clamped to the area.
func Scatter(rows []classify.ClassifiedRow, xColumn, yColumn string, area PlotArea) []ScatterPoint {
	pts := make([]ScatterPoint, 0, len(rows))
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, r := range rows {
		x, okx := finiteFloat(r, xColumn)
		y, oky := finiteFloat(r, yColumn)
		if !okx || !oky {
			continue
		}
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
		pts = append(pts, ScatterPoint{RawX: x, RawY: y, Label: r.Label, Row: r.Row.Index()})
	}
	dx, dy := denominator(maxX), denominator(maxY)
	for i := range pts {
		pts[i].X = clamp(pts[i].RawX/dx*area.Width, area.Width)
		pts[i].Y = clamp(pts[i].RawY/dy*area.Height, area.Height)
	}
	return pts
}

func finiteFloat(r classify.ClassifiedRow, column string) (float64, bool) {
	f, ok := r.Row.Float(column)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func denominator(m float64) float64 {
	if m <= 0 || math.IsInf(m, 0) {
		return 1
	}
	return m
}

func clamp(v, hi float64) float64 {
	if hi < 0 {
		hi = 0
	}
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > hi:
		return hi
	}
	return v
}
