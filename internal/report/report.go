// Package report renders snapshot views as plain-text markdown.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/exoscope/internal/dataset"
	"github.com/KaramelBytes/exoscope/internal/label"
	"github.com/KaramelBytes/exoscope/internal/schema"
	"github.com/KaramelBytes/exoscope/internal/stats"
	"github.com/KaramelBytes/exoscope/internal/table"
)

// LabelShare is one line of the classification breakdown.
type LabelShare struct {
	Label          label.Label `json:"label"`
	Count          int         `json:"count"`
	Percent        float64     `json:"percent"`
	MeanConfidence *float64    `json:"mean_confidence,omitempty"`
}

// Report is the summary of one snapshot.
type Report struct {
	Name        string                  `json:"name,omitempty"`
	Rows        int                     `json:"rows"`
	Columns     int                     `json:"columns"`
	Mission     string                  `json:"mission,omitempty"`
	LabelColumn string                  `json:"label_column"`
	Selection   string                  `json:"selection"`
	Labels      []LabelShare            `json:"labels"`
	Summaries   []stats.ColumnStatistic `json:"summaries"`
	SampleCols  []string                `json:"sample_columns,omitempty"`
	Samples     [][]string              `json:"samples,omitempty"`
	Warnings    []string                `json:"warnings,omitempty"`
}

// Options controls what Build includes.
type Options struct {
	Name     string
	Label    label.Label
	Columns  []string
	MaxRows  int
	MaxWidth int
}

// Build summarizes snap for the rows labeled opt.Label.
func Build(snap *dataset.Snapshot, opt Options) *Report {
	if opt.MaxWidth <= 0 {
		opt.MaxWidth = 80
	}
	raw := snap.Raw()
	r := &Report{
		Rows:        raw.Len(),
		Columns:     len(raw.Columns()),
		LabelColumn: snap.LabelColumn(),
		Selection:   "all",
	}
	if opt.Name != "" {
		r.Name = filepath.Base(opt.Name)
	}
	if opt.Label != dataset.AllLabels {
		r.Selection = opt.Label.String()
	}
	if err := snap.Err(); err != nil {
		r.Warnings = append(r.Warnings, err.Error())
		return r
	}
	if m, ok := schema.DetectMission(raw.Columns()); ok {
		r.Mission = string(m)
	}
	agg := snap.Aggregation()
	for _, l := range label.All {
		share := LabelShare{Label: l, Count: agg.Count(l), Percent: 100 * agg.Percentage(l)}
		if mc, ok := agg.MeanConfidence(l); ok {
			share.MeanConfidence = &mc
		}
		r.Labels = append(r.Labels, share)
	}
	if n := agg.Count(label.Unknown); n > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d row(s) have no recognizable label in %s", n, snap.LabelColumn()))
	}
	r.Summaries = snap.Summaries(opt.Label, opt.Columns)
	if len(r.Summaries) == 0 {
		r.Warnings = append(r.Warnings, "no numeric columns to summarize")
	}
	if opt.MaxRows > 0 {
		cols, rows := snap.Preview(0, opt.MaxRows)
		r.SampleCols = cols
		for _, row := range rows {
			r.Samples = append(r.Samples, cellStrings(row, cols, opt.MaxWidth))
		}
	}
	return r
}

func cellStrings(row table.Row, cols []string, width int) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = clip(row.Get(c).String(), width)
	}
	return out
}

// clip shortens s to width runes, marking the cut with "...".
func clip(s string, width int) string {
	if width <= 3 || utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}

// Markdown renders the report in sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Mission != "" {
		b.WriteString(fmt.Sprintf("Mission: %s\n", r.Mission))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", r.Columns))
	b.WriteString(fmt.Sprintf("Labels from: %s\n", r.LabelColumn))

	if len(r.Labels) > 0 {
		b.WriteString("\n[CLASSIFICATION]\n")
		for _, s := range r.Labels {
			b.WriteString(fmt.Sprintf("- %s: %d (%.1f%%)", s.Label.Display(), s.Count, s.Percent))
			if s.MeanConfidence != nil {
				b.WriteString(fmt.Sprintf(", mean confidence %.2f", *s.MeanConfidence))
			}
			b.WriteString("\n")
		}
	}
	if len(r.Summaries) > 0 {
		b.WriteString(fmt.Sprintf("\n[STATISTICS: %s]\n", r.Selection))
		for _, s := range r.Summaries {
			b.WriteString(fmt.Sprintf("- %s (n=%d): min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g\n",
				s.Column, s.Count, s.Min, s.Max, s.Mean, s.Median, s.StdDev))
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD ROWS]\n")
		writeGrid(&b, r.SampleCols, r.Samples)
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// PreviewMarkdown renders rows as a markdown table over cols.
func PreviewMarkdown(cols []string, rows []table.Row, width int) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = cellStrings(r, cols, width)
	}
	var b strings.Builder
	writeGrid(&b, cols, cells)
	return b.String()
}

func writeGrid(b *strings.Builder, cols []string, rows [][]string) {
	if len(cols) == 0 {
		return
	}
	b.WriteString("| ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(c))
	}
	b.WriteString(" |\n| ")
	for i := range cols {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			if i < len(row) {
				b.WriteString(safeVal(row[i]))
			}
		}
		b.WriteString(" |\n")
	}
}

// HistogramText renders bins as horizontal bars scaled to barWidth.
func HistogramText(column string, bins []stats.HistogramBin, barWidth int) string {
	if barWidth <= 0 {
		barWidth = 40
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[HISTOGRAM: %s]\n", column))
	if len(bins) == 0 {
		b.WriteString("(no numeric values)\n")
		return b.String()
	}
	peak := 0
	for _, bin := range bins {
		if bin.Count > peak {
			peak = bin.Count
		}
	}
	for _, bin := range bins {
		n := 0
		if peak > 0 {
			n = bin.Count * barWidth / peak
		}
		b.WriteString(fmt.Sprintf("[%10.4g, %10.4g) %6d %s\n", bin.RangeStart, bin.RangeEnd, bin.Count, strings.Repeat("#", n)))
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
