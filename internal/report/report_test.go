package report

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/exoscope/internal/dataset"
	"github.com/KaramelBytes/exoscope/internal/label"
	"github.com/KaramelBytes/exoscope/internal/stats"
	"github.com/KaramelBytes/exoscope/internal/table"
)

const doc = `{"columns": ["kepoi_name", "koi_period", "Predicted_Disposition", "Confidence"], "rows": [
  {"kepoi_name": "K1", "koi_period": 1, "Predicted_Disposition": "CONFIRMED", "Confidence": 0.9},
  {"kepoi_name": "K2|x", "koi_period": 3, "Predicted_Disposition": "CANDIDATE", "Confidence": 0.4},
  {"kepoi_name": "K3", "koi_period": 5, "Predicted_Disposition": "", "Confidence": null}
]}`

func snapshot(t *testing.T, body string) *dataset.Snapshot {
	t.Helper()
	snap, err := dataset.Open(table.Decode([]byte(body)), dataset.DefaultOptions())
	require.NoError(t, err)
	return snap
}

func TestBuildAndMarkdown(t *testing.T) {
	rep := Build(snapshot(t, doc), Options{Name: "/tmp/koi.json", MaxRows: 2})
	assert.Equal(t, "koi.json", rep.Name)
	assert.Equal(t, "kepler", rep.Mission)
	require.Len(t, rep.Labels, 4)
	assert.Equal(t, 1, rep.Labels[0].Count)
	require.NotNil(t, rep.Labels[0].MeanConfidence)
	assert.Nil(t, rep.Labels[2].MeanConfidence)
	require.Len(t, rep.Samples, 2)

	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: koi.json",
		"Rows: 3",
		"[CLASSIFICATION]",
		"- Confirmed: 1 (33.3%), mean confidence 0.90",
		"- False Positive: 0 (0.0%)",
		"[STATISTICS: all]",
		"- period (n=3): min 1, max 5, mean 3, median 3",
		"[HEAD ROWS]",
		"| K2/x |",
		"[NOTES]",
		"1 row(s) have no recognizable label",
	} {
		assert.Contains(t, md, want)
	}
}

func TestBuildSelection(t *testing.T) {
	rep := Build(snapshot(t, doc), Options{Label: label.Candidate})
	assert.Equal(t, "CANDIDATE", rep.Selection)
	require.Len(t, rep.Summaries, 1)
	assert.Equal(t, 1, rep.Summaries[0].Count)
	assert.Empty(t, rep.Samples)
}

func TestBuildMalformed(t *testing.T) {
	rep := Build(snapshot(t, `[1,2]`), Options{})
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "malformed input")
	assert.Contains(t, rep.Markdown(), "[NOTES]")
}

func TestHistogramText(t *testing.T) {
	out := HistogramText("period", stats.Histogram([]float64{1, 1, 2, 9}, stats.FixedBins(2)), 10)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], "##########"))
	assert.True(t, strings.HasSuffix(lines[2], " ###"), lines[2])
	assert.Contains(t, HistogramText("x", nil, 0), "(no numeric values)")
}

func TestClipKeepsRunesWhole(t *testing.T) {
	got := clip("Kepler-1649 \u00e9toile \u00e9\u00e9\u00e9", 14)
	assert.True(t, utf8.ValidString(got), got)
	assert.Equal(t, "Kepler-1649...", got)
	got = clip("\u00e9\u00e9\u00e9\u00e9\u00e9\u00e9", 5)
	assert.Equal(t, "\u00e9\u00e9...", got)
	assert.Equal(t, "\u00e9\u00e9\u00e9", clip("\u00e9\u00e9\u00e9", 3))
}

func TestPreviewMarkdownClipsWideCells(t *testing.T) {
	tbl, err := table.New([]string{"a"}, [][]table.Value{{table.Str(strings.Repeat("z", 30))}})
	require.NoError(t, err)
	md := PreviewMarkdown(tbl.Columns(), tbl.Rows(), 10)
	assert.Contains(t, md, "| zzzzzzz... |")
	assert.Contains(t, md, "| --- |")
}
