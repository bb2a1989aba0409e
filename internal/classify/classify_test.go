package classify

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/exoscope/internal/label"
	"github.com/KaramelBytes/exoscope/internal/table"
)

func predicted(t *testing.T, labels ...string) *table.Table {
	t.Helper()
	rows := make([][]table.Value, len(labels))
	for i, l := range labels {
		rows[i] = []table.Value{table.Str("obj" + string(rune('A'+i))), table.Num(float64(i + 1)), table.Str(l)}
	}
	tbl, err := table.New([]string{"name", "period", PredictedColumn}, rows)
	require.NoError(t, err)
	return tbl
}

func TestAggregateCountsAndPercentages(t *testing.T) {
	set := FromTable(predicted(t, "CONFIRMED", "CONFIRMED", "CANDIDATE", "CANDIDATE"), Options{})
	agg := Aggregate(set.Rows())

	assert.Equal(t, 4, agg.Total)
	assert.Equal(t, 2, agg.Count(label.Confirmed))
	assert.Equal(t, 2, agg.Count(label.Candidate))
	assert.Equal(t, 0, agg.Count(label.FalsePositive))
	assert.InDelta(t, 0.5, agg.Percentage(label.Confirmed), 1e-12)
	assert.InDelta(t, 0.5, agg.Percentage(label.Candidate), 1e-12)
	assert.Equal(t, 0.0, agg.Percentage(label.FalsePositive))
	assert.Empty(t, agg.ByLabel[label.FalsePositive])

	sum := 0
	for _, l := range label.All {
		sum += agg.Count(l)
	}
	assert.Equal(t, agg.Total, sum)
}

func TestAggregatePreservesOrder(t *testing.T) {
	set := FromTable(predicted(t, "PC", "fp", "CP", "candidate", "garbage"), Options{})
	agg := Aggregate(set.Rows())
	cands := agg.ByLabel[label.Candidate]
	require.Len(t, cands, 2)
	assert.Equal(t, 0, cands[0].Row.Index())
	assert.Equal(t, 3, cands[1].Row.Index())
	assert.Equal(t, 1, agg.Count(label.Unknown))
	assert.Equal(t, 1, agg.Count(label.FalsePositive))
	assert.Len(t, set.Filter(label.Confirmed), 1)
}

func TestAggregateEmpty(t *testing.T) {
	agg := Aggregate(nil)
	assert.Equal(t, 0, agg.Total)
	for _, l := range label.All {
		assert.Equal(t, 0, agg.Count(l))
		assert.Equal(t, 0.0, agg.Percentage(l))
	}
	_, ok := agg.MeanConfidence(label.Confirmed)
	assert.False(t, ok)
}

func TestFromTableWithoutLabelColumn(t *testing.T) {
	tbl, err := table.New([]string{"a"}, [][]table.Value{{table.Num(1)}, {table.Num(2)}})
	require.NoError(t, err)
	agg := Aggregate(FromTable(tbl, Options{}).Rows())
	assert.Equal(t, 2, agg.Count(label.Unknown))
}

func TestFromTableCatalogDisposition(t *testing.T) {
	tbl, err := table.New([]string{"koi_disposition"}, [][]table.Value{
		{table.Str("CONFIRMED")}, {table.Str("FALSE POSITIVE")}, {table.Null()},
	})
	require.NoError(t, err)
	agg := Aggregate(FromTable(tbl, Options{LabelColumn: "koi_disposition"}).Rows())
	assert.Equal(t, 1, agg.Count(label.Confirmed))
	assert.Equal(t, 1, agg.Count(label.FalsePositive))
	assert.Equal(t, 1, agg.Count(label.Unknown))
}

func TestConfidenceClampedAndMeaned(t *testing.T) {
	tbl, err := table.New([]string{PredictedColumn, ConfidenceColumn}, [][]table.Value{
		{table.Str("CONFIRMED"), table.Num(1.7)},
		{table.Str("CONFIRMED"), table.Num(0.5)},
		{table.Str("CONFIRMED"), table.Null()},
		{table.Str("CANDIDATE"), table.Num(-3)},
	})
	require.NoError(t, err)
	set := FromTable(tbl, Options{})
	require.True(t, set.HasConfidence())
	rows := set.Rows()

	c, ok := rows[0].Confidence()
	assert.True(t, ok)
	assert.Equal(t, 1.0, c)
	_, ok = rows[2].Confidence()
	assert.False(t, ok)
	assert.Equal(t, 0.0, rows[2].RenderConfidence())
	assert.Equal(t, 0.0, rows[3].RenderConfidence())

	mean, ok := Aggregate(rows).MeanConfidence(label.Confirmed)
	assert.True(t, ok)
	assert.InDelta(t, 0.75, mean, 1e-12)
}

func TestMerge(t *testing.T) {
	tbl, err := table.New([]string{"name"}, [][]table.Value{{table.Str("a")}, {table.Str("b")}})
	require.NoError(t, err)
	conf := 0.9
	set, err := Merge(tbl, []Prediction{{Label: "confirmed", Confidence: &conf}, {Label: "FALSE POSITIVE"}})
	require.NoError(t, err)
	rows := set.Rows()
	assert.Equal(t, label.Confirmed, rows[0].Label)
	assert.Equal(t, label.FalsePositive, rows[1].Label)
	assert.True(t, set.HasConfidence())

	_, err = Merge(tbl, []Prediction{{Label: "CONFIRMED"}})
	assert.True(t, errors.Is(err, ErrRowCountMismatch))

	_, err = AggregateLabels(tbl, []label.Label{label.Candidate})
	assert.ErrorIs(t, err, ErrRowCountMismatch)
	agg, err := AggregateLabels(tbl, []label.Label{label.Candidate, label.Candidate})
	require.NoError(t, err)
	assert.Equal(t, 1.0, agg.Percentage(label.Candidate))
}

func TestExportCSV(t *testing.T) {
	tbl, err := table.New([]string{"name", "koi_period", PredictedColumn, ConfidenceColumn}, [][]table.Value{
		{table.Str("a"), table.Num(1.5), table.Str("cp"), table.Num(0.8)},
		{table.Str("b"), table.Null(), table.Str("PC"), table.Null()},
	})
	require.NoError(t, err)
	set := FromTable(tbl, Options{})

	var buf bytes.Buffer
	require.NoError(t, set.WriteCSV(&buf, []string{"name", "koi_period", PredictedColumn}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,koi_period,Predicted_Disposition,Confidence", lines[0])
	assert.Equal(t, "a,1.5,CONFIRMED,0.8", lines[1])
	assert.Equal(t, "b,,CANDIDATE,", lines[2])
}

func TestExportWithoutConfidence(t *testing.T) {
	set := FromTable(predicted(t, "CONFIRMED"), Options{})
	out, err := set.Export(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "period", PredictedColumn}, out.Columns())
}

func TestExportXLSX(t *testing.T) {
	set := FromTable(predicted(t, "CONFIRMED", "FP"), Options{})
	var buf bytes.Buffer
	require.NoError(t, set.WriteXLSX(&buf, nil, ""))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "period", PredictedColumn}, rows[0])
	assert.Equal(t, "FALSE_POSITIVE", rows[2][2])
}

func TestMalformedTable(t *testing.T) {
	set := FromTable(table.Empty("bad"), Options{})
	assert.Equal(t, 0, set.Len())
	assert.Error(t, set.WriteCSV(&bytes.Buffer{}, nil))
}
