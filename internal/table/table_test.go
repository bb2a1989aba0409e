package table

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const ingestion = `{
  "columns": ["kepoi_name", "koi_period", "koi_prad", "Predicted_Disposition"],
  "rows": [
    {"kepoi_name": "K00752.01", "koi_period": 9.488, "koi_prad": 2.26, "Predicted_Disposition": "CONFIRMED"},
    {"kepoi_name": "K00752.02", "koi_period": "54.41", "Predicted_Disposition": "CANDIDATE", "extra": 1},
    {"kepoi_name": "K00753.01", "koi_period": null, "koi_prad": "n/a", "Predicted_Disposition": "FP"}
  ]
}`

func TestDecodeIngestionResponse(t *testing.T) {
	tbl := Decode([]byte(ingestion))
	require.NoError(t, tbl.Err())
	assert.Equal(t, []string{"kepoi_name", "koi_period", "koi_prad", "Predicted_Disposition"}, tbl.Columns())
	require.Equal(t, 3, tbl.Len())

	r0 := tbl.Row(0)
	p, ok := r0.Float("koi_period")
	require.True(t, ok)
	assert.InDelta(t, 9.488, p, 1e-12)

	// string numbers coerce, absent keys are null, extra keys are dropped
	r1 := tbl.Row(1)
	p, ok = r1.Float("koi_period")
	require.True(t, ok)
	assert.InDelta(t, 54.41, p, 1e-12)
	assert.True(t, r1.Get("koi_prad").IsNull())
	assert.False(t, tbl.HasColumn("extra"))

	r2 := tbl.Row(2)
	assert.True(t, r2.Get("koi_period").IsNull())
	_, ok = r2.Float("koi_prad")
	assert.False(t, ok, "non-numeric text must not coerce to 0")
}

func TestDecodeMalformedYieldsEmptySentinel(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"columns": [`,
		"missing columns": `{"rows": []}`,
		"missing rows":    `{"columns": ["a"]}`,
		"array root":      `[1,2,3]`,
		"bad column":      `{"columns": [1], "rows": []}`,
		"dup column":      `{"columns": ["a","a"], "rows": []}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			tbl := Decode([]byte(doc))
			require.True(t, tbl.Malformed())
			var mErr *MalformedInputError
			require.ErrorAs(t, tbl.Err(), &mErr)
			assert.Equal(t, 0, tbl.Len())
			assert.Empty(t, tbl.Columns())
		})
	}
}

func TestNewRejectsDuplicateColumns(t *testing.T) {
	_, err := New([]string{"a", "b", "a"}, nil)
	require.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestNewPadsShortRows(t *testing.T) {
	tbl, err := New([]string{"a", "b"}, [][]Value{{Num(1)}, {Num(2), Str("x"), Str("dropped")}})
	require.NoError(t, err)
	assert.True(t, tbl.Row(0).Get("b").IsNull())
	assert.Len(t, tbl.Row(1).Values(), 2)
}

func TestVersionsAreDistinct(t *testing.T) {
	a, _ := New([]string{"a"}, nil)
	b, _ := New([]string{"a"}, nil)
	assert.NotEmpty(t, a.Version())
	assert.NotEqual(t, a.Version(), b.Version())
}

func TestAugmentIsNonDestructive(t *testing.T) {
	tbl, err := New([]string{"a"}, [][]Value{{Num(1)}, {Num(2)}})
	require.NoError(t, err)
	out, err := tbl.Augment([]string{"double"}, func(r Row) []Value {
		v, _ := r.Float("a")
		return []Value{Num(v * 2)}
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, tbl.Columns())
	assert.Equal(t, []string{"a", "double"}, out.Columns())
	v, _ := out.Row(1).Float("double")
	assert.Equal(t, 4.0, v)

	_, err = tbl.Augment([]string{"a"}, func(Row) []Value { return nil })
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestPreviewDropsEmptyRowsAndColumns(t *testing.T) {
	tbl, err := New([]string{"a", "blank", "b"}, [][]Value{
		{Num(1), Null(), Str("x")},
		{Null(), Null(), Null()},
		{Null(), Null(), Str("y")},
	})
	require.NoError(t, err)
	p := tbl.Preview()
	assert.Equal(t, []string{"a", "b"}, p.Columns())
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, "y", p.Row(1).Get("b").String())
}

func TestPageBounds(t *testing.T) {
	rows := make([][]Value, 25)
	for i := range rows {
		rows[i] = []Value{Num(float64(i))}
	}
	tbl, err := New([]string{"i"}, rows)
	require.NoError(t, err)
	assert.Len(t, tbl.Head(20), 20)
	last := tbl.Page(20, 20)
	require.Len(t, last, 5)
	assert.Equal(t, 20, last[0].Index())
	assert.Empty(t, tbl.Page(40, 20))
	assert.Empty(t, tbl.Page(0, 0))
}

func TestMarshalJSONRoundTrip(t *testing.T) {
	tbl := Decode([]byte(ingestion))
	b, err := json.Marshal(tbl)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), `{"columns":["kepoi_name","koi_period","koi_prad","Predicted_Disposition"]`))
	again := Decode(b)
	require.NoError(t, again.Err())
	assert.Equal(t, tbl.Columns(), again.Columns())
	assert.Equal(t, tbl.Len(), again.Len())
	assert.True(t, again.Row(0).Get("koi_prad").Kind() == KindNumber)

	empty, err := json.Marshal(Empty("x"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":[],"rows":[]}`, string(empty))
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3.5", 3.5, true},
		{" 42 ", 42, true},
		{"1e3", 1000, true},
		{"12%", 12, true},
		{"1.234,5", 1234.5, true},
		{"1,234.5", 1234.5, true},
		{"0,5", 0.5, true},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"", 0, false},
		{"CONFIRMED", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 1e-9, c.in)
		}
	}
}

func TestNumStoresNonFiniteAsNull(t *testing.T) {
	assert.True(t, Num(posInf()).IsNull())
	assert.Equal(t, "null", mustJSON(t, Num(posInf())))
}

func TestSortRowsNullsLast(t *testing.T) {
	tbl, err := New([]string{"v"}, [][]Value{{Num(3)}, {Null()}, {Num(1)}, {Str("10")}, {Num(2)}})
	require.NoError(t, err)
	asc := SortRows(tbl.Rows(), "v", false)
	assert.Equal(t, []int{2, 4, 0, 3, 1}, indexes(asc))
	desc := SortRows(tbl.Rows(), "v", true)
	assert.Equal(t, []int{3, 0, 4, 2, 1}, indexes(desc))
	// source order untouched
	assert.Equal(t, 0, tbl.Rows()[0].Index())
}

func TestLoadCSVSkipsCommentsAndBadLines(t *testing.T) {
	src := strings.Join([]string{
		"# This file was produced by the NASA Exoplanet Archive",
		"# COLUMN koi_period: Orbital Period [days]",
		"kepoi_name,koi_disposition,koi_period,koi_prad",
		"K00752.01,CONFIRMED,9.488,2.26",
		"K00752.02,CANDIDATE,54.418,",
		"K00753.01,FALSE POSITIVE,nan,inf",
		"K00754.01,FALSE POSITIVE,1.73,33.46,unexpected",
		"K00755.01,CONFIRMED",
	}, "\n")
	tbl, err := LoadCSV(strings.NewReader(src), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"kepoi_name", "koi_disposition", "koi_period", "koi_prad"}, tbl.Columns())
	require.Equal(t, 4, tbl.Len())
	assert.True(t, tbl.Row(1).Get("koi_prad").IsNull())
	assert.True(t, tbl.Row(2).Get("koi_period").IsNull())
	assert.True(t, tbl.Row(2).Get("koi_prad").IsNull())
	assert.Equal(t, "K00755.01", tbl.Row(3).Get("kepoi_name").String())
	assert.True(t, tbl.Row(3).Get("koi_period").IsNull())
}

func TestLoadCSVLatin1AndDuplicateHeaders(t *testing.T) {
	src := []byte("name,name,note\nA,B,caf\xe9\n")
	tbl, err := LoadCSV(strings.NewReader(string(src)), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "name.1", "note"}, tbl.Columns())
	assert.Equal(t, "café", tbl.Row(0).Get("note").String())
}

func TestLoadDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "resp.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(ingestion), 0o644))
	tbl, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	tsvPath := filepath.Join(dir, "data.tsv")
	require.NoError(t, os.WriteFile(tsvPath, []byte("a\tb\n1\tx\n"), 0o644))
	tbl, err = Load(tsvPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"rows": []}`), 0o644))
	tbl, err = Load(badPath)
	require.NoError(t, err)
	assert.True(t, tbl.Malformed())

	_, err = Load(filepath.Join(dir, "data.parquet"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toi.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"toi", "tfopwg_disp", "pl_orbper"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"1000.01", "PC", 2.17}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"1001.01", "KP", ""}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := LoadXLSX(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"toi", "tfopwg_disp", "pl_orbper"}, tbl.Columns())
	require.Equal(t, 2, tbl.Len())
	p, ok := tbl.Row(0).Float("pl_orbper")
	require.True(t, ok)
	assert.InDelta(t, 2.17, p, 1e-9)
	assert.True(t, tbl.Row(1).Get("pl_orbper").IsNull())

	_, err = LoadXLSX(path, "Missing")
	assert.Error(t, err)
}

func indexes(rows []Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Index()
	}
	return out
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func posInf() float64 {
	var zero float64
	return 1 / zero
}
