package orbit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/exoscope/internal/classify"
	"github.com/KaramelBytes/exoscope/internal/label"
	"github.com/KaramelBytes/exoscope/internal/schema"
	"github.com/KaramelBytes/exoscope/internal/table"
)

func projector(t *testing.T) *Projector {
	t.Helper()
	p, err := NewProjector(DefaultConfig())
	require.NoError(t, err)
	return p
}

func rowsOf(t *testing.T, cols []string, rows ...[]table.Value) []classify.ClassifiedRow {
	t.Helper()
	tbl, err := table.New(cols, rows)
	require.NoError(t, err)
	return classify.FromTable(schema.Normalize(tbl), classify.Options{}).Rows()
}

func TestMissingFeaturesUseDefaults(t *testing.T) {
	cfg := DefaultConfig()
	rows := rowsOf(t, []string{"kepoi_name", classify.PredictedColumn},
		[]table.Value{table.Str("K1"), table.Str("CONFIRMED")},
		[]table.Value{table.Str("K2"), table.Str("CONFIRMED")},
	)
	proj := projector(t).Project(rows, label.Confirmed)
	require.Len(t, proj.Bodies, 2)
	for i, b := range proj.Bodies {
		assert.Equal(t, cfg.DefaultRadius, b.BodyRadius)
		assert.Equal(t, cfg.BaseOffset+float64(i)*cfg.Spacing, b.OrbitalRadius)
		assert.False(t, math.IsNaN(b.AngularSpeed))
		assert.Equal(t, 0.0, b.Confidence)
		assert.Equal(t, ColorConfirmed, b.ColorClass)
	}
	assert.False(t, proj.NoSystem)
}

func TestBodyGeometry(t *testing.T) {
	cfg := DefaultConfig()
	rows := rowsOf(t, []string{"pl_name", "pl_orbper", "pl_rade", classify.PredictedColumn, classify.ConfidenceColumn},
		[]table.Value{table.Str("b"), table.Num(16), table.Num(11), table.Str("PC"), table.Num(0.7)},
		[]table.Value{table.Str("c"), table.Num(-4), table.Num(0.2), table.Str("PC"), table.Null()},
	)
	proj := projector(t).Project(rows, label.Candidate)
	require.Len(t, proj.Bodies, 2)

	b := proj.Bodies[0]
	assert.Equal(t, "b", b.Name)
	assert.InDelta(t, cfg.BaseOffset+4, b.OrbitalRadius, 1e-12)
	assert.InDelta(t, 1.1, b.BodyRadius, 1e-12)
	assert.Equal(t, 0.7, b.Confidence)
	assert.GreaterOrEqual(t, b.AngularSpeed, cfg.SpeedMin)
	assert.LessOrEqual(t, b.AngularSpeed, cfg.SpeedMax)
	assert.InDelta(t, b.OrbitalRadius, b.Position.Norm(), 1e-9)
	assert.Equal(t, 0.0, b.Position.Y)

	c := proj.Bodies[1]
	assert.Equal(t, cfg.BaseOffset+cfg.Spacing, c.OrbitalRadius, "non-positive period counts as missing")
	assert.Equal(t, cfg.MinRadius, c.BodyRadius)
}

func TestOrbitalRadiusMonotonicInPeriod(t *testing.T) {
	p := projector(t)
	prev := math.Inf(-1)
	for _, period := range []float64{0, 0.5, 1, 2, 9.48, 100, 365.25, 10000} {
		r := p.OrbitalRadius(schema.Quantity{Value: period, Present: true}, 0)
		assert.GreaterOrEqual(t, r, prev)
		prev = r
	}
	assert.Equal(t, p.Config().BaseOffset, p.OrbitalRadius(schema.Quantity{Value: 0, Present: true}, 7))
}

func TestProjectZeroPeriodOrbitsInside(t *testing.T) {
	rows := rowsOf(t, []string{"kepoi_name", "koi_period", classify.PredictedColumn},
		[]table.Value{table.Str("K1"), table.Num(1), table.Str("CONFIRMED")},
		[]table.Value{table.Str("K2"), table.Null(), table.Str("CONFIRMED")},
		[]table.Value{table.Str("K3"), table.Null(), table.Str("CONFIRMED")},
		[]table.Value{table.Str("K4"), table.Num(0), table.Str("CONFIRMED")},
	)
	p := projector(t)
	cfg := p.Config()
	proj := p.Project(rows, label.Confirmed)
	require.Len(t, proj.Bodies, 4)
	assert.LessOrEqual(t, proj.Bodies[3].OrbitalRadius, proj.Bodies[0].OrbitalRadius,
		"period 0 must not orbit outside period 1")
	assert.Equal(t, cfg.BaseOffset, proj.Bodies[3].OrbitalRadius)

	neg := p.OrbitalRadius(schema.Quantity{Value: -3, Present: true}, 2)
	assert.Equal(t, cfg.BaseOffset+2*cfg.Spacing, neg)
}

func TestProjectionIsDeterministic(t *testing.T) {
	rows := rowsOf(t, []string{"kepoi_name", "koi_period", classify.PredictedColumn},
		[]table.Value{table.Str("K00752.01"), table.Num(9.48), table.Str("CONFIRMED")},
		[]table.Value{table.Null(), table.Num(54.4), table.Str("CONFIRMED")},
		[]table.Value{table.Str("K00753.01"), table.Null(), table.Str("CONFIRMED")},
	)
	first := projector(t).Project(rows, label.Confirmed)
	second := projector(t).Project(rows, label.Confirmed)
	assert.Equal(t, first, second)

	speeds := map[float64]bool{}
	for _, b := range first.Bodies {
		speeds[b.AngularSpeed] = true
	}
	assert.Len(t, speeds, 3, "distinct keys should get distinct speeds")
}

func TestSeedChangesSpeeds(t *testing.T) {
	rows := rowsOf(t, []string{"kepoi_name", classify.PredictedColumn},
		[]table.Value{table.Str("K1"), table.Str("CONFIRMED")})
	cfg := DefaultConfig()
	cfg.Seed = 7
	other, err := NewProjector(cfg)
	require.NoError(t, err)
	a := projector(t).Project(rows, label.Confirmed).Bodies[0]
	b := other.Project(rows, label.Confirmed).Bodies[0]
	assert.NotEqual(t, a.AngularSpeed, b.AngularSpeed)
}

func TestFalsePositiveHasNoSystem(t *testing.T) {
	rows := rowsOf(t, []string{"kepoi_name", classify.PredictedColumn},
		[]table.Value{table.Str("K1"), table.Str("FALSE POSITIVE")})
	proj := projector(t).Project(rows, label.FalsePositive)
	assert.True(t, proj.NoSystem)
	assert.Empty(t, proj.Bodies)
}

func TestTruncatesToMaxBodies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBodies = 3
	p, err := NewProjector(cfg)
	require.NoError(t, err)
	vals := make([][]table.Value, 5)
	for i := range vals {
		vals[i] = []table.Value{table.Str("CANDIDATE")}
	}
	rows := rowsOf(t, []string{classify.PredictedColumn}, vals...)
	proj := p.Project(rows, label.Candidate)
	assert.Len(t, proj.Bodies, 3)
	assert.Equal(t, 2, proj.Truncated)
	assert.Empty(t, p.Project(rows, label.Confirmed).Bodies)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	bad := []func(*Config){
		func(c *Config) { c.MaxBodies = 0 },
		func(c *Config) { c.MinRadius = 0 },
		func(c *Config) { c.DefaultRadius = c.MinRadius / 2 },
		func(c *Config) { c.Exponent = 0 },
		func(c *Config) { c.Spacing = -1 },
		func(c *Config) { c.SpeedMax = c.SpeedMin / 2 },
		func(c *Config) { c.RadiusScale = math.NaN() },
	}
	for i, mutate := range bad {
		c := DefaultConfig()
		mutate(&c)
		assert.Error(t, c.Validate(), "case %d", i)
		_, err := NewProjector(c)
		assert.Error(t, err)
	}
}
