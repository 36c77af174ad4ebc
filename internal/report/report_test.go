package report

import (
	"testing"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pct  float64
		want string
	}{
		{-35, "severe vegetation decline projected"},
		{-20, "severe vegetation decline projected"},
		{-12, "moderate vegetation decline projected"},
		{-1, "slight vegetation decline projected"},
		{0, "vegetation cover projected to hold steady"},
		{3, "slight vegetation recovery projected"},
		{15, "sustained vegetation recovery projected"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Interpret(tt.pct), "pct=%g", tt.pct)
	}
}

func tagged(label string, step int, value float64) raster.TaggedRaster {
	return raster.TaggedRaster{
		Raster: raster.NewConst(2, 2, 10, "test", value),
		Meta:   raster.Meta{Scenario: label, Step: step},
	}
}

func TestBuildComparison(t *testing.T) {
	t.Parallel()

	baseline := tagged("", 0, 0.5)
	runs := map[string]raster.Collection{
		"growth":  {tagged("growth", 0, 0.5), tagged("growth", 10, 0.6)},
		"decline": {tagged("decline", 0, 0.5), tagged("decline", 10, 0.4)},
	}

	summaries, err := BuildComparison(baseline, runs, nil, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// labels come back sorted
	decline, growth := summaries[0], summaries[1]
	assert.Equal(t, "decline", decline.Scenario)
	assert.Equal(t, 10, decline.FinalStep)
	assert.InDelta(t, -20, decline.PercentChange, 1e-9)
	assert.Equal(t, "severe vegetation decline projected", decline.Interpretation)

	assert.Equal(t, "growth", growth.Scenario)
	assert.InDelta(t, 20, growth.PercentChange, 1e-9)
	assert.Equal(t, "sustained vegetation recovery projected", growth.Interpretation)
}

func TestBuildComparisonFailedScenarioGetsNote(t *testing.T) {
	t.Parallel()

	baseline := tagged("", 0, 0.5)
	runs := map[string]raster.Collection{
		"ok":    {tagged("ok", 10, 0.5)},
		"empty": {},
		"nodata": {raster.TaggedRaster{
			Raster: raster.NewConst(2, 2, 10, "test", raster.NoData),
			Meta:   raster.Meta{Scenario: "nodata", Step: 10},
		}},
	}

	summaries, err := BuildComparison(baseline, runs, nil, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	byLabel := map[string]ScenarioSummary{}
	for _, s := range summaries {
		byLabel[s.Scenario] = s
	}
	assert.Empty(t, byLabel["ok"].Note)
	assert.Equal(t, "no simulated steps to report", byLabel["empty"].Note)
	assert.Contains(t, byLabel["nodata"].Note, "statistics unavailable")
}

func TestSeriesMeans(t *testing.T) {
	t.Parallel()

	runs := map[string]raster.Collection{
		"s": {tagged("s", 0, 0.5), tagged("s", 1, 0.4), tagged("s", 2, 0.3)},
	}

	series := SeriesMeans(runs, nil, 0)

	require.Contains(t, series, "s")
	require.Len(t, series["s"], 3)
	assert.InDelta(t, 0.5, series["s"][0], 1e-9)
	assert.InDelta(t, 0.3, series["s"][2], 1e-9)
}

func TestSensitivitySweepMonotonicInAlpha(t *testing.T) {
	t.Parallel()

	v0 := raster.NewConst(3, 3, 10, "test", 0.5)
	comp := &simulation.Composites{
		Vulnerability:     raster.NewConst(3, 3, 10, "test", 0.5),
		EffectivePressure: raster.NewConst(3, 3, 10, "test", 0.5),
	}

	rows := SensitivitySweep(v0, comp, []float64{0.1, 0.15, 0.2}, 0.15, simulation.DefaultConfig(), nil, 0)

	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Empty(t, row.Note)
	}
	assert.Less(t, rows[0].FinalMean, rows[1].FinalMean)
	assert.Less(t, rows[1].FinalMean, rows[2].FinalMean)
}

func TestSensitivitySweepInvalidAlphaGetsNote(t *testing.T) {
	t.Parallel()

	v0 := raster.NewConst(2, 2, 10, "test", 0.5)
	comp := &simulation.Composites{
		Vulnerability:     raster.NewConst(2, 2, 10, "test", 0.5),
		EffectivePressure: raster.NewConst(2, 2, 10, "test", 0.5),
	}

	rows := SensitivitySweep(v0, comp, []float64{-0.1, 0.15}, 0.15, simulation.DefaultConfig(), nil, 0)

	require.Len(t, rows, 2)
	assert.NotEmpty(t, rows[0].Note)
	assert.Empty(t, rows[1].Note)
}

func TestRenderTableIncludesNotes(t *testing.T) {
	t.Parallel()

	out := RenderTable([]ScenarioSummary{
		{Scenario: "baseline", FinalStep: 10, BaselineMean: 0.5, FinalMean: 0.45, PercentChange: -10, Interpretation: "moderate vegetation decline projected"},
		{Scenario: "broken", Note: "statistics unavailable: insufficient data"},
	})

	assert.Contains(t, out, "baseline")
	assert.Contains(t, out, "moderate vegetation decline projected")
	assert.Contains(t, out, "statistics unavailable")
}
