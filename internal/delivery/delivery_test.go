package delivery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/aggregate"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/imagery"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/region"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/simulation"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySource struct {
	scenes []imagery.Scene
}

func (m *memorySource) Scenes(_ context.Context, _ *region.Region, _, _ time.Time) ([]imagery.Scene, error) {
	return m.scenes, nil
}

type flatTerrain struct {
	elevation float64
}

func (f *flatTerrain) Elevation(_ context.Context, r *region.Region, width, height int) (*raster.Raster, error) {
	return raster.NewConst(width, height, 10, r.Name, f.elevation), nil
}

func testRegion() *region.Region {
	return &region.Region{
		Name: "test_region",
		Polygon: orb.Polygon{orb.Ring{
			{0, 0}, {0.01, 0}, {0.01, 0.01}, {0, 0.01}, {0, 0},
		}},
	}
}

// scene builds a uniform dry-season scene whose NDVI is value.
func scene(t *testing.T, width, height int, day time.Time, ndvi float64) imagery.Scene {
	t.Helper()
	// NIR fixed at 0.6; red chosen so (nir-red)/(nir+red) = ndvi
	nir := 0.6
	red := nir * (1 - ndvi) / (1 + ndvi)
	return imagery.Scene{
		AcquiredAt: day,
		CloudCover: 5,
		Bands: map[string]*raster.Raster{
			imagery.BandGreen: raster.NewConst(width, height, 10, "test_region", 0.3),
			imagery.BandRed:   raster.NewConst(width, height, 10, "test_region", red),
			imagery.BandNIR:   raster.NewConst(width, height, 10, "test_region", nir),
			imagery.BandSCL:   raster.NewConst(width, height, 10, "test_region", 4),
		},
	}
}

func decliningScenes(t *testing.T, width, height int) []imagery.Scene {
	t.Helper()
	var scenes []imagery.Scene
	ndviByYear := map[int]float64{2021: 0.7, 2022: 0.6, 2023: 0.5}
	for year, ndvi := range ndviByYear {
		for _, month := range []time.Month{time.June, time.July, time.August} {
			scenes = append(scenes, scene(t, width, height, time.Date(year, month, 15, 0, 0, 0, 0, time.UTC), ndvi))
		}
	}
	return scenes
}

func testContext(src imagery.Source) *Context {
	return &Context{
		Region:          testRegion(),
		Source:          src,
		Terrain:         &flatTerrain{elevation: 300},
		StartYear:       2021,
		EndYear:         2023,
		Resolution:      10,
		MaxPixels:       1_000_000,
		MaxCloudPercent: 80,
	}
}

func TestAnalyzeRegion(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	c := testContext(nil)
	width, height := imagery.GridSize(c.Region, c.Resolution)
	c.Source = &memorySource{scenes: decliningScenes(t, width, height)}

	analysis, err := AnalyzeRegion(context.Background(), c)
	require.NoError(t, err)

	require.Len(t, analysis.Composites, 3)
	require.Len(t, analysis.Sufficient, 3)
	for _, composite := range analysis.Composites {
		assert.Equal(t, 3, composite.Meta.SceneCount)
	}

	require.NotNil(t, analysis.Trend)
	assert.False(t, analysis.TrendInsufficient)
	// NDVI drops 0.1 per year
	assert.InDelta(t, -0.1, analysis.Trend.At(width/2, height/2), 1e-9)

	assert.Equal(t, 2023, analysis.Latest.Meta.Year)
	assert.InDelta(t, 0.5, analysis.LatestStats.Mean, 1e-9)
}

func TestAnalyzeRegionTooFewYears(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	c := testContext(nil)
	c.StartYear, c.EndYear = 2023, 2023
	width, height := imagery.GridSize(c.Region, c.Resolution)
	c.Source = &memorySource{scenes: []imagery.Scene{
		scene(t, width, height, time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC), 0.5),
		scene(t, width, height, time.Date(2023, time.July, 11, 0, 0, 0, 0, time.UTC), 0.5),
		scene(t, width, height, time.Date(2023, time.July, 21, 0, 0, 0, 0, time.UTC), 0.5),
	}}

	analysis, err := AnalyzeRegion(context.Background(), c)
	assert.True(t, errors.Is(err, aggregate.ErrInsufficientYears))
	require.NotNil(t, analysis)
	assert.Len(t, analysis.Composites, 1)
	assert.Nil(t, analysis.Trend)
}

func writeSettlements(t *testing.T, root, regionID string) {
	t.Helper()
	dir := filepath.Join(root, "data", "geojsons")
	require.NoError(t, os.MkdirAll(dir, 0755))
	content := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {"name": "village"}, "geometry": {"type": "Point", "coordinates": [0.005, 0.005]}}
	]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, regionID+"_settlements.geojson"), []byte(content), 0644))
}

func TestRunScenarios(t *testing.T) {
	root := t.TempDir()
	t.Setenv("ROOT_PATH", root)
	writeSettlements(t, root, "test_region")

	c := testContext(nil)
	width, height := imagery.GridSize(c.Region, c.Resolution)
	c.Source = &memorySource{scenes: decliningScenes(t, width, height)}

	analysis, err := AnalyzeRegion(context.Background(), c)
	require.NoError(t, err)

	cfg := simulation.DefaultConfig()
	proj, err := RunScenarios(context.Background(), c, analysis, DefaultScenarios(), cfg)
	require.NoError(t, err)

	assert.Empty(t, proj.Failures)
	require.Len(t, proj.Runs, 3)
	for label, series := range proj.Runs {
		assert.Len(t, series, cfg.Steps+1, label)
	}

	require.Len(t, proj.Summaries, 3)
	byLabel := map[string]float64{}
	for _, s := range proj.Summaries {
		assert.Empty(t, s.Note, s.Scenario)
		byLabel[s.Scenario] = s.FinalMean
	}
	assert.Greater(t, byLabel["conservation"], byLabel["expansion"])

	require.Len(t, proj.Series, 3)
	assert.Len(t, proj.Series["baseline"], cfg.Steps+1)
	assert.Len(t, proj.Sweep, len(sweepAlphas))

	assert.FileExists(t, proj.SummaryCSV)
	assert.FileExists(t, proj.SeriesCSV)
}

func TestRunScenariosMissingSettlements(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	c := testContext(nil)
	width, height := imagery.GridSize(c.Region, c.Resolution)
	c.Source = &memorySource{scenes: decliningScenes(t, width, height)}

	analysis, err := AnalyzeRegion(context.Background(), c)
	require.NoError(t, err)

	_, err = RunScenarios(context.Background(), c, analysis, DefaultScenarios(), simulation.DefaultConfig())
	assert.Error(t, err)
}
