package delivery

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/auxiliary"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/export"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/properties"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/region"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/report"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/simulation"
	"github.com/chaco-verde/chaco-verde-research-cli/output"
)

// DefaultScenarios is the standard three-way comparison: business as usual,
// active conservation, and agricultural expansion.
func DefaultScenarios() []simulation.Scenario {
	return []simulation.Scenario{
		{Label: "baseline", Alpha: 0.15, Beta: 0.15},
		{Label: "conservation", Alpha: 0.22, Beta: 0.08},
		{Label: "expansion", Alpha: 0.10, Beta: 0.25},
	}
}

// sweepAlphas are the growth rates exercised by the sensitivity sweep around
// the baseline scenario.
var sweepAlphas = []float64{0.10, 0.125, 0.15, 0.175, 0.20}

// Projection is everything RunScenarios produces for one region.
type Projection struct {
	Auxiliary  *auxiliary.Set
	Composites *simulation.Composites
	Runs       map[string]raster.Collection
	Failures   map[string]error
	Summaries  []report.ScenarioSummary
	Series     map[string][]float64
	Sweep      []report.SweepRow
	SummaryCSV string
	SeriesCSV  string
	ChartPath  string
	MapPaths   []string
}

// RunScenarios projects the analyzed region forward: build covariates, derive
// the shared composites, run every scenario, and turn the results into
// tables, charts, maps, CSVs, and scheduled GeoTIFF exports.
func RunScenarios(ctx context.Context, c *Context, analysis *Analysis, scenarios []simulation.Scenario, cfg simulation.Config) (*Projection, error) {
	if analysis.Latest.Raster == nil {
		return nil, fmt.Errorf("no observed composite to simulate from")
	}

	elevation, err := c.Terrain.Elevation(ctx, c.Region, analysis.Width, analysis.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to load elevation: %w", err)
	}

	seeds, err := settlementSeeds(c.Region, analysis.Width, analysis.Height, c.Resolution)
	if err != nil {
		return nil, fmt.Errorf("failed to build settlement seeds: %w", err)
	}

	trend := analysis.Trend
	if trend == nil {
		// No usable trend means no historical-loss signal; pressure falls back
		// to proximity alone.
		trend = analysis.Latest.Raster.MulScalar(0)
	}

	aux, err := auxiliary.Build(elevation, seeds, trend)
	if err != nil {
		return nil, err
	}

	comp, err := simulation.DeriveComposites(aux)
	if err != nil {
		return nil, err
	}

	v0, err := analysis.Latest.Raster.Clip(analysis.Mask)
	if err != nil {
		return nil, fmt.Errorf("failed to clip initial state to region: %w", err)
	}

	runs, failures := simulation.RunSet(v0, comp, scenarios, cfg)
	proj := &Projection{
		Auxiliary:  aux,
		Composites: comp,
		Runs:       runs,
		Failures:   failures,
	}
	for label, ferr := range failures {
		fmt.Printf("Scenario %s failed: %v\n", label, ferr)
	}
	if len(runs) == 0 {
		return proj, fmt.Errorf("all scenarios failed")
	}

	proj.Summaries, err = report.BuildComparison(analysis.Latest, runs, analysis.Mask, c.MaxPixels)
	if err != nil {
		return proj, err
	}
	proj.Series = report.SeriesMeans(runs, analysis.Mask, c.MaxPixels)
	proj.Sweep = report.SensitivitySweep(v0, comp, sweepAlphas, 0.15, cfg, analysis.Mask, c.MaxPixels)

	proj.renderArtifacts(c, analysis, cfg)
	return proj, nil
}

// renderArtifacts writes CSVs, the series chart, per-scenario maps, and
// schedules GeoTIFF exports. Rendering is advisory: failures are printed, not
// returned, so a bad chart never discards a finished projection.
func (p *Projection) renderArtifacts(c *Context, analysis *Analysis, cfg simulation.Config) {
	regionID := c.Region.Name

	if path, err := report.WriteSummaryCSV(regionID, p.Summaries); err != nil {
		fmt.Printf("Failed to write summary CSV: %v\n", err)
	} else {
		p.SummaryCSV = path
	}
	if path, err := report.WriteSeriesCSV(regionID, p.Series); err != nil {
		fmt.Printf("Failed to write series CSV: %v\n", err)
	} else {
		p.SeriesCSV = path
	}
	if path, err := output.CreateSeriesChart(p.Series, "scenario_means", regionID); err != nil {
		fmt.Printf("Failed to render series chart: %v\n", err)
	} else {
		p.ChartPath = path
	}

	for label, series := range p.Runs {
		final, ok := series.Last()
		if !ok {
			continue
		}
		name := fmt.Sprintf("vegetation_%s_step%d", label, final.Meta.Step)
		if path, err := output.CreateMapImage(final.Raster, cfg.Floor, cfg.CarryingCapacity, properties.VegetationRamp, name, regionID); err != nil {
			fmt.Printf("Failed to render map for scenario %s: %v\n", label, err)
		} else {
			p.MapPaths = append(p.MapPaths, path)
		}
		export.Schedule(export.Request{
			Raster:     final.Raster,
			Name:       name,
			Resolution: c.Resolution,
			Region:     c.Region,
			Folder:     regionID,
		})
	}
}

// settlementSeeds rasterizes the region's settlement points onto the analysis
// grid for the distance transform.
func settlementSeeds(r *region.Region, width, height int, resolution float64) (*raster.Raster, error) {
	points, err := region.SettlementPoints(settlementsPath(r.Name))
	if err != nil {
		return nil, err
	}
	data := make([]float64, width*height)
	for _, p := range points {
		if x, y, ok := r.GridPoint(p, width, height); ok {
			data[y*width+x] = 1
		}
	}
	return raster.NewFromData(width, height, resolution, r.Name, data)
}

func settlementsPath(regionID string) string {
	return filepath.Join(properties.RootPath(), "data", "geojsons", regionID+"_settlements.geojson")
}
