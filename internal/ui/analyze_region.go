package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/aggregate"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/delivery"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/imagery"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/properties"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/region"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/terrain"
)

const (
	defaultResolution  = 10.0
	defaultMaxCloudPct = 80.0
)

// buildContext assembles the pipeline context for one region from user input.
func buildContext() (*delivery.Context, error) {
	name, err := SelectRegion()
	if err != nil {
		return nil, err
	}

	filePath := properties.RootPath() + "/data/geojsons/" + name + ".geojson"
	r, err := region.LoadFromGeoJSON(filePath, name)
	if err != nil {
		return nil, err
	}

	startYear, endYear, err := ReadYearRange()
	if err != nil {
		return nil, err
	}

	resolution, err := ReadFloat(fmt.Sprintf("Enter the resolution in meters (default %.0f): ", defaultResolution), defaultResolution)
	if err != nil {
		return nil, err
	}

	return &delivery.Context{
		Region:          r,
		Source:          imagery.NewCopernicusSource(resolution),
		Terrain:         terrain.NewCopernicusDEMSource(resolution),
		StartYear:       startYear,
		EndYear:         endYear,
		Resolution:      resolution,
		MaxPixels:       properties.MaxReductionPixels(),
		MaxCloudPercent: defaultMaxCloudPct,
	}, nil
}

// AnalyzeRegion runs the observed pipeline for one region and prints its
// dry-season statistics and trend status.
func AnalyzeRegion() {
	PrintWarning("- A '.geojson' file with the region name should be present in data/geojsons folder.\n- The file should contain the region polygon identified by region_id.")

	c, err := buildContext()
	if err != nil {
		PrintError(err.Error())
		return
	}

	analysis, err := delivery.AnalyzeRegion(context.Background(), c)
	if err != nil && !errors.Is(err, aggregate.ErrInsufficientYears) {
		PrintError(fmt.Sprintf("Error analyzing region: %s", err.Error()))
		return
	}

	printAnalysis(analysis)
	if errors.Is(err, aggregate.ErrInsufficientYears) {
		PrintWarning("Too few sufficient years for a trend. Composites above are still valid observations.")
	}
}

func printAnalysis(analysis *delivery.Analysis) {
	fmt.Printf("%s\nDry-season composites:%s\n", ColorGreen, ColorReset)
	for _, composite := range analysis.Composites {
		fmt.Printf("%s- %d: %d scenes (%s)%s\n", ColorGreen, composite.Meta.Year, composite.Meta.SceneCount, composite.Meta.Provenance, ColorReset)
	}

	if analysis.Latest.Raster != nil {
		stats := analysis.LatestStats
		fmt.Printf("%s\nLatest composite (%d): mean=%.4f stddev=%.4f p25=%.4f p50=%.4f p75=%.4f over %d pixels%s\n",
			ColorGreen, analysis.Latest.Meta.Year, stats.Mean, stats.StdDev, stats.P25, stats.P50, stats.P75, stats.FinitePixels, ColorReset)
	}

	if analysis.WaterNote != "" {
		PrintWarning(analysis.WaterNote)
	} else {
		fmt.Printf("%sSurface water fraction: %.2f%%%s\n", ColorGreen, analysis.WaterFraction*100, ColorReset)
	}

	switch {
	case analysis.Trend == nil:
		PrintWarning("No trend estimate available.")
	case analysis.TrendInsufficient:
		PrintWarning("Only one sufficient year: trend is neutral by construction.")
	default:
		PrintSuccess("Annual vegetation trend estimated across sufficient years.")
	}
}
