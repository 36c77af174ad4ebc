package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/aggregate"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/cache"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/imagery"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/index"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/mask"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/region"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/terrain"
	"github.com/schollz/progressbar/v3"
)

// Context carries everything a pipeline run needs. It is owned by the caller
// and threaded through each entry point; no component reads process-wide
// state.
type Context struct {
	Region          *region.Region
	Source          imagery.Source
	Terrain         terrain.Source
	StartYear       int
	EndYear         int
	Resolution      float64
	MaxPixels       int
	MaxCloudPercent float64
}

// Analysis is the observed side of the pipeline: yearly dry-season
// composites, the filtered sufficient subset, and the trend across them.
type Analysis struct {
	Mask              *raster.Raster
	Composites        raster.Collection
	Sufficient        raster.Collection
	Trend             *raster.Raster
	TrendInsufficient bool
	Latest            raster.TaggedRaster
	LatestStats       raster.Stats
	WaterFraction     float64
	WaterNote         string
	Width             int
	Height            int
}

// surface-water threshold on NDWI.
const waterIndexThreshold = 0.2

// Cached reductions go stale as new scenes arrive for the current year. The
// cache is built per call so it picks up ROOT_PATH after the environment is
// loaded.
func newStatsCache() *cache.FileCache[raster.Stats] {
	return cache.NewFileCache[raster.Stats]("stats_cache").WithMaxAge(30 * 24 * time.Hour)
}

// AnalyzeRegion runs the observed pipeline: pull scenes, mask clouds, derive
// indices, aggregate dry seasons per year, and estimate the trend. Too few
// sufficient years aborts with aggregate.ErrInsufficientYears after the
// composites are built, so the caller can still report what was observed.
func AnalyzeRegion(ctx context.Context, c *Context) (*Analysis, error) {
	width, height := imagery.GridSize(c.Region, c.Resolution)

	start := time.Date(c.StartYear, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(c.EndYear, 12, 31, 23, 59, 59, 0, time.UTC)

	query := imagery.NewSceneQuery(c.Source).
		FilterBounds(c.Region).
		FilterDate(start, end).
		FilterCloudCover(c.MaxCloudPercent).
		Select(imagery.BandBlue, imagery.BandGreen, imagery.BandRed, imagery.BandNIR, imagery.BandSCL)

	scenes, err := query.Materialize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve scenes: %w", err)
	}

	bar := progressbar.Default(int64(len(scenes)), "Masking and indexing scenes")
	var ndviSeries []index.Observation
	for _, scene := range scenes {
		masked := mask.CloudsAndShadows(scene)
		ndviSeries = append(ndviSeries, index.NDVI(masked, width, height, c.Resolution, c.Region.Name))
		bar.Add(1)
	}

	composites, err := aggregate.DrySeasonComposites(ndviSeries, c.StartYear, c.EndYear, width, height, c.Resolution, c.Region.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to build dry-season composites: %w", err)
	}
	composites.SortByYear()

	analysis := &Analysis{
		Mask:       c.Region.Mask(width, height, c.Resolution),
		Composites: composites,
		Width:      width,
		Height:     height,
	}

	sufficient, sufficientErr := aggregate.Sufficient(composites)
	analysis.Sufficient = sufficient

	if latest, ok := sufficient.Last(); ok {
		analysis.Latest = latest
	} else if latest, ok := composites.Last(); ok {
		analysis.Latest = latest
	}

	if analysis.Latest.Raster != nil {
		statsCache := newStatsCache()
		key := statsCache.GenerateKey(c.Region.Name, analysis.Latest.Meta.Year, analysis.Latest.Meta.SceneCount, "ndvi")
		if cached, ok := statsCache.Get(key); ok {
			analysis.LatestStats = cached
		} else {
			stats, err := raster.ReduceRegion(analysis.Latest.Raster, analysis.Mask, c.MaxPixels)
			if err != nil {
				return nil, fmt.Errorf("failed to reduce latest composite: %w", err)
			}
			analysis.LatestStats = stats
			statsCache.Set(key, stats)
		}
	}

	analysis.waterStatistic(c, scenes, width, height)

	if sufficientErr != nil {
		return analysis, sufficientErr
	}

	trend, trendErr := aggregate.AnnualChange(sufficient)
	analysis.Trend = trend
	if trendErr != nil {
		if !errors.Is(trendErr, raster.ErrInsufficientData) {
			return nil, trendErr
		}
		analysis.TrendInsufficient = true
	}

	return analysis, nil
}

// waterStatistic derives the surface-water fraction from the clearest scene's
// NDWI. It is advisory: failure leaves a note instead of failing the
// analysis.
func (a *Analysis) waterStatistic(c *Context, scenes []imagery.Scene, width, height int) {
	if len(scenes) == 0 {
		a.WaterNote = "no scenes available for water index"
		return
	}
	clearest := scenes[0]
	for _, s := range scenes[1:] {
		if s.CloudCover < clearest.CloudCover {
			clearest = s
		}
	}
	ndwi := index.NDWI(mask.CloudsAndShadows(clearest), width, height, c.Resolution, c.Region.Name)
	if ndwi.Provenance == index.ProvenancePlaceholder {
		a.WaterNote = "water index unavailable: missing band"
		return
	}
	fraction, err := raster.FractionAbove(ndwi.Raster, a.Mask, waterIndexThreshold, c.MaxPixels)
	if err != nil {
		a.WaterNote = fmt.Sprintf("water statistic unavailable: %v", err)
		return
	}
	a.WaterFraction = fraction
}
