// Package aggregate builds dry-season yearly composites from an indexed scene
// series and estimates the observed trend across them.
package aggregate

import (
	"errors"
	"fmt"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/index"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
)

const (
	// Dry-season window over the Chiquitania, chosen to minimize cloud
	// contamination: day-of-year 121 (early May) through 304 (end of October).
	DrySeasonStartDOY = 121
	DrySeasonEndDOY   = 304

	SeasonLabel = "dry"

	// CompositeFloor suppresses degenerate near-zero index noise in tropical
	// canopy composites.
	CompositeFloor = 0.1

	// MinScenesPerYear is the minimum number of contributing scenes for a
	// yearly aggregate to count as observed.
	MinScenesPerYear = 3

	// MinYearsForTrend is the minimum number of sufficient yearly aggregates
	// for trend analysis.
	MinYearsForTrend = 3

	// ProvenanceNoScenes marks a yearly placeholder composite for a season
	// with zero contributing scenes.
	ProvenanceNoScenes = "placeholder:no-scenes"
)

// ErrInsufficientYears signals that too few yearly aggregates survived the
// scene-count filter for trend analysis. Callers abort gracefully rather than
// dividing by a degenerate year span.
var ErrInsufficientYears = errors.New("insufficient yearly aggregates")

// DrySeasonComposites reduces the observations falling inside each year's dry
// season to a per-pixel median, floored at CompositeFloor. A year with zero
// contributing scenes yields a constant-zero placeholder (then floored) so
// the series keeps its shape; the placeholder is tagged and carries a scene
// count of zero.
func DrySeasonComposites(observations []index.Observation, startYear, endYear int, width, height int, resolution float64, regionID string) (raster.Collection, error) {
	if endYear < startYear {
		return nil, fmt.Errorf("invalid year range %d-%d", startYear, endYear)
	}

	var out raster.Collection
	for year := startYear; year <= endYear; year++ {
		var contributing []*raster.Raster
		for _, obs := range observations {
			if obs.Time.Year() != year {
				continue
			}
			doy := obs.Time.YearDay()
			if doy < DrySeasonStartDOY || doy > DrySeasonEndDOY {
				continue
			}
			contributing = append(contributing, obs.Raster)
		}

		meta := raster.Meta{
			Year:       year,
			Season:     SeasonLabel,
			SceneCount: len(contributing),
			Region:     regionID,
		}

		var composite *raster.Raster
		if len(contributing) == 0 {
			composite = raster.NewConst(width, height, resolution, regionID, 0)
			meta.Provenance = ProvenanceNoScenes
		} else {
			median, err := raster.Median(contributing)
			if err != nil {
				return nil, fmt.Errorf("failed to reduce year %d: %w", year, err)
			}
			composite = median
			meta.Provenance = index.ProvenanceObserved
		}

		out = append(out, raster.TaggedRaster{Raster: composite.Floor(CompositeFloor), Meta: meta})
	}
	return out, nil
}

// Sufficient drops yearly aggregates whose contributing-scene count is below
// MinScenesPerYear. When fewer than MinYearsForTrend elements remain the
// filtered collection is still returned alongside ErrInsufficientYears so the
// caller can report what it had.
func Sufficient(c raster.Collection) (raster.Collection, error) {
	kept := c.Filter(func(tr raster.TaggedRaster) bool {
		return tr.Meta.SceneCount >= MinScenesPerYear
	})
	if len(kept) < MinYearsForTrend {
		return kept, fmt.Errorf("%d of %d yearly aggregates have at least %d scenes: %w",
			len(kept), len(c), MinScenesPerYear, ErrInsufficientYears)
	}
	return kept, nil
}
