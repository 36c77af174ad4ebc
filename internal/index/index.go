// Package index derives normalized difference indices from masked scenes.
package index

import (
	"time"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/imagery"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
)

const (
	// ProvenancePlaceholder marks a raster substituted for a scene that was
	// missing a required band. Downstream consumers must be able to tell the
	// substitution apart from a real observation.
	ProvenancePlaceholder = "placeholder:missing-band"
	ProvenanceObserved    = "observed"
)

// Observation is one indexed scene in a time series.
type Observation struct {
	Raster     *raster.Raster
	Time       time.Time
	Provenance string
}

// NDVI computes (NIR − Red)/(NIR + Red), the canopy greenness proxy. A scene
// missing either band yields a constant-zero placeholder tagged as such,
// never an error.
func NDVI(s imagery.Scene, width, height int, resolution float64, regionID string) Observation {
	return normalizedDifference(s, imagery.BandNIR, imagery.BandRed, width, height, resolution, regionID)
}

// NDWI computes (Green − NIR)/(Green + NIR), the surface-water proxy.
func NDWI(s imagery.Scene, width, height int, resolution float64, regionID string) Observation {
	return normalizedDifference(s, imagery.BandGreen, imagery.BandNIR, width, height, resolution, regionID)
}

func normalizedDifference(s imagery.Scene, first, second string, width, height int, resolution float64, regionID string) Observation {
	a, okA := s.Band(first)
	b, okB := s.Band(second)
	if !okA || !okB {
		return Observation{
			Raster:     raster.NewConst(width, height, resolution, regionID, 0),
			Time:       s.AcquiredAt,
			Provenance: ProvenancePlaceholder,
		}
	}

	nd, err := raster.NormalizedDifference(a, b)
	if err != nil {
		return Observation{
			Raster:     raster.NewConst(width, height, resolution, regionID, 0),
			Time:       s.AcquiredAt,
			Provenance: ProvenancePlaceholder,
		}
	}
	return Observation{Raster: nd, Time: s.AcquiredAt, Provenance: ProvenanceObserved}
}
