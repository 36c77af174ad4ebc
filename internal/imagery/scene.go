package imagery

import (
	"context"
	"time"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/region"
)

// Band names requested from the platform. SCL is the scene classification
// band used for cloud and shadow masking.
const (
	BandBlue  = "B02"
	BandGreen = "B03"
	BandRed   = "B04"
	BandNIR   = "B08"
	BandSCL   = "SCL"
)

// Scene is one acquired satellite image: named spectral bands plus per-scene
// metadata.
type Scene struct {
	AcquiredAt time.Time
	CloudCover float64
	Bands      map[string]*raster.Raster
	Provenance string
}

// Band returns the named band raster, or false when the scene does not carry
// it.
func (s Scene) Band(name string) (*raster.Raster, bool) {
	b, ok := s.Bands[name]
	return b, ok
}

// Source is the external imagery platform boundary: given a region and date
// range it returns the candidate scenes. Filtering, sorting and band
// selection happen in SceneQuery.
type Source interface {
	Scenes(ctx context.Context, r *region.Region, start, end time.Time) ([]Scene, error)
}
