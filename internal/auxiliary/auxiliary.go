// Package auxiliary builds the static covariates the simulator consumes:
// slope, distance to settlements, and a human-pressure proxy.
package auxiliary

import (
	"fmt"
	"math"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
)

// Set holds the covariates for one region. Slope, Distance, Pressure and Loss
// are normalized to [0,1]; Elevation and RawDistance stay in physical units
// (meters).
type Set struct {
	Elevation   *raster.Raster
	RawDistance *raster.Raster
	Slope       *raster.Raster
	Distance    *raster.Raster
	Pressure    *raster.Raster
	Loss        *raster.Raster
}

const sinkFillIterations = 5

// FillSinks smooths spurious pits out of a DEM with iterated focal max/min
// passes before slope derivation.
func FillSinks(elevation *raster.Raster) *raster.Raster {
	filled := elevation
	for i := 0; i < sinkFillIterations; i++ {
		filled = filled.FocalMax(1).FocalMin(1)
	}
	return filled
}

// Slope derives terrain slope in degrees from an elevation raster using
// central differences at the raster's resolution. Border pixels use one-sided
// differences.
func Slope(elevation *raster.Raster) *raster.Raster {
	width, height := elevation.Width(), elevation.Height()
	res := elevation.Resolution()
	if res <= 0 {
		res = 1
	}
	data := make([]float64, width*height)
	at := func(x, y int) float64 {
		if x < 0 {
			x = 0
		}
		if x >= width {
			x = width - 1
		}
		if y < 0 {
			y = 0
		}
		if y >= height {
			y = height - 1
		}
		return elevation.At(x, y)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			center := elevation.At(x, y)
			if math.IsNaN(center) {
				data[y*width+x] = raster.NoData
				continue
			}
			left, right := at(x-1, y), at(x+1, y)
			up, down := at(x, y-1), at(x, y+1)
			if math.IsNaN(left) || math.IsNaN(right) || math.IsNaN(up) || math.IsNaN(down) {
				data[y*width+x] = raster.NoData
				continue
			}
			dzdx := (right - left) / (2 * res)
			dzdy := (down - up) / (2 * res)
			data[y*width+x] = math.Atan(math.Sqrt(dzdx*dzdx+dzdy*dzdy)) * 180 / math.Pi
		}
	}
	slope, _ := raster.NewFromData(width, height, elevation.Resolution(), elevation.RegionID(), data)
	return slope
}

// DistanceTransform computes the distance in meters from every pixel to the
// nearest seed pixel (finite, positive value in seeds) with a two-pass
// chamfer transform. A seed raster with no seeds is an error: distance to
// nothing is undefined.
func DistanceTransform(seeds *raster.Raster) (*raster.Raster, error) {
	width, height := seeds.Width(), seeds.Height()
	res := seeds.Resolution()
	if res <= 0 {
		res = 1
	}

	const inf = math.MaxFloat64
	dist := make([]float64, width*height)
	seeded := false
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := seeds.At(x, y)
			if !math.IsNaN(v) && v > 0 {
				dist[y*width+x] = 0
				seeded = true
			} else {
				dist[y*width+x] = inf
			}
		}
	}
	if !seeded {
		return nil, fmt.Errorf("distance transform has no seed pixels")
	}

	straight, diagonal := 1.0, math.Sqrt2
	relax := func(i int, neighbor, step float64) {
		if neighbor+step < dist[i] {
			dist[i] = neighbor + step
		}
	}

	// Forward pass: top-left to bottom-right.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if x > 0 {
				relax(i, dist[i-1], straight)
			}
			if y > 0 {
				relax(i, dist[i-width], straight)
				if x > 0 {
					relax(i, dist[i-width-1], diagonal)
				}
				if x < width-1 {
					relax(i, dist[i-width+1], diagonal)
				}
			}
		}
	}
	// Backward pass: bottom-right to top-left.
	for y := height - 1; y >= 0; y-- {
		for x := width - 1; x >= 0; x-- {
			i := y*width + x
			if x < width-1 {
				relax(i, dist[i+1], straight)
			}
			if y < height-1 {
				relax(i, dist[i+width], straight)
				if x < width-1 {
					relax(i, dist[i+width+1], diagonal)
				}
				if x > 0 {
					relax(i, dist[i+width-1], diagonal)
				}
			}
		}
	}

	for i := range dist {
		dist[i] *= res
	}
	return raster.NewFromData(width, height, seeds.Resolution(), seeds.RegionID(), dist)
}

// Build assembles the covariate set from an elevation raster, a settlement
// seed raster, and the observed vegetation trend. The pressure proxy mixes
// historical vegetation loss with proximity to settlements. It is computed
// once here and treated as a fixed input afterwards; the simulator must
// never recompute it mid-run.
func Build(elevation, settlementSeeds, trend *raster.Raster) (*Set, error) {
	filled := FillSinks(elevation)
	slope := Slope(filled)

	rawDistance, err := DistanceTransform(settlementSeeds)
	if err != nil {
		return nil, fmt.Errorf("failed to build distance covariate: %w", err)
	}

	// Historical loss: magnitude of the negative observed trend. Growth or a
	// neutral trend contributes zero loss.
	loss := trend.Map(func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return 0
	})

	lossN := loss.Normalize01()
	distanceN := rawDistance.Normalize01()
	pressure, err := lossN.Combine(distanceN, func(l, d float64) float64 {
		p := 0.5*l + 0.5*(1-d)
		if p < 0 {
			return 0
		}
		if p > 1 {
			return 1
		}
		return p
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build pressure covariate: %w", err)
	}

	return &Set{
		Elevation:   filled,
		RawDistance: rawDistance,
		Slope:       slope.Normalize01(),
		Distance:    distanceN,
		Pressure:    pressure,
		Loss:        lossN,
	}, nil
}
