package raster

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrQuotaExceeded is returned when a reduction would touch more pixels than
// the ceiling passed through to the call.
var ErrQuotaExceeded = errors.New("reduction pixel quota exceeded")

// ErrInsufficientData is returned when a reduction or aggregation has nothing
// meaningful to report. Callers decide whether to abort; the neutral value
// that accompanies it must never be treated as a real result silently.
var ErrInsufficientData = errors.New("insufficient data")

// Stats holds the scalar region reduction of a raster.
type Stats struct {
	Mean         float64
	StdDev       float64
	P25          float64
	P50          float64
	P75          float64
	FinitePixels int
}

// ReduceRegion reduces a raster to scalar statistics over the pixels where
// mask is finite and positive (the whole raster when mask is nil). The call
// is synchronous and bounded: a raster larger than maxPixels fails with
// ErrQuotaExceeded before any work is done.
func ReduceRegion(r *Raster, mask *Raster, maxPixels int) (Stats, error) {
	if maxPixels > 0 && r.width*r.height > maxPixels {
		return Stats{}, fmt.Errorf("raster has %d pixels, ceiling is %d: %w", r.width*r.height, maxPixels, ErrQuotaExceeded)
	}
	if mask != nil {
		if err := r.sameShape(mask); err != nil {
			return Stats{}, err
		}
	}

	values := make([]float64, 0, len(r.pix))
	for i, v := range r.pix {
		if math.IsNaN(v) {
			continue
		}
		if mask != nil {
			m := mask.pix[i]
			if math.IsNaN(m) || m <= 0 {
				continue
			}
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return Stats{}, fmt.Errorf("no finite pixels inside region: %w", ErrInsufficientData)
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(values)))

	sort.Float64s(values)
	return Stats{
		Mean:         mean,
		StdDev:       std,
		P25:          percentile(values, 25),
		P50:          percentile(values, 50),
		P75:          percentile(values, 75),
		FinitePixels: len(values),
	}, nil
}

// percentile interpolates linearly over sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// FractionAbove returns the share of region pixels strictly above threshold,
// used for surface-water presence from a water index.
func FractionAbove(r *Raster, mask *Raster, threshold float64, maxPixels int) (float64, error) {
	if maxPixels > 0 && r.width*r.height > maxPixels {
		return 0, fmt.Errorf("raster has %d pixels, ceiling is %d: %w", r.width*r.height, maxPixels, ErrQuotaExceeded)
	}
	if mask != nil {
		if err := r.sameShape(mask); err != nil {
			return 0, err
		}
	}
	total, above := 0, 0
	for i, v := range r.pix {
		if math.IsNaN(v) {
			continue
		}
		if mask != nil {
			m := mask.pix[i]
			if math.IsNaN(m) || m <= 0 {
				continue
			}
		}
		total++
		if v > threshold {
			above++
		}
	}
	if total == 0 {
		return 0, fmt.Errorf("no finite pixels inside region: %w", ErrInsufficientData)
	}
	return float64(above) / float64(total), nil
}
