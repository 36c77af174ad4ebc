package aggregate

import (
	"fmt"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
)

// AnnualChange computes the per-pixel average annual rate of change across a
// yearly aggregate series: (last − first) / (lastYear − firstYear).
//
// With fewer than two distinct years there is no span to divide by; the
// result is a neutral all-zero raster returned together with
// raster.ErrInsufficientData. The neutral raster lets presentation code keep
// going, but the error must be surfaced, never swallowed as a valid zero
// trend.
func AnnualChange(c raster.Collection) (*raster.Raster, error) {
	first, okFirst := c.First()
	last, okLast := c.Last()
	if !okFirst || !okLast || first.Meta.Year == last.Meta.Year {
		if okFirst {
			neutral := first.Raster.MulScalar(0)
			return neutral, fmt.Errorf("trend needs at least two distinct years: %w", raster.ErrInsufficientData)
		}
		return nil, fmt.Errorf("trend needs at least two distinct years: %w", raster.ErrInsufficientData)
	}

	span := float64(last.Meta.Year - first.Meta.Year)
	change, err := last.Raster.Combine(first.Raster, func(b, a float64) float64 {
		return (b - a) / span
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute annual change: %w", err)
	}
	return change, nil
}
