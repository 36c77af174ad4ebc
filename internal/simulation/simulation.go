// Package simulation evolves a vegetation-index raster forward in discrete
// annual steps under logistic growth offset by pressure-driven loss.
package simulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/auxiliary"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
)

// ErrInvalidParameter rejects a run before it starts: a non-positive carrying
// capacity or a scenario parameter outside its domain.
var ErrInvalidParameter = errors.New("invalid simulation parameter")

// Scenario parameterizes one run: growth rate alpha, pressure rate beta, and
// a label. Scenarios sharing an initial state and auxiliary set are fully
// independent of each other.
type Scenario struct {
	Alpha float64
	Beta  float64
	Label string
}

func (s Scenario) Validate() error {
	if s.Alpha <= 0 || s.Beta <= 0 {
		return fmt.Errorf("scenario %q has alpha=%g beta=%g, both must be positive: %w", s.Label, s.Alpha, s.Beta, ErrInvalidParameter)
	}
	return nil
}

// Config holds the constants shared by every scenario of a run.
type Config struct {
	CarryingCapacity   float64 // K, ceiling of the logistic term and of the clamp
	Floor              float64 // Vmin, hard floor of the clamp
	PressureMultiplier float64 // m, applied uniformly to beta
	Steps              int     // N, annual horizon
}

func DefaultConfig() Config {
	return Config{
		CarryingCapacity:   0.85,
		Floor:              0.15,
		PressureMultiplier: 1.3,
		Steps:              10,
	}
}

func (c Config) Validate() error {
	if c.CarryingCapacity <= 0 {
		return fmt.Errorf("carrying capacity must be positive, got %g: %w", c.CarryingCapacity, ErrInvalidParameter)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("horizon must be positive, got %d: %w", c.Steps, ErrInvalidParameter)
	}
	return nil
}

// Composites are the derived fields shared by all scenarios of a run,
// computed once per auxiliary set.
type Composites struct {
	Vulnerability     *raster.Raster
	EffectivePressure *raster.Raster
}

// DeriveComposites combines the covariates into vulnerability and effective
// pressure. Proximity to settlement dominates vulnerability; slope and raw
// pressure are minor modifiers.
func DeriveComposites(aux *auxiliary.Set) (*Composites, error) {
	vulnerability, err := combine3(aux.Slope, aux.Distance, aux.Pressure, func(slope, distance, pressure float64) float64 {
		return clamp01(0.2*slope + (0.6 - 0.6*distance) + 0.2*pressure)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to derive vulnerability: %w", err)
	}

	effective, err := aux.Pressure.Combine(vulnerability, func(pressure, vuln float64) float64 {
		return clamp01(pressure + 0.6*vuln)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to derive effective pressure: %w", err)
	}

	return &Composites{Vulnerability: vulnerability, EffectivePressure: effective}, nil
}

// Run evolves v0 for cfg.Steps steps under one scenario. The output is the
// full ordered sequence V_0..V_N; step 0 is the initial raster itself,
// untouched. The update is pure and deterministic: identical inputs produce
// bit-identical outputs, and a no-data pixel stays no-data for every
// subsequent step.
func Run(v0 *raster.Raster, comp *Composites, sc Scenario, cfg Config) (raster.Collection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	out := raster.Collection{{
		Raster: v0,
		Meta:   raster.Meta{Step: 0, Scenario: sc.Label, Region: v0.RegionID()},
	}}

	betaEff := sc.Beta * cfg.PressureMultiplier
	current := v0
	for step := 1; step <= cfg.Steps; step++ {
		next, err := current.Combine(comp.EffectivePressure, func(v, pressure float64) float64 {
			growth := sc.Alpha * v * (1 - v/cfg.CarryingCapacity)
			loss := betaEff * v * pressure
			return clamp(v+growth-loss, cfg.Floor, cfg.CarryingCapacity)
		})
		if err != nil {
			return nil, fmt.Errorf("scenario %q failed at step %d: %w", sc.Label, step, err)
		}
		out = append(out, raster.TaggedRaster{
			Raster: next,
			Meta:   raster.Meta{Step: step, Scenario: sc.Label, Region: v0.RegionID()},
		})
		current = next
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func combine3(a, b, c *raster.Raster, f func(x, y, z float64) float64) (*raster.Raster, error) {
	width, height := a.Width(), a.Height()
	if b.Width() != width || c.Width() != width || b.Height() != height || c.Height() != height {
		return nil, fmt.Errorf("raster shape mismatch in three-way combine")
	}
	data := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			va, vb, vc := a.At(x, y), b.At(x, y), c.At(x, y)
			if math.IsNaN(va) || math.IsNaN(vb) || math.IsNaN(vc) {
				data[y*width+x] = raster.NoData
				continue
			}
			data[y*width+x] = f(va, vb, vc)
		}
	}
	return raster.NewFromData(width, height, a.Resolution(), a.RegionID(), data)
}
