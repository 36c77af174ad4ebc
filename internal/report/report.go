// Package report turns aggregates and simulation outputs into tables, series,
// and interpretation text. Strictly a consumer: nothing here feeds back into
// the simulator.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
)

// ScenarioSummary compares one scenario's final simulated step against the
// most recent observed aggregate.
type ScenarioSummary struct {
	Scenario      string  `csv:"scenario"`
	FinalStep     int     `csv:"final_step"`
	BaselineMean  float64 `csv:"baseline_mean"`
	FinalMean     float64 `csv:"final_mean"`
	FinalStdDev   float64 `csv:"final_stddev"`
	FinalP25      float64 `csv:"final_p25"`
	FinalP50      float64 `csv:"final_p50"`
	FinalP75      float64 `csv:"final_p75"`
	PercentChange float64 `csv:"percent_change"`
	Interpretation string `csv:"interpretation"`
	Note          string  `csv:"note"`
}

// Interpret maps the sign and size of a percent change to an advisory
// description.
func Interpret(percentChange float64) string {
	switch {
	case percentChange <= -20:
		return "severe vegetation decline projected"
	case percentChange < -5:
		return "moderate vegetation decline projected"
	case percentChange < 0:
		return "slight vegetation decline projected"
	case percentChange == 0:
		return "vegetation cover projected to hold steady"
	case percentChange <= 5:
		return "slight vegetation recovery projected"
	default:
		return "sustained vegetation recovery projected"
	}
}

// BuildComparison reduces each scenario's final raster over the region and
// compares it against the observed baseline. A scenario whose statistics fail
// to materialize gets an advisory note instead of aborting the others.
func BuildComparison(baseline raster.TaggedRaster, runs map[string]raster.Collection, mask *raster.Raster, maxPixels int) ([]ScenarioSummary, error) {
	baseStats, err := raster.ReduceRegion(baseline.Raster, mask, maxPixels)
	if err != nil {
		return nil, fmt.Errorf("failed to reduce observed baseline: %w", err)
	}

	labels := make([]string, 0, len(runs))
	for label := range runs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var summaries []ScenarioSummary
	for _, label := range labels {
		series := runs[label]
		final, ok := series.Last()
		if !ok {
			summaries = append(summaries, ScenarioSummary{
				Scenario: label,
				Note:     "no simulated steps to report",
			})
			continue
		}

		stats, err := raster.ReduceRegion(final.Raster, mask, maxPixels)
		if err != nil {
			summaries = append(summaries, ScenarioSummary{
				Scenario:  label,
				FinalStep: final.Meta.Step,
				Note:      fmt.Sprintf("statistics unavailable: %v", err),
			})
			continue
		}

		pct := 0.0
		if baseStats.Mean != 0 {
			pct = (stats.Mean - baseStats.Mean) / baseStats.Mean * 100
		}
		summaries = append(summaries, ScenarioSummary{
			Scenario:       label,
			FinalStep:      final.Meta.Step,
			BaselineMean:   baseStats.Mean,
			FinalMean:      stats.Mean,
			FinalStdDev:    stats.StdDev,
			FinalP25:       stats.P25,
			FinalP50:       stats.P50,
			FinalP75:       stats.P75,
			PercentChange:  pct,
			Interpretation: Interpret(pct),
		})
	}
	return summaries, nil
}

// SeriesMeans reduces every step of every scenario to its region mean, for
// charting. Steps whose reduction fails are skipped with an advisory print
// rather than dropping the whole series.
func SeriesMeans(runs map[string]raster.Collection, mask *raster.Raster, maxPixels int) map[string][]float64 {
	out := make(map[string][]float64, len(runs))
	for label, series := range runs {
		means := make([]float64, 0, len(series))
		for _, step := range series {
			stats, err := raster.ReduceRegion(step.Raster, mask, maxPixels)
			if err != nil {
				fmt.Printf("Skipping step %d of scenario %s: %v\n", step.Meta.Step, label, err)
				continue
			}
			means = append(means, stats.Mean)
		}
		out[label] = means
	}
	return out
}

// RenderTable formats scenario summaries as an aligned console table.
func RenderTable(summaries []ScenarioSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-14s %8s %8s %8s %8s %8s %8s %9s  %s\n",
		"scenario", "base", "final", "stddev", "p25", "p50", "p75", "change%", "interpretation")
	for _, s := range summaries {
		if s.Note != "" {
			fmt.Fprintf(&b, "%-14s %s\n", s.Scenario, s.Note)
			continue
		}
		fmt.Fprintf(&b, "%-14s %8.4f %8.4f %8.4f %8.4f %8.4f %8.4f %+8.2f%%  %s\n",
			s.Scenario, s.BaselineMean, s.FinalMean, s.FinalStdDev, s.FinalP25, s.FinalP50, s.FinalP75,
			s.PercentChange, s.Interpretation)
	}
	return b.String()
}
