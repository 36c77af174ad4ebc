package simulation

import (
	"sync"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
	"github.com/gammazero/workerpool"
)

const scenarioWorkers = 4

// RunSet runs every scenario against the shared initial state and composite
// fields. Scenarios are independent, so they run through a worker pool; an
// invalid scenario fails alone and never aborts its siblings. The returned
// maps are keyed by scenario label.
func RunSet(v0 *raster.Raster, comp *Composites, scenarios []Scenario, cfg Config) (map[string]raster.Collection, map[string]error) {
	results := make(map[string]raster.Collection, len(scenarios))
	failures := make(map[string]error)

	// K = 0 is fatal for the whole run, not per scenario.
	if err := cfg.Validate(); err != nil {
		for _, sc := range scenarios {
			failures[sc.Label] = err
		}
		return results, failures
	}

	var mu sync.Mutex
	wp := workerpool.New(scenarioWorkers)
	for _, sc := range scenarios {
		sc := sc
		wp.Submit(func() {
			series, err := Run(v0, comp, sc, cfg)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[sc.Label] = err
				return
			}
			results[sc.Label] = series
		})
	}
	wp.StopWait()

	return results, failures
}
