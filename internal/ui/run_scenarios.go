package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/aggregate"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/delivery"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/notification"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/report"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/simulation"
)

// RunScenarios analyzes a region and projects it forward under the scenario
// set, printing the comparison table and the sensitivity sweep.
func RunScenarios() {
	PrintWarning("- A '<region>.geojson' and a '<region>_settlements.geojson' file should be present in data/geojsons folder.\n- A '<region>.tiff' elevation model should be present in data/dem folder.")

	c, err := buildContext()
	if err != nil {
		PrintError(err.Error())
		return
	}

	cfg := simulation.DefaultConfig()
	steps, err := ReadInt(fmt.Sprintf("Enter the simulation horizon in years (default %d): ", cfg.Steps), 1, 100)
	if err == nil {
		cfg.Steps = steps
	}

	analysis, err := delivery.AnalyzeRegion(context.Background(), c)
	if err != nil {
		if errors.Is(err, aggregate.ErrInsufficientYears) {
			PrintError("Too few sufficient years to simulate from. Extend the year range.")
		} else {
			PrintError(fmt.Sprintf("Error analyzing region: %s", err.Error()))
		}
		return
	}

	proj, err := delivery.RunScenarios(context.Background(), c, analysis, delivery.DefaultScenarios(), cfg)
	if err != nil {
		PrintError(fmt.Sprintf("Error running scenarios: %s", err.Error()))
		notification.SendDiscordErrorNotification(fmt.Sprintf("Chaco Verde CLI\n\nError running scenarios for %s: %s", c.Region.Name, err.Error()))
		return
	}

	fmt.Printf("%s\nScenario comparison:%s\n", ColorGreen, ColorReset)
	fmt.Print(report.RenderTable(proj.Summaries))

	fmt.Printf("%s\nGrowth-rate sensitivity:%s\n", ColorGreen, ColorReset)
	fmt.Print(report.RenderSweepTable(proj.Sweep))

	PrintSuccess(fmt.Sprintf("Successful projection!\n Summary CSV: %s\n Series CSV: %s\n Chart: %s", proj.SummaryCSV, proj.SeriesCSV, proj.ChartPath))
	for _, path := range proj.MapPaths {
		fmt.Printf("%s Map: %s%s\n", ColorGreen, path, ColorReset)
	}
	notification.SendDiscordSuccessNotification(fmt.Sprintf("Chaco Verde CLI\n\nSuccessful projection for %s!\nSummary CSV: %s", c.Region.Name, proj.SummaryCSV))
}
