package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/properties"
	"github.com/gocarina/gocsv"
)

// StepRecord is one charted point: the region mean of one scenario at one
// step.
type StepRecord struct {
	Scenario string  `csv:"scenario"`
	Step     int     `csv:"step"`
	Mean     float64 `csv:"mean"`
}

func resultPath(regionID, name string) string {
	return filepath.Join(properties.RootPath(), "data", "result", regionID, name)
}

// WriteSummaryCSV stores the scenario comparison table under
// data/result/<region>/.
func WriteSummaryCSV(regionID string, summaries []ScenarioSummary) (string, error) {
	outPath := resultPath(regionID, "scenario_summary.csv")
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create result folder: %w", err)
	}

	file, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary csv: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&summaries, file); err != nil {
		return "", fmt.Errorf("failed to write summary csv: %w", err)
	}
	return outPath, nil
}

// WriteSeriesCSV stores per-step region means for every scenario.
func WriteSeriesCSV(regionID string, series map[string][]float64) (string, error) {
	labels := make([]string, 0, len(series))
	for label := range series {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var records []StepRecord
	for _, label := range labels {
		for step, mean := range series[label] {
			records = append(records, StepRecord{Scenario: label, Step: step, Mean: mean})
		}
	}

	outPath := resultPath(regionID, "scenario_series.csv")
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create result folder: %w", err)
	}

	file, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create series csv: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&records, file); err != nil {
		return "", fmt.Errorf("failed to write series csv: %w", err)
	}
	return outPath, nil
}
