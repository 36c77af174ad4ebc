package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/properties"
	"github.com/fogleman/gg"
)

const (
	chartWidth   = 900
	chartHeight  = 600
	chartPadding = 60.0
)

var seriesColors = []properties.Color{
	{R: 49, G: 135, B: 48},
	{R: 30, G: 90, B: 180},
	{R: 200, G: 60, B: 40},
	{R: 220, G: 160, B: 30},
	{R: 120, G: 69, B: 190},
}

// CreateSeriesChart draws one line per scenario of region means across
// simulation steps and saves it under data/result/<region>/charts.
func CreateSeriesChart(series map[string][]float64, title, regionID string) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("no series to chart")
	}

	resultPath := filepath.Join(properties.RootPath(), "data", "result", regionID, "charts")
	if err := os.MkdirAll(resultPath, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create result folder: %w", err)
	}
	outputPath := filepath.Join(resultPath, title+".png")

	labels := make([]string, 0, len(series))
	maxSteps := 0
	lo, hi := math.Inf(1), math.Inf(-1)
	for label, values := range series {
		labels = append(labels, label)
		if len(values) > maxSteps {
			maxSteps = len(values)
		}
		for _, v := range values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	sort.Strings(labels)
	if maxSteps < 2 || hi <= lo {
		return "", fmt.Errorf("series too short or flat to chart")
	}

	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	plotW := float64(chartWidth) - 2*chartPadding
	plotH := float64(chartHeight) - 2*chartPadding
	toX := func(step int) float64 {
		return chartPadding + float64(step)/float64(maxSteps-1)*plotW
	}
	toY := func(v float64) float64 {
		return float64(chartHeight) - chartPadding - (v-lo)/(hi-lo)*plotH
	}

	// Axes.
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1.5)
	dc.DrawLine(chartPadding, chartPadding, chartPadding, float64(chartHeight)-chartPadding)
	dc.DrawLine(chartPadding, float64(chartHeight)-chartPadding, float64(chartWidth)-chartPadding, float64(chartHeight)-chartPadding)
	dc.Stroke()

	dc.DrawStringAnchored(title, float64(chartWidth)/2, chartPadding/2, 0.5, 0.5)
	dc.DrawStringAnchored("step", float64(chartWidth)/2, float64(chartHeight)-chartPadding/3, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", hi), chartPadding/2, chartPadding, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", lo), chartPadding/2, float64(chartHeight)-chartPadding, 0.5, 0.5)

	for i, label := range labels {
		values := series[label]
		if len(values) < 2 {
			continue
		}
		c := seriesColors[i%len(seriesColors)]
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		dc.SetLineWidth(2)
		for step := 1; step < len(values); step++ {
			dc.DrawLine(toX(step-1), toY(values[step-1]), toX(step), toY(values[step]))
		}
		dc.Stroke()

		// Legend entry.
		legendY := chartPadding + float64(i)*18
		dc.DrawLine(float64(chartWidth)-chartPadding-120, legendY, float64(chartWidth)-chartPadding-100, legendY)
		dc.Stroke()
		dc.DrawStringAnchored(label, float64(chartWidth)-chartPadding-95, legendY, 0, 0.4)
	}

	if err := dc.SavePNG(outputPath); err != nil {
		return "", fmt.Errorf("failed to save chart: %v", err)
	}
	return outputPath, nil
}
