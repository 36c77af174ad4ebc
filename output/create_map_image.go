package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/properties"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
	"github.com/fogleman/gg"
)

// CreateMapImage renders a raster as a PNG map layer: values are stretched
// over [displayMin, displayMax] and colored through the ramp, no-data pixels
// are drawn gray.
func CreateMapImage(r *raster.Raster, displayMin, displayMax float64, ramp []properties.Color, layerName, regionID string) (string, error) {
	if len(ramp) < 2 {
		return "", fmt.Errorf("color ramp needs at least two stops")
	}
	if displayMax <= displayMin {
		return "", fmt.Errorf("invalid display range [%g, %g]", displayMin, displayMax)
	}

	resultPath := filepath.Join(properties.RootPath(), "data", "result", regionID, "maps")
	if err := os.MkdirAll(resultPath, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create result folder: %w", err)
	}
	outputPath := filepath.Join(resultPath, layerName+".png")

	dc := gg.NewContext(r.Width(), r.Height())
	for y := 0; y < r.Height(); y++ {
		for x := 0; x < r.Width(); x++ {
			v := r.At(x, y)
			if math.IsNaN(v) {
				dc.SetRGB255(180, 180, 180)
				dc.SetPixel(x, y)
				continue
			}
			c := rampColor(ramp, (v-displayMin)/(displayMax-displayMin))
			dc.SetRGB255(int(c.R), int(c.G), int(c.B))
			dc.SetPixel(x, y)
		}
	}

	if err := dc.SavePNG(outputPath); err != nil {
		return "", fmt.Errorf("failed to save image: %v", err)
	}
	return outputPath, nil
}

// rampColor interpolates linearly between ramp stops for t in [0,1].
func rampColor(ramp []properties.Color, t float64) properties.Color {
	if t <= 0 {
		return ramp[0]
	}
	if t >= 1 {
		return ramp[len(ramp)-1]
	}
	scaled := t * float64(len(ramp)-1)
	lo := int(scaled)
	frac := scaled - float64(lo)
	a, b := ramp[lo], ramp[lo+1]
	return properties.Color{
		R: uint8(float64(a.R) + frac*(float64(b.R)-float64(a.R))),
		G: uint8(float64(a.G) + frac*(float64(b.G)-float64(a.G))),
		B: uint8(float64(a.B) + frac*(float64(b.B)-float64(a.B))),
	}
}
