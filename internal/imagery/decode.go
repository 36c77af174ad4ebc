package imagery

import (
	"fmt"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
)

// sceneBandOrder matches the evalscript output band order.
var sceneBandOrder = []string{BandBlue, BandGreen, BandRed, BandNIR, BandSCL}

// DecodeScene reads a downloaded GeoTIFF into per-band rasters. Cloud cover
// is derived from the SCL band since the process API mosaics do not carry the
// per-scene percentage.
func DecodeScene(tiffPath string, resolution float64, regionID string, acquiredAt time.Time) (Scene, error) {
	ds, err := godal.Open(tiffPath, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal: %s", msg)
	}))
	if err != nil {
		return Scene{}, fmt.Errorf("failed to open TIFF file: %v", err)
	}
	defer ds.Close()

	width := ds.Structure().SizeX
	height := ds.Structure().SizeY
	bands := ds.Bands()

	scene := Scene{
		AcquiredAt: acquiredAt,
		Bands:      make(map[string]*raster.Raster, len(sceneBandOrder)),
		Provenance: tiffPath,
	}

	for i, name := range sceneBandOrder {
		if i >= len(bands) {
			break
		}
		data := make([]float64, width*height)
		if err := bands[i].Read(0, 0, data, width, height); err != nil {
			return Scene{}, fmt.Errorf("failed to read data for band %s: %w", name, err)
		}
		r, err := raster.NewFromData(width, height, resolution, regionID, data)
		if err != nil {
			return Scene{}, err
		}
		scene.Bands[name] = r
	}

	if scl, ok := scene.Bands[BandSCL]; ok {
		scene.CloudCover = cloudFraction(scl) * 100
	}
	return scene, nil
}

// cloudFraction is the share of pixels flagged as shadow, cloud or cirrus in
// the scene classification band.
func cloudFraction(scl *raster.Raster) float64 {
	total, flagged := 0, 0
	for y := 0; y < scl.Height(); y++ {
		for x := 0; x < scl.Width(); x++ {
			class := int(scl.At(x, y))
			total++
			switch class {
			case 3, 8, 9, 10:
				flagged++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(flagged) / float64(total)
}
