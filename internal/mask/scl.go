// Package mask removes cloud-contaminated pixels from raw scenes using the
// Sentinel-2 scene classification band.
package mask

import (
	"github.com/chaco-verde/chaco-verde-research-cli/internal/imagery"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
)

// Scene classification classes treated as contaminated.
const (
	sclCloudShadow = 3
	sclCloudMedium = 8
	sclCloudHigh   = 9
	sclThinCirrus  = 10
)

func contaminated(class float64) bool {
	switch int(class) {
	case sclCloudShadow, sclCloudMedium, sclCloudHigh, sclThinCirrus:
		return true
	}
	return false
}

// CloudsAndShadows sets every pixel flagged as cloud, cloud shadow or cirrus
// to no-data in all spectral bands. A scene without a classification band
// passes through unmasked; that is a degenerate pass-through, not a failure.
func CloudsAndShadows(s imagery.Scene) imagery.Scene {
	scl, ok := s.Band(imagery.BandSCL)
	if !ok {
		out := s
		out.Provenance = appendTag(s.Provenance, "unmasked:no-scl")
		return out
	}

	out := imagery.Scene{
		AcquiredAt: s.AcquiredAt,
		CloudCover: s.CloudCover,
		Provenance: appendTag(s.Provenance, "masked:scl"),
		Bands:      make(map[string]*raster.Raster, len(s.Bands)),
	}
	for name, band := range s.Bands {
		if name == imagery.BandSCL {
			out.Bands[name] = band
			continue
		}
		masked, err := band.Combine(scl, func(v, class float64) float64 {
			if contaminated(class) {
				return raster.NoData
			}
			return v
		})
		if err != nil {
			// Shape mismatch between a band and its own SCL; leave the band
			// untouched rather than crash the pipeline.
			out.Bands[name] = band
			continue
		}
		out.Bands[name] = masked
	}
	return out
}

func appendTag(provenance, tag string) string {
	if provenance == "" {
		return tag
	}
	return provenance + ";" + tag
}
