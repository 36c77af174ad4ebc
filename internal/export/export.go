// Package export schedules asynchronous GeoTIFF exports. The caller only
// issues the request; completion is reported out-of-band via notification.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/notification"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/properties"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/region"
)

// Request describes one export job.
type Request struct {
	Raster     *raster.Raster
	Name       string
	Resolution float64
	Region     *region.Region
	Folder     string
}

// Schedule fires the export on its own goroutine and returns immediately.
// The done channel closes when the job finishes, for callers that want to
// block in tests; production callers ignore it.
func Schedule(req Request) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		outPath, err := write(req)
		if err != nil {
			fmt.Printf("Export %s failed: %v\n", req.Name, err)
			notification.SendDiscordErrorNotification(fmt.Sprintf("Export %s failed: %v", req.Name, err))
			return
		}
		notification.SendDiscordSuccessNotification(fmt.Sprintf("Export completed: %s", outPath))
	}()
	return done
}

func write(req Request) (string, error) {
	folder := filepath.Join(properties.RootPath(), "data", "export", req.Folder)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", fmt.Errorf("failed to create export folder: %w", err)
	}
	outPath := filepath.Join(folder, req.Name+".tiff")

	r := req.Raster
	ds, err := godal.Create(godal.GTiff, outPath, 1, godal.Float64, r.Width(), r.Height())
	if err != nil {
		return "", fmt.Errorf("failed to create GeoTIFF: %v", err)
	}
	defer ds.Close()

	bound := req.Region.Bounds()
	dx := (bound.Max[0] - bound.Min[0]) / float64(r.Width())
	dy := (bound.Max[1] - bound.Min[1]) / float64(r.Height())
	if err := ds.SetGeoTransform([6]float64{bound.Min[0], dx, 0, bound.Max[1], 0, -dy}); err != nil {
		return "", fmt.Errorf("failed to set geotransform: %v", err)
	}

	if err := ds.Bands()[0].Write(0, 0, r.Values(), r.Width(), r.Height()); err != nil {
		return "", fmt.Errorf("failed to write raster data: %v", err)
	}
	return outPath, nil
}
