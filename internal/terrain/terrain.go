// Package terrain is the elevation source boundary.
package terrain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/properties"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/region"
	"golang.org/x/oauth2/clientcredentials"
)

// Source returns an elevation raster in meters for a region at the requested
// grid size.
type Source interface {
	Elevation(ctx context.Context, r *region.Region, width, height int) (*raster.Raster, error)
}

// FileDEMSource reads a pre-downloaded Copernicus GLO-30 DEM GeoTIFF from
// data/dem/<region>.tiff. The download itself is an out-of-band step; the
// analysis only needs the raster.
type FileDEMSource struct {
	resolution float64
}

func NewFileDEMSource(resolution float64) *FileDEMSource {
	return &FileDEMSource{resolution: resolution}
}

func (s *FileDEMSource) Elevation(ctx context.Context, r *region.Region, width, height int) (*raster.Raster, error) {
	demPath := fmt.Sprintf("%s/data/dem/%s.tiff", properties.RootPath(), r.Name)
	if _, err := os.Stat(demPath); err != nil {
		return nil, fmt.Errorf("no DEM found for region %s at %s: %w", r.Name, demPath, err)
	}

	ds, err := godal.Open(demPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open DEM file: %v", err)
	}
	defer ds.Close()

	srcWidth := ds.Structure().SizeX
	srcHeight := ds.Structure().SizeY
	data := make([]float64, srcWidth*srcHeight)
	if err := ds.Bands()[0].Read(0, 0, data, srcWidth, srcHeight); err != nil {
		return nil, fmt.Errorf("failed to read DEM raster: %v", err)
	}

	dem, err := raster.NewFromData(srcWidth, srcHeight, s.resolution, r.Name, data)
	if err != nil {
		return nil, err
	}
	if srcWidth == width && srcHeight == height {
		return dem, nil
	}
	return resample(dem, width, height), nil
}

// CopernicusDEMSource fetches the GLO-30 DEM through the Copernicus process
// API and stores it at data/dem/<region>.tiff, then decodes it through the
// file source. Repeated analyses of the same region never re-download.
type CopernicusDEMSource struct {
	file *FileDEMSource
}

func NewCopernicusDEMSource(resolution float64) *CopernicusDEMSource {
	return &CopernicusDEMSource{file: NewFileDEMSource(resolution)}
}

func (s *CopernicusDEMSource) Elevation(ctx context.Context, r *region.Region, width, height int) (*raster.Raster, error) {
	demPath := fmt.Sprintf("%s/data/dem/%s.tiff", properties.RootPath(), r.Name)
	if _, err := os.Stat(demPath); err != nil {
		content, err := requestDEM(ctx, r, width, height)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(demPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create dem directory: %w", err)
		}
		if err := os.WriteFile(demPath, content, 0644); err != nil {
			return nil, fmt.Errorf("failed to store dem tiff: %w", err)
		}
	}
	return s.file.Elevation(ctx, r, width, height)
}

func requestDEM(ctx context.Context, r *region.Region, width, height int) ([]byte, error) {
	evalscript := `
    //VERSION=3
    function setup() {
      return {
        input: ["DEM"],
        output: { id: "default", bands: 1, sampleType: SampleType.FLOAT32 },
      }
    }

    function evaluatePixel(sample) {
      return [sample.DEM];
    }
  `

	var ring [][]float64
	for _, p := range r.Polygon[0] {
		ring = append(ring, []float64{p[0], p[1]})
	}

	requestPayload := map[string]interface{}{
		"input": map[string]interface{}{
			"bounds": map[string]interface{}{
				"geometry": map[string]interface{}{
					"type":        "Polygon",
					"coordinates": [][][]float64{ring},
				},
			},
			"data": []map[string]interface{}{
				{
					"type": "dem",
					"dataFilter": map[string]string{
						"demInstance": "COPERNICUS_30",
					},
				},
			},
		},
		"output": map[string]interface{}{
			"width":  width,
			"height": height,
			"responses": []map[string]interface{}{
				{
					"identifier": "default",
					"format":     map[string]string{"type": "image/tiff"},
				},
			},
		},
		"evalscript": evalscript,
	}

	requestBody, err := json.Marshal(requestPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dem request: %v", err)
	}

	clientID := properties.CopernicusClientID()
	clientSecret := properties.CopernicusClientSecret()
	tokenURL := properties.CopernicusTokenURL()
	if clientID == "" || clientSecret == "" || tokenURL == "" {
		return nil, fmt.Errorf("missing required environment variables: COPERNICUS_CLIENT_ID, COPERNICUS_CLIENT_SECRET, or COPERNICUS_TOKEN_URL")
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := config.Client(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, properties.CopernicusProcessURL(), bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build dem request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	httpClient.Timeout = 2 * time.Minute

	response, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request dem: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read dem response: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dem request status %d: %s", response.StatusCode, string(body))
	}
	return body, nil
}

// resample does nearest-neighbor resampling onto the analysis grid.
func resample(dem *raster.Raster, width, height int) *raster.Raster {
	data := make([]float64, width*height)
	for y := 0; y < height; y++ {
		sy := y * dem.Height() / height
		for x := 0; x < width; x++ {
			sx := x * dem.Width() / width
			data[y*width+x] = dem.At(sx, sy)
		}
	}
	out, _ := raster.NewFromData(width, height, dem.Resolution(), dem.RegionID(), data)
	return out
}
