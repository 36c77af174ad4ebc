package imagery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/properties"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/region"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/errgroup"
)

const (
	maxPlatformPixels = 2500
	sceneIntervalDays = 10
	requestRetries    = 10
	maxParallelPulls  = 4
)

// CopernicusSource pulls Sentinel-2 L2A scenes from the Copernicus process
// API. Downloaded GeoTIFFs are kept under data/images so repeated analyses of
// the same window never hit the platform twice.
type CopernicusSource struct {
	resolution float64
}

func NewCopernicusSource(resolution float64) *CopernicusSource {
	return &CopernicusSource{resolution: resolution}
}

func calculatePixels(distance, resolution float64) int {
	pixels := distance * (111_000.0 / resolution)
	if pixels < 1 {
		return 1
	}
	if pixels > maxPlatformPixels {
		return maxPlatformPixels
	}
	return int(pixels)
}

// GridSize is the analysis grid for a region at a resolution, clamped to the
// platform's allowed output size.
func GridSize(r *region.Region, resolution float64) (int, int) {
	bound := r.Bounds()
	return calculatePixels(bound.Max[0]-bound.Min[0], resolution),
		calculatePixels(bound.Max[1]-bound.Min[1], resolution)
}

// Scenes splits the date range into fixed intervals and requests one
// most-recent mosaic per interval, in parallel.
func (c *CopernicusSource) Scenes(ctx context.Context, r *region.Region, start, end time.Time) ([]Scene, error) {
	width, height := GridSize(r, c.resolution)

	var windows [][2]time.Time
	for t := start; t.Before(end); t = t.AddDate(0, 0, sceneIntervalDays) {
		wEnd := t.AddDate(0, 0, sceneIntervalDays)
		if wEnd.After(end) {
			wEnd = end
		}
		windows = append(windows, [2]time.Time{t, wEnd})
	}

	var mu sync.Mutex
	var scenes []Scene

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelPulls)
	for _, w := range windows {
		w := w
		g.Go(func() error {
			scene, ok, err := c.pullScene(gctx, r, w[0], w[1], width, height)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			mu.Lock()
			scenes = append(scenes, scene)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(scenes, func(i, j int) bool { return scenes[i].AcquiredAt.Before(scenes[j].AcquiredAt) })
	return scenes, nil
}

func (c *CopernicusSource) pullScene(ctx context.Context, r *region.Region, start, end time.Time, width, height int) (Scene, bool, error) {
	tiffPath := c.tiffPath(r, start)
	if _, err := os.Stat(tiffPath); err != nil {
		content, err := c.requestImage(ctx, r, start, end, width, height)
		if err != nil {
			return Scene{}, false, err
		}
		if len(content) == 0 {
			return Scene{}, false, nil
		}
		if err := os.MkdirAll(filepath.Dir(tiffPath), 0755); err != nil {
			return Scene{}, false, fmt.Errorf("failed to create images directory: %w", err)
		}
		if err := os.WriteFile(tiffPath, content, 0644); err != nil {
			return Scene{}, false, fmt.Errorf("failed to store scene tiff: %w", err)
		}
	}

	scene, err := DecodeScene(tiffPath, c.resolution, r.Name, start.Add(end.Sub(start)/2))
	if err != nil {
		return Scene{}, false, err
	}
	return scene, true, nil
}

func (c *CopernicusSource) tiffPath(r *region.Region, start time.Time) string {
	return fmt.Sprintf("%s/data/images/%s/%s.tiff", properties.RootPath(), r.Name, start.Format("2006-01-02"))
}

func (c *CopernicusSource) requestImage(ctx context.Context, r *region.Region, start, end time.Time, width, height int) ([]byte, error) {
	evalscript := `
    //VERSION=3
    function setup() {
      return {
        input: ["B02", "B03", "B04", "B08", "SCL"],
        output: {
          id: "default",
          bands: 5,
          sampleType: SampleType.FLOAT32,
        },
      }
    }

    function evaluatePixel(sample) {
      return [sample.B02, sample.B03, sample.B04, sample.B08, sample.SCL];
    }
  `

	var ring [][]float64
	for _, p := range r.Polygon[0] {
		ring = append(ring, []float64{p[0], p[1]})
	}
	geometry := map[string]interface{}{
		"type":        "Polygon",
		"coordinates": [][][]float64{ring},
	}

	requestPayload := map[string]interface{}{
		"input": map[string]interface{}{
			"bounds": map[string]interface{}{
				"geometry": geometry,
			},
			"data": []map[string]interface{}{
				{
					"dataFilter": map[string]interface{}{
						"timeRange": map[string]string{
							"from": start.Format(time.RFC3339),
							"to":   end.Format(time.RFC3339),
						},
					},
					"type": "sentinel-2-l2a",
				},
			},
		},
		"output": map[string]interface{}{
			"width":  width,
			"height": height,
			"responses": []map[string]interface{}{
				{
					"identifier": "default",
					"format": map[string]string{
						"type": "image/tiff",
					},
				},
			},
		},
		"evalscript": evalscript,
		"mosaicking": "mostRecent",
	}

	requestBody, err := json.Marshal(requestPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %v", err)
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

	var lastErr error
	for attempt := 1; attempt <= requestRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, properties.CopernicusProcessURL(), bytes.NewBuffer(requestBody))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")

		response, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			fmt.Printf("Attempt %d failed: %v\n", attempt, err)
		} else {
			body, readErr := io.ReadAll(response.Body)
			response.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("failed to read response body: %v", readErr)
			} else if response.StatusCode == http.StatusOK {
				return body, nil
			} else if response.StatusCode == http.StatusForbidden || response.StatusCode == http.StatusUnauthorized {
				return nil, fmt.Errorf("unauthorized access, check your client ID and secret")
			} else {
				lastErr = fmt.Errorf("status %d: %s", response.StatusCode, string(body))
				fmt.Printf("Attempt %d failed: %s\n", attempt, string(body))
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}

	return nil, fmt.Errorf("failed to request image after %d attempts: %v", requestRetries, lastErr)
}
