package region

import (
	"fmt"
	"os"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Region is the immutable spatial domain for all raster clipping and
// statistical reduction.
type Region struct {
	Name    string
	Polygon orb.Polygon
}

// LoadFromGeoJSON reads the feature whose region_id property matches name
// from a GeoJSON feature collection file.
func LoadFromGeoJSON(filePath, name string) (*Region, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read geojson file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse geojson: %w", err)
	}

	for _, feature := range fc.Features {
		id, _ := feature.Properties["region_id"].(string)
		if id != name {
			continue
		}
		switch geom := feature.Geometry.(type) {
		case orb.Polygon:
			return &Region{Name: name, Polygon: geom}, nil
		case orb.MultiPolygon:
			if len(geom) == 0 {
				return nil, fmt.Errorf("empty multipolygon for region %s", name)
			}
			return &Region{Name: name, Polygon: geom[0]}, nil
		default:
			return nil, fmt.Errorf("region %s has unsupported geometry type %T", name, geom)
		}
	}

	return nil, fmt.Errorf("region %s not found in %s", name, filePath)
}

// SettlementPoints reads every Point feature from a GeoJSON file. Settlements
// seed the distance-to-settlement transform.
func SettlementPoints(filePath string) ([]orb.Point, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read geojson file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse geojson: %w", err)
	}

	var points []orb.Point
	for _, feature := range fc.Features {
		if p, ok := feature.Geometry.(orb.Point); ok {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no settlement points found in %s", filePath)
	}
	return points, nil
}

func (r *Region) Bounds() orb.Bound {
	return r.Polygon.Bound()
}

// Centroid returns the planar centroid and area of the region polygon.
func (r *Region) Centroid() (orb.Point, float64) {
	return planar.CentroidArea(r.Polygon)
}

func (r *Region) Contains(p orb.Point) bool {
	return planar.PolygonContains(r.Polygon, p)
}

// Mask rasterizes the region at the given grid size: 1 inside the polygon,
// no-data outside. Pixel membership is tested at the pixel center.
func (r *Region) Mask(width, height int, resolution float64) *raster.Raster {
	bound := r.Bounds()
	dx := (bound.Max[0] - bound.Min[0]) / float64(width)
	dy := (bound.Max[1] - bound.Min[1]) / float64(height)

	data := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			lon := bound.Min[0] + (float64(x)+0.5)*dx
			lat := bound.Max[1] - (float64(y)+0.5)*dy
			if r.Contains(orb.Point{lon, lat}) {
				data[y*width+x] = 1
			} else {
				data[y*width+x] = raster.NoData
			}
		}
	}
	mask, _ := raster.NewFromData(width, height, resolution, r.Name, data)
	return mask
}

// GridPoint maps a geographic coordinate to the pixel containing it on a
// width x height grid over the region bounds. The second return is false when
// the coordinate falls outside the bounds.
func (r *Region) GridPoint(p orb.Point, width, height int) (int, int, bool) {
	bound := r.Bounds()
	if p[0] < bound.Min[0] || p[0] > bound.Max[0] || p[1] < bound.Min[1] || p[1] > bound.Max[1] {
		return 0, 0, false
	}
	dx := (bound.Max[0] - bound.Min[0]) / float64(width)
	dy := (bound.Max[1] - bound.Min[1]) / float64(height)
	x := int((p[0] - bound.Min[0]) / dx)
	y := int((bound.Max[1] - p[1]) / dy)
	if x >= width {
		x = width - 1
	}
	if y >= height {
		y = height - 1
	}
	return x, y, true
}
