package imagery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/region"
)

// SceneQuery builds a description of an imagery pull. Nothing touches the
// platform until Materialize is called; every filter just records intent, the
// way the platform's own lazy collections behave.
type SceneQuery struct {
	source      Source
	region      *region.Region
	start, end  time.Time
	maxCloud    float64
	hasCloudCap bool
	bands       []string
	sortByCloud bool
	limit       int
}

func NewSceneQuery(source Source) *SceneQuery {
	return &SceneQuery{source: source, limit: -1}
}

func (q *SceneQuery) FilterBounds(r *region.Region) *SceneQuery {
	out := *q
	out.region = r
	return &out
}

func (q *SceneQuery) FilterDate(start, end time.Time) *SceneQuery {
	out := *q
	out.start, out.end = start, end
	return &out
}

// FilterCloudCover keeps scenes whose cloud percentage is below max.
func (q *SceneQuery) FilterCloudCover(max float64) *SceneQuery {
	out := *q
	out.maxCloud = max
	out.hasCloudCap = true
	return &out
}

// Select restricts the bands carried by the materialized scenes. Selecting a
// band a scene does not have is not an error; the scene simply lacks it.
func (q *SceneQuery) Select(bands ...string) *SceneQuery {
	out := *q
	out.bands = append([]string(nil), bands...)
	return &out
}

// SortByCloudCover orders results from clearest to cloudiest.
func (q *SceneQuery) SortByCloudCover() *SceneQuery {
	out := *q
	out.sortByCloud = true
	return &out
}

func (q *SceneQuery) Limit(n int) *SceneQuery {
	out := *q
	out.limit = n
	return &out
}

// Materialize executes the described pull against the source and applies the
// recorded filters. This is the only call that blocks.
func (q *SceneQuery) Materialize(ctx context.Context) ([]Scene, error) {
	if q.region == nil {
		return nil, fmt.Errorf("scene query has no region bounds")
	}
	if q.start.IsZero() || q.end.IsZero() {
		return nil, fmt.Errorf("scene query has no date range")
	}

	scenes, err := q.source.Scenes(ctx, q.region, q.start, q.end)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize scene query: %w", err)
	}

	var out []Scene
	for _, s := range scenes {
		if s.AcquiredAt.Before(q.start) || s.AcquiredAt.After(q.end) {
			continue
		}
		if q.hasCloudCap && s.CloudCover >= q.maxCloud {
			continue
		}
		out = append(out, q.selectBands(s))
	}

	if q.sortByCloud {
		sort.SliceStable(out, func(i, j int) bool { return out[i].CloudCover < out[j].CloudCover })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].AcquiredAt.Before(out[j].AcquiredAt) })
	}

	if q.limit >= 0 && len(out) > q.limit {
		out = out[:q.limit]
	}
	return out, nil
}

func (q *SceneQuery) selectBands(s Scene) Scene {
	if q.bands == nil {
		return s
	}
	selected := Scene{
		AcquiredAt: s.AcquiredAt,
		CloudCover: s.CloudCover,
		Provenance: s.Provenance,
		Bands:      make(map[string]*raster.Raster, len(q.bands)),
	}
	for _, name := range q.bands {
		if b, ok := s.Bands[name]; ok {
			selected.Bands[name] = b
		}
	}
	return selected
}
