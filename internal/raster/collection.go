package raster

import "sort"

// Meta carries the provenance of a tagged raster: which year or simulation
// step produced it, how many scenes contributed, and under which label.
type Meta struct {
	Year       int
	Step       int
	Scenario   string
	Season     string
	SceneCount int
	Provenance string
	Region     string
}

type TaggedRaster struct {
	Raster *Raster
	Meta   Meta
}

// Collection is an ordered sequence of tagged rasters. Order is by
// acquisition/label time; reductions ignore it, series charts rely on it.
type Collection []TaggedRaster

func (c Collection) SortByYear() {
	sort.SliceStable(c, func(i, j int) bool { return c[i].Meta.Year < c[j].Meta.Year })
}

func (c Collection) SortByStep() {
	sort.SliceStable(c, func(i, j int) bool { return c[i].Meta.Step < c[j].Meta.Step })
}

// First returns the earliest element or false on an empty collection.
func (c Collection) First() (TaggedRaster, bool) {
	if len(c) == 0 {
		return TaggedRaster{}, false
	}
	return c[0], true
}

// Last returns the latest element or false on an empty collection.
func (c Collection) Last() (TaggedRaster, bool) {
	if len(c) == 0 {
		return TaggedRaster{}, false
	}
	return c[len(c)-1], true
}

// Filter returns the elements for which keep is true, preserving order.
func (c Collection) Filter(keep func(TaggedRaster) bool) Collection {
	var out Collection
	for _, tr := range c {
		if keep(tr) {
			out = append(out, tr)
		}
	}
	return out
}
