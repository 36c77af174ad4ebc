package raster

import (
	"fmt"
	"math"
	"sort"
)

// NoData is the per-pixel sentinel for "value undefined". It is distinct from
// zero and propagates through every arithmetic operation.
var NoData = math.NaN()

// Raster is a 2-D field of float64 values over a fixed region and resolution.
// Rasters are immutable once produced: every operation returns a new value.
type Raster struct {
	width      int
	height     int
	resolution float64
	region     string
	pix        []float64
}

func New(width, height int, resolution float64, region string) *Raster {
	return NewConst(width, height, resolution, region, 0)
}

func NewConst(width, height int, resolution float64, region string, value float64) *Raster {
	pix := make([]float64, width*height)
	if value != 0 {
		for i := range pix {
			pix[i] = value
		}
	}
	return &Raster{width: width, height: height, resolution: resolution, region: region, pix: pix}
}

// NewFromData copies data (row-major, length width*height) into a new raster.
func NewFromData(width, height int, resolution float64, region string, data []float64) (*Raster, error) {
	if len(data) != width*height {
		return nil, fmt.Errorf("data length %d does not match %dx%d raster", len(data), width, height)
	}
	pix := make([]float64, len(data))
	copy(pix, data)
	return &Raster{width: width, height: height, resolution: resolution, region: region, pix: pix}, nil
}

func (r *Raster) Width() int          { return r.width }
func (r *Raster) Height() int         { return r.height }
func (r *Raster) Resolution() float64 { return r.resolution }
func (r *Raster) RegionID() string    { return r.region }

func (r *Raster) At(x, y int) float64 {
	return r.pix[y*r.width+x]
}

// Values returns a copy of the pixel data in row-major order.
func (r *Raster) Values() []float64 {
	out := make([]float64, len(r.pix))
	copy(out, r.pix)
	return out
}

func (r *Raster) Clone() *Raster {
	out := *r
	out.pix = make([]float64, len(r.pix))
	copy(out.pix, r.pix)
	return &out
}

func (r *Raster) derived() *Raster {
	return &Raster{width: r.width, height: r.height, resolution: r.resolution, region: r.region, pix: make([]float64, len(r.pix))}
}

func (r *Raster) sameShape(o *Raster) error {
	if r.width != o.width || r.height != o.height {
		return fmt.Errorf("raster shape mismatch: %dx%d vs %dx%d", r.width, r.height, o.width, o.height)
	}
	return nil
}

// Map applies f to every pixel. No-data pixels stay no-data; f is never called
// on them.
func (r *Raster) Map(f func(float64) float64) *Raster {
	out := r.derived()
	for i, v := range r.pix {
		if math.IsNaN(v) {
			out.pix[i] = NoData
			continue
		}
		out.pix[i] = f(v)
	}
	return out
}

// Combine applies f pixel-wise over two rasters of the same shape. A no-data
// pixel on either side yields no-data.
func (r *Raster) Combine(o *Raster, f func(a, b float64) float64) (*Raster, error) {
	if err := r.sameShape(o); err != nil {
		return nil, err
	}
	out := r.derived()
	for i := range r.pix {
		a, b := r.pix[i], o.pix[i]
		if math.IsNaN(a) || math.IsNaN(b) {
			out.pix[i] = NoData
			continue
		}
		out.pix[i] = f(a, b)
	}
	return out, nil
}

func (r *Raster) AddScalar(s float64) *Raster {
	return r.Map(func(v float64) float64 { return v + s })
}

func (r *Raster) MulScalar(s float64) *Raster {
	return r.Map(func(v float64) float64 { return v * s })
}

// Clamp applies a hard floor/ceiling. No-data stays no-data.
func (r *Raster) Clamp(lo, hi float64) *Raster {
	return r.Map(func(v float64) float64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	})
}

// Floor clamps only from below, suppressing degenerate near-zero values.
func (r *Raster) Floor(lo float64) *Raster {
	return r.Map(func(v float64) float64 {
		if v < lo {
			return lo
		}
		return v
	})
}

// Normalize01 rescales finite pixels to [0,1] by min-max. A flat raster
// normalizes to all zeros.
func (r *Raster) Normalize01() *Raster {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range r.pix {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi <= lo {
		return r.Map(func(float64) float64 { return 0 })
	}
	span := hi - lo
	return r.Map(func(v float64) float64 { return (v - lo) / span })
}

// NormalizedDifference computes (a-b)/(a+b) per pixel. A zero denominator
// yields 0 rather than a division failure.
func NormalizedDifference(a, b *Raster) (*Raster, error) {
	return a.Combine(b, func(x, y float64) float64 {
		denom := x + y
		if denom == 0 {
			return 0
		}
		return (x - y) / denom
	})
}

// Clip keeps only pixels where mask is finite and positive; everything else
// becomes no-data.
func (r *Raster) Clip(mask *Raster) (*Raster, error) {
	if err := r.sameShape(mask); err != nil {
		return nil, err
	}
	out := r.derived()
	for i, v := range r.pix {
		m := mask.pix[i]
		if math.IsNaN(m) || m <= 0 {
			out.pix[i] = NoData
			continue
		}
		out.pix[i] = v
	}
	return out, nil
}

// FocalMax replaces each pixel with the maximum finite value in its square
// neighborhood of the given radius.
func (r *Raster) FocalMax(radius int) *Raster {
	return r.focal(radius, math.Max, math.Inf(-1))
}

// FocalMin replaces each pixel with the minimum finite value in its square
// neighborhood of the given radius.
func (r *Raster) FocalMin(radius int) *Raster {
	return r.focal(radius, math.Min, math.Inf(1))
}

func (r *Raster) focal(radius int, pick func(a, b float64) float64, seed float64) *Raster {
	out := r.derived()
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			if math.IsNaN(r.At(x, y)) {
				out.pix[y*r.width+x] = NoData
				continue
			}
			best := seed
			found := false
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= r.width || ny < 0 || ny >= r.height {
						continue
					}
					v := r.At(nx, ny)
					if math.IsNaN(v) {
						continue
					}
					best = pick(best, v)
					found = true
				}
			}
			if !found {
				out.pix[y*r.width+x] = NoData
				continue
			}
			out.pix[y*r.width+x] = best
		}
	}
	return out
}

// Median reduces a stack of same-shape rasters to their per-pixel median over
// finite values. A pixel with no finite contribution stays no-data.
func Median(rasters []*Raster) (*Raster, error) {
	if len(rasters) == 0 {
		return nil, fmt.Errorf("no rasters to reduce")
	}
	first := rasters[0]
	for _, r := range rasters[1:] {
		if err := first.sameShape(r); err != nil {
			return nil, err
		}
	}
	out := first.derived()
	stack := make([]float64, 0, len(rasters))
	for i := range first.pix {
		stack = stack[:0]
		for _, r := range rasters {
			if v := r.pix[i]; !math.IsNaN(v) {
				stack = append(stack, v)
			}
		}
		if len(stack) == 0 {
			out.pix[i] = NoData
			continue
		}
		sort.Float64s(stack)
		mid := len(stack) / 2
		if len(stack)%2 == 1 {
			out.pix[i] = stack[mid]
		} else {
			out.pix[i] = (stack[mid-1] + stack[mid]) / 2
		}
	}
	return out, nil
}

// Equal reports whether two rasters are bit-identical in shape and pixels,
// treating no-data as equal to no-data.
func Equal(a, b *Raster) bool {
	if a.width != b.width || a.height != b.height {
		return false
	}
	for i := range a.pix {
		x, y := a.pix[i], b.pix[i]
		if math.IsNaN(x) && math.IsNaN(y) {
			continue
		}
		if x != y {
			return false
		}
	}
	return true
}
