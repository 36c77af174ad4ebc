package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDataRejectsWrongLength(t *testing.T) {
	t.Parallel()

	_, err := NewFromData(3, 3, 10, "test", []float64{1, 2, 3})
	assert.Error(t, err)
}

func TestMapSkipsNoData(t *testing.T) {
	t.Parallel()

	r, err := NewFromData(2, 2, 10, "test", []float64{1, NoData, 3, 4})
	require.NoError(t, err)

	doubled := r.MulScalar(2)

	assert.Equal(t, 2.0, doubled.At(0, 0))
	assert.True(t, math.IsNaN(doubled.At(1, 0)))
	assert.Equal(t, 8.0, doubled.At(1, 1))
	// source untouched
	assert.Equal(t, 1.0, r.At(0, 0))
}

func TestCombinePropagatesNoDataFromEitherSide(t *testing.T) {
	t.Parallel()

	a, err := NewFromData(2, 2, 10, "test", []float64{1, NoData, 3, 4})
	require.NoError(t, err)
	b, err := NewFromData(2, 2, 10, "test", []float64{10, 20, NoData, 40})
	require.NoError(t, err)

	sum, err := a.Combine(b, func(x, y float64) float64 { return x + y })
	require.NoError(t, err)

	assert.Equal(t, 11.0, sum.At(0, 0))
	assert.True(t, math.IsNaN(sum.At(1, 0)))
	assert.True(t, math.IsNaN(sum.At(0, 1)))
	assert.Equal(t, 44.0, sum.At(1, 1))
}

func TestCombineRejectsShapeMismatch(t *testing.T) {
	t.Parallel()

	a := NewConst(2, 2, 10, "test", 1)
	b := NewConst(3, 2, 10, "test", 1)

	_, err := a.Combine(b, func(x, y float64) float64 { return x + y })
	assert.Error(t, err)
}

func TestClampAndFloor(t *testing.T) {
	t.Parallel()

	r, err := NewFromData(2, 2, 10, "test", []float64{-0.5, 0.05, 0.5, 1.5})
	require.NoError(t, err)

	clamped := r.Clamp(0.15, 0.85)
	assert.Equal(t, []float64{0.15, 0.15, 0.5, 0.85}, clamped.Values())

	floored := r.Floor(0.1)
	assert.Equal(t, []float64{0.1, 0.1, 0.5, 1.5}, floored.Values())
}

func TestNormalize01(t *testing.T) {
	t.Parallel()

	r, err := NewFromData(2, 2, 10, "test", []float64{10, 20, NoData, 30})
	require.NoError(t, err)

	n := r.Normalize01()
	assert.Equal(t, 0.0, n.At(0, 0))
	assert.InDelta(t, 0.5, n.At(1, 0), 1e-9)
	assert.True(t, math.IsNaN(n.At(0, 1)))
	assert.Equal(t, 1.0, n.At(1, 1))
}

func TestNormalize01FlatRasterIsAllZeros(t *testing.T) {
	t.Parallel()

	n := NewConst(3, 3, 10, "test", 7).Normalize01()
	for _, v := range n.Values() {
		assert.Equal(t, 0.0, v)
	}
}

func TestNormalizedDifferenceZeroDenominator(t *testing.T) {
	t.Parallel()

	a, err := NewFromData(2, 1, 10, "test", []float64{0.6, 0})
	require.NoError(t, err)
	b, err := NewFromData(2, 1, 10, "test", []float64{0.2, 0})
	require.NoError(t, err)

	nd, err := NormalizedDifference(a, b)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, nd.At(0, 0), 1e-9)
	assert.Equal(t, 0.0, nd.At(1, 0))
}

func TestClip(t *testing.T) {
	t.Parallel()

	r := NewConst(2, 2, 10, "test", 5)
	mask, err := NewFromData(2, 2, 10, "test", []float64{1, 0, NoData, 1})
	require.NoError(t, err)

	clipped, err := r.Clip(mask)
	require.NoError(t, err)

	assert.Equal(t, 5.0, clipped.At(0, 0))
	assert.True(t, math.IsNaN(clipped.At(1, 0)))
	assert.True(t, math.IsNaN(clipped.At(0, 1)))
	assert.Equal(t, 5.0, clipped.At(1, 1))
}

func TestMedianOddAndEvenStacks(t *testing.T) {
	t.Parallel()

	mk := func(v float64) *Raster { return NewConst(1, 1, 10, "test", v) }

	odd, err := Median([]*Raster{mk(3), mk(1), mk(2)})
	require.NoError(t, err)
	assert.Equal(t, 2.0, odd.At(0, 0))

	even, err := Median([]*Raster{mk(1), mk(2), mk(3), mk(4)})
	require.NoError(t, err)
	assert.Equal(t, 2.5, even.At(0, 0))
}

func TestMedianSkipsNoDataPerPixel(t *testing.T) {
	t.Parallel()

	a, err := NewFromData(2, 1, 10, "test", []float64{1, NoData})
	require.NoError(t, err)
	b, err := NewFromData(2, 1, 10, "test", []float64{3, NoData})
	require.NoError(t, err)
	c, err := NewFromData(2, 1, 10, "test", []float64{NoData, NoData})
	require.NoError(t, err)

	med, err := Median([]*Raster{a, b, c})
	require.NoError(t, err)

	assert.Equal(t, 2.0, med.At(0, 0))
	assert.True(t, math.IsNaN(med.At(1, 0)))
}

func TestFocalMaxMinIgnoreNoDataNeighbors(t *testing.T) {
	t.Parallel()

	r, err := NewFromData(3, 1, 10, "test", []float64{1, NoData, 5})
	require.NoError(t, err)

	fmax := r.FocalMax(1)
	assert.Equal(t, 1.0, fmax.At(0, 0))
	assert.True(t, math.IsNaN(fmax.At(1, 0)))
	assert.Equal(t, 5.0, fmax.At(2, 0))
}

func TestEqualTreatsNoDataAsEqual(t *testing.T) {
	t.Parallel()

	a, err := NewFromData(2, 1, 10, "test", []float64{1, NoData})
	require.NoError(t, err)
	b, err := NewFromData(2, 1, 10, "test", []float64{1, NoData})
	require.NoError(t, err)
	c, err := NewFromData(2, 1, 10, "test", []float64{1, 2})
	require.NoError(t, err)

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}
