package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceRegionStats(t *testing.T) {
	t.Parallel()

	r, err := NewFromData(2, 2, 10, "test", []float64{1, 2, 3, 4})
	require.NoError(t, err)

	stats, err := ReduceRegion(r, nil, 0)
	require.NoError(t, err)

	assert.InDelta(t, 2.5, stats.Mean, 1e-9)
	assert.InDelta(t, 1.118033988749895, stats.StdDev, 1e-9)
	assert.InDelta(t, 1.75, stats.P25, 1e-9)
	assert.InDelta(t, 2.5, stats.P50, 1e-9)
	assert.InDelta(t, 3.25, stats.P75, 1e-9)
	assert.Equal(t, 4, stats.FinitePixels)
}

func TestReduceRegionHonorsMask(t *testing.T) {
	t.Parallel()

	r, err := NewFromData(2, 2, 10, "test", []float64{1, 2, 3, 100})
	require.NoError(t, err)
	mask, err := NewFromData(2, 2, 10, "test", []float64{1, 1, 1, NoData})
	require.NoError(t, err)

	stats, err := ReduceRegion(r, mask, 0)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, stats.Mean, 1e-9)
	assert.Equal(t, 3, stats.FinitePixels)
}

func TestReduceRegionQuotaExceeded(t *testing.T) {
	t.Parallel()

	r := NewConst(10, 10, 10, "test", 1)

	_, err := ReduceRegion(r, nil, 50)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestReduceRegionAllNoData(t *testing.T) {
	t.Parallel()

	r := NewConst(3, 3, 10, "test", NoData)

	_, err := ReduceRegion(r, nil, 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestFractionAbove(t *testing.T) {
	t.Parallel()

	r, err := NewFromData(2, 2, 10, "test", []float64{0.1, 0.3, 0.5, NoData})
	require.NoError(t, err)

	fraction, err := FractionAbove(r, nil, 0.2, 0)
	require.NoError(t, err)

	assert.InDelta(t, 2.0/3.0, fraction, 1e-9)
}

func TestFractionAboveEmptyRegion(t *testing.T) {
	t.Parallel()

	r := NewConst(2, 2, 10, "test", NoData)

	_, err := FractionAbove(r, nil, 0.5, 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
