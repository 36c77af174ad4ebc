package aggregate

import (
	"testing"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearly(year int, value float64) raster.TaggedRaster {
	return raster.TaggedRaster{
		Raster: raster.NewConst(2, 2, 10, "test", value),
		Meta:   raster.Meta{Year: year, SceneCount: 3},
	}
}

func TestAnnualChange(t *testing.T) {
	t.Parallel()

	c := raster.Collection{yearly(2019, 0.8), yearly(2021, 0.6), yearly(2023, 0.4)}

	change, err := AnnualChange(c)
	require.NoError(t, err)

	// (0.4 - 0.8) / (2023 - 2019)
	assert.InDelta(t, -0.1, change.At(0, 0), 1e-9)
}

func TestAnnualChangeSingleYearIsNeutral(t *testing.T) {
	t.Parallel()

	c := raster.Collection{yearly(2021, 0.7)}

	change, err := AnnualChange(c)
	assert.ErrorIs(t, err, raster.ErrInsufficientData)
	require.NotNil(t, change)
	for _, v := range change.Values() {
		assert.Equal(t, 0.0, v)
	}
}

func TestAnnualChangeSameYearTwiceIsNeutral(t *testing.T) {
	t.Parallel()

	c := raster.Collection{yearly(2021, 0.7), yearly(2021, 0.5)}

	change, err := AnnualChange(c)
	assert.ErrorIs(t, err, raster.ErrInsufficientData)
	require.NotNil(t, change)
	assert.Equal(t, 0.0, change.At(1, 1))
}

func TestAnnualChangeEmptyCollection(t *testing.T) {
	t.Parallel()

	change, err := AnnualChange(nil)
	assert.ErrorIs(t, err, raster.ErrInsufficientData)
	assert.Nil(t, change)
}
