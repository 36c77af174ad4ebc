package output

import (
	"testing"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/properties"
	"github.com/chaco-verde/chaco-verde-research-cli/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMapImage(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	data := make([]float64, 16)
	for i := range data {
		data[i] = 0.15 + 0.7*float64(i)/15
	}
	data[5] = raster.NoData
	r, err := raster.NewFromData(4, 4, 10, "test_region", data)
	require.NoError(t, err)

	path, err := CreateMapImage(r, 0.15, 0.85, properties.VegetationRamp, "vegetation_final", "test_region")
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestCreateMapImageRejectsBadInputs(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	r := raster.NewConst(2, 2, 10, "test_region", 0.5)

	_, err := CreateMapImage(r, 0.15, 0.85, properties.VegetationRamp[:1], "x", "test_region")
	assert.Error(t, err)

	_, err = CreateMapImage(r, 0.85, 0.15, properties.VegetationRamp, "x", "test_region")
	assert.Error(t, err)
}

func TestRampColorEndpointsAndMidpoint(t *testing.T) {
	t.Parallel()

	ramp := []properties.Color{{R: 0, G: 0, B: 0}, {R: 100, G: 100, B: 100}}

	assert.Equal(t, ramp[0], rampColor(ramp, -0.5))
	assert.Equal(t, ramp[1], rampColor(ramp, 1.5))
	mid := rampColor(ramp, 0.5)
	assert.Equal(t, uint8(50), mid.R)
}

func TestCreateSeriesChart(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	series := map[string][]float64{
		"baseline":     {0.5, 0.48, 0.46, 0.45},
		"conservation": {0.5, 0.52, 0.54, 0.55},
	}

	path, err := CreateSeriesChart(series, "scenario_means", "test_region")
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestCreateSeriesChartRejectsDegenerateSeries(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	_, err := CreateSeriesChart(map[string][]float64{}, "x", "test_region")
	assert.Error(t, err)

	_, err = CreateSeriesChart(map[string][]float64{"s": {0.5}}, "x", "test_region")
	assert.Error(t, err)
}
