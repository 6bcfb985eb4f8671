package scope

import (
	"testing"

	"github.com/itohio/adcstream/pkg/sample"
	"github.com/stretchr/testify/assert"
)

func counts(values ...int16) []sample.Sample {
	out := make([]sample.Sample, len(values))
	for i, v := range values {
		out[i].Counts = v
	}
	return out
}

func TestAutoScale(t *testing.T) {
	yMin, yMax := autoScale(counts(0, 100), 50)
	assert.InDelta(t, -10, yMin, 1e-9)
	assert.InDelta(t, 110, yMax, 1e-9)

	// Threshold outside the data widens the range.
	yMin, yMax = autoScale(counts(0, 100), 200)
	assert.InDelta(t, -20, yMin, 1e-9)
	assert.InDelta(t, 220, yMax, 1e-9)

	yMin, yMax = autoScale(nil, 5)
	assert.InDelta(t, 4.9, yMin, 1e-9)
	assert.InDelta(t, 5.1, yMax, 1e-9)
}

func TestFirstAtOrAbove(t *testing.T) {
	assert.Equal(t, 2, firstAtOrAbove(counts(1, 2, 10, 11), 10))
	assert.Equal(t, -1, firstAtOrAbove(counts(1, 2), 10))
	assert.Equal(t, -1, firstAtOrAbove(nil, 0))
}

func TestMapping(t *testing.T) {
	assert.InDelta(t, 110, mapY(0, 0, 100, 10, 100), 1e-4)
	assert.InDelta(t, 10, mapY(100, 0, 100, 10, 100), 1e-4)
	assert.InDelta(t, 60, mapY(1, 1, 1, 10, 100), 1e-4)

	assert.InDelta(t, 10, mapX(0, 5, 10, 100), 1e-4)
	assert.InDelta(t, 110, mapX(4, 5, 10, 100), 1e-4)
	assert.InDelta(t, 10, mapX(0, 1, 10, 100), 1e-4)
}

func TestDashes(t *testing.T) {
	assert.Equal(t, [][2]float32{{0, 8}, {13, 21}, {26, 30}}, dashes(0, 30, 8, 5))
	assert.Nil(t, dashes(10, 10, 8, 5))
	assert.Nil(t, dashes(0, 10, 0, 5))
}
