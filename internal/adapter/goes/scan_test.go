package goes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPacking_Apply(t *testing.T) {
	data := []float32{0, 100, 1023, 4095}
	p := packing{scale: 0.5, offset: -10, fill: 1023, hasFill: true}

	p.apply(data)

	assert.Equal(t, float32(-10), data[0])
	assert.Equal(t, float32(40), data[1])
	assert.True(t, math.IsNaN(float64(data[2])), "fill value becomes NaN")
	assert.Equal(t, float32(2037.5), data[3])
}

func TestPacking_NoPackingKeepsValues(t *testing.T) {
	data := []float32{-1, 0, 3.25}

	noPacking.apply(data)

	assert.Equal(t, []float32{-1, 0, 3.25}, data)
}

func TestPacking_ZeroIsNotFillWithoutAttribute(t *testing.T) {
	data := []float32{0}

	packing{scale: 2, offset: 1}.apply(data)

	assert.Equal(t, []float32{1}, data)
}
