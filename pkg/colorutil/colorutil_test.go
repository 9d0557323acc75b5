package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHSVToRGB(t *testing.T) {
	tests := []struct {
		h, s, v float64
		want    color.RGBA
	}{
		{0, 255, 255, color.RGBA{255, 0, 0, 255}},
		{60, 255, 255, color.RGBA{0, 255, 0, 255}},
		{120, 255, 255, color.RGBA{0, 0, 255, 255}},
		{30, 255, 255, color.RGBA{255, 255, 0, 255}},
		{0, 0, 128, color.RGBA{128, 128, 128, 255}},
		{0, 0, 0, Black},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, HSVToRGB(tc.h, tc.s, tc.v), "HSV(%v, %v, %v)", tc.h, tc.s, tc.v)
	}
}

func TestDepthRamp(t *testing.T) {
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, DepthRamp(0))
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, DepthRamp(0.5))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, DepthRamp(1))
	assert.Equal(t, DepthRamp(1), DepthRamp(7))
	assert.Equal(t, DepthRamp(0), DepthRamp(-1))
}
