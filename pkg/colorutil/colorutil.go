// Package colorutil provides shared color utilities for rendering depth maps.
package colorutil

import (
	"image/color"
	"math"
)

// Black marks pixels without a depth.
var Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}

// HSVToRGB converts HSV (OpenCV convention: H 0-180, S 0-255, V 0-255) to RGB.
func HSVToRGB(h, s, v float64) color.RGBA {
	h = math.Mod(h*2, 360) // back to degrees
	if h < 0 {
		h += 360
	}
	s /= 255.0
	v /= 255.0

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}

// DepthRamp maps t in [0, 1] from red (t = 0, nearest) through green to
// blue (t = 1, farthest). Values outside the range are clamped.
func DepthRamp(t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	return HSVToRGB(t*120, 255, 255) // hue 0..240 degrees
}
