package depthmap

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"depth-estimator/pkg/colorutil"

	"golang.org/x/image/tiff"
)

// Normalize maps finite valid depths onto [0, 1], nearest first, optionally
// after taking the logarithm. Invalid pixels map to NaN and infinite depths
// to 1.
func (m *DepthMap) Normalize(logScale bool) []float64 {
	scale := func(d float64) float64 {
		if logScale {
			return math.Log(d)
		}
		return d
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, d := range m.Data {
		if !IsValid(d) || math.IsInf(d, 0) {
			continue
		}
		v := scale(d)
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	out := make([]float64, len(m.Data))
	for i, d := range m.Data {
		switch {
		case !IsValid(d):
			out[i] = math.NaN()
		case math.IsInf(d, 1):
			out[i] = 1
		case hi > lo:
			out[i] = (scale(d) - lo) / (hi - lo)
		default:
			out[i] = 0
		}
	}
	return out
}

// Gray16 renders the map with valid depths in 1..65535 and invalid
// pixels as 0.
func (m *DepthMap) Gray16(logScale bool) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Normalize(logScale) {
		if math.IsNaN(v) {
			continue
		}
		img.SetGray16(i%m.Width, i/m.Width, color.Gray16{Y: uint16(1 + math.Round(v*65534))})
	}
	return img
}

// Colorize renders the map with a blue (far) to red (near) ramp and
// invalid pixels in black.
func (m *DepthMap) Colorize(logScale bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Normalize(logScale) {
		c := colorutil.Black
		if !math.IsNaN(v) {
			c = colorutil.DepthRamp(v)
		}
		img.SetRGBA(i%m.Width, i/m.Width, c)
	}
	return img
}

// WritePNG writes a 16-bit grayscale PNG.
func (m *DepthMap) WritePNG(path string, logScale bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, m.Gray16(logScale)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

// WriteTIFF writes a 16-bit grayscale TIFF.
func (m *DepthMap) WriteTIFF(path string, logScale bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := tiff.Encode(f, m.Gray16(logScale), &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return fmt.Errorf("encode tiff: %w", err)
	}
	return f.Close()
}

// Write picks the encoder from the file extension.
func (m *DepthMap) Write(path string, logScale bool) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return m.WritePNG(path, logScale)
	case ".tif", ".tiff":
		return m.WriteTIFF(path, logScale)
	default:
		return fmt.Errorf("unsupported depth map format %q", filepath.Ext(path))
	}
}
