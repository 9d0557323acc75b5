package image

import (
	"github.com/nfnt/resize"
)

// Resize returns a copy scaled to width×height with Lanczos resampling.
// A zero width or height preserves the aspect ratio.
func (img *Image) Resize(width, height int) *Image {
	scaled := resize.Resize(uint(width), uint(height), img.ToRGBA(), resize.Lanczos3)
	out := FromImage(scaled)
	out.Path = img.Path
	return out
}
