// Package image provides image loading and the flat pixel buffer the depth
// estimator samples from.
package image

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"depth-estimator/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrSize is returned when a pixel buffer does not match its dimensions.
var ErrSize = errors.New("pixel buffer size mismatch")

// Image is a row-major pixel buffer with Channels bytes per pixel.
//
// Images are treated as immutable once constructed: estimators read them
// concurrently from many goroutines without locking.
type Image struct {
	Path     string // Source file, empty for generated images
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// New allocates a zeroed image.
func New(width, height, channels int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]byte, width*height*channels),
	}
}

// FromBytes wraps an existing buffer. The buffer is not copied.
func FromBytes(pix []byte, width, height, channels int) (*Image, error) {
	if width <= 0 || height <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%dx%d: %w", width, height, channels, ErrSize)
	}
	if len(pix) != width*height*channels {
		return nil, fmt.Errorf("got %d bytes for %dx%dx%d: %w", len(pix), width, height, channels, ErrSize)
	}
	return &Image{Width: width, Height: height, Channels: channels, Pix: pix}, nil
}

// FromImage converts a decoded image into a 3-channel RGB buffer.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	img := New(b.Dx(), b.Dy(), 3)

	if rgba, ok := src.(*image.RGBA); ok {
		for y := 0; y < img.Height; y++ {
			row := rgba.Pix[y*rgba.Stride:]
			for x := 0; x < img.Width; x++ {
				copy(img.Pix[img.offset(x, y):], row[x*4:x*4+3])
			}
		}
		return img
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := img.offset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2] = c.R, c.G, c.B
		}
	}
	return img
}

// Load loads an image from the specified path.
func Load(path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	decoded, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filepath.Base(path), err)
	}

	img := FromImage(decoded)
	img.Path = path
	return img, nil
}

// ToRGBA converts the buffer back to a standard library image.
func (img *Image) ToRGBA() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			p := img.PixelAt(geometry.PointInt{X: x, Y: y})
			dst.SetRGBA(x, y, color.RGBA{R: uint8(p.X), G: uint8(p.Y), B: uint8(p.Z), A: 255})
		}
	}
	return dst
}

// Bounds returns the pixel rectangle covered by the image.
func (img *Image) Bounds() geometry.RectInt {
	return geometry.NewRectInt(0, 0, img.Width, img.Height)
}

// Contains reports whether p lies in [0, W-1) × [0, H-1). The last row and
// column are excluded so that both bilinear neighbours of p exist.
func (img *Image) Contains(p geometry.Point2D) bool {
	return p.X >= 0 && p.Y >= 0 &&
		p.X < float64(img.Width-1) && p.Y < float64(img.Height-1)
}

// ContainsLoose reports whether p rounds to a pixel inside the image.
func (img *Image) ContainsLoose(p geometry.Point2D) bool {
	return p.X > -0.5 && p.Y > -0.5 &&
		p.X < float64(img.Width)-0.5 && p.Y < float64(img.Height)-0.5
}

func (img *Image) offset(x, y int) int {
	return (y*img.Width + x) * img.Channels
}

// PixelAt returns the first three channels at p. Missing channels read as
// zero. p must lie inside the image.
func (img *Image) PixelAt(p geometry.PointInt) geometry.Point3DInt {
	i := img.offset(p.X, p.Y)
	var out [3]int
	for c := 0; c < min(img.Channels, 3); c++ {
		out[c] = int(img.Pix[i+c])
	}
	return geometry.Point3DInt{X: out[0], Y: out[1], Z: out[2]}
}

// SubPixelAt bilinearly interpolates the pixel value at a fractional point.
// Neighbours whose weight is zero are never read, so integral points on the
// last row or column are valid.
func (img *Image) SubPixelAt(p geometry.Point2D) geometry.Point3D {
	x0, y0 := math.Floor(p.X), math.Floor(p.Y)
	fx, fy := p.X-x0, p.Y-y0
	wx := [2]float64{1 - fx, fx}
	wy := [2]float64{1 - fy, fy}

	var sum geometry.Point3D
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			w := wx[dx] * wy[dy]
			if w == 0 {
				continue
			}
			px := img.PixelAt(geometry.PointInt{X: int(x0) + dx, Y: int(y0) + dy})
			sum = sum.Add(px.ToFloat().Scale(w))
		}
	}
	return sum
}

// Crop copies the part of the image inside r.
func (img *Image) Crop(r geometry.RectInt) (*Image, error) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("crop outside %dx%d image: %w", img.Width, img.Height, ErrSize)
	}
	out := New(r.Width, r.Height, img.Channels)
	rowBytes := r.Width * img.Channels
	for y := 0; y < r.Height; y++ {
		src := img.offset(r.X, r.Y+y)
		copy(out.Pix[y*rowBytes:(y+1)*rowBytes], img.Pix[src:src+rowBytes])
	}
	out.Path = img.Path
	return out, nil
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg", ".bmp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
