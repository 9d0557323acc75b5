package estimator

import (
	"fmt"
	"math"

	"depth-estimator/internal/image"
	"depth-estimator/pkg/geometry"
)

// Cost scores how different a source point looks from a target point.
// Lower is more similar. Both points must lie inside their images.
type Cost interface {
	Compare(src *image.Image, sp geometry.Point2D, dst *image.Image, tp geometry.Point2D) float64
}

// PixelCost compares the nearest pixels by the sum of absolute channel
// differences.
type PixelCost struct{}

func (PixelCost) Compare(src *image.Image, sp geometry.Point2D, dst *image.Image, tp geometry.Point2D) float64 {
	return float64(src.PixelAt(sp.Round()).Sub(dst.PixelAt(tp.Round())).AbsSum())
}

func (PixelCost) String() string { return "pixel" }

// SubPixelCost compares bilinearly interpolated values at the exact points.
type SubPixelCost struct{}

func (SubPixelCost) Compare(src *image.Image, sp geometry.Point2D, dst *image.Image, tp geometry.Point2D) float64 {
	d := src.SubPixelAt(sp).Sub(dst.SubPixelAt(tp))
	return math.Abs(d.X) + math.Abs(d.Y) + math.Abs(d.Z)
}

func (SubPixelCost) String() string { return "subpixel" }

// Kernel is a square table of weights with odd side length.
type Kernel struct {
	Size    int
	Weights []float64 // row-major, Size×Size
}

// NewGaussianKernel builds weights exp(-(x²/2s + y²/2s)) over a size×size
// square centred on zero.
func NewGaussianKernel(size int, spread float64) (Kernel, error) {
	if size < 1 || size%2 == 0 {
		return Kernel{}, fmt.Errorf("kernel size %d must be odd and positive", size)
	}
	if !(spread > 0) {
		return Kernel{}, fmt.Errorf("gaussian spread %v must be positive", spread)
	}
	k := Kernel{Size: size, Weights: make([]float64, size*size)}
	half := size / 2
	for y := -half; y <= half; y++ {
		for x := -half; x <= half; x++ {
			fx, fy := float64(x), float64(y)
			k.Weights[(y+half)*size+x+half] = math.Exp(-(fx*fx/(2*spread) + fy*fy/(2*spread)))
		}
	}
	return k, nil
}

// Half returns the distance from the centre to the edge of the kernel.
func (k Kernel) Half() int { return k.Size / 2 }

// At returns the weight at offset (dx, dy) from the centre.
func (k Kernel) At(dx, dy int) float64 {
	h := k.Half()
	return k.Weights[(dy+h)*k.Size+dx+h]
}

// KernelCost compares weighted neighbourhoods around the nearest pixels.
// Near an image edge the neighbourhood shrinks symmetrically until it fits
// inside both images.
type KernelCost struct {
	Kernel Kernel
}

func (c KernelCost) Compare(src *image.Image, sp geometry.Point2D, dst *image.Image, tp geometry.Point2D) float64 {
	p, q := sp.Round(), tp.Round()
	half := c.Kernel.Half()
	hw := min(half, p.X, q.X, src.Width-1-p.X, dst.Width-1-q.X)
	hh := min(half, p.Y, q.Y, src.Height-1-p.Y, dst.Height-1-q.Y)

	var errSum, weightSum float64
	for dy := -hh; dy <= hh; dy++ {
		for dx := -hw; dx <= hw; dx++ {
			w := c.Kernel.At(dx, dy)
			a := src.PixelAt(geometry.PointInt{X: p.X + dx, Y: p.Y + dy})
			b := dst.PixelAt(geometry.PointInt{X: q.X + dx, Y: q.Y + dy})
			errSum += w * float64(a.Sub(b).AbsSum())
			weightSum += w
		}
	}
	return errSum / weightSum
}

func (c KernelCost) String() string { return fmt.Sprintf("kernel(%d)", c.Kernel.Size) }
