package scanline

import (
	"math"

	"depth-estimator/internal/camera"
	"depth-estimator/pkg/geometry"
)

// NewBounded returns a scanline limited to depths in [minDepth, maxDepth]
// whose points are clipped to the target image up front with a ray/rectangle
// intersection. maxDepth may be +Inf.
//
// Indices along the walk are counted from the maxDepth correspondence; the
// first emitted point is the first whole step inside the image.
func NewBounded(source, target *camera.View, pixel geometry.Point2D, minDepth, maxDepth float64) *Scanline {
	k, end := geometryOf(source, target, pixel, minDepth)

	start := pixel
	if !math.IsInf(maxDepth, 1) {
		start = geometry.NewPoint2D(pixel.X+k.X/maxDepth, pixel.Y-k.Y/maxDepth)
	}
	step, n := normalizeStep(end.Sub(start))

	s := &Scanline{
		origin:    pixel,
		step:      step,
		stepCount: n,
		k:         k,
		target:    target.Image(),
		bounded:   true,
	}

	hit, ok := geometry.IntersectRect(start, step, target.Image().Bounds())
	if !ok {
		s.done = true
		return s
	}
	first := math.Ceil(hit.Entry)
	s.last = math.Floor(math.Min(hit.Exit, n)) - first
	if s.last < 0 {
		s.done = true
		return s
	}
	s.cursor = start.Add(step.Scale(first))
	return s
}
