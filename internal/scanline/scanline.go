// Package scanline walks the epipolar line of a source pixel across a target
// view one pixel at a time, annotating each point with the depth it implies.
//
// The walk starts at the source pixel itself, which is the correspondence at
// infinite depth, and moves toward the correspondence at the minimum depth.
// Depth therefore decreases monotonically along the walk.
package scanline

import (
	"iter"
	"math"

	"depth-estimator/internal/camera"
	"depth-estimator/internal/image"
	"depth-estimator/pkg/geometry"
)

// Section is one discrete point of a scanline. Every depth in
// [MinDepth, MaxDepth) lands on the same target pixel as Depth.
type Section struct {
	Point    geometry.Point2D `json:"point"`
	Depth    float64          `json:"depth"`
	MinDepth float64          `json:"min_depth"`
	MaxDepth float64          `json:"max_depth"`
}

// Scanline is a single-pass sequence of Sections. It keeps the previous
// section's MinDepth so consecutive brackets share an edge, and so must be
// consumed in order by one goroutine.
type Scanline struct {
	origin    geometry.Point2D // correspondence at infinite depth
	step      geometry.Point2D // one axis has magnitude 1
	stepCount float64          // steps from the walk start to the MinDepth end
	k         geometry.Point2D // distance-to-image-plane × COP offset

	target *image.Image

	cursor  geometry.Point2D
	index   int
	last    float64 // bounded only: steps allowed after the first point
	bounded bool
	prevMin float64
	done    bool
}

// geometryOf returns k and the correspondence at minDepth for pixel.
func geometryOf(source, target *camera.View, pixel geometry.Point2D, minDepth float64) (k, end geometry.Point2D) {
	if !camera.Compatible(source, target) {
		panic("scanline: views have different image plane distances")
	}
	k = source.COP().Sub(target.COP()).XY().Scale(source.Distance())
	if k.X == 0 && k.Y == 0 {
		panic("scanline: views share a centre of projection in the image plane")
	}
	end = geometry.NewPoint2D(pixel.X+k.X/minDepth, pixel.Y-k.Y/minDepth)
	return k, end
}

// normalizeStep scales raw so its dominant axis has magnitude 1 and returns
// the number of such steps raw spans.
func normalizeStep(raw geometry.Point2D) (geometry.Point2D, float64) {
	n := math.Max(math.Abs(raw.X), math.Abs(raw.Y))
	return raw.Div(n), n
}

// New returns a scanline for pixel that walks from the infinite-depth point
// until it leaves the target image or reaches minDepth.
//
// New panics if the views have different image plane distances or the same
// centre of projection.
func New(source, target *camera.View, pixel geometry.Point2D, minDepth float64) *Scanline {
	k, end := geometryOf(source, target, pixel, minDepth)
	step, n := normalizeStep(end.Sub(pixel))
	s := &Scanline{
		origin:    pixel,
		step:      step,
		stepCount: n,
		k:         k,
		target:    target.Image(),
		cursor:    pixel,
	}
	// The first point is emitted unconditionally, so it must at least round
	// to a pixel of the target.
	s.done = !s.target.ContainsLoose(pixel)
	return s
}

// WithStepSize rescales the step so consecutive points are size pixels
// apart along the dominant axis. It must be called before iteration and has
// no effect on bounded scanlines, whose clipping is computed in whole steps.
func (s *Scanline) WithStepSize(size float64) *Scanline {
	if size > 0 && size != 1 && !s.bounded && s.index == 0 {
		s.step = s.step.Scale(size)
		s.stepCount /= size
	}
	return s
}

// Step returns the per-iteration cursor increment.
func (s *Scanline) Step() geometry.Point2D { return s.step }

// StepCount returns the number of steps from the walk start to the
// minimum-depth end.
func (s *Scanline) StepCount() float64 { return s.stepCount }

// DepthAt inverts a target-image point on the line to the depth it
// represents. The infinite-depth point itself maps to +Inf.
func (s *Scanline) DepthAt(p geometry.Point2D) float64 {
	var num, den float64
	if s.k.X != 0 {
		num, den = s.k.X, p.X-s.origin.X
	} else {
		num, den = -s.k.Y, p.Y-s.origin.Y
	}
	if den == 0 {
		return math.Inf(1)
	}
	return num / den
}

// Next returns the next section, or false once the scanline is exhausted.
func (s *Scanline) Next() (Section, bool) {
	if s.done {
		return Section{}, false
	}

	half := s.step.Scale(0.5)
	sect := Section{
		Point:    s.cursor,
		Depth:    s.DepthAt(s.cursor),
		// Half a step onward is nearer, so Depth lies in [MinDepth, MaxDepth).
		MinDepth: s.DepthAt(s.cursor.Add(half)),
	}
	if s.index == 0 {
		sect.MaxDepth = s.DepthAt(s.cursor.Sub(half))
		// Half a step back from the infinite-depth point lies beyond infinity.
		if !(sect.MaxDepth > 0) {
			sect.MaxDepth = math.Inf(1)
		}
	} else {
		sect.MaxDepth = s.prevMin
	}
	s.prevMin = sect.MinDepth

	s.index++
	s.cursor = s.cursor.Add(s.step)
	s.done = !s.more()
	return sect, true
}

func (s *Scanline) more() bool {
	if s.bounded {
		return float64(s.index) <= s.last
	}
	return s.target.Contains(s.cursor) && float64(s.index) < s.stepCount
}

// All returns an iterator over the remaining sections.
func (s *Scanline) All() iter.Seq[Section] {
	return func(yield func(Section) bool) {
		for {
			sect, ok := s.Next()
			if !ok || !yield(sect) {
				return
			}
		}
	}
}

// Collect drains the scanline into a slice.
func (s *Scanline) Collect() []Section {
	var out []Section
	for sect := range s.All() {
		out = append(out, sect)
	}
	return out
}
