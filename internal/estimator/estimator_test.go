package estimator

import (
	"math"
	"testing"

	"depth-estimator/internal/camera"
	"depth-estimator/internal/capture"
	"depth-estimator/internal/depthmap"
	"depth-estimator/internal/image"
	"depth-estimator/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// planePair renders a textured plane at depth 300 into two 100×100 views
// 30 units apart, a 5 pixel disparity.
func planePair(t *testing.T) (*camera.View, *camera.View) {
	t.Helper()
	scene := capture.PlaneScene{Depth: 300, Seed: 1}
	src, err := scene.Render(100, 100, geometry.Point3D{}, math.Pi/2)
	require.NoError(t, err)
	dst, err := scene.Render(100, 100, geometry.NewPoint3D(30, 0, 0), math.Pi/2)
	require.NoError(t, err)
	return src, dst
}

func viewOf(t *testing.T, img *image.Image, x float64) *camera.View {
	t.Helper()
	v, err := camera.NewSquare(img, geometry.NewPoint3D(x, 0, 0), capture.Forward, math.Pi/2)
	require.NoError(t, err)
	return v
}

func mustEstimator(t *testing.T, p Params) *Estimator {
	t.Helper()
	e, err := New(p)
	require.NoError(t, err)
	return e
}

func TestEstimatePlane(t *testing.T) {
	src, dst := planePair(t)
	costs := map[string]Cost{"pixel": PixelCost{}, "subpixel": SubPixelCost{}}
	k, err := NewGaussianKernel(3, 3)
	require.NoError(t, err)
	costs["kernel"] = KernelCost{Kernel: k}

	for name, cost := range costs {
		for _, strategy := range []Strategy{Stepping, Bounded} {
			t.Run(name+"/"+strategy.String(), func(t *testing.T) {
				e := mustEstimator(t, DefaultParams().
					WithDepthRange(200, math.Inf(1)).
					WithCost(cost).
					WithStrategy(strategy))

				for _, p := range []geometry.PointInt{{X: 10, Y: 10}, {X: 50, Y: 50}, {X: 97, Y: 3}} {
					m := e.Match(src, dst, p)
					require.Equal(t, Accepted, m.Rejection, "pixel %v", p)
					assert.InDelta(t, 300, m.Depth, 1e-6, "pixel %v", p)
					assert.Equal(t, 0.0, m.Cost)
					assert.Equal(t, 1, m.Ties)
					assert.Equal(t, 8, m.Points)
				}
			})
		}
	}
}

func TestRejectsTooFewPoints(t *testing.T) {
	src, dst := planePair(t)
	e := mustEstimator(t, DefaultParams().WithDepthRange(200, math.Inf(1)))

	// The walk toward -x leaves the image after the first point.
	m := e.Match(src, dst, geometry.PointInt{X: 0, Y: 40})
	assert.Equal(t, TooFewPoints, m.Rejection)
	assert.Equal(t, 1, m.Points)
	assert.False(t, depthmap.IsValid(m.Depth))

	// Even a perfect match is rejected when too few points were scanned.
	same := viewOf(t, src.Image(), 30)
	m = e.Match(src, same, geometry.PointInt{X: 0, Y: 40})
	assert.Equal(t, 0.0, m.Cost)
	assert.False(t, depthmap.IsValid(m.Depth))
}

func TestRejectsHighCost(t *testing.T) {
	bright := viewOf(t, solid(100, 100, 255), 0)
	dark := viewOf(t, solid(100, 100, 0), 30)
	e := mustEstimator(t, DefaultParams())

	m := e.Match(bright, dark, geometry.PointInt{X: 50, Y: 50})
	assert.Equal(t, CostTooHigh, m.Rejection)
	assert.Equal(t, 765.0, m.Cost)
	assert.False(t, depthmap.IsValid(e.EstimatePixel(bright, dark, geometry.PointInt{X: 50, Y: 50})))
}

func TestAmbiguousMatches(t *testing.T) {
	a := viewOf(t, solid(100, 100, 128), 0)
	b := viewOf(t, solid(100, 100, 128), 30)
	pixel := geometry.PointInt{X: 50, Y: 50}

	e := mustEstimator(t, DefaultParams())
	m := e.Match(a, b, pixel)
	assert.Equal(t, Ambiguous, m.Rejection)
	assert.Equal(t, m.Points, m.Ties)

	// With ambiguity allowed the first candidate, at infinite depth, wins.
	lenient := mustEstimator(t, DefaultParams().WithThresholds(50, 1000, 2))
	assert.True(t, math.IsInf(lenient.EstimatePixel(a, b, pixel), 1))
}

func TestTieBreakPrefersFarthest(t *testing.T) {
	// Target columns 44 and 46 both match the source pixel exactly.
	src := viewOf(t, filled(100, 100, func(x, y int) [3]uint8 { return [3]uint8{uint8(x), 0, 0} }), 0)
	dst := viewOf(t, filled(100, 100, func(x, y int) [3]uint8 {
		if x == 44 || x == 46 {
			return [3]uint8{50, 0, 0}
		}
		return [3]uint8{200, 200, 200}
	}), 30)

	e := mustEstimator(t, DefaultParams().WithDepthRange(200, math.Inf(1)))
	m := e.Match(src, dst, geometry.PointInt{X: 50, Y: 20})
	require.Equal(t, Accepted, m.Rejection)
	assert.Equal(t, 2, m.Ties)
	assert.InDelta(t, 46, m.Best.Point.X, 1e-9)
	assert.InDelta(t, 375, m.Depth, 1e-6)
}

func TestNewRejectsBadParams(t *testing.T) {
	tests := map[string]Params{
		"zero min depth":  DefaultParams().WithDepthRange(0, math.Inf(1)),
		"inverted range":  DefaultParams().WithDepthRange(500, 400),
		"no ties allowed": DefaultParams().WithThresholds(50, 0, 2),
		"no scan points":  DefaultParams().WithThresholds(50, 2, 0),
		"missing cost":    DefaultParams().WithCost(nil),
		"zero scan step":  func() Params { p := DefaultParams(); p.ScanStep = 0; return p }(),
		"bounded stride":  func() Params { p := DefaultParams().WithStrategy(Bounded); p.ScanStep = 0.5; return p }(),
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(p)
			assert.Error(t, err)
		})
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("Bounded")
	require.NoError(t, err)
	assert.Equal(t, Bounded, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, Stepping, s)

	_, err = ParseStrategy("diagonal")
	assert.Error(t, err)
	assert.Equal(t, "Strategy(7)", Strategy(7).String())
}
