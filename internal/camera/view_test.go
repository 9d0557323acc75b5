package camera

import (
	"math"
	"testing"

	"depth-estimator/internal/image"
	"depth-estimator/pkg/geometry"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func mustView(t *testing.T, w, h int, cop, orientation geometry.Point3D, fov float64) *View {
	t.Helper()
	v, err := NewSquare(image.New(w, h, 3), cop, orientation, fov)
	require.NoError(t, err)
	return v
}

var forward = geometry.NewPoint3D(0, 0, 1)

func TestNewValidates(t *testing.T) {
	img := image.New(4, 4, 3)
	tests := []struct {
		name        string
		img         *image.Image
		orientation geometry.Point3D
		fov         float64
	}{
		{"nil image", nil, forward, 1},
		{"zero orientation", img, geometry.Point3D{}, 1},
		{"zero fov", img, forward, 0},
		{"straight angle", img, forward, math.Pi},
		{"nan fov", img, forward, math.NaN()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSquare(tc.img, geometry.Point3D{}, tc.orientation, tc.fov)
			assert.ErrorIs(t, err, ErrInvalidView)
		})
	}
}

func TestDistance(t *testing.T) {
	v := mustView(t, 11, 11, geometry.Point3D{}, forward, math.Pi/2)
	assert.InDelta(t, 5.5, v.Distance(), 1e-9)

	v, err := New(image.New(1080, 720, 3), geometry.Point3D{}, forward, 1.2, math.Pi/3)
	require.NoError(t, err)
	assert.InDelta(t, 360/math.Tan(math.Pi/6), v.Distance(), 1e-9)
}

func TestProjectToWorld(t *testing.T) {
	v := mustView(t, 11, 11, geometry.Point3D{}, forward, math.Pi/2)

	tests := []struct {
		pixel geometry.Point2D
		depth float64
		want  geometry.Point3D
	}{
		{geometry.NewPoint2D(5, 5), 100, geometry.NewPoint3D(0, 0, 100)},
		{geometry.NewPoint2D(4, 2), 33, geometry.NewPoint3D(-6, 18, 33)},
		{geometry.NewPoint2D(9, 7), 33, geometry.NewPoint3D(24, -12, 33)},
	}
	for _, tc := range tests {
		got := v.ProjectToWorld(tc.pixel, tc.depth)
		if diff := cmp.Diff(tc.want, got, approx); diff != "" {
			t.Errorf("ProjectToWorld(%v, %v) mismatch (-want +got):\n%s", tc.pixel, tc.depth, diff)
		}
	}
}

func TestProjectRoundTrip(t *testing.T) {
	v := mustView(t, 64, 48, geometry.NewPoint3D(3, 4, 5), forward, 1.1)
	for _, pixel := range []geometry.Point2D{{X: 0, Y: 0}, {X: 63, Y: 47}, {X: 12.25, Y: 30.5}} {
		for _, depth := range []float64{0.01, 1, 300, 1e6} {
			got := v.ProjectFromWorld(v.ProjectToWorld(pixel, depth))
			if diff := cmp.Diff(pixel, got, cmpopts.EquateApprox(1e-12, 1e-9)); diff != "" {
				t.Errorf("round trip of %v at depth %v (-want +got):\n%s", pixel, depth, diff)
			}
		}
	}
}

func TestProjectFromWorldZeroDepth(t *testing.T) {
	v := mustView(t, 11, 11, geometry.Point3D{}, forward, math.Pi/2)
	got := v.ProjectFromWorld(geometry.NewPoint3D(-1, 2, 0))
	assert.True(t, math.IsInf(got.X, -1))
	assert.True(t, math.IsInf(got.Y, -1))
}

func TestTransformToView(t *testing.T) {
	p := geometry.NewPoint3D(0, 0, 10)

	tests := []struct {
		name           string
		srcCOP, srcDir geometry.Point3D
		dstCOP, dstDir geometry.Point3D
		want           geometry.Point3D
	}{
		{"translation only", geometry.NewPoint3D(5, -2, 0), forward, geometry.NewPoint3D(1, 1, 1), forward, geometry.NewPoint3D(4, -3, 9)},
		{"quarter turn", geometry.Point3D{}, geometry.NewPoint3D(1, 0, 0), geometry.Point3D{}, forward, geometry.NewPoint3D(10, 0, 0)},
		{"unnormalized directions", geometry.Point3D{}, geometry.NewPoint3D(3, 0, 0), geometry.Point3D{}, geometry.NewPoint3D(0, 0, 2), geometry.NewPoint3D(10, 0, 0)},
		{"opposite directions", geometry.Point3D{}, geometry.NewPoint3D(0, 0, -1), geometry.Point3D{}, forward, geometry.NewPoint3D(0, 0, -10)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := mustView(t, 8, 8, tc.srcCOP, tc.srcDir, 1)
			dst := mustView(t, 8, 8, tc.dstCOP, tc.dstDir, 1)
			got := src.TransformToView(p, dst)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("TransformToView mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindInOtherView(t *testing.T) {
	src := mustView(t, 11, 11, geometry.Point3D{}, forward, math.Pi/2)
	dst := mustView(t, 11, 11, geometry.NewPoint3D(100, 0, 0), forward, math.Pi/2)

	got := src.FindInOtherView(geometry.NewPoint2D(5, 5), dst, 1000)
	assert.InDelta(t, 4.45, got.X, 1e-9)
	assert.InDelta(t, 5, got.Y, 1e-9)

	// At infinite depth the correspondence is the source pixel itself.
	far := src.FindInOtherView(geometry.NewPoint2D(2, 7), dst, 1e15)
	assert.InDelta(t, 2, far.X, 1e-9)
	assert.InDelta(t, 7, far.Y, 1e-9)

	assert.True(t, Compatible(src, dst))
	assert.False(t, Compatible(src, mustView(t, 12, 12, geometry.Point3D{}, forward, math.Pi/2)))
}
