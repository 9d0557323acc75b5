// Package camera models calibrated pinhole views and the projections between
// image pixels, camera space and neighbouring views.
package camera

import (
	"errors"
	"fmt"
	"math"

	"depth-estimator/internal/image"
	"depth-estimator/pkg/geometry"
)

// ErrInvalidView is returned by New for unusable camera parameters.
var ErrInvalidView = errors.New("invalid camera view")

// View is an image plus the pinhole parameters it was captured with.
// Views are immutable after New returns.
type View struct {
	img         *image.Image
	cop         geometry.Point3D
	orientation geometry.Point3D
	hfov, vfov  float64
	distance    float64
}

// New builds a view. Field-of-view angles are in radians and must lie in
// (0, π); the orientation must be nonzero.
func New(img *image.Image, cop, orientation geometry.Point3D, hfov, vfov float64) (*View, error) {
	switch {
	case img == nil || img.Width <= 0 || img.Height <= 0:
		return nil, fmt.Errorf("empty image: %w", ErrInvalidView)
	case orientation.IsZero():
		return nil, fmt.Errorf("zero orientation: %w", ErrInvalidView)
	case !(hfov > 0 && hfov < math.Pi) || !(vfov > 0 && vfov < math.Pi):
		return nil, fmt.Errorf("field of view %.3f x %.3f rad: %w", hfov, vfov, ErrInvalidView)
	}
	return &View{
		img:         img,
		cop:         cop,
		orientation: orientation,
		hfov:        hfov,
		vfov:        vfov,
		distance:    float64(img.Height) / 2 / math.Tan(vfov/2),
	}, nil
}

// NewSquare builds a view whose horizontal and vertical FOV are equal.
func NewSquare(img *image.Image, cop, orientation geometry.Point3D, fov float64) (*View, error) {
	return New(img, cop, orientation, fov, fov)
}

// Image returns the view's pixel buffer.
func (v *View) Image() *image.Image { return v.img }

// COP returns the centre of projection in world space.
func (v *View) COP() geometry.Point3D { return v.cop }

// Orientation returns the viewing direction.
func (v *View) Orientation() geometry.Point3D { return v.orientation }

// HFOV returns the horizontal field of view in radians.
func (v *View) HFOV() float64 { return v.hfov }

// VFOV returns the vertical field of view in radians.
func (v *View) VFOV() float64 { return v.vfov }

// Distance returns the distance from the COP to the image plane in pixels.
func (v *View) Distance() float64 { return v.distance }

// Width returns the image width in pixels.
func (v *View) Width() int { return v.img.Width }

// Height returns the image height in pixels.
func (v *View) Height() int { return v.img.Height }

func (v *View) centre() geometry.Point2D {
	return geometry.NewPoint2D(float64(v.img.Width-1)/2, float64(v.img.Height-1)/2)
}

// ProjectToWorld returns the camera-space point seen at pixel whose z
// coordinate equals depth.
func (v *View) ProjectToWorld(pixel geometry.Point2D, depth float64) geometry.Point3D {
	c := v.centre()
	ray := geometry.NewPoint3D(pixel.X-c.X, c.Y-pixel.Y, v.distance)
	return ray.Scale(depth / v.distance)
}

// ProjectFromWorld returns the pixel a camera-space point projects to.
// Points on the z = 0 plane project to infinity.
func (v *View) ProjectFromWorld(p geometry.Point3D) geometry.Point2D {
	if p.Z == 0 {
		return geometry.NewPoint2D(infinity(p.X), infinity(-p.Y))
	}
	c := v.centre()
	s := v.distance / p.Z
	return geometry.NewPoint2D(p.X*s+c.X, c.Y-p.Y*s)
}

func infinity(sign float64) float64 {
	if sign < 0 {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// TransformToView moves a point from v's camera space into target's.
func (v *View) TransformToView(p geometry.Point3D, target *View) geometry.Point3D {
	out := p.Add(v.cop.Sub(target.cop))

	axis, angle := relativeRotation(target.orientation, v.orientation)
	if angle == 0 {
		return out
	}
	return out.Rotate(axis, angle)
}

// FindInOtherView returns where pixel lands in target if its depth is depth.
func (v *View) FindInOtherView(pixel geometry.Point2D, target *View, depth float64) geometry.Point2D {
	return target.ProjectFromWorld(v.TransformToView(v.ProjectToWorld(pixel, depth), target))
}

// relativeRotation returns the axis and angle that rotate direction from
// onto direction to. Opposite directions use a half turn about an axis
// perpendicular to to.
func relativeRotation(from, to geometry.Point3D) (geometry.Point3D, float64) {
	cos := from.Dot(to) / (from.Length() * to.Length())
	cos = math.Max(-1, math.Min(1, cos))
	angle := math.Acos(cos)
	if angle == 0 {
		return geometry.Point3D{}, 0
	}

	axis := from.Cross(to)
	if axis.IsZero() {
		axis = to.Cross(leastAligned(to))
	}
	return axis, angle
}

// leastAligned returns the world axis with the smallest component in d.
func leastAligned(d geometry.Point3D) geometry.Point3D {
	ax, ay, az := math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)
	switch {
	case ax <= ay && ax <= az:
		return geometry.NewPoint3D(1, 0, 0)
	case ay <= az:
		return geometry.NewPoint3D(0, 1, 0)
	default:
		return geometry.NewPoint3D(0, 0, 1)
	}
}

// Compatible reports whether two views share an image plane distance, the
// precondition for walking an epipolar scanline between them.
func Compatible(a, b *View) bool {
	return a.distance == b.distance
}
