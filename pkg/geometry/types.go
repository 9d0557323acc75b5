// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

func fromR2(v r2.Vec) Point2D { return Point2D{X: v.X, Y: v.Y} }

// Vec returns the point as a gonum vector.
func (p Point2D) Vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	return r2.Norm(r2.Sub(p.Vec(), other.Vec()))
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return fromR2(r2.Add(p.Vec(), other.Vec()))
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return fromR2(r2.Sub(p.Vec(), other.Vec()))
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return fromR2(r2.Scale(factor, p.Vec()))
}

// Div returns the point divided by a scalar.
func (p Point2D) Div(divisor float64) Point2D {
	return Point2D{X: p.X / divisor, Y: p.Y / divisor}
}

// Dot returns the dot product of two vectors.
func (p Point2D) Dot(other Point2D) float64 {
	return r2.Dot(p.Vec(), other.Vec())
}

// Cross returns the z component of the 3D cross product.
func (p Point2D) Cross(other Point2D) float64 {
	return r2.Cross(p.Vec(), other.Vec())
}

// Length returns the Euclidean length of the vector.
func (p Point2D) Length() float64 {
	return r2.Norm(p.Vec())
}

// Normalize returns the unit vector in the direction of p.
// It panics if p has zero length.
func (p Point2D) Normalize() Point2D {
	if p.X == 0 && p.Y == 0 {
		panic("geometry: normalize of zero-length vector")
	}
	return fromR2(r2.Unit(p.Vec()))
}

// Round rounds each component to the nearest integer, halves away from zero.
func (p Point2D) Round() PointInt {
	return PointInt{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// Trunc narrows each component toward zero.
func (p Point2D) Trunc() PointInt {
	return PointInt{X: int(p.X), Y: int(p.Y)}
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point2D) IsFinite() bool {
	return !math.IsInf(p.X, 0) && !math.IsNaN(p.X) &&
		!math.IsInf(p.Y, 0) && !math.IsNaN(p.Y)
}

// PointInt represents a 2D point with integer coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToFloat converts to Point2D.
func (p PointInt) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// Add returns the sum of two points.
func (p PointInt) Add(other PointInt) PointInt {
	return PointInt{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p PointInt) Sub(other PointInt) PointInt {
	return PointInt{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by an integer factor.
func (p PointInt) Scale(factor int) PointInt {
	return PointInt{X: p.X * factor, Y: p.Y * factor}
}

// Dot returns the dot product of two vectors.
func (p PointInt) Dot(other PointInt) int {
	return p.X*other.X + p.Y*other.Y
}

// Point3D represents a 3D point or direction with floating-point coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewPoint3D creates a new Point3D.
func NewPoint3D(x, y, z float64) Point3D {
	return Point3D{X: x, Y: y, Z: z}
}

func fromR3(v r3.Vec) Point3D { return Point3D{X: v.X, Y: v.Y, Z: v.Z} }

// Vec returns the point as a gonum vector.
func (p Point3D) Vec() r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: p.Z} }

// XY drops the z component.
func (p Point3D) XY() Point2D { return Point2D{X: p.X, Y: p.Y} }

// Add returns the sum of two points.
func (p Point3D) Add(other Point3D) Point3D {
	return fromR3(r3.Add(p.Vec(), other.Vec()))
}

// Sub returns the difference of two points.
func (p Point3D) Sub(other Point3D) Point3D {
	return fromR3(r3.Sub(p.Vec(), other.Vec()))
}

// Scale returns the point scaled by a factor.
func (p Point3D) Scale(factor float64) Point3D {
	return fromR3(r3.Scale(factor, p.Vec()))
}

// Div returns the point divided by a scalar.
func (p Point3D) Div(divisor float64) Point3D {
	return Point3D{X: p.X / divisor, Y: p.Y / divisor, Z: p.Z / divisor}
}

// Dot returns the dot product of two vectors.
func (p Point3D) Dot(other Point3D) float64 {
	return r3.Dot(p.Vec(), other.Vec())
}

// Cross returns the cross product p × other.
func (p Point3D) Cross(other Point3D) Point3D {
	return fromR3(r3.Cross(p.Vec(), other.Vec()))
}

// Length returns the Euclidean length of the vector.
func (p Point3D) Length() float64 {
	return r3.Norm(p.Vec())
}

// IsZero reports whether all components are exactly zero.
func (p Point3D) IsZero() bool {
	return p.X == 0 && p.Y == 0 && p.Z == 0
}

// Normalize returns the unit vector in the direction of p.
// It panics if p has zero length.
func (p Point3D) Normalize() Point3D {
	if p.IsZero() {
		panic("geometry: normalize of zero-length vector")
	}
	return fromR3(r3.Unit(p.Vec()))
}

// Rotate rotates p by angle radians about axis using Rodrigues' formula:
//
//	v·cosθ + (â×v)·sinθ + â·(â·v)·(1-cosθ)
//
// The axis need not be normalized but must be nonzero.
func (p Point3D) Rotate(axis Point3D, angle float64) Point3D {
	a := axis.Normalize()
	sin, cos := math.Sincos(angle)
	return p.Scale(cos).
		Add(a.Cross(p).Scale(sin)).
		Add(a.Scale(a.Dot(p) * (1 - cos)))
}

// Round rounds each component to the nearest integer, halves away from zero.
func (p Point3D) Round() Point3DInt {
	return Point3DInt{X: int(math.Round(p.X)), Y: int(math.Round(p.Y)), Z: int(math.Round(p.Z))}
}

// Trunc narrows each component toward zero.
func (p Point3D) Trunc() Point3DInt {
	return Point3DInt{X: int(p.X), Y: int(p.Y), Z: int(p.Z)}
}

// Point3DInt is an integer triple, used for pixel colour samples.
type Point3DInt struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// ToFloat converts to Point3D.
func (p Point3DInt) ToFloat() Point3D {
	return Point3D{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
}

// Add returns the sum of two points.
func (p Point3DInt) Add(other Point3DInt) Point3DInt {
	return Point3DInt{X: p.X + other.X, Y: p.Y + other.Y, Z: p.Z + other.Z}
}

// Sub returns the difference of two points.
func (p Point3DInt) Sub(other Point3DInt) Point3DInt {
	return Point3DInt{X: p.X - other.X, Y: p.Y - other.Y, Z: p.Z - other.Z}
}

// Scale returns the point scaled by an integer factor.
func (p Point3DInt) Scale(factor int) Point3DInt {
	return Point3DInt{X: p.X * factor, Y: p.Y * factor, Z: p.Z * factor}
}

// Dot returns the dot product of two vectors.
func (p Point3DInt) Dot(other Point3DInt) int {
	return p.X*other.X + p.Y*other.Y + p.Z*other.Z
}

// AbsSum returns |x| + |y| + |z|.
func (p Point3DInt) AbsSum() int {
	return abs(p.X) + abs(p.Y) + abs(p.Z)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// RectInt represents a rectangle with integer coordinates.
// Pixel indices covered are [X, X+Width-1] × [Y, Y+Height-1].
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRectInt creates a new RectInt.
func NewRectInt(x, y, width, height int) RectInt {
	return RectInt{X: x, Y: y, Width: width, Height: height}
}

// Right returns the last column index inside the rectangle.
func (r RectInt) Right() int { return r.X + r.Width - 1 }

// Bottom returns the last row index inside the rectangle.
func (r RectInt) Bottom() int { return r.Y + r.Height - 1 }

// Empty returns true if the rectangle covers no pixels.
func (r RectInt) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains returns true if the pixel lies inside the rectangle.
func (r RectInt) Contains(p PointInt) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Intersect returns the overlap of two rectangles; empty if disjoint.
func (r RectInt) Intersect(other RectInt) RectInt {
	x := max(r.X, other.X)
	y := max(r.Y, other.Y)
	x2 := min(r.X+r.Width, other.X+other.Width)
	y2 := min(r.Y+r.Height, other.Y+other.Height)
	if x2 <= x || y2 <= y {
		return RectInt{}
	}
	return RectInt{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}
