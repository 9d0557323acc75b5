package geometry

import "math"

// RayIntersection holds where a ray enters and leaves a rectangle, measured
// in multiples of the ray's own step vector.
type RayIntersection struct {
	Entry float64 `json:"entry"`
	Exit  float64 `json:"exit"`
}

// IntersectRect clips the ray origin + t·step against the inclusive pixel
// range of r. It returns false when the ray never enters the rectangle.
// A ray grazing a corner yields Entry == Exit.
//
// step must be nonzero; IntersectRect panics otherwise.
func IntersectRect(origin, step Point2D, r RectInt) (RayIntersection, bool) {
	if step.X == 0 && step.Y == 0 {
		panic("geometry: ray step is the zero vector")
	}

	entryX, exitX := slab(origin.X, step.X, float64(r.X), float64(r.Right()))
	entryY, exitY := slab(origin.Y, step.Y, float64(r.Y), float64(r.Bottom()))

	if entryX < 0 || entryY < 0 {
		return RayIntersection{}, false
	}
	entry := math.Max(entryX, entryY)
	exit := math.Min(exitX, exitY)
	if entry > exit {
		return RayIntersection{}, false
	}
	return RayIntersection{Entry: entry, Exit: exit}, true
}

// slab returns the entry and exit step counts of one axis' [lo, hi] range.
func slab(origin, step, lo, hi float64) (entry, exit float64) {
	toLo := (lo - origin) / step
	toHi := (hi - origin) / step

	switch {
	case origin < lo:
		entry, exit = toLo, toHi
	case origin > hi:
		entry, exit = toHi, toLo
	default:
		entry = 0
		switch {
		case step > 0:
			exit = toHi
		case step < 0:
			exit = toLo
		default:
			exit = math.Inf(1)
		}
	}

	// A zero step component outside the range gives infinite distances.
	// Flip them so the axis reports a miss instead of an unbounded span.
	if math.IsInf(entry, 1) {
		entry = math.Inf(-1)
	}
	if math.IsInf(exit, -1) {
		exit = math.Inf(1)
	}
	return entry, exit
}
