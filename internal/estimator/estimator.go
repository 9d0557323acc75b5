// Package estimator finds, for one source pixel, the depth at which it best
// matches a target view along its epipolar line.
package estimator

import (
	"math"

	"depth-estimator/internal/camera"
	"depth-estimator/internal/depthmap"
	"depth-estimator/internal/scanline"
	"depth-estimator/pkg/geometry"

	"github.com/golang/glog"
)

// Rejection explains why a match produced no depth.
type Rejection int

const (
	Accepted Rejection = iota
	TooFewPoints
	CostTooHigh
	Ambiguous
)

func (r Rejection) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case TooFewPoints:
		return "too few scan points"
	case CostTooHigh:
		return "cost above threshold"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Match is the outcome of searching one scanline.
type Match struct {
	Depth     float64 // depthmap.Invalid unless Rejection is Accepted
	Best      scanline.Section
	Cost      float64 // lowest cost seen; +Inf if no point was scored
	Ties      int     // candidates sharing the lowest cost
	Points    int     // candidates scored
	Rejection Rejection
}

// Estimator matches pixels between views. It holds no mutable state and is
// safe for concurrent use.
type Estimator struct {
	params Params
}

// New creates an estimator. It returns an error if params are invalid.
func New(params Params) (*Estimator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{params: params}, nil
}

// Params returns the estimator's parameters.
func (e *Estimator) Params() Params { return e.params }

// Scanline builds the walk for pixel according to the configured strategy.
func (e *Estimator) Scanline(source, target *camera.View, pixel geometry.Point2D) *scanline.Scanline {
	if e.params.Strategy == Bounded {
		return scanline.NewBounded(source, target, pixel, e.params.MinDepth, e.params.MaxDepth)
	}
	return scanline.New(source, target, pixel, e.params.MinDepth).WithStepSize(e.params.ScanStep)
}

// Match scores every scanline point for pixel and applies the rejection
// rules. Among equally good candidates the first one walked, which is the
// farthest, wins.
func (e *Estimator) Match(source, target *camera.View, pixel geometry.PointInt) Match {
	p := pixel.ToFloat()
	m := Match{Depth: depthmap.Invalid, Cost: math.Inf(1)}

	for sect := range e.Scanline(source, target, p).All() {
		cost := e.params.Cost.Compare(source.Image(), p, target.Image(), sect.Point)
		m.Points++
		switch {
		case cost < m.Cost:
			m.Cost = cost
			m.Best = sect
			m.Ties = 1
		case cost == m.Cost:
			m.Ties++
		}
	}

	switch {
	case m.Points < e.params.MinScanPoints:
		m.Rejection = TooFewPoints
	case m.Cost > e.params.MaxDiff:
		m.Rejection = CostTooHigh
	case m.Ties > e.params.MaxEquivalentMatches:
		m.Rejection = Ambiguous
	default:
		m.Depth = m.Best.Depth
	}

	if glog.V(3) {
		glog.Infof("[estimator] pixel %v: %d points, cost %.1f, %d ties, %s",
			pixel, m.Points, m.Cost, m.Ties, m.Rejection)
	}
	return m
}

// EstimatePixel returns the depth of pixel as seen against target, or
// depthmap.Invalid if no confident match exists.
func (e *Estimator) EstimatePixel(source, target *camera.View, pixel geometry.PointInt) float64 {
	return e.Match(source, target, pixel).Depth
}
