// Package fusion estimates a depth map for a source view against every
// target view in parallel and fuses the per-view maps into one.
//
// Work is split into one task per (target view, row). Each task writes only
// its own row of its own per-view buffer, and every buffer is complete
// before fusion reads any of them, so no locking is needed. Views and
// images are shared read-only.
package fusion

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"depth-estimator/internal/camera"
	"depth-estimator/internal/depthmap"
	"depth-estimator/internal/estimator"
	"depth-estimator/pkg/geometry"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// ErrIncompatibleViews is returned when a target cannot be matched against
// the source.
var ErrIncompatibleViews = errors.New("incompatible views")

// Mode selects how per-view depths are combined.
type Mode int

const (
	// Median takes the median of the valid votes.
	Median Mode = iota
	// Mean averages the votes, and gives no depth unless every view voted.
	Mean
)

func (m Mode) String() string {
	switch m {
	case Median:
		return "median"
	case Mean:
		return "mean"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses the names returned by Mode.String.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "", "median":
		return Median, nil
	case "mean":
		return Mean, nil
	default:
		return 0, fmt.Errorf("unknown fusion mode %q", name)
	}
}

func (m Mode) reducer() depthmap.Reducer {
	if m == Mean {
		return depthmap.Mean
	}
	return depthmap.Median
}

// Options controls scheduling and vote reduction.
type Options struct {
	Workers int  // Concurrent tasks; 0 means runtime.NumCPU
	Mode    Mode // Vote reduction
}

// Fuser runs an estimator over whole images.
type Fuser struct {
	est  *estimator.Estimator
	opts Options
}

// New creates a fuser.
func New(est *estimator.Estimator, opts Options) *Fuser {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Fuser{est: est, opts: opts}
}

// Validate checks every target against the source: the image planes must
// sit at the same distance and the centres of projection must differ in x
// or y.
func Validate(source *camera.View, targets []*camera.View) error {
	if source == nil || len(targets) == 0 {
		return fmt.Errorf("need a source and at least one target: %w", ErrIncompatibleViews)
	}
	for i, t := range targets {
		if t == nil {
			return fmt.Errorf("target %d is nil: %w", i, ErrIncompatibleViews)
		}
		if !camera.Compatible(source, t) {
			return fmt.Errorf("target %d image plane at %.3f, source at %.3f: %w",
				i, t.Distance(), source.Distance(), ErrIncompatibleViews)
		}
		if d := source.COP().Sub(t.COP()); d.X == 0 && d.Y == 0 {
			return fmt.Errorf("target %d shares the source centre of projection: %w", i, ErrIncompatibleViews)
		}
	}
	return nil
}

// EstimateView computes the depth of every source pixel against one target.
func (f *Fuser) EstimateView(source, target *camera.View) (*depthmap.DepthMap, error) {
	if err := Validate(source, []*camera.View{target}); err != nil {
		return nil, err
	}
	out := depthmap.New(source.Width(), source.Height())
	var g errgroup.Group
	g.SetLimit(f.opts.Workers)
	for y := 0; y < out.Height; y++ {
		g.Go(func() error {
			f.estimateRow(source, target, y, out.Row(y))
			return nil
		})
	}
	return out, g.Wait()
}

func (f *Fuser) estimateRow(source, target *camera.View, y int, row []float64) {
	for x := range row {
		row[x] = f.est.EstimatePixel(source, target, geometry.PointInt{X: x, Y: y})
	}
}

// Fuse estimates the source against every target and fuses the results.
// Pixels no view could match are depthmap.Invalid.
func (f *Fuser) Fuse(source *camera.View, targets []*camera.View) (*depthmap.DepthMap, error) {
	if err := Validate(source, targets); err != nil {
		return nil, err
	}
	start := time.Now()
	w, h := source.Width(), source.Height()

	perView := make([]*depthmap.DepthMap, len(targets))
	for i := range perView {
		perView[i] = depthmap.New(w, h)
	}

	var g errgroup.Group
	g.SetLimit(f.opts.Workers)
	for i, target := range targets {
		for y := 0; y < h; y++ {
			g.Go(func() error {
				f.estimateRow(source, target, y, perView[i].Row(y))
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if glog.V(1) {
		glog.Infof("[fusion] %d views x %dx%d estimated in %v", len(targets), w, h, time.Since(start))
		for i, m := range perView {
			glog.Infof("[fusion] view %d: %v", i, m.Stats())
		}
	}

	fused := depthmap.New(w, h)
	reduce := f.opts.Mode.reducer()
	var fg errgroup.Group
	fg.SetLimit(f.opts.Workers)
	for y := 0; y < h; y++ {
		fg.Go(func() error {
			depthmap.FuseRow(perView, y, fused.Row(y), reduce)
			return nil
		})
	}
	if err := fg.Wait(); err != nil {
		return nil, err
	}

	glog.V(1).Infof("[fusion] %s fusion done in %v", f.opts.Mode, time.Since(start))
	return fused, nil
}
