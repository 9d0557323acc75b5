// Package capture turns raw captures into calibrated camera views: folders
// of rectified images, light-field sub-aperture grids, stereo pairs and
// synthetic scenes.
package capture

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strconv"

	"depth-estimator/internal/camera"
	"depth-estimator/internal/image"
	"depth-estimator/pkg/geometry"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// ErrNoViews is returned when a capture yields fewer than two views.
var ErrNoViews = errors.New("capture needs a source and at least one target view")

// Forward is the viewing direction of every camera built by this package.
var Forward = geometry.NewPoint3D(0, 0, 1)

// Degrees converts an angle to radians.
func Degrees(deg float64) float64 { return deg / 180 * math.Pi }

// Capture is a source view and the target views it is matched against.
type Capture struct {
	Source  *camera.View
	Targets []*camera.View
}

// Views returns the source followed by the targets.
func (c *Capture) Views() []*camera.View {
	return append([]*camera.View{c.Source}, c.Targets...)
}

func splitSource(views []*camera.View, source int) (*camera.View, []*camera.View) {
	targets := slices.Concat(views[:source], views[source+1:])
	return views[source], targets
}

func newCapture(views []*camera.View, source int) (*Capture, error) {
	if len(views) < 2 {
		return nil, fmt.Errorf("%d view(s): %w", len(views), ErrNoViews)
	}
	if source < 0 || source >= len(views) {
		return nil, fmt.Errorf("source index %d out of range [0, %d)", source, len(views))
	}
	s, t := splitSource(views, source)
	return &Capture{Source: s, Targets: t}, nil
}

// DirectoryOptions describes a folder of rectified captures.
type DirectoryOptions struct {
	Spacing float64 // World units per grid coordinate in the file name
	FOV     float64 // Horizontal and vertical field of view, radians
	Workers int     // Parallel decoders; 0 means runtime.NumCPU
}

func (o DirectoryOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// DefaultDirectoryOptions returns options for the 1080×1080 rectified set.
func DefaultDirectoryOptions() DirectoryOptions {
	return DirectoryOptions{Spacing: 10, FOV: Degrees(60)}
}

var gridName = regexp.MustCompile(`X\s*=\s*(-?\d+(?:\.\d+)?)\s*,\s*Y\s*=\s*(-?\d+(?:\.\d+)?)`)

// ParseGridName extracts the camera grid coordinates from a file name such
// as "cam X = 2, Y = -1.bmp".
func ParseGridName(name string) (x, y float64, err error) {
	m := gridName.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, 0, fmt.Errorf("no grid coordinates in %q", name)
	}
	if x, err = strconv.ParseFloat(m[1], 64); err != nil {
		return 0, 0, fmt.Errorf("grid x in %q: %w", name, err)
	}
	if y, err = strconv.ParseFloat(m[2], 64); err != nil {
		return 0, 0, fmt.Errorf("grid y in %q: %w", name, err)
	}
	return x, y, nil
}

// LoadDirectory loads every image in dir whose name carries grid
// coordinates. Files are taken in name order and the first is the source.
func LoadDirectory(dir string, opts DirectoryOptions) (*Capture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read capture directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !image.IsSupportedFormat(e.Name()) {
			continue
		}
		if _, _, err := ParseGridName(e.Name()); err != nil {
			glog.V(1).Infof("[capture] skipping %s: %v", e.Name(), err)
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)

	views := make([]*camera.View, len(paths))
	var g errgroup.Group
	g.SetLimit(opts.workers())
	for i, path := range paths {
		g.Go(func() error {
			x, y, _ := ParseGridName(path)
			img, err := image.Load(path)
			if err != nil {
				return err
			}
			cop := geometry.NewPoint3D(x*opts.Spacing, y*opts.Spacing, 0)
			views[i], err = camera.NewSquare(img, cop, Forward, opts.FOV)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	glog.Infof("[capture] loaded %d views from %s", len(views), dir)
	return newCapture(views, 0)
}

// GridOptions describes a light-field capture stored as one image holding a
// grid of sub-aperture images.
type GridOptions struct {
	Cols, Rows int     // Sub-images across and down
	Margin     int     // Rings of sub-images dropped at the border
	Spacing    float64 // World distance between neighbouring sub-apertures
	FOV        float64 // Radians
	Source     int     // Index of the source among the used views, row-major
}

// DefaultGridOptions returns the layout of a 3420×3420 Lytro capture.
func DefaultGridOptions() GridOptions {
	return GridOptions{Cols: 9, Rows: 9, Margin: 1, Spacing: 1, FOV: Degrees(60)}
}

// SplitGrid cuts a sub-aperture grid into views. Camera offsets are centred
// on the used part of the grid with y increasing upward.
func SplitGrid(img *image.Image, opts GridOptions) (*Capture, error) {
	if opts.Cols <= 0 || opts.Rows <= 0 {
		return nil, fmt.Errorf("grid %dx%d: %w", opts.Cols, opts.Rows, ErrNoViews)
	}
	if img.Width%opts.Cols != 0 || img.Height%opts.Rows != 0 {
		return nil, fmt.Errorf("%dx%d image does not divide into a %dx%d grid",
			img.Width, img.Height, opts.Cols, opts.Rows)
	}
	subW, subH := img.Width/opts.Cols, img.Height/opts.Rows
	usedCols, usedRows := opts.Cols-2*opts.Margin, opts.Rows-2*opts.Margin

	var views []*camera.View
	for r := 0; r < usedRows; r++ {
		for c := 0; c < usedCols; c++ {
			gx, gy := c+opts.Margin, r+opts.Margin
			sub, err := img.Crop(geometry.NewRectInt(gx*subW, gy*subH, subW, subH))
			if err != nil {
				return nil, fmt.Errorf("sub-image %d,%d: %w", gx, gy, err)
			}
			v, err := camera.NewSquare(sub, gridCOP(c, r, usedCols, usedRows, opts.Spacing), Forward, opts.FOV)
			if err != nil {
				return nil, err
			}
			views = append(views, v)
		}
	}
	return newCapture(views, opts.Source)
}

// gridCOP places camera (c, r) of a cols×rows array centred on the origin.
func gridCOP(c, r, cols, rows int, spacing float64) geometry.Point3D {
	x := spacing * (float64(c) - float64(cols-1)/2)
	y := spacing * (float64(rows-1)/2 - float64(r))
	return geometry.NewPoint3D(x, y, 0)
}

// Binocular builds a stereo pair whose cameras sit baseline apart on the x
// axis. The left view is the source.
func Binocular(left, right *image.Image, baseline, fov float64) (*Capture, error) {
	if left.Width != right.Width || left.Height != right.Height {
		return nil, fmt.Errorf("stereo pair sizes differ: %dx%d vs %dx%d",
			left.Width, left.Height, right.Width, right.Height)
	}
	l, err := camera.NewSquare(left, geometry.NewPoint3D(-baseline/2, 0, 0), Forward, fov)
	if err != nil {
		return nil, fmt.Errorf("left view: %w", err)
	}
	r, err := camera.NewSquare(right, geometry.NewPoint3D(baseline/2, 0, 0), Forward, fov)
	if err != nil {
		return nil, fmt.Errorf("right view: %w", err)
	}
	return &Capture{Source: l, Targets: []*camera.View{r}}, nil
}

// Downscale shrinks every view by factor while keeping its camera
// parameters. Smaller images bound the time a depth map takes.
func Downscale(c *Capture, factor float64) (*Capture, error) {
	if factor <= 1 {
		return c, nil
	}
	scale := func(v *camera.View) (*camera.View, error) {
		w := int(math.Round(float64(v.Width()) / factor))
		h := int(math.Round(float64(v.Height()) / factor))
		return camera.New(v.Image().Resize(w, h), v.COP(), v.Orientation(), v.HFOV(), v.VFOV())
	}

	views := c.Views()
	out := make([]*camera.View, len(views))
	var g errgroup.Group
	for i, v := range views {
		g.Go(func() error {
			var err error
			out[i], err = scale(v)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("downscale: %w", err)
	}
	return newCapture(out, 0)
}
