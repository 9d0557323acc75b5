package capture

import (
	"fmt"
	"math"

	"depth-estimator/internal/camera"
	"depth-estimator/internal/image"
	"depth-estimator/pkg/geometry"
)

// cellPeriod is the distance in cells after which the texture repeats.
const cellPeriod = 1 << 12

// PlaneScene is a randomly textured plane facing the cameras at a fixed
// depth. Rendering it into several views gives captures with exactly known
// ground truth.
type PlaneScene struct {
	Depth float64 // Distance from the z = 0 camera plane
	Texel int     // Texture cell size in pixel footprints at Depth; 0 means 1
	Seed  uint32
}

// Render draws the plane as seen from a forward-facing camera at cop.
func (s PlaneScene) Render(width, height int, cop geometry.Point3D, fov float64) (*camera.View, error) {
	if !(s.Depth > cop.Z) {
		return nil, fmt.Errorf("plane at depth %v is behind camera at z=%v", s.Depth, cop.Z)
	}
	// Build the view first for its image plane distance, then fill the
	// pixels it shares with the returned view.
	img := image.New(width, height, 3)
	view, err := camera.NewSquare(img, cop, geometry.NewPoint3D(0, 0, 1), fov)
	if err != nil {
		return nil, err
	}

	texel := float64(max(s.Texel, 1))
	footprint := s.Depth / view.Distance()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := view.ProjectToWorld(geometry.NewPoint2D(float64(x), float64(y)), s.Depth-cop.Z).Add(cop)
			u := int(math.Floor(p.X / footprint / texel))
			v := int(math.Floor(p.Y / footprint / texel))
			r, g, b := s.texture(u, v)
			i := (y*width + x) * 3
			img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
		}
	}
	return view, nil
}

// texture maps a cell index to a colour. Cell coordinates are packed into
// 24 bits and scrambled by a bijection, so no two cells within a
// cellPeriod×cellPeriod window share a colour.
func (s PlaneScene) texture(u, v int) (r, g, b uint8) {
	const mask = 1<<24 - 1
	h := (uint32(u)%cellPeriod | uint32(v)%cellPeriod<<12) ^ s.Seed&mask
	h = h * 0x9E3779 & mask
	h ^= h >> 12
	h = h * 0x2C1B3D & mask
	h ^= h >> 11
	h = h * 0x297A2D & mask
	h ^= h >> 12
	return uint8(h), uint8(h >> 8), uint8(h >> 16)
}

// RenderGrid renders a cols×rows camera array with the given spacing,
// centred on the origin. The view nearest the centre is the source.
func (s PlaneScene) RenderGrid(width, height, cols, rows int, spacing, fov float64) (*Capture, error) {
	var views []*camera.View
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cop := gridCOP(c, r, cols, rows, spacing)
			v, err := s.Render(width, height, cop, fov)
			if err != nil {
				return nil, err
			}
			views = append(views, v)
		}
	}
	return newCapture(views, (rows/2)*cols+cols/2)
}
