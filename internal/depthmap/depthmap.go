// Package depthmap holds per-pixel depth buffers and the reductions that
// fuse several of them into one map.
package depthmap

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Invalid marks a pixel without a confident depth estimate. Valid depths
// are never below the configured minimum depth, which is positive.
var Invalid = math.NaN()

// IsValid reports whether d is a depth estimate rather than Invalid.
func IsValid(d float64) bool {
	return !math.IsNaN(d)
}

// DepthMap is a row-major grid of depths.
type DepthMap struct {
	Width  int
	Height int
	Data   []float64
}

// New returns a map with every pixel set to Invalid.
func New(width, height int) *DepthMap {
	m := &DepthMap{Width: width, Height: height, Data: make([]float64, width*height)}
	for i := range m.Data {
		m.Data[i] = Invalid
	}
	return m
}

// At returns the depth at (x, y).
func (m *DepthMap) At(x, y int) float64 {
	return m.Data[y*m.Width+x]
}

// Set stores the depth at (x, y).
func (m *DepthMap) Set(x, y int, d float64) {
	m.Data[y*m.Width+x] = d
}

// Row returns the slice backing row y. Writers of distinct rows never
// share memory.
func (m *DepthMap) Row(y int) []float64 {
	return m.Data[y*m.Width : (y+1)*m.Width]
}

// Stats summarises the valid depths of a map.
type Stats struct {
	Valid    int     `json:"valid"`
	Invalid  int     `json:"invalid"`
	Infinite int     `json:"infinite"`
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Mean     float64 `json:"mean,omitempty"`
	StdDev   float64 `json:"std_dev,omitempty"`
}

// Coverage returns the fraction of pixels holding a valid depth.
func (s Stats) Coverage() float64 {
	total := s.Valid + s.Invalid
	if total == 0 {
		return 0
	}
	return float64(s.Valid) / float64(total)
}

// Stats computes summary statistics. Min, Max, Mean and StdDev only cover
// finite depths.
func (m *DepthMap) Stats() Stats {
	var s Stats
	finite := make([]float64, 0, len(m.Data))
	for _, d := range m.Data {
		switch {
		case !IsValid(d):
			s.Invalid++
		case math.IsInf(d, 0):
			s.Valid++
			s.Infinite++
		default:
			s.Valid++
			finite = append(finite, d)
		}
	}
	if len(finite) == 0 {
		return s
	}
	s.Min, s.Max = slices.Min(finite), slices.Max(finite)
	s.Mean, s.StdDev = stat.MeanStdDev(finite, nil)
	if len(finite) == 1 {
		s.StdDev = 0
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("%d valid (%.1f%%), %d infinite, depth %.1f..%.1f mean %.1f±%.1f",
		s.Valid, 100*s.Coverage(), s.Infinite, s.Min, s.Max, s.Mean, s.StdDev)
}
