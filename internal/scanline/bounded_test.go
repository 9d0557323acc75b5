package scanline

import (
	"math"
	"testing"

	"depth-estimator/pkg/geometry"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedMatchesSteppingInsideImage(t *testing.T) {
	src := view(t, 100, 100, 0, 0)
	dst := view(t, 100, 100, 100, 0)
	pixel := geometry.NewPoint2D(50, 50)

	stepping := New(src, dst, pixel, minDepth).Collect()
	bounded := NewBounded(src, dst, pixel, minDepth, math.Inf(1)).Collect()
	if diff := cmp.Diff(stepping, bounded, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("bounded walk differs (-stepping +bounded):\n%s", diff)
	}
}

func TestBoundedMaxDepth(t *testing.T) {
	src := view(t, 100, 100, 0, 0)
	dst := view(t, 100, 100, 100, 0)

	sections := NewBounded(src, dst, geometry.NewPoint2D(50, 50), minDepth, 1000).Collect()
	require.Len(t, sections, 12)
	assert.InDelta(t, 45, sections[0].Point.X, 1e-9)
	assert.InDelta(t, 1000, sections[0].Depth, 1e-6)
	assert.InDelta(t, 5000/4.5, sections[0].MaxDepth, 1e-6)
	assert.InDelta(t, 34, sections[11].Point.X, 1e-9)
	assertWellFormed(t, sections)
}

func TestBoundedClipsToTarget(t *testing.T) {
	src := view(t, 100, 100, 0, 0)
	narrow := view(t, 40, 100, 100, 0)

	sections := NewBounded(src, narrow, geometry.NewPoint2D(50, 50), minDepth, math.Inf(1)).Collect()
	require.Len(t, sections, 6)
	assert.InDelta(t, 39, sections[0].Point.X, 1e-9)
	assert.InDelta(t, 5000.0/11, sections[0].Depth, 1e-6)
	assert.InDelta(t, 5000/10.5, sections[0].MaxDepth, 1e-6)
	assert.InDelta(t, 34, sections[5].Point.X, 1e-9)
	assertWellFormed(t, sections)
}

func TestBoundedMiss(t *testing.T) {
	src := view(t, 100, 100, 0, 0)
	narrow := view(t, 40, 100, -100, 0)

	_, ok := NewBounded(src, narrow, geometry.NewPoint2D(50, 50), minDepth, math.Inf(1)).Next()
	assert.False(t, ok)
}

func TestBoundedIncludesLastColumn(t *testing.T) {
	src := view(t, 100, 100, 0, 0)
	dst := view(t, 100, 100, -100, 0)
	pixel := geometry.NewPoint2D(98, 50)

	assert.Len(t, New(src, dst, pixel, minDepth).Collect(), 1)
	assert.Equal(t,
		[]geometry.Point2D{{X: 98, Y: 50}, {X: 99, Y: 50}},
		points(NewBounded(src, dst, pixel, minDepth, math.Inf(1)).Collect()))
}
