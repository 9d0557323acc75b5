package depthmap

import (
	"fmt"
	"slices"
)

// Reducer combines the votes for one pixel into a single depth.
type Reducer func(votes []float64) float64

// Median returns the median of the valid votes: the middle value for an odd
// count, the mean of the two middle values for an even count, and Invalid
// when no vote is valid. votes is reordered.
func Median(votes []float64) float64 {
	valid := votes[:0]
	for _, v := range votes {
		if IsValid(v) {
			valid = append(valid, v)
		}
	}
	n := len(valid)
	if n == 0 {
		return Invalid
	}
	slices.Sort(valid)
	mid := (n - 1) / 2
	if n%2 == 1 {
		return valid[mid]
	}
	return (valid[mid] + valid[mid+1]) / 2
}

// Mean averages the votes when every one of them is valid, and returns
// Invalid otherwise.
func Mean(votes []float64) float64 {
	if len(votes) == 0 {
		return Invalid
	}
	var sum float64
	for _, v := range votes {
		if !IsValid(v) {
			return Invalid
		}
		sum += v
	}
	return sum / float64(len(votes))
}

// Fuse reduces a stack of equally sized maps pixel by pixel.
func Fuse(maps []*DepthMap, reduce Reducer) (*DepthMap, error) {
	if len(maps) == 0 {
		return nil, fmt.Errorf("fuse: no depth maps")
	}
	out := New(maps[0].Width, maps[0].Height)
	for i, m := range maps {
		if m.Width != out.Width || m.Height != out.Height {
			return nil, fmt.Errorf("fuse: map %d is %dx%d, want %dx%d", i, m.Width, m.Height, out.Width, out.Height)
		}
	}
	for y := 0; y < out.Height; y++ {
		FuseRow(maps, y, out.Row(y), reduce)
	}
	return out, nil
}

// FuseRow reduces row y of every map into dst. Rows are independent, so
// callers may fuse different rows concurrently.
func FuseRow(maps []*DepthMap, y int, dst []float64, reduce Reducer) {
	votes := make([]float64, len(maps))
	for x := range dst {
		for i, m := range maps {
			votes[i] = m.At(x, y)
		}
		dst[x] = reduce(votes)
	}
}
