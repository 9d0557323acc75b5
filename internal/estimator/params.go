package estimator

import (
	"fmt"
	"math"
	"strings"
)

// Strategy selects how the epipolar line is walked.
type Strategy int

const (
	// Stepping walks from the infinite-depth point until the line leaves
	// the target image or reaches the minimum depth.
	Stepping Strategy = iota
	// Bounded clips the [MinDepth, MaxDepth] segment of the line to the
	// target image before walking it.
	Bounded
)

func (s Strategy) String() string {
	switch s {
	case Stepping:
		return "stepping"
	case Bounded:
		return "bounded"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses the names returned by Strategy.String.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", "stepping":
		return Stepping, nil
	case "bounded":
		return Bounded, nil
	default:
		return 0, fmt.Errorf("unknown scanline strategy %q", name)
	}
}

// Params controls correspondence matching.
type Params struct {
	MinDepth float64 // Nearest depth searched; must be positive
	MaxDepth float64 // Farthest depth searched by the Bounded strategy

	MaxDiff              float64 // Highest best-match cost still accepted
	MaxEquivalentMatches int     // Most candidates allowed to tie for the best cost
	MinScanPoints        int     // Fewest candidates needed for a decision

	ScanStep float64 // Pixels per step along the dominant axis (Stepping only)
	Strategy Strategy
	Cost     Cost
}

// DefaultParams returns the matching parameters used for light-field
// captures with roughly one unit between neighbouring cameras.
func DefaultParams() Params {
	return Params{
		MinDepth: 300,
		MaxDepth: math.Inf(1),

		MaxDiff:              50,
		MaxEquivalentMatches: 2,
		MinScanPoints:        2,

		ScanStep: 1.0,
		Strategy: Stepping,
		Cost:     PixelCost{},
	}
}

// WithDepthRange returns a copy of params searching [minDepth, maxDepth].
func (p Params) WithDepthRange(minDepth, maxDepth float64) Params {
	p.MinDepth = minDepth
	p.MaxDepth = maxDepth
	return p
}

// WithThresholds returns a copy of params with custom rejection rules.
func (p Params) WithThresholds(maxDiff float64, maxEquivalent, minScanPoints int) Params {
	p.MaxDiff = maxDiff
	p.MaxEquivalentMatches = maxEquivalent
	p.MinScanPoints = minScanPoints
	return p
}

// WithCost returns a copy of params using a different cost function.
func (p Params) WithCost(c Cost) Params {
	p.Cost = c
	return p
}

// WithStrategy returns a copy of params using a different scanline walk.
func (p Params) WithStrategy(s Strategy) Params {
	p.Strategy = s
	return p
}

// Validate checks that the parameters describe a searchable depth range.
func (p Params) Validate() error {
	switch {
	case !(p.MinDepth > 0) || math.IsInf(p.MinDepth, 1):
		return fmt.Errorf("min depth %v must be positive and finite", p.MinDepth)
	case !(p.MaxDepth > p.MinDepth):
		return fmt.Errorf("max depth %v must exceed min depth %v", p.MaxDepth, p.MinDepth)
	case p.MaxEquivalentMatches < 1:
		return fmt.Errorf("max equivalent matches %d must be at least 1", p.MaxEquivalentMatches)
	case p.MinScanPoints < 1:
		return fmt.Errorf("min scan points %d must be at least 1", p.MinScanPoints)
	case !(p.ScanStep > 0):
		return fmt.Errorf("scan step %v must be positive", p.ScanStep)
	case p.Cost == nil:
		return fmt.Errorf("no cost function")
	case p.Strategy == Bounded && p.ScanStep != 1:
		return fmt.Errorf("scan step %v is not supported by the bounded strategy", p.ScanStep)
	}
	return nil
}
