// Package config holds the tunables of a depth estimation run and their
// JSON persistence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"depth-estimator/internal/estimator"
	"depth-estimator/internal/fusion"
)

// ErrInvalid is returned for configurations that cannot drive a run.
var ErrInvalid = errors.New("invalid config")

// Cost function names.
const (
	CostPixel    = "pixel"
	CostKernel   = "kernel"
	CostSubPixel = "subpixel"
)

// Config is the on-disk form of every matching and fusion parameter.
type Config struct {
	MinDepth float64 `json:"min_depth"`
	MaxDepth float64 `json:"max_depth,omitempty"` // 0 means unbounded

	MaxDiff              float64 `json:"max_diff"`
	MaxEquivalentMatches int     `json:"max_equivalent_matches"`
	MinScanPoints        int     `json:"min_scan_points"`
	ScanStep             float64 `json:"scan_step"`

	Cost           string  `json:"cost"`
	KernelSize     int     `json:"kernel_size"`
	GaussianSpread float64 `json:"gaussian_spread,omitempty"` // 0 means KernelSize

	Strategy string `json:"strategy"`
	Fusion   string `json:"fusion"`
	Workers  int    `json:"workers,omitempty"` // 0 means one per CPU
}

// Default returns the configuration the estimator was tuned with.
func Default() Config {
	p := estimator.DefaultParams()
	return Config{
		MinDepth:             p.MinDepth,
		MaxDiff:              p.MaxDiff,
		MaxEquivalentMatches: p.MaxEquivalentMatches,
		MinScanPoints:        p.MinScanPoints,
		ScanStep:             p.ScanStep,
		Cost:                 CostPixel,
		KernelSize:           1,
		Strategy:             p.Strategy.String(),
		Fusion:               fusion.Median.String(),
	}
}

// Load reads a config file. Fields the file leaves out keep their
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first unusable field, wrapped in ErrInvalid.
func (c Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	if _, err := fusion.ParseMode(c.Fusion); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", ErrInvalid, c.Workers)
	}
	return nil
}

// Params converts the config to estimator parameters, building the cost
// function it names.
func (c Config) Params() (estimator.Params, error) {
	cost, err := c.cost()
	if err != nil {
		return estimator.Params{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	strategy, err := estimator.ParseStrategy(c.Strategy)
	if err != nil {
		return estimator.Params{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	maxDepth := c.MaxDepth
	if maxDepth == 0 {
		maxDepth = math.Inf(1)
	}

	p := estimator.DefaultParams().
		WithDepthRange(c.MinDepth, maxDepth).
		WithThresholds(c.MaxDiff, c.MaxEquivalentMatches, c.MinScanPoints).
		WithStrategy(strategy).
		WithCost(cost)
	p.ScanStep = c.ScanStep
	if err := p.Validate(); err != nil {
		return estimator.Params{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return p, nil
}

// FusionOptions returns the fusion settings.
func (c Config) FusionOptions() (fusion.Options, error) {
	mode, err := fusion.ParseMode(c.Fusion)
	if err != nil {
		return fusion.Options{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return fusion.Options{Workers: c.Workers, Mode: mode}, nil
}

func (c Config) cost() (estimator.Cost, error) {
	switch strings.ToLower(c.Cost) {
	case "", CostPixel:
		return estimator.PixelCost{}, nil
	case CostSubPixel:
		return estimator.SubPixelCost{}, nil
	case CostKernel:
		spread := c.GaussianSpread
		if spread == 0 {
			spread = float64(c.KernelSize)
		}
		k, err := estimator.NewGaussianKernel(c.KernelSize, spread)
		if err != nil {
			return nil, err
		}
		return estimator.KernelCost{Kernel: k}, nil
	default:
		return nil, fmt.Errorf("unknown cost %q", c.Cost)
	}
}
