package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"depth-estimator/internal/estimator"
	"depth-estimator/internal/fusion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesEstimator(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	p, err := cfg.Params()
	require.NoError(t, err)
	want := estimator.DefaultParams()
	assert.Equal(t, want.MinDepth, p.MinDepth)
	assert.True(t, math.IsInf(p.MaxDepth, 1))
	assert.Equal(t, want.MaxDiff, p.MaxDiff)
	assert.Equal(t, want.MaxEquivalentMatches, p.MaxEquivalentMatches)
	assert.Equal(t, want.MinScanPoints, p.MinScanPoints)
	assert.Equal(t, want.ScanStep, p.ScanStep)
	assert.Equal(t, estimator.Stepping, p.Strategy)
	assert.Equal(t, estimator.PixelCost{}, p.Cost)

	opts, err := cfg.FusionOptions()
	require.NoError(t, err)
	assert.Equal(t, fusion.Options{Mode: fusion.Median}, opts)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"min_depth": 150,
		"max_depth": 2000,
		"cost": "kernel",
		"kernel_size": 5,
		"strategy": "bounded",
		"fusion": "mean"
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 150.0, cfg.MinDepth)
	assert.Equal(t, 50.0, cfg.MaxDiff)
	assert.Equal(t, 2, cfg.MinScanPoints)

	p, err := cfg.Params()
	require.NoError(t, err)
	assert.Equal(t, 2000.0, p.MaxDepth)
	assert.Equal(t, estimator.Bounded, p.Strategy)
	kc, ok := p.Cost.(estimator.KernelCost)
	require.True(t, ok, "cost is %T", p.Cost)
	assert.Equal(t, 5, kc.Kernel.Size)
	// Spread defaults to the kernel size.
	assert.InDelta(t, math.Exp(-1.0/10), kc.Kernel.At(1, 0), 1e-12)

	opts, err := cfg.FusionOptions()
	require.NoError(t, err)
	assert.Equal(t, fusion.Mean, opts.Mode)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	cfg := Default()
	cfg.Cost = CostSubPixel
	cfg.Workers = 3
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "max_depth")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"min_depth": `), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"min_depth": -1}`), 0644))
	_, err = Load(invalid)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"zero min depth":   func(c *Config) { c.MinDepth = 0 },
		"inverted range":   func(c *Config) { c.MaxDepth = 100 },
		"no ties":          func(c *Config) { c.MaxEquivalentMatches = 0 },
		"zero step":        func(c *Config) { c.ScanStep = 0 },
		"unknown cost":     func(c *Config) { c.Cost = "census" },
		"even kernel":      func(c *Config) { c.Cost, c.KernelSize = CostKernel, 4 },
		"negative spread":  func(c *Config) { c.Cost, c.GaussianSpread = CostKernel, -1 },
		"unknown strategy": func(c *Config) { c.Strategy = "spiral" },
		"bounded stride":   func(c *Config) { c.Strategy, c.ScanStep = "bounded", 2 },
		"unknown fusion":   func(c *Config) { c.Fusion = "max" },
		"negative workers": func(c *Config) { c.Workers = -2 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
