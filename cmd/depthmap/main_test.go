package main

import (
	"os"
	"path/filepath"
	"testing"

	"depth-estimator/internal/config"
	"depth-estimator/internal/manifest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputMode(t *testing.T) {
	tests := []struct {
		name    string
		opts    options
		want    string
		wantErr bool
	}{
		{name: "dir", opts: options{dir: "caps"}, want: "dir"},
		{name: "grid", opts: options{grid: "lf.png"}, want: "grid"},
		{name: "stereo", opts: options{left: "l.png", right: "r.png"}, want: "stereo"},
		{name: "synthetic", opts: options{synthetic: true}, want: "synthetic"},
		{name: "none", opts: options{}, wantErr: true},
		{name: "left only", opts: options{left: "l.png"}, wantErr: true},
		{name: "two modes", opts: options{dir: "caps", grid: "lf.png"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.inputMode()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunSynthetic(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "run.json")
	cfg := config.Default()
	cfg.Fusion = "mean"
	require.NoError(t, cfg.Save(cfgPath))

	out := filepath.Join(dir, "out", "depth.tiff")
	require.NoError(t, run(options{
		configPath: cfgPath,
		synthetic:  true,
		scale:      1,
		out:        out,
	}))

	_, err := os.Stat(out)
	require.NoError(t, err)

	m, err := manifest.Load(manifest.PathFor(out))
	require.NoError(t, err)
	assert.Equal(t, "synthetic", m.Mode)
	assert.Equal(t, "mean", m.Config.Fusion)
	assert.Equal(t, 8, m.Targets)
	assert.Equal(t, 120, m.Width)
	assert.Greater(t, m.Stats.Coverage(), 0.5)
	assert.InDelta(t, 600, m.Stats.Mean, 1e-6)
}

func TestRunRejectsBadOutput(t *testing.T) {
	err := run(options{synthetic: true, scale: 1, out: filepath.Join(t.TempDir(), "depth.gif")})
	assert.Error(t, err)
}
