// Package manifest records how a depth map was produced in a JSON sidecar
// next to it.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"depth-estimator/internal/config"
	"depth-estimator/internal/depthmap"
	"depth-estimator/internal/version"

	"github.com/google/uuid"
)

// Ext is appended to an output path to name its manifest.
const Ext = ".json"

// File describes one estimation run.
type File struct {
	Version int       `json:"version"`
	RunID   string    `json:"run_id"`
	Tool    string    `json:"tool"`
	Created time.Time `json:"created"`

	// Input paths (relative to the manifest)
	Inputs []string `json:"inputs"`
	Source string   `json:"source,omitempty"`
	Mode   string   `json:"mode"` // Input mode: dir, grid, stereo or synthetic

	Width   int `json:"width"`
	Height  int `json:"height"`
	Targets int `json:"targets"`

	Config  config.Config  `json:"config"`
	Stats   depthmap.Stats `json:"stats"`
	Elapsed Duration       `json:"elapsed"`
}

// Duration marshals as a Go duration string.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// New starts a manifest for a run with a fresh identifier.
func New(mode string, cfg config.Config) *File {
	return &File{
		Version: 1,
		RunID:   uuid.NewString(),
		Tool:    version.String(),
		Created: time.Now().UTC(),
		Mode:    mode,
		Config:  cfg,
	}
}

// PathFor returns the manifest path for an output file.
func PathFor(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + Ext
}

// AddInput records an input path relative to the manifest location.
func (f *File) AddInput(manifestPath, input string) {
	f.Inputs = append(f.Inputs, relativeTo(manifestPath, input))
}

// SetSource records the source view's image path.
func (f *File) SetSource(manifestPath, source string) {
	if source == "" {
		return
	}
	f.Source = relativeTo(manifestPath, source)
}

func relativeTo(manifestPath, p string) string {
	if !filepath.IsAbs(p) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return p
		}
		p = abs
	}
	dir, err := filepath.Abs(filepath.Dir(manifestPath))
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return p
	}
	return rel
}

// Finish records the result and how long the run took.
func (f *File) Finish(dm *depthmap.DepthMap, targets int, elapsed time.Duration) {
	f.Width, f.Height = dm.Width, dm.Height
	f.Targets = targets
	f.Stats = dm.Stats()
	f.Elapsed = Duration(elapsed)
}

// Save writes the manifest as indented JSON.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a manifest.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if _, err := uuid.Parse(f.RunID); err != nil {
		return nil, fmt.Errorf("manifest %s: bad run id: %w", path, err)
	}
	return &f, nil
}
