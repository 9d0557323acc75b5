// Command depthmap estimates a depth map for the source view of a
// multi-camera capture and writes it as an image.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"depth-estimator/internal/capture"
	"depth-estimator/internal/config"
	"depth-estimator/internal/estimator"
	"depth-estimator/internal/fusion"
	"depth-estimator/internal/image"
	"depth-estimator/internal/manifest"
	"depth-estimator/internal/preview"
	"depth-estimator/internal/version"

	"github.com/golang/glog"
)

// options are the parsed command-line flags.
type options struct {
	configPath string
	dir        string
	grid       string
	left       string
	right      string
	synthetic  bool

	baseline float64
	spacing  float64
	fov      float64 // degrees; 0 keeps the input mode's default
	scale    float64

	out      string
	logScale bool
	preview  string
}

// inputMode reports which capture the flags describe.
func (o options) inputMode() (string, error) {
	var modes []string
	if o.dir != "" {
		modes = append(modes, "dir")
	}
	if o.grid != "" {
		modes = append(modes, "grid")
	}
	if o.left != "" || o.right != "" {
		if o.left == "" || o.right == "" {
			return "", errors.New("-left and -right must be given together")
		}
		modes = append(modes, "stereo")
	}
	if o.synthetic {
		modes = append(modes, "synthetic")
	}
	switch len(modes) {
	case 0:
		return "", errors.New("one of -dir, -grid, -left/-right or -synthetic is required")
	case 1:
		return modes[0], nil
	default:
		return "", fmt.Errorf("only one input mode allowed, got %v", modes)
	}
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Matching config (JSON); defaults when empty")
	flag.StringVar(&o.dir, "dir", "", "Folder of rectified captures named \"X = <x>, Y = <y>\"")
	flag.StringVar(&o.grid, "grid", "", "Light-field image holding a 9x9 grid of sub-apertures")
	flag.StringVar(&o.left, "left", "", "Left image of a stereo pair (source)")
	flag.StringVar(&o.right, "right", "", "Right image of a stereo pair")
	flag.BoolVar(&o.synthetic, "synthetic", false, "Render a textured plane into a 3x3 camera array")
	flag.Float64Var(&o.baseline, "baseline", 200, "Stereo baseline in world units")
	flag.Float64Var(&o.spacing, "spacing", 0, "Camera spacing for -dir and -grid (0 = default)")
	flag.Float64Var(&o.fov, "fov", 0, "Field of view in degrees (0 = default for the input)")
	flag.Float64Var(&o.scale, "scale", 1, "Downscale factor applied to every view")
	flag.StringVar(&o.out, "out", "depth.png", "Output depth map (.png or .tiff)")
	flag.BoolVar(&o.logScale, "log", false, "Write log-scaled depth")
	flag.StringVar(&o.preview, "preview", "", "Also write an OpenCV colour-mapped preview PNG")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()
	defer glog.Flush()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if err := run(o); err != nil {
		glog.Flush()
		fmt.Fprintf(os.Stderr, "depthmap: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: depthmap (-dir <folder> | -grid <image> | -left <img> -right <img> | -synthetic) [-out depth.png]")
		os.Exit(1)
	}
}

func run(o options) error {
	mode, err := o.inputMode()
	if err != nil {
		return err
	}

	cfg := config.Default()
	if o.configPath != "" {
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}
	fusionOpts, err := cfg.FusionOptions()
	if err != nil {
		return err
	}
	est, err := estimator.New(params)
	if err != nil {
		return err
	}

	start := time.Now()
	manifestPath := manifest.PathFor(o.out)
	record := manifest.New(mode, cfg)

	fmt.Printf("=== Loading %s capture ===\n", mode)
	c, err := loadCapture(o, mode, record, manifestPath)
	if err != nil {
		return err
	}
	if o.scale > 1 {
		if c, err = capture.Downscale(c, o.scale); err != nil {
			return err
		}
	}
	fmt.Printf("Source: %dx%d at %v, %d target view(s)\n",
		c.Source.Width(), c.Source.Height(), c.Source.COP(), len(c.Targets))
	record.SetSource(manifestPath, c.Source.Image().Path)

	fmt.Printf("\n=== Estimating depth ===\n")
	fmt.Printf("  Depth range: %.1f - %.1f\n", params.MinDepth, params.MaxDepth)
	fmt.Printf("  Cost: %v, strategy: %s, fusion: %s\n", params.Cost, params.Strategy, fusionOpts.Mode)
	fmt.Printf("  Reject: cost > %.1f, ties > %d, points < %d\n",
		params.MaxDiff, params.MaxEquivalentMatches, params.MinScanPoints)

	dm, err := fusion.New(est, fusionOpts).Fuse(c.Source, c.Targets)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	stats := dm.Stats()
	fmt.Printf("Done in %v: %v\n", elapsed.Round(time.Millisecond), stats)

	fmt.Printf("\n=== Writing output ===\n")
	if dir := filepath.Dir(o.out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := dm.Write(o.out, o.logScale); err != nil {
		return err
	}
	fmt.Printf("Depth map: %s\n", o.out)

	if o.preview != "" {
		if err := preview.Write(o.preview, dm, o.logScale); err != nil {
			return fmt.Errorf("preview: %w", err)
		}
		fmt.Printf("Preview: %s\n", o.preview)
	}

	record.Finish(dm, len(c.Targets), elapsed)
	if err := record.Save(manifestPath); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	fmt.Printf("Manifest: %s (run %s)\n", manifestPath, record.RunID)
	return nil
}

func loadCapture(o options, mode string, record *manifest.File, manifestPath string) (*capture.Capture, error) {
	switch mode {
	case "dir":
		opts := capture.DefaultDirectoryOptions()
		if o.spacing > 0 {
			opts.Spacing = o.spacing
		}
		if o.fov > 0 {
			opts.FOV = capture.Degrees(o.fov)
		}
		c, err := capture.LoadDirectory(o.dir, opts)
		if err != nil {
			return nil, err
		}
		for _, v := range c.Views() {
			record.AddInput(manifestPath, v.Image().Path)
		}
		return c, nil

	case "grid":
		img, err := image.Load(o.grid)
		if err != nil {
			return nil, err
		}
		record.AddInput(manifestPath, o.grid)
		opts := capture.DefaultGridOptions()
		if o.spacing > 0 {
			opts.Spacing = o.spacing
		}
		if o.fov > 0 {
			opts.FOV = capture.Degrees(o.fov)
		}
		return capture.SplitGrid(img, opts)

	case "stereo":
		left, err := image.Load(o.left)
		if err != nil {
			return nil, err
		}
		right, err := image.Load(o.right)
		if err != nil {
			return nil, err
		}
		record.AddInput(manifestPath, o.left)
		record.AddInput(manifestPath, o.right)
		fov := 70.0
		if o.fov > 0 {
			fov = o.fov
		}
		return capture.Binocular(left, right, o.baseline, capture.Degrees(fov))

	case "synthetic":
		fov := 90.0
		if o.fov > 0 {
			fov = o.fov
		}
		spacing := 20.0
		if o.spacing > 0 {
			spacing = o.spacing
		}
		return capture.PlaneScene{Depth: 600, Seed: 1}.RenderGrid(120, 120, 3, 3, spacing, capture.Degrees(fov))

	default:
		return nil, fmt.Errorf("unknown input mode %q", mode)
	}
}
