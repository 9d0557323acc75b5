// Package preview renders depth maps through OpenCV's colour maps for quick
// inspection.
package preview

import (
	"fmt"
	"math"
	"os"

	"depth-estimator/internal/depthmap"

	"gocv.io/x/gocv"
)

// Gray returns the map as an 8-bit mask of valid pixels and an 8-bit
// intensity image with near depths bright. Invalid pixels are 0 in both.
func Gray(dm *depthmap.DepthMap, logScale bool) (levels, valid []byte) {
	norm := dm.Normalize(logScale)
	levels = make([]byte, len(norm))
	valid = make([]byte, len(norm))
	for i, v := range norm {
		if math.IsNaN(v) {
			continue
		}
		levels[i] = byte(255 - math.Round(v*254))
		valid[i] = 255
	}
	return levels, valid
}

// Encode colour-maps dm with the Jet palette, near depths red and far
// depths blue, and encodes it as PNG. Invalid pixels are black.
func Encode(dm *depthmap.DepthMap, logScale bool) ([]byte, error) {
	if dm.Width == 0 || dm.Height == 0 {
		return nil, fmt.Errorf("empty depth map")
	}
	levels, valid := Gray(dm, logScale)

	gray, err := gocv.NewMatFromBytes(dm.Height, dm.Width, gocv.MatTypeCV8U, levels)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	mask, err := gocv.NewMatFromBytes(dm.Height, dm.Width, gocv.MatTypeCV8U, valid)
	if err != nil {
		return nil, err
	}
	defer mask.Close()

	colored := gocv.NewMat()
	defer colored.Close()
	gocv.ApplyColorMap(gray, &colored, gocv.ColormapJet)

	// Copy only valid pixels onto a black canvas
	out := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), dm.Height, dm.Width, gocv.MatTypeCV8UC3)
	defer out.Close()
	colored.CopyToWithMask(&out, mask)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}

// Write saves the Jet preview of dm as a PNG file.
func Write(path string, dm *depthmap.DepthMap, logScale bool) error {
	data, err := Encode(dm, logScale)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
