// Package scan hosts the reconstruction pipeline: it owns run configuration,
// validates an incoming capture set, and drives silhouette extraction, voxel
// carving, hull building, and serialization as one single-flight operation.
package scan

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// angleToleranceDegrees is how far a capture angle may drift from perfect
// 360/N spacing before the set is rejected.
const angleToleranceDegrees = 1e-6

// Frame is one entry of a capture set: a photograph and the turntable angle
// it was taken at.
type Frame struct {
	// AngleDegrees is the turntable angle of this capture.
	AngleDegrees float64
	// Image is the raw photograph.
	Image image.Image
}

// CaptureSet is the ordered sequence of frames from one scan. It is handed
// in whole by the capture source and treated as immutable.
type CaptureSet []Frame

// Dimensions returns the pixel dimensions shared by every frame. Call
// Validate first.
func (cs CaptureSet) Dimensions() (width, height int) {
	b := cs[0].Image.Bounds()
	return b.Dx(), b.Dy()
}

// Validate checks the capture set invariants: at least one frame, matching
// image dimensions across frames, and angles strictly increasing modulo 360
// and evenly spaced by 360/N.
func (cs CaptureSet) Validate() error {
	if len(cs) == 0 {
		return errors.New("capture set has no frames")
	}
	for i, f := range cs {
		if f.Image == nil {
			return errors.Errorf("frame %d has no image", i)
		}
	}
	b := cs[0].Image.Bounds()
	for i, f := range cs {
		if fb := f.Image.Bounds(); fb.Dx() != b.Dx() || fb.Dy() != b.Dy() {
			return errors.Errorf("frame %d is %dx%d; expected %dx%d to match frame 0",
				i, fb.Dx(), fb.Dy(), b.Dx(), b.Dy())
		}
	}
	spacing := 360.0 / float64(len(cs))
	for i := 1; i < len(cs); i++ {
		step := math.Mod(cs[i].AngleDegrees-cs[i-1].AngleDegrees+360, 360)
		if math.Abs(step-spacing) > angleToleranceDegrees {
			return errors.Errorf("frame %d angle %v is not %v degrees after frame %d (got step %v)",
				i, cs[i].AngleDegrees, spacing, i-1, step)
		}
	}
	return nil
}
