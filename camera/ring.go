// Package camera models the fixed ring of calibrated viewpoints produced by
// a turntable scan: one pinhole camera per turntable angle, mounted at a
// fixed radius and elevation, always aimed at the center of the scan volume.
package camera

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultRadius is the camera distance from the rotation axis, in the same
// physical units as the scan volume.
const DefaultRadius = 2.5

// DefaultFocalScale relates the focal length to the image width
// (fx = fy = FocalScale * width), matching the mounted optics.
const DefaultFocalScale = 1.2

// RingConfig describes a ring of evenly spaced views around the scan volume.
type RingConfig struct {
	// NumViews is the number of evenly spaced camera positions.
	NumViews int
	// Radius is the camera distance from the rotation axis.
	Radius float64
	// Elevation is the camera height relative to the scan center.
	Elevation float64
	// Center is the point every view is aimed at.
	Center r3.Vector
	// ImageWidth and ImageHeight are the pixel dimensions of each capture.
	ImageWidth, ImageHeight int
	// FocalScale scales the image width into the focal length. Zero picks
	// DefaultFocalScale.
	FocalScale float64
}

// Validate ensures the config describes a usable ring.
func (cfg RingConfig) Validate() error {
	if cfg.NumViews <= 0 {
		return errors.Errorf("number of views must be positive, got %d", cfg.NumViews)
	}
	if cfg.Radius <= 0 {
		return errors.Errorf("camera radius must be positive, got %v", cfg.Radius)
	}
	if cfg.ImageWidth <= 0 || cfg.ImageHeight <= 0 {
		return errors.Errorf("image dimensions must be positive, got %dx%d", cfg.ImageWidth, cfg.ImageHeight)
	}
	if cfg.FocalScale < 0 {
		return errors.Errorf("focal scale cannot be negative, got %v", cfg.FocalScale)
	}
	return nil
}

// Ring holds the precomputed pose of every view. Poses are pure functions of
// the config, so a ring can be rebuilt bit-identically for any run.
type Ring struct {
	cfg   RingConfig
	poses []*ViewPose
}

// NewRing precomputes the pose for every view index.
func NewRing(cfg RingConfig) (*Ring, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid ring config")
	}
	focalScale := cfg.FocalScale
	if focalScale == 0 {
		focalScale = DefaultFocalScale
	}
	fx := focalScale * float64(cfg.ImageWidth)

	poses := make([]*ViewPose, cfg.NumViews)
	for i := range poses {
		angle := 2 * math.Pi * float64(i) / float64(cfg.NumViews)
		position := r3.Vector{
			X: cfg.Center.X + cfg.Radius*math.Cos(angle),
			Y: cfg.Center.Y + cfg.Elevation,
			Z: cfg.Center.Z + cfg.Radius*math.Sin(angle),
		}
		poses[i] = &ViewPose{
			Position: position,
			rotation: lookAt(position, cfg.Center),
			fx:       fx,
			fy:       fx,
			cx:       float64(cfg.ImageWidth) / 2,
			cy:       float64(cfg.ImageHeight) / 2,
			width:    cfg.ImageWidth,
			height:   cfg.ImageHeight,
		}
	}
	return &Ring{cfg: cfg, poses: poses}, nil
}

// NumViews returns the number of views in the ring.
func (r *Ring) NumViews() int {
	return len(r.poses)
}

// Pose returns the view pose for the given angle index in [0, NumViews).
func (r *Ring) Pose(index int) *ViewPose {
	return r.poses[index]
}

// Poses returns every pose in angle order.
func (r *Ring) Poses() []*ViewPose {
	return r.poses
}

// lookAt builds the camera rotation whose columns are the right, up, and
// forward axes of a camera at pos aimed at target. World up is +Y, falling
// back to +Z when the view direction is vertical.
func lookAt(pos, target r3.Vector) *mat.Dense {
	forward := target.Sub(pos)
	if n := forward.Norm(); n < 1e-8 {
		forward = r3.Vector{X: 0, Y: 0, Z: 1}
	} else {
		forward = forward.Mul(1 / n)
	}

	up := r3.Vector{X: 0, Y: 1, Z: 0}
	if math.Abs(forward.Dot(up)) > 0.999 {
		up = r3.Vector{X: 0, Y: 0, Z: 1}
	}

	right := forward.Cross(up).Normalize()
	up = right.Cross(forward)

	return mat.NewDense(3, 3, []float64{
		right.X, up.X, forward.X,
		right.Y, up.Y, forward.Y,
		right.Z, up.Z, forward.Z,
	})
}
