package scan

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/turnscan/visualhull/camera"
	"github.com/turnscan/visualhull/carve"
	"github.com/turnscan/visualhull/silhouette"
)

// DefaultNumImages is the historical default view count of the scanner.
const DefaultNumImages = 8

// DefaultBoundingSize is the default physical edge length of the carved cube.
const DefaultBoundingSize = 2.0

// Config is the full parameter surface of one reconstruction run.
type Config struct {
	// Resolution is the voxel grid side length, capped at carve.MaxResolution.
	Resolution int
	// NumImages is the expected view count; a capture set of a different
	// length is rejected. Zero accepts any (validated) length.
	NumImages int
	// BoundingSize is the physical edge length of the cube being carved.
	BoundingSize float64
	// BoundingCenter is the center of the cube.
	BoundingCenter r3.Vector
	// Polarity selects object-darker vs object-lighter silhouettes.
	Polarity silhouette.Polarity
	// BlurSigma smooths images before thresholding; zero keeps the default.
	BlurSigma float64
	// CameraRadius is the camera distance from the rotation axis; zero keeps
	// the default.
	CameraRadius float64
	// CameraElevation is the camera height relative to the bounding center.
	CameraElevation float64
	// FocalScale scales image width into focal length; zero keeps the default.
	FocalScale float64
}

// DefaultConfig mirrors the scanner's stock setup: 8 views, a 40³ grid over
// a side-2 cube at the origin, dark object on a light background.
func DefaultConfig() Config {
	return Config{
		Resolution:   carve.DefaultResolution,
		NumImages:    DefaultNumImages,
		BoundingSize: DefaultBoundingSize,
		Polarity:     silhouette.ObjectDark,
		BlurSigma:    silhouette.DefaultBlurSigma,
		CameraRadius: camera.DefaultRadius,
		FocalScale:   camera.DefaultFocalScale,
	}
}

// Validate rejects configurations that cannot start a run.
func (cfg Config) Validate() error {
	if cfg.Resolution <= 0 || cfg.Resolution > carve.MaxResolution {
		return errors.Errorf("resolution must be in [1, %d], got %d", carve.MaxResolution, cfg.Resolution)
	}
	if cfg.NumImages < 0 {
		return errors.Errorf("number of images cannot be negative, got %d", cfg.NumImages)
	}
	if cfg.BoundingSize <= 0 {
		return errors.Errorf("bounding size must be positive, got %v", cfg.BoundingSize)
	}
	if cfg.CameraRadius < 0 {
		return errors.Errorf("camera radius cannot be negative, got %v", cfg.CameraRadius)
	}
	if cfg.FocalScale < 0 {
		return errors.Errorf("focal scale cannot be negative, got %v", cfg.FocalScale)
	}
	return nil
}

// cameraRadius returns the configured radius or the default.
func (cfg Config) cameraRadius() float64 {
	if cfg.CameraRadius == 0 {
		return camera.DefaultRadius
	}
	return cfg.CameraRadius
}
