package scan

import (
	"context"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.viam.com/utils"

	"github.com/turnscan/visualhull/camera"
	"github.com/turnscan/visualhull/carve"
	"github.com/turnscan/visualhull/hull"
	"github.com/turnscan/visualhull/pointcloud"
	"github.com/turnscan/visualhull/silhouette"
)

// ErrReconstructionInFlight is returned when a run is requested while one is
// already executing. Requests are rejected, never queued: a run's grid state
// is not safely shared across concurrent invocations.
var ErrReconstructionInFlight = errors.New("a reconstruction is already in flight")

// Report is the outcome of one reconstruction.
type Report struct {
	// Cloud is the carved point cloud, possibly empty.
	Cloud pointcloud.PointCloud
	// PointCount is Cloud.Size().
	PointCount int
	// Empty flags a carve that removed every voxel; a valid outcome distinct
	// from failure.
	Empty bool
	// Hull is the convex boundary of the cloud, or nil when unavailable
	// (fewer than 4 non-coplanar points).
	Hull *hull.Hull
	// Duration is the wall time of the run.
	Duration time.Duration
}

// Reconstructor turns capture sets into point clouds. It enforces at most
// one run in flight at a time; the engine itself is synchronous and callers
// wanting a responsive display run it through ReconstructAsync.
type Reconstructor struct {
	cfg      Config
	onEvent  carve.EventFunc
	logger   golog.Logger
	inFlight atomic.Bool
}

// NewReconstructor validates the config and returns a host for runs.
// onEvent may be nil; when set it receives the engine's lifecycle events
// synchronously from the carving call stack.
func NewReconstructor(cfg Config, onEvent carve.EventFunc, logger golog.Logger) (*Reconstructor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid scan config")
	}
	if logger == nil {
		logger = golog.Global
	}
	return &Reconstructor{cfg: cfg, onEvent: onEvent, logger: logger}, nil
}

// Reconstruct runs the full pipeline on the capture set: silhouette
// extraction, voxel carving, point extraction, and hull building. It returns
// carve.ErrCancelled if ctx is cancelled mid-scan, and rejects the call with
// ErrReconstructionInFlight if another run is executing.
func (r *Reconstructor) Reconstruct(ctx context.Context, set CaptureSet) (*Report, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return nil, ErrReconstructionInFlight
	}
	defer r.inFlight.Store(false)

	start := time.Now()
	if err := set.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid capture set")
	}
	if r.cfg.NumImages != 0 && len(set) != r.cfg.NumImages {
		return nil, errors.Errorf("capture set has %d frames; configured for %d", len(set), r.cfg.NumImages)
	}

	width, height := set.Dimensions()
	ring, err := camera.NewRing(camera.RingConfig{
		NumViews:    len(set),
		Radius:      r.cfg.cameraRadius(),
		Elevation:   r.cfg.CameraElevation,
		Center:      r.cfg.BoundingCenter,
		ImageWidth:  width,
		ImageHeight: height,
		FocalScale:  r.cfg.FocalScale,
	})
	if err != nil {
		return nil, err
	}

	views := make([]carve.View, len(set))
	for i, frame := range set {
		mask := silhouette.Extract(frame.Image, silhouette.ExtractorOptions{
			Polarity:  r.cfg.Polarity,
			BlurSigma: r.cfg.BlurSigma,
		})
		r.logger.Debugw("extracted silhouette",
			"view", i,
			"angle", frame.AngleDegrees,
			"foreground", mask.ForegroundCount(),
		)
		views[i] = carve.View{Mask: mask, Pose: ring.Pose(i)}
	}

	carver, err := carve.NewCarver(carve.CarverConfig{
		Resolution:     r.cfg.Resolution,
		BoundingSize:   r.cfg.BoundingSize,
		BoundingCenter: r.cfg.BoundingCenter,
		OnEvent:        r.onEvent,
	}, r.logger)
	if err != nil {
		return nil, err
	}
	result, err := carver.Run(ctx, views)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Cloud:      result.Cloud,
		PointCount: result.PointCount,
		Empty:      result.Empty,
	}
	boundary, err := hull.NewFromPointCloud(result.Cloud)
	switch {
	case err == nil:
		report.Hull = boundary
		r.logger.Debugw("built boundary hull",
			"triangles", len(boundary.Triangles()),
			"volume", boundary.Volume(),
		)
	case errors.Is(err, hull.ErrHullUnavailable):
		r.logger.Debugw("boundary hull unavailable", "points", result.PointCount)
	default:
		return nil, errors.Wrap(err, "building boundary hull")
	}

	report.Duration = time.Since(start)
	r.logger.Infow("reconstruction complete",
		"points", report.PointCount,
		"empty", report.Empty,
		"duration", report.Duration,
	)
	return report, nil
}

// AsyncResult delivers the outcome of ReconstructAsync.
type AsyncResult struct {
	Report *Report
	Err    error
}

// ReconstructAsync runs Reconstruct on its own goroutine so a display loop
// stays responsive, delivering the outcome over the returned channel. The
// single-flight rule still applies.
func (r *Reconstructor) ReconstructAsync(ctx context.Context, set CaptureSet) <-chan AsyncResult {
	ch := make(chan AsyncResult, 1)
	utils.PanicCapturingGo(func() {
		report, err := r.Reconstruct(ctx, set)
		ch <- AsyncResult{Report: report, Err: err}
	})
	return ch
}
