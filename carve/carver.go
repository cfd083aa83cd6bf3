package carve

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/turnscan/visualhull/camera"
	"github.com/turnscan/visualhull/pointcloud"
	"github.com/turnscan/visualhull/silhouette"
)

// ErrCancelled is returned when a run observes cooperative cancellation.
// It is a first-class outcome distinct from both success and failure; a
// cancelled run discards its grid and never reports a partial point cloud.
var ErrCancelled = errors.New("carving cancelled")

// View pairs one silhouette mask with the pose that captured it. Carving
// consults every view for every voxel.
type View struct {
	Mask *silhouette.Mask
	Pose *camera.ViewPose
}

// CarverConfig are the run parameters of a carving engine.
type CarverConfig struct {
	// Resolution is the voxel grid side length R; cost is O(R³ · views).
	Resolution int
	// BoundingSize is the physical edge length of the cube being carved.
	BoundingSize float64
	// BoundingCenter is the center of the cube, normally the object center.
	BoundingCenter r3.Vector
	// OnEvent, when set, receives lifecycle events synchronously.
	OnEvent EventFunc
}

// Validate ensures the config can produce a grid.
func (cfg CarverConfig) Validate() error {
	if cfg.Resolution <= 0 || cfg.Resolution > MaxResolution {
		return errors.Errorf("grid resolution must be in [1, %d], got %d", MaxResolution, cfg.Resolution)
	}
	if cfg.BoundingSize <= 0 {
		return errors.Errorf("bounding cube size must be positive, got %v", cfg.BoundingSize)
	}
	return nil
}

// Result is the outcome of a successful carving run.
type Result struct {
	// Cloud holds the surviving voxel centers in deterministic scan order.
	Cloud pointcloud.PointCloud
	// PointCount is Cloud.Size().
	PointCount int
	// Empty flags a run that carved away every voxel. It is a valid outcome
	// (silhouettes inconsistent or object out of frame), not a failure.
	Empty bool
}

// Carver carves voxel grids against silhouette views. A Carver is stateless
// across runs; each run owns its grid exclusively and discards it after
// point extraction.
type Carver struct {
	cfg     CarverConfig
	onEvent EventFunc
	logger  golog.Logger
}

// NewCarver validates the config and returns a carving engine.
func NewCarver(cfg CarverConfig, logger golog.Logger) (*Carver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = golog.Global
	}
	return &Carver{cfg: cfg, onEvent: cfg.OnEvent, logger: logger}, nil
}

// validateViews checks the carving inputs before any voxel work starts.
func validateViews(views []View) error {
	if len(views) == 0 {
		return errors.New("carving requires at least one silhouette view")
	}
	for i, v := range views {
		if v.Mask == nil {
			return errors.Errorf("view %d has no silhouette mask", i)
		}
		if v.Pose == nil {
			return errors.Errorf("view %d has no camera pose", i)
		}
	}
	w, h := views[0].Mask.Width(), views[0].Mask.Height()
	for i, v := range views {
		if v.Mask.Width() != w || v.Mask.Height() != h {
			return errors.Errorf("view %d mask is %dx%d; expected %dx%d to match view 0",
				i, v.Mask.Width(), v.Mask.Height(), w, h)
		}
	}
	return nil
}

// Run carves a fresh grid against the given views and extracts the surviving
// voxel centers. Cancellation is cooperative: ctx is polled once per grid row
// during the scan, and a cancelled run returns ErrCancelled with no result.
//
// A voxel survives only if every view projects its center onto a foreground
// mask pixel; the first background vote from any view carves it and
// short-circuits the remaining views. The rule is deliberately "any one
// vote carves", which also makes the outcome independent of view order.
func (c *Carver) Run(ctx context.Context, views []View) (*Result, error) {
	if err := validateViews(views); err != nil {
		c.emit(Event{Kind: EventFailed, Err: err})
		return nil, err
	}
	grid, err := NewVoxelGrid(c.cfg.Resolution, c.cfg.BoundingSize, c.cfg.BoundingCenter)
	if err != nil {
		c.emit(Event{Kind: EventFailed, Err: err})
		return nil, err
	}

	c.emit(Event{Kind: EventStarted})
	res := grid.Resolution()
	for ix := 0; ix < res; ix++ {
		for iy := 0; iy < res; iy++ {
			if err := ctx.Err(); err != nil {
				c.logger.Debugw("carving cancelled", "slice", ix, "row", iy)
				c.emit(Event{Kind: EventCancelled})
				return nil, ErrCancelled
			}
			for iz := 0; iz < res; iz++ {
				center := grid.VoxelCenter(ix, iy, iz)
				for _, view := range views {
					u, v, visible := view.Pose.Project(center)
					if !visible || !view.Mask.Foreground(u, v) {
						grid.carve(ix, iy, iz)
						break
					}
				}
			}
		}
		c.emit(Event{Kind: EventProgress, Fraction: float64(ix+1) / float64(res)})
	}

	cloud, err := grid.PointCloud()
	if err != nil {
		c.emit(Event{Kind: EventFailed, Err: err})
		return nil, err
	}
	c.logger.Debugw("carving finished",
		"resolution", res,
		"views", len(views),
		"occupied", grid.OccupiedCount(),
		"carved", res*res*res-grid.OccupiedCount(),
	)
	c.emit(Event{Kind: EventCompleted, PointCount: cloud.Size()})
	return &Result{
		Cloud:      cloud,
		PointCount: cloud.Size(),
		Empty:      cloud.Size() == 0,
	}, nil
}
