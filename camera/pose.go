package camera

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// minDepth is the camera-space depth below which a point counts as behind
// the lens and cannot be projected.
const minDepth = 1e-6

// ViewPose is the position and orientation of one view on the ring, plus the
// pinhole intrinsics needed to project world points into its image.
type ViewPose struct {
	// Position is the camera center in world coordinates.
	Position r3.Vector

	rotation *mat.Dense // columns: right, up, forward
	fx, fy   float64
	cx, cy   float64
	width    int
	height   int
}

// ImageSize returns the pixel dimensions of the view's image.
func (p *ViewPose) ImageSize() (int, int) {
	return p.width, p.height
}

// cameraSpace maps a world point into the camera's right/up/forward basis.
func (p *ViewPose) cameraSpace(pt r3.Vector) r3.Vector {
	w := pt.Sub(p.Position)
	return r3.Vector{
		X: p.rotation.At(0, 0)*w.X + p.rotation.At(1, 0)*w.Y + p.rotation.At(2, 0)*w.Z,
		Y: p.rotation.At(0, 1)*w.X + p.rotation.At(1, 1)*w.Y + p.rotation.At(2, 1)*w.Z,
		Z: p.rotation.At(0, 2)*w.X + p.rotation.At(1, 2)*w.Y + p.rotation.At(2, 2)*w.Z,
	}
}

// Project maps a world point to pixel coordinates in this view. ok is false
// when the point is behind the camera or projects outside the image bounds;
// for carving both cases are a background vote, never an abort.
func (p *ViewPose) Project(pt r3.Vector) (u, v int, ok bool) {
	c := p.cameraSpace(pt)
	if c.Z <= minDepth {
		return 0, 0, false
	}
	u = int(math.Round(p.fx*c.X/c.Z + p.cx))
	v = int(math.Round(p.fy*c.Y/c.Z + p.cy))
	if u < 0 || u >= p.width || v < 0 || v >= p.height {
		return 0, 0, false
	}
	return u, v, true
}

// Ray back-projects a pixel coordinate into a world-space ray from the
// camera center. Useful for synthesizing test silhouettes and debugging.
func (p *ViewPose) Ray(u, v float64) (origin, dir r3.Vector) {
	cam := r3.Vector{
		X: (u - p.cx) / p.fx,
		Y: (v - p.cy) / p.fy,
		Z: 1,
	}
	world := r3.Vector{
		X: p.rotation.At(0, 0)*cam.X + p.rotation.At(0, 1)*cam.Y + p.rotation.At(0, 2)*cam.Z,
		Y: p.rotation.At(1, 0)*cam.X + p.rotation.At(1, 1)*cam.Y + p.rotation.At(1, 2)*cam.Z,
		Z: p.rotation.At(2, 0)*cam.X + p.rotation.At(2, 1)*cam.Y + p.rotation.At(2, 2)*cam.Z,
	}
	return p.Position, world.Normalize()
}
