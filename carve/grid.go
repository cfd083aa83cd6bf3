// Package carve implements the multi-view voxel carving engine: a dense
// occupancy grid over the scan volume is whittled down by removing every
// voxel whose center projects onto background in any silhouette view. What
// survives approximates the visual hull of the object.
package carve

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/turnscan/visualhull/pointcloud"
)

// MaxResolution caps the voxel grid side length. Carving cost is
// O(R³ · views), so doubling R multiplies the work by eight; the cap is the
// engine's only safeguard against runaway cost.
const MaxResolution = 128

// DefaultResolution is the grid side length used when the caller does not
// pick one.
const DefaultResolution = 40

// VoxelGrid is a cubic lattice of R³ cells spanning a physical bounding cube.
// Every cell starts occupied; carving only ever removes.
type VoxelGrid struct {
	resolution int
	size       float64
	center     r3.Vector
	occupied   []bool
	count      int
}

// NewVoxelGrid returns a fully occupied grid of resolution³ voxels spanning
// a cube with the given edge length, centered at center.
func NewVoxelGrid(resolution int, size float64, center r3.Vector) (*VoxelGrid, error) {
	if resolution <= 0 || resolution > MaxResolution {
		return nil, errors.Errorf("grid resolution must be in [1, %d], got %d", MaxResolution, resolution)
	}
	if size <= 0 {
		return nil, errors.Errorf("bounding cube size must be positive, got %v", size)
	}
	n := resolution * resolution * resolution
	occupied := make([]bool, n)
	for i := range occupied {
		occupied[i] = true
	}
	return &VoxelGrid{
		resolution: resolution,
		size:       size,
		center:     center,
		occupied:   occupied,
		count:      n,
	}, nil
}

// Resolution returns the grid side length in voxels.
func (g *VoxelGrid) Resolution() int {
	return g.resolution
}

// Size returns the physical edge length of the bounding cube.
func (g *VoxelGrid) Size() float64 {
	return g.size
}

// OccupiedCount returns the number of voxels still occupied.
func (g *VoxelGrid) OccupiedCount() int {
	return g.count
}

func (g *VoxelGrid) index(ix, iy, iz int) int {
	return (ix*g.resolution+iy)*g.resolution + iz
}

// Occupied reports whether the voxel at the given grid indices survives.
func (g *VoxelGrid) Occupied(ix, iy, iz int) bool {
	return g.occupied[g.index(ix, iy, iz)]
}

// carve marks a voxel unoccupied.
func (g *VoxelGrid) carve(ix, iy, iz int) {
	i := g.index(ix, iy, iz)
	if g.occupied[i] {
		g.occupied[i] = false
		g.count--
	}
}

// axisCoord maps a grid index along one axis to the physical voxel center
// coordinate, spanning the cube edge endpoints inclusively.
func (g *VoxelGrid) axisCoord(i, centerAxis int) float64 {
	var c float64
	switch centerAxis {
	case 0:
		c = g.center.X
	case 1:
		c = g.center.Y
	default:
		c = g.center.Z
	}
	if g.resolution == 1 {
		return c
	}
	return c - g.size/2 + float64(i)*g.size/float64(g.resolution-1)
}

// VoxelCenter returns the physical center of the voxel at the given indices.
func (g *VoxelGrid) VoxelCenter(ix, iy, iz int) r3.Vector {
	return r3.Vector{
		X: g.axisCoord(ix, 0),
		Y: g.axisCoord(iy, 1),
		Z: g.axisCoord(iz, 2),
	}
}

// VoxelDiagonal returns the length of one voxel's space diagonal, a natural
// tolerance when comparing carved geometry against analytic shapes.
func (g *VoxelGrid) VoxelDiagonal() float64 {
	if g.resolution == 1 {
		return g.size * math.Sqrt(3)
	}
	return g.size / float64(g.resolution-1) * math.Sqrt(3)
}

// PointCloud converts all occupied voxel centers into a point cloud in
// lexicographic grid-index order, so identical grids always yield identical
// clouds (and files).
func (g *VoxelGrid) PointCloud() (pointcloud.PointCloud, error) {
	pc := pointcloud.NewWithPrealloc(g.count)
	for ix := 0; ix < g.resolution; ix++ {
		for iy := 0; iy < g.resolution; iy++ {
			for iz := 0; iz < g.resolution; iz++ {
				if !g.Occupied(ix, iy, iz) {
					continue
				}
				if err := pc.Set(g.VoxelCenter(ix, iy, iz)); err != nil {
					return nil, err
				}
			}
		}
	}
	return pc, nil
}
