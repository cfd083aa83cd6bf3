// Package pointcloud defines a point cloud container and read/write support
// for portable point cloud file formats.
//
// The implementation keeps points in insertion order so that clouds built by
// a deterministic process serialize identically run to run.
package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// MetaData is data about what's stored in the point cloud.
type MetaData struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// PointCloud is a general purpose container of points.
type PointCloud interface {
	// Size returns the number of points in the cloud.
	Size() int

	// MetaData returns the bounding extents of the cloud.
	MetaData() MetaData

	// Set places the given point in the cloud. Non-finite coordinates are
	// rejected. Setting a position that already exists is a no-op.
	Set(p r3.Vector) error

	// At reports whether a point exists at the given position.
	At(x, y, z float64) bool

	// Iterate calls fn for each point in insertion order. If fn returns
	// false, iteration stops.
	Iterate(fn func(p r3.Vector) bool)
}

// NewVector is a convenience method for creating a vector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// NewMetaData returns new meta data with bounds ready for merging.
func NewMetaData() MetaData {
	return MetaData{
		MinX: math.MaxFloat64, MaxX: -math.MaxFloat64,
		MinY: math.MaxFloat64, MaxY: -math.MaxFloat64,
		MinZ: math.MaxFloat64, MaxZ: -math.MaxFloat64,
	}
}

// Merge expands the bounds to include the given point.
func (meta *MetaData) Merge(v r3.Vector) {
	meta.MinX = math.Min(meta.MinX, v.X)
	meta.MaxX = math.Max(meta.MaxX, v.X)
	meta.MinY = math.Min(meta.MinY, v.Y)
	meta.MaxY = math.Max(meta.MaxY, v.Y)
	meta.MinZ = math.Min(meta.MinZ, v.Z)
	meta.MaxZ = math.Max(meta.MaxZ, v.Z)
}

// basicPointCloud is the basic implementation of the PointCloud interface,
// backed by a slice of points in insertion order plus an index for lookups.
type basicPointCloud struct {
	points   []r3.Vector
	indexMap map[r3.Vector]int
	meta     MetaData
}

// New returns an empty PointCloud backed by a basicPointCloud.
func New() PointCloud {
	return NewWithPrealloc(0)
}

// NewWithPrealloc returns an empty, preallocated PointCloud backed by a
// basicPointCloud.
func NewWithPrealloc(size int) PointCloud {
	return &basicPointCloud{
		points:   make([]r3.Vector, 0, size),
		indexMap: make(map[r3.Vector]int, size),
		meta:     NewMetaData(),
	}
}

func (cloud *basicPointCloud) Size() int {
	return len(cloud.points)
}

func (cloud *basicPointCloud) MetaData() MetaData {
	return cloud.meta
}

func (cloud *basicPointCloud) At(x, y, z float64) bool {
	_, ok := cloud.indexMap[r3.Vector{X: x, Y: y, Z: z}]
	return ok
}

func (cloud *basicPointCloud) Set(p r3.Vector) error {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) ||
		math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) || math.IsInf(p.Z, 0) {
		return errors.Errorf("point (%v, %v, %v) is not finite", p.X, p.Y, p.Z)
	}
	if _, ok := cloud.indexMap[p]; ok {
		return nil
	}
	cloud.indexMap[p] = len(cloud.points)
	cloud.points = append(cloud.points, p)
	cloud.meta.Merge(p)
	return nil
}

func (cloud *basicPointCloud) Iterate(fn func(p r3.Vector) bool) {
	for _, p := range cloud.points {
		if !fn(p) {
			return
		}
	}
}

// VectorsFromCloud flattens a cloud into a slice of vectors in iteration order.
func VectorsFromCloud(cloud PointCloud) []r3.Vector {
	vs := make([]r3.Vector, 0, cloud.Size())
	cloud.Iterate(func(p r3.Vector) bool {
		vs = append(vs, p)
		return true
	})
	return vs
}
