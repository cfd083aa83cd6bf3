package hull

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/turnscan/visualhull/pointcloud"
)

// ErrHullUnavailable is returned when a point set has no three-dimensional
// convex hull: fewer than four distinct points, or all points collinear or
// coplanar. Callers treat it as "no hull", not as a failed run.
var ErrHullUnavailable = errors.New("convex hull unavailable: need at least 4 non-coplanar points")

// Hull is the convex boundary of a point set.
type Hull struct {
	triangles []*Triangle
	volume    float64
}

// Triangles returns the hull faces, wound with outward normals.
func (h *Hull) Triangles() []*Triangle {
	return h.triangles
}

// Volume returns the volume enclosed by the hull.
func (h *Hull) Volume() float64 {
	return h.volume
}

// NewFromPointCloud computes the convex hull of all points in the cloud.
func NewFromPointCloud(cloud pointcloud.PointCloud) (*Hull, error) {
	return New(pointcloud.VectorsFromCloud(cloud))
}

// New computes the convex hull of the given points with an incremental
// algorithm: build an initial tetrahedron from extreme points, then fold each
// remaining point in by replacing the faces it can see with a fan of new
// faces around the horizon.
func New(points []r3.Vector) (*Hull, error) {
	pts := dedupe(points)
	if len(pts) < 4 {
		return nil, ErrHullUnavailable
	}
	eps := epsilonFor(pts)

	b := hullBuilder{points: pts, eps: eps}
	if err := b.initialSimplex(); err != nil {
		return nil, err
	}
	for i := range pts {
		b.addPoint(i)
	}

	h := &Hull{triangles: make([]*Triangle, 0, len(b.faces))}
	for _, f := range b.faces {
		tri := NewTriangle(pts[f.a], pts[f.b], pts[f.c])
		h.triangles = append(h.triangles, tri)
		h.volume += pts[f.a].Dot(pts[f.b].Cross(pts[f.c])) / 6
	}
	return h, nil
}

// face is one hull facet. The plane is stored as a unit normal and offset so
// visibility checks use true distances regardless of triangle size.
type face struct {
	a, b, c int
	normal  r3.Vector
	offset  float64
}

func (f face) distance(p r3.Vector) float64 {
	return f.normal.Dot(p) - f.offset
}

type hullBuilder struct {
	points []r3.Vector
	faces  []face
	inner  r3.Vector // a point strictly inside the hull, used to orient faces
	eps    float64
}

// makeFace builds a facet through three vertices, wound so the normal points
// away from the builder's interior point.
func (b *hullBuilder) makeFace(a, c1, c2 int) face {
	normal := PlaneNormal(b.points[a], b.points[c1], b.points[c2])
	offset := normal.Dot(b.points[a])
	if normal.Dot(b.inner)-offset > 0 {
		c1, c2 = c2, c1
		normal = normal.Mul(-1)
		offset = normal.Dot(b.points[a])
	}
	return face{a: a, b: c1, c: c2, normal: normal, offset: offset}
}

// initialSimplex finds four extreme, non-degenerate points and seeds the hull
// with the tetrahedron they span.
func (b *hullBuilder) initialSimplex() error {
	pts := b.points

	// Most separated pair along any distance, seeded from the first point.
	v0, v1 := 0, -1
	best := 0.0
	for i := 1; i < len(pts); i++ {
		if d := pts[i].Sub(pts[0]).Norm2(); d > best {
			best = d
			v1 = i
		}
	}
	if v1 < 0 || math.Sqrt(best) < b.eps {
		return ErrHullUnavailable
	}

	// Farthest point from the v0-v1 line.
	dir := pts[v1].Sub(pts[v0]).Normalize()
	v2, best := -1, 0.0
	for i := range pts {
		rel := pts[i].Sub(pts[v0])
		if d := rel.Sub(dir.Mul(rel.Dot(dir))).Norm(); d > best {
			best = d
			v2 = i
		}
	}
	if v2 < 0 || best < b.eps {
		return ErrHullUnavailable // all points collinear
	}

	// Farthest point from the v0-v1-v2 plane.
	normal := PlaneNormal(pts[v0], pts[v1], pts[v2])
	offset := normal.Dot(pts[v0])
	v3, best := -1, 0.0
	for i := range pts {
		if d := math.Abs(normal.Dot(pts[i]) - offset); d > best {
			best = d
			v3 = i
		}
	}
	if v3 < 0 || best < b.eps {
		return ErrHullUnavailable // all points coplanar
	}

	b.inner = pts[v0].Add(pts[v1]).Add(pts[v2]).Add(pts[v3]).Mul(0.25)
	b.faces = []face{
		b.makeFace(v0, v1, v2),
		b.makeFace(v0, v1, v3),
		b.makeFace(v0, v2, v3),
		b.makeFace(v1, v2, v3),
	}
	return nil
}

// addPoint folds one point into the hull. Points inside (or on) the current
// hull leave it unchanged.
func (b *hullBuilder) addPoint(idx int) {
	p := b.points[idx]

	kept := b.faces[:0]
	var visible []face
	for _, f := range b.faces {
		if f.distance(p) > b.eps {
			visible = append(visible, f)
		} else {
			kept = append(kept, f)
		}
	}
	if len(visible) == 0 {
		return
	}
	b.faces = kept

	// The horizon is every directed edge of a visible face whose mirror
	// belongs to a kept face; each horizon edge gains a new face to the point.
	edges := make(map[[2]int]struct{}, len(visible)*3)
	for _, f := range visible {
		edges[[2]int{f.a, f.b}] = struct{}{}
		edges[[2]int{f.b, f.c}] = struct{}{}
		edges[[2]int{f.c, f.a}] = struct{}{}
	}
	for e := range edges {
		if _, interior := edges[[2]int{e[1], e[0]}]; interior {
			continue
		}
		b.faces = append(b.faces, b.makeFace(e[0], e[1], idx))
	}
}

// dedupe drops exact duplicate points while preserving order.
func dedupe(points []r3.Vector) []r3.Vector {
	seen := make(map[r3.Vector]struct{}, len(points))
	out := make([]r3.Vector, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// epsilonFor scales the degeneracy tolerance to the extent of the data.
func epsilonFor(points []r3.Vector) float64 {
	maxNorm := 0.0
	for _, p := range points {
		maxNorm = math.Max(maxNorm, p.Norm())
	}
	return 1e-9 * (1 + maxNorm)
}
