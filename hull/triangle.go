// Package hull computes the convex boundary of a reconstructed point cloud:
// the minimal set of triangular faces enclosing every point, plus the
// enclosed volume. The hull is display/export metadata only and never feeds
// back into carving.
package hull

import "github.com/golang/geo/r3"

// Triangle is one face of a hull, wound so its normal points outward.
type Triangle struct {
	p0 r3.Vector
	p1 r3.Vector
	p2 r3.Vector

	normal r3.Vector
}

// NewTriangle creates a new triangle with an outward unit normal derived
// from the winding order.
func NewTriangle(p0, p1, p2 r3.Vector) *Triangle {
	return &Triangle{
		p0:     p0,
		p1:     p1,
		p2:     p2,
		normal: PlaneNormal(p0, p1, p2),
	}
}

// Points returns the three vertices of the triangle in winding order.
func (t *Triangle) Points() [3]r3.Vector {
	return [3]r3.Vector{t.p0, t.p1, t.p2}
}

// Normal returns the triangle's unit normal.
func (t *Triangle) Normal() r3.Vector {
	return t.normal
}

// Area returns the triangle's area.
func (t *Triangle) Area() float64 {
	return t.p1.Sub(t.p0).Cross(t.p2.Sub(t.p0)).Norm() / 2
}

// Centroid returns the triangle's centroid.
func (t *Triangle) Centroid() r3.Vector {
	return t.p0.Add(t.p1).Add(t.p2).Mul(1. / 3.)
}

// PlaneNormal returns the unit normal of the plane through the three points,
// following the right-hand rule on the winding order.
func PlaneNormal(p0, p1, p2 r3.Vector) r3.Vector {
	return p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
}
