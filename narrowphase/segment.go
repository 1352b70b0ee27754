package narrowphase

import (
	"math"

	"github.com/sylphengine/sylph/geometry"
)

// Raycast reports where a ray first strikes a shape. Normal is the unit
// surface normal at the hit point, facing back along the ray.
type Raycast struct {
	Point    geometry.Vec2
	Normal   geometry.Vec2
	Distance float64
}

// RaycastCircle intersects a ray against a circle shape. A maxLength of zero
// means the ray is unbounded. Rays that start inside the circle miss.
func RaycastCircle(ray geometry.Ray, maxLength float64, shape *geometry.Shape, tx geometry.Transform) (Raycast, bool) {
	c := shape.WorldCenter(tx)
	r := shape.Radius()

	// Quadratic in the ray parameter t for |s + t*d - c| = r.
	d := geometry.Normalized(ray.Direction)
	m := ray.Start.Sub(c)
	if m.LenSqr() < r*r {
		return Raycast{}, false
	}
	b := m.Dot(d)
	cc := m.LenSqr() - r*r
	disc := b*b - cc
	if disc < 0 {
		return Raycast{}, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 {
		return Raycast{}, false
	}
	if maxLength > 0 && t > maxLength {
		return Raycast{}, false
	}
	p := ray.Start.Add(d.Mul(t))
	return Raycast{
		Point:    p,
		Normal:   geometry.Normalized(p.Sub(c)),
		Distance: t,
	}, true
}

// RaycastSegment intersects a ray against a segment shape. Rays parallel to
// the segment miss, including the collinear case where no single hit point
// exists.
func RaycastSegment(ray geometry.Ray, maxLength float64, shape *geometry.Shape, tx geometry.Transform) (Raycast, bool) {
	verts := shape.Vertices()
	p1 := tx.Apply(verts[0])
	p2 := tx.Apply(verts[1])

	d := geometry.Normalized(ray.Direction)
	e := p2.Sub(p1)
	denom := geometry.Cross(d, e)
	if math.Abs(denom) < geometry.Epsilon {
		return Raycast{}, false
	}
	diff := p1.Sub(ray.Start)
	t := geometry.Cross(diff, e) / denom
	u := geometry.Cross(diff, d) / denom
	if t < 0 || u < 0 || u > 1 {
		return Raycast{}, false
	}
	if maxLength > 0 && t > maxLength {
		return Raycast{}, false
	}
	n := geometry.Normalized(geometry.Left(e))
	if n.Dot(d) > 0 {
		n = n.Mul(-1)
	}
	return Raycast{
		Point:    ray.Start.Add(d.Mul(t)),
		Normal:   n,
		Distance: t,
	}, true
}

// SegmentIntersection finds the crossing point of two segment shapes.
// Parallel and collinear pairs report no intersection.
func SegmentIntersection(s1 *geometry.Shape, tx1 geometry.Transform, s2 *geometry.Shape, tx2 geometry.Transform) (geometry.Vec2, bool) {
	v1 := s1.Vertices()
	v2 := s2.Vertices()
	a1 := tx1.Apply(v1[0])
	a2 := tx1.Apply(v1[1])
	b1 := tx2.Apply(v2[0])
	b2 := tx2.Apply(v2[1])

	da := a2.Sub(a1)
	db := b2.Sub(b1)
	denom := geometry.Cross(da, db)
	if math.Abs(denom) < geometry.Epsilon {
		return geometry.Vec2{}, false
	}
	diff := b1.Sub(a1)
	t := geometry.Cross(diff, db) / denom
	u := geometry.Cross(diff, da) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return geometry.Vec2{}, false
	}
	return a1.Add(da.Mul(t)), true
}
