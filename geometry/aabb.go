package geometry

import "math"

// AABB is an axis-aligned bounding box. The zero value is a degenerate box
// at the origin, which is valid: degenerate boxes have zero area but still
// participate in overlap and containment tests.
type AABB struct {
	Min Vec2
	Max Vec2
}

// NewAABB builds an AABB from explicit bounds, swapping components as needed
// so that Min <= Max holds on both axes.
func NewAABB(minX, minY, maxX, maxY float64) AABB {
	return AABB{
		Min: Vec2{math.Min(minX, maxX), math.Min(minY, maxY)},
		Max: Vec2{math.Max(minX, maxX), math.Max(minY, maxY)},
	}
}

// AABBFromPoints returns the smallest AABB enclosing the given points.
func AABBFromPoints(points ...Vec2) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	aabb := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		aabb.Min = Vec2{math.Min(aabb.Min.X(), p.X()), math.Min(aabb.Min.Y(), p.Y())}
		aabb.Max = Vec2{math.Max(aabb.Max.X(), p.X()), math.Max(aabb.Max.Y(), p.Y())}
	}
	return aabb
}

// Width returns the extent along x.
func (a AABB) Width() float64 { return a.Max.X() - a.Min.X() }

// Height returns the extent along y.
func (a AABB) Height() float64 { return a.Max.Y() - a.Min.Y() }

// Area returns width times height.
func (a AABB) Area() float64 { return a.Width() * a.Height() }

// Perimeter returns the boundary length. The broad-phase trees use perimeter
// rather than area as the insertion cost metric.
func (a AABB) Perimeter() float64 { return 2 * (a.Width() + a.Height()) }

// Center returns the midpoint of the box.
func (a AABB) Center() Vec2 {
	return Vec2{(a.Min.X() + a.Max.X()) * 0.5, (a.Min.Y() + a.Max.Y()) * 0.5}
}

// Extents returns the half-widths of the box.
func (a AABB) Extents() Vec2 {
	return Vec2{a.Width() * 0.5, a.Height() * 0.5}
}

// Degenerate reports whether the box has zero extent on either axis.
func (a AABB) Degenerate() bool {
	return a.Width() <= 0 || a.Height() <= 0
}

// Overlaps reports whether a and b intersect, boundary contact included.
func (a AABB) Overlaps(b AABB) bool {
	return a.Max.X() >= b.Min.X() && a.Min.X() <= b.Max.X() &&
		a.Max.Y() >= b.Min.Y() && a.Min.Y() <= b.Max.Y()
}

// Contains reports whether the point p is inside or on the boundary of a.
func (a AABB) Contains(p Vec2) bool {
	return p.X() >= a.Min.X() && p.X() <= a.Max.X() &&
		p.Y() >= a.Min.Y() && p.Y() <= a.Max.Y()
}

// ContainsAABB reports whether b lies entirely within a.
func (a AABB) ContainsAABB(b AABB) bool {
	return a.Min.X() <= b.Min.X() && a.Min.Y() <= b.Min.Y() &&
		b.Max.X() <= a.Max.X() && b.Max.Y() <= a.Max.Y()
}

// Union returns the smallest AABB enclosing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: Vec2{math.Min(a.Min.X(), b.Min.X()), math.Min(a.Min.Y(), b.Min.Y())},
		Max: Vec2{math.Max(a.Max.X(), b.Max.X()), math.Max(a.Max.Y(), b.Max.Y())},
	}
}

// Expanded returns a copy of a grown by margin on every side. A negative
// margin shrinks the box, clamping at a degenerate box around the center.
func (a AABB) Expanded(margin float64) AABB {
	m := Vec2{margin, margin}
	out := AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
	if out.Min.X() > out.Max.X() {
		c := (a.Min.X() + a.Max.X()) * 0.5
		out.Min[0], out.Max[0] = c, c
	}
	if out.Min.Y() > out.Max.Y() {
		c := (a.Min.Y() + a.Max.Y()) * 0.5
		out.Min[1], out.Max[1] = c, c
	}
	return out
}

// Translated returns a copy of a moved by d.
func (a AABB) Translated(d Vec2) AABB {
	return AABB{Min: a.Min.Add(d), Max: a.Max.Add(d)}
}

// IntersectsRay reports whether the segment from ray.Start of the given
// length along ray.Direction passes through the box. The test is the
// separating-axis form used by tree raycasts: an axis perpendicular to the
// segment plus the segment's own bounding box.
func (a AABB) IntersectsRay(ray Ray, maxLength float64) bool {
	end := ray.Start.Add(ray.Direction.Mul(maxLength))
	segment := AABBFromPoints(ray.Start, end)
	if !a.Overlaps(segment) {
		return false
	}
	v := Left(ray.Direction)
	absV := Vec2{math.Abs(v.X()), math.Abs(v.Y())}
	c := a.Center()
	h := a.Extents()
	separation := math.Abs(v.Dot(ray.Start.Sub(c))) - absV.Dot(h)
	return separation <= 0
}
