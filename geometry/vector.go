// Package geometry provides the planar primitives the collision pipeline is
// built on: vectors, rigid transforms, axis-aligned bounding boxes, rays, and
// convex shapes with support-point queries.
//
// Vectors are mgl64.Vec2 values. Value semantics replace any notion of shared
// mutable vector state: every operation returns a new value and shapes own
// their backing storage exclusively.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is the vector type used across the library.
type Vec2 = mgl64.Vec2

// Epsilon is the tolerance used for zero tests and tie-breaking throughout
// the geometry and narrow-phase code. It is intentionally coarser than
// machine epsilon; collision code deals in accumulated floating point error,
// not single operations.
const Epsilon = 1.0e-9

// Cross returns the planar cross product a.x*b.y - a.y*b.x.
func Cross(a, b Vec2) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// Left returns the counter-clockwise perpendicular of v.
func Left(v Vec2) Vec2 {
	return Vec2{-v.Y(), v.X()}
}

// Right returns the clockwise perpendicular of v.
func Right(v Vec2) Vec2 {
	return Vec2{v.Y(), -v.X()}
}

// Normalized returns v scaled to unit length. A vector shorter than Epsilon
// is returned unchanged; normalizing a zero vector is a guarded no-op.
func Normalized(v Vec2) Vec2 {
	l := v.Len()
	if l < Epsilon {
		return v
	}
	return Vec2{v.X() / l, v.Y() / l}
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{a.X() + (b.X()-a.X())*t, a.Y() + (b.Y()-a.Y())*t}
}

// Rotate rotates v by the rotation whose cosine and sine are given.
func Rotate(v Vec2, cos, sin float64) Vec2 {
	return Vec2{v.X()*cos - v.Y()*sin, v.X()*sin + v.Y()*cos}
}

// RotateInverse rotates v by the inverse of the rotation whose cosine and
// sine are given.
func RotateInverse(v Vec2, cos, sin float64) Vec2 {
	return Vec2{v.X()*cos + v.Y()*sin, -v.X()*sin + v.Y()*cos}
}

// TripleProduct computes (a x b) x c expanded for the plane. It is used by
// the narrow phase to find a direction perpendicular to an edge pointing
// toward a reference point.
func TripleProduct(a, b, c Vec2) Vec2 {
	dot := a.X()*b.Y() - b.X()*a.Y()
	return Vec2{-c.Y() * dot, c.X() * dot}
}

// EqualWithin reports whether a and b are component-wise equal within eps.
func EqualWithin(a, b Vec2, eps float64) bool {
	return math.Abs(a.X()-b.X()) <= eps && math.Abs(a.Y()-b.Y()) <= eps
}
