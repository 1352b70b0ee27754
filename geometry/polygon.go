package geometry

import (
	"fmt"
	"math"
)

// Cleanse normalizes an arbitrary finite point set into a usable polygon
// boundary: the result is counter-clockwise and contains no two consecutive
// coincident or collinear points. The input is never modified. Cleansing
// fails if fewer than three points survive.
func Cleanse(points []Vec2) ([]Vec2, error) {
	if points == nil {
		return nil, fmt.Errorf("%w: points", ErrNilArgument)
	}
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 points, got %d", ErrInsufficientVertices, len(points))
	}
	work := make([]Vec2, len(points))
	copy(work, points)
	if signedArea(work) < 0 {
		for i, j := 0, len(work)-1; i < j; i, j = i+1, j-1 {
			work[i], work[j] = work[j], work[i]
		}
	}
	for changed := true; changed && len(work) >= 3; {
		changed = false

		// Drop coincident runs first, comparing each point against the
		// last kept vertex so a duplicate never hides a distinct corner
		// from the collinearity test below.
		dedup := make([]Vec2, 0, len(work))
		for _, p := range work {
			if len(dedup) > 0 && p.Sub(dedup[len(dedup)-1]).Len() < Epsilon {
				changed = true
				continue
			}
			dedup = append(dedup, p)
		}
		for len(dedup) > 1 && dedup[len(dedup)-1].Sub(dedup[0]).Len() < Epsilon {
			dedup = dedup[:len(dedup)-1]
			changed = true
		}
		work = dedup
		if len(work) < 3 {
			break
		}

		n := len(work)
		out := make([]Vec2, 0, n)
		for i := 0; i < n; i++ {
			prev := work[(i+n-1)%n]
			p := work[i]
			next := work[(i+1)%n]
			if math.Abs(Cross(p.Sub(prev), next.Sub(p))) < Epsilon {
				changed = true
				continue
			}
			out = append(out, p)
		}
		work = out
	}
	if len(work) < 3 {
		return nil, fmt.Errorf("%w: %d points remain after cleansing", ErrInsufficientVertices, len(work))
	}
	return work, nil
}

func signedArea(vertices []Vec2) float64 {
	area := 0.0
	for i := range vertices {
		area += Cross(vertices[i], vertices[(i+1)%len(vertices)])
	}
	return area * 0.5
}

func polygonCentroid(vertices []Vec2) Vec2 {
	area := signedArea(vertices)
	if math.Abs(area) < Epsilon {
		// Degenerate area: fall back to the vertex average.
		var sum Vec2
		for _, v := range vertices {
			sum = sum.Add(v)
		}
		return sum.Mul(1.0 / float64(len(vertices)))
	}
	var c Vec2
	for i := range vertices {
		a := vertices[i]
		b := vertices[(i+1)%len(vertices)]
		c = c.Add(a.Add(b).Mul(Cross(a, b)))
	}
	return c.Mul(1.0 / (6.0 * area))
}

// Flip returns a new shape mirrored about the line through point along axis.
// Only vertex-based kinds (polygon, segment) can be flipped; the result gets
// fresh backing storage and a fresh cleansing pass.
func Flip(s *Shape, axis Vec2, point Vec2) (*Shape, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: shape", ErrNilArgument)
	}
	if axis.Len() < Epsilon {
		return nil, fmt.Errorf("%w: flip axis must be non-zero", ErrInvalidValue)
	}
	if s.kind != KindPolygon && s.kind != KindSegment {
		return nil, fmt.Errorf("%w: cannot flip a %s", ErrInvalidValue, s.kind)
	}
	u := Normalized(axis)
	flipped := make([]Vec2, len(s.vertices))
	for i, v := range s.vertices {
		r := v.Sub(point)
		flipped[i] = point.Add(u.Mul(2 * r.Dot(u)).Sub(r))
	}
	if s.kind == KindSegment {
		return NewSegment(flipped[0], flipped[1])
	}
	return NewPolygon(flipped...)
}

// FlipX mirrors the shape about the horizontal line through point.
func FlipX(s *Shape, point Vec2) (*Shape, error) {
	return Flip(s, Vec2{1, 0}, point)
}

// FlipY mirrors the shape about the vertical line through point.
func FlipY(s *Shape, point Vec2) (*Shape, error) {
	return Flip(s, Vec2{0, 1}, point)
}

// Scale returns a copy of s uniformly scaled about its local origin. The
// copy owns fresh vertex storage.
func Scale(s *Shape, scale float64) (*Shape, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: shape", ErrNilArgument)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("%w: scale %v must be positive", ErrInvalidValue, scale)
	}
	out := &Shape{
		kind:       s.kind,
		center:     s.center.Mul(scale),
		discRadius: s.discRadius * scale,
		radius:     s.radius * scale,
		halfWidth:  s.halfWidth * scale,
		halfHeight: s.halfHeight * scale,
		alpha:      s.alpha,
	}
	if s.vertices != nil {
		out.vertices = make([]Vec2, len(s.vertices))
		for i, v := range s.vertices {
			out.vertices[i] = v.Mul(scale)
		}
	}
	if s.normals != nil {
		out.normals = make([]Vec2, len(s.normals))
		copy(out.normals, s.normals)
	}
	return out, nil
}

// MinkowskiSum returns the Minkowski sum of two polygonal shapes (polygons
// or segments) as a new polygon. The operands are not modified and the
// result shares no storage with them.
func MinkowskiSum(a, b *Shape) (*Shape, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: shape", ErrNilArgument)
	}
	va, err := boundaryOf(a)
	if err != nil {
		return nil, err
	}
	vb, err := boundaryOf(b)
	if err != nil {
		return nil, err
	}
	rotateToBottommost(va)
	rotateToBottommost(vb)

	n, m := len(va), len(vb)
	sum := make([]Vec2, 0, n+m)
	i, j := 0, 0
	for i < n || j < m {
		sum = append(sum, va[i%n].Add(vb[j%m]))
		cross := Cross(
			va[(i+1)%n].Sub(va[i%n]),
			vb[(j+1)%m].Sub(vb[j%m]),
		)
		switch {
		case i >= n:
			j++
		case j >= m:
			i++
		case cross > Epsilon:
			i++
		case cross < -Epsilon:
			j++
		default:
			i++
			j++
		}
	}
	return NewPolygon(sum...)
}

// boundaryOf returns a counter-clockwise edge cycle for polygonal kinds.
// Segments become degenerate two-vertex cycles.
func boundaryOf(s *Shape) ([]Vec2, error) {
	switch s.kind {
	case KindPolygon, KindSegment:
		out := make([]Vec2, len(s.vertices))
		copy(out, s.vertices)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: minkowski sum requires polygonal shapes, got %s", ErrInvalidValue, s.kind)
	}
}

func rotateToBottommost(v []Vec2) {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i].Y() < v[best].Y() ||
			(v[i].Y() == v[best].Y() && v[i].X() < v[best].X()) {
			best = i
		}
	}
	if best == 0 {
		return
	}
	rotated := make([]Vec2, 0, len(v))
	rotated = append(rotated, v[best:]...)
	rotated = append(rotated, v[:best]...)
	copy(v, rotated)
}
