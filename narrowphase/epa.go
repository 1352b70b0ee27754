package narrowphase

import (
	"math"

	"go.uber.org/zap"

	"github.com/sylphengine/sylph/geometry"
)

const (
	// maxExpandIterations bounds polytope expansion; convergence is usually
	// well under ten iterations for shallow penetrations.
	maxExpandIterations = 30
	// expandEpsilon is the convergence tolerance: expansion stops when a new
	// support point fails to move the closest edge outward by more.
	expandEpsilon = 1.0e-8
)

// expandPolytope computes the penetration vector for an overlapping pair by
// expanding the final detect simplex toward the closest point of the
// Minkowski-difference hull to the origin. The closest edge's outward normal
// is the minimum translation direction and its distance the depth.
func expandPolytope(ctx *supportContext, simplex []minkowskiPoint) *Penetration {
	polytope := seedPolytope(ctx, simplex)
	if len(polytope) < 3 {
		// The difference is degenerate (touching contact or segment overlap):
		// report a zero-depth contact along the center axis.
		d := ctx.s2.WorldCenter(ctx.tx2).Sub(ctx.s1.WorldCenter(ctx.tx1))
		if d.LenSqr() < geometry.Epsilon {
			d = geometry.Vec2{1, 0}
		}
		return &Penetration{Normal: geometry.Normalized(d), Depth: 0}
	}

	for i := 0; i < maxExpandIterations; i++ {
		index, normal, dist := closestEdge(polytope)
		c := ctx.support(normal)
		gap := c.P.Dot(normal) - dist
		if gap < expandEpsilon {
			if i >= warnIterations {
				logger.Warn("penetration expansion converged slowly", zap.Int("iterations", i))
			}
			return &Penetration{Normal: normal, Depth: math.Max(dist, 0)}
		}
		// Insert the new hull point between the edge endpoints.
		polytope = append(polytope, minkowskiPoint{})
		copy(polytope[index+2:], polytope[index+1:])
		polytope[index+1] = c
	}

	logger.Warn("penetration expansion iteration cap reached")
	_, normal, dist := closestEdge(polytope)
	return &Penetration{Normal: normal, Depth: math.Max(dist, 0)}
}

// seedPolytope turns the detect simplex into a counter-clockwise triangle,
// synthesizing missing points for degenerate simplices.
func seedPolytope(ctx *supportContext, simplex []minkowskiPoint) []minkowskiPoint {
	pts := make([]minkowskiPoint, len(simplex))
	copy(pts, simplex)

	if len(pts) == 1 {
		a := ctx.support(geometry.Vec2{1, 0})
		b := ctx.support(geometry.Vec2{-1, 0})
		pts = append(pts, a, b)
	} else if len(pts) == 2 {
		n := geometry.Left(pts[1].P.Sub(pts[0].P))
		c := ctx.support(n)
		if math.Abs(geometry.Cross(pts[1].P.Sub(pts[0].P), c.P.Sub(pts[0].P))) < geometry.Epsilon {
			c = ctx.support(n.Mul(-1))
		}
		pts = append(pts, c)
	}

	area := geometry.Cross(pts[1].P.Sub(pts[0].P), pts[2].P.Sub(pts[0].P))
	if math.Abs(area) < geometry.Epsilon {
		return nil
	}
	if area < 0 {
		pts[1], pts[2] = pts[2], pts[1]
	}
	return pts
}

// closestEdge finds the polytope edge nearest the origin, returning its
// start index, outward unit normal, and distance.
func closestEdge(polytope []minkowskiPoint) (int, geometry.Vec2, float64) {
	bestIndex := 0
	bestDist := math.Inf(1)
	var bestNormal geometry.Vec2
	for i := range polytope {
		a := polytope[i]
		b := polytope[(i+1)%len(polytope)]
		edge := b.P.Sub(a.P)
		if edge.LenSqr() < geometry.Epsilon {
			continue
		}
		// Counter-clockwise winding: the outward normal is the right-hand
		// perpendicular of the edge.
		n := geometry.Normalized(geometry.Right(edge))
		d := n.Dot(a.P)
		if d < bestDist {
			bestDist = d
			bestIndex = i
			bestNormal = n
		}
	}
	return bestIndex, bestNormal, bestDist
}
