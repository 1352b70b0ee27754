package narrowphase

import (
	"go.uber.org/zap"

	"github.com/sylphengine/sylph/geometry"
)

const (
	// maxDetectIterations bounds the simplex-refinement loop. Typical
	// convergence is 3-6 iterations.
	maxDetectIterations = 30
	// maxDistanceIterations bounds the closest-point loop.
	maxDistanceIterations = 30
	// warnIterations is the count past which a convergence warning is
	// logged; reaching it usually indicates near-degenerate geometry.
	warnIterations = 20
	// distanceEpsilon is the convergence tolerance for the distance loop.
	distanceEpsilon = 1.0e-8
)

// minkowskiPoint is a point on the Minkowski difference surface together
// with the two shape-surface support points that produced it, kept so that
// the distance loop can recover world-space witness points.
type minkowskiPoint struct {
	P  geometry.Vec2 // SA - SB
	SA geometry.Vec2 // support on shape 1
	SB geometry.Vec2 // support on shape 2
}

// supportContext bundles a shape pair for Minkowski-difference support
// queries.
type supportContext struct {
	s1, s2   *geometry.Shape
	tx1, tx2 geometry.Transform
}

// support returns the farthest Minkowski-difference point along d.
func (ctx *supportContext) support(d geometry.Vec2) minkowskiPoint {
	a := ctx.s1.Support(d, ctx.tx1)
	b := ctx.s2.Support(d.Mul(-1), ctx.tx2)
	return minkowskiPoint{P: a.Sub(b), SA: a, SB: b}
}

// GJK is the general convex-convex detector. It works on any shape pair via
// support mapping: overlap is detected by refining a simplex toward origin
// enclosure in the Minkowski difference, penetration by the expanding
// polytope step in epa.go, and distance by a two-point closest-feature loop.
type GJK struct{}

// NewGJK returns a GJK detector.
func NewGJK() *GJK { return &GJK{} }

// Detect implements Detector.
func (g *GJK) Detect(s1 *geometry.Shape, tx1 geometry.Transform, s2 *geometry.Shape, tx2 geometry.Transform) (bool, error) {
	if err := validateShapes(s1, s2); err != nil {
		return false, err
	}
	ctx := &supportContext{s1: s1, s2: s2, tx1: tx1, tx2: tx2}
	overlap, _ := detect(ctx)
	return overlap, nil
}

// DetectPenetration implements Detector.
func (g *GJK) DetectPenetration(s1 *geometry.Shape, tx1 geometry.Transform, s2 *geometry.Shape, tx2 geometry.Transform) (bool, *Penetration, error) {
	if err := validateShapes(s1, s2); err != nil {
		return false, nil, err
	}
	ctx := &supportContext{s1: s1, s2: s2, tx1: tx1, tx2: tx2}
	overlap, simplex := detect(ctx)
	if !overlap {
		return false, nil, nil
	}
	return true, expandPolytope(ctx, simplex), nil
}

// detect runs the origin-enclosure loop. On overlap the returned simplex
// seeds the expanding-polytope step.
func detect(ctx *supportContext) (bool, []minkowskiPoint) {
	// Start toward the other shape; any direction works but this typically
	// saves iterations.
	d := ctx.s2.WorldCenter(ctx.tx2).Sub(ctx.s1.WorldCenter(ctx.tx1))
	if d.LenSqr() < geometry.Epsilon {
		d = geometry.Vec2{1, 0}
	}

	simplex := make([]minkowskiPoint, 0, 3)
	simplex = append(simplex, ctx.support(d))
	d = simplex[0].P.Mul(-1)
	if d.LenSqr() < geometry.Epsilon {
		// The first support point is the origin: touching contact.
		return true, simplex
	}

	for i := 0; i < maxDetectIterations; i++ {
		p := ctx.support(d)
		if p.P.Dot(d) < 0 {
			// The new point cannot pass the origin: the shapes are
			// separated along d.
			return false, nil
		}
		simplex = append(simplex, p)

		contains, reduced, next := refineSimplex(simplex)
		if contains {
			if i >= warnIterations {
				logger.Warn("gjk detect converged slowly", zap.Int("iterations", i))
			}
			return true, reduced
		}
		simplex = reduced
		d = next
	}
	// Failed to converge; for valid convex input this is effectively
	// unreachable, treat as no overlap.
	logger.Warn("gjk detect iteration cap reached")
	return false, nil
}

// refineSimplex reduces the simplex to the feature closest to the origin and
// returns the reduced simplex plus the next search direction. It reports
// true when the simplex contains the origin.
func refineSimplex(simplex []minkowskiPoint) (bool, []minkowskiPoint, geometry.Vec2) {
	if len(simplex) == 3 {
		return triangleCase(simplex)
	}
	return lineCase(simplex)
}

func lineCase(simplex []minkowskiPoint) (bool, []minkowskiPoint, geometry.Vec2) {
	a := simplex[1] // most recent
	b := simplex[0]
	ab := b.P.Sub(a.P)
	ao := a.P.Mul(-1)

	if ab.LenSqr() < geometry.Epsilon {
		// Degenerate segment: both supports coincide.
		return ao.LenSqr() < geometry.Epsilon, simplex[:1], ao
	}
	if ab.Dot(ao) <= 0 {
		// Origin is behind a: reduce to the point.
		simplex[0] = a
		return false, simplex[:1], ao
	}
	perp := geometry.TripleProduct(ab, ao, ab)
	if perp.LenSqr() < geometry.Epsilon {
		// The origin lies on the segment: touching.
		return true, simplex, perp
	}
	return false, simplex, perp
}

func triangleCase(simplex []minkowskiPoint) (bool, []minkowskiPoint, geometry.Vec2) {
	a := simplex[2] // most recent
	b := simplex[1]
	c := simplex[0]

	ab := b.P.Sub(a.P)
	ac := c.P.Sub(a.P)
	ao := a.P.Mul(-1)

	abPerp := geometry.TripleProduct(ac, ab, ab)
	if abPerp.Dot(ao) > 0 {
		// Origin beyond edge ab: drop c.
		simplex[0] = b
		simplex[1] = a
		return false, simplex[:2], abPerp
	}
	acPerp := geometry.TripleProduct(ab, ac, ac)
	if acPerp.Dot(ao) > 0 {
		// Origin beyond edge ac: drop b.
		simplex[1] = a
		return false, simplex[:2], acPerp
	}
	return true, simplex, geometry.Vec2{}
}

// Distance implements DistanceDetector: a two-point closest-feature loop
// over the Minkowski difference. It reports false for overlapping or
// touching shapes.
func (g *GJK) Distance(s1 *geometry.Shape, tx1 geometry.Transform, s2 *geometry.Shape, tx2 geometry.Transform) (bool, *Separation, error) {
	if err := validateShapes(s1, s2); err != nil {
		return false, nil, err
	}
	ctx := &supportContext{s1: s1, s2: s2, tx1: tx1, tx2: tx2}

	// The two-point loop below only converges on the hull boundary when
	// the origin is outside the difference, so rule out overlap first.
	if overlap, _ := detect(ctx); overlap {
		return false, nil, nil
	}

	d := ctx.s2.WorldCenter(ctx.tx2).Sub(ctx.s1.WorldCenter(ctx.tx1))
	if d.LenSqr() < geometry.Epsilon {
		d = geometry.Vec2{1, 0}
	}
	a := ctx.support(d)
	b := ctx.support(d.Mul(-1))

	for i := 0; i < maxDistanceIterations; i++ {
		p := closestToOrigin(a.P, b.P)
		if p.LenSqr() < geometry.Epsilon {
			// The origin lies on the hull of the difference: touching.
			return false, nil, nil
		}
		d = geometry.Normalized(p.Mul(-1))
		c := ctx.support(d)

		// If the new support does not get measurably past the current
		// closest point, that point is the hull boundary.
		if c.P.Dot(d)-p.Dot(d) < distanceEpsilon {
			if i >= warnIterations {
				logger.Warn("gjk distance converged slowly", zap.Int("iterations", i))
			}
			return true, separationOf(a, b), nil
		}
		// Keep whichever sub-segment passes closer to the origin.
		if closestToOrigin(a.P, c.P).LenSqr() < closestToOrigin(c.P, b.P).LenSqr() {
			b = c
		} else {
			a = c
		}
	}
	logger.Warn("gjk distance iteration cap reached")
	return true, separationOf(a, b), nil
}

// separationOf recovers world-space witness points from the two closest
// Minkowski points by interpolating their shape-surface supports.
func separationOf(a, b minkowskiPoint) *Separation {
	l := b.P.Sub(a.P)
	var p1, p2 geometry.Vec2
	if l.LenSqr() < geometry.Epsilon {
		p1, p2 = a.SA, a.SB
	} else {
		t := clamp01(-a.P.Dot(l) / l.LenSqr())
		p1 = geometry.Lerp(a.SA, b.SA, t)
		p2 = geometry.Lerp(a.SB, b.SB, t)
	}
	gap := p2.Sub(p1)
	return &Separation{
		Normal:   geometry.Normalized(gap),
		Distance: gap.Len(),
		Point1:   p1,
		Point2:   p2,
	}
}

func closestToOrigin(a, b geometry.Vec2) geometry.Vec2 {
	l := b.Sub(a)
	if l.LenSqr() < geometry.Epsilon {
		return a
	}
	t := clamp01(-a.Dot(l) / l.LenSqr())
	return geometry.Lerp(a, b, t)
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
