package narrowphase

import (
	"math"

	"github.com/sylphengine/sylph/geometry"
)

// SAT implements the separating axis theorem for shapes with a finite
// edge-normal set: polygons, segments, capsules, and slices, plus circles
// through focal axes. Ellipse and half-ellipse pairs are outside its reach
// and report ErrUnsupportedShapes.
//
// Candidate axes are enumerated in a fixed order: the first shape's edge
// normals by index, the second shape's edge normals, then the focal axes.
// When two axes tie on overlap depth within geometry.Epsilon the earlier
// axis wins, which makes the reported normal deterministic.
type SAT struct{}

// NewSAT returns a SAT detector.
func NewSAT() *SAT { return &SAT{} }

// Detect implements Detector.
func (d *SAT) Detect(s1 *geometry.Shape, tx1 geometry.Transform, s2 *geometry.Shape, tx2 geometry.Transform) (bool, error) {
	overlap, _, err := d.DetectPenetration(s1, tx1, s2, tx2)
	return overlap, err
}

// DetectPenetration implements Detector.
func (d *SAT) DetectPenetration(s1 *geometry.Shape, tx1 geometry.Transform, s2 *geometry.Shape, tx2 geometry.Transform) (bool, *Penetration, error) {
	if err := validateShapes(s1, s2); err != nil {
		return false, nil, err
	}
	if !s1.HasEdgeNormals() || !s2.HasEdgeNormals() {
		return false, nil, ErrUnsupportedShapes
	}

	axes := collectAxes(s1, tx1, s2, tx2)

	bestDepth := math.Inf(1)
	var bestNormal geometry.Vec2
	for _, axis := range axes {
		if axis.Len() < geometry.Epsilon {
			continue
		}
		axis = geometry.Normalized(axis)
		lo1, hi1 := project(s1, tx1, axis)
		lo2, hi2 := project(s2, tx2, axis)
		overlap := math.Min(hi1, hi2) - math.Max(lo1, lo2)
		if overlap < 0 {
			// Separating axis found.
			return false, nil, nil
		}
		if overlap < bestDepth-geometry.Epsilon {
			bestDepth = overlap
			bestNormal = axis
		}
	}

	if math.IsInf(bestDepth, 1) {
		// Every candidate axis degenerated (coincident focal points, e.g.
		// concentric circles). The shapes overlap; measure along x.
		axis := geometry.Vec2{1, 0}
		lo1, hi1 := project(s1, tx1, axis)
		lo2, hi2 := project(s2, tx2, axis)
		bestDepth = math.Min(hi1, hi2) - math.Max(lo1, lo2)
		bestNormal = axis
	}

	// Point the normal from shape 1 toward shape 2.
	centers := s2.WorldCenter(tx2).Sub(s1.WorldCenter(tx1))
	if bestNormal.Dot(centers) < 0 {
		bestNormal = bestNormal.Mul(-1)
	}
	return true, &Penetration{Normal: bestNormal, Depth: bestDepth}, nil
}

func collectAxes(s1 *geometry.Shape, tx1 geometry.Transform, s2 *geometry.Shape, tx2 geometry.Transform) []geometry.Vec2 {
	axes := append(s1.EdgeNormals(tx1), s2.EdgeNormals(tx2)...)
	// Curved features separate along the axis from their focal point to the
	// closest feature of the other shape.
	for _, f := range s1.Foci(tx1) {
		axes = append(axes, s2.ClosestPoint(f, tx2).Sub(f))
	}
	for _, f := range s2.Foci(tx2) {
		axes = append(axes, s1.ClosestPoint(f, tx1).Sub(f))
	}
	return axes
}

// project returns the interval of the shape projected onto the unit axis.
func project(s *geometry.Shape, tx geometry.Transform, axis geometry.Vec2) (lo, hi float64) {
	lo = axis.Dot(s.Support(axis.Mul(-1), tx))
	hi = axis.Dot(s.Support(axis, tx))
	return lo, hi
}
