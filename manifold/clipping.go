package manifold

import (
	"math"

	"github.com/sylphengine/sylph/geometry"
	"github.com/sylphengine/sylph/narrowphase"
)

// ClippingSolver clips the incident edge against the side planes of the
// reference edge, keeping the clipped points that lie past the reference
// face. The reference edge is the one more perpendicular to the collision
// normal; on a tie the first shape's edge is chosen.
type ClippingSolver struct{}

// NewClippingSolver returns a ClippingSolver.
func NewClippingSolver() *ClippingSolver { return &ClippingSolver{} }

var _ Solver = (*ClippingSolver)(nil)

// Solve builds the manifold for an overlapping pair. It returns false when
// no contact point survives clipping, which signals a degenerate result the
// caller should discard.
func (cs *ClippingSolver) Solve(p *narrowphase.Penetration, s1 *geometry.Shape, tx1 geometry.Transform, s2 *geometry.Shape, tx2 geometry.Transform) (*Manifold, bool) {
	if p == nil || s1 == nil || s2 == nil {
		return nil, false
	}
	n := p.Normal

	f1 := s1.FarthestFeature(n, tx1)
	f2 := s2.FarthestFeature(n.Mul(-1), tx2)

	// A vertex feature on either side pins the contact to a single point.
	if f1.Type == geometry.FeatureVertex {
		return &Manifold{
			Normal: n,
			Points: []Point{{Point: f1.Max.Point, Depth: p.Depth}},
		}, true
	}
	if f2.Type == geometry.FeatureVertex {
		return &Manifold{
			Normal: n,
			Points: []Point{{Point: f2.Max.Point, Depth: p.Depth}},
		}, true
	}

	reference, incident := f1, f2
	flipped := false
	e1 := f1.B.Point.Sub(f1.A.Point)
	e2 := f2.B.Point.Sub(f2.A.Point)
	if math.Abs(geometry.Normalized(e1).Dot(n)) > math.Abs(geometry.Normalized(e2).Dot(n)) {
		reference, incident = f2, f1
		flipped = true
	}

	refDir := geometry.Normalized(reference.B.Point.Sub(reference.A.Point))

	points := []clipVertex{
		{point: incident.A.Point, index: incident.A.Index},
		{point: incident.B.Point, index: incident.B.Index},
	}
	points = clip(points, refDir.Mul(-1), -refDir.Dot(reference.A.Point))
	if len(points) < 2 {
		return nil, false
	}
	points = clip(points, refDir, refDir.Dot(reference.B.Point))
	if len(points) == 0 {
		return nil, false
	}

	// The face normal points from the reference shape into the incident
	// shape; points behind the reference face are in contact.
	faceNormal := n
	if flipped {
		faceNormal = n.Mul(-1)
	}
	faceOffset := faceNormal.Dot(reference.Max.Point)

	m := &Manifold{Normal: n}
	for _, cv := range points {
		depth := faceOffset - faceNormal.Dot(cv.point)
		if depth < 0 {
			continue
		}
		m.Points = append(m.Points, Point{
			Point: cv.point,
			Depth: depth,
			ID: ID{
				ReferenceEdge:  reference.Edge,
				IncidentEdge:   incident.Edge,
				IncidentVertex: cv.index,
				Flipped:        flipped,
			},
		})
	}
	if len(m.Points) == 0 {
		return nil, false
	}
	return m, true
}

type clipVertex struct {
	point geometry.Vec2
	index int
}

// clip keeps the points of the edge satisfying n.p <= offset, inserting the
// plane intersection when the edge straddles it. A point created by clipping
// inherits the index of the vertex it replaced.
func clip(in []clipVertex, n geometry.Vec2, offset float64) []clipVertex {
	out := make([]clipVertex, 0, 2)

	d0 := n.Dot(in[0].point) - offset
	d1 := n.Dot(in[1].point) - offset
	if d0 <= 0 {
		out = append(out, in[0])
	}
	if d1 <= 0 {
		out = append(out, in[1])
	}
	if d0*d1 < 0 {
		t := d0 / (d0 - d1)
		mid := geometry.Lerp(in[0].point, in[1].point, t)
		idx := in[1].index
		if d0 > 0 {
			idx = in[0].index
		}
		out = append(out, clipVertex{point: mid, index: idx})
	}
	return out
}
