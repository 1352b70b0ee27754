// Package manifold turns a penetration normal and depth into contact points
// by clipping the incident edge of one shape against the reference edge of
// the other. Edge/edge contacts yield up to two points, vertex contacts one.
package manifold

import (
	"github.com/sylphengine/sylph/geometry"
	"github.com/sylphengine/sylph/narrowphase"
)

// ID identifies a manifold point by the features that produced it, so
// contact state can be carried between frames. The zero ID marks a vertex
// contact with no stable features.
type ID struct {
	ReferenceEdge  int
	IncidentEdge   int
	IncidentVertex int
	Flipped        bool
}

// Key packs the identifier into a single map-friendly value.
func (id ID) Key() uint64 {
	k := uint64(uint16(id.ReferenceEdge))<<32 |
		uint64(uint16(id.IncidentEdge))<<16 |
		uint64(uint16(id.IncidentVertex))
	if id.Flipped {
		k |= 1 << 48
	}
	return k
}

// Point is a single contact point with its penetration depth along the
// manifold normal.
type Point struct {
	Point geometry.Vec2
	Depth float64
	ID    ID
}

// Manifold is the contact set for one overlapping shape pair. Normal always
// points from the first shape toward the second, regardless of which shape
// held the reference edge.
type Manifold struct {
	Normal geometry.Vec2
	Points []Point
}

// Solver produces a contact manifold from a narrow phase penetration.
type Solver interface {
	Solve(p *narrowphase.Penetration, s1 *geometry.Shape, tx1 geometry.Transform, s2 *geometry.Shape, tx2 geometry.Transform) (*Manifold, bool)
}
