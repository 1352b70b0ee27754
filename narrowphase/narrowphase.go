// Package narrowphase decides whether two specific convex shapes overlap and
// by how much. It provides SAT (separating axis) and GJK (support mapping)
// detectors plus segment/circle raycast specializations.
//
// All detectors share the same conventions: shape order matters only for the
// reported normal direction, which always points from the first shape toward
// the second; swapping the arguments negates the normal and nothing else.
package narrowphase

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sylphengine/sylph/geometry"
)

// ErrUnsupportedShapes is reported when a detector cannot operate on a shape
// pair (for example SAT on two ellipses). It is about the requested
// operation, not the input: the shapes themselves are valid.
var ErrUnsupportedShapes = errors.New("narrowphase: unsupported shape combination")

var logger = zap.NewNop()

// SetLogger installs a logger for iteration-cap diagnostics. The default
// discards everything.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// Penetration describes an overlap: a unit normal pointing from the first
// shape toward the second, and the depth along it required to separate them.
type Penetration struct {
	Normal geometry.Vec2
	Depth  float64
}

// Separation describes two non-overlapping shapes: a unit normal from the
// first shape toward the second, the gap along it, and the closest point on
// each shape.
type Separation struct {
	Normal   geometry.Vec2
	Distance float64
	Point1   geometry.Vec2
	Point2   geometry.Vec2
}

// Detector is a boolean overlap test with an optional penetration result.
type Detector interface {
	// Detect reports whether the two shapes overlap.
	Detect(s1 *geometry.Shape, tx1 geometry.Transform, s2 *geometry.Shape, tx2 geometry.Transform) (bool, error)
	// DetectPenetration additionally fills a Penetration when overlapping.
	DetectPenetration(s1 *geometry.Shape, tx1 geometry.Transform, s2 *geometry.Shape, tx2 geometry.Transform) (bool, *Penetration, error)
}

// DistanceDetector computes separation distance and closest points for
// non-overlapping shapes.
type DistanceDetector interface {
	// Distance reports true and fills a Separation when the shapes do not
	// overlap; it reports false for overlapping or touching shapes.
	Distance(s1 *geometry.Shape, tx1 geometry.Transform, s2 *geometry.Shape, tx2 geometry.Transform) (bool, *Separation, error)
}

func validateShapes(s1, s2 *geometry.Shape) error {
	if s1 == nil || s2 == nil {
		return fmt.Errorf("%w: shape", geometry.ErrNilArgument)
	}
	return nil
}
