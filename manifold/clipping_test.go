package manifold

import (
	"math"
	"testing"

	"github.com/sylphengine/sylph/geometry"
	"github.com/sylphengine/sylph/narrowphase"
)

func mustRectangle(t *testing.T, width, height float64) *geometry.Shape {
	t.Helper()
	s, err := geometry.NewRectangle(width, height)
	if err != nil {
		t.Fatalf("NewRectangle(%v, %v): %v", width, height, err)
	}
	return s
}

func mustCircle(t *testing.T, radius float64) *geometry.Shape {
	t.Helper()
	s, err := geometry.NewCircle(radius)
	if err != nil {
		t.Fatalf("NewCircle(%v): %v", radius, err)
	}
	return s
}

func vecNear(a, b geometry.Vec2, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol
}

func TestClippingSolverEdgeEdge(t *testing.T) {
	// A 1x1 rectangle at (-0.5, 0) against a 0.5x0.5 rectangle at the
	// origin overlaps by 0.25 along x. The facing edges are parallel, so
	// the full incident edge survives clipping as two points.
	s1 := mustRectangle(t, 1, 1)
	s2 := mustRectangle(t, 0.5, 0.5)
	tx1 := geometry.NewTransform().Translated(geometry.Vec2{-0.5, 0})
	tx2 := geometry.NewTransform()

	hit, pen, err := narrowphase.NewSAT().DetectPenetration(s1, tx1, s2, tx2)
	if err != nil || !hit {
		t.Fatalf("DetectPenetration: hit=%v err=%v", hit, err)
	}

	m, ok := NewClippingSolver().Solve(pen, s1, tx1, s2, tx2)
	if !ok {
		t.Fatal("expected a manifold")
	}
	if !vecNear(m.Normal, geometry.Vec2{1, 0}, 1e-6) {
		t.Errorf("expected normal (1, 0), got %v", m.Normal)
	}
	if len(m.Points) != 2 {
		t.Fatalf("expected 2 contact points, got %d", len(m.Points))
	}
	for _, p := range m.Points {
		if math.Abs(p.Depth-0.25) > 1e-6 {
			t.Errorf("expected depth 0.25 at %v, got %v", p.Point, p.Depth)
		}
		if math.Abs(p.Point[0]-(-0.25)) > 1e-6 {
			t.Errorf("expected contact on the incident face x=-0.25, got %v", p.Point)
		}
		if p.ID.Flipped {
			t.Errorf("expected an unflipped id at %v", p.Point)
		}
	}
	if math.Abs(m.Points[0].Point[1]-m.Points[1].Point[1]) < 0.4 {
		t.Errorf("expected points on opposite corners, got %v and %v",
			m.Points[0].Point, m.Points[1].Point)
	}
	if m.Points[0].ID.Key() == m.Points[1].ID.Key() {
		t.Error("expected distinct ids for the two contact points")
	}
}

func TestClippingSolverFlipped(t *testing.T) {
	// Rotating the first rectangle 45 degrees drives its corner into the
	// second rectangle's face. Its edges are then far less perpendicular to
	// the normal than the face, so the second shape holds the reference
	// edge and the ids carry the flipped bit.
	s1 := mustRectangle(t, 1, 1)
	s2 := mustRectangle(t, 1, 1)
	tx1 := geometry.TransformAt(geometry.Vec2{-0.95, 0}, math.Pi/4)
	tx2 := geometry.NewTransform()

	corner := -0.95 + math.Sqrt2/2
	pen := &narrowphase.Penetration{Normal: geometry.Vec2{1, 0}, Depth: corner + 0.5}

	m, ok := NewClippingSolver().Solve(pen, s1, tx1, s2, tx2)
	if !ok {
		t.Fatal("expected a manifold")
	}
	if len(m.Points) != 1 {
		t.Fatalf("expected a single corner contact, got %d points", len(m.Points))
	}
	p := m.Points[0]
	if !p.ID.Flipped {
		t.Error("expected the flipped bit on the id")
	}
	if !vecNear(p.Point, geometry.Vec2{corner, 0}, 1e-3) {
		t.Errorf("expected the contact at the corner (%v, 0), got %v", corner, p.Point)
	}
	if math.Abs(p.Depth-(corner+0.5)) > 1e-3 {
		t.Errorf("expected depth %v, got %v", corner+0.5, p.Depth)
	}
	if !vecNear(m.Normal, geometry.Vec2{1, 0}, 1e-6) {
		t.Errorf("manifold normal must match the penetration normal, got %v", m.Normal)
	}
}

func TestClippingSolverCircleContact(t *testing.T) {
	// Circles have no edge feature, so the contact collapses to the single
	// deepest point of the circle.
	rect := mustRectangle(t, 1, 1)
	circle := mustCircle(t, 0.5)
	tx1 := geometry.NewTransform()
	tx2 := geometry.NewTransform().Translated(geometry.Vec2{0.8, 0})

	pen := &narrowphase.Penetration{Normal: geometry.Vec2{1, 0}, Depth: 0.2}

	m, ok := NewClippingSolver().Solve(pen, rect, tx1, circle, tx2)
	if !ok {
		t.Fatal("expected a manifold")
	}
	if len(m.Points) != 1 {
		t.Fatalf("expected a single contact point, got %d", len(m.Points))
	}
	p := m.Points[0]
	if !vecNear(p.Point, geometry.Vec2{0.3, 0}, 1e-6) {
		t.Errorf("expected the contact at (0.3, 0), got %v", p.Point)
	}
	if math.Abs(p.Depth-0.2) > 1e-6 {
		t.Errorf("expected depth 0.2, got %v", p.Depth)
	}
	if p.ID != (ID{}) {
		t.Errorf("expected the zero id for a vertex contact, got %+v", p.ID)
	}
}

func TestClippingSolverNilInputs(t *testing.T) {
	rect := mustRectangle(t, 1, 1)
	tx := geometry.NewTransform()
	pen := &narrowphase.Penetration{Normal: geometry.Vec2{1, 0}, Depth: 0.1}

	if _, ok := NewClippingSolver().Solve(nil, rect, tx, rect, tx); ok {
		t.Error("expected no manifold for a nil penetration")
	}
	if _, ok := NewClippingSolver().Solve(pen, nil, tx, rect, tx); ok {
		t.Error("expected no manifold for a nil shape")
	}
}

func TestIDKey(t *testing.T) {
	if (ID{}).Key() != 0 {
		t.Errorf("expected the zero id to pack to 0, got %v", (ID{}).Key())
	}

	a := ID{ReferenceEdge: 1, IncidentEdge: 3, IncidentVertex: 0}
	b := ID{ReferenceEdge: 1, IncidentEdge: 3, IncidentVertex: 1}
	if a.Key() == b.Key() {
		t.Error("expected distinct keys for distinct vertices")
	}

	f := a
	f.Flipped = true
	if a.Key() == f.Key() {
		t.Error("expected the flipped bit to change the key")
	}

	// Curved features use vertex index -1, which must still round trip into
	// a usable key.
	c := ID{ReferenceEdge: 0, IncidentEdge: 0, IncidentVertex: -1}
	if c.Key() == (ID{}).Key() {
		t.Error("expected a curved-feature id to differ from the zero id")
	}
}
