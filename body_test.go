package sylph

import (
	"math"
	"testing"

	"github.com/sylphengine/sylph/geometry"
)

type recordingObserver struct {
	added   int
	removed int
	cleared int
}

func (o *recordingObserver) OnFixtureAdded(*Body, *Fixture)   { o.added++ }
func (o *recordingObserver) OnFixtureRemoved(*Body, *Fixture) { o.removed++ }
func (o *recordingObserver) OnAllFixturesRemoved(*Body)       { o.cleared++ }

func mustCircle(t *testing.T, r float64) *geometry.Shape {
	t.Helper()
	s, err := geometry.NewCircle(r)
	if err != nil {
		t.Fatalf("NewCircle(%v): %v", r, err)
	}
	return s
}

func TestBodyFixtureManagement(t *testing.T) {
	b := NewBody()
	obs := &recordingObserver{}
	b.Observe(obs)

	f1, err := b.AddFixture(mustCircle(t, 1))
	if err != nil {
		t.Fatalf("AddFixture: %v", err)
	}
	f2, _ := b.AddFixture(mustCircle(t, 2))
	f3, _ := b.AddFixture(mustCircle(t, 3))

	if b.FixtureCount() != 3 {
		t.Fatalf("expected 3 fixtures, got %d", b.FixtureCount())
	}
	if obs.added != 3 {
		t.Errorf("expected 3 add notifications, got %d", obs.added)
	}
	if b.FixtureIndex(f2) != 1 {
		t.Errorf("expected f2 at index 1, got %d", b.FixtureIndex(f2))
	}

	if !b.RemoveFixture(f2) {
		t.Fatal("RemoveFixture failed for an attached fixture")
	}
	if b.RemoveFixture(f2) {
		t.Error("RemoveFixture succeeded for a detached fixture")
	}
	if obs.removed != 1 {
		t.Errorf("expected 1 remove notification, got %d", obs.removed)
	}
	if b.FixtureIndex(f3) != 1 {
		t.Errorf("expected f3 to shift to index 1, got %d", b.FixtureIndex(f3))
	}

	if b.RemoveFixtureAt(5) {
		t.Error("RemoveFixtureAt accepted an out-of-range index")
	}
	if !b.RemoveFixtureAt(0) {
		t.Error("RemoveFixtureAt failed for index 0")
	}
	if b.Fixture(0) != f3 {
		t.Error("expected f3 to remain")
	}
	_ = f1

	b.RemoveAllFixtures()
	if b.FixtureCount() != 0 {
		t.Errorf("expected no fixtures, got %d", b.FixtureCount())
	}
	if obs.cleared != 1 {
		t.Errorf("expected 1 clear notification, got %d", obs.cleared)
	}
	// Clearing an empty body must not notify again.
	b.RemoveAllFixtures()
	if obs.cleared != 1 {
		t.Errorf("expected still 1 clear notification, got %d", obs.cleared)
	}
}

func TestBodyRemoveFixturesWhere(t *testing.T) {
	b := NewBody()
	small, _ := b.AddFixture(mustCircle(t, 0.5))
	big, _ := b.AddFixture(mustCircle(t, 5))
	bigger, _ := b.AddFixture(mustCircle(t, 10))

	removed := b.RemoveFixturesWhere(func(f *Fixture) bool {
		return f.Shape().Radius() > 1
	})
	if len(removed) != 2 {
		t.Fatalf("expected 2 removed fixtures, got %d", len(removed))
	}
	if removed[0] != big || removed[1] != bigger {
		t.Error("removed fixtures out of order")
	}
	if b.FixtureCount() != 1 || b.Fixture(0) != small {
		t.Error("expected only the small fixture to remain")
	}
}

func TestBodyComputeAABB(t *testing.T) {
	b := NewBody()
	if _, err := b.AddFixture(mustCircle(t, 1)); err != nil {
		t.Fatalf("AddFixture: %v", err)
	}
	b.SetTransform(geometry.TransformAt(geometry.Vec2{10, -5}, 0))

	box := b.ComputeAABB()
	want := geometry.NewAABB(9, -6, 11, -4)
	if math.Abs(box.Min.X()-want.Min.X()) > 1e-9 ||
		math.Abs(box.Max.Y()-want.Max.Y()) > 1e-9 {
		t.Errorf("expected %v, got %v", want, box)
	}

	// A second fixture widens the union.
	if _, err := b.AddFixture(mustCircle(t, 3)); err != nil {
		t.Fatalf("AddFixture: %v", err)
	}
	box = b.ComputeAABB()
	if box.Width() != 6 {
		t.Errorf("expected the union width 6, got %v", box.Width())
	}
}

func TestBodyTransforms(t *testing.T) {
	b := NewBody()
	b.Translate(geometry.Vec2{1, 2})
	if b.Transform().Position != (geometry.Vec2{1, 2}) {
		t.Errorf("unexpected position %v", b.Transform().Position)
	}
	if b.PreviousTransform().Position != (geometry.Vec2{}) {
		t.Error("previous transform must lag until synced")
	}
	b.SyncPreviousTransform()
	if b.PreviousTransform().Position != (geometry.Vec2{1, 2}) {
		t.Error("sync must snapshot the current transform")
	}
}

func TestBodyIdentity(t *testing.T) {
	if NewBody().ID() == NewBody().ID() {
		t.Error("bodies must have distinct identities")
	}
}

func TestBodyRotationDiscRadius(t *testing.T) {
	b := NewBody()
	if _, err := b.AddFixture(mustCircle(t, 1)); err != nil {
		t.Fatalf("AddFixture: %v", err)
	}
	r := b.RotationDiscRadius(geometry.Vec2{3, 0})
	// Circle centered at the local origin: distance 3 to the pivot plus
	// radius 1.
	if math.Abs(r-4) > 1e-9 {
		t.Errorf("expected disc radius 4, got %v", r)
	}
}
