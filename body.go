package sylph

import (
	"math"

	"github.com/google/uuid"

	"github.com/sylphengine/sylph/geometry"
)

// FixtureObserver receives fixture lifecycle events from a body. Spatial
// indexes register as observers so their proxies track the fixture set
// without polling.
type FixtureObserver interface {
	OnFixtureAdded(b *Body, f *Fixture)
	OnFixtureRemoved(b *Body, f *Fixture)
	OnAllFixturesRemoved(b *Body)
}

// Body is a collidable: an identified set of fixtures under one transform.
// The previous transform is kept alongside the current one so swept bounds
// can cover a full step of motion.
type Body struct {
	id       uuid.UUID
	fixtures []*Fixture

	transform geometry.Transform
	previous  geometry.Transform

	enabled   bool
	observers []FixtureObserver
	userData  any
}

// NewBody returns an enabled body with a fresh random identity and identity
// transforms.
func NewBody() *Body {
	return &Body{
		id:        uuid.New(),
		transform: geometry.NewTransform(),
		previous:  geometry.NewTransform(),
		enabled:   true,
	}
}

// ID returns the body's unique identity.
func (b *Body) ID() uuid.UUID { return b.id }

// AddFixture wraps the shape in a fixture, appends it and notifies
// observers.
func (b *Body) AddFixture(shape *Shape) (*Fixture, error) {
	f, err := NewFixture(shape)
	if err != nil {
		return nil, err
	}
	b.fixtures = append(b.fixtures, f)
	for _, o := range b.observers {
		o.OnFixtureAdded(b, f)
	}
	return f, nil
}

// RemoveFixtureAt removes the fixture at the given index and notifies
// observers. It reports false when the index is out of range.
func (b *Body) RemoveFixtureAt(i int) bool {
	if i < 0 || i >= len(b.fixtures) {
		return false
	}
	f := b.fixtures[i]
	b.fixtures = append(b.fixtures[:i], b.fixtures[i+1:]...)
	for _, o := range b.observers {
		o.OnFixtureRemoved(b, f)
	}
	return true
}

// RemoveFixture removes the given fixture. It reports false when the
// fixture is not attached to this body.
func (b *Body) RemoveFixture(f *Fixture) bool {
	for i, c := range b.fixtures {
		if c == f {
			return b.RemoveFixtureAt(i)
		}
	}
	return false
}

// RemoveFixturesWhere collects the fixtures matching the predicate first
// and removes them afterwards, so the predicate never observes a partially
// mutated fixture list. It returns the removed fixtures.
func (b *Body) RemoveFixturesWhere(match func(*Fixture) bool) []*Fixture {
	var doomed []*Fixture
	for _, f := range b.fixtures {
		if match(f) {
			doomed = append(doomed, f)
		}
	}
	for _, f := range doomed {
		b.RemoveFixture(f)
	}
	return doomed
}

// RemoveAllFixtures clears the fixture list and notifies observers once.
func (b *Body) RemoveAllFixtures() {
	if len(b.fixtures) == 0 {
		return
	}
	for _, o := range b.observers {
		o.OnAllFixturesRemoved(b)
	}
	b.fixtures = nil
}

// FixtureCount returns the number of attached fixtures.
func (b *Body) FixtureCount() int { return len(b.fixtures) }

// Fixture returns the fixture at the given index, or nil when out of range.
func (b *Body) Fixture(i int) *Fixture {
	if i < 0 || i >= len(b.fixtures) {
		return nil
	}
	return b.fixtures[i]
}

// Fixtures returns a copy of the fixture list.
func (b *Body) Fixtures() []*Fixture {
	out := make([]*Fixture, len(b.fixtures))
	copy(out, b.fixtures)
	return out
}

// FixtureIndex returns the index of the fixture, or -1 when it is not
// attached.
func (b *Body) FixtureIndex(f *Fixture) int {
	for i, c := range b.fixtures {
		if c == f {
			return i
		}
	}
	return -1
}

// Observe registers a fixture lifecycle observer.
func (b *Body) Observe(o FixtureObserver) {
	if o == nil {
		return
	}
	b.observers = append(b.observers, o)
}

// Unobserve removes a previously registered observer.
func (b *Body) Unobserve(o FixtureObserver) {
	for i, c := range b.observers {
		if c == o {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

// Transform returns the current transform.
func (b *Body) Transform() geometry.Transform { return b.transform }

// SetTransform replaces the current transform.
func (b *Body) SetTransform(tx geometry.Transform) { b.transform = tx }

// PreviousTransform returns the transform at the start of the step.
func (b *Body) PreviousTransform() geometry.Transform { return b.previous }

// SyncPreviousTransform snapshots the current transform as the previous
// one, ending the step's motion window.
func (b *Body) SyncPreviousTransform() { b.previous = b.transform }

// Translate moves the body by the given offset.
func (b *Body) Translate(d geometry.Vec2) {
	b.transform = b.transform.Translated(d)
}

// Rotate rotates the body about its world center.
func (b *Body) Rotate(angle float64) {
	b.transform = b.transform.Rotated(angle)
}

// Enabled reports whether the body participates in detection.
func (b *Body) Enabled() bool { return b.enabled }

// SetEnabled toggles participation in detection.
func (b *Body) SetEnabled(enabled bool) { b.enabled = enabled }

// UserData returns the user-attached value.
func (b *Body) UserData() any { return b.userData }

// SetUserData attaches an arbitrary value to the body.
func (b *Body) SetUserData(v any) { b.userData = v }

// ComputeAABB unions the fixture bounds under the current transform. A body
// without fixtures yields a degenerate box at the body origin.
func (b *Body) ComputeAABB() geometry.AABB {
	return b.ComputeAABBAt(b.transform)
}

// ComputeAABBAt unions the fixture bounds under the given transform.
func (b *Body) ComputeAABBAt(tx geometry.Transform) geometry.AABB {
	if len(b.fixtures) == 0 {
		return geometry.AABB{Min: tx.Position, Max: tx.Position}
	}
	box := b.fixtures[0].Shape().ComputeAABB(tx)
	for _, f := range b.fixtures[1:] {
		box = box.Union(f.Shape().ComputeAABB(tx))
	}
	return box
}

// RotationDiscRadius returns the radius of the disc centered at the given
// local point that contains every fixture through any rotation.
func (b *Body) RotationDiscRadius(center geometry.Vec2) float64 {
	r := 0.0
	for _, f := range b.fixtures {
		s := f.Shape()
		d := s.Center().Sub(center).Len() + s.RotationDiscRadius()
		r = math.Max(r, d)
	}
	return r
}
