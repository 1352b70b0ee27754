// Package broadphase provides spatial indexes that propose candidate
// collision pairs from fixture bounding boxes. Every implementation may
// report false positives but never false negatives: its pair set is always a
// superset of the true AABB-overlap pairs.
//
// Indexes never sync themselves: they track only what Add, Remove and
// Update tell them. A pair never joins two fixtures of the same body.
package broadphase

import (
	"math"

	"go.uber.org/zap"

	"github.com/sylphengine/sylph"
	"github.com/sylphengine/sylph/geometry"
)

var logger = zap.NewNop()

// SetLogger installs a package logger. Detection stays silent by default.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// Detector is the broad phase contract shared by every index.
type Detector interface {
	// Add indexes every fixture of the body.
	Add(b *sylph.Body)
	// AddFixture indexes one fixture. Adding an already indexed fixture
	// updates it.
	AddFixture(b *sylph.Body, f *sylph.Fixture)
	// Remove drops every fixture of the body. It reports whether anything
	// was removed.
	Remove(b *sylph.Body) bool
	// RemoveFixture drops one fixture.
	RemoveFixture(b *sylph.Body, f *sylph.Fixture) bool
	// Update refreshes the stored bounds of every fixture of the body.
	Update(b *sylph.Body)
	// UpdateFixture refreshes the stored bounds of one fixture. Motion
	// contained by the expansion margin leaves the stored box untouched.
	UpdateFixture(b *sylph.Body, f *sylph.Fixture)
	// Contains reports whether every fixture of the body is indexed.
	Contains(b *sylph.Body) bool
	// ContainsFixture reports whether the fixture is indexed.
	ContainsFixture(b *sylph.Body, f *sylph.Fixture) bool
	// AABB returns the stored, possibly expanded, bounds of the fixture.
	AABB(b *sylph.Body, f *sylph.Fixture) (geometry.AABB, bool)
	// Size returns the number of indexed fixtures.
	Size() int
	// Clear drops everything.
	Clear()

	// Detect returns the candidate pairs of all overlapping stored bounds,
	// with no duplicate pair in either order.
	Detect() []sylph.CollisionPair
	// DetectAABB returns the items whose stored bounds overlap the query
	// box.
	DetectAABB(box geometry.AABB) []sylph.CollisionItem
	// Raycast returns the items whose stored bounds the ray passes through
	// within maxLength. A non-positive maxLength means unbounded.
	Raycast(ray geometry.Ray, maxLength float64) []sylph.CollisionItem

	// Shift translates every stored coordinate, rebasing the index for
	// floating origin schemes.
	Shift(d geometry.Vec2)
	// Optimize restructures the index if it has degraded. It may do
	// nothing.
	Optimize()

	// SetExpansion replaces the AABB expansion strategy for subsequently
	// stored bounds.
	SetExpansion(e Expansion)
	// Expansion returns the current expansion strategy.
	Expansion() Expansion
}

// itemKey identifies one indexed fixture.
type itemKey struct {
	body    *sylph.Body
	fixture *sylph.Fixture
}

func (k itemKey) item() sylph.CollisionItem {
	return sylph.CollisionItem{Body: k.body, Fixture: k.fixture}
}

// pairOf orders nothing: CollisionPair equality is symmetric, so either
// order works. Same-body pairs are the caller's bug.
func pairOf(a, b itemKey) sylph.CollisionPair {
	return sylph.CollisionPair{A: a.item(), B: b.item()}
}

// tightAABB computes the unexpanded fixture bounds under the body's current
// transform.
func tightAABB(b *sylph.Body, f *sylph.Fixture) geometry.AABB {
	return f.Shape().ComputeAABB(b.Transform())
}

// rayLength resolves an unbounded raycast to a finite segment long enough
// to cross the given index bounds from the ray start.
func rayLength(ray geometry.Ray, maxLength float64, bounds geometry.AABB) float64 {
	if maxLength > 0 {
		return maxLength
	}
	far := math.Max(
		ray.Start.Sub(bounds.Min).Len(),
		ray.Start.Sub(bounds.Max).Len(),
	)
	return far + bounds.Perimeter() + 1
}

// observerAdapter forwards body fixture events into a detector.
type observerAdapter struct {
	d Detector
}

// Observer adapts a detector to the body observer interface, so bodies keep
// the index in sync as fixtures come and go.
func Observer(d Detector) sylph.FixtureObserver {
	return observerAdapter{d: d}
}

func (o observerAdapter) OnFixtureAdded(b *sylph.Body, f *sylph.Fixture) {
	o.d.AddFixture(b, f)
}

func (o observerAdapter) OnFixtureRemoved(b *sylph.Body, f *sylph.Fixture) {
	o.d.RemoveFixture(b, f)
}

func (o observerAdapter) OnAllFixturesRemoved(b *sylph.Body) {
	o.d.Remove(b)
}
