package sylph

import (
	"testing"

	"github.com/sylphengine/sylph/geometry"
)

func twoBodies(t *testing.T) (*Body, *Fixture, *Body, *Fixture) {
	t.Helper()
	shape, err := geometry.NewCircle(1)
	if err != nil {
		t.Fatalf("NewCircle: %v", err)
	}
	b1 := NewBody()
	f1, err := b1.AddFixture(shape)
	if err != nil {
		t.Fatalf("AddFixture: %v", err)
	}
	shape2, err := geometry.NewCircle(1)
	if err != nil {
		t.Fatalf("NewCircle: %v", err)
	}
	b2 := NewBody()
	f2, err := b2.AddFixture(shape2)
	if err != nil {
		t.Fatalf("AddFixture: %v", err)
	}
	return b1, f1, b2, f2
}

func TestPairSymmetry(t *testing.T) {
	b1, f1, b2, f2 := twoBodies(t)

	ab := CollisionPair{
		A: CollisionItem{Body: b1, Fixture: f1},
		B: CollisionItem{Body: b2, Fixture: f2},
	}
	ba := CollisionPair{
		A: CollisionItem{Body: b2, Fixture: f2},
		B: CollisionItem{Body: b1, Fixture: f1},
	}

	if !ab.Equal(ba) {
		t.Error("pair equality must not depend on order")
	}
	if ab.Hash() != ba.Hash() {
		t.Error("pair hash must not depend on order")
	}
}

func TestPairMapLookupAcrossOrder(t *testing.T) {
	b1, f1, b2, f2 := twoBodies(t)

	ab := CollisionPair{
		A: CollisionItem{Body: b1, Fixture: f1},
		B: CollisionItem{Body: b2, Fixture: f2},
	}
	ba := CollisionPair{A: ab.B, B: ab.A}

	// Insert under one order, look up under the other, the way a solver
	// caches contact constraints across frames.
	cache := map[uint64]CollisionPair{ab.Hash(): ab}
	cached, ok := cache[ba.Hash()]
	if !ok {
		t.Fatal("reversed pair did not hash to the cached entry")
	}
	if !cached.Equal(ba) {
		t.Error("cached pair does not equal the reversed pair")
	}
}

func TestItemsDistinguishFixtures(t *testing.T) {
	shape, err := geometry.NewCircle(1)
	if err != nil {
		t.Fatalf("NewCircle: %v", err)
	}
	shape2, err := geometry.NewCircle(2)
	if err != nil {
		t.Fatalf("NewCircle: %v", err)
	}
	b := NewBody()
	f1, _ := b.AddFixture(shape)
	f2, _ := b.AddFixture(shape2)

	i1 := CollisionItem{Body: b, Fixture: f1}
	i2 := CollisionItem{Body: b, Fixture: f2}
	if i1.Equal(i2) {
		t.Error("items of different fixtures on one body must differ")
	}
	if i1.Hash() == i2.Hash() {
		t.Error("items of different fixtures on one body must hash differently")
	}
}

func TestItemHashSurvivesEarlierFixtureRemoval(t *testing.T) {
	shape1, err := geometry.NewCircle(1)
	if err != nil {
		t.Fatalf("NewCircle: %v", err)
	}
	shape2, err := geometry.NewCircle(2)
	if err != nil {
		t.Fatalf("NewCircle: %v", err)
	}
	b := NewBody()
	first, err := b.AddFixture(shape1)
	if err != nil {
		t.Fatalf("AddFixture: %v", err)
	}
	second, err := b.AddFixture(shape2)
	if err != nil {
		t.Fatalf("AddFixture: %v", err)
	}

	item := CollisionItem{Body: b, Fixture: second}
	before := item.Hash()

	if !b.RemoveFixture(first) {
		t.Fatal("RemoveFixture failed")
	}
	if got := item.Hash(); got != before {
		t.Errorf("item hash changed after removing an unrelated fixture: %#x != %#x", got, before)
	}
}
