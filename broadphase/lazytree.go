package broadphase

import (
	"github.com/sylphengine/sylph"
	"github.com/sylphengine/sylph/geometry"
)

// LazyTree is a dynamic tree that defers structural removals. Removing a
// fixture only marks it; the leaf stays in the tree and is filtered out of
// query results until DoPendingRemoves batches the structural work. Removal
// becomes O(1) at the price of slightly wider queries in between.
type LazyTree struct {
	tree    *DynamicTree
	pending map[itemKey]struct{}
}

var _ Detector = (*LazyTree)(nil)

// NewLazyTree returns an empty lazy tree with the default expansion.
func NewLazyTree() *LazyTree {
	return NewLazyTreeTuned(sylph.DefaultTuning())
}

// NewLazyTreeTuned sizes the tree from the given tuning.
func NewLazyTreeTuned(t sylph.Tuning) *LazyTree {
	return &LazyTree{
		tree:    NewDynamicTreeTuned(t),
		pending: make(map[itemKey]struct{}),
	}
}

func (d *LazyTree) Add(b *sylph.Body) {
	for _, f := range b.Fixtures() {
		d.AddFixture(b, f)
	}
}

func (d *LazyTree) AddFixture(b *sylph.Body, f *sylph.Fixture) {
	// Re-adding a pending fixture resurrects its leaf.
	delete(d.pending, itemKey{body: b, fixture: f})
	d.tree.AddFixture(b, f)
}

func (d *LazyTree) Remove(b *sylph.Body) bool {
	removed := false
	for _, f := range b.Fixtures() {
		removed = d.RemoveFixture(b, f) || removed
	}
	return removed
}

func (d *LazyTree) RemoveFixture(b *sylph.Body, f *sylph.Fixture) bool {
	k := itemKey{body: b, fixture: f}
	if !d.tree.ContainsFixture(b, f) {
		return false
	}
	if _, dead := d.pending[k]; dead {
		return false
	}
	d.pending[k] = struct{}{}
	return true
}

// DoPendingRemoves performs the deferred structural removals in one batch.
func (d *LazyTree) DoPendingRemoves() {
	for k := range d.pending {
		d.tree.RemoveFixture(k.body, k.fixture)
	}
	d.pending = make(map[itemKey]struct{})
}

// PendingRemoves returns the number of fixtures awaiting removal.
func (d *LazyTree) PendingRemoves() int { return len(d.pending) }

func (d *LazyTree) Update(b *sylph.Body) {
	for _, f := range b.Fixtures() {
		d.UpdateFixture(b, f)
	}
}

func (d *LazyTree) UpdateFixture(b *sylph.Body, f *sylph.Fixture) {
	if _, dead := d.pending[itemKey{body: b, fixture: f}]; dead {
		return
	}
	d.tree.UpdateFixture(b, f)
}

func (d *LazyTree) Contains(b *sylph.Body) bool {
	if b.FixtureCount() == 0 {
		return false
	}
	for _, f := range b.Fixtures() {
		if !d.ContainsFixture(b, f) {
			return false
		}
	}
	return true
}

func (d *LazyTree) ContainsFixture(b *sylph.Body, f *sylph.Fixture) bool {
	if _, dead := d.pending[itemKey{body: b, fixture: f}]; dead {
		return false
	}
	return d.tree.ContainsFixture(b, f)
}

func (d *LazyTree) AABB(b *sylph.Body, f *sylph.Fixture) (geometry.AABB, bool) {
	if !d.ContainsFixture(b, f) {
		return geometry.AABB{}, false
	}
	return d.tree.AABB(b, f)
}

func (d *LazyTree) Size() int { return d.tree.Size() - len(d.pending) }

func (d *LazyTree) Clear() {
	d.tree.Clear()
	d.pending = make(map[itemKey]struct{})
}

func (d *LazyTree) Detect() []sylph.CollisionPair {
	pairs := d.tree.Detect()
	if len(d.pending) == 0 {
		return pairs
	}
	kept := pairs[:0]
	for _, p := range pairs {
		if d.alive(p.A) && d.alive(p.B) {
			kept = append(kept, p)
		}
	}
	return kept
}

func (d *LazyTree) DetectAABB(box geometry.AABB) []sylph.CollisionItem {
	return d.filterItems(d.tree.DetectAABB(box))
}

func (d *LazyTree) Raycast(ray geometry.Ray, maxLength float64) []sylph.CollisionItem {
	return d.filterItems(d.tree.Raycast(ray, maxLength))
}

func (d *LazyTree) filterItems(items []sylph.CollisionItem) []sylph.CollisionItem {
	if len(d.pending) == 0 {
		return items
	}
	kept := items[:0]
	for _, it := range items {
		if d.alive(it) {
			kept = append(kept, it)
		}
	}
	return kept
}

func (d *LazyTree) alive(it sylph.CollisionItem) bool {
	_, dead := d.pending[itemKey{body: it.Body, fixture: it.Fixture}]
	return !dead
}

func (d *LazyTree) Shift(delta geometry.Vec2) { d.tree.Shift(delta) }

// Optimize flushes pending removals first, then lets the underlying tree
// decide whether a rebuild pays off.
func (d *LazyTree) Optimize() {
	d.DoPendingRemoves()
	d.tree.Optimize()
}

func (d *LazyTree) SetExpansion(e Expansion) { d.tree.SetExpansion(e) }

func (d *LazyTree) Expansion() Expansion { return d.tree.Expansion() }
