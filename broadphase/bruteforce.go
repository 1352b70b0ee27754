package broadphase

import (
	"github.com/sylphengine/sylph"
	"github.com/sylphengine/sylph/geometry"
)

// BruteForce tests every stored box against every other. It is quadratic
// and exists as the reference the other indexes are validated against, and
// for very small sets where it simply wins.
type BruteForce struct {
	keys         []itemKey
	proxies      map[itemKey]*proxy
	expansion    Expansion
	pairCapacity int
}

type proxy struct {
	key  itemKey
	aabb geometry.AABB
}

var _ Detector = (*BruteForce)(nil)

// NewBruteForce returns an empty brute force index with the default
// expansion.
func NewBruteForce() *BruteForce {
	return NewBruteForceTuned(sylph.DefaultTuning())
}

// NewBruteForceTuned sizes the index from the given tuning.
func NewBruteForceTuned(t sylph.Tuning) *BruteForce {
	return &BruteForce{
		keys:         make([]itemKey, 0, t.InitialCapacity),
		proxies:      make(map[itemKey]*proxy, t.InitialCapacity),
		expansion:    StaticExpansion{Margin: t.AABBExpansion},
		pairCapacity: t.InitialPairCapacity,
	}
}

func (d *BruteForce) Add(b *sylph.Body) {
	for _, f := range b.Fixtures() {
		d.AddFixture(b, f)
	}
}

func (d *BruteForce) AddFixture(b *sylph.Body, f *sylph.Fixture) {
	k := itemKey{body: b, fixture: f}
	box := d.expansion.Expand(tightAABB(b, f))
	if p, ok := d.proxies[k]; ok {
		p.aabb = box
		return
	}
	d.keys = append(d.keys, k)
	d.proxies[k] = &proxy{key: k, aabb: box}
}

func (d *BruteForce) Remove(b *sylph.Body) bool {
	removed := false
	for _, f := range b.Fixtures() {
		removed = d.RemoveFixture(b, f) || removed
	}
	return removed
}

func (d *BruteForce) RemoveFixture(b *sylph.Body, f *sylph.Fixture) bool {
	k := itemKey{body: b, fixture: f}
	if _, ok := d.proxies[k]; !ok {
		return false
	}
	delete(d.proxies, k)
	for i, key := range d.keys {
		if key == k {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
	return true
}

func (d *BruteForce) Update(b *sylph.Body) {
	for _, f := range b.Fixtures() {
		d.UpdateFixture(b, f)
	}
}

func (d *BruteForce) UpdateFixture(b *sylph.Body, f *sylph.Fixture) {
	k := itemKey{body: b, fixture: f}
	p, ok := d.proxies[k]
	if !ok {
		d.AddFixture(b, f)
		return
	}
	tight := tightAABB(b, f)
	if p.aabb.ContainsAABB(tight) {
		return
	}
	p.aabb = d.expansion.Expand(tight)
}

func (d *BruteForce) Contains(b *sylph.Body) bool {
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

func (d *BruteForce) ContainsFixture(b *sylph.Body, f *sylph.Fixture) bool {
	_, ok := d.proxies[itemKey{body: b, fixture: f}]
	return ok
}

func (d *BruteForce) AABB(b *sylph.Body, f *sylph.Fixture) (geometry.AABB, bool) {
	p, ok := d.proxies[itemKey{body: b, fixture: f}]
	if !ok {
		return geometry.AABB{}, false
	}
	return p.aabb, true
}

func (d *BruteForce) Size() int { return len(d.keys) }

func (d *BruteForce) Clear() {
	d.keys = d.keys[:0]
	d.proxies = make(map[itemKey]*proxy)
}

func (d *BruteForce) Detect() []sylph.CollisionPair {
	pairs := make([]sylph.CollisionPair, 0, d.pairCapacity)
	for i := 0; i < len(d.keys); i++ {
		pi := d.proxies[d.keys[i]]
		if !pi.key.body.Enabled() {
			continue
		}
		for j := i + 1; j < len(d.keys); j++ {
			pj := d.proxies[d.keys[j]]
			if pi.key.body == pj.key.body || !pj.key.body.Enabled() {
				continue
			}
			if pi.aabb.Overlaps(pj.aabb) {
				pairs = append(pairs, pairOf(pi.key, pj.key))
			}
		}
	}
	return pairs
}

func (d *BruteForce) DetectAABB(box geometry.AABB) []sylph.CollisionItem {
	var items []sylph.CollisionItem
	for _, k := range d.keys {
		if d.proxies[k].aabb.Overlaps(box) {
			items = append(items, k.item())
		}
	}
	return items
}

func (d *BruteForce) Raycast(ray geometry.Ray, maxLength float64) []sylph.CollisionItem {
	length := rayLength(ray, maxLength, d.bounds())
	var items []sylph.CollisionItem
	for _, k := range d.keys {
		if d.proxies[k].aabb.IntersectsRay(ray, length) {
			items = append(items, k.item())
		}
	}
	return items
}

func (d *BruteForce) Shift(delta geometry.Vec2) {
	for _, p := range d.proxies {
		p.aabb = p.aabb.Translated(delta)
	}
}

// Optimize is a no-op: there is no structure to optimize.
func (d *BruteForce) Optimize() {}

func (d *BruteForce) SetExpansion(e Expansion) {
	if e != nil {
		d.expansion = e
	}
}

func (d *BruteForce) Expansion() Expansion { return d.expansion }

func (d *BruteForce) bounds() geometry.AABB {
	if len(d.keys) == 0 {
		return geometry.AABB{}
	}
	box := d.proxies[d.keys[0]].aabb
	for _, k := range d.keys[1:] {
		box = box.Union(d.proxies[k].aabb)
	}
	return box
}
