package broadphase

import (
	"sort"

	"github.com/sylphengine/sylph"
	"github.com/sylphengine/sylph/geometry"
)

// SweepAndPrune keeps proxies sorted by the minimum x of their stored
// bounds. A single sweep over the sorted order finds overlapping boxes; the
// order is repaired incrementally on update, so small per-frame motion costs
// a short insertion pass rather than a full sort.
type SweepAndPrune struct {
	sorted       []*proxy
	index        map[itemKey]*proxy
	expansion    Expansion
	pairCapacity int
}

var _ Detector = (*SweepAndPrune)(nil)

// NewSweepAndPrune returns an empty index with the default expansion.
func NewSweepAndPrune() *SweepAndPrune {
	return NewSweepAndPruneTuned(sylph.DefaultTuning())
}

// NewSweepAndPruneTuned sizes the index from the given tuning.
func NewSweepAndPruneTuned(t sylph.Tuning) *SweepAndPrune {
	return &SweepAndPrune{
		sorted:       make([]*proxy, 0, t.InitialCapacity),
		index:        make(map[itemKey]*proxy, t.InitialCapacity),
		expansion:    StaticExpansion{Margin: t.AABBExpansion},
		pairCapacity: t.InitialPairCapacity,
	}
}

func (d *SweepAndPrune) Add(b *sylph.Body) {
	for _, f := range b.Fixtures() {
		d.AddFixture(b, f)
	}
}

func (d *SweepAndPrune) AddFixture(b *sylph.Body, f *sylph.Fixture) {
	k := itemKey{body: b, fixture: f}
	box := d.expansion.Expand(tightAABB(b, f))
	if p, ok := d.index[k]; ok {
		p.aabb = box
		d.repair()
		return
	}
	p := &proxy{key: k, aabb: box}
	d.index[k] = p

	at := sort.Search(len(d.sorted), func(i int) bool {
		return d.sorted[i].aabb.Min.X() >= box.Min.X()
	})
	d.sorted = append(d.sorted, nil)
	copy(d.sorted[at+1:], d.sorted[at:])
	d.sorted[at] = p
}

func (d *SweepAndPrune) Remove(b *sylph.Body) bool {
	removed := false
	for _, f := range b.Fixtures() {
		removed = d.RemoveFixture(b, f) || removed
	}
	return removed
}

func (d *SweepAndPrune) RemoveFixture(b *sylph.Body, f *sylph.Fixture) bool {
	k := itemKey{body: b, fixture: f}
	p, ok := d.index[k]
	if !ok {
		return false
	}
	delete(d.index, k)
	for i, c := range d.sorted {
		if c == p {
			d.sorted = append(d.sorted[:i], d.sorted[i+1:]...)
			break
		}
	}
	return true
}

func (d *SweepAndPrune) Update(b *sylph.Body) {
	for _, f := range b.Fixtures() {
		d.UpdateFixture(b, f)
	}
}

func (d *SweepAndPrune) UpdateFixture(b *sylph.Body, f *sylph.Fixture) {
	k := itemKey{body: b, fixture: f}
	p, ok := d.index[k]
	if !ok {
		d.AddFixture(b, f)
		return
	}
	tight := tightAABB(b, f)
	if p.aabb.ContainsAABB(tight) {
		return
	}
	p.aabb = d.expansion.Expand(tight)
	d.repair()
}

// repair restores the sort order with a single insertion pass, which is
// near linear when only a few proxies moved.
func (d *SweepAndPrune) repair() {
	for i := 1; i < len(d.sorted); i++ {
		p := d.sorted[i]
		j := i - 1
		for j >= 0 && d.sorted[j].aabb.Min.X() > p.aabb.Min.X() {
			d.sorted[j+1] = d.sorted[j]
			j--
		}
		d.sorted[j+1] = p
	}
}

func (d *SweepAndPrune) Contains(b *sylph.Body) bool {
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

func (d *SweepAndPrune) ContainsFixture(b *sylph.Body, f *sylph.Fixture) bool {
	_, ok := d.index[itemKey{body: b, fixture: f}]
	return ok
}

func (d *SweepAndPrune) AABB(b *sylph.Body, f *sylph.Fixture) (geometry.AABB, bool) {
	p, ok := d.index[itemKey{body: b, fixture: f}]
	if !ok {
		return geometry.AABB{}, false
	}
	return p.aabb, true
}

func (d *SweepAndPrune) Size() int { return len(d.sorted) }

func (d *SweepAndPrune) Clear() {
	d.sorted = d.sorted[:0]
	d.index = make(map[itemKey]*proxy)
}

func (d *SweepAndPrune) Detect() []sylph.CollisionPair {
	pairs := make([]sylph.CollisionPair, 0, d.pairCapacity)
	for i, p := range d.sorted {
		if !p.key.body.Enabled() {
			continue
		}
		for j := i + 1; j < len(d.sorted); j++ {
			q := d.sorted[j]
			// The sort order bounds the sweep: once a box starts past the
			// end of p, so does everything after it.
			if q.aabb.Min.X() > p.aabb.Max.X() {
				break
			}
			if p.key.body == q.key.body || !q.key.body.Enabled() {
				continue
			}
			if p.aabb.Max.Y() >= q.aabb.Min.Y() && p.aabb.Min.Y() <= q.aabb.Max.Y() {
				pairs = append(pairs, pairOf(p.key, q.key))
			}
		}
	}
	return pairs
}

func (d *SweepAndPrune) DetectAABB(box geometry.AABB) []sylph.CollisionItem {
	var items []sylph.CollisionItem
	for _, p := range d.sorted {
		if p.aabb.Min.X() > box.Max.X() {
			break
		}
		if p.aabb.Overlaps(box) {
			items = append(items, p.key.item())
		}
	}
	return items
}

func (d *SweepAndPrune) Raycast(ray geometry.Ray, maxLength float64) []sylph.CollisionItem {
	length := rayLength(ray, maxLength, d.bounds())
	var items []sylph.CollisionItem
	for _, p := range d.sorted {
		if p.aabb.IntersectsRay(ray, length) {
			items = append(items, p.key.item())
		}
	}
	return items
}

func (d *SweepAndPrune) Shift(delta geometry.Vec2) {
	for _, p := range d.sorted {
		p.aabb = p.aabb.Translated(delta)
	}
}

// Optimize re-sorts fully, useful after a Shift or bulk load.
func (d *SweepAndPrune) Optimize() {
	sort.SliceStable(d.sorted, func(i, j int) bool {
		return d.sorted[i].aabb.Min.X() < d.sorted[j].aabb.Min.X()
	})
}

func (d *SweepAndPrune) SetExpansion(e Expansion) {
	if e != nil {
		d.expansion = e
	}
}

func (d *SweepAndPrune) Expansion() Expansion { return d.expansion }

func (d *SweepAndPrune) bounds() geometry.AABB {
	if len(d.sorted) == 0 {
		return geometry.AABB{}
	}
	box := d.sorted[0].aabb
	for _, p := range d.sorted[1:] {
		box = box.Union(p.aabb)
	}
	return box
}
