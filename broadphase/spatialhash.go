package broadphase

import (
	"math"

	"github.com/sylphengine/sylph"
	"github.com/sylphengine/sylph/geometry"
)

// DefaultCellSize is the spatial hash cell size used when the caller does
// not pick one. A cell size close to the typical fixture extent keeps cell
// spans short.
const DefaultCellSize = 1.0

// SpatialHash buckets stored bounds into a fixed array of grid cells
// addressed by a hash of the integer cell coordinates. Insertion and
// removal touch only the cells a box spans, so it handles large worlds with
// clustered content well. Distinct cells may collide into the same bucket;
// every query confirms candidates against their stored bounds.
type SpatialHash struct {
	cellSize     float64
	cellMask     int
	cells        [][]itemKey
	keys         []itemKey
	index        map[itemKey]int
	proxies      map[itemKey]*proxy
	expansion    Expansion
	pairCapacity int
}

var _ Detector = (*SpatialHash)(nil)

// NewSpatialHash returns an empty spatial hash with the given cell size and
// the default tuning. A non-positive cell size falls back to
// DefaultCellSize.
func NewSpatialHash(cellSize float64) *SpatialHash {
	return NewSpatialHashTuned(cellSize, sylph.DefaultTuning())
}

// NewSpatialHashTuned sizes the bucket array and initial capacities from
// the given tuning.
func NewSpatialHashTuned(cellSize float64, t sylph.Tuning) *SpatialHash {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	numCells := nextPowerOfTwo(t.InitialCapacity * 4)
	return &SpatialHash{
		cellSize:     cellSize,
		cellMask:     numCells - 1,
		cells:        make([][]itemKey, numCells),
		keys:         make([]itemKey, 0, t.InitialCapacity),
		index:        make(map[itemKey]int, t.InitialCapacity),
		proxies:      make(map[itemKey]*proxy, t.InitialCapacity),
		expansion:    StaticExpansion{Margin: t.AABBExpansion},
		pairCapacity: t.InitialPairCapacity,
	}
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// cellIndex hashes integer cell coordinates into the bucket array.
func (d *SpatialHash) cellIndex(cx, cy int) int {
	h := (cx * 73856093) ^ (cy * 19349663)
	return h & d.cellMask
}

func (d *SpatialHash) cellSpan(box geometry.AABB) (minX, minY, maxX, maxY int) {
	minX = int(math.Floor(box.Min.X() / d.cellSize))
	minY = int(math.Floor(box.Min.Y() / d.cellSize))
	maxX = int(math.Floor(box.Max.X() / d.cellSize))
	maxY = int(math.Floor(box.Max.Y() / d.cellSize))
	return
}

func (d *SpatialHash) insertCells(k itemKey, box geometry.AABB) {
	minX, minY, maxX, maxY := d.cellSpan(box)
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			i := d.cellIndex(x, y)
			d.cells[i] = append(d.cells[i], k)
		}
	}
}

func (d *SpatialHash) removeCells(k itemKey, box geometry.AABB) {
	minX, minY, maxX, maxY := d.cellSpan(box)
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			i := d.cellIndex(x, y)
			bucket := d.cells[i]
			for j, key := range bucket {
				if key == k {
					d.cells[i] = append(bucket[:j], bucket[j+1:]...)
					break
				}
			}
		}
	}
}

func (d *SpatialHash) Add(b *sylph.Body) {
	for _, f := range b.Fixtures() {
		d.AddFixture(b, f)
	}
}

func (d *SpatialHash) AddFixture(b *sylph.Body, f *sylph.Fixture) {
	k := itemKey{body: b, fixture: f}
	box := d.expansion.Expand(tightAABB(b, f))
	if p, ok := d.proxies[k]; ok {
		d.removeCells(k, p.aabb)
		p.aabb = box
		d.insertCells(k, box)
		return
	}
	d.index[k] = len(d.keys)
	d.keys = append(d.keys, k)
	d.proxies[k] = &proxy{key: k, aabb: box}
	d.insertCells(k, box)
}

func (d *SpatialHash) Remove(b *sylph.Body) bool {
	removed := false
	for _, f := range b.Fixtures() {
		removed = d.RemoveFixture(b, f) || removed
	}
	return removed
}

func (d *SpatialHash) RemoveFixture(b *sylph.Body, f *sylph.Fixture) bool {
	k := itemKey{body: b, fixture: f}
	p, ok := d.proxies[k]
	if !ok {
		return false
	}
	d.removeCells(k, p.aabb)
	delete(d.proxies, k)
	i := d.index[k]
	last := len(d.keys) - 1
	d.keys[i] = d.keys[last]
	d.index[d.keys[i]] = i
	d.keys = d.keys[:last]
	delete(d.index, k)
	return true
}

func (d *SpatialHash) Update(b *sylph.Body) {
	for _, f := range b.Fixtures() {
		d.UpdateFixture(b, f)
	}
}

func (d *SpatialHash) UpdateFixture(b *sylph.Body, f *sylph.Fixture) {
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
	d.removeCells(k, p.aabb)
	p.aabb = d.expansion.Expand(tight)
	d.insertCells(k, p.aabb)
}

func (d *SpatialHash) Contains(b *sylph.Body) bool {
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

func (d *SpatialHash) ContainsFixture(b *sylph.Body, f *sylph.Fixture) bool {
	_, ok := d.proxies[itemKey{body: b, fixture: f}]
	return ok
}

func (d *SpatialHash) AABB(b *sylph.Body, f *sylph.Fixture) (geometry.AABB, bool) {
	p, ok := d.proxies[itemKey{body: b, fixture: f}]
	if !ok {
		return geometry.AABB{}, false
	}
	return p.aabb, true
}

func (d *SpatialHash) Size() int { return len(d.keys) }

func (d *SpatialHash) Clear() {
	d.keys = d.keys[:0]
	d.index = make(map[itemKey]int)
	d.proxies = make(map[itemKey]*proxy)
	for i := range d.cells {
		d.cells[i] = nil
	}
}

func (d *SpatialHash) Detect() []sylph.CollisionPair {
	pairs := make([]sylph.CollisionPair, 0, d.pairCapacity)
	seen := make(map[itemKey]struct{})
	for i, k := range d.keys {
		p := d.proxies[k]
		if !p.key.body.Enabled() {
			continue
		}
		for key := range seen {
			delete(seen, key)
		}
		minX, minY, maxX, maxY := d.cellSpan(p.aabb)
		for x := minX; x <= maxX; x++ {
			for y := minY; y <= maxY; y++ {
				for _, cand := range d.cells[d.cellIndex(x, y)] {
					if d.index[cand] <= i {
						continue
					}
					if _, dup := seen[cand]; dup {
						continue
					}
					seen[cand] = struct{}{}
					q := d.proxies[cand]
					if q.key.body == p.key.body || !q.key.body.Enabled() {
						continue
					}
					if p.aabb.Overlaps(q.aabb) {
						pairs = append(pairs, pairOf(p.key, q.key))
					}
				}
			}
		}
	}
	return pairs
}

func (d *SpatialHash) DetectAABB(box geometry.AABB) []sylph.CollisionItem {
	minX, minY, maxX, maxY := d.cellSpan(box)
	// A query spanning more cells than exist in the bucket array would
	// visit buckets repeatedly; a linear pass is cheaper then.
	if (maxX-minX+1)*(maxY-minY+1) >= len(d.cells) {
		var items []sylph.CollisionItem
		for _, k := range d.keys {
			if d.proxies[k].aabb.Overlaps(box) {
				items = append(items, k.item())
			}
		}
		return items
	}
	var items []sylph.CollisionItem
	seen := make(map[itemKey]struct{})
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for _, k := range d.cells[d.cellIndex(x, y)] {
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				if d.proxies[k].aabb.Overlaps(box) {
					items = append(items, k.item())
				}
			}
		}
	}
	return items
}

// Raycast scans all stored bounds. Bucket collisions make a cell walk along
// the ray confirm nearly as many candidates, so the linear pass stays.
func (d *SpatialHash) Raycast(ray geometry.Ray, maxLength float64) []sylph.CollisionItem {
	length := rayLength(ray, maxLength, d.bounds())
	var items []sylph.CollisionItem
	for _, k := range d.keys {
		if d.proxies[k].aabb.IntersectsRay(ray, length) {
			items = append(items, k.item())
		}
	}
	return items
}

func (d *SpatialHash) Shift(delta geometry.Vec2) {
	for i := range d.cells {
		d.cells[i] = nil
	}
	for _, p := range d.proxies {
		p.aabb = p.aabb.Translated(delta)
		d.insertCells(p.key, p.aabb)
	}
}

// Optimize re-derives the cell size from the mean stored extent and
// rebuckets everything. Cells matched to content size keep spans short and
// buckets small.
func (d *SpatialHash) Optimize() {
	if len(d.keys) == 0 {
		return
	}
	total := 0.0
	for _, k := range d.keys {
		box := d.proxies[k].aabb
		total += math.Max(box.Width(), box.Height())
	}
	size := total / float64(len(d.keys))
	if size <= 0 {
		return
	}
	d.cellSize = size
	for i := range d.cells {
		d.cells[i] = nil
	}
	for _, k := range d.keys {
		d.insertCells(k, d.proxies[k].aabb)
	}
}

func (d *SpatialHash) SetExpansion(e Expansion) {
	if e != nil {
		d.expansion = e
	}
}

func (d *SpatialHash) Expansion() Expansion { return d.expansion }

func (d *SpatialHash) bounds() geometry.AABB {
	if len(d.keys) == 0 {
		return geometry.AABB{}
	}
	box := d.proxies[d.keys[0]].aabb
	for _, k := range d.keys[1:] {
		box = box.Union(d.proxies[k].aabb)
	}
	return box
}
