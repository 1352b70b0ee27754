package broadphase

import (
	"math"

	"go.uber.org/zap"

	"github.com/sylphengine/sylph"
	"github.com/sylphengine/sylph/geometry"
)

const nullNode = -1

// treeNode is one slot in the node pool. A node is a leaf when height is
// zero, internal when positive, and free when negative.
type treeNode struct {
	aabb    geometry.AABB
	key     itemKey
	parent  int
	child1  int
	child2  int
	height  int
	next    int
	hasItem bool
}

func (n *treeNode) leaf() bool { return n.child1 == nullNode }

// DynamicTree is a balanced binary tree of fattened bounds with fixtures at
// the leaves. Insertion descends toward the sibling that grows total
// perimeter the least; rotations on the way back up keep the tree balanced.
// Queries prune whole subtrees on a single box test.
type DynamicTree struct {
	nodes    []treeNode
	root     int
	freeList int
	leaves   map[itemKey]int

	expansion     Expansion
	optimizeRatio float64
	pairCapacity  int
}

var _ Detector = (*DynamicTree)(nil)

// NewDynamicTree returns an empty tree with the default expansion.
func NewDynamicTree() *DynamicTree {
	return NewDynamicTreeTuned(sylph.DefaultTuning())
}

// NewDynamicTreeTuned sizes the tree from the given tuning.
func NewDynamicTreeTuned(t sylph.Tuning) *DynamicTree {
	capacity := t.InitialCapacity
	if capacity < 1 {
		capacity = 1
	}
	d := &DynamicTree{
		nodes:         make([]treeNode, capacity),
		root:          nullNode,
		leaves:        make(map[itemKey]int, capacity),
		expansion:     StaticExpansion{Margin: t.AABBExpansion},
		optimizeRatio: t.OptimizeRatio,
		pairCapacity:  t.InitialPairCapacity,
	}
	d.initFreeList(0)
	return d
}

func (d *DynamicTree) initFreeList(from int) {
	for i := from; i < len(d.nodes)-1; i++ {
		d.nodes[i].next = i + 1
		d.nodes[i].height = -1
	}
	d.nodes[len(d.nodes)-1].next = nullNode
	d.nodes[len(d.nodes)-1].height = -1
	d.freeList = from
}

func (d *DynamicTree) allocateNode() int {
	if d.freeList == nullNode {
		from := len(d.nodes)
		grown := make([]treeNode, 2*len(d.nodes))
		copy(grown, d.nodes)
		d.nodes = grown
		d.initFreeList(from)
	}
	id := d.freeList
	d.freeList = d.nodes[id].next
	d.nodes[id] = treeNode{
		parent: nullNode,
		child1: nullNode,
		child2: nullNode,
	}
	return id
}

func (d *DynamicTree) freeNode(id int) {
	d.nodes[id] = treeNode{next: d.freeList, height: -1, child1: nullNode, child2: nullNode, parent: nullNode}
	d.freeList = id
}

func (d *DynamicTree) Add(b *sylph.Body) {
	for _, f := range b.Fixtures() {
		d.AddFixture(b, f)
	}
}

func (d *DynamicTree) AddFixture(b *sylph.Body, f *sylph.Fixture) {
	k := itemKey{body: b, fixture: f}
	box := d.expansion.Expand(tightAABB(b, f))
	if id, ok := d.leaves[k]; ok {
		d.removeLeaf(id)
		d.nodes[id].aabb = box
		d.insertLeaf(id)
		return
	}
	id := d.allocateNode()
	d.nodes[id].aabb = box
	d.nodes[id].key = k
	d.nodes[id].hasItem = true
	d.leaves[k] = id
	d.insertLeaf(id)
}

func (d *DynamicTree) Remove(b *sylph.Body) bool {
	removed := false
	for _, f := range b.Fixtures() {
		removed = d.RemoveFixture(b, f) || removed
	}
	return removed
}

func (d *DynamicTree) RemoveFixture(b *sylph.Body, f *sylph.Fixture) bool {
	k := itemKey{body: b, fixture: f}
	id, ok := d.leaves[k]
	if !ok {
		return false
	}
	delete(d.leaves, k)
	d.removeLeaf(id)
	d.freeNode(id)
	return true
}

func (d *DynamicTree) Update(b *sylph.Body) {
	for _, f := range b.Fixtures() {
		d.UpdateFixture(b, f)
	}
}

func (d *DynamicTree) UpdateFixture(b *sylph.Body, f *sylph.Fixture) {
	k := itemKey{body: b, fixture: f}
	id, ok := d.leaves[k]
	if !ok {
		d.AddFixture(b, f)
		return
	}
	tight := tightAABB(b, f)
	if d.nodes[id].aabb.ContainsAABB(tight) {
		return
	}
	d.removeLeaf(id)
	d.nodes[id].aabb = d.expansion.Expand(tight)
	d.insertLeaf(id)
}

func (d *DynamicTree) Contains(b *sylph.Body) bool {
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

func (d *DynamicTree) ContainsFixture(b *sylph.Body, f *sylph.Fixture) bool {
	_, ok := d.leaves[itemKey{body: b, fixture: f}]
	return ok
}

func (d *DynamicTree) AABB(b *sylph.Body, f *sylph.Fixture) (geometry.AABB, bool) {
	id, ok := d.leaves[itemKey{body: b, fixture: f}]
	if !ok {
		return geometry.AABB{}, false
	}
	return d.nodes[id].aabb, true
}

func (d *DynamicTree) Size() int { return len(d.leaves) }

func (d *DynamicTree) Clear() {
	d.root = nullNode
	d.leaves = make(map[itemKey]int)
	d.initFreeList(0)
}

// insertLeaf descends from the root choosing the child whose box grows the
// least, then walks back up refitting and balancing.
func (d *DynamicTree) insertLeaf(leaf int) {
	if d.root == nullNode {
		d.root = leaf
		d.nodes[leaf].parent = nullNode
		return
	}

	leafAABB := d.nodes[leaf].aabb
	index := d.root
	for !d.nodes[index].leaf() {
		child1 := d.nodes[index].child1
		child2 := d.nodes[index].child2

		perimeter := d.nodes[index].aabb.Perimeter()
		combined := d.nodes[index].aabb.Union(leafAABB).Perimeter()

		// Cost of making a new parent for this node and the leaf.
		cost := 2 * combined
		inheritance := 2 * (combined - perimeter)

		cost1 := descendCost(leafAABB, d.nodes[child1]) + inheritance
		cost2 := descendCost(leafAABB, d.nodes[child2]) + inheritance

		if cost < cost1 && cost < cost2 {
			break
		}
		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index
	oldParent := d.nodes[sibling].parent
	newParent := d.allocateNode()
	d.nodes[newParent].parent = oldParent
	d.nodes[newParent].aabb = leafAABB.Union(d.nodes[sibling].aabb)
	d.nodes[newParent].height = d.nodes[sibling].height + 1
	d.nodes[newParent].child1 = sibling
	d.nodes[newParent].child2 = leaf
	d.nodes[sibling].parent = newParent
	d.nodes[leaf].parent = newParent

	if oldParent == nullNode {
		d.root = newParent
	} else if d.nodes[oldParent].child1 == sibling {
		d.nodes[oldParent].child1 = newParent
	} else {
		d.nodes[oldParent].child2 = newParent
	}

	d.refitFrom(d.nodes[leaf].parent)
}

func descendCost(leafAABB geometry.AABB, child treeNode) float64 {
	combined := leafAABB.Union(child.aabb).Perimeter()
	if child.leaf() {
		return combined
	}
	return combined - child.aabb.Perimeter()
}

func (d *DynamicTree) removeLeaf(leaf int) {
	if leaf == d.root {
		d.root = nullNode
		return
	}

	parent := d.nodes[leaf].parent
	grandParent := d.nodes[parent].parent
	sibling := d.nodes[parent].child1
	if sibling == leaf {
		sibling = d.nodes[parent].child2
	}

	if grandParent == nullNode {
		d.root = sibling
		d.nodes[sibling].parent = nullNode
		d.freeNode(parent)
		return
	}

	if d.nodes[grandParent].child1 == parent {
		d.nodes[grandParent].child1 = sibling
	} else {
		d.nodes[grandParent].child2 = sibling
	}
	d.nodes[sibling].parent = grandParent
	d.freeNode(parent)

	d.refitFrom(grandParent)
}

// refitFrom walks up to the root, balancing and recomputing box and height
// at every ancestor.
func (d *DynamicTree) refitFrom(index int) {
	for index != nullNode {
		index = d.balance(index)

		child1 := d.nodes[index].child1
		child2 := d.nodes[index].child2
		d.nodes[index].height = 1 + maxInt(d.nodes[child1].height, d.nodes[child2].height)
		d.nodes[index].aabb = d.nodes[child1].aabb.Union(d.nodes[child2].aabb)

		index = d.nodes[index].parent
	}
}

// balance performs one rotation if the subtree at iA is more than one level
// lopsided, returning the new subtree root.
func (d *DynamicTree) balance(iA int) int {
	a := &d.nodes[iA]
	if a.leaf() || a.height < 2 {
		return iA
	}

	iB := a.child1
	iC := a.child2
	b := &d.nodes[iB]
	c := &d.nodes[iC]

	bal := c.height - b.height

	// Rotate C up.
	if bal > 1 {
		iF := c.child1
		iG := c.child2
		f := &d.nodes[iF]
		g := &d.nodes[iG]

		c.child1 = iA
		c.parent = a.parent
		a.parent = iC

		if c.parent != nullNode {
			if d.nodes[c.parent].child1 == iA {
				d.nodes[c.parent].child1 = iC
			} else {
				d.nodes[c.parent].child2 = iC
			}
		} else {
			d.root = iC
		}

		if f.height > g.height {
			c.child2 = iF
			a.child2 = iG
			g.parent = iA
			a.aabb = b.aabb.Union(g.aabb)
			c.aabb = a.aabb.Union(f.aabb)
			a.height = 1 + maxInt(b.height, g.height)
			c.height = 1 + maxInt(a.height, f.height)
		} else {
			c.child2 = iG
			a.child2 = iF
			f.parent = iA
			a.aabb = b.aabb.Union(f.aabb)
			c.aabb = a.aabb.Union(g.aabb)
			a.height = 1 + maxInt(b.height, f.height)
			c.height = 1 + maxInt(a.height, g.height)
		}
		return iC
	}

	// Rotate B up.
	if bal < -1 {
		iD := b.child1
		iE := b.child2
		e := &d.nodes[iE]
		dn := &d.nodes[iD]

		b.child1 = iA
		b.parent = a.parent
		a.parent = iB

		if b.parent != nullNode {
			if d.nodes[b.parent].child1 == iA {
				d.nodes[b.parent].child1 = iB
			} else {
				d.nodes[b.parent].child2 = iB
			}
		} else {
			d.root = iB
		}

		if dn.height > e.height {
			b.child2 = iD
			a.child1 = iE
			e.parent = iA
			a.aabb = c.aabb.Union(e.aabb)
			b.aabb = a.aabb.Union(dn.aabb)
			a.height = 1 + maxInt(c.height, e.height)
			b.height = 1 + maxInt(a.height, dn.height)
		} else {
			b.child2 = iE
			a.child1 = iD
			dn.parent = iA
			a.aabb = c.aabb.Union(dn.aabb)
			b.aabb = a.aabb.Union(e.aabb)
			a.height = 1 + maxInt(c.height, dn.height)
			b.height = 1 + maxInt(a.height, e.height)
		}
		return iB
	}

	return iA
}

func (d *DynamicTree) Detect() []sylph.CollisionPair {
	pairs := make([]sylph.CollisionPair, 0, d.pairCapacity)
	stack := make([]int, 0, 64)
	for _, leaf := range d.leaves {
		leafNode := d.nodes[leaf]
		if !leafNode.key.body.Enabled() {
			continue
		}
		stack = append(stack[:0], d.root)
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if id == nullNode {
				continue
			}
			n := d.nodes[id]
			if !n.aabb.Overlaps(leafNode.aabb) {
				continue
			}
			if n.leaf() {
				// Visit each pair from its lower-indexed leaf only, so no
				// pair appears twice.
				if id <= leaf || n.key.body == leafNode.key.body || !n.key.body.Enabled() {
					continue
				}
				pairs = append(pairs, pairOf(leafNode.key, n.key))
				continue
			}
			stack = append(stack, n.child1, n.child2)
		}
	}
	return pairs
}

func (d *DynamicTree) DetectAABB(box geometry.AABB) []sylph.CollisionItem {
	var items []sylph.CollisionItem
	d.query(func(n treeNode) bool { return n.aabb.Overlaps(box) }, func(n treeNode) {
		items = append(items, n.key.item())
	})
	return items
}

func (d *DynamicTree) Raycast(ray geometry.Ray, maxLength float64) []sylph.CollisionItem {
	length := maxLength
	if length <= 0 && d.root != nullNode {
		length = rayLength(ray, maxLength, d.nodes[d.root].aabb)
	}
	var items []sylph.CollisionItem
	d.query(func(n treeNode) bool { return n.aabb.IntersectsRay(ray, length) }, func(n treeNode) {
		items = append(items, n.key.item())
	})
	return items
}

// query walks the tree pruning subtrees that fail the test, calling visit
// on every surviving leaf.
func (d *DynamicTree) query(test func(treeNode) bool, visit func(treeNode)) {
	if d.root == nullNode {
		return
	}
	stack := []int{d.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := d.nodes[id]
		if !test(n) {
			continue
		}
		if n.leaf() {
			visit(n)
			continue
		}
		stack = append(stack, n.child1, n.child2)
	}
}

func (d *DynamicTree) Shift(delta geometry.Vec2) {
	for i := range d.nodes {
		if d.nodes[i].height >= 0 {
			d.nodes[i].aabb = d.nodes[i].aabb.Translated(delta)
		}
	}
}

// Height returns the root height; an empty tree has height zero.
func (d *DynamicTree) Height() int {
	if d.root == nullNode {
		return 0
	}
	return d.nodes[d.root].height
}

// PerimeterRatio measures tree quality as the total internal node perimeter
// over the root perimeter. A freshly built tree sits near the minimum; the
// ratio grows as incremental updates degrade the structure.
func (d *DynamicTree) PerimeterRatio() float64 {
	if d.root == nullNode {
		return 0
	}
	rootPerimeter := d.nodes[d.root].aabb.Perimeter()
	if rootPerimeter == 0 {
		return 0
	}
	total := 0.0
	for i := range d.nodes {
		n := &d.nodes[i]
		if n.height > 0 {
			total += n.aabb.Perimeter()
		}
	}
	return total / rootPerimeter
}

// Optimize rebuilds the tree bottom up when the perimeter ratio shows it
// has degraded past the tuning threshold.
func (d *DynamicTree) Optimize() {
	ratio := d.PerimeterRatio()
	if ratio <= d.optimizeRatio*float64(maxInt(d.Height(), 1)) {
		return
	}
	logger.Debug("rebuilding dynamic tree", zap.Float64("perimeter_ratio", ratio))
	d.RebuildBottomUp()
}

// RebuildBottomUp discards the internal structure and rebuilds it by
// greedily pairing the two subtrees whose union has the smallest perimeter.
// The result is near optimal but costs quadratic time, so it is an explicit
// maintenance call, not part of updates.
func (d *DynamicTree) RebuildBottomUp() {
	if len(d.leaves) == 0 {
		return
	}

	roots := make([]int, 0, len(d.leaves))
	for i := range d.nodes {
		if d.nodes[i].height < 0 {
			continue
		}
		if d.nodes[i].leaf() {
			d.nodes[i].parent = nullNode
			roots = append(roots, i)
		} else {
			d.freeNode(i)
		}
	}

	for len(roots) > 1 {
		minCost := math.Inf(1)
		iMin, jMin := 0, 1
		for i := 0; i < len(roots); i++ {
			for j := i + 1; j < len(roots); j++ {
				cost := d.nodes[roots[i]].aabb.Union(d.nodes[roots[j]].aabb).Perimeter()
				if cost < minCost {
					minCost = cost
					iMin, jMin = i, j
				}
			}
		}

		child1 := roots[iMin]
		child2 := roots[jMin]
		parent := d.allocateNode()
		d.nodes[parent].child1 = child1
		d.nodes[parent].child2 = child2
		d.nodes[parent].height = 1 + maxInt(d.nodes[child1].height, d.nodes[child2].height)
		d.nodes[parent].aabb = d.nodes[child1].aabb.Union(d.nodes[child2].aabb)
		d.nodes[child1].parent = parent
		d.nodes[child2].parent = parent

		roots[iMin] = parent
		roots[jMin] = roots[len(roots)-1]
		roots = roots[:len(roots)-1]
	}

	d.root = roots[0]
}

func (d *DynamicTree) SetExpansion(e Expansion) {
	if e != nil {
		d.expansion = e
	}
}

func (d *DynamicTree) Expansion() Expansion { return d.expansion }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
