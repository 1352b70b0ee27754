package sylph

// Filter decides whether two fixtures may collide. Filters of unrelated
// concrete types always allow the pair, so each filter kind only constrains
// pairs it understands.
type Filter interface {
	// Allows reports whether a fixture carrying this filter may collide
	// with a fixture carrying other.
	Allows(other Filter) bool
}

// DefaultFilter allows every pair.
type DefaultFilter struct{}

// Allows always reports true.
func (DefaultFilter) Allows(Filter) bool { return true }

// CategoryFilter is a category/mask bit filter. Two fixtures collide when
// each one's category intersects the other's mask.
type CategoryFilter struct {
	Category uint64
	Mask     uint64
}

// Allows reports whether both masks accept the other's category. A non
// category filter on the other side allows the pair.
func (f CategoryFilter) Allows(other Filter) bool {
	o, ok := other.(CategoryFilter)
	if !ok {
		return true
	}
	return f.Category&o.Mask != 0 && o.Category&f.Mask != 0
}

// TypeFilter arranges filters in a tree and allows collision with any
// ancestor, descendant or sibling-free relation: a pair is allowed when one
// filter is the other or one of its ancestors.
type TypeFilter struct {
	parent *TypeFilter
}

// NewTypeFilter returns a filter childed under parent. A nil parent makes a
// root.
func NewTypeFilter(parent *TypeFilter) *TypeFilter {
	return &TypeFilter{parent: parent}
}

// Allows reports whether the two filters are related, meaning one is an
// ancestor of or the same node as the other. A non type filter on the other
// side allows the pair.
func (f *TypeFilter) Allows(other Filter) bool {
	o, ok := other.(*TypeFilter)
	if !ok || o == nil {
		return true
	}
	return f.isAncestorOrSelf(o) || o.isAncestorOrSelf(f)
}

func (f *TypeFilter) isAncestorOrSelf(other *TypeFilter) bool {
	for n := other; n != nil; n = n.parent {
		if n == f {
			return true
		}
	}
	return false
}
