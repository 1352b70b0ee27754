package sylph

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// CollisionItem names one side of a collision: a fixture on a body.
type CollisionItem struct {
	Body    *Body
	Fixture *Fixture
}

// Hash returns a stable identity hash for the item, derived from the body
// id and the fixture's own id. Neither moves when other fixtures come or
// go, so the hash stays valid across frames for contact caching.
func (it CollisionItem) Hash() uint64 {
	var buf [24]byte
	if it.Body != nil {
		id := it.Body.ID()
		copy(buf[:16], id[:])
	}
	if it.Fixture != nil {
		binary.LittleEndian.PutUint64(buf[16:], it.Fixture.ID())
	}
	return xxhash.Sum64(buf[:])
}

// Equal reports whether both items name the same body and fixture.
func (it CollisionItem) Equal(other CollisionItem) bool {
	return it.Body == other.Body && it.Fixture == other.Fixture
}

// CollisionPair is an unordered fixture pair. Its hash and equality are
// symmetric, so (a, b) and (b, a) are the same pair.
type CollisionPair struct {
	A, B CollisionItem
}

// Hash combines the item hashes commutatively, making it order independent
// and usable as a map key for pair sets.
func (p CollisionPair) Hash() uint64 {
	return p.A.Hash() ^ p.B.Hash()
}

// Equal reports whether the two pairs name the same items in either order.
func (p CollisionPair) Equal(other CollisionPair) bool {
	return (p.A.Equal(other.A) && p.B.Equal(other.B)) ||
		(p.A.Equal(other.B) && p.B.Equal(other.A))
}
