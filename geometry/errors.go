package geometry

import "errors"

// Argument errors reported by constructors and derivation helpers. These are
// programmer errors: they are raised immediately at the boundary and are not
// meant to be recovered from at runtime, only branched on.
var (
	// ErrNilArgument reports a nil shape or nil vertex slice.
	ErrNilArgument = errors.New("geometry: nil argument")

	// ErrInvalidValue reports an out-of-range scalar such as a non-positive
	// radius or width, or a value that violates a constructor constraint.
	ErrInvalidValue = errors.New("geometry: value out of range")

	// ErrInsufficientVertices reports an empty or undersized point set.
	ErrInsufficientVertices = errors.New("geometry: empty or undersized vertex set")
)
