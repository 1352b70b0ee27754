package geometry

import "fmt"

// Ray is a half-line from Start along the unit vector Direction.
type Ray struct {
	Start     Vec2
	Direction Vec2
}

// NewRay builds a ray, normalizing direction. A zero direction is an
// argument error.
func NewRay(start, direction Vec2) (Ray, error) {
	if direction.Len() < Epsilon {
		return Ray{}, fmt.Errorf("%w: ray direction must be non-zero", ErrInvalidValue)
	}
	return Ray{Start: start, Direction: Normalized(direction)}, nil
}
