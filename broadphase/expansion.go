package broadphase

import (
	"github.com/sylphengine/sylph"
	"github.com/sylphengine/sylph/geometry"
)

// Expansion fattens fixture bounds before they are stored, so small motion
// stays inside the stored box and requires no structural update.
type Expansion interface {
	Expand(a geometry.AABB) geometry.AABB
}

// NoExpansion stores tight bounds. Every motion then updates the index.
type NoExpansion struct{}

// Expand returns the box unchanged.
func (NoExpansion) Expand(a geometry.AABB) geometry.AABB { return a }

// StaticExpansion grows every box by a fixed margin on all sides.
type StaticExpansion struct {
	Margin float64
}

// Expand returns the box grown by the margin.
func (e StaticExpansion) Expand(a geometry.AABB) geometry.AABB {
	return a.Expanded(e.Margin)
}

// defaultExpansion matches the default tuning margin.
func defaultExpansion() Expansion {
	return StaticExpansion{Margin: sylph.DefaultTuning().AABBExpansion}
}
