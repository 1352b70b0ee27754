package geometry

import "math"

// Transform is a rigid planar transform: a rotation stored as a cosine/sine
// pair plus a translation. Storing the rotation as cos/sin instead of a raw
// angle avoids repeated trigonometry and incremental drift.
//
// Transform is a value type. Composition and derivation return new values;
// no operation mutates its receiver or arguments.
type Transform struct {
	Cos, Sin float64
	Position Vec2
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{Cos: 1}
}

// TransformAt returns a transform with the given translation and rotation
// angle in radians.
func TransformAt(position Vec2, angle float64) Transform {
	return Transform{Cos: math.Cos(angle), Sin: math.Sin(angle), Position: position}
}

// Angle returns the rotation angle in radians in (-pi, pi].
func (t Transform) Angle() float64 {
	return math.Atan2(t.Sin, t.Cos)
}

// Apply transforms the local-space point p to world space.
func (t Transform) Apply(p Vec2) Vec2 {
	return Rotate(p, t.Cos, t.Sin).Add(t.Position)
}

// ApplyVector rotates the local-space vector v to world space without
// translating it.
func (t Transform) ApplyVector(v Vec2) Vec2 {
	return Rotate(v, t.Cos, t.Sin)
}

// ApplyInverse transforms the world-space point p to local space.
func (t Transform) ApplyInverse(p Vec2) Vec2 {
	return RotateInverse(p.Sub(t.Position), t.Cos, t.Sin)
}

// ApplyInverseVector rotates the world-space vector v to local space.
func (t Transform) ApplyInverseVector(v Vec2) Vec2 {
	return RotateInverse(v, t.Cos, t.Sin)
}

// Translated returns a copy of t translated by d.
func (t Transform) Translated(d Vec2) Transform {
	t.Position = t.Position.Add(d)
	return t
}

// Rotated returns a copy of t rotated by angle radians about its own origin.
func (t Transform) Rotated(angle float64) Transform {
	c, s := math.Cos(angle), math.Sin(angle)
	return Transform{
		Cos:      t.Cos*c - t.Sin*s,
		Sin:      t.Sin*c + t.Cos*s,
		Position: t.Position,
	}
}

// Mul composes two transforms: the result first applies o, then t.
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		Cos:      t.Cos*o.Cos - t.Sin*o.Sin,
		Sin:      t.Sin*o.Cos + t.Cos*o.Sin,
		Position: t.Apply(o.Position),
	}
}
