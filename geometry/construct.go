package geometry

import (
	"fmt"
	"math"
)

// NewCircle returns a circle of the given radius centered at the local
// origin.
func NewCircle(radius float64) (*Shape, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: circle radius %v must be positive", ErrInvalidValue, radius)
	}
	return &Shape{
		kind:       KindCircle,
		radius:     radius,
		discRadius: radius,
	}, nil
}

// NewPolygon builds a convex polygon from the given vertices. The input is
// deep-copied and cleansed: winding is forced counter-clockwise and
// coincident or collinear consecutive points are dropped. Construction fails
// if fewer than three vertices survive cleansing or the result is not
// convex.
func NewPolygon(vertices ...Vec2) (*Shape, error) {
	if vertices == nil {
		return nil, fmt.Errorf("%w: vertices", ErrNilArgument)
	}
	cleansed, err := Cleanse(vertices)
	if err != nil {
		return nil, err
	}
	for i := range cleansed {
		p := cleansed[i]
		n := cleansed[(i+1)%len(cleansed)]
		nn := cleansed[(i+2)%len(cleansed)]
		if Cross(n.Sub(p), nn.Sub(n)) <= 0 {
			return nil, fmt.Errorf("%w: vertices do not form a convex polygon", ErrInvalidValue)
		}
	}
	center := polygonCentroid(cleansed)
	normals := make([]Vec2, len(cleansed))
	disc := 0.0
	for i := range cleansed {
		edge := cleansed[(i+1)%len(cleansed)].Sub(cleansed[i])
		normals[i] = Normalized(Right(edge))
		if d := cleansed[i].Sub(center).Len(); d > disc {
			disc = d
		}
	}
	return &Shape{
		kind:       KindPolygon,
		center:     center,
		discRadius: disc,
		vertices:   cleansed,
		normals:    normals,
	}, nil
}

// NewRectangle returns an axis-aligned rectangle centered at the local
// origin.
func NewRectangle(width, height float64) (*Shape, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: rectangle %v x %v must have positive dimensions", ErrInvalidValue, width, height)
	}
	hw, hh := width*0.5, height*0.5
	return NewPolygon(
		Vec2{-hw, -hh},
		Vec2{hw, -hh},
		Vec2{hw, hh},
		Vec2{-hw, hh},
	)
}

// NewTriangle returns a triangle through the three points.
func NewTriangle(p1, p2, p3 Vec2) (*Shape, error) {
	return NewPolygon(p1, p2, p3)
}

// NewSegment returns a two-point segment shape. The endpoints must be
// distinct.
func NewSegment(p1, p2 Vec2) (*Shape, error) {
	edge := p2.Sub(p1)
	if edge.Len() < Epsilon {
		return nil, fmt.Errorf("%w: segment endpoints are coincident", ErrInvalidValue)
	}
	n := Normalized(edge)
	center := Lerp(p1, p2, 0.5)
	return &Shape{
		kind:       KindSegment,
		center:     center,
		discRadius: edge.Len() * 0.5,
		vertices:   []Vec2{p1, p2},
		normals:    []Vec2{Right(n), Left(n)},
	}, nil
}

// NewCapsule returns a capsule with the given total width and height. The
// longer dimension is the axis; the shorter is the cap diameter. Equal
// dimensions describe a circle and are rejected.
func NewCapsule(width, height float64) (*Shape, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: capsule %v x %v must have positive dimensions", ErrInvalidValue, width, height)
	}
	if math.Abs(width-height) < Epsilon {
		return nil, fmt.Errorf("%w: capsule with equal dimensions is a circle", ErrInvalidValue)
	}
	var foci []Vec2
	var capRadius float64
	var axisNormal Vec2
	if width > height {
		capRadius = height * 0.5
		f := (width - height) * 0.5
		foci = []Vec2{{-f, 0}, {f, 0}}
		axisNormal = Vec2{0, 1}
	} else {
		capRadius = width * 0.5
		f := (height - width) * 0.5
		foci = []Vec2{{0, -f}, {0, f}}
		axisNormal = Vec2{1, 0}
	}
	return &Shape{
		kind:       KindCapsule,
		radius:     capRadius,
		discRadius: math.Max(width, height) * 0.5,
		vertices:   foci,
		normals:    []Vec2{axisNormal},
	}, nil
}

// NewEllipse returns an ellipse with the given total width and height,
// centered at the local origin.
func NewEllipse(width, height float64) (*Shape, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: ellipse %v x %v must have positive dimensions", ErrInvalidValue, width, height)
	}
	return &Shape{
		kind:       KindEllipse,
		halfWidth:  width * 0.5,
		halfHeight: height * 0.5,
		discRadius: math.Max(width, height) * 0.5,
	}, nil
}

// NewHalfEllipse returns the upper half of an ellipse with the given total
// width and dome height. The flat base lies on the local x axis.
func NewHalfEllipse(width, height float64) (*Shape, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: half-ellipse %v x %v must have positive dimensions", ErrInvalidValue, width, height)
	}
	a := width * 0.5
	// Centroid of a half elliptical lamina sits at 4b/(3pi) above the base.
	cy := 4 * height / (3 * math.Pi)
	center := Vec2{0, cy}
	disc := math.Max(
		math.Sqrt(a*a+cy*cy), // base corners
		height-cy,            // dome apex
	)
	return &Shape{
		kind:       KindHalfEllipse,
		center:     center,
		halfWidth:  a,
		halfHeight: height,
		discRadius: disc,
	}, nil
}

// NewSlice returns a circular sector of the given radius spanning theta
// radians, symmetric about the local +x axis with the circle center at the
// local origin. Theta must be in (0, pi].
func NewSlice(radius, theta float64) (*Shape, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: slice radius %v must be positive", ErrInvalidValue, radius)
	}
	if theta <= 0 || theta > math.Pi {
		return nil, fmt.Errorf("%w: slice angle %v must be in (0, pi]", ErrInvalidValue, theta)
	}
	alpha := theta * 0.5
	sin, cos := math.Sin(alpha), math.Cos(alpha)
	top := Vec2{radius * cos, radius * sin}
	bottom := Vec2{radius * cos, -radius * sin}
	// Centroid of a circular sector lies on the axis of symmetry.
	cx := 2.0 * radius * sin / (3.0 * alpha)
	center := Vec2{cx, 0}
	disc := math.Max(cx, radius-cx)
	if d := top.Sub(center).Len(); d > disc {
		disc = d
	}
	return &Shape{
		kind:       KindSlice,
		radius:     radius,
		center:     center,
		discRadius: disc,
		alpha:      alpha,
		vertices:   []Vec2{{0, 0}, top, bottom},
		// Outward normals of the two straight edges: top edge first.
		normals: []Vec2{{-sin, cos}, {-sin, -cos}},
	}, nil
}
