package geometry

import "math"

// Kind identifies a convex shape variant. The set is closed: collision
// algorithms dispatch on the kind through the capability table below instead
// of type assertions.
type Kind uint8

const (
	KindCircle Kind = iota
	KindPolygon
	KindSegment
	KindCapsule
	KindSlice
	KindEllipse
	KindHalfEllipse

	kindCount
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindPolygon:
		return "polygon"
	case KindSegment:
		return "segment"
	case KindCapsule:
		return "capsule"
	case KindSlice:
		return "slice"
	case KindEllipse:
		return "ellipse"
	case KindHalfEllipse:
		return "half-ellipse"
	}
	return "unknown"
}

// Shape is a convex shape in local space. It is a tagged variant: kind
// selects which of the union fields are meaningful. Shapes are immutable
// after construction and own their vertex storage exclusively; constructors
// and derivation helpers always deep-copy.
type Shape struct {
	kind Kind

	// center is the local-space centroid.
	center Vec2
	// discRadius is the rotation disc radius: the maximum distance from the
	// centroid to any point of the shape.
	discRadius float64

	// radius is the circle radius, the capsule cap radius, or the slice
	// circle radius.
	radius float64
	// vertices are polygon/segment vertices (counter-clockwise), capsule
	// focal points, or slice vertices (circle center then the two arc tips).
	vertices []Vec2
	// normals are the unit edge normals matching vertices.
	normals []Vec2
	// halfWidth/halfHeight are the ellipse and half-ellipse semi-axes.
	halfWidth, halfHeight float64
	// alpha is the slice half-angle in radians.
	alpha float64
}

// capability is the per-kind function table. A nil axes entry means the kind
// has no finite edge-normal set and cannot participate in SAT.
type capability struct {
	support func(s *Shape, local Vec2) Vec2
	aabb    func(s *Shape, tx Transform) AABB
	axes    func(s *Shape, tx Transform) []Vec2
	foci    func(s *Shape, tx Transform) []Vec2
	feature func(s *Shape, local Vec2, tx Transform) Feature
}

var capabilities [kindCount]capability

// Populated in init: supportAABB reaches back through Shape.Support, so a
// composite literal would form an initialization cycle.
func init() {
	capabilities = [kindCount]capability{
		KindCircle:      {support: circleSupport, aabb: circleAABB, foci: centerFoci, feature: pointFeature},
		KindPolygon:     {support: polygonSupport, aabb: supportAABB, axes: vertexAxes, feature: polygonFeature},
		KindSegment:     {support: polygonSupport, aabb: supportAABB, axes: vertexAxes, feature: segmentFeature},
		KindCapsule:     {support: capsuleSupport, aabb: supportAABB, axes: vertexAxes, foci: vertexFoci, feature: capsuleFeature},
		KindSlice:       {support: sliceSupport, aabb: supportAABB, axes: vertexAxes, foci: sliceFoci, feature: sliceFeature},
		KindEllipse:     {support: ellipseSupport, aabb: supportAABB, feature: pointFeature},
		KindHalfEllipse: {support: halfEllipseSupport, aabb: supportAABB, feature: halfEllipseFeature},
	}
}

// Kind returns the shape variant tag.
func (s *Shape) Kind() Kind { return s.kind }

// Center returns the local-space centroid.
func (s *Shape) Center() Vec2 { return s.center }

// WorldCenter returns the centroid under the given transform.
func (s *Shape) WorldCenter(tx Transform) Vec2 { return tx.Apply(s.center) }

// Radius returns the circle radius, capsule cap radius, or slice radius.
// It is zero for purely polygonal and elliptic kinds.
func (s *Shape) Radius() float64 { return s.radius }

// RotationDiscRadius returns the radius of the smallest disc centered at the
// centroid that fully contains the shape.
func (s *Shape) RotationDiscRadius() float64 { return s.discRadius }

// HalfExtents returns the semi-axes of ellipse and half-ellipse shapes.
func (s *Shape) HalfExtents() (halfWidth, halfHeight float64) {
	return s.halfWidth, s.halfHeight
}

// SliceAngle returns the slice half-angle in radians, zero for other kinds.
func (s *Shape) SliceAngle() float64 { return s.alpha }

// Vertices returns a copy of the local-space vertices, nil for kinds with
// no vertex data.
func (s *Shape) Vertices() []Vec2 {
	if s.vertices == nil {
		return nil
	}
	out := make([]Vec2, len(s.vertices))
	copy(out, s.vertices)
	return out
}

// Normals returns a copy of the local-space unit edge normals, nil for kinds
// with no edge set.
func (s *Shape) Normals() []Vec2 {
	if s.normals == nil {
		return nil
	}
	out := make([]Vec2, len(s.normals))
	copy(out, s.normals)
	return out
}

// Support returns the farthest point of the shape in the given world-space
// direction, under the given transform. This is the primitive GJK and the
// generic AABB computation build on.
func (s *Shape) Support(direction Vec2, tx Transform) Vec2 {
	local := tx.ApplyInverseVector(direction)
	return tx.Apply(capabilities[s.kind].support(s, local))
}

// ComputeAABB returns the tight axis-aligned bounding box of the shape under
// the given transform.
func (s *Shape) ComputeAABB(tx Transform) AABB {
	return capabilities[s.kind].aabb(s, tx)
}

// HasEdgeNormals reports whether the kind exposes a finite edge-normal set,
// which SAT requires.
func (s *Shape) HasEdgeNormals() bool {
	return capabilities[s.kind].axes != nil || capabilities[s.kind].foci != nil
}

// EdgeNormals returns the world-space separating-axis candidates contributed
// by the shape's edges, nil when the kind has none.
func (s *Shape) EdgeNormals(tx Transform) []Vec2 {
	fn := capabilities[s.kind].axes
	if fn == nil {
		return nil
	}
	return fn(s, tx)
}

// Foci returns the world-space focal points of circular features (circle
// centers, capsule cap centers, the slice circle center), nil when the kind
// has none.
func (s *Shape) Foci(tx Transform) []Vec2 {
	fn := capabilities[s.kind].foci
	if fn == nil {
		return nil
	}
	return fn(s, tx)
}

// ClosestPoint returns the vertex or focal point of the shape closest to the
// given world-space point. SAT uses it to build focal separating axes.
func (s *Shape) ClosestPoint(p Vec2, tx Transform) Vec2 {
	if len(s.vertices) > 0 {
		best := tx.Apply(s.vertices[0])
		bestDist := best.Sub(p).LenSqr()
		for _, v := range s.vertices[1:] {
			w := tx.Apply(v)
			if d := w.Sub(p).LenSqr(); d < bestDist {
				best, bestDist = w, d
			}
		}
		return best
	}
	return tx.Apply(s.center)
}

// FarthestFeature returns the feature (vertex or edge) of the shape farthest
// in the given world-space direction. The manifold solver clips incident
// features against reference features.
func (s *Shape) FarthestFeature(direction Vec2, tx Transform) Feature {
	local := tx.ApplyInverseVector(direction)
	return capabilities[s.kind].feature(s, local, tx)
}

// FeatureType discriminates vertex and edge features.
type FeatureType uint8

const (
	// FeatureVertex is a single deepest point (circle, ellipse, arc or
	// polygon corner contacts).
	FeatureVertex FeatureType = iota
	// FeatureEdge is a full edge; edge/edge contacts produce two manifold
	// points.
	FeatureEdge
)

// FeaturePoint is a world-space point tagged with its vertex index, used to
// build stable manifold point identifiers. Curved features use index -1.
type FeaturePoint struct {
	Point Vec2
	Index int
}

// Feature is the result of a farthest-feature query.
type Feature struct {
	Type FeatureType
	// A and B are the edge endpoints when Type is FeatureEdge.
	A, B FeaturePoint
	// Max is the deepest point of the feature.
	Max FeaturePoint
	// Edge is the edge index when Type is FeatureEdge.
	Edge int
}

// ---- support functions (local space in, local space out) ----

func circleSupport(s *Shape, d Vec2) Vec2 {
	return s.center.Add(Normalized(d).Mul(s.radius))
}

func polygonSupport(s *Shape, d Vec2) Vec2 {
	best := 0
	max := s.vertices[0].Dot(d)
	for i := 1; i < len(s.vertices); i++ {
		if dot := s.vertices[i].Dot(d); dot > max {
			max = dot
			best = i
		}
	}
	return s.vertices[best]
}

func capsuleSupport(s *Shape, d Vec2) Vec2 {
	focus := s.vertices[0]
	if s.vertices[1].Dot(d) > focus.Dot(d) {
		focus = s.vertices[1]
	}
	return focus.Add(Normalized(d).Mul(s.radius))
}

func ellipseSupport(s *Shape, d Vec2) Vec2 {
	a, b := s.halfWidth, s.halfHeight
	k := Vec2{a * d.X(), b * d.Y()}.Len()
	if k < Epsilon {
		return s.center
	}
	return Vec2{a * a * d.X() / k, b * b * d.Y() / k}
}

func halfEllipseSupport(s *Shape, d Vec2) Vec2 {
	p := ellipseSupport(s, d)
	if p.Y() < 0 {
		// The dome support fell below the base; the true support is a base
		// endpoint.
		if d.X() >= 0 {
			return Vec2{s.halfWidth, 0}
		}
		return Vec2{-s.halfWidth, 0}
	}
	return p
}

func sliceSupport(s *Shape, d Vec2) Vec2 {
	theta := math.Atan2(d.Y(), d.X())
	if math.Abs(theta) <= s.alpha {
		return Normalized(d).Mul(s.radius)
	}
	best := s.vertices[0]
	max := best.Dot(d)
	for _, v := range s.vertices[1:] {
		if dot := v.Dot(d); dot > max {
			max = dot
			best = v
		}
	}
	return best
}

// ---- AABB functions ----

func circleAABB(s *Shape, tx Transform) AABB {
	c := tx.Apply(s.center)
	r := Vec2{s.radius, s.radius}
	return AABB{Min: c.Sub(r), Max: c.Add(r)}
}

// supportAABB bounds any convex shape with four support queries. It is exact
// for every kind in the table.
func supportAABB(s *Shape, tx Transform) AABB {
	return AABB{
		Min: Vec2{
			s.Support(Vec2{-1, 0}, tx).X(),
			s.Support(Vec2{0, -1}, tx).Y(),
		},
		Max: Vec2{
			s.Support(Vec2{1, 0}, tx).X(),
			s.Support(Vec2{0, 1}, tx).Y(),
		},
	}
}

// ---- separating axis sources ----

func vertexAxes(s *Shape, tx Transform) []Vec2 {
	out := make([]Vec2, len(s.normals))
	for i, n := range s.normals {
		out[i] = tx.ApplyVector(n)
	}
	return out
}

func centerFoci(s *Shape, tx Transform) []Vec2 {
	return []Vec2{tx.Apply(s.center)}
}

func vertexFoci(s *Shape, tx Transform) []Vec2 {
	out := make([]Vec2, len(s.vertices))
	for i, v := range s.vertices {
		out[i] = tx.Apply(v)
	}
	return out
}

func sliceFoci(s *Shape, tx Transform) []Vec2 {
	// The arc's circle center is the first slice vertex.
	return []Vec2{tx.Apply(s.vertices[0])}
}

// ---- farthest features ----

func pointFeature(s *Shape, local Vec2, tx Transform) Feature {
	p := tx.Apply(capabilities[s.kind].support(s, local))
	return Feature{Type: FeatureVertex, Max: FeaturePoint{Point: p, Index: -1}}
}

func polygonFeature(s *Shape, local Vec2, tx Transform) Feature {
	n := len(s.vertices)
	best := 0
	max := s.vertices[0].Dot(local)
	for i := 1; i < n; i++ {
		if dot := s.vertices[i].Dot(local); dot > max {
			max = dot
			best = i
		}
	}
	prev := (best + n - 1) % n
	next := (best + 1) % n

	maxPoint := FeaturePoint{Point: tx.Apply(s.vertices[best]), Index: best}
	// The edge whose normal is most parallel to the direction is the
	// farthest edge.
	if s.normals[best].Dot(local) > s.normals[prev].Dot(local) {
		return Feature{
			Type: FeatureEdge,
			A:    maxPoint,
			B:    FeaturePoint{Point: tx.Apply(s.vertices[next]), Index: next},
			Max:  maxPoint,
			Edge: best,
		}
	}
	return Feature{
		Type: FeatureEdge,
		A:    FeaturePoint{Point: tx.Apply(s.vertices[prev]), Index: prev},
		B:    maxPoint,
		Max:  maxPoint,
		Edge: prev,
	}
}

func segmentFeature(s *Shape, local Vec2, tx Transform) Feature {
	d0 := s.vertices[0].Dot(local)
	d1 := s.vertices[1].Dot(local)
	p0 := FeaturePoint{Point: tx.Apply(s.vertices[0]), Index: 0}
	p1 := FeaturePoint{Point: tx.Apply(s.vertices[1]), Index: 1}
	if math.Abs(d0-d1) <= Epsilon {
		// Direction is perpendicular to the segment: the whole segment is
		// the farthest feature.
		return Feature{Type: FeatureEdge, A: p0, B: p1, Max: p1, Edge: 0}
	}
	if d0 > d1 {
		return Feature{Type: FeatureVertex, Max: p0}
	}
	return Feature{Type: FeatureVertex, Max: p1}
}

func capsuleFeature(s *Shape, local Vec2, tx Transform) Feature {
	d := Normalized(local)
	axis := Normalized(s.vertices[1].Sub(s.vertices[0]))
	// Nearly perpendicular to the axis: the flat side is the farthest
	// feature and contributes an edge for a two-point manifold.
	if math.Abs(d.Dot(axis)) <= capsuleFlatSideTolerance {
		offset := d.Mul(s.radius)
		a := FeaturePoint{Point: tx.Apply(s.vertices[0].Add(offset)), Index: 0}
		b := FeaturePoint{Point: tx.Apply(s.vertices[1].Add(offset)), Index: 1}
		if s.vertices[0].Dot(local) > s.vertices[1].Dot(local) {
			return Feature{Type: FeatureEdge, A: a, B: b, Max: a, Edge: 0}
		}
		return Feature{Type: FeatureEdge, A: a, B: b, Max: b, Edge: 0}
	}
	return pointFeature(s, local, tx)
}

// capsuleFlatSideTolerance is the cosine threshold under which a direction
// counts as perpendicular to the capsule axis.
const capsuleFlatSideTolerance = 1.0e-2

func sliceFeature(s *Shape, local Vec2, tx Transform) Feature {
	theta := math.Atan2(local.Y(), local.X())
	if math.Abs(theta) <= s.alpha {
		return pointFeature(s, local, tx)
	}
	// One of the two straight edges is farthest: pick the one whose normal
	// is most parallel to the direction.
	center := FeaturePoint{Point: tx.Apply(s.vertices[0]), Index: 0}
	if s.normals[0].Dot(local) > s.normals[1].Dot(local) {
		tip := FeaturePoint{Point: tx.Apply(s.vertices[1]), Index: 1}
		max := center
		if s.vertices[1].Dot(local) > s.vertices[0].Dot(local) {
			max = tip
		}
		return Feature{Type: FeatureEdge, A: center, B: tip, Max: max, Edge: 0}
	}
	tip := FeaturePoint{Point: tx.Apply(s.vertices[2]), Index: 2}
	max := center
	if s.vertices[2].Dot(local) > s.vertices[0].Dot(local) {
		max = tip
	}
	return Feature{Type: FeatureEdge, A: tip, B: center, Max: max, Edge: 1}
}

func halfEllipseFeature(s *Shape, local Vec2, tx Transform) Feature {
	if local.Y() < 0 {
		// The flat base is facing the direction; treat it like a segment.
		left := Vec2{-s.halfWidth, 0}
		right := Vec2{s.halfWidth, 0}
		dl, dr := left.Dot(local), right.Dot(local)
		pl := FeaturePoint{Point: tx.Apply(left), Index: 0}
		pr := FeaturePoint{Point: tx.Apply(right), Index: 1}
		if math.Abs(dl-dr) <= Epsilon {
			return Feature{Type: FeatureEdge, A: pr, B: pl, Max: pr, Edge: 0}
		}
		if dl > dr {
			return Feature{Type: FeatureVertex, Max: pl}
		}
		return Feature{Type: FeatureVertex, Max: pr}
	}
	return pointFeature(s, local, tx)
}
