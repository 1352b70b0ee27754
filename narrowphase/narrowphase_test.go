package narrowphase

import (
	"math"
	"testing"

	"github.com/sylphengine/sylph/geometry"
)

// Test helper functions

func mustRectangle(t *testing.T, width, height float64) *geometry.Shape {
	t.Helper()
	s, err := geometry.NewRectangle(width, height)
	if err != nil {
		t.Fatalf("NewRectangle(%v, %v): %v", width, height, err)
	}
	return s
}

func mustCircle(t *testing.T, radius float64) *geometry.Shape {
	t.Helper()
	s, err := geometry.NewCircle(radius)
	if err != nil {
		t.Fatalf("NewCircle(%v): %v", radius, err)
	}
	return s
}

func mustSegment(t *testing.T, p1, p2 geometry.Vec2) *geometry.Shape {
	t.Helper()
	s, err := geometry.NewSegment(p1, p2)
	if err != nil {
		t.Fatalf("NewSegment(%v, %v): %v", p1, p2, err)
	}
	return s
}

func vecNear(a, b geometry.Vec2, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol
}

// Detectors under test share these scenarios: a 1x1 rectangle translated to
// (-0.5, 0) overlaps a 0.5x0.5 rectangle at the origin by 0.25 along x;
// translated to (-0.8, 0) the pair is separated by a 0.05 gap.

func overlappingRectangles(t *testing.T) (*geometry.Shape, geometry.Transform, *geometry.Shape, geometry.Transform) {
	t.Helper()
	r1 := mustRectangle(t, 1, 1)
	r2 := mustRectangle(t, 0.5, 0.5)
	tx1 := geometry.NewTransform().Translated(geometry.Vec2{-0.5, 0})
	return r1, tx1, r2, geometry.NewTransform()
}

func separatedRectangles(t *testing.T) (*geometry.Shape, geometry.Transform, *geometry.Shape, geometry.Transform) {
	t.Helper()
	r1 := mustRectangle(t, 1, 1)
	r2 := mustRectangle(t, 0.5, 0.5)
	tx1 := geometry.NewTransform().Translated(geometry.Vec2{-0.8, 0})
	return r1, tx1, r2, geometry.NewTransform()
}

func TestDetectorAgreement(t *testing.T) {
	detectors := map[string]Detector{
		"sat": NewSAT(),
		"gjk": NewGJK(),
	}

	for name, d := range detectors {
		t.Run(name, func(t *testing.T) {
			t.Run("overlapping rectangles", func(t *testing.T) {
				s1, tx1, s2, tx2 := overlappingRectangles(t)

				hit, err := d.Detect(s1, tx1, s2, tx2)
				if err != nil {
					t.Fatalf("Detect: %v", err)
				}
				if !hit {
					t.Fatal("expected overlap")
				}

				hit, pen, err := d.DetectPenetration(s1, tx1, s2, tx2)
				if err != nil {
					t.Fatalf("DetectPenetration: %v", err)
				}
				if !hit || pen == nil {
					t.Fatal("expected penetration result")
				}
				if math.Abs(pen.Depth-0.25) > 1e-6 {
					t.Errorf("expected depth 0.25, got %v", pen.Depth)
				}
				if !vecNear(pen.Normal, geometry.Vec2{1, 0}, 1e-6) {
					t.Errorf("expected normal (1, 0), got %v", pen.Normal)
				}
			})

			t.Run("swapped order flips the normal", func(t *testing.T) {
				s1, tx1, s2, tx2 := overlappingRectangles(t)

				hit, pen, err := d.DetectPenetration(s2, tx2, s1, tx1)
				if err != nil {
					t.Fatalf("DetectPenetration: %v", err)
				}
				if !hit {
					t.Fatal("expected overlap")
				}
				if math.Abs(pen.Depth-0.25) > 1e-6 {
					t.Errorf("expected depth 0.25, got %v", pen.Depth)
				}
				if !vecNear(pen.Normal, geometry.Vec2{-1, 0}, 1e-6) {
					t.Errorf("expected normal (-1, 0), got %v", pen.Normal)
				}
			})

			t.Run("separated rectangles", func(t *testing.T) {
				s1, tx1, s2, tx2 := separatedRectangles(t)

				hit, err := d.Detect(s1, tx1, s2, tx2)
				if err != nil {
					t.Fatalf("Detect: %v", err)
				}
				if hit {
					t.Error("expected no overlap")
				}

				hit, pen, err := d.DetectPenetration(s1, tx1, s2, tx2)
				if err != nil {
					t.Fatalf("DetectPenetration: %v", err)
				}
				if hit || pen != nil {
					t.Error("expected no penetration result")
				}
			})

			t.Run("symmetry", func(t *testing.T) {
				s1, tx1, s2, tx2 := overlappingRectangles(t)

				a, err := d.Detect(s1, tx1, s2, tx2)
				if err != nil {
					t.Fatalf("Detect: %v", err)
				}
				b, err := d.Detect(s2, tx2, s1, tx1)
				if err != nil {
					t.Fatalf("Detect: %v", err)
				}
				if a != b {
					t.Errorf("detect is order dependent: %v vs %v", a, b)
				}
			})

			t.Run("nil shape", func(t *testing.T) {
				s1, tx1, _, tx2 := overlappingRectangles(t)
				if _, err := d.Detect(s1, tx1, nil, tx2); err == nil {
					t.Error("expected an error for a nil shape")
				}
			})
		})
	}
}

func TestSATTieBreak(t *testing.T) {
	// Coincident unit squares overlap equally on every axis. The first
	// enumerated axis must win so results stay deterministic: that is the
	// first edge normal of the first shape, (0, -1) for a rectangle.
	s1 := mustRectangle(t, 1, 1)
	s2 := mustRectangle(t, 1, 1)
	tx := geometry.NewTransform()

	hit, pen, err := NewSAT().DetectPenetration(s1, tx, s2, tx)
	if err != nil {
		t.Fatalf("DetectPenetration: %v", err)
	}
	if !hit {
		t.Fatal("expected overlap")
	}
	if math.Abs(pen.Depth-1.0) > 1e-6 {
		t.Errorf("expected depth 1.0, got %v", pen.Depth)
	}
	if !vecNear(pen.Normal, geometry.Vec2{0, -1}, 1e-6) {
		t.Errorf("expected normal (0, -1), got %v", pen.Normal)
	}
}

func TestSATCircles(t *testing.T) {
	c1 := mustCircle(t, 0.5)
	c2 := mustCircle(t, 0.5)
	tx1 := geometry.NewTransform()
	tx2 := geometry.NewTransform().Translated(geometry.Vec2{0.75, 0})

	hit, pen, err := NewSAT().DetectPenetration(c1, tx1, c2, tx2)
	if err != nil {
		t.Fatalf("DetectPenetration: %v", err)
	}
	if !hit {
		t.Fatal("expected overlap")
	}
	if math.Abs(pen.Depth-0.25) > 1e-6 {
		t.Errorf("expected depth 0.25, got %v", pen.Depth)
	}
	if !vecNear(pen.Normal, geometry.Vec2{1, 0}, 1e-6) {
		t.Errorf("expected normal (1, 0), got %v", pen.Normal)
	}
}

func TestSATRejectsEllipses(t *testing.T) {
	e1, err := geometry.NewEllipse(1, 0.5)
	if err != nil {
		t.Fatalf("NewEllipse: %v", err)
	}
	e2, err := geometry.NewEllipse(1, 0.5)
	if err != nil {
		t.Fatalf("NewEllipse: %v", err)
	}
	tx := geometry.NewTransform()

	if _, err := NewSAT().Detect(e1, tx, e2, tx); err != ErrUnsupportedShapes {
		t.Errorf("expected ErrUnsupportedShapes, got %v", err)
	}
}

func TestGJKEllipses(t *testing.T) {
	// Ellipses have no edge normals so SAT rejects them, but GJK only needs
	// support points.
	e1, err := geometry.NewEllipse(1, 0.5)
	if err != nil {
		t.Fatalf("NewEllipse: %v", err)
	}
	e2, err := geometry.NewEllipse(1, 0.5)
	if err != nil {
		t.Fatalf("NewEllipse: %v", err)
	}
	tx1 := geometry.NewTransform()

	t.Run("overlapping", func(t *testing.T) {
		tx2 := geometry.NewTransform().Translated(geometry.Vec2{0.5, 0})
		hit, err := NewGJK().Detect(e1, tx1, e2, tx2)
		if err != nil {
			t.Fatalf("Detect: %v", err)
		}
		if !hit {
			t.Error("expected overlap")
		}
	})

	t.Run("separated", func(t *testing.T) {
		tx2 := geometry.NewTransform().Translated(geometry.Vec2{2, 0})
		hit, err := NewGJK().Detect(e1, tx1, e2, tx2)
		if err != nil {
			t.Fatalf("Detect: %v", err)
		}
		if hit {
			t.Error("expected no overlap")
		}
	})
}

func TestGJKDistance(t *testing.T) {
	gjk := NewGJK()

	t.Run("separated rectangles", func(t *testing.T) {
		s1, tx1, s2, tx2 := separatedRectangles(t)

		ok, sep, err := gjk.Distance(s1, tx1, s2, tx2)
		if err != nil {
			t.Fatalf("Distance: %v", err)
		}
		if !ok || sep == nil {
			t.Fatal("expected a separation result")
		}
		if math.Abs(sep.Distance-0.05) > 1e-6 {
			t.Errorf("expected distance 0.05, got %v", sep.Distance)
		}
		if !vecNear(sep.Normal, geometry.Vec2{1, 0}, 1e-3) {
			t.Errorf("expected normal (1, 0), got %v", sep.Normal)
		}
		if !vecNear(sep.Point1, geometry.Vec2{-0.3, -0.25}, 1e-3) {
			t.Errorf("expected closest point (-0.3, -0.25) on the first shape, got %v", sep.Point1)
		}
		if !vecNear(sep.Point2, geometry.Vec2{-0.25, -0.25}, 1e-3) {
			t.Errorf("expected closest point (-0.25, -0.25) on the second shape, got %v", sep.Point2)
		}
	})

	t.Run("separated circles", func(t *testing.T) {
		c1 := mustCircle(t, 1)
		c2 := mustCircle(t, 1)
		tx1 := geometry.NewTransform()
		tx2 := geometry.NewTransform().Translated(geometry.Vec2{3, 0})

		ok, sep, err := gjk.Distance(c1, tx1, c2, tx2)
		if err != nil {
			t.Fatalf("Distance: %v", err)
		}
		if !ok {
			t.Fatal("expected a separation result")
		}
		if math.Abs(sep.Distance-1.0) > 1e-6 {
			t.Errorf("expected distance 1.0, got %v", sep.Distance)
		}
		if !vecNear(sep.Point1, geometry.Vec2{1, 0}, 1e-6) {
			t.Errorf("expected closest point (1, 0) on the first shape, got %v", sep.Point1)
		}
		if !vecNear(sep.Point2, geometry.Vec2{2, 0}, 1e-6) {
			t.Errorf("expected closest point (2, 0) on the second shape, got %v", sep.Point2)
		}
	})

	t.Run("overlapping pair has no separation", func(t *testing.T) {
		s1, tx1, s2, tx2 := overlappingRectangles(t)

		ok, sep, err := gjk.Distance(s1, tx1, s2, tx2)
		if err != nil {
			t.Fatalf("Distance: %v", err)
		}
		if ok || sep != nil {
			t.Error("expected no separation for overlapping shapes")
		}
	})

	t.Run("overlapping rotated rectangles have no separation", func(t *testing.T) {
		// Off-axis overlap: the closest-feature loop must not invent a
		// gap when the origin sits inside the Minkowski difference.
		s1 := mustRectangle(t, 2, 1)
		s2 := mustRectangle(t, 1.5, 1.5)
		tx1 := geometry.TransformAt(geometry.Vec2{0.3, 0.2}, math.Pi/5)
		tx2 := geometry.TransformAt(geometry.Vec2{-0.4, -0.3}, -math.Pi/7)

		ok, sep, err := gjk.Distance(s1, tx1, s2, tx2)
		if err != nil {
			t.Fatalf("Distance: %v", err)
		}
		if ok || sep != nil {
			t.Errorf("expected no separation, got %+v", sep)
		}
	})
}

func TestRaycastCircle(t *testing.T) {
	circle := mustCircle(t, 1)
	tx := geometry.NewTransform().Translated(geometry.Vec2{5, 0})

	t.Run("hit", func(t *testing.T) {
		ray, err := geometry.NewRay(geometry.Vec2{0, 0}, geometry.Vec2{1, 0})
		if err != nil {
			t.Fatalf("NewRay: %v", err)
		}
		hit, ok := RaycastCircle(ray, 0, circle, tx)
		if !ok {
			t.Fatal("expected a hit")
		}
		if math.Abs(hit.Distance-4.0) > 1e-6 {
			t.Errorf("expected distance 4.0, got %v", hit.Distance)
		}
		if !vecNear(hit.Point, geometry.Vec2{4, 0}, 1e-6) {
			t.Errorf("expected hit point (4, 0), got %v", hit.Point)
		}
		if !vecNear(hit.Normal, geometry.Vec2{-1, 0}, 1e-6) {
			t.Errorf("expected normal (-1, 0), got %v", hit.Normal)
		}
	})

	t.Run("short ray misses", func(t *testing.T) {
		ray, _ := geometry.NewRay(geometry.Vec2{0, 0}, geometry.Vec2{1, 0})
		if _, ok := RaycastCircle(ray, 3, circle, tx); ok {
			t.Error("expected a miss for a ray shorter than the gap")
		}
	})

	t.Run("ray starting inside misses", func(t *testing.T) {
		ray, _ := geometry.NewRay(geometry.Vec2{5, 0}, geometry.Vec2{1, 0})
		if _, ok := RaycastCircle(ray, 0, circle, tx); ok {
			t.Error("expected a miss for a ray starting inside")
		}
	})

	t.Run("ray pointing away misses", func(t *testing.T) {
		ray, _ := geometry.NewRay(geometry.Vec2{0, 0}, geometry.Vec2{-1, 0})
		if _, ok := RaycastCircle(ray, 0, circle, tx); ok {
			t.Error("expected a miss for a ray pointing away")
		}
	})
}

func TestRaycastSegment(t *testing.T) {
	segment := mustSegment(t, geometry.Vec2{2, -1}, geometry.Vec2{2, 1})
	tx := geometry.NewTransform()

	t.Run("hit", func(t *testing.T) {
		ray, err := geometry.NewRay(geometry.Vec2{0, 0}, geometry.Vec2{1, 0})
		if err != nil {
			t.Fatalf("NewRay: %v", err)
		}
		hit, ok := RaycastSegment(ray, 0, segment, tx)
		if !ok {
			t.Fatal("expected a hit")
		}
		if math.Abs(hit.Distance-2.0) > 1e-6 {
			t.Errorf("expected distance 2.0, got %v", hit.Distance)
		}
		if !vecNear(hit.Point, geometry.Vec2{2, 0}, 1e-6) {
			t.Errorf("expected hit point (2, 0), got %v", hit.Point)
		}
		if hit.Normal.Dot(geometry.Vec2{1, 0}) >= 0 {
			t.Errorf("expected the normal to face the ray origin, got %v", hit.Normal)
		}
	})

	t.Run("parallel ray misses", func(t *testing.T) {
		ray, _ := geometry.NewRay(geometry.Vec2{0, 0}, geometry.Vec2{0, 1})
		if _, ok := RaycastSegment(ray, 0, segment, tx); ok {
			t.Error("expected a miss for a parallel ray")
		}
	})

	t.Run("ray passing beside misses", func(t *testing.T) {
		ray, _ := geometry.NewRay(geometry.Vec2{0, 2}, geometry.Vec2{1, 0})
		if _, ok := RaycastSegment(ray, 0, segment, tx); ok {
			t.Error("expected a miss beside the segment")
		}
	})
}

func TestSegmentIntersection(t *testing.T) {
	tx := geometry.NewTransform()

	t.Run("crossing", func(t *testing.T) {
		s1 := mustSegment(t, geometry.Vec2{-1, 0}, geometry.Vec2{1, 0})
		s2 := mustSegment(t, geometry.Vec2{0, -1}, geometry.Vec2{0, 1})
		p, ok := SegmentIntersection(s1, tx, s2, tx)
		if !ok {
			t.Fatal("expected an intersection")
		}
		if !vecNear(p, geometry.Vec2{0, 0}, 1e-6) {
			t.Errorf("expected intersection at the origin, got %v", p)
		}
	})

	t.Run("parallel", func(t *testing.T) {
		s1 := mustSegment(t, geometry.Vec2{-1, 0}, geometry.Vec2{1, 0})
		s2 := mustSegment(t, geometry.Vec2{-1, 1}, geometry.Vec2{1, 1})
		if _, ok := SegmentIntersection(s1, tx, s2, tx); ok {
			t.Error("expected no intersection for parallel segments")
		}
	})

	t.Run("disjoint", func(t *testing.T) {
		s1 := mustSegment(t, geometry.Vec2{-1, 0}, geometry.Vec2{1, 0})
		s2 := mustSegment(t, geometry.Vec2{2, -1}, geometry.Vec2{2, 1})
		if _, ok := SegmentIntersection(s1, tx, s2, tx); ok {
			t.Error("expected no intersection for disjoint segments")
		}
	})
}
