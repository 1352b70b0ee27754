package main

import (
	"fmt"
	"log"

	"github.com/sylphengine/sylph"
	"github.com/sylphengine/sylph/broadphase"
	"github.com/sylphengine/sylph/geometry"
	"github.com/sylphengine/sylph/manifold"
	"github.com/sylphengine/sylph/narrowphase"
)

// A box dropped onto a static ground slab, stepped by hand until the two
// touch, then queried with a ray. Prints every stage of the detection
// pipeline along the way.
func main() {
	ground := sylph.NewBody()
	groundShape, err := geometry.NewRectangle(20, 1)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := ground.AddFixture(groundShape); err != nil {
		log.Fatal(err)
	}
	ground.SetTransform(geometry.TransformAt(geometry.Vec2{0, -0.5}, 0))

	box := sylph.NewBody()
	boxShape, err := geometry.NewRectangle(1, 1)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := box.AddFixture(boxShape); err != nil {
		log.Fatal(err)
	}
	box.SetTransform(geometry.TransformAt(geometry.Vec2{0, 3}, 0))

	index := broadphase.NewDynamicTree()
	index.Add(ground)
	index.Add(box)

	gjk := narrowphase.NewGJK()
	solver := manifold.NewClippingSolver()

	for step := 0; step < 40; step++ {
		box.SyncPreviousTransform()
		box.Translate(geometry.Vec2{0, -0.1})
		index.Update(box)

		pairs := index.Detect()
		if len(pairs) == 0 {
			continue
		}
		fmt.Printf("step %d: %d candidate pair(s)\n", step, len(pairs))

		for _, pair := range pairs {
			if !pair.A.Fixture.Filter().Allows(pair.B.Fixture.Filter()) {
				continue
			}

			hit, pen, err := gjk.DetectPenetration(
				pair.A.Fixture.Shape(), pair.A.Body.Transform(),
				pair.B.Fixture.Shape(), pair.B.Body.Transform(),
			)
			if err != nil {
				log.Fatal(err)
			}
			if !hit {
				fmt.Println("  bounds overlap but the shapes do not touch")
				continue
			}
			fmt.Printf("  penetration: normal=%v depth=%.4f\n", pen.Normal, pen.Depth)

			m, ok := solver.Solve(pen,
				pair.A.Fixture.Shape(), pair.A.Body.Transform(),
				pair.B.Fixture.Shape(), pair.B.Body.Transform(),
			)
			if !ok {
				continue
			}
			for i, point := range m.Points {
				fmt.Printf("  contact %d: point=%v depth=%.4f id=%#x\n",
					i, point.Point, point.Depth, point.ID.Key())
			}
		}

		if box.Transform().Position.Y() <= 0.5 {
			break
		}
	}

	ray, err := geometry.NewRay(geometry.Vec2{-5, 0.25}, geometry.Vec2{1, 0})
	if err != nil {
		log.Fatal(err)
	}
	for _, item := range index.Raycast(ray, 0) {
		fmt.Printf("ray crosses body %v\n", item.Body.ID())
	}
}
