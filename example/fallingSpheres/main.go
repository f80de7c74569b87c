package main

import (
	"fmt"

	"github.com/akmonengine/impulse"
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
	"github.com/akmonengine/impulse/solver"
	"github.com/go-gl/mathgl/mgl64"
)

// contactMargin keeps points alive slightly before they touch
const contactMargin = 0.02

type pair struct {
	a, b *actor.RigidBody
}

// SphereContacts is a demo-only narrow phase: spheres against the ground plane and each other.
// It keeps one single-point manifold per touching pair.
type SphereContacts struct {
	Ground    *actor.RigidBody
	Spheres   []*actor.RigidBody
	manifolds map[pair]*constraint.Manifold
	active    []*constraint.Manifold
}

func NewSphereContacts(ground *actor.RigidBody, spheres []*actor.RigidBody) *SphereContacts {
	return &SphereContacts{
		Ground:    ground,
		Spheres:   spheres,
		manifolds: make(map[pair]*constraint.Manifold),
	}
}

func (c *SphereContacts) Manifolds() []*constraint.Manifold {
	c.active = c.active[:0]
	plane := c.Ground.Shape.(*actor.Plane)

	for i, sphere := range c.Spheres {
		radius := sphere.Shape.(*actor.Sphere).Radius
		center := sphere.Transform.Position

		pointOnA := center.Sub(plane.Normal.Mul(radius))
		distance := plane.SignedDistance(pointOnA)
		pointOnB := pointOnA.Sub(plane.Normal.Mul(distance))
		c.update(pair{sphere, c.Ground}, pointOnA, pointOnB, plane.Normal, distance)

		for _, other := range c.Spheres[i+1:] {
			otherRadius := other.Shape.(*actor.Sphere).Radius
			delta := center.Sub(other.Transform.Position)
			length := delta.Len()
			if length == 0 {
				continue
			}

			normal := delta.Mul(1 / length)
			c.update(pair{sphere, other},
				center.Sub(normal.Mul(radius)),
				other.Transform.Position.Add(normal.Mul(otherRadius)),
				normal, length-radius-otherRadius)
		}
	}

	return c.active
}

func (c *SphereContacts) update(p pair, pointOnA, pointOnB, normal mgl64.Vec3, distance float64) {
	m, ok := c.manifolds[p]
	if !ok {
		m = constraint.NewManifold(p.a, p.b)
		c.manifolds[p] = m
	}

	if distance > contactMargin {
		m.Clear()
		return
	}

	point := m.NewPoint(pointOnA, pointOnB, normal, distance)
	if m.NumPoints() == 0 {
		m.AddPoint(point)
	} else {
		m.Refresh()
		m.ReplacePoint(0, point)
	}
	c.active = append(c.active, m)
}

type contactCounter struct {
	count int
}

func (d *contactCounter) DrawContactPoint(pointOnB, normalOnB mgl64.Vec3, distance float64, lifeTime int) {
	d.count++
}

// SetupScene drops a column of spheres on the ground plane
func SetupScene() (*impulse.World, []*actor.RigidBody, *contactCounter) {
	world := impulse.NewWorld()
	world.Substeps = 2

	ground := actor.NewRigidBody(actor.NewTransform(), &actor.Plane{Normal: mgl64.Vec3{0, 1, 0}}, actor.BodyTypeStatic, 0.0)
	ground.Material.Friction = 0.8
	world.AddBody(ground)

	var spheres []*actor.RigidBody
	for i := 0; i < 4; i++ {
		position := mgl64.Vec3{0.1 * float64(i), 2 + 2.5*float64(i), 0}
		sphere := actor.NewRigidBody(actor.NewTransformAt(position), &actor.Sphere{Radius: 1}, actor.BodyTypeDynamic, 1.0)
		sphere.Material.Restitution = 0.3
		sphere.Material.Friction = 0.5
		sphere.Material.AngularDamping = 0.1
		world.AddBody(sphere)
		spheres = append(spheres, sphere)
	}

	s := solver.NewSequentialImpulseConstraintSolver()
	s.SetSolverMode(solver.DefaultSolverMode | solver.UseWarmstarting)
	world.Solver = s

	counter := &contactCounter{}
	world.DebugDrawer = counter
	world.Dispatcher = NewSphereContacts(ground, spheres)

	return world, spheres, counter
}

func main() {
	world, spheres, counter := SetupScene()

	fmt.Println("Falling spheres")
	fmt.Printf("  Gravity: %v\n", world.Gravity)
	fmt.Printf("  Spheres: %d\n", len(spheres))

	const dt float64 = 1.0 / 60.0
	const maxSteps int = 240

	for step := 0; step < maxSteps; step++ {
		counter.count = 0
		world.Step(dt)

		if (step+1)%30 != 0 {
			continue
		}

		fmt.Printf("--- step %d, %d contact points solved ---\n", step+1, counter.count)
		for i, sphere := range spheres {
			fmt.Printf("  sphere %d: y=%.4f vy=%.4f\n", i, sphere.Transform.Position.Y(), sphere.Velocity.Y())
		}
	}

	if s, ok := world.Solver.(*solver.SequentialImpulseConstraintSolver); ok {
		fmt.Printf("Contact points over the run: %d\n", s.Stats().TotalContactPoints)
	}
}
