package impulse

import (
	"fmt"
	"log"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
	"github.com/akmonengine/impulse/internal/pipeline"
	"github.com/akmonengine/impulse/solver"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

// Dispatcher supplies the contact manifolds of the world.
// It is queried once per substep, after velocity integration.
type Dispatcher interface {
	Manifolds() []*constraint.Manifold
}

// ManifoldList is a Dispatcher over a fixed set of manifolds
type ManifoldList []*constraint.Manifold

func (l ManifoldList) Manifolds() []*constraint.Manifold {
	return l
}

type World struct {
	// List of all rigid bodies in the world
	Bodies []*actor.RigidBody
	Joints []constraint.Joint
	// Gravity acceleration (m/s², or N/kg)
	Gravity  mgl64.Vec3
	Substeps int
	Workers  int

	Solver      solver.ConstraintSolver
	SolverInfo  constraint.ContactSolverInfo
	Dispatcher  Dispatcher
	DebugDrawer solver.DebugDrawer
}

func NewWorld() *World {
	return &World{
		Gravity:    mgl64.Vec3{0, -9.81, 0},
		Substeps:   1,
		Workers:    DEFAULT_WORKERS,
		Solver:     solver.NewSequentialImpulseConstraintSolver(),
		SolverInfo: constraint.DefaultContactSolverInfo(),
	}
}

// AddBody adds a rigid body to the world
func (w *World) AddBody(body *actor.RigidBody) {
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a rigid body from the world, with the joints attached to it
func (w *World) RemoveBody(body *actor.RigidBody) {
	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	}

	joints := w.Joints[:0]
	for _, joint := range w.Joints {
		bodyA, bodyB := joint.Bodies()
		if bodyA != body && bodyB != body {
			joints = append(joints, joint)
		}
	}
	clear(w.Joints[len(joints):])
	w.Joints = joints
}

func (w *World) AddJoint(joint constraint.Joint) {
	w.Joints = append(w.Joints, joint)
}

// SetSolverInfo replaces the solver parameters, rejecting invalid ones.
// TimeStep is overwritten by Step.
func (w *World) SetSolverInfo(info constraint.ContactSolverInfo) error {
	if err := info.Validate(); err != nil {
		return fmt.Errorf("impulse: invalid solver info: %w", err)
	}

	w.SolverInfo = info
	return nil
}

func (w *World) Step(dt float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	substeps := max(1, w.Substeps)
	h := dt / float64(substeps)

	info := w.SolverInfo
	info.TimeStep = h
	if err := info.Validate(); err != nil {
		log.Printf("impulse: step skipped: %v", err)
		return
	}

	if w.Solver == nil {
		w.Solver = solver.NewSequentialImpulseConstraintSolver()
	}

	for range substeps {
		// Phase 1: external forces and gravity
		w.integrateVelocities(h)

		// Phase 2: contacts and joints
		var manifolds []*constraint.Manifold
		if w.Dispatcher != nil {
			manifolds = w.Dispatcher.Manifolds()
		}
		w.Solver.SolveGroup(w.Bodies, manifolds, w.Joints, &info, w.DebugDrawer)

		// Phase 3: commit positions
		w.integrateTransforms(h)
	}
}

func (w *World) integrateVelocities(h float64) {
	pipeline.Task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.IntegrateVelocities(h, w.Gravity)
	})
}

func (w *World) integrateTransforms(h float64) {
	pipeline.Task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.IntegrateTransform(h)
	})
}
