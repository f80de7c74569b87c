// Package solver resolves contacts and joints of one simulation step with sequential impulses.
package solver

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// ConstraintSolver computes and applies the impulses of one step.
// The returned value is diagnostic only.
type ConstraintSolver interface {
	SolveGroup(bodies []*actor.RigidBody, manifolds []*constraint.Manifold, joints []constraint.Joint, info *constraint.ContactSolverInfo, drawer DebugDrawer) float64
	Reset()
}

// DebugDrawer receives every contact point taking part in a solve
type DebugDrawer interface {
	DrawContactPoint(pointOnB, normalOnB mgl64.Vec3, distance float64, lifeTime int)
}

// Stats describes the last SolveGroup call
type Stats struct {
	// TotalContactPoints accumulates over every call since the last Reset
	TotalContactPoints int

	ContactRows  int
	FrictionRows int
	// SolverBodies counts the working body copies, inactive bodies once per contact point
	SolverBodies int
	Iterations   int
	MaxImpulse   float64
}

var (
	_ ConstraintSolver = (*SequentialImpulseConstraintSolver)(nil)
	_ ConstraintSolver = (*ParallelConstraintSolver)(nil)
)
