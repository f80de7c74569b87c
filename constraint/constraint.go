package constraint

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/mathutil"
)

// MaxCombinedFriction bounds the product of two friction coefficients
const MaxCombinedFriction = 10.0

// Joint is a typed constraint between two bodies.
// Joints act on the bodies directly: the solver writes its velocities back
// before SolveConstraint and reads them again afterwards.
type Joint interface {
	// BuildJacobian precomputes the constraint rows once per step
	BuildJacobian()
	// SolveConstraint applies one Gauss-Seidel pass of the joint impulses
	SolveConstraint(timeStep float64)
	Bodies() (*actor.RigidBody, *actor.RigidBody)
}

// CombineFriction multiplies the two coefficients, clamped to ±MaxCombinedFriction
func CombineFriction(bodyA, bodyB *actor.RigidBody) float64 {
	friction := bodyA.Material.Friction * bodyB.Material.Friction
	return mathutil.Clamp(friction, -MaxCombinedFriction, MaxCombinedFriction)
}

// CombineRestitution multiplies the two coefficients: a body with zero restitution never bounces
func CombineRestitution(bodyA, bodyB *actor.RigidBody) float64 {
	return bodyA.Material.Restitution * bodyB.Material.Restitution
}
