package solver

import (
	"github.com/akmonengine/impulse/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const relaxation = 1.0

type ConstraintType int

const (
	Contact1D ConstraintType = iota
	Friction1D
)

// SolverConstraint is one scalar row of the pooled solve.
// For friction rows ContactNormal holds the tangent direction.
type SolverConstraint struct {
	RelPos1CrossNormal mgl64.Vec3
	ContactNormal      mgl64.Vec3
	RelPos2CrossNormal mgl64.Vec3
	AngularComponentA  mgl64.Vec3
	AngularComponentB  mgl64.Vec3

	// AppliedImpulse is the accumulated impulse, AppliedVelocityImpulse the delta of the last sweep
	AppliedImpulse         float64
	AppliedVelocityImpulse float64

	Friction     float64
	Restitution  float64
	JacDiagABInv float64
	// Penetration is the ERP-scaled bias velocity
	Penetration float64

	SolverBodyIDA int
	SolverBodyIDB int
	// FrictionIndex is the contact row a friction row is bounded by
	FrictionIndex  int
	ConstraintType ConstraintType

	originalContactPoint *constraint.ContactPoint
}

// newRow fills the jacobian terms of a row along axis
func newRow(constraintType ConstraintType, idA, idB int, bodyA, bodyB *SolverBody, relPos1, relPos2, axis mgl64.Vec3) SolverConstraint {
	torqueAxis0 := relPos1.Cross(axis)
	torqueAxis1 := relPos2.Cross(axis)

	row := SolverConstraint{
		ConstraintType:     constraintType,
		SolverBodyIDA:      idA,
		SolverBodyIDB:      idB,
		ContactNormal:      axis,
		RelPos1CrossNormal: torqueAxis0,
		RelPos2CrossNormal: torqueAxis1,
		AngularComponentA:  bodyA.invInertiaWorld.Mul3x1(torqueAxis0),
		AngularComponentB:  bodyB.invInertiaWorld.Mul3x1(torqueAxis1),
	}

	denom0 := bodyA.InvMass + axis.Dot(row.AngularComponentA.Cross(relPos1))
	denom1 := bodyB.InvMass + axis.Dot(row.AngularComponentB.Cross(relPos2))
	// two fixed bodies leave the row inert
	if denom := denom0 + denom1; denom > 0 {
		row.JacDiagABInv = relaxation / denom
	}

	return row
}
