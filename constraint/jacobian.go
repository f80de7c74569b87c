package constraint

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/internal/invariant"
	"github.com/akmonengine/impulse/mathutil"
	"github.com/go-gl/mathgl/mgl64"
)

// JacobianEntry is one scalar constraint row between two bodies along a world axis.
// Angular terms live in each body's principal frame so the diagonal inverse
// inertia can be applied component-wise.
type JacobianEntry struct {
	LinearJointAxis mgl64.Vec3
	AJ              mgl64.Vec3
	BJ              mgl64.Vec3
	MinvJtA         mgl64.Vec3
	MinvJtB         mgl64.Vec3
	ADiag           float64
}

func NewJacobianEntry(
	world2A, world2B mgl64.Mat3,
	relPos1, relPos2, jointAxis mgl64.Vec3,
	inertiaInvA mgl64.Vec3, massInvA float64,
	inertiaInvB mgl64.Vec3, massInvB float64,
) JacobianEntry {
	aJ := world2A.Mul3x1(relPos1.Cross(jointAxis))
	bJ := world2B.Mul3x1(relPos2.Cross(jointAxis.Mul(-1)))
	minvJtA := mathutil.MulElem(inertiaInvA, aJ)
	minvJtB := mathutil.MulElem(inertiaInvB, bJ)

	entry := JacobianEntry{
		LinearJointAxis: jointAxis,
		AJ:              aJ,
		BJ:              bJ,
		MinvJtA:         minvJtA,
		MinvJtB:         minvJtB,
		ADiag:           massInvA + minvJtA.Dot(aJ) + massInvB + minvJtB.Dot(bJ),
	}
	invariant.Check(entry.ADiag >= 0, "jacobian diagonal is negative")

	return entry
}

// NewBodyJacobianEntry builds the row from the current state of two bodies
func NewBodyJacobianEntry(bodyA, bodyB *actor.RigidBody, relPos1, relPos2, jointAxis mgl64.Vec3) JacobianEntry {
	return NewJacobianEntry(
		bodyA.Transform.Basis().Transpose(),
		bodyB.Transform.Basis().Transpose(),
		relPos1, relPos2, jointAxis,
		bodyA.InverseInertiaDiagLocal(), bodyA.InverseMass(),
		bodyB.InverseInertiaDiagLocal(), bodyB.InverseMass(),
	)
}

// Diagonal is the effective inverse mass along the row
func (j JacobianEntry) Diagonal() float64 {
	return j.ADiag
}

// RelativeVelocity projects the velocities on the row.
// Angular velocities are expressed in each body's principal frame.
func (j JacobianEntry) RelativeVelocity(linVelA, angVelA, linVelB, angVelB mgl64.Vec3) float64 {
	linRel := mathutil.MulElem(linVelA.Sub(linVelB), j.LinearJointAxis)
	sum := mathutil.MulElem(angVelA, j.AJ).
		Add(mathutil.MulElem(angVelB, j.BJ)).
		Add(linRel)

	return sum[0] + sum[1] + sum[2]
}

// BodyRelativeVelocity is RelativeVelocity with the current velocities of two bodies
func (j JacobianEntry) BodyRelativeVelocity(bodyA, bodyB *actor.RigidBody) float64 {
	return j.RelativeVelocity(
		bodyA.Velocity,
		bodyA.Transform.Basis().Transpose().Mul3x1(bodyA.AngularVelocity),
		bodyB.Velocity,
		bodyB.Transform.Basis().Transpose().Mul3x1(bodyB.AngularVelocity),
	)
}
