package solver

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// SolverBody is the working copy of a rigid body during one step.
// Only velocities change while iterating.
type SolverBody struct {
	AngularVelocity      mgl64.Vec3
	LinearVelocity       mgl64.Vec3
	CenterOfMassPosition mgl64.Vec3
	AngularFactor        float64
	InvMass              float64
	Friction             float64
	OriginalBody         *actor.RigidBody

	invInertiaWorld mgl64.Mat3
}

// newSolverBody copies rb. A fixed body gets a zero inverse mass and inertia,
// whatever its type, so it never moves during the step.
func newSolverBody(rb *actor.RigidBody, fixed bool) SolverBody {
	sb := SolverBody{
		AngularVelocity:      rb.AngularVelocity,
		LinearVelocity:       rb.Velocity,
		CenterOfMassPosition: rb.CenterOfMassPosition(),
		AngularFactor:        rb.AngularFactor,
		Friction:             rb.Material.Friction,
		OriginalBody:         rb,
	}
	if !fixed {
		sb.InvMass = rb.InverseMass()
		sb.invInertiaWorld = rb.GetInverseInertiaWorld()
	}

	return sb
}

func (sb *SolverBody) velocityInLocalPoint(relPos mgl64.Vec3) mgl64.Vec3 {
	return sb.LinearVelocity.Add(sb.AngularVelocity.Cross(relPos))
}

// InternalApplyImpulse adds linearComponent·magnitude and angularComponent·magnitude
// to the velocities. It does nothing on a body of infinite mass.
func (sb *SolverBody) InternalApplyImpulse(linearComponent, angularComponent mgl64.Vec3, magnitude float64) {
	if sb.InvMass == 0 {
		return
	}

	sb.LinearVelocity = sb.LinearVelocity.Add(linearComponent.Mul(magnitude))
	sb.AngularVelocity = sb.AngularVelocity.Add(angularComponent.Mul(magnitude * sb.AngularFactor))
}

// WritebackVelocity copies the velocities to the original body
func (sb *SolverBody) WritebackVelocity() {
	if sb.InvMass == 0 {
		return
	}

	sb.OriginalBody.Velocity = sb.LinearVelocity
	sb.OriginalBody.AngularVelocity = sb.AngularVelocity
}

// ReadVelocity copies the velocities back from the original body
func (sb *SolverBody) ReadVelocity() {
	if sb.InvMass == 0 {
		return
	}

	sb.LinearVelocity = sb.OriginalBody.Velocity
	sb.AngularVelocity = sb.OriginalBody.AngularVelocity
}
