package constraint

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/internal/invariant"
	"github.com/akmonengine/impulse/mathutil"
	"github.com/go-gl/mathgl/mgl64"
)

type Point2PointSettings struct {
	// Tau is the fraction of the pivot drift corrected per step
	Tau     float64
	Damping float64
	// ImpulseClamp bounds each row impulse, 0 disables it
	ImpulseClamp float64
}

// Point2PointConstraint pins a pivot of body A to a pivot of body B (ball socket)
type Point2PointConstraint struct {
	BodyA    *actor.RigidBody
	BodyB    *actor.RigidBody
	PivotInA mgl64.Vec3 // local to A's center of mass frame
	PivotInB mgl64.Vec3 // local to B's center of mass frame
	Settings Point2PointSettings

	jac            [3]JacobianEntry
	appliedImpulse float64
}

func DefaultPoint2PointSettings() Point2PointSettings {
	return Point2PointSettings{
		Tau:     0.3,
		Damping: 1.0,
	}
}

func NewPoint2PointConstraint(bodyA, bodyB *actor.RigidBody, pivotInA, pivotInB mgl64.Vec3) *Point2PointConstraint {
	return &Point2PointConstraint{
		BodyA:    bodyA,
		BodyB:    bodyB,
		PivotInA: pivotInA,
		PivotInB: pivotInB,
		Settings: DefaultPoint2PointSettings(),
	}
}

// NewWorldPoint2PointConstraint pins a pivot of body to a fixed point of the world
func NewWorldPoint2PointConstraint(body *actor.RigidBody, pivotInA mgl64.Vec3) *Point2PointConstraint {
	anchor := body.Transform.Apply(pivotInA)
	fixed := actor.NewRigidBody(actor.NewTransformAt(anchor), nil, actor.BodyTypeStatic, 0)

	return NewPoint2PointConstraint(body, fixed, pivotInA, mgl64.Vec3{})
}

func (c *Point2PointConstraint) Bodies() (*actor.RigidBody, *actor.RigidBody) {
	return c.BodyA, c.BodyB
}

// AppliedImpulse is the impulse accumulated over the current step
func (c *Point2PointConstraint) AppliedImpulse() float64 {
	return c.appliedImpulse
}

func (c *Point2PointConstraint) pivotsInWorld() (mgl64.Vec3, mgl64.Vec3) {
	return c.BodyA.Transform.Apply(c.PivotInA), c.BodyB.Transform.Apply(c.PivotInB)
}

func (c *Point2PointConstraint) BuildJacobian() {
	c.appliedImpulse = 0

	pivotA, pivotB := c.pivotsInWorld()
	relPos1 := pivotA.Sub(c.BodyA.CenterOfMassPosition())
	relPos2 := pivotB.Sub(c.BodyB.CenterOfMassPosition())

	for i := range c.jac {
		var axis mgl64.Vec3
		axis[i] = 1
		c.jac[i] = NewBodyJacobianEntry(c.BodyA, c.BodyB, relPos1, relPos2, axis)
	}
}

func (c *Point2PointConstraint) SolveConstraint(timeStep float64) {
	pivotA, pivotB := c.pivotsInWorld()
	relPos1 := pivotA.Sub(c.BodyA.CenterOfMassPosition())
	relPos2 := pivotB.Sub(c.BodyB.CenterOfMassPosition())

	for i := range c.jac {
		jacDiag := c.jac[i].Diagonal()
		if !invariant.Check(jacDiag > 0, "point to point jacobian diagonal is not positive") {
			continue
		}
		jacDiagABInv := 1 / jacDiag

		var normal mgl64.Vec3
		normal[i] = 1

		vel := c.BodyA.VelocityInLocalPoint(relPos1).Sub(c.BodyB.VelocityInLocalPoint(relPos2))
		relVel := normal.Dot(vel)

		// positional error along the row
		depth := -pivotA.Sub(pivotB).Dot(normal)

		impulse := depth*c.Settings.Tau/timeStep*jacDiagABInv - c.Settings.Damping*relVel*jacDiagABInv
		if c.Settings.ImpulseClamp > 0 {
			impulse = mathutil.Clamp(impulse, -c.Settings.ImpulseClamp, c.Settings.ImpulseClamp)
		}
		c.appliedImpulse += impulse

		impulseVector := normal.Mul(impulse)
		c.BodyA.ApplyImpulse(impulseVector, relPos1)
		c.BodyB.ApplyImpulse(impulseVector.Mul(-1), relPos2)
	}
}
