package solver

import (
	"math"

	"github.com/akmonengine/impulse/mathutil"
)

// resolveSingleCollisionCombinedCacheFriendly applies the normal impulse of a contact row.
// The accumulated impulse is clamped at zero so a contact never pulls.
func resolveSingleCollisionCombinedCacheFriendly(bodyA, bodyB *SolverBody, c *SolverConstraint) float64 {
	vel1Dotn := c.ContactNormal.Dot(bodyA.LinearVelocity) + c.RelPos1CrossNormal.Dot(bodyA.AngularVelocity)
	vel2Dotn := c.ContactNormal.Dot(bodyB.LinearVelocity) + c.RelPos2CrossNormal.Dot(bodyB.AngularVelocity)
	relVel := vel1Dotn - vel2Dotn

	penetrationImpulse := c.Penetration * c.JacDiagABInv
	velocityImpulse := (c.Restitution - relVel) * c.JacDiagABInv
	normalImpulse := penetrationImpulse + velocityImpulse

	oldNormalImpulse := c.AppliedImpulse
	c.AppliedImpulse = math.Max(0, oldNormalImpulse+normalImpulse)
	normalImpulse = c.AppliedImpulse - oldNormalImpulse
	c.AppliedVelocityImpulse = normalImpulse

	bodyA.InternalApplyImpulse(c.ContactNormal.Mul(bodyA.InvMass), c.AngularComponentA, normalImpulse)
	bodyB.InternalApplyImpulse(c.ContactNormal.Mul(bodyB.InvMass), c.AngularComponentB, -normalImpulse)

	return normalImpulse
}

// resolveSingleFrictionCacheFriendly applies the tangent impulse of a friction row,
// accumulated within [-µ·jn, µ·jn] where jn is the current impulse of its contact row
func resolveSingleFrictionCacheFriendly(bodyA, bodyB *SolverBody, c *SolverConstraint, appliedNormalImpulse float64) float64 {
	limit := math.Max(0, appliedNormalImpulse*c.Friction)
	// without normal force the row only releases what it accumulated
	if limit == 0 && c.AppliedImpulse == 0 {
		c.AppliedVelocityImpulse = 0
		return 0
	}

	vel1Dotn := c.ContactNormal.Dot(bodyA.LinearVelocity) + c.RelPos1CrossNormal.Dot(bodyA.AngularVelocity)
	vel2Dotn := c.ContactNormal.Dot(bodyB.LinearVelocity) + c.RelPos2CrossNormal.Dot(bodyB.AngularVelocity)
	relVel := vel1Dotn - vel2Dotn

	j := -relVel * c.JacDiagABInv
	oldTangentImpulse := c.AppliedImpulse
	c.AppliedImpulse = mathutil.Clamp(oldTangentImpulse+j, -limit, limit)
	j = c.AppliedImpulse - oldTangentImpulse
	c.AppliedVelocityImpulse = j

	bodyA.InternalApplyImpulse(c.ContactNormal.Mul(bodyA.InvMass), c.AngularComponentA, j)
	bodyB.InternalApplyImpulse(c.ContactNormal.Mul(bodyB.InvMass), c.AngularComponentB, -j)

	return j
}
