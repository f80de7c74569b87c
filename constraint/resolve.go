package constraint

import (
	"math"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/internal/invariant"
	"github.com/akmonengine/impulse/mathutil"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// bilateralDamping scales the velocity correction of ResolveSingleBilateral
	bilateralDamping = 0.2
	// maxNormalLen2 rejects normals that are clearly not unit length
	maxNormalLen2 = 1.1
)

// RestitutionCurve returns the bounce velocity target, never negative.
// Separating or resting contacts do not bounce.
func RestitutionCurve(relVel, restitution float64) float64 {
	return math.Max(0, restitution*-relVel)
}

// PositionalBias converts a penetration depth into a separating velocity target.
// It is zero when the bounce alone already resolves the penetration within one step.
func PositionalBias(distance, restitution float64, info *ContactSolverInfo) float64 {
	if restitution > -distance/info.TimeStep {
		return 0
	}
	return -distance * (info.Erp / info.TimeStep)
}

// FrictionBasis returns two orthonormal tangents of normal.
// The first follows the lateral relative velocity when there is one.
func FrictionBasis(relativeVelocity, normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	relVel := normal.Dot(relativeVelocity)
	lateral := relativeVelocity.Sub(normal.Mul(relVel))
	lateralLen2 := lateral.LenSqr()

	if lateralLen2 > mathutil.Epsilon {
		tangent0 := lateral.Mul(1 / math.Sqrt(lateralLen2))
		tangent1 := tangent0.Cross(normal).Normalize()
		return tangent0, tangent1
	}

	return mathutil.PlaneSpace(normal)
}

// PrepareContact fills the persistent data of cp for this step.
// The cache is created on first use and reset in place when the point lifetime no longer matches.
// With warmStart, the relaxed impulses of the previous step are applied to the bodies.
func PrepareContact(bodyA, bodyB *actor.RigidBody, cp *ContactPoint, info *ContactSolverInfo, warmStart, frictionWarmStart bool) *ContactPersistentData {
	cpd := cp.Persistent
	if cpd != nil {
		cpd.PersistentLifeTime++
		if cpd.PersistentLifeTime != cp.LifeTime {
			cpd.Reset()
			cpd.PersistentLifeTime = cp.LifeTime
		}
	} else {
		cpd = &ContactPersistentData{PersistentLifeTime: cp.LifeTime}
		cp.Persistent = cpd
	}

	normal := cp.NormalWorldOnB
	relPos1 := cp.PositionWorldOnA.Sub(bodyA.CenterOfMassPosition())
	relPos2 := cp.PositionWorldOnB.Sub(bodyB.CenterOfMassPosition())
	invInertiaA := bodyA.GetInverseInertiaWorld()
	invInertiaB := bodyB.GetInverseInertiaWorld()

	vel := bodyA.VelocityInLocalPoint(relPos1).Sub(bodyB.VelocityInLocalPoint(relPos2))
	relVel := normal.Dot(vel)

	jacDiagAB := NewBodyJacobianEntry(bodyA, bodyB, relPos1, relPos2, normal).Diagonal()
	if invariant.Check(jacDiagAB > 0, "contact jacobian diagonal is not positive") {
		cpd.JacDiagABInv = 1 / jacDiagAB
	} else {
		cpd.JacDiagABInv = 0
	}

	cpd.Friction = cp.CombinedFriction
	cpd.Restitution = RestitutionCurve(relVel, cp.CombinedRestitution)
	cpd.Penetration = PositionalBias(cp.Distance, cpd.Restitution, info)

	cpd.AngularComponentA = invInertiaA.Mul3x1(relPos1.Cross(normal))
	cpd.AngularComponentB = invInertiaB.Mul3x1(relPos2.Cross(normal))

	if warmStart {
		cpd.AppliedImpulse *= info.Damping
		impulse := normal.Mul(cpd.AppliedImpulse)
		bodyA.ApplyImpulse(impulse, relPos1)
		bodyB.ApplyImpulse(impulse.Mul(-1), relPos2)
	} else {
		cpd.AppliedImpulse = 0
	}
	cpd.PrevAppliedImpulse = cpd.AppliedImpulse

	tangent0, tangent1 := FrictionBasis(vel, normal)
	cpd.FrictionWorldTangential0 = tangent0
	cpd.FrictionWorldTangential1 = tangent1

	if frictionWarmStart {
		cpd.AccumulatedTangentImpulse0 *= info.Damping
		cpd.AccumulatedTangentImpulse1 *= info.Damping
		impulse := tangent0.Mul(cpd.AccumulatedTangentImpulse0).Add(tangent1.Mul(cpd.AccumulatedTangentImpulse1))
		bodyA.ApplyImpulse(impulse, relPos1)
		bodyB.ApplyImpulse(impulse.Mul(-1), relPos2)
	} else {
		cpd.AccumulatedTangentImpulse0 = 0
		cpd.AccumulatedTangentImpulse1 = 0
	}

	cpd.JacDiagABInvTangent0 = tangentJacDiagInv(bodyA, bodyB, relPos1, relPos2, tangent0)
	cpd.JacDiagABInvTangent1 = tangentJacDiagInv(bodyA, bodyB, relPos1, relPos2, tangent1)

	cpd.FrictionAngularComponent0A = invInertiaA.Mul3x1(relPos1.Cross(tangent0))
	cpd.FrictionAngularComponent1A = invInertiaA.Mul3x1(relPos1.Cross(tangent1))
	cpd.FrictionAngularComponent0B = invInertiaB.Mul3x1(relPos2.Cross(tangent0))
	cpd.FrictionAngularComponent1B = invInertiaB.Mul3x1(relPos2.Cross(tangent1))

	return cpd
}

func tangentJacDiagInv(bodyA, bodyB *actor.RigidBody, relPos1, relPos2, tangent mgl64.Vec3) float64 {
	denom := NewBodyJacobianEntry(bodyA, bodyB, relPos1, relPos2, tangent).Diagonal()
	if !invariant.Check(denom > 0, "friction jacobian diagonal is not positive") {
		return 0
	}
	return 1 / denom
}

// ResolveSingleCollision applies the normal impulse of one prepared contact point.
// The accumulated impulse never goes below zero: contacts push, they never pull.
func ResolveSingleCollision(bodyA, bodyB *actor.RigidBody, cp *ContactPoint, info *ContactSolverInfo) float64 {
	cpd := cp.Persistent
	if !invariant.Check(cpd != nil, "contact point was not prepared") {
		return 0
	}

	return resolveNormal(bodyA, bodyB, cp, cpd)
}

func resolveNormal(bodyA, bodyB *actor.RigidBody, cp *ContactPoint, cpd *ContactPersistentData) float64 {
	normal := cp.NormalWorldOnB
	relPos1 := cp.PositionWorldOnA.Sub(bodyA.CenterOfMassPosition())
	relPos2 := cp.PositionWorldOnB.Sub(bodyB.CenterOfMassPosition())

	vel := bodyA.VelocityInLocalPoint(relPos1).Sub(bodyB.VelocityInLocalPoint(relPos2))
	relVel := normal.Dot(vel)

	velocityImpulse := (cpd.Restitution - relVel) * cpd.JacDiagABInv
	penetrationImpulse := cpd.Penetration * cpd.JacDiagABInv
	normalImpulse := penetrationImpulse + velocityImpulse

	oldNormalImpulse := cpd.AppliedImpulse
	cpd.AppliedImpulse = math.Max(0, oldNormalImpulse+normalImpulse)
	normalImpulse = cpd.AppliedImpulse - oldNormalImpulse

	bodyA.InternalApplyImpulse(normal.Mul(bodyA.InverseMass()), cpd.AngularComponentA, normalImpulse)
	bodyB.InternalApplyImpulse(normal.Mul(bodyB.InverseMass()), cpd.AngularComponentB, -normalImpulse)

	return normalImpulse
}

// ResolveSingleFriction applies the two tangent impulses of one prepared contact point,
// each accumulated within the friction box [-µ·jn, µ·jn]. The box is empty while jn is zero.
func ResolveSingleFriction(bodyA, bodyB *actor.RigidBody, cp *ContactPoint, info *ContactSolverInfo) float64 {
	cpd := cp.Persistent
	if !invariant.Check(cpd != nil, "contact point was not prepared") {
		return 0
	}

	limit := math.Max(0, cpd.AppliedImpulse*cpd.Friction)
	// without normal force the tangents only release what they accumulated
	if limit == 0 && cpd.AccumulatedTangentImpulse0 == 0 && cpd.AccumulatedTangentImpulse1 == 0 {
		return 0
	}

	relPos1 := cp.PositionWorldOnA.Sub(bodyA.CenterOfMassPosition())
	relPos2 := cp.PositionWorldOnB.Sub(bodyB.CenterOfMassPosition())

	j0 := resolveTangent(bodyA, bodyB, relPos1, relPos2, limit,
		cpd.FrictionWorldTangential0, cpd.JacDiagABInvTangent0, &cpd.AccumulatedTangentImpulse0,
		cpd.FrictionAngularComponent0A, cpd.FrictionAngularComponent0B)
	j1 := resolveTangent(bodyA, bodyB, relPos1, relPos2, limit,
		cpd.FrictionWorldTangential1, cpd.JacDiagABInvTangent1, &cpd.AccumulatedTangentImpulse1,
		cpd.FrictionAngularComponent1A, cpd.FrictionAngularComponent1B)

	return math.Hypot(j0, j1)
}

func resolveTangent(bodyA, bodyB *actor.RigidBody, relPos1, relPos2 mgl64.Vec3, limit float64,
	tangent mgl64.Vec3, jacDiagABInv float64, accumulated *float64, angularA, angularB mgl64.Vec3) float64 {
	vel := bodyA.VelocityInLocalPoint(relPos1).Sub(bodyB.VelocityInLocalPoint(relPos2))
	relVel := tangent.Dot(vel)

	j := -relVel * jacDiagABInv
	old := *accumulated
	*accumulated = mathutil.Clamp(old+j, -limit, limit)
	j = *accumulated - old

	bodyA.InternalApplyImpulse(tangent.Mul(bodyA.InverseMass()), angularA, j)
	bodyB.InternalApplyImpulse(tangent.Mul(bodyB.InverseMass()), angularB, -j)

	return j
}

// ResolveSingleCollisionCombined applies the normal impulse, then a single
// friction impulse opposing the current lateral velocity, bounded by µ·jn
func ResolveSingleCollisionCombined(bodyA, bodyB *actor.RigidBody, cp *ContactPoint, info *ContactSolverInfo) float64 {
	cpd := cp.Persistent
	if !invariant.Check(cpd != nil, "contact point was not prepared") {
		return 0
	}

	normalImpulse := resolveNormal(bodyA, bodyB, cp, cpd)

	normal := cp.NormalWorldOnB
	relPos1 := cp.PositionWorldOnA.Sub(bodyA.CenterOfMassPosition())
	relPos2 := cp.PositionWorldOnB.Sub(bodyB.CenterOfMassPosition())

	vel := bodyA.VelocityInLocalPoint(relPos1).Sub(bodyB.VelocityInLocalPoint(relPos2))
	lateral := vel.Sub(normal.Mul(normal.Dot(vel)))
	lateralSpeed := lateral.Len()

	if cpd.AppliedImpulse <= 0 || lateralSpeed <= mathutil.Epsilon {
		return normalImpulse
	}

	lateral = lateral.Mul(1 / lateralSpeed)
	temp1 := bodyA.GetInverseInertiaWorld().Mul3x1(relPos1.Cross(lateral))
	temp2 := bodyB.GetInverseInertiaWorld().Mul3x1(relPos2.Cross(lateral))
	denom := bodyA.InverseMass() + bodyB.InverseMass() +
		lateral.Dot(temp1.Cross(relPos1).Add(temp2.Cross(relPos2)))
	if !invariant.Check(denom > 0, "lateral effective mass is not positive") {
		return normalImpulse
	}

	maxFriction := cpd.AppliedImpulse * cpd.Friction
	frictionImpulse := mathutil.Clamp(lateralSpeed/denom, -maxFriction, maxFriction)

	bodyA.ApplyImpulse(lateral.Mul(-frictionImpulse), relPos1)
	bodyB.ApplyImpulse(lateral.Mul(frictionImpulse), relPos2)

	return normalImpulse
}

// ResolveSingleBilateral returns the impulse along normal that damps the relative
// velocity of two points. A degenerate normal yields zero.
func ResolveSingleBilateral(bodyA *actor.RigidBody, posA mgl64.Vec3, bodyB *actor.RigidBody, posB mgl64.Vec3, normal mgl64.Vec3) float64 {
	normalLen2 := normal.LenSqr()
	if normalLen2 <= 0 || normalLen2 > maxNormalLen2 {
		return 0
	}

	relPos1 := posA.Sub(bodyA.CenterOfMassPosition())
	relPos2 := posB.Sub(bodyB.CenterOfMassPosition())

	jac := NewBodyJacobianEntry(bodyA, bodyB, relPos1, relPos2, normal)
	jacDiagAB := jac.Diagonal()
	if !invariant.Check(jacDiagAB > 0, "bilateral jacobian diagonal is not positive") {
		return 0
	}

	relVel := jac.BodyRelativeVelocity(bodyA, bodyB)

	return -bilateralDamping * relVel / jacDiagAB
}
