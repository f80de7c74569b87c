package constraint

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ContactResolver resolves one contact point against the two bodies and
// returns the impulse applied by this call
type ContactResolver interface {
	Resolve(bodyA, bodyB *actor.RigidBody, cp *ContactPoint, info *ContactSolverInfo) float64
}

// ResolverFunc adapts a function to ContactResolver
type ResolverFunc func(bodyA, bodyB *actor.RigidBody, cp *ContactPoint, info *ContactSolverInfo) float64

func (f ResolverFunc) Resolve(bodyA, bodyB *actor.RigidBody, cp *ContactPoint, info *ContactSolverInfo) float64 {
	return f(bodyA, bodyB, cp, info)
}

var (
	DefaultContactResolver  ContactResolver = ResolverFunc(ResolveSingleCollision)
	DefaultFrictionResolver ContactResolver = ResolverFunc(ResolveSingleFriction)
	CombinedContactResolver ContactResolver = ResolverFunc(ResolveSingleCollisionCombined)
)

// ContactPersistentData caches the solver coefficients of a contact point across steps
type ContactPersistentData struct {
	AppliedImpulse     float64
	PrevAppliedImpulse float64

	AccumulatedTangentImpulse0 float64
	AccumulatedTangentImpulse1 float64

	JacDiagABInv         float64
	JacDiagABInvTangent0 float64
	JacDiagABInvTangent1 float64

	// PersistentLifeTime follows ContactPoint.LifeTime, a mismatch means the point was replaced
	PersistentLifeTime int

	Restitution float64
	Friction    float64
	// Penetration is the ERP-scaled bias velocity
	Penetration float64

	FrictionWorldTangential0 mgl64.Vec3
	FrictionWorldTangential1 mgl64.Vec3

	FrictionAngularComponent0A mgl64.Vec3
	FrictionAngularComponent0B mgl64.Vec3
	FrictionAngularComponent1A mgl64.Vec3
	FrictionAngularComponent1B mgl64.Vec3

	// invInertiaWorld · (relPos × normal) of each body
	AngularComponentA mgl64.Vec3
	AngularComponentB mgl64.Vec3

	ContactSolver  ContactResolver
	FrictionSolver ContactResolver
}

// Reset reinitializes the cache in place
func (d *ContactPersistentData) Reset() {
	*d = ContactPersistentData{}
}
