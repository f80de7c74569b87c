package actor

import (
	"math"

	"github.com/akmonengine/impulse/mathutil"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic

	// BodyTypeKinematic bodies have infinite mass but move with a user-driven velocity
	BodyTypeKinematic
)

// SolverType selects the contact and friction resolvers used for a body pair
type SolverType int

const (
	SolverTypeDefault SolverType = iota
	SolverType1
	SolverType2
	SolverTypeUser1
	// MaxSolverTypes is the size of each axis of the resolver dispatch table
	MaxSolverTypes
)

// IslandInactive is the island tag of bodies that never take part in the solver pool
const IslandInactive = -1

type Material struct {
	Density     float64
	mass        float64
	Restitution float64 // 0= no rebound, 1= perfect restitution
	Friction    float64

	LinearDamping  float64 // 0.0 - 1.0, typical: 0.01
	AngularDamping float64 // 0.0 - 1.0, typical: 0.05
}

func (material Material) GetMass() float64 {
	return material.mass
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	// Center of mass frame
	Transform Transform

	// Linear motion
	Velocity mgl64.Vec3 // Linear velocity (m/s)

	// Angular motion
	AngularVelocity mgl64.Vec3 // rad/s
	AngularFactor   float64    // scales every angular velocity change, 0 locks rotation

	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	// IslandTag is >= 0 while the body is dynamically active
	IslandTag int

	ContactSolverType  SolverType
	FrictionSolverType SolverType

	// Physical properties
	Material Material
	BodyType BodyType

	// Collision shape
	Shape ShapeInterface
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored for static and kinematic)
func NewRigidBody(transform Transform, shape ShapeInterface, bodyType BodyType, density float64) *RigidBody {
	if transform.Rotation == (mgl64.Quat{}) {
		transform.Rotation = mgl64.QuatIdent()
	}
	transform.InverseRotation = transform.Rotation.Inverse()

	rb := &RigidBody{
		Transform:     transform,
		Shape:         shape,
		BodyType:      bodyType,
		AngularFactor: 1.0,
	}

	if bodyType == BodyTypeDynamic {
		rb.Material = Material{Density: density}
		if shape != nil {
			rb.SetMass(shape.ComputeMass(density))
		}
	} else {
		rb.IslandTag = IslandInactive
		rb.Material = Material{mass: math.Inf(1)}
	}

	return rb
}

// SetMass overrides the mass of a dynamic body and recomputes its inertia from the shape
func (rb *RigidBody) SetMass(mass float64) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}

	rb.Material.mass = mass
	if mass <= 0 || rb.Shape == nil {
		rb.InertiaLocal = mgl64.Mat3{}
		rb.InverseInertiaLocal = mgl64.Mat3{}
		return
	}

	rb.InertiaLocal = rb.Shape.ComputeInertia(mass)
	rb.InverseInertiaLocal = mgl64.Diag3(mgl64.Vec3{
		invOrZero(rb.InertiaLocal.At(0, 0)),
		invOrZero(rb.InertiaLocal.At(1, 1)),
		invOrZero(rb.InertiaLocal.At(2, 2)),
	})
}

func invOrZero(v float64) float64 {
	if v == 0 || math.IsInf(v, 0) {
		return 0
	}
	return 1 / v
}

// InverseMass is 0 for static, kinematic and massless bodies
func (rb *RigidBody) InverseMass() float64 {
	if rb.BodyType != BodyTypeDynamic {
		return 0
	}
	return invOrZero(rb.Material.mass)
}

// IsActive reports whether the body takes part in the solver body pool
func (rb *RigidBody) IsActive() bool {
	return rb.IslandTag >= 0
}

func (rb *RigidBody) CenterOfMassPosition() mgl64.Vec3 {
	return rb.Transform.Position
}

// GetInertiaWorld returns R * I_local * R^T
func (rb *RigidBody) GetInertiaWorld() mgl64.Mat3 {
	R := rb.Transform.Basis()
	return R.Mul3(rb.InertiaLocal).Mul3(R.Transpose())
}

// GetInverseInertiaWorld returns R * I_local^(-1) * R^T
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType != BodyTypeDynamic {
		return mgl64.Mat3{}
	}

	R := rb.Transform.Basis()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}

// InverseInertiaDiagLocal returns the principal inverse inertia in body space
func (rb *RigidBody) InverseInertiaDiagLocal() mgl64.Vec3 {
	if rb.BodyType != BodyTypeDynamic {
		return mgl64.Vec3{}
	}
	return mathutil.Diagonal(rb.InverseInertiaLocal)
}

// VelocityInLocalPoint returns the velocity of a point at relPos from the center of mass
func (rb *RigidBody) VelocityInLocalPoint(relPos mgl64.Vec3) mgl64.Vec3 {
	return rb.Velocity.Add(rb.AngularVelocity.Cross(relPos))
}

func (rb *RigidBody) ApplyCentralImpulse(impulse mgl64.Vec3) {
	rb.Velocity = rb.Velocity.Add(impulse.Mul(rb.InverseMass()))
}

func (rb *RigidBody) ApplyTorqueImpulse(torque mgl64.Vec3) {
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.GetInverseInertiaWorld().Mul3x1(torque).Mul(rb.AngularFactor))
}

// ApplyImpulse applies impulse at relPos, relative to the center of mass
func (rb *RigidBody) ApplyImpulse(impulse, relPos mgl64.Vec3) {
	if rb.InverseMass() == 0 {
		return
	}

	rb.ApplyCentralImpulse(impulse)
	rb.ApplyTorqueImpulse(relPos.Cross(impulse))
}

// InternalApplyImpulse applies a precomputed impulse direction scaled by magnitude.
// linearComponent is normal*invMass, angularComponent is invInertiaWorld*(relPos × normal).
func (rb *RigidBody) InternalApplyImpulse(linearComponent, angularComponent mgl64.Vec3, magnitude float64) {
	if rb.InverseMass() == 0 {
		return
	}

	rb.Velocity = rb.Velocity.Add(linearComponent.Mul(magnitude))
	rb.AngularVelocity = rb.AngularVelocity.Add(angularComponent.Mul(magnitude * rb.AngularFactor))
}

// IntegrateVelocities applies gravity, accumulated forces and damping to the velocities
func (rb *RigidBody) IntegrateVelocities(dt float64, gravity mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}

	invMass := rb.InverseMass()
	if invMass != 0 {
		acceleration := gravity.Add(rb.accumulatedForce.Mul(invMass))
		rb.Velocity = rb.Velocity.Add(acceleration.Mul(dt))
	}

	angularAccel := rb.GetInverseInertiaWorld().Mul3x1(rb.accumulatedTorque)
	rb.AngularVelocity = rb.AngularVelocity.Add(angularAccel.Mul(dt * rb.AngularFactor))

	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))
	rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.Material.AngularDamping * dt))

	rb.ClearForces()
}

// IntegrateTransform advances the center of mass frame with the current velocities
func (rb *RigidBody) IntegrateTransform(dt float64) {
	if rb.BodyType == BodyTypeStatic {
		return
	}

	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	omegaQuat := mgl64.Quat{V: rb.AngularVelocity, W: 0}
	qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
	rb.Transform.Rotation = rb.Transform.Rotation.Add(qDot.Scale(dt)).Normalize()
	rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()
}

func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
	}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}
