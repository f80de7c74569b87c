package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform places a body's center of mass in world space
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position:        mgl64.Vec3{0, 0, 0},
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

// NewTransformAt creates an unrotated transform at position
func NewTransformAt(position mgl64.Vec3) Transform {
	t := NewTransform()
	t.Position = position
	return t
}

// Basis returns the rotation as a 3x3 matrix
func (t Transform) Basis() mgl64.Mat3 {
	return t.Rotation.Mat4().Mat3()
}

// Apply maps a local point to world space
func (t Transform) Apply(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local).Add(t.Position)
}

// InverseApply maps a world point to local space
func (t Transform) InverseApply(world mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(world.Sub(t.Position))
}
