package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func vec3AlmostEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return almostEqual(a.X(), b.X(), tolerance) &&
		almostEqual(a.Y(), b.Y(), tolerance) &&
		almostEqual(a.Z(), b.Z(), tolerance)
}

// =============================================================================
// BodyType Tests
// =============================================================================

func TestBodyType_Constants(t *testing.T) {
	if BodyTypeDynamic == BodyTypeStatic || BodyTypeStatic == BodyTypeKinematic {
		t.Error("body type constants should be distinct")
	}

	// Verify expected values (iota starts at 0)
	if BodyTypeDynamic != 0 {
		t.Errorf("BodyTypeDynamic = %d, want 0", BodyTypeDynamic)
	}
}

func TestSolverType_Constants(t *testing.T) {
	if SolverTypeDefault != 0 {
		t.Errorf("SolverTypeDefault = %d, want 0", SolverTypeDefault)
	}
	if MaxSolverTypes != 4 {
		t.Errorf("MaxSolverTypes = %d, want 4", MaxSolverTypes)
	}
}

// =============================================================================
// NewRigidBody Tests
// =============================================================================

func TestNewRigidBody_Dynamic(t *testing.T) {
	transform := Transform{
		Position: mgl64.Vec3{1, 2, 3},
	}
	sphere := &Sphere{Radius: 1.0}
	density := 2.0

	rb := NewRigidBody(transform, sphere, BodyTypeDynamic, density)

	if rb.BodyType != BodyTypeDynamic {
		t.Errorf("BodyType = %v, want BodyTypeDynamic", rb.BodyType)
	}
	if !vec3AlmostEqual(rb.Transform.Position, transform.Position, 1e-10) {
		t.Errorf("Transform.Position = %v, want %v", rb.Transform.Position, transform.Position)
	}

	// A zero quaternion is replaced by the identity
	if rb.Transform.Rotation != mgl64.QuatIdent() {
		t.Errorf("Transform.Rotation = %v, want identity", rb.Transform.Rotation)
	}

	expectedMass := sphere.ComputeMass(density)
	if !almostEqual(rb.Material.GetMass(), expectedMass, 1e-10) {
		t.Errorf("Material.GetMass() = %v, want %v", rb.Material.GetMass(), expectedMass)
	}
	if !almostEqual(rb.InverseMass(), 1/expectedMass, 1e-10) {
		t.Errorf("InverseMass() = %v, want %v", rb.InverseMass(), 1/expectedMass)
	}
	if !rb.IsActive() {
		t.Error("dynamic body should be active")
	}
	if rb.AngularFactor != 1.0 {
		t.Errorf("AngularFactor = %v, want 1", rb.AngularFactor)
	}
}

func TestNewRigidBody_NotDynamic(t *testing.T) {
	tests := []struct {
		name     string
		bodyType BodyType
	}{
		{"static", BodyTypeStatic},
		{"kinematic", BodyTypeKinematic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := &Box{HalfExtents: mgl64.Vec3{2, 2, 2}}
			rb := NewRigidBody(NewTransformAt(mgl64.Vec3{5, 10, 15}), box, tt.bodyType, 1.5)

			if !math.IsInf(rb.Material.GetMass(), 1) {
				t.Errorf("Material.GetMass() = %v, want +Inf", rb.Material.GetMass())
			}
			if rb.InverseMass() != 0 {
				t.Errorf("InverseMass() = %v, want 0", rb.InverseMass())
			}
			if rb.IsActive() {
				t.Error("non-dynamic body should not be active")
			}
			if rb.GetInverseInertiaWorld() != (mgl64.Mat3{}) {
				t.Errorf("GetInverseInertiaWorld() = %v, want zero", rb.GetInverseInertiaWorld())
			}
			if rb.InverseInertiaDiagLocal() != (mgl64.Vec3{}) {
				t.Errorf("InverseInertiaDiagLocal() = %v, want zero", rb.InverseInertiaDiagLocal())
			}
		})
	}
}

func TestNewRigidBody_ZeroDensity(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1}, BodyTypeDynamic, 0)

	if rb.InverseMass() != 0 {
		t.Errorf("InverseMass() = %v, want 0 for massless body", rb.InverseMass())
	}
	if rb.InverseInertiaDiagLocal() != (mgl64.Vec3{}) {
		t.Errorf("InverseInertiaDiagLocal() = %v, want zero", rb.InverseInertiaDiagLocal())
	}
}

func TestNewRigidBody_NilShape(t *testing.T) {
	rb := NewRigidBody(NewTransform(), nil, BodyTypeDynamic, 1)

	if rb.InverseMass() != 0 {
		t.Errorf("InverseMass() = %v, want 0 without a shape", rb.InverseMass())
	}

	rb.SetMass(2)
	if rb.InverseMass() != 0.5 {
		t.Errorf("InverseMass() = %v, want 0.5", rb.InverseMass())
	}
	if rb.InverseInertiaDiagLocal() != (mgl64.Vec3{}) {
		t.Errorf("InverseInertiaDiagLocal() = %v, want zero without a shape", rb.InverseInertiaDiagLocal())
	}
}

func TestSetMass(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1}, BodyTypeDynamic, 1)
	rb.SetMass(2.5)

	if rb.InverseMass() != 0.4 {
		t.Errorf("InverseMass() = %v, want 0.4", rb.InverseMass())
	}

	// I = 2/5 * m * r² = 1
	expected := mgl64.Vec3{1, 1, 1}
	if !vec3AlmostEqual(rb.InverseInertiaDiagLocal(), expected, 1e-12) {
		t.Errorf("InverseInertiaDiagLocal() = %v, want %v", rb.InverseInertiaDiagLocal(), expected)
	}

	static := NewRigidBody(NewTransform(), &Sphere{Radius: 1}, BodyTypeStatic, 0)
	static.SetMass(3)
	if static.InverseMass() != 0 {
		t.Error("SetMass should not affect static bodies")
	}
}

// =============================================================================
// Inertia Tests
// =============================================================================

func TestGetInverseInertiaWorld_WithRotation(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{1, 2, 3}}
	transform := NewTransform()
	transform.Rotation = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})

	rb := NewRigidBody(transform, box, BodyTypeDynamic, 1.0)
	diag := rb.InverseInertiaDiagLocal()
	world := rb.GetInverseInertiaWorld()

	// 90° around Z swaps the X and Y principal axes
	if !almostEqual(world.At(0, 0), diag.Y(), 1e-10) || !almostEqual(world.At(1, 1), diag.X(), 1e-10) {
		t.Errorf("rotated inverse inertia = %v, local diag = %v", world, diag)
	}
	if !almostEqual(world.At(2, 2), diag.Z(), 1e-10) {
		t.Errorf("Z axis should be unchanged: %v vs %v", world.At(2, 2), diag.Z())
	}

	product := rb.GetInertiaWorld().Mul3(world)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if !almostEqual(product.At(i, j), want, 1e-9) {
				t.Fatalf("I * I^-1 = %v, want identity", product)
			}
		}
	}
}

// =============================================================================
// Impulse Tests
// =============================================================================

func TestVelocityInLocalPoint(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1}, BodyTypeDynamic, 1)
	rb.Velocity = mgl64.Vec3{1, 0, 0}
	rb.AngularVelocity = mgl64.Vec3{0, 0, 2}

	// v + ω × r = (1,0,0) + (0,0,2)×(1,0,0) = (1,2,0)
	got := rb.VelocityInLocalPoint(mgl64.Vec3{1, 0, 0})
	if !vec3AlmostEqual(got, mgl64.Vec3{1, 2, 0}, 1e-12) {
		t.Errorf("VelocityInLocalPoint() = %v, want (1,2,0)", got)
	}
}

func TestApplyImpulse(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1}, BodyTypeDynamic, 1)
	rb.SetMass(2.5) // inverse inertia = 1 on all axes

	rb.ApplyImpulse(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{1, 0, 0})

	if !vec3AlmostEqual(rb.Velocity, mgl64.Vec3{0, 2, 0}, 1e-12) {
		t.Errorf("Velocity = %v, want (0,2,0)", rb.Velocity)
	}
	// r × J = (1,0,0)×(0,5,0) = (0,0,5)
	if !vec3AlmostEqual(rb.AngularVelocity, mgl64.Vec3{0, 0, 5}, 1e-12) {
		t.Errorf("AngularVelocity = %v, want (0,0,5)", rb.AngularVelocity)
	}
}

func TestApplyImpulse_AngularFactor(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1}, BodyTypeDynamic, 1)
	rb.SetMass(2.5)
	rb.AngularFactor = 0

	rb.ApplyImpulse(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{1, 0, 0})

	if rb.AngularVelocity != (mgl64.Vec3{}) {
		t.Errorf("AngularVelocity = %v, want zero with AngularFactor 0", rb.AngularVelocity)
	}
}

func TestInternalApplyImpulse(t *testing.T) {
	tests := []struct {
		name        string
		bodyType    BodyType
		wantLinear  mgl64.Vec3
		wantAngular mgl64.Vec3
	}{
		{
			name:        "dynamic body moves",
			bodyType:    BodyTypeDynamic,
			wantLinear:  mgl64.Vec3{0, 3, 0},
			wantAngular: mgl64.Vec3{1.5, 0, 0},
		},
		{
			name:        "static body ignores impulse",
			bodyType:    BodyTypeStatic,
			wantLinear:  mgl64.Vec3{},
			wantAngular: mgl64.Vec3{},
		},
		{
			name:        "kinematic body ignores impulse",
			bodyType:    BodyTypeKinematic,
			wantLinear:  mgl64.Vec3{},
			wantAngular: mgl64.Vec3{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1}, tt.bodyType, 1)
			rb.InternalApplyImpulse(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0.5, 0, 0}, 3)

			if !vec3AlmostEqual(rb.Velocity, tt.wantLinear, 1e-12) {
				t.Errorf("Velocity = %v, want %v", rb.Velocity, tt.wantLinear)
			}
			if !vec3AlmostEqual(rb.AngularVelocity, tt.wantAngular, 1e-12) {
				t.Errorf("AngularVelocity = %v, want %v", rb.AngularVelocity, tt.wantAngular)
			}
		})
	}
}

// =============================================================================
// Integration Tests
// =============================================================================

func TestIntegrateVelocities_Gravity(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1}, BodyTypeDynamic, 1)
	gravity := mgl64.Vec3{0, -9.81, 0}

	rb.IntegrateVelocities(0.1, gravity)

	if !vec3AlmostEqual(rb.Velocity, mgl64.Vec3{0, -0.981, 0}, 1e-10) {
		t.Errorf("Velocity = %v, want (0,-0.981,0)", rb.Velocity)
	}
	// Position is untouched until IntegrateTransform
	if rb.Transform.Position != (mgl64.Vec3{}) {
		t.Errorf("Position = %v, want origin", rb.Transform.Position)
	}
}

func TestIntegrateVelocities_ForceAndDamping(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1}, BodyTypeDynamic, 1)
	rb.SetMass(2)
	rb.Material.LinearDamping = 0.5

	rb.AddForce(mgl64.Vec3{4, 0, 0})
	rb.IntegrateVelocities(1, mgl64.Vec3{})

	want := 2 * math.Exp(-0.5)
	if !almostEqual(rb.Velocity.X(), want, 1e-10) {
		t.Errorf("Velocity.X = %v, want %v", rb.Velocity.X(), want)
	}

	// Forces are cleared after integration
	rb.IntegrateVelocities(1, mgl64.Vec3{})
	if !almostEqual(rb.Velocity.X(), want*math.Exp(-0.5), 1e-10) {
		t.Errorf("force should have been cleared, Velocity.X = %v", rb.Velocity.X())
	}
}

func TestIntegrateVelocities_Static(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, BodyTypeStatic, 0)
	rb.IntegrateVelocities(0.1, mgl64.Vec3{0, -9.81, 0})

	if rb.Velocity != (mgl64.Vec3{}) {
		t.Errorf("static body velocity changed: %v", rb.Velocity)
	}
}

func TestIntegrateTransform(t *testing.T) {
	tests := []struct {
		name     string
		bodyType BodyType
		wantPos  mgl64.Vec3
	}{
		{"dynamic moves", BodyTypeDynamic, mgl64.Vec3{0.2, 0, 0}},
		{"kinematic moves", BodyTypeKinematic, mgl64.Vec3{0.2, 0, 0}},
		{"static stays", BodyTypeStatic, mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1}, tt.bodyType, 1)
			rb.Velocity = mgl64.Vec3{2, 0, 0}

			rb.IntegrateTransform(0.1)

			if !vec3AlmostEqual(rb.Transform.Position, tt.wantPos, 1e-12) {
				t.Errorf("Position = %v, want %v", rb.Transform.Position, tt.wantPos)
			}
		})
	}
}

func TestIntegrateTransform_QuaternionNormalization(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, BodyTypeDynamic, 1)
	rb.AngularVelocity = mgl64.Vec3{3, -2, 5}

	for i := 0; i < 100; i++ {
		rb.IntegrateTransform(1.0 / 60.0)
	}

	if !almostEqual(rb.Transform.Rotation.Len(), 1, 1e-9) {
		t.Errorf("rotation not normalized: |q| = %v", rb.Transform.Rotation.Len())
	}
	identity := rb.Transform.Rotation.Mul(rb.Transform.InverseRotation)
	if !almostEqual(identity.W, 1, 1e-9) {
		t.Errorf("InverseRotation is stale: q*q^-1 = %v", identity)
	}
}

// =============================================================================
// Transform Tests
// =============================================================================

func TestTransform_ApplyInverseApply(t *testing.T) {
	transform := NewTransformAt(mgl64.Vec3{1, 2, 3})
	transform.Rotation = mgl64.QuatRotate(math.Pi/3, mgl64.Vec3{1, 1, 0}.Normalize())

	local := mgl64.Vec3{0.5, -1, 2}
	world := transform.Apply(local)

	if !vec3AlmostEqual(transform.InverseApply(world), local, 1e-10) {
		t.Errorf("InverseApply(Apply(p)) = %v, want %v", transform.InverseApply(world), local)
	}
}
