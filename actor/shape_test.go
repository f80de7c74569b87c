package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// ========== INERTIA MATRIX TESTS ==========
func TestBoxComputeInertia(t *testing.T) {
	tests := []struct {
		name         string
		box          *Box
		mass         float64
		expectedDiag mgl64.Vec3 // diagonal elements (ix, iy, iz)
	}{
		{
			name:         "unit cube",
			box:          &Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
			mass:         12.0,                // m/12 = 1.0
			expectedDiag: mgl64.Vec3{8, 8, 8}, // (2*2 + 2*2, 2*2 + 2*2, 2*2 + 2*2)
		},
		{
			name:         "rectangular box 2x3x4",
			box:          &Box{HalfExtents: mgl64.Vec3{2, 3, 4}},
			mass:         12.0,
			expectedDiag: mgl64.Vec3{100, 80, 52}, // (m/12)*(6²+8²), (m/12)*(4²+8²), (m/12)*(4²+6²)
		},
		{
			name:         "thin box",
			box:          &Box{HalfExtents: mgl64.Vec3{0.1, 5, 0.1}},
			mass:         60.0,
			expectedDiag: mgl64.Vec3{500.2, 0.4, 500.2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inertia := tt.box.ComputeInertia(tt.mass)
			got := mgl64.Vec3{inertia.At(0, 0), inertia.At(1, 1), inertia.At(2, 2)}

			if !vec3AlmostEqual(got, tt.expectedDiag, 1e-9) {
				t.Errorf("ComputeInertia() diag = %v, want %v", got, tt.expectedDiag)
			}
			if inertia.At(0, 1) != 0 || inertia.At(1, 2) != 0 || inertia.At(0, 2) != 0 {
				t.Errorf("box inertia should be diagonal: %v", inertia)
			}
		})
	}
}

func TestSphereComputeInertia(t *testing.T) {
	s := &Sphere{Radius: 2}
	inertia := s.ComputeInertia(5)

	// (2/5) * 5 * 4 = 8
	for i := 0; i < 3; i++ {
		if !almostEqual(inertia.At(i, i), 8, 1e-12) {
			t.Errorf("inertia[%d][%d] = %v, want 8", i, i, inertia.At(i, i))
		}
	}
}

func TestComputeMass(t *testing.T) {
	tests := []struct {
		name     string
		shape    ShapeInterface
		density  float64
		expected float64
	}{
		{"unit cube", &Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}, 3, 3},
		{"box 2x4x6", &Box{HalfExtents: mgl64.Vec3{1, 2, 3}}, 0.5, 24},
		{"unit sphere", &Sphere{Radius: 1}, 1, 4.0 / 3.0 * math.Pi},
		{"plane", &Plane{Normal: mgl64.Vec3{0, 1, 0}}, 1, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.shape.ComputeMass(tt.density)
			if math.IsInf(tt.expected, 1) {
				if !math.IsInf(got, 1) {
					t.Errorf("ComputeMass() = %v, want +Inf", got)
				}
				return
			}
			if !almostEqual(got, tt.expected, 1e-10) {
				t.Errorf("ComputeMass() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestShapeType(t *testing.T) {
	if (&Sphere{}).Type() != ShapeTypeSphere || (&Box{}).Type() != ShapeTypeBox || (&Plane{}).Type() != ShapeTypePlane {
		t.Error("shape types do not match their constants")
	}
}

func TestPlaneSignedDistance(t *testing.T) {
	p := &Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: -1}

	if d := p.SignedDistance(mgl64.Vec3{3, 4, -2}); !almostEqual(d, 3, 1e-12) {
		t.Errorf("SignedDistance() = %v, want 3", d)
	}
	if d := p.SignedDistance(mgl64.Vec3{0, 0.5, 0}); !almostEqual(d, -0.5, 1e-12) {
		t.Errorf("SignedDistance() = %v, want -0.5", d)
	}
}

func TestNewRigidBody_Plane(t *testing.T) {
	// A dynamic plane still ends up immovable: its mass is infinite
	rb := NewRigidBody(NewTransform(), &Plane{Normal: mgl64.Vec3{0, 1, 0}}, BodyTypeDynamic, 1)
	if rb.InverseMass() != 0 {
		t.Errorf("InverseMass() = %v, want 0 for plane", rb.InverseMass())
	}
}
