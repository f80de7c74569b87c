package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
	ShapeTypePlane
)

// ShapeInterface provides the mass properties of a collision shape.
// Contact generation happens outside this module; the solver only needs
// mass and inertia.
type ShapeInterface interface {
	Type() ShapeType
	// ComputeMass calculates the mass of the shape for a given density
	ComputeMass(density float64) float64
	// ComputeInertia returns the local inertia tensor about the center of mass
	ComputeInertia(mass float64) mgl64.Mat3
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Type() ShapeType {
	return ShapeTypeBox
}

// ComputeMass calculates mass data for the box
func (b *Box) ComputeMass(density float64) float64 {
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()

	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (d1² + d2²)
	factor := mass / 12.0

	return mgl64.Diag3(mgl64.Vec3{
		factor * (y*y + z*z),
		factor * (x*x + z*z),
		factor * (x*x + y*y),
	})
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
}

func (s *Sphere) Type() ShapeType {
	return ShapeTypeSphere
}

// ComputeMass calculates mass data for the sphere
func (s *Sphere) ComputeMass(density float64) float64 {
	// Volume of sphere = (4/3) * π * r³
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)

	return density * volume
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	// I = (2/5) * m * r², identical on all axes
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Diag3(mgl64.Vec3{i, i, i})
}

// Plane represents an infinite plane collision shape
// The plane is defined by the equation: Normal · p + Distance = 0
type Plane struct {
	Normal   mgl64.Vec3 // must be normalized
	Distance float64
}

func (p *Plane) Type() ShapeType {
	return ShapeTypePlane
}

// ComputeMass always returns +Inf, planes cannot be moved by contacts
func (p *Plane) ComputeMass(density float64) float64 {
	return math.Inf(1)
}

func (p *Plane) ComputeInertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

// SignedDistance returns the distance of a world point from the plane
func (p *Plane) SignedDistance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) + p.Distance
}
