package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/constraints"
)

const (
	// Epsilon is the smallest squared length treated as a usable direction
	Epsilon = 1e-12

	sqrt12 = 0.7071067811865476
)

// Clamp limits v to [lo, hi]
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MulElem returns the component-wise product of a and b
func MulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Diagonal returns the diagonal of m as a vector
func Diagonal(m mgl64.Mat3) mgl64.Vec3 {
	return mgl64.Vec3{m.At(0, 0), m.At(1, 1), m.At(2, 2)}
}

// PlaneSpace returns two unit vectors p and q spanning the plane orthogonal to n.
// n must be normalized. (n, p, q) is right-handed: p × q = n.
func PlaneSpace(n mgl64.Vec3) (p, q mgl64.Vec3) {
	if math.Abs(n[2]) > sqrt12 {
		// choose p in y-z plane
		a := n[1]*n[1] + n[2]*n[2]
		k := 1 / math.Sqrt(a)
		p = mgl64.Vec3{0, -n[2] * k, n[1] * k}
		q = mgl64.Vec3{a * k, -n[0] * p[2], n[0] * p[1]}
		return p, q
	}

	// choose p in x-y plane
	a := n[0]*n[0] + n[1]*n[1]
	k := 1 / math.Sqrt(a)
	p = mgl64.Vec3{-n[1] * k, n[0] * k, 0}
	q = mgl64.Vec3{-n[2] * p[1], n[2] * p[0], a * k}
	return p, q
}
