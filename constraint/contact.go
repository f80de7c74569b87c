package constraint

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ContactPoint is one persistent point of a manifold
type ContactPoint struct {
	PositionWorldOnA mgl64.Vec3
	PositionWorldOnB mgl64.Vec3
	// NormalWorldOnB points from B to A
	NormalWorldOnB mgl64.Vec3
	// Distance is negative when the bodies interpenetrate
	Distance float64

	CombinedFriction    float64
	CombinedRestitution float64

	// LifeTime counts the steps this point survived in its manifold
	LifeTime int

	// Impulses of the last solve, reused for warm starting
	AppliedImpulse         float64
	AppliedImpulseLateral1 float64
	AppliedImpulseLateral2 float64

	// Persistent is created by the first legacy prepare and dropped with the point
	Persistent *ContactPersistentData
}

// Manifold is the set of persistent contact points between two bodies
type Manifold struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	Points []ContactPoint
}

func NewManifold(bodyA, bodyB *actor.RigidBody) *Manifold {
	return &Manifold{
		BodyA:  bodyA,
		BodyB:  bodyB,
		Points: make([]ContactPoint, 0, 4),
	}
}

func (m *Manifold) NumPoints() int {
	return len(m.Points)
}

// Point returns a pointer to the i-th point, valid until the next AddPoint or RemovePoint
func (m *Manifold) Point(i int) *ContactPoint {
	return &m.Points[i]
}

// NewPoint builds a point with the material coefficients of the two bodies combined
func (m *Manifold) NewPoint(positionOnA, positionOnB, normalOnB mgl64.Vec3, distance float64) ContactPoint {
	return ContactPoint{
		PositionWorldOnA:    positionOnA,
		PositionWorldOnB:    positionOnB,
		NormalWorldOnB:      normalOnB,
		Distance:            distance,
		CombinedFriction:    CombineFriction(m.BodyA, m.BodyB),
		CombinedRestitution: CombineRestitution(m.BodyA, m.BodyB),
	}
}

// AddPoint appends a new point and returns its index
func (m *Manifold) AddPoint(point ContactPoint) int {
	m.Points = append(m.Points, point)
	return len(m.Points) - 1
}

// ReplacePoint updates the geometry of the i-th point, keeping its lifetime,
// its cached impulses and its persistent data
func (m *Manifold) ReplacePoint(i int, point ContactPoint) {
	old := &m.Points[i]
	point.LifeTime = old.LifeTime
	point.AppliedImpulse = old.AppliedImpulse
	point.AppliedImpulseLateral1 = old.AppliedImpulseLateral1
	point.AppliedImpulseLateral2 = old.AppliedImpulseLateral2
	point.Persistent = old.Persistent
	*old = point
}

// RemovePoint drops the i-th point and its persistent data.
// The last point takes its slot.
func (m *Manifold) RemovePoint(i int) {
	last := len(m.Points) - 1
	m.Points[i].Persistent = nil
	m.Points[i] = m.Points[last]
	m.Points[last] = ContactPoint{}
	m.Points = m.Points[:last]
}

// Refresh ages every point by one step
func (m *Manifold) Refresh() {
	for i := range m.Points {
		m.Points[i].LifeTime++
	}
}

// Clear removes every point
func (m *Manifold) Clear() {
	for i := range m.Points {
		m.Points[i] = ContactPoint{}
	}
	m.Points = m.Points[:0]
}
