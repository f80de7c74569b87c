package solver

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
	"github.com/akmonengine/impulse/internal/invariant"
	"github.com/akmonengine/impulse/mathutil"
	"github.com/go-gl/mathgl/mgl64"
)

// seedStream is the fixed PCG stream selector, the seed picks the position in it
const seedStream = 0x9e3779b97f4a7c15

// contactJob is a contact point gathered by the setup.
// Job k fills contact row k and friction rows 2k and 2k+1.
type contactJob struct {
	point   *constraint.ContactPoint
	bodyIDA int
	bodyIDB int
}

type legacyContact struct {
	bodyA *actor.RigidBody
	bodyB *actor.RigidBody
	point *constraint.ContactPoint
}

// SequentialImpulseConstraintSolver solves contacts and joints with projected Gauss-Seidel sweeps.
// An instance is not safe for concurrent use, distinct instances may solve disjoint islands concurrently.
type SequentialImpulseConstraintSolver struct {
	mode SolverMode

	contactDispatch  [actor.MaxSolverTypes][actor.MaxSolverTypes]constraint.ContactResolver
	frictionDispatch [actor.MaxSolverTypes][actor.MaxSolverTypes]constraint.ContactResolver

	seed uint64
	rng  *rand.Rand

	bodyPool          []SolverBody
	contactPool       []SolverConstraint
	frictionPool      []SolverConstraint
	orderContactPool  []int
	orderFrictionPool []int
	// bodyIDs maps every active body to its SolverBody for the current step
	bodyIDs map[*actor.RigidBody]int
	jobs    []contactJob

	legacyOrder []legacyContact

	// forEachJob calls fn for every job index, possibly concurrently
	forEachJob func(n int, fn func(i int))

	stats Stats
}

func NewSequentialImpulseConstraintSolver() *SequentialImpulseConstraintSolver {
	s := &SequentialImpulseConstraintSolver{
		mode:    DefaultSolverMode,
		bodyIDs: make(map[*actor.RigidBody]int),
		forEachJob: func(n int, fn func(i int)) {
			for i := range n {
				fn(i)
			}
		},
	}

	for i := range s.contactDispatch {
		for j := range s.contactDispatch[i] {
			s.contactDispatch[i][j] = constraint.DefaultContactResolver
			s.frictionDispatch[i][j] = constraint.DefaultFrictionResolver
		}
	}
	s.SetRandSeed(0)

	return s
}

func (s *SequentialImpulseConstraintSolver) SetSolverMode(mode SolverMode) {
	s.mode = mode
}

func (s *SequentialImpulseConstraintSolver) SolverMode() SolverMode {
	return s.mode
}

func validSolverType(t actor.SolverType) bool {
	return t >= 0 && t < actor.MaxSolverTypes
}

// SetContactSolverFunc overrides the contact resolver of the legacy path for bodies tagged typeA and typeB.
// A nil resolver restores the default.
func (s *SequentialImpulseConstraintSolver) SetContactSolverFunc(r constraint.ContactResolver, typeA, typeB actor.SolverType) {
	if !invariant.Check(validSolverType(typeA) && validSolverType(typeB), "contact solver type out of range") {
		return
	}
	if r == nil {
		r = constraint.DefaultContactResolver
	}
	s.contactDispatch[typeA][typeB] = r
}

// SetFrictionSolverFunc overrides the friction resolver of the legacy path for bodies tagged typeA and typeB.
// A nil resolver restores the default.
func (s *SequentialImpulseConstraintSolver) SetFrictionSolverFunc(r constraint.ContactResolver, typeA, typeB actor.SolverType) {
	if !invariant.Check(validSolverType(typeA) && validSolverType(typeB), "friction solver type out of range") {
		return
	}
	if r == nil {
		r = constraint.DefaultFrictionResolver
	}
	s.frictionDispatch[typeA][typeB] = r
}

// SetRandSeed restarts the shuffle stream from seed.
// The stream otherwise carries over from one SolveGroup to the next: replaying a
// simulation bit for bit needs the same seed and the same sequence of calls.
func (s *SequentialImpulseConstraintSolver) SetRandSeed(seed uint64) {
	s.seed = seed
	s.rng = rand.New(rand.NewPCG(seed, seedStream))
}

// RandSeed returns the seed the current stream started from
func (s *SequentialImpulseConstraintSolver) RandSeed() uint64 {
	return s.seed
}

// Reset restarts the shuffle stream from seed 0 and clears the statistics
func (s *SequentialImpulseConstraintSolver) Reset() {
	s.SetRandSeed(0)
	s.stats = Stats{}
}

func (s *SequentialImpulseConstraintSolver) Stats() Stats {
	return s.stats
}

// SolveGroup solves the contact points of manifolds with a non-positive distance and the joints,
// then writes the velocities back to the bodies and the converged impulses to the contact points.
// bodies is the island being solved: only bodies referenced by a manifold or a joint are touched.
// It returns the largest accumulated normal impulse.
func (s *SequentialImpulseConstraintSolver) SolveGroup(bodies []*actor.RigidBody, manifolds []*constraint.Manifold, joints []constraint.Joint, info *constraint.ContactSolverInfo, drawer DebugDrawer) float64 {
	s.stats = Stats{TotalContactPoints: s.stats.TotalContactPoints}

	if len(manifolds) == 0 && len(joints) == 0 {
		return 0
	}

	if !s.mode.Has(CacheFriendly) {
		return s.solveGroupLegacy(manifolds, joints, info, drawer)
	}

	s.setup(manifolds, joints, info, drawer)
	s.iterate(joints, info)

	return s.finish()
}

func (s *SequentialImpulseConstraintSolver) setup(manifolds []*constraint.Manifold, joints []constraint.Joint, info *constraint.ContactSolverInfo, drawer DebugDrawer) {
	for _, m := range manifolds {
		for i := range m.Points {
			cp := &m.Points[i]
			if !solvable(cp) {
				continue
			}
			if drawer != nil {
				drawer.DrawContactPoint(cp.PositionWorldOnB, cp.NormalWorldOnB, cp.Distance, cp.LifeTime)
			}

			s.jobs = append(s.jobs, contactJob{
				point:   cp,
				bodyIDA: s.solverBodyID(m.BodyA),
				bodyIDB: s.solverBodyID(m.BodyB),
			})
		}
	}

	n := len(s.jobs)
	s.contactPool = resize(s.contactPool, n)
	s.frictionPool = resize(s.frictionPool, 2*n)
	// rows only read the pre-step velocities, warm starting comes after
	s.forEachJob(n, func(k int) {
		s.fillContactRows(k, info)
	})
	s.warmStart(info)

	s.orderContactPool = identityOrder(s.orderContactPool, n)
	s.orderFrictionPool = identityOrder(s.orderFrictionPool, 2*n)

	for _, joint := range joints {
		joint.BuildJacobian()
	}

	s.stats.TotalContactPoints += n
	s.stats.ContactRows = n
	s.stats.FrictionRows = 2 * n
	s.stats.SolverBodies = len(s.bodyPool)
}

// solvable reports whether cp is touching and carries a usable normal.
// Points with a degenerate normal are skipped without touching their cached data.
func solvable(cp *constraint.ContactPoint) bool {
	if cp.Distance > 0 {
		return false
	}
	return invariant.Check(cp.NormalWorldOnB.LenSqr() > mathutil.Epsilon, "degenerate contact normal")
}

// solverBodyID returns the SolverBody of rb, created on first use.
// Inactive bodies get a fixed throwaway copy every time, they are never cached.
func (s *SequentialImpulseConstraintSolver) solverBodyID(rb *actor.RigidBody) int {
	id := len(s.bodyPool)

	if !rb.IsActive() {
		s.bodyPool = append(s.bodyPool, newSolverBody(rb, true))
		return id
	}

	if cached, ok := s.bodyIDs[rb]; ok {
		return cached
	}
	s.bodyIDs[rb] = id
	s.bodyPool = append(s.bodyPool, newSolverBody(rb, false))

	return id
}

func (s *SequentialImpulseConstraintSolver) fillContactRows(k int, info *constraint.ContactSolverInfo) {
	job := s.jobs[k]
	cp := job.point
	bodyA := &s.bodyPool[job.bodyIDA]
	bodyB := &s.bodyPool[job.bodyIDB]

	normal := cp.NormalWorldOnB
	relPos1 := cp.PositionWorldOnA.Sub(bodyA.CenterOfMassPosition)
	relPos2 := cp.PositionWorldOnB.Sub(bodyB.CenterOfMassPosition)

	vel := bodyA.velocityInLocalPoint(relPos1).Sub(bodyB.velocityInLocalPoint(relPos2))
	relVel := normal.Dot(vel)

	row := newRow(Contact1D, job.bodyIDA, job.bodyIDB, bodyA, bodyB, relPos1, relPos2, normal)
	row.Friction = cp.CombinedFriction
	row.Restitution = constraint.RestitutionCurve(relVel, cp.CombinedRestitution)
	row.Penetration = constraint.PositionalBias(cp.Distance, row.Restitution, info)
	// a contact row points at its first friction row
	row.FrictionIndex = 2 * k
	row.originalContactPoint = cp
	s.contactPool[k] = row

	tangent0, tangent1 := constraint.FrictionBasis(vel, normal)
	for i, tangent := range [2]mgl64.Vec3{tangent0, tangent1} {
		friction := newRow(Friction1D, job.bodyIDA, job.bodyIDB, bodyA, bodyB, relPos1, relPos2, tangent)
		friction.Friction = cp.CombinedFriction
		friction.FrictionIndex = k
		friction.originalContactPoint = cp
		s.frictionPool[2*k+i] = friction
	}
}

func (s *SequentialImpulseConstraintSolver) warmStart(info *constraint.ContactSolverInfo) {
	if s.mode.Has(UseWarmstarting) {
		for k := range s.contactPool {
			row := &s.contactPool[k]
			row.AppliedImpulse = row.originalContactPoint.AppliedImpulse * info.Damping
			s.applyRowImpulse(row, row.AppliedImpulse)
		}
	}

	if s.mode.Has(UseFrictionWarmstarting) {
		for i := range s.frictionPool {
			row := &s.frictionPool[i]
			lateral := row.originalContactPoint.AppliedImpulseLateral1
			if i&1 == 1 {
				lateral = row.originalContactPoint.AppliedImpulseLateral2
			}
			row.AppliedImpulse = lateral * info.Damping
			s.applyRowImpulse(row, row.AppliedImpulse)
		}
	}
}

func (s *SequentialImpulseConstraintSolver) applyRowImpulse(row *SolverConstraint, impulse float64) {
	bodyA := &s.bodyPool[row.SolverBodyIDA]
	bodyB := &s.bodyPool[row.SolverBodyIDB]

	bodyA.InternalApplyImpulse(row.ContactNormal.Mul(bodyA.InvMass), row.AngularComponentA, impulse)
	bodyB.InternalApplyImpulse(row.ContactNormal.Mul(bodyB.InvMass), row.AngularComponentB, -impulse)
}

func (s *SequentialImpulseConstraintSolver) iterate(joints []constraint.Joint, info *constraint.ContactSolverInfo) {
	for iteration := 0; iteration < info.NumIterations; iteration++ {
		residual := s.solveSingleIteration(iteration, joints, info)
		s.stats.Iterations++

		if info.ResidualThreshold > 0 && residual < info.ResidualThreshold {
			break
		}
	}
}

// solveSingleIteration runs one sweep and returns the largest impulse delta it applied
func (s *SequentialImpulseConstraintSolver) solveSingleIteration(iteration int, joints []constraint.Joint, info *constraint.ContactSolverInfo) float64 {
	if s.mode.Has(RandomizeOrder) && iteration&7 == 0 {
		shuffle(s.rng, s.orderContactPool)
		shuffle(s.rng, s.orderFrictionPool)
	}

	for _, joint := range joints {
		s.solveJoint(joint, info.TimeStep)
	}

	var residual float64
	for _, k := range s.orderContactPool {
		row := &s.contactPool[k]
		j := resolveSingleCollisionCombinedCacheFriendly(&s.bodyPool[row.SolverBodyIDA], &s.bodyPool[row.SolverBodyIDB], row)
		residual = math.Max(residual, math.Abs(j))
	}

	for _, k := range s.orderFrictionPool {
		row := &s.frictionPool[k]
		appliedNormalImpulse := s.contactPool[row.FrictionIndex].AppliedImpulse
		j := resolveSingleFrictionCacheFriendly(&s.bodyPool[row.SolverBodyIDA], &s.bodyPool[row.SolverBodyIDB], row, appliedNormalImpulse)
		residual = math.Max(residual, math.Abs(j))
	}

	return residual
}

// solveJoint runs a joint on the rigid bodies, round-tripping the pooled velocities
func (s *SequentialImpulseConstraintSolver) solveJoint(joint constraint.Joint, timeStep float64) {
	bodyA, bodyB := joint.Bodies()
	idA, okA := s.bodyIDs[bodyA]
	idB, okB := s.bodyIDs[bodyB]

	if okA {
		s.bodyPool[idA].WritebackVelocity()
	}
	if okB {
		s.bodyPool[idB].WritebackVelocity()
	}

	joint.SolveConstraint(timeStep)

	if okA {
		s.bodyPool[idA].ReadVelocity()
	}
	if okB {
		s.bodyPool[idB].ReadVelocity()
	}
}

func (s *SequentialImpulseConstraintSolver) finish() float64 {
	var maxImpulse float64
	for k := range s.contactPool {
		row := &s.contactPool[k]
		row.originalContactPoint.AppliedImpulse = row.AppliedImpulse
		maxImpulse = math.Max(maxImpulse, row.AppliedImpulse)
	}

	for i := range s.frictionPool {
		row := &s.frictionPool[i]
		if i&1 == 0 {
			row.originalContactPoint.AppliedImpulseLateral1 = row.AppliedImpulse
		} else {
			row.originalContactPoint.AppliedImpulseLateral2 = row.AppliedImpulse
		}
	}

	for i := range s.bodyPool {
		s.bodyPool[i].WritebackVelocity()
	}

	s.stats.MaxImpulse = maxImpulse

	clear(s.bodyIDs)
	s.bodyPool = truncate(s.bodyPool)
	s.contactPool = truncate(s.contactPool)
	s.frictionPool = truncate(s.frictionPool)
	s.jobs = truncate(s.jobs)

	return maxImpulse
}

func (s *SequentialImpulseConstraintSolver) solveGroupLegacy(manifolds []*constraint.Manifold, joints []constraint.Joint, info *constraint.ContactSolverInfo, drawer DebugDrawer) float64 {
	warmStart := s.mode.Has(UseWarmstarting)
	frictionWarmStart := s.mode.Has(UseFrictionWarmstarting)
	frictionSeparate := s.mode.Has(FrictionSeparate)

	var bodies int
	for _, m := range manifolds {
		for i := range m.Points {
			cp := &m.Points[i]
			if !solvable(cp) {
				continue
			}
			if drawer != nil {
				drawer.DrawContactPoint(cp.PositionWorldOnB, cp.NormalWorldOnB, cp.Distance, cp.LifeTime)
			}

			cpd := constraint.PrepareContact(m.BodyA, m.BodyB, cp, info, warmStart, frictionWarmStart)
			cpd.ContactSolver = s.contactResolver(m.BodyA, m.BodyB)
			cpd.FrictionSolver = s.frictionResolver(m.BodyA, m.BodyB)
			bodies += s.countLegacyBody(m.BodyA) + s.countLegacyBody(m.BodyB)

			s.legacyOrder = append(s.legacyOrder, legacyContact{bodyA: m.BodyA, bodyB: m.BodyB, point: cp})
		}
	}

	for _, joint := range joints {
		joint.BuildJacobian()
	}

	for iteration := 0; iteration < info.NumIterations; iteration++ {
		if s.mode.Has(RandomizeOrder) && iteration&7 == 0 {
			shuffle(s.rng, s.legacyOrder)
		}

		for _, joint := range joints {
			joint.SolveConstraint(info.TimeStep)
		}

		var residual float64
		for _, c := range s.legacyOrder {
			resolver := c.point.Persistent.ContactSolver
			if !frictionSeparate {
				resolver = constraint.CombinedContactResolver
			}
			j := resolver.Resolve(c.bodyA, c.bodyB, c.point, info)
			residual = math.Max(residual, math.Abs(j))
		}

		if frictionSeparate {
			for _, c := range s.legacyOrder {
				j := c.point.Persistent.FrictionSolver.Resolve(c.bodyA, c.bodyB, c.point, info)
				residual = math.Max(residual, math.Abs(j))
			}
		}

		s.stats.Iterations++
		if info.ResidualThreshold > 0 && residual < info.ResidualThreshold {
			break
		}
	}

	var maxImpulse float64
	for _, c := range s.legacyOrder {
		cpd := c.point.Persistent
		c.point.AppliedImpulse = cpd.AppliedImpulse
		c.point.AppliedImpulseLateral1 = cpd.AccumulatedTangentImpulse0
		c.point.AppliedImpulseLateral2 = cpd.AccumulatedTangentImpulse1
		maxImpulse = math.Max(maxImpulse, cpd.AppliedImpulse)
	}

	n := len(s.legacyOrder)
	s.stats.TotalContactPoints += n
	s.stats.ContactRows = n
	if frictionSeparate {
		s.stats.FrictionRows = 2 * n
	}
	s.stats.SolverBodies = bodies
	s.stats.MaxImpulse = maxImpulse

	clear(s.bodyIDs)
	s.legacyOrder = truncate(s.legacyOrder)

	return maxImpulse
}

// contactResolver looks up the dispatch table, falling back to the default for out of range tags
func (s *SequentialImpulseConstraintSolver) contactResolver(bodyA, bodyB *actor.RigidBody) constraint.ContactResolver {
	typeA, typeB := bodyA.ContactSolverType, bodyB.ContactSolverType
	if !invariant.Check(validSolverType(typeA) && validSolverType(typeB), "body contact solver type out of range") {
		return constraint.DefaultContactResolver
	}
	return s.contactDispatch[typeA][typeB]
}

func (s *SequentialImpulseConstraintSolver) frictionResolver(bodyA, bodyB *actor.RigidBody) constraint.ContactResolver {
	typeA, typeB := bodyA.FrictionSolverType, bodyB.FrictionSolverType
	if !invariant.Check(validSolverType(typeA) && validSolverType(typeB), "body friction solver type out of range") {
		return constraint.DefaultFrictionResolver
	}
	return s.frictionDispatch[typeA][typeB]
}

// countLegacyBody returns how many SolverBodies the pooled path would create for rb at this point:
// one per occurrence of an inactive body, one per distinct active body.
func (s *SequentialImpulseConstraintSolver) countLegacyBody(rb *actor.RigidBody) int {
	if !rb.IsActive() {
		return 1
	}
	if _, ok := s.bodyIDs[rb]; ok {
		return 0
	}
	s.bodyIDs[rb] = 0
	return 1
}

// shuffle permutes order in place, every permutation being equally likely
func shuffle[T any](rng *rand.Rand, order []T) {
	for j := range order {
		k := rng.IntN(j + 1)
		order[j], order[k] = order[k], order[j]
	}
}

// resize returns pool with length n, reusing its capacity
func resize[T any](pool []T, n int) []T {
	return slices.Grow(pool[:0], n)[:n]
}

// truncate empties pool, keeping its capacity
func truncate[T any](pool []T) []T {
	clear(pool)
	return pool[:0]
}

func identityOrder(order []int, n int) []int {
	order = resize(order, n)
	for i := range order {
		order[i] = i
	}
	return order
}
