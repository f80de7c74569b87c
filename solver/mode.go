package solver

// SolverMode is a bitmask of solver behaviours
type SolverMode int

const (
	// RandomizeOrder shuffles the row order every 8th sweep
	RandomizeOrder SolverMode = 1 << iota
	// FrictionSeparate solves friction in its own sweep after every contact row
	FrictionSeparate
	// UseWarmstarting applies the damped impulse of the previous step before the first sweep
	UseWarmstarting
	// CacheFriendly solves pooled SolverBody and SolverConstraint copies instead of the bodies
	CacheFriendly
	// UseFrictionWarmstarting warm starts the tangent impulses too
	UseFrictionWarmstarting
)

const DefaultSolverMode = RandomizeOrder | FrictionSeparate | CacheFriendly

func (m SolverMode) Has(flag SolverMode) bool {
	return m&flag != 0
}
