package constraint

import "fmt"

// ContactSolverInfo holds the global solver parameters, read-only during a step
type ContactSolverInfo struct {
	TimeStep float64
	// NumIterations is the number of Gauss-Seidel sweeps
	NumIterations int
	// Erp is the fraction of the penetration corrected per step
	Erp float64
	// Sor is the successive over-relaxation factor, carried for configuration
	// compatibility but not used by the resolvers
	Sor float64
	Tau float64
	// Damping scales the warm-start impulses
	Damping           float64
	Friction          float64
	Restitution       float64
	MaxErrorReduction float64

	// ResidualThreshold stops iterating once no row changes by more than this
	// impulse during a whole sweep. 0 always runs NumIterations sweeps.
	ResidualThreshold float64
}

func DefaultContactSolverInfo() ContactSolverInfo {
	return ContactSolverInfo{
		TimeStep:          1.0 / 60.0,
		NumIterations:     10,
		Erp:               0.4,
		Sor:               1.3,
		Tau:               0.6,
		Damping:           1.0,
		Friction:          0.3,
		Restitution:       0.0,
		MaxErrorReduction: 20.0,
	}
}

// Validate reports parameters the solver cannot step with
func (info ContactSolverInfo) Validate() error {
	if info.TimeStep <= 0 {
		return fmt.Errorf("invalid time step: %v (expected > 0)", info.TimeStep)
	}
	if info.NumIterations < 0 {
		return fmt.Errorf("invalid iteration count: %d (expected >= 0)", info.NumIterations)
	}
	if info.Erp < 0 || info.Erp > 1 {
		return fmt.Errorf("invalid erp: %v (expected in [0, 1])", info.Erp)
	}
	if info.Damping < 0 {
		return fmt.Errorf("invalid warm-start damping: %v (expected >= 0)", info.Damping)
	}
	if info.ResidualThreshold < 0 {
		return fmt.Errorf("invalid residual threshold: %v (expected >= 0)", info.ResidualThreshold)
	}
	return nil
}
