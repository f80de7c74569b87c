package solver

import "github.com/akmonengine/impulse/internal/pipeline"

// ParallelConstraintSolver builds the rows of the pooled path on several goroutines.
// Each job fills its own row slots, so the result is identical to the sequential solver.
type ParallelConstraintSolver struct {
	*SequentialImpulseConstraintSolver

	workers int
}

func NewParallelConstraintSolver(workers int) *ParallelConstraintSolver {
	s := &ParallelConstraintSolver{
		SequentialImpulseConstraintSolver: NewSequentialImpulseConstraintSolver(),
		workers:                           max(1, workers),
	}
	s.forEachJob = func(n int, fn func(i int)) {
		pipeline.TaskIndexed(s.workers, n, fn)
	}

	return s
}

func (s *ParallelConstraintSolver) Workers() int {
	return s.workers
}
