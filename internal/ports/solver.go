package ports

import (
	"context"

	"github.com/aalvaropc/numlab/internal/domain"
)

// Solver solves a single problem with fully resolved settings.
//
// Implementations report solver failures inside the returned result
// (ProblemResult.Error) and reserve the error return for failures that
// prevent producing a result at all.
type Solver interface {
	Solve(ctx context.Context, p domain.ProblemSpec, s domain.SolveSettings) (domain.ProblemResult, error)
}
