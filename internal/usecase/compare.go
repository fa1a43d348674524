package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/ports"
)

type Compare struct {
	solver ports.Solver
	now    func() time.Time
}

func NewCompare(solver ports.Solver) *Compare {
	return &Compare{solver: solver, now: time.Now}
}

// Execute solves p once per method and ranks the outcomes. No methods means
// every method of p's family.
//
// Root parameters are shared across methods: a bracket method without a and
// b uses x0 and x1 as its interval, and an open method without x0 (or x1)
// starts from a (or b).
func (uc *Compare) Execute(ctx context.Context, p domain.ProblemSpec, methods []domain.Method, s domain.SolveSettings) (domain.Comparison, error) {
	family := p.Method.Family()
	if len(methods) == 0 {
		if family == domain.FamilyLinear {
			methods = domain.LinearMethods()
		} else {
			methods = domain.RootMethods()
		}
	}

	cmp := domain.Comparison{Problem: p.Name, Settings: s}
	for _, m := range methods {
		if m.Family() != family {
			return cmp, &domain.OpError{
				Op:   "usecase.compare",
				Kind: domain.KindInvalidConfig,
				Path: string(m),
				Err:  fmt.Errorf("method %q cannot solve a %s problem: %w", m, family, domain.ErrInvalidConfig),
			}
		}
	}

	for _, m := range methods {
		if err := ctx.Err(); err != nil {
			return cmp, err
		}

		start := uc.now()
		pr, err := uc.solver.Solve(ctx, adapt(p, m), s)
		elapsed := uc.now().Sub(start)
		if err != nil {
			pr = failed(adapt(p, m), s, err)
		}

		cmp.Entries = append(cmp.Entries, domain.ComparisonEntry{
			Method:     m,
			Converged:  pr.Converged,
			Root:       pr.Root,
			Solution:   pr.Solution,
			Iterations: pr.Iterations,
			FinalError: pr.FinalError,
			RuntimeUS:  elapsed.Microseconds(),
			Error:      pr.Error,
		})
	}

	cmp.Rank()
	return cmp, nil
}

// adapt returns a copy of p set up for method m.
func adapt(p domain.ProblemSpec, m domain.Method) domain.ProblemSpec {
	out := p
	out.Method = m
	out.Name = p.Name + "/" + string(m)
	if p.Root == nil {
		return out
	}

	r := *p.Root
	switch m {
	case domain.MethodBisection, domain.MethodFalsePosition:
		if r.A == nil {
			r.A = r.X0
		}
		if r.B == nil {
			r.B = r.X1
		}
	case domain.MethodSecant, domain.MethodFixedPoint, domain.MethodNewton:
		if r.X0 == nil {
			r.X0 = r.A
		}
		if r.X1 == nil {
			r.X1 = r.B
		}
	}
	if m != domain.MethodNewton {
		r.MultipleRoots = false
	}
	out.Root = &r
	return out
}
