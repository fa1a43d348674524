// Package localrunner solves problems in-process with the roots and linsys
// engines.
package localrunner

import (
	"context"
	"fmt"
	"time"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/expr"
	"github.com/aalvaropc/numlab/internal/linsys"
	"github.com/aalvaropc/numlab/internal/ports"
	"github.com/aalvaropc/numlab/internal/roots"
)

// DefaultOmega is used for SOR when the problem sets none.
const DefaultOmega = 1.0

type Runner struct {
	linear *linsys.Solver
}

type Option func(*Runner)

// WithAlgebra replaces the linear algebra behind the linear engine.
func WithAlgebra(alg linsys.Algebra) Option {
	return func(r *Runner) { r.linear = linsys.New(alg) }
}

func New(opts ...Option) *Runner {
	r := &Runner{linear: linsys.New(nil)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	_ ports.Solver         = (*Runner)(nil)
	_ ports.ProblemChecker = (*Runner)(nil)
)

// Solve runs p to completion on a separate goroutine. When ctx ends first the
// result carries a timeout or canceled error and the engine is left to finish
// on its own; every engine is bounded by MaxIterations.
func (r *Runner) Solve(ctx context.Context, p domain.ProblemSpec, s domain.SolveSettings) (domain.ProblemResult, error) {
	result := domain.ProblemResult{
		Name:     p.Name,
		Method:   p.Method,
		Settings: s,
		Trace:    domain.Trace{Records: []domain.IterationRecord{}},
	}
	if err := ctx.Err(); err != nil {
		result.Error = domain.NewRunError(err)
		return result, nil
	}

	done := make(chan domain.ProblemResult, 1)
	start := time.Now()
	go func() {
		out := result
		err := r.solve(&out, p, s)
		out.LatencyMS = time.Since(start).Milliseconds()
		out.Error = domain.NewRunError(err)
		done <- out
	}()

	select {
	case out := <-done:
		return out, nil
	case <-ctx.Done():
		result.LatencyMS = time.Since(start).Milliseconds()
		result.Error = domain.NewRunError(ctx.Err())
		return result, nil
	}
}

// Check compiles every expression of p, including the derivatives Newton
// needs, and validates linear systems.
func (r *Runner) Check(p domain.ProblemSpec) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Method.Family() == domain.FamilyLinear {
		if err := linsys.CheckSystem(toLinear(p.Linear)); err != nil {
			return domain.Fail("localrunner.check", err)
		}
		if p.Method == domain.MethodSOR {
			if w := omega(p.Linear); !(w > 0 && w <= 2) {
				return domain.Fail("localrunner.check", fmt.Errorf("omega %g outside (0, 2]: %w", w, domain.ErrInvalidSettings))
			}
		}
		return nil
	}
	_, err := compileRoot(p)
	return err
}

func (r *Runner) solve(out *domain.ProblemResult, p domain.ProblemSpec, s domain.SolveSettings) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Method.Family() == domain.FamilyLinear {
		return r.solveLinear(out, p, s)
	}

	fs, err := compileRoot(p)
	if err != nil {
		return err
	}
	rp := p.Root
	rs := roots.FromDomain(s)

	switch p.Method {
	case domain.MethodBisection:
		res, err := roots.Bisection(fs.f.At, *rp.A, *rp.B, rs)
		return fill(out, res, err)
	case domain.MethodFalsePosition:
		res, err := roots.FalsePosition(fs.f.At, *rp.A, *rp.B, rs)
		return fill(out, res, err)
	case domain.MethodSecant:
		res, err := roots.Secant(fs.f.At, *rp.X0, *rp.X1, rs)
		return fill(out, res, err)
	case domain.MethodFixedPoint:
		res, err := roots.FixedPoint(fs.f.At, fs.g.At, *rp.X0, rs)
		return fill(out, res, err)
	case domain.MethodNewton:
		funcs := roots.Funcs{F: fs.f.At, DF: fs.df.At}
		if fs.d2f != nil {
			funcs.D2F = fs.d2f.At
		}
		res, err := roots.Newton(funcs, *rp.X0, rp.MultipleRoots, rs)
		return fill(out, res, err)
	}
	return domain.Fail("localrunner.solve", fmt.Errorf("method %q: %w", p.Method, domain.ErrInvalidSettings))
}

func (r *Runner) solveLinear(out *domain.ProblemResult, p domain.ProblemSpec, s domain.SolveSettings) error {
	ls := linsys.Settings{
		Tolerance:     s.Tolerance,
		MaxIterations: s.MaxIterations,
		Omega:         omega(p.Linear),
	}
	res, err := r.linear.Solve(p.Method, toLinear(p.Linear), ls)

	out.Converged = res.Stats.Converged
	out.Iterations = res.Stats.Iterations
	out.FinalError = res.Stats.FinalError
	out.Trace = res.Trace()
	if res.X != nil {
		out.Solution = res.X
	}
	if res.Transition != nil {
		d := res.Diagnostics()
		out.Linear = &d
	}
	return err
}

// fill copies a root-finding result into out.
func fill[S roots.Step](out *domain.ProblemResult, res roots.Result[S], err error) error {
	out.Converged = res.Stats.Converged
	out.Iterations = res.Stats.Iterations
	out.Evaluations = res.Stats.Evaluations
	out.FinalError = res.Stats.FinalError
	out.Trace = res.Trace()
	if res.Stats.Converged {
		root := res.Root
		out.Root = &root
	}
	return err
}

type compiled struct {
	f, g, df, d2f *expr.Function
}

func compileRoot(p domain.ProblemSpec) (compiled, error) {
	var c compiled
	var err error

	if c.f, err = compileField("f", p.Root.F); err != nil {
		return c, err
	}
	if p.Method == domain.MethodFixedPoint {
		if c.g, err = compileField("g", p.Root.G); err != nil {
			return c, err
		}
	}
	if p.Method == domain.MethodNewton {
		if p.Root.MultipleRoots {
			c.df, c.d2f, err = c.f.Derivatives()
		} else {
			c.df, err = c.f.Derivative()
		}
		if err != nil {
			return c, &domain.OpError{Op: "localrunner.derivative", Kind: domain.KindOf(err), Path: "f", Err: err}
		}
	}
	return c, nil
}

func compileField(field, text string) (*expr.Function, error) {
	fn, err := expr.Compile(text)
	if err != nil {
		return nil, &domain.OpError{Op: "localrunner.compile", Kind: domain.KindOf(err), Path: field, Err: err}
	}
	return fn, nil
}

func toLinear(lp *domain.LinearParams) linsys.Problem {
	if lp == nil {
		return linsys.Problem{}
	}
	return linsys.Problem{A: lp.A, B: lp.B, X0: lp.X0}
}

func omega(lp *domain.LinearParams) float64 {
	if lp == nil || lp.Omega == nil {
		return DefaultOmega
	}
	return *lp.Omega
}
