package roots

import (
	"fmt"

	"github.com/aalvaropc/numlab/internal/domain"
)

// SecantStep is one secant iterate.
type SecantStep struct {
	Iteration int     `json:"iteration"`
	X         float64 `json:"x"`
	FX        float64 `json:"fx"`
	Error     float64 `json:"error"`
}

func (SecantStep) Columns() []string { return []string{"x", "f(x)"} }

func (s SecantStep) Record() domain.IterationRecord {
	return domain.IterationRecord{Iteration: s.Iteration, State: []float64{s.X, s.FX}, Error: s.Error}
}

// Secant iterates the secant line through the two most recent points,
// starting from x0 and x1. Equal function values at those points stop the
// solve with ErrFlatStep.
func Secant(f Func, x0, x1 float64, s Settings) (Result[SecantStep], error) {
	var res Result[SecantStep]

	sv, err := begin("roots.secant", s)
	if err != nil {
		return res, err
	}
	stop := func(err error) (Result[SecantStep], error) {
		res.Stats = sv.done(len(res.Steps), lastError(res.Steps), false)
		return res, err
	}

	f0, err := sv.eval(f, x0)
	if err != nil {
		return stop(err)
	}
	f1, err := sv.eval(f, x1)
	if err != nil {
		return stop(err)
	}
	switch {
	case f0 == 0:
		res.Root = x0
		res.Stats = sv.done(0, 0, true)
		return res, nil
	case f1 == 0:
		res.Root = x1
		res.Stats = sv.done(0, 0, true)
		return res, nil
	}

	for len(res.Steps) < s.MaxIterations {
		if f1 == f0 {
			return stop(sv.fail(fmt.Errorf("f(%g) = f(%g) = %g: %w", x0, x1, f1, domain.ErrFlatStep)))
		}
		x2 := x1 - f1*(x1-x0)/(f1-f0)
		if err := sv.iterate(x2); err != nil {
			return stop(err)
		}
		f2, err := sv.eval(f, x2)
		if err != nil {
			return stop(err)
		}
		e, err := sv.stepError(x2, x1, f2)
		if err != nil {
			return stop(err)
		}

		res.Steps = append(res.Steps, SecantStep{Iteration: len(res.Steps) + 1, X: x2, FX: f2, Error: e})
		if e < s.Tolerance || f2 == 0 {
			res.Root = x2
			res.Stats = sv.done(len(res.Steps), e, true)
			return res, nil
		}

		x0, f0 = x1, f1
		x1, f1 = x2, f2
	}

	return stop(sv.exhausted())
}

// FixedPointStep is one fixed-point iterate with its images under g and f.
type FixedPointStep struct {
	Iteration int     `json:"iteration"`
	X         float64 `json:"x"`
	GX        float64 `json:"gx"`
	FX        float64 `json:"fx"`
	Error     float64 `json:"error"`
}

func (FixedPointStep) Columns() []string { return []string{"x", "g(x)", "f(x)"} }

func (s FixedPointStep) Record() domain.IterationRecord {
	return domain.IterationRecord{Iteration: s.Iteration, State: []float64{s.X, s.GX, s.FX}, Error: s.Error}
}

// FixedPoint iterates x = g(x) from x0 and reports f at every iterate. It does
// not check that g contracts; a divergent g ends in ErrMaxIterations or, on
// overflow, ErrNonFinite.
func FixedPoint(f, g Func, x0 float64, s Settings) (Result[FixedPointStep], error) {
	var res Result[FixedPointStep]

	sv, err := begin("roots.fixed_point", s)
	if err != nil {
		return res, err
	}
	stop := func(err error) (Result[FixedPointStep], error) {
		res.Stats = sv.done(len(res.Steps), lastError(res.Steps), false)
		return res, err
	}

	x := x0
	gx, err := sv.eval(g, x)
	if err != nil {
		return stop(err)
	}

	for len(res.Steps) < s.MaxIterations {
		next := gx
		gnext, err := sv.eval(g, next)
		if err != nil {
			return stop(err)
		}
		fnext, err := sv.eval(f, next)
		if err != nil {
			return stop(err)
		}
		e, err := sv.stepError(next, x, fnext)
		if err != nil {
			return stop(err)
		}

		res.Steps = append(res.Steps, FixedPointStep{
			Iteration: len(res.Steps) + 1,
			X:         next,
			GX:        gnext,
			FX:        fnext,
			Error:     e,
		})
		if e < s.Tolerance || fnext == 0 {
			res.Root = next
			res.Stats = sv.done(len(res.Steps), e, true)
			return res, nil
		}

		x, gx = next, gnext
	}

	return stop(sv.exhausted())
}
