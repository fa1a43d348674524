package roots

import (
	"fmt"

	"github.com/aalvaropc/numlab/internal/domain"
)

// BracketStep is one step of a bracketing method: the bracket in use and the
// point chosen inside it.
type BracketStep struct {
	Iteration int     `json:"iteration"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
	X         float64 `json:"x"`
	FX        float64 `json:"fx"`
	Error     float64 `json:"error"`
}

func (BracketStep) Columns() []string { return []string{"lower", "upper", "x", "f(x)"} }

func (s BracketStep) Record() domain.IterationRecord {
	return domain.IterationRecord{
		Iteration: s.Iteration,
		State:     []float64{s.Lower, s.Upper, s.X, s.FX},
		Error:     s.Error,
	}
}

// Bisection halves [a, b] until successive midpoints are closer than the
// tolerance. f(a) and f(b) must have opposite signs; a zero endpoint is
// returned as the root without iterating.
func Bisection(f Func, a, b float64, s Settings) (Result[BracketStep], error) {
	return bracket("roots.bisection", f, a, b, s, domain.ErrNoSignChange,
		func(lo, hi, _, _ float64) float64 { return (lo + hi) / 2 })
}

// FalsePosition is Bisection with the secant through the bracket ends in
// place of the midpoint.
func FalsePosition(f Func, xl, xu float64, s Settings) (Result[BracketStep], error) {
	return bracket("roots.false_position", f, xl, xu, s, domain.ErrNoRootInInterval,
		func(lo, hi, flo, fhi float64) float64 { return hi - fhi*(hi-lo)/(fhi-flo) })
}

func bracket(op string, f Func, lo, hi float64, s Settings, noRoot error, pick func(lo, hi, flo, fhi float64) float64) (Result[BracketStep], error) {
	var res Result[BracketStep]

	sv, err := begin(op, s)
	if err != nil {
		return res, err
	}
	stop := func(err error) (Result[BracketStep], error) {
		res.Stats = sv.done(len(res.Steps), lastError(res.Steps), false)
		return res, err
	}

	flo, err := sv.eval(f, lo)
	if err != nil {
		return stop(err)
	}
	fhi, err := sv.eval(f, hi)
	if err != nil {
		return stop(err)
	}

	switch {
	case flo == 0:
		res.Root = lo
		res.Stats = sv.done(0, 0, true)
		return res, nil
	case fhi == 0:
		res.Root = hi
		res.Stats = sv.done(0, 0, true)
		return res, nil
	case flo*fhi > 0:
		return stop(sv.fail(fmt.Errorf("f(%g) = %g, f(%g) = %g: %w", lo, flo, hi, fhi, noRoot)))
	}

	prev := lo
	for len(res.Steps) < s.MaxIterations {
		x := pick(lo, hi, flo, fhi)
		if err := sv.iterate(x); err != nil {
			return stop(err)
		}
		fx, err := sv.eval(f, x)
		if err != nil {
			return stop(err)
		}
		e, err := sv.stepError(x, prev, fx)
		if err != nil {
			return stop(err)
		}

		res.Steps = append(res.Steps, BracketStep{
			Iteration: len(res.Steps) + 1,
			Lower:     lo,
			Upper:     hi,
			X:         x,
			FX:        fx,
			Error:     e,
		})

		if e < s.Tolerance || fx == 0 {
			res.Root = x
			res.Stats = sv.done(len(res.Steps), e, true)
			return res, nil
		}

		if flo*fx < 0 {
			hi, fhi = x, fx
		} else {
			lo, flo = x, fx
		}
		prev = x
	}

	return stop(sv.exhausted())
}
