package roots

import (
	"fmt"

	"github.com/aalvaropc/numlab/internal/domain"
)

// Funcs is a function with its first two derivatives. D2F is only needed in
// multiple-roots mode.
type Funcs struct {
	F   Func
	DF  Func
	D2F Func
}

// NewtonStep is one Newton iterate with the function and slope it used.
type NewtonStep struct {
	Iteration int     `json:"iteration"`
	X         float64 `json:"x"`
	FX        float64 `json:"fx"`
	DFX       float64 `json:"dfx"`
	Error     float64 `json:"error"`
}

func (NewtonStep) Columns() []string { return []string{"x", "f(x)", "f'(x)"} }

func (s NewtonStep) Record() domain.IterationRecord {
	return domain.IterationRecord{Iteration: s.Iteration, State: []float64{s.X, s.FX, s.DFX}, Error: s.Error}
}

// Newton runs x = x - f(x)/f'(x) from x0.
//
// With multiple set, the iteration is applied to u = f/f' instead, whose
// roots are simple wherever f has a repeated root. Its slope is
// u' = (f'^2 - f*D2F) / f'^2. The steps then record u and u', and
// ErrZeroDerivative refers to u' rather than f'. A point where f' vanishes
// but f does not makes u infinite and is reported as ErrNonFinite.
//
// An iterate with f(x) = 0 converges; its step records the absolute distance
// to the previous iterate whatever the configured metric.
func Newton(fs Funcs, x0 float64, multiple bool, s Settings) (Result[NewtonStep], error) {
	var res Result[NewtonStep]

	sv, err := begin("roots.newton", s)
	if err != nil {
		return res, err
	}
	stop := func(err error) (Result[NewtonStep], error) {
		res.Stats = sv.done(len(res.Steps), lastError(res.Steps), false)
		return res, err
	}

	f, df := fs.F, fs.DF
	if multiple {
		if fs.D2F == nil {
			return stop(sv.fail(fmt.Errorf("multiple roots need a second derivative: %w", domain.ErrInvalidSettings)))
		}
		f, df = deflate(fs)
	}

	point := func(x float64) (float64, float64, error) {
		fx, err := sv.eval(f, x)
		if err != nil {
			return 0, 0, err
		}
		dfx, err := sv.eval(df, x)
		if err != nil {
			return 0, 0, err
		}
		return fx, dfx, nil
	}

	x := x0
	fx, dfx, err := point(x)
	if err != nil {
		return stop(err)
	}
	if fx == 0 {
		res.Root = x
		res.Stats = sv.done(0, 0, true)
		return res, nil
	}

	for len(res.Steps) < s.MaxIterations {
		if dfx == 0 {
			return stop(sv.fail(fmt.Errorf("f'(%g) = 0: %w", x, domain.ErrZeroDerivative)))
		}
		next := x - fx/dfx
		if err := sv.iterate(next); err != nil {
			return stop(err)
		}
		fnext, dfnext, err := point(next)
		if err != nil {
			return stop(err)
		}
		e, err := sv.stepError(next, x, fnext)
		if err != nil {
			return stop(err)
		}

		res.Steps = append(res.Steps, NewtonStep{
			Iteration: len(res.Steps) + 1,
			X:         next,
			FX:        fnext,
			DFX:       dfnext,
			Error:     e,
		})
		if e < s.Tolerance || fnext == 0 {
			res.Root = next
			res.Stats = sv.done(len(res.Steps), e, true)
			return res, nil
		}

		x, fx, dfx = next, fnext, dfnext
	}

	return stop(sv.exhausted())
}

// deflate returns u = f/f' and u'. At an exact root u is 0 even when f'
// vanishes there too, and u' is 0 wherever f' is.
func deflate(fs Funcs) (Func, Func) {
	u := func(x float64) float64 {
		fx := fs.F(x)
		if fx == 0 {
			return 0
		}
		return fx / fs.DF(x)
	}
	du := func(x float64) float64 {
		d := fs.DF(x)
		if d == 0 {
			return 0
		}
		return (d*d - fs.F(x)*fs.D2F(x)) / (d * d)
	}
	return u, du
}
