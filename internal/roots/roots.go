// Package roots finds roots of univariate functions with bracketing and open
// iterative methods.
//
// Every method is bounded by Settings.MaxIterations and measures progress with
// Settings.ErrorType. On failure the partial Result is returned alongside the
// error so callers can inspect the steps taken so far.
package roots

import (
	"fmt"
	"math"
	"time"

	"github.com/aalvaropc/numlab/internal/domain"
)

// Func is a real function of one variable.
type Func func(float64) float64

// Settings holds the stopping rules shared by all methods.
type Settings struct {
	// Tolerance is the error threshold. It must be in (0, 1].
	Tolerance float64

	// MaxIterations caps the number of recorded steps. It must be in
	// [1, 1000].
	MaxIterations int

	// ErrorType selects absolute or relative distance between successive
	// iterates. Empty means absolute.
	ErrorType domain.ErrorType
}

// DefaultSettings returns tolerance 1e-7, 100 iterations and absolute error.
func DefaultSettings() Settings {
	return Settings{
		Tolerance:     domain.DefaultTolerance,
		MaxIterations: domain.DefaultMaxIterations,
		ErrorType:     domain.ErrorAbsolute,
	}
}

// FromDomain converts resolved solve settings.
func FromDomain(s domain.SolveSettings) Settings {
	return Settings{Tolerance: s.Tolerance, MaxIterations: s.MaxIterations, ErrorType: s.ErrorType}
}

func (s Settings) validate() error {
	if !(s.Tolerance > 0 && s.Tolerance <= 1) {
		return fmt.Errorf("tolerance %g outside (0, 1]: %w", s.Tolerance, domain.ErrInvalidSettings)
	}
	if s.MaxIterations < 1 || s.MaxIterations > domain.MaxMaxIterations {
		return fmt.Errorf("max iterations %d outside [1, %d]: %w", s.MaxIterations, domain.MaxMaxIterations, domain.ErrInvalidSettings)
	}
	switch s.ErrorType {
	case "", domain.ErrorAbsolute, domain.ErrorRelative:
		return nil
	}
	return fmt.Errorf("error type %q: %w", string(s.ErrorType), domain.ErrInvalidSettings)
}

// Stats holds statistics about a solve.
type Stats struct {
	// Iterations is the number of recorded steps.
	Iterations int
	// Evaluations counts calls into the user functions.
	Evaluations int
	// FinalError is the error of the last step, or 0 when no step was taken.
	FinalError float64
	Converged  bool
	StartTime  time.Time
	Runtime    time.Duration
}

// Step is one recorded iteration of a method.
type Step interface {
	Columns() []string
	Record() domain.IterationRecord
}

// Result holds the outcome of a solve. Root is only meaningful when
// Stats.Converged is true.
type Result[S Step] struct {
	Root  float64
	Steps []S
	Stats Stats
}

// Trace converts the steps into the method-independent trace form.
func (r Result[S]) Trace() domain.Trace {
	var zero S
	t := domain.Trace{
		Columns: zero.Columns(),
		Records: make([]domain.IterationRecord, 0, len(r.Steps)),
	}
	for _, s := range r.Steps {
		t.Records = append(t.Records, s.Record())
	}
	return t
}

// solve carries the bookkeeping common to every method.
type solve struct {
	op    string
	s     Settings
	stats Stats
}

func begin(op string, s Settings) (*solve, error) {
	if err := s.validate(); err != nil {
		return nil, domain.Fail(op, err)
	}
	return &solve{op: op, s: s, stats: Stats{StartTime: time.Now()}}, nil
}

// eval calls f and rejects NaN and infinities.
func (sv *solve) eval(f Func, x float64) (float64, error) {
	sv.stats.Evaluations++
	v := f(x)
	if !finite(v) {
		return v, sv.fail(fmt.Errorf("f(%g) = %g: %w", x, v, domain.ErrNonFinite))
	}
	return v, nil
}

func (sv *solve) iterate(x float64) error {
	if !finite(x) {
		return sv.fail(fmt.Errorf("iterate %g: %w", x, domain.ErrNonFinite))
	}
	return nil
}

// stepError measures next against prev with the configured metric. When next
// is an exact root (fnext == 0) the absolute distance is recorded instead, so a
// root at 0 still converges under the relative metric.
func (sv *solve) stepError(next, prev, fnext float64) (float64, error) {
	if fnext == 0 {
		return domain.ErrorAbsolute.Distance(next, prev)
	}
	return sv.distance(next, prev)
}

func (sv *solve) distance(next, prev float64) (float64, error) {
	d, err := sv.s.ErrorType.Distance(next, prev)
	if err != nil {
		return 0, sv.fail(err)
	}
	return d, nil
}

func (sv *solve) fail(err error) error {
	return domain.Fail(sv.op, err)
}

func (sv *solve) done(iterations int, lastErr float64, converged bool) Stats {
	sv.stats.Iterations = iterations
	sv.stats.FinalError = lastErr
	sv.stats.Converged = converged
	sv.stats.Runtime = time.Since(sv.stats.StartTime)
	return sv.stats
}

func (sv *solve) exhausted() error {
	return sv.fail(fmt.Errorf("%d iterations without meeting tolerance %g: %w", sv.s.MaxIterations, sv.s.Tolerance, domain.ErrMaxIterations))
}

func lastError[S Step](steps []S) float64 {
	if len(steps) == 0 {
		return 0
	}
	return steps[len(steps)-1].Record().Error
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
