// Package linsys solves A x = b with the Jacobi, Gauss-Seidel and SOR
// stationary iterations.
//
// Before iterating, a solve builds the transition matrix T and constant C of
// the method and reports the spectral radius of T. That prediction is a
// diagnostic only: the iteration runs to tolerance or MaxIterations
// regardless.
package linsys

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/aalvaropc/numlab/internal/domain"
)

// Problem is the system A x = b. A nil X0 starts from the zero vector.
type Problem struct {
	A  [][]float64
	B  []float64
	X0 []float64
}

// Settings holds the stopping rules of a solve.
type Settings struct {
	// Tolerance bounds the Euclidean norm of x_{k+1} - x_k. It must be in
	// (0, 1].
	Tolerance float64

	// MaxIterations must be in [1, 1000].
	MaxIterations int

	// Omega is the SOR relaxation factor, in (0, 2]. Other methods ignore
	// it.
	Omega float64
}

// DefaultSettings returns tolerance 1e-7, 100 iterations and ω = 1.
func DefaultSettings() Settings {
	return Settings{Tolerance: domain.DefaultTolerance, MaxIterations: domain.DefaultMaxIterations, Omega: 1}
}

// Step is one iterate.
type Step struct {
	Iteration int       `json:"iteration"`
	X         []float64 `json:"x"`
	Error     float64   `json:"error"`
}

// Stats holds statistics about a solve.
type Stats struct {
	Iterations int
	FinalError float64
	Converged  bool
	StartTime  time.Time
	Runtime    time.Duration
}

// Result holds the diagnostics and iterates of a solve. X is the last
// iterate, or X0 when no step was taken.
type Result struct {
	X              []float64
	Transition     [][]float64
	Constant       []float64
	SpectralRadius float64
	Converges      bool
	Steps          []Step
	Stats          Stats
}

// Trace converts the steps into the method-independent trace form, one column
// per unknown.
func (r Result) Trace() domain.Trace {
	cols := make([]string, len(r.X))
	for i := range cols {
		cols[i] = "x" + strconv.Itoa(i+1)
	}
	t := domain.Trace{Columns: cols, Records: make([]domain.IterationRecord, 0, len(r.Steps))}
	for _, s := range r.Steps {
		t.Records = append(t.Records, domain.IterationRecord{
			Iteration: s.Iteration,
			State:     append([]float64(nil), s.X...),
			Error:     s.Error,
		})
	}
	return t
}

// Diagnostics returns the pre-iteration analysis of the solve.
func (r Result) Diagnostics() domain.LinearDiagnostics {
	return domain.LinearDiagnostics{
		Transition:     r.Transition,
		Constant:       r.Constant,
		SpectralRadius: r.SpectralRadius,
		Converges:      r.Converges,
	}
}

// Solver runs the stationary methods over an Algebra.
type Solver struct {
	alg Algebra
}

// New returns a Solver. A nil alg selects Gonum.
func New(alg Algebra) *Solver {
	if alg == nil {
		alg = Gonum{}
	}
	return &Solver{alg: alg}
}

var std = New(nil)

// Jacobi solves p with x_{k+1} = D⁻¹(L+U) x_k + D⁻¹b.
func Jacobi(p Problem, s Settings) (Result, error) { return std.Solve(domain.MethodJacobi, p, s) }

// GaussSeidel solves p with x_{k+1} = (D-L)⁻¹U x_k + (D-L)⁻¹b.
func GaussSeidel(p Problem, s Settings) (Result, error) {
	return std.Solve(domain.MethodGaussSeidel, p, s)
}

// SOR solves p by weighted row sweeps.
func SOR(p Problem, s Settings) (Result, error) { return std.Solve(domain.MethodSOR, p, s) }

// Solve runs method m on p. The partial Result is returned with any error
// raised after setup.
func (sv *Solver) Solve(m domain.Method, p Problem, s Settings) (Result, error) {
	op := "linsys." + string(m)
	var res Result

	if m.Family() != domain.FamilyLinear {
		return res, domain.Fail(op, fmt.Errorf("method %q: %w", m, domain.ErrInvalidSettings))
	}
	if err := validate(m, p, s); err != nil {
		return res, domain.Fail(op, err)
	}

	start := time.Now()
	n := len(p.B)
	a := mat.NewDense(n, n, nil)
	for i, row := range p.A {
		a.SetRow(i, row)
	}
	x := make([]float64, n)
	if p.X0 != nil {
		copy(x, p.X0)
	}
	res.X = append([]float64(nil), x...)

	t, c, err := Decompose(a).Iteration(sv.alg, m, p.B)
	if err != nil {
		return res, domain.Fail(op, err)
	}
	rho, err := SpectralRadius(sv.alg, t)
	if err != nil {
		return res, domain.Fail(op, err)
	}
	res.Transition = rows(t)
	res.Constant = append([]float64(nil), c.RawVector().Data...)
	res.SpectralRadius = rho
	res.Converges = rho < 1

	next := stepper(m, p, s.Omega, t, c)

	finish := func(converged bool) {
		res.Stats = Stats{
			Iterations: len(res.Steps),
			Converged:  converged,
			StartTime:  start,
			Runtime:    time.Since(start),
		}
		if k := len(res.Steps); k > 0 {
			res.Stats.FinalError = res.Steps[k-1].Error
		}
	}

	for len(res.Steps) < s.MaxIterations {
		xn := next(x)
		for i, v := range xn {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				finish(false)
				return res, domain.Fail(op, fmt.Errorf("x%d = %g at iteration %d: %w", i+1, v, len(res.Steps)+1, domain.ErrNonFinite))
			}
		}
		e := floats.Distance(xn, x, 2)

		res.Steps = append(res.Steps, Step{Iteration: len(res.Steps) + 1, X: xn, Error: e})
		res.X = append(res.X[:0], xn...)
		x = xn

		if e < s.Tolerance {
			finish(true)
			return res, nil
		}
	}

	finish(false)
	return res, domain.Fail(op, fmt.Errorf("%d iterations without meeting tolerance %g: %w", s.MaxIterations, s.Tolerance, domain.ErrMaxIterations))
}

// stepper returns the update x_k -> x_{k+1}. It never modifies its argument.
func stepper(m domain.Method, p Problem, omega float64, t *mat.Dense, c *mat.VecDense) func([]float64) []float64 {
	n := len(p.B)
	if m == domain.MethodSOR {
		return func(old []float64) []float64 {
			x := make([]float64, n)
			for i := 0; i < n; i++ {
				row := p.A[i]
				s := p.B[i]
				for j := 0; j < i; j++ {
					s -= row[j] * x[j]
				}
				for j := i + 1; j < n; j++ {
					s -= row[j] * old[j]
				}
				x[i] = omega*s/row[i] + (1-omega)*old[i]
			}
			return x
		}
	}
	return func(old []float64) []float64 {
		out := mat.NewVecDense(n, nil)
		out.MulVec(t, mat.NewVecDense(n, append([]float64(nil), old...)))
		out.AddVec(out, c)
		return out.RawVector().Data
	}
}

func validate(m domain.Method, p Problem, s Settings) error {
	if !(s.Tolerance > 0 && s.Tolerance <= 1) {
		return fmt.Errorf("tolerance %g outside (0, 1]: %w", s.Tolerance, domain.ErrInvalidSettings)
	}
	if s.MaxIterations < 1 || s.MaxIterations > domain.MaxMaxIterations {
		return fmt.Errorf("max iterations %d outside [1, %d]: %w", s.MaxIterations, domain.MaxMaxIterations, domain.ErrInvalidSettings)
	}
	if m == domain.MethodSOR && !(s.Omega > 0 && s.Omega <= 2) {
		return fmt.Errorf("omega %g outside (0, 2]: %w", s.Omega, domain.ErrInvalidSettings)
	}
	return CheckSystem(p)
}

// CheckSystem verifies shapes, finiteness and the diagonal of p without
// solving it.
func CheckSystem(p Problem) error {
	n := len(p.A)
	if n == 0 {
		return fmt.Errorf("empty matrix: %w", domain.ErrInvalidSystem)
	}
	for i, row := range p.A {
		if len(row) != n {
			return fmt.Errorf("row %d has %d entries, want %d: %w", i+1, len(row), n, domain.ErrInvalidSystem)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("a[%d][%d] = %g: %w", i+1, j+1, v, domain.ErrInvalidSystem)
			}
		}
	}
	if len(p.B) != n {
		return fmt.Errorf("b has %d entries, want %d: %w", len(p.B), n, domain.ErrInvalidSystem)
	}
	if p.X0 != nil && len(p.X0) != n {
		return fmt.Errorf("x0 has %d entries, want %d: %w", len(p.X0), n, domain.ErrInvalidSystem)
	}
	for _, v := range append(append([]float64(nil), p.B...), p.X0...) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite vector entry %g: %w", v, domain.ErrInvalidSystem)
		}
	}
	for i := 0; i < n; i++ {
		if p.A[i][i] == 0 {
			return fmt.Errorf("a[%d][%d] = 0: %w", i+1, i+1, domain.ErrZeroPivot)
		}
	}
	return nil
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
