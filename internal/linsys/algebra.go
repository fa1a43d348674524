package linsys

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/aalvaropc/numlab/internal/domain"
)

// Algebra is the dense linear algebra the solvers depend on.
type Algebra interface {
	// Inverse returns a⁻¹ or an error when a is singular.
	Inverse(a mat.Matrix) (*mat.Dense, error)
	// Eigenvalues returns every eigenvalue of the square matrix a.
	Eigenvalues(a mat.Matrix) ([]complex128, error)
}

// Gonum implements Algebra with gonum/mat.
type Gonum struct{}

func (Gonum) Inverse(a mat.Matrix) (*mat.Dense, error) {
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		// A finite condition number only warns about accuracy.
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("inverse: %v: %w", err, domain.ErrInvalidSystem)
		}
	}
	return &inv, nil
}

func (Gonum) Eigenvalues(a mat.Matrix) ([]complex128, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil, fmt.Errorf("eigen decomposition did not converge: %w", domain.ErrExecution)
	}
	return eig.Values(nil), nil
}

// SpectralRadius returns max |λ| over the eigenvalues of t.
func SpectralRadius(alg Algebra, t mat.Matrix) (float64, error) {
	vals, err := alg.Eigenvalues(t)
	if err != nil {
		return 0, err
	}
	rho := 0.0
	for _, v := range vals {
		if m := cmplx.Abs(v); m > rho {
			rho = m
		}
	}
	return rho, nil
}

// Decomposition splits A into its diagonal and the negated strictly lower and
// upper parts, so that A = D - L - U.
type Decomposition struct {
	D *mat.Dense
	L *mat.Dense
	U *mat.Dense
}

// Decompose splits the square matrix a.
func Decompose(a mat.Matrix) Decomposition {
	n, _ := a.Dims()
	d := mat.NewDense(n, n, nil)
	l := mat.NewDense(n, n, nil)
	u := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			switch {
			case i == j:
				d.Set(i, j, v)
			case i > j:
				l.Set(i, j, -v)
			default:
				u.Set(i, j, -v)
			}
		}
	}
	return Decomposition{D: d, L: l, U: u}
}

// Iteration returns T and C of x = T x + C for the method. SOR shares the
// Gauss-Seidel pair.
func (dc Decomposition) Iteration(alg Algebra, m domain.Method, b []float64) (*mat.Dense, *mat.VecDense, error) {
	n, _ := dc.D.Dims()

	var m1, rhs mat.Dense
	switch m {
	case domain.MethodJacobi:
		// T = D⁻¹(L+U)
		m1.CloneFrom(dc.D)
		rhs.Add(dc.L, dc.U)
	case domain.MethodGaussSeidel, domain.MethodSOR:
		// T = (D-L)⁻¹U
		m1.Sub(dc.D, dc.L)
		rhs.CloneFrom(dc.U)
	default:
		return nil, nil, fmt.Errorf("method %q is not a linear method: %w", m, domain.ErrInvalidSettings)
	}

	inv, err := alg.Inverse(&m1)
	if err != nil {
		return nil, nil, err
	}

	t := mat.NewDense(n, n, nil)
	t.Mul(inv, &rhs)
	c := mat.NewVecDense(n, nil)
	c.MulVec(inv, mat.NewVecDense(n, append([]float64(nil), b...)))
	return t, c, nil
}
