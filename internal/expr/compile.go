package expr

import (
	"errors"

	"github.com/aalvaropc/numlab/internal/domain"
)

// Function is a validated univariate function of x.
type Function struct {
	source string
	root   *Node
	eval   func(float64) float64
}

// Compile validates text and turns it into a callable function.
//
// Rejections are *domain.OpError values of kind input_rejected wrapping one of
// ErrSyntaxRejected, ErrNotAFunction, ErrWrongArity, ErrWrongSymbol or
// ErrDisallowedConstruct. Compile keeps no state between calls.
func Compile(text string) (*Function, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}

	root, err := Parse(text)
	if err != nil {
		if errors.Is(err, domain.ErrSyntaxRejected) {
			return nil, &domain.OpError{Op: "expr.compile", Kind: domain.KindInputRejected, Err: err}
		}
		return nil, err
	}

	if err := checkFunction(root); err != nil {
		return nil, err
	}

	return &Function{source: text, root: root, eval: closure(root)}, nil
}

// At evaluates the function. Domain errors surface as NaN or ±Inf.
func (f *Function) At(x float64) float64 { return f.eval(x) }

// Source returns the text the function was compiled from.
func (f *Function) Source() string { return f.source }

// Expr returns the validated tree.
func (f *Function) Expr() *Node { return f.root }

// String renders the function in normalised notation.
func (f *Function) String() string { return f.root.String() }

// Derivative returns f' as a new Function. The derivative may be constant, so
// only the allow-list is re-checked, not the arity.
func (f *Function) Derivative() (*Function, error) {
	d, err := Diff(f.root, Variable)
	if err != nil {
		return nil, err
	}
	if err := checkAllowed(d); err != nil {
		return nil, err
	}
	return &Function{source: d.String(), root: d, eval: closure(d)}, nil
}

// Derivatives returns the first and second derivatives.
func (f *Function) Derivatives() (*Function, *Function, error) {
	d1, err := f.Derivative()
	if err != nil {
		return nil, nil, err
	}
	d2, err := d1.Derivative()
	if err != nil {
		return nil, nil, err
	}
	return d1, d2, nil
}
