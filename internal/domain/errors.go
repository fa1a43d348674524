package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid config")
	ErrExecution     = errors.New("execution error")
)

// Expression rejections.
var (
	ErrSyntaxRejected      = errors.New("expression syntax rejected")
	ErrNotAFunction        = errors.New("expression is not a function")
	ErrWrongArity          = errors.New("expression must have exactly one variable")
	ErrWrongSymbol         = errors.New("expression variable must be x")
	ErrDisallowedConstruct = errors.New("expression uses a disallowed construct")
)

// Solver failures.
var (
	ErrNoSignChange     = errors.New("function has no sign change on the interval")
	ErrNoRootInInterval = errors.New("interval does not bracket a root")
	ErrZeroPivot        = errors.New("zero on the diagonal")
	ErrZeroDerivative   = errors.New("derivative vanished")
	ErrFlatStep         = errors.New("secant step is flat")
	ErrZeroReference    = errors.New("relative error with zero reference")
	ErrNonFinite        = errors.New("non-finite value")
	ErrMaxIterations    = errors.New("maximum iterations reached")
	ErrInvalidSettings  = errors.New("invalid solver settings")
	ErrInvalidSystem    = errors.New("invalid linear system")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindInvalidConfig ErrorKind = "invalid_config"
	KindExecution     ErrorKind = "execution"

	KindInputRejected ErrorKind = "input_rejected"
	KindPrecondition  ErrorKind = "precondition"
	KindDegenerate    ErrorKind = "numeric_degeneracy"
	KindExhausted     ErrorKind = "exhausted"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // Optional: relevant file path or field
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind helps callers classify errors without depending on infra packages.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// KindOf returns the kind of the outermost OpError, or the kind implied by a
// known sentinel. Unknown errors map to KindExecution.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var oe *OpError
	if errors.As(err, &oe) && oe.Kind != "" {
		return oe.Kind
	}
	switch {
	case errors.Is(err, ErrSyntaxRejected),
		errors.Is(err, ErrNotAFunction),
		errors.Is(err, ErrWrongArity),
		errors.Is(err, ErrWrongSymbol),
		errors.Is(err, ErrDisallowedConstruct):
		return KindInputRejected
	case errors.Is(err, ErrNoSignChange),
		errors.Is(err, ErrNoRootInInterval),
		errors.Is(err, ErrZeroPivot):
		return KindPrecondition
	case errors.Is(err, ErrZeroDerivative),
		errors.Is(err, ErrFlatStep),
		errors.Is(err, ErrZeroReference),
		errors.Is(err, ErrNonFinite):
		return KindDegenerate
	case errors.Is(err, ErrMaxIterations):
		return KindExhausted
	case errors.Is(err, ErrInvalidSettings),
		errors.Is(err, ErrInvalidSystem),
		errors.Is(err, ErrInvalidConfig):
		return KindInvalidConfig
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	}
	return KindExecution
}

// Fail wraps a sentinel in an OpError whose kind is derived from the sentinel.
func Fail(op string, err error) error {
	return &OpError{Op: op, Kind: KindOf(err), Err: err}
}
