package domain

import (
	"fmt"
	"strings"
)

// Method names an iterative method.
type Method string

const (
	MethodBisection     Method = "bisection"
	MethodFalsePosition Method = "false_position"
	MethodSecant        Method = "secant"
	MethodFixedPoint    Method = "fixed_point"
	MethodNewton        Method = "newton"

	MethodJacobi      Method = "jacobi"
	MethodGaussSeidel Method = "gauss_seidel"
	MethodSOR         Method = "sor"
)

// Family groups methods by the kind of problem they solve.
type Family string

const (
	FamilyRoot   Family = "root"
	FamilyLinear Family = "linear"
)

var methodAliases = map[string]Method{
	"bisection":      MethodBisection,
	"bisect":         MethodBisection,
	"false_position": MethodFalsePosition,
	"regula_falsi":   MethodFalsePosition,
	"secant":         MethodSecant,
	"fixed_point":    MethodFixedPoint,
	"newton":         MethodNewton,
	"newton_raphson": MethodNewton,
	"jacobi":         MethodJacobi,
	"gauss_seidel":   MethodGaussSeidel,
	"gs":             MethodGaussSeidel,
	"sor":            MethodSOR,
}

// ParseMethod normalises user input ("Gauss-Seidel", "regula falsi") into a Method.
func ParseMethod(s string) (Method, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer("-", "_", " ", "_").Replace(k)
	if m, ok := methodAliases[k]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unsupported method %q", s)
}

// Family reports which engine serves the method.
func (m Method) Family() Family {
	switch m {
	case MethodJacobi, MethodGaussSeidel, MethodSOR:
		return FamilyLinear
	default:
		return FamilyRoot
	}
}

// RootMethods lists the root-finding methods in presentation order.
func RootMethods() []Method {
	return []Method{MethodBisection, MethodFalsePosition, MethodSecant, MethodFixedPoint, MethodNewton}
}

// LinearMethods lists the linear iterative methods in presentation order.
func LinearMethods() []Method {
	return []Method{MethodJacobi, MethodGaussSeidel, MethodSOR}
}

// RootParams are the inputs of a root-finding problem. Which fields are
// required depends on the method.
type RootParams struct {
	F string `json:"f"`
	G string `json:"g,omitempty"`

	A  *float64 `json:"a,omitempty"`
	B  *float64 `json:"b,omitempty"`
	X0 *float64 `json:"x0,omitempty"`
	X1 *float64 `json:"x1,omitempty"`

	MultipleRoots bool `json:"multiple_roots,omitempty"`
}

// LinearParams describe A x = b with an optional initial guess and SOR weight.
type LinearParams struct {
	A     [][]float64 `json:"a"`
	B     []float64   `json:"b"`
	X0    []float64   `json:"x0,omitempty"`
	Omega *float64    `json:"omega,omitempty"`
}

// ProblemSpec is a single solvable problem inside a study.
type ProblemSpec struct {
	Name   string        `json:"name"`
	Method Method        `json:"method"`
	Root   *RootParams   `json:"root,omitempty"`
	Linear *LinearParams `json:"linear,omitempty"`
	Tuning Tuning        `json:"tuning,omitempty"`

	Assert AssertionsSpec `json:"-"`
}

// Validate checks that the parameters required by the method are present.
// It does not compile expressions nor inspect matrix contents.
func (p ProblemSpec) Validate() error {
	field := func(name, msg string) error {
		return &OpError{
			Op:   "problem.validate",
			Kind: KindInvalidConfig,
			Path: name,
			Err:  fmt.Errorf("%s: %w", msg, ErrInvalidConfig),
		}
	}

	switch p.Method.Family() {
	case FamilyLinear:
		if _, err := ParseMethod(string(p.Method)); err != nil {
			return field("method", err.Error())
		}
		if p.Linear == nil {
			return field("linear", "linear system is required")
		}
		if len(p.Linear.A) == 0 {
			return field("linear.a", "matrix is required")
		}
		if len(p.Linear.B) == 0 {
			return field("linear.b", "right-hand side is required")
		}
		if p.Method != MethodSOR && p.Linear.Omega != nil {
			return field("linear.omega", "omega only applies to sor")
		}
		return nil
	}

	if _, err := ParseMethod(string(p.Method)); err != nil {
		return field("method", err.Error())
	}
	r := p.Root
	if r == nil || strings.TrimSpace(r.F) == "" {
		return field("f", "function is required")
	}
	switch p.Method {
	case MethodBisection, MethodFalsePosition:
		if r.A == nil {
			return field("a", "lower bound is required")
		}
		if r.B == nil {
			return field("b", "upper bound is required")
		}
		if *r.A >= *r.B {
			return field("b", "upper bound must be greater than lower bound")
		}
	case MethodSecant:
		if r.X0 == nil {
			return field("x0", "first guess is required")
		}
		if r.X1 == nil {
			return field("x1", "second guess is required")
		}
	case MethodFixedPoint:
		if strings.TrimSpace(r.G) == "" {
			return field("g", "iteration function is required")
		}
		if r.X0 == nil {
			return field("x0", "initial guess is required")
		}
	case MethodNewton:
		if r.X0 == nil {
			return field("x0", "initial guess is required")
		}
	}
	if r.MultipleRoots && p.Method != MethodNewton {
		return field("multiple_roots", "only newton supports multiple roots mode")
	}
	return nil
}

// JSONPathAssertion defines a JSONPath-based check over a problem result.
type JSONPathAssertion struct {
	Exists   bool
	Eq       *string
	Contains *string
	Matches  *string
	Gt       *float64
	Lt       *float64
}

// BoundsAssertion checks that a value lies strictly within (Gt, Lt).
type BoundsAssertion struct {
	Gt *float64
	Lt *float64
}

// AssertionsSpec defines checks applied to a problem result.
type AssertionsSpec struct {
	Converged     *bool
	MaxIterations *int
	MaxLatencyMS  *int
	Root          *BoundsAssertion

	// JSONPath assertions keyed by expression, e.g. "$.solution[0]".
	JSONPath map[string]JSONPathAssertion
}

// Empty reports whether no assertion is configured.
func (a AssertionsSpec) Empty() bool {
	return a.Converged == nil && a.MaxIterations == nil && a.MaxLatencyMS == nil &&
		a.Root == nil && len(a.JSONPath) == 0
}
