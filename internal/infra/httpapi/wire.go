package httpapi

import "github.com/aalvaropc/numlab/internal/domain"

// SolveRequest is the body of POST /v1/solve. When Settings is set it is
// used as is and the problem tuning is ignored; otherwise the server
// defaults are tuned by the problem.
type SolveRequest struct {
	Problem  domain.ProblemSpec    `json:"problem"`
	Settings *domain.SolveSettings `json:"settings,omitempty"`
}

// CompareRequest is the body of POST /v1/compare. No methods means every
// method of the problem's family.
type CompareRequest struct {
	Problem  domain.ProblemSpec    `json:"problem"`
	Methods  []string              `json:"methods,omitempty"`
	Settings *domain.SolveSettings `json:"settings,omitempty"`
}

// ExprRequest is the body of POST /v1/expr.
type ExprRequest struct {
	Expression string   `json:"expression"`
	At         *float64 `json:"at,omitempty"`
}

// ExprResponse describes a compiled expression.
type ExprResponse struct {
	Input            string   `json:"input"`
	Normalized       string   `json:"normalized"`
	Derivative       string   `json:"derivative"`
	SecondDerivative string   `json:"second_derivative"`
	Value            *float64 `json:"value,omitempty"`
	// ValueError is set instead of Value when f is NaN or infinite at the point.
	ValueError string `json:"value_error,omitempty"`
}

// ErrorResponse is returned with every non-2xx status. Result carries the
// partial outcome of a failed solve.
type ErrorResponse struct {
	Detail string                `json:"detail"`
	Error  string                `json:"error"`
	Kind   domain.ErrorKind      `json:"kind"`
	Result *domain.ProblemResult `json:"result,omitempty"`
}

// Health is the body of GET /healthz.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
