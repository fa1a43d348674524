package domain

import (
	"context"
	"errors"
	"net"
	"time"
)

// Kinds that only appear on run errors.
const (
	KindTimeout  ErrorKind = "timeout"
	KindCanceled ErrorKind = "canceled"
	KindRemote   ErrorKind = "remote"
)

// RunError represents a structured error produced while solving a problem.
type RunError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// NewRunError classifies err into a RunError. A nil err yields nil.
func NewRunError(err error) *RunError {
	if err == nil {
		return nil
	}
	return &RunError{Kind: ClassifyRunError(err), Message: err.Error()}
}

// ClassifyRunError maps an error into the kind stored on results.
func ClassifyRunError(err error) ErrorKind {
	var ne net.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &ne) && ne.Timeout():
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	return KindOf(err)
}

// AssertionResult is the output of a single assertion.
type AssertionResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// LinearDiagnostics are computed once per linear solve, independently of how
// the iteration went.
type LinearDiagnostics struct {
	Transition     [][]float64 `json:"transition"`
	Constant       []float64   `json:"constant"`
	SpectralRadius float64     `json:"spectral_radius"`
	Converges      bool        `json:"converges"`
}

// ProblemResult is the outcome of solving a single problem.
type ProblemResult struct {
	Name     string        `json:"name"`
	Method   Method        `json:"method"`
	Settings SolveSettings `json:"settings"`

	Converged   bool      `json:"converged"`
	Root        *float64  `json:"root,omitempty"`
	Solution    []float64 `json:"solution,omitempty"`
	Iterations  int       `json:"iterations"`
	Evaluations int       `json:"evaluations,omitempty"`
	FinalError  float64   `json:"final_error"`

	Trace  Trace              `json:"trace"`
	Linear *LinearDiagnostics `json:"linear,omitempty"`

	LatencyMS  int64             `json:"latency_ms"`
	Assertions []AssertionResult `json:"assertions,omitempty"`
	Error      *RunError         `json:"error,omitempty"`
}

// Failed reports whether the solve errored or any assertion failed.
func (r ProblemResult) Failed() bool {
	if r.Error != nil {
		return true
	}
	for _, a := range r.Assertions {
		if !a.Passed {
			return true
		}
	}
	return false
}

// RunResult represents the result of solving every problem of a study.
type RunResult struct {
	StudyName   string `json:"study_name"`
	StudyPath   string `json:"study_path"`
	ProfileName string `json:"profile_name,omitempty"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	Results []ProblemResult `json:"results"`
}

// Failures counts failed problems.
func (r RunResult) Failures() int {
	n := 0
	for _, p := range r.Results {
		if p.Failed() {
			n++
		}
	}
	return n
}

// RunArtifact is the persisted form of a run.
type RunArtifact = RunResult

// RunRef is a lightweight reference to a persisted run.
type RunRef struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	Study     string    `json:"study"`
	Profile   string    `json:"profile"`
	StartedAt time.Time `json:"started_at"`
	Failures  int       `json:"failures"`
}
