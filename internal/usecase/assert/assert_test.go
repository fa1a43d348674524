package assert

import (
	"strings"
	"testing"

	"github.com/aalvaropc/numlab/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func sample() domain.ProblemResult {
	return domain.ProblemResult{
		Name:       "sqrt2",
		Method:     domain.MethodNewton,
		Converged:  true,
		Root:       ptr(1.4142135623730951),
		Iterations: 5,
		FinalError: 1.6e-12,
		Trace: domain.Trace{
			Columns: []string{"x", "f(x)", "f'(x)"},
			Records: []domain.IterationRecord{
				{Iteration: 1, State: []float64{1.5, 0.25, 3}, Error: 0.5},
			},
		},
		LatencyMS: 3,
	}
}

// --- Converged ---

func TestConverged(t *testing.T) {
	if r := Converged(true, true); !r.Passed || r.Name != "converged" {
		t.Fatalf("expected pass, got %+v", r)
	}
	r := Converged(true, false)
	if r.Passed {
		t.Fatalf("expected fail")
	}
	if r.Message != "expected converged=true, got false" {
		t.Fatalf("unexpected message: %q", r.Message)
	}
}

// --- MaxIterations ---

func TestMaxIterations(t *testing.T) {
	if r := MaxIterations(10, 10); !r.Passed {
		t.Fatalf("expected Passed=true when iterations equal the limit")
	}
	r := MaxIterations(10, 11)
	if r.Passed {
		t.Fatalf("expected fail")
	}
	if r.Message != "expected iterations <= 10, got 11" {
		t.Fatalf("unexpected message: %q", r.Message)
	}
}

// --- MaxLatency ---

func TestMaxLatency_WithinThreshold(t *testing.T) {
	r := MaxLatency(500, 500)
	if !r.Passed {
		t.Fatalf("expected Passed=true when latency exactly equals threshold")
	}
	if r.Name != "max_ms" {
		t.Fatalf("expected Name=max_ms, got %q", r.Name)
	}
}

func TestMaxLatency_FailMessage(t *testing.T) {
	r := MaxLatency(100, 250)
	if r.Passed {
		t.Fatalf("expected fail")
	}
	if r.Message != "expected latency <= 100ms, got 250ms" {
		t.Fatalf("unexpected message: %q", r.Message)
	}
}

// --- Root ---

func TestRoot(t *testing.T) {
	cases := []struct {
		name string
		b    domain.BoundsAssertion
		root *float64
		want bool
	}{
		{"inside", domain.BoundsAssertion{Gt: ptr(1.41), Lt: ptr(1.42)}, ptr(1.414), true},
		{"only lower", domain.BoundsAssertion{Gt: ptr(1.0)}, ptr(1.414), true},
		{"below", domain.BoundsAssertion{Gt: ptr(1.5)}, ptr(1.414), false},
		{"above", domain.BoundsAssertion{Lt: ptr(1.4)}, ptr(1.414), false},
		{"bound is exclusive", domain.BoundsAssertion{Lt: ptr(2.0)}, ptr(2.0), false},
		{"no root", domain.BoundsAssertion{Gt: ptr(0.0)}, nil, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Root(c.b, c.root); got.Passed != c.want {
				t.Fatalf("expected passed=%t, got %+v", c.want, got)
			}
		})
	}
}

// --- Evaluate ---

func TestEvaluate_NoAssertions(t *testing.T) {
	results := Evaluate(domain.AssertionsSpec{}, sample())
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestEvaluate_Order(t *testing.T) {
	spec := domain.AssertionsSpec{
		Converged:     ptr(true),
		MaxIterations: ptr(10),
		MaxLatencyMS:  ptr(100),
		Root:          &domain.BoundsAssertion{Gt: ptr(1.41)},
	}
	results := Evaluate(spec, sample())

	want := []string{"converged", "max_iterations", "max_ms", "root"}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, r := range results {
		if r.Name != want[i] {
			t.Fatalf("result %d: expected %s, got %s", i, want[i], r.Name)
		}
		if !r.Passed {
			t.Fatalf("expected %s to pass: %s", r.Name, r.Message)
		}
	}
}

func TestEvaluate_JSONPathOverResultFields(t *testing.T) {
	spec := domain.AssertionsSpec{
		JSONPath: map[string]domain.JSONPathAssertion{
			"$.converged":                 {Eq: ptr("true")},
			"$.method":                    {Matches: ptr("^new")},
			"$.root":                      {Gt: ptr(1.41), Lt: ptr(1.42)},
			"$.trace.columns[1]":          {Contains: ptr("f(")},
			"$.trace.records[0].state[0]": {Exists: true},
		},
	}
	results := Evaluate(spec, sample())
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Fatalf("expected %s to pass: %s", r.Name, r.Message)
		}
	}
	// Expressions are evaluated in sorted order.
	if !strings.Contains(results[0].Message, "$.converged") {
		t.Fatalf("expected $.converged first, got %q", results[0].Message)
	}
}

func TestEvaluate_JSONPathMissingValue(t *testing.T) {
	res := sample()
	res.Root = nil

	spec := domain.AssertionsSpec{
		JSONPath: map[string]domain.JSONPathAssertion{
			"$.root": {Exists: true, Gt: ptr(1.0)},
		},
	}
	results := Evaluate(spec, res)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Passed {
			t.Fatalf("expected %s to fail", r.Name)
		}
	}
}

func TestEvaluate_JSONPath_InvalidExpr(t *testing.T) {
	spec := domain.AssertionsSpec{
		JSONPath: map[string]domain.JSONPathAssertion{
			"$[": {Exists: true},
		},
	}
	results := Evaluate(spec, sample())
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Passed {
		t.Fatalf("expected invalid expression to fail")
	}
	if !strings.Contains(results[0].Message, "invalid jsonpath") {
		t.Fatalf("unexpected message: %q", results[0].Message)
	}
}

func TestEvaluate_JSONPathNotNumeric(t *testing.T) {
	spec := domain.AssertionsSpec{
		JSONPath: map[string]domain.JSONPathAssertion{
			"$.name": {Lt: ptr(3.0)},
		},
	}
	results := Evaluate(spec, sample())
	if len(results) != 1 || results[0].Passed {
		t.Fatalf("expected a single failure, got %+v", results)
	}
	if !strings.Contains(results[0].Message, "not numeric") {
		t.Fatalf("unexpected message: %q", results[0].Message)
	}
}

func TestEvaluate_JSONPathBadRegex(t *testing.T) {
	spec := domain.AssertionsSpec{
		JSONPath: map[string]domain.JSONPathAssertion{
			"$.name": {Matches: ptr("(")},
		},
	}
	results := Evaluate(spec, sample())
	if len(results) != 1 || results[0].Passed {
		t.Fatalf("expected a single failure, got %+v", results)
	}
	if !strings.Contains(results[0].Message, "invalid regex") {
		t.Fatalf("unexpected message: %q", results[0].Message)
	}
}

func TestEvaluate_JSONPathExistsFalseSkipped(t *testing.T) {
	spec := domain.AssertionsSpec{
		JSONPath: map[string]domain.JSONPathAssertion{
			"$.name": {Exists: false},
		},
	}
	if results := Evaluate(spec, sample()); len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}
