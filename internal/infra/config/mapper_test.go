package config

import (
	"strings"
	"testing"

	"github.com/aalvaropc/numlab/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestMapStudyRequiresNameAndProblems(t *testing.T) {
	_, err := MapStudy("study.yaml", YAMLStudy{})
	if err == nil || !strings.Contains(err.Error(), "field name") {
		t.Fatalf("expected name error, got %v", err)
	}

	_, err = MapStudy("study.yaml", YAMLStudy{Name: "s"})
	if err == nil || !strings.Contains(err.Error(), "field problems") {
		t.Fatalf("expected problems error, got %v", err)
	}
}

func TestMapStudyProblemFields(t *testing.T) {
	cases := []struct {
		name  string
		p     YAMLProblem
		field string
	}{
		{"no method", YAMLProblem{F: "x"}, "problems[0].method"},
		{"bad method", YAMLProblem{Method: "golden", F: "x"}, "problems[0].method"},
		{"no function", YAMLProblem{Method: "newton", X0: ptr(1.0)}, "problems[0].f"},
		{"no x0", YAMLProblem{Method: "newton", F: "x^2"}, "problems[0].x0"},
		{"no g", YAMLProblem{Method: "fixed_point", F: "x", X0: ptr(1.0)}, "problems[0].g"},
		{"secant x1", YAMLProblem{Method: "secant", F: "x", X0: ptr(1.0)}, "problems[0].x1"},
		{"no system", YAMLProblem{Method: "jacobi"}, "problems[0].linear"},
		{"function on linear", YAMLProblem{Method: "jacobi", F: "x"}, "problems[0].f"},
		{"system on root", YAMLProblem{Method: "newton", F: "x", X0: ptr(1.0), Linear: &YAMLLinear{}}, "problems[0].linear"},
		{"omega on jacobi", YAMLProblem{Method: "jacobi", Linear: &YAMLLinear{A: [][]float64{{1}}, B: []float64{1}, Omega: ptr(1.5)}}, "problems[0].linear.omega"},
		{"tolerance", YAMLProblem{Method: "newton", F: "x", X0: ptr(1.0), YAMLSettings: YAMLSettings{Tolerance: ptr(0.0)}}, "problems[0].tolerance"},
		{"iterations", YAMLProblem{Method: "newton", F: "x", X0: ptr(1.0), YAMLSettings: YAMLSettings{MaxIterations: ptr(0)}}, "problems[0].max_iterations"},
		{"error type", YAMLProblem{Method: "newton", F: "x", X0: ptr(1.0), YAMLSettings: YAMLSettings{ErrorType: "percent"}}, "problems[0].error_type"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := MapStudy("study.yaml", YAMLStudy{Name: "s", Problems: []YAMLProblem{c.p}})
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), c.field) {
				t.Fatalf("expected %s in error, got %v", c.field, err)
			}
			if !domain.IsKind(err, domain.KindInvalidConfig) {
				t.Fatalf("expected invalid config kind, got %v", err)
			}
		})
	}
}

func TestMapStudyNamesAndAssertions(t *testing.T) {
	st := YAMLStudy{
		Name: "s",
		Problems: []YAMLProblem{
			{Method: "newton", F: "x^2 - 2", X0: ptr(1.0)},
			{
				Name:   "sor",
				Method: "sor",
				Linear: &YAMLLinear{A: [][]float64{{2}}, B: []float64{1}, Omega: ptr(1.25)},
				Assert: YAMLAssertions{
					Converged: ptr(true),
					MaxMS:     ptr(150),
					Root:      &YAMLBounds{Gt: ptr(0.0)},
					JSONPath: map[string]YAMLJSONPathAssertion{
						"$.solution[0]": {Gt: ptr(0.4)},
					},
				},
			},
		},
	}

	mapped, err := MapStudy("study.yaml", st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mapped.Problems[0].Name != "newton-1" {
		t.Fatalf("expected generated name newton-1, got %q", mapped.Problems[0].Name)
	}

	a := mapped.Problems[1].Assert
	if a.Converged == nil || !*a.Converged {
		t.Fatalf("expected converged assertion to map")
	}
	if a.MaxLatencyMS == nil || *a.MaxLatencyMS != 150 {
		t.Fatalf("expected max latency to map")
	}
	if a.Root == nil || a.Root.Gt == nil || *a.Root.Gt != 0 {
		t.Fatalf("expected root bounds to map")
	}
	if jp := a.JSONPath["$.solution[0]"]; jp.Gt == nil || *jp.Gt != 0.4 {
		t.Fatalf("expected jsonpath gt to map")
	}

	st.Problems[0].Name = "sor"
	if _, err := MapStudy("study.yaml", st); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestMapProfileNameFromFile(t *testing.T) {
	p, err := MapProfile("profiles/quick.yaml", YAMLProfile{YAMLSettings{MaxIterations: ptr(20)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "quick" {
		t.Fatalf("expected profile name quick, got %q", p.Name)
	}
	if p.Tuning.Tolerance != nil {
		t.Fatalf("expected unset tolerance to stay nil")
	}
}

func TestMapStudySubstitutesVars(t *testing.T) {
	st := YAMLStudy{
		Name: "s",
		Vars: map[string]string{"target": "2", "shift": "-1"},
		Problems: []YAMLProblem{
			{Name: "sqrt", Method: "newton", F: "x^2 - {{target}}", X0: ptr(1.0)},
			{Name: "fp", Method: "fixed_point", F: "x - {{shift}}", G: "{{ shift }}", X0: ptr(0.0)},
		},
	}

	mapped, err := MapStudy("study.yaml", st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mapped.Problems[0].Root.F; got != "x^2 - (2)" {
		t.Fatalf("expected substituted f, got %q", got)
	}
	if got := mapped.Problems[1].Root.G; got != "(-1)" {
		t.Fatalf("expected substituted g, got %q", got)
	}

	st.Problems[0].F = "x^2 - {{missing}}"
	_, err = MapStudy("study.yaml", st)
	if err == nil || !strings.Contains(err.Error(), "problems[0].f") {
		t.Fatalf("expected field error for missing var, got %v", err)
	}
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid config kind, got %v", err)
	}
}
