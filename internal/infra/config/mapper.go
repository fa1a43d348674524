package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/numlab/internal/app/template"
	"github.com/aalvaropc/numlab/internal/domain"
)

func MapStudy(path string, ys YAMLStudy) (domain.Study, error) {
	if strings.TrimSpace(ys.Name) == "" {
		return domain.Study{}, invalidField(path, "name", "study name is required")
	}
	if len(ys.Problems) == 0 {
		return domain.Study{}, invalidField(path, "problems", "at least one problem is required")
	}

	defaults, err := mapTuning(path, "defaults", ys.Defaults)
	if err != nil {
		return domain.Study{}, err
	}

	st := domain.Study{
		Name:     ys.Name,
		Defaults: defaults,
		Problems: make([]domain.ProblemSpec, 0, len(ys.Problems)),
	}

	seen := map[string]bool{}
	for i, yp := range ys.Problems {
		fieldPrefix := fmt.Sprintf("problems[%d]", i)

		if yp.F, err = template.RenderString(yp.F, ys.Vars); err != nil {
			return domain.Study{}, invalidField(path, fieldPrefix+".f", err.Error())
		}
		if yp.G, err = template.RenderString(yp.G, ys.Vars); err != nil {
			return domain.Study{}, invalidField(path, fieldPrefix+".g", err.Error())
		}

		p, err := MapProblem(path, fieldPrefix, yp)
		if err != nil {
			return domain.Study{}, err
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("%s-%d", p.Method, i+1)
		}
		if seen[p.Name] {
			return domain.Study{}, invalidField(path, fieldPrefix+".name", fmt.Sprintf("duplicate problem name %q", p.Name))
		}
		seen[p.Name] = true

		st.Problems = append(st.Problems, p)
	}

	return st, nil
}

// MapProblem maps a single problem. fieldPrefix locates it in error messages.
func MapProblem(path, fieldPrefix string, yp YAMLProblem) (domain.ProblemSpec, error) {
	if strings.TrimSpace(yp.Method) == "" {
		return domain.ProblemSpec{}, invalidField(path, fieldPrefix+".method", "method is required")
	}
	method, err := domain.ParseMethod(yp.Method)
	if err != nil {
		return domain.ProblemSpec{}, invalidField(path, fieldPrefix+".method", err.Error())
	}

	tuning, err := mapTuning(path, fieldPrefix, yp.YAMLSettings)
	if err != nil {
		return domain.ProblemSpec{}, err
	}

	p := domain.ProblemSpec{
		Name:   strings.TrimSpace(yp.Name),
		Method: method,
		Tuning: tuning,
		Assert: mapAssertions(yp.Assert),
	}

	if method.Family() == domain.FamilyLinear {
		if yp.F != "" || yp.G != "" {
			return domain.ProblemSpec{}, invalidField(path, fieldPrefix+".f", "linear methods take a system, not a function")
		}
		if yp.Linear != nil {
			p.Linear = &domain.LinearParams{
				A:     yp.Linear.A,
				B:     yp.Linear.B,
				X0:    yp.Linear.X0,
				Omega: yp.Linear.Omega,
			}
		}
	} else {
		if yp.Linear != nil {
			return domain.ProblemSpec{}, invalidField(path, fieldPrefix+".linear", "root methods take a function, not a system")
		}
		p.Root = &domain.RootParams{
			F:             strings.TrimSpace(yp.F),
			G:             strings.TrimSpace(yp.G),
			A:             yp.A,
			B:             yp.B,
			X0:            yp.X0,
			X1:            yp.X1,
			MultipleRoots: yp.MultipleRoots,
		}
	}

	if err := p.Validate(); err != nil {
		var oe *domain.OpError
		if errors.As(err, &oe) && oe.Path != "" {
			return domain.ProblemSpec{}, &domain.OpError{
				Op:   "config.map",
				Kind: domain.KindInvalidConfig,
				Path: path,
				Err:  fmt.Errorf("field %s.%s: %w", fieldPrefix, oe.Path, oe.Err),
			}
		}
		return domain.ProblemSpec{}, err
	}

	return p, nil
}

func MapProfile(path string, yp YAMLProfile) (domain.Profile, error) {
	tuning, err := mapTuning(path, "", yp.YAMLSettings)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{
		Name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Tuning: tuning,
	}, nil
}

func mapTuning(path, prefix string, ys YAMLSettings) (domain.Tuning, error) {
	field := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "." + name
	}

	var t domain.Tuning
	if ys.Tolerance != nil {
		tol := *ys.Tolerance
		if !(tol > domain.MinTolerance && tol <= domain.MaxTolerance) {
			return t, invalidField(path, field("tolerance"), fmt.Sprintf("must be in (%g, %g]", domain.MinTolerance, domain.MaxTolerance))
		}
		t.Tolerance = &tol
	}
	if ys.MaxIterations != nil {
		n := *ys.MaxIterations
		if n < 1 || n > domain.MaxMaxIterations {
			return t, invalidField(path, field("max_iterations"), fmt.Sprintf("must be in [1, %d]", domain.MaxMaxIterations))
		}
		t.MaxIterations = &n
	}
	if strings.TrimSpace(ys.ErrorType) != "" {
		et, err := domain.ParseErrorType(ys.ErrorType)
		if err != nil {
			return t, invalidField(path, field("error_type"), err.Error())
		}
		t.ErrorType = &et
	}
	return t, nil
}

func mapAssertions(in YAMLAssertions) domain.AssertionsSpec {
	out := domain.AssertionsSpec{
		Converged:     in.Converged,
		MaxIterations: in.MaxIterations,
		MaxLatencyMS:  in.MaxMS,
		JSONPath:      mapJSONPath(in.JSONPath),
	}
	if in.Root != nil {
		out.Root = &domain.BoundsAssertion{Gt: in.Root.Gt, Lt: in.Root.Lt}
	}
	return out
}

func mapJSONPath(in map[string]YAMLJSONPathAssertion) map[string]domain.JSONPathAssertion {
	if in == nil {
		return nil
	}
	out := make(map[string]domain.JSONPathAssertion, len(in))
	for k, v := range in {
		out[k] = domain.JSONPathAssertion{
			Exists:   v.Exists,
			Eq:       v.Eq,
			Contains: v.Contains,
			Matches:  v.Matches,
			Gt:       v.Gt,
			Lt:       v.Lt,
		}
	}
	return out
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
