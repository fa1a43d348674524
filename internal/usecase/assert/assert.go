// Package assert evaluates the checks a study attaches to a problem.
package assert

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/aalvaropc/numlab/internal/domain"
)

func pass(name, format string, args ...any) domain.AssertionResult {
	return domain.AssertionResult{Name: name, Passed: true, Message: fmt.Sprintf(format, args...)}
}

func fail(name, format string, args ...any) domain.AssertionResult {
	return domain.AssertionResult{Name: name, Passed: false, Message: fmt.Sprintf(format, args...)}
}

func Converged(expected, got bool) domain.AssertionResult {
	if got == expected {
		return pass("converged", "converged=%t", got)
	}
	return fail("converged", "expected converged=%t, got %t", expected, got)
}

func MaxIterations(max, got int) domain.AssertionResult {
	if got <= max {
		return pass("max_iterations", "iterations %d <= %d", got, max)
	}
	return fail("max_iterations", "expected iterations <= %d, got %d", max, got)
}

func MaxLatency(maxMs int, latencyMs int64) domain.AssertionResult {
	if latencyMs <= int64(maxMs) {
		return pass("max_ms", "latency %dms <= %dms", latencyMs, maxMs)
	}
	return fail("max_ms", "expected latency <= %dms, got %dms", maxMs, latencyMs)
}

// Root checks gt < root < lt. A missing root always fails.
func Root(b domain.BoundsAssertion, root *float64) domain.AssertionResult {
	if root == nil {
		return fail("root", "expected a root, got none")
	}
	r := *root
	if b.Gt != nil && !(r > *b.Gt) {
		return fail("root", "expected root > %v, got %v", *b.Gt, r)
	}
	if b.Lt != nil && !(r < *b.Lt) {
		return fail("root", "expected root < %v, got %v", *b.Lt, r)
	}
	return pass("root", "root %v within bounds", r)
}

// Evaluate applies the assertions spec against a problem result.
// The result is marshalled to JSON only if JSONPath assertions are present.
func Evaluate(spec domain.AssertionsSpec, res domain.ProblemResult) []domain.AssertionResult {
	var out []domain.AssertionResult

	if spec.Converged != nil {
		out = append(out, Converged(*spec.Converged, res.Converged))
	}
	if spec.MaxIterations != nil {
		out = append(out, MaxIterations(*spec.MaxIterations, res.Iterations))
	}
	if spec.MaxLatencyMS != nil {
		out = append(out, MaxLatency(*spec.MaxLatencyMS, res.LatencyMS))
	}
	if spec.Root != nil {
		out = append(out, Root(*spec.Root, res.Root))
	}

	if len(spec.JSONPath) == 0 {
		return out
	}

	exprs := make([]string, 0, len(spec.JSONPath))
	for expr := range spec.JSONPath {
		exprs = append(exprs, expr)
	}
	sort.Strings(exprs)

	doc, err := toDocument(res)
	if err != nil {
		for _, expr := range exprs {
			out = append(out, JSONPath(expr, spec.JSONPath[expr], nil,
				fmt.Errorf("result is not representable as JSON: %v", err))...)
		}
		return out
	}

	for _, expr := range exprs {
		val, getErr := jsonpath.Get(expr, doc)
		out = append(out, JSONPath(expr, spec.JSONPath[expr], val, getErr)...)
	}

	return out
}

// JSONPath runs every check configured in a against a value already looked up.
func JSONPath(expr string, a domain.JSONPathAssertion, val any, getErr error) []domain.AssertionResult {
	var out []domain.AssertionResult
	if a.Exists {
		out = append(out, checkExists(expr, val, getErr))
	}
	if a.Eq != nil {
		out = append(out, checkString("jsonpath.eq", expr, val, getErr, func(s string) (bool, string) {
			if s == *a.Eq {
				return true, fmt.Sprintf("eq %q", *a.Eq)
			}
			return false, fmt.Sprintf("expected %q, got %q", *a.Eq, s)
		}))
	}
	if a.Contains != nil {
		out = append(out, checkString("jsonpath.contains", expr, val, getErr, func(s string) (bool, string) {
			if strings.Contains(s, *a.Contains) {
				return true, fmt.Sprintf("contains %q", *a.Contains)
			}
			return false, fmt.Sprintf("%q does not contain %q", s, *a.Contains)
		}))
	}
	if a.Matches != nil {
		re, reErr := regexp.Compile(*a.Matches)
		out = append(out, checkString("jsonpath.matches", expr, val, getErr, func(s string) (bool, string) {
			if reErr != nil {
				return false, fmt.Sprintf("invalid regex %q: %v", *a.Matches, reErr)
			}
			if re.MatchString(s) {
				return true, fmt.Sprintf("matches %q", *a.Matches)
			}
			return false, fmt.Sprintf("%q does not match %q", s, *a.Matches)
		}))
	}
	if a.Gt != nil {
		out = append(out, checkNumber("jsonpath.gt", expr, val, getErr, func(f float64) (bool, string) {
			if f > *a.Gt {
				return true, fmt.Sprintf("%v > %v", f, *a.Gt)
			}
			return false, fmt.Sprintf("expected > %v, got %v", *a.Gt, f)
		}))
	}
	if a.Lt != nil {
		out = append(out, checkNumber("jsonpath.lt", expr, val, getErr, func(f float64) (bool, string) {
			if f < *a.Lt {
				return true, fmt.Sprintf("%v < %v", f, *a.Lt)
			}
			return false, fmt.Sprintf("expected < %v, got %v", *a.Lt, f)
		}))
	}
	return out
}

func checkExists(expr string, val any, getErr error) domain.AssertionResult {
	const name = "jsonpath.exists"
	if getErr != nil {
		return fail(name, "invalid jsonpath %q: %v", expr, getErr)
	}
	if isEmptyJSONPathValue(val) {
		return fail(name, "jsonpath %q: expected value to exist, got empty", expr)
	}
	return pass(name, "jsonpath %q exists", expr)
}

func checkString(name, expr string, val any, getErr error, check func(string) (bool, string)) domain.AssertionResult {
	if getErr != nil {
		return fail(name, "jsonpath %q: %v", expr, getErr)
	}
	s, err := jsonPathToString(val)
	if err != nil {
		return fail(name, "jsonpath %q: %v", expr, err)
	}
	ok, msg := check(s)
	return domain.AssertionResult{Name: name, Passed: ok, Message: fmt.Sprintf("jsonpath %q: %s", expr, msg)}
}

func checkNumber(name, expr string, val any, getErr error, check func(float64) (bool, string)) domain.AssertionResult {
	if getErr != nil {
		return fail(name, "jsonpath %q: %v", expr, getErr)
	}
	f, err := jsonPathToFloat64(val)
	if err != nil {
		return fail(name, "jsonpath %q: %v", expr, err)
	}
	ok, msg := check(f)
	return domain.AssertionResult{Name: name, Passed: ok, Message: fmt.Sprintf("jsonpath %q: %s", expr, msg)}
}

func jsonPathToString(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", fmt.Errorf("value is null")
	default:
		return fmt.Sprint(v), nil
	}
}

func jsonPathToFloat64(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value of type %T is not numeric", val)
	}
}

// toDocument round-trips res through JSON so jsonpath sees the same field
// names a saved run has.
func toDocument(res domain.ProblemResult) (any, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isEmptyJSONPathValue(v any) bool {
	if v == nil {
		return true
	}

	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
