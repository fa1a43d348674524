// Package template substitutes {{name}} placeholders in study expressions.
package template

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aalvaropc/numlab/internal/domain"
)

var (
	ErrUnclosed   = fmt.Errorf("unclosed placeholder: %w", domain.ErrInvalidConfig)
	ErrEmptyName  = fmt.Errorf("empty placeholder: %w", domain.ErrInvalidConfig)
	ErrMissingVar = fmt.Errorf("missing variable: %w", domain.ErrInvalidConfig)
)

// RenderString replaces {{name}} placeholders with vars values. Text
// without placeholders is returned unchanged.
func RenderString(input string, vars map[string]string) (string, error) {
	if !strings.Contains(input, "{{") {
		return input, nil
	}

	var out strings.Builder
	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}

		out.WriteString(rest[:start])
		rest = rest[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return "", ErrUnclosed
		}

		key := strings.TrimSpace(rest[:end])
		if key == "" {
			return "", ErrEmptyName
		}

		value, ok := vars[key]
		if !ok {
			return "", fmt.Errorf("%q: %w", key, ErrMissingVar)
		}

		// Parenthesize so "x - {{c}}" with c = "-2" keeps its meaning.
		out.WriteString("(" + strings.TrimSpace(value) + ")")
		rest = rest[end+2:]
	}
}

// IsMissingVar reports whether err comes from an undefined variable.
func IsMissingVar(err error) bool { return errors.Is(err, ErrMissingVar) }
