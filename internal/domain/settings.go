package domain

import "fmt"

const (
	DefaultTolerance     = 1e-7
	DefaultMaxIterations = 100

	// Bounds accepted at the boundary.
	MinTolerance     = 1e-21
	MaxTolerance     = 1.0
	MaxMaxIterations = 1000
)

// SolveSettings are the knobs shared by every method.
type SolveSettings struct {
	Tolerance     float64   `json:"tolerance"`
	MaxIterations int       `json:"max_iterations"`
	ErrorType     ErrorType `json:"error_type"`
}

// DefaultSettings returns the engine defaults.
func DefaultSettings() SolveSettings {
	return SolveSettings{
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		ErrorType:     ErrorAbsolute,
	}
}

// Validate checks the settings against the accepted bounds.
func (s SolveSettings) Validate() error {
	if !(s.Tolerance > MinTolerance && s.Tolerance <= MaxTolerance) {
		return fmt.Errorf("tolerance %g outside (%g, %g]: %w", s.Tolerance, MinTolerance, MaxTolerance, ErrInvalidSettings)
	}
	if s.MaxIterations < 1 || s.MaxIterations > MaxMaxIterations {
		return fmt.Errorf("max_iterations %d outside [1, %d]: %w", s.MaxIterations, MaxMaxIterations, ErrInvalidSettings)
	}
	switch s.ErrorType {
	case ErrorAbsolute, ErrorRelative:
	default:
		return fmt.Errorf("error_type %q: %w", string(s.ErrorType), ErrInvalidSettings)
	}
	return nil
}

// Tuning holds optional overrides. Nil fields leave the base value untouched.
type Tuning struct {
	Tolerance     *float64   `json:"tolerance,omitempty"`
	MaxIterations *int       `json:"max_iterations,omitempty"`
	ErrorType     *ErrorType `json:"error_type,omitempty"`
}

// Apply returns s with every non-nil override of t applied.
func (s SolveSettings) Apply(t Tuning) SolveSettings {
	if t.Tolerance != nil {
		s.Tolerance = *t.Tolerance
	}
	if t.MaxIterations != nil {
		s.MaxIterations = *t.MaxIterations
	}
	if t.ErrorType != nil {
		s.ErrorType = *t.ErrorType
	}
	return s
}

// IsZero reports whether no override is set.
func (t Tuning) IsZero() bool {
	return t.Tolerance == nil && t.MaxIterations == nil && t.ErrorType == nil
}
