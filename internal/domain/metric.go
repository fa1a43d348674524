package domain

import (
	"fmt"
	"math"
	"strings"
)

// ErrorType selects how the distance between two successive iterates is measured.
type ErrorType string

const (
	ErrorAbsolute ErrorType = "absolute"
	ErrorRelative ErrorType = "relative"
)

// Distance returns the error between reference and candidate.
// Relative errors are normalised by |reference| and fail when it is zero.
func (t ErrorType) Distance(reference, candidate float64) (float64, error) {
	diff := math.Abs(reference - candidate)
	switch t {
	case ErrorAbsolute, "":
		return diff, nil
	case ErrorRelative:
		if reference == 0 {
			return 0, ErrZeroReference
		}
		return diff / math.Abs(reference), nil
	default:
		return 0, fmt.Errorf("unknown error type %q: %w", string(t), ErrInvalidSettings)
	}
}

// ParseErrorType accepts "absolute"/"relative" and the short forms "abs"/"rel".
func ParseErrorType(s string) (ErrorType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "absolute", "abs":
		return ErrorAbsolute, nil
	case "relative", "rel":
		return ErrorRelative, nil
	default:
		return "", fmt.Errorf("unsupported error type %q (expected absolute|relative)", s)
	}
}
