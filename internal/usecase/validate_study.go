package usecase

import (
	"context"
	"fmt"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/ports"
)

type ValidateStudy struct {
	studies  ports.StudyLoader
	checker  ports.ProblemChecker
	defaults domain.SolveSettings
}

type ValidateOption func(*ValidateStudy)

// WithBaseSettings sets the settings study and problem tunings apply to.
func WithBaseSettings(s domain.SolveSettings) ValidateOption {
	return func(uc *ValidateStudy) { uc.defaults = s }
}

func NewValidateStudy(sl ports.StudyLoader, checker ports.ProblemChecker, opts ...ValidateOption) *ValidateStudy {
	uc := &ValidateStudy{
		studies:  sl,
		checker:  checker,
		defaults: domain.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute validates a study without solving anything. Every expression is
// compiled, every linear system is checked for shape and pivots, and the
// settings each problem would run with are resolved.
func (uc *ValidateStudy) Execute(ctx context.Context, studyPath string) (domain.Study, error) {
	st, err := uc.studies.LoadStudy(studyPath)
	if err != nil {
		return domain.Study{}, err
	}

	for _, p := range st.Problems {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if _, err := ResolveSettings(uc.defaults, st.Defaults, p.Tuning); err != nil {
			return st, fmt.Errorf("problem %q: %w", p.Name, err)
		}
		if err := uc.checker.Check(p); err != nil {
			return st, fmt.Errorf("problem %q: %w", p.Name, err)
		}
	}

	return st, nil
}
