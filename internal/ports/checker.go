package ports

import "github.com/aalvaropc/numlab/internal/domain"

// ProblemChecker verifies that a problem can be solved without running it:
// expressions compile and linear systems are well formed.
type ProblemChecker interface {
	Check(p domain.ProblemSpec) error
}
