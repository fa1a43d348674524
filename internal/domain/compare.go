package domain

import "sort"

// ComparisonEntry is one method's outcome on a shared problem.
type ComparisonEntry struct {
	Method     Method    `json:"method"`
	Converged  bool      `json:"converged"`
	Root       *float64  `json:"root,omitempty"`
	Solution   []float64 `json:"solution,omitempty"`
	Iterations int       `json:"iterations"`
	FinalError float64   `json:"final_error"`
	RuntimeUS  int64     `json:"runtime_us"`
	Error      *RunError `json:"error,omitempty"`
}

// Comparison ranks several methods on the same problem.
type Comparison struct {
	Problem  string            `json:"problem"`
	Settings SolveSettings     `json:"settings"`
	Entries  []ComparisonEntry `json:"entries"`
}

// Rank orders entries: converged first, then fewer iterations, then faster.
func (c *Comparison) Rank() {
	sort.SliceStable(c.Entries, func(i, j int) bool {
		a, b := c.Entries[i], c.Entries[j]
		if a.Converged != b.Converged {
			return a.Converged
		}
		if a.Iterations != b.Iterations {
			return a.Iterations < b.Iterations
		}
		return a.RuntimeUS < b.RuntimeUS
	})
}

// Best returns the top entry after ranking, if it converged.
func (c Comparison) Best() (ComparisonEntry, bool) {
	if len(c.Entries) == 0 || !c.Entries[0].Converged {
		return ComparisonEntry{}, false
	}
	return c.Entries[0], true
}
