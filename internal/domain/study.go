package domain

// Study groups problems under one logical unit (Git-friendly).
type Study struct {
	Name string

	// Defaults apply to every problem and can be overridden per problem
	// and by the selected profile.
	Defaults Tuning

	Problems []ProblemSpec
}

// Find returns the problem with the given name.
func (s Study) Find(name string) (ProblemSpec, bool) {
	for _, p := range s.Problems {
		if p.Name == name {
			return p, true
		}
	}
	return ProblemSpec{}, false
}

// StudyRef is a lightweight reference to a study file on disk.
type StudyRef struct {
	Name string
	Path string
}

// Profile is a named set of setting overrides (e.g. "strict", "quick").
type Profile struct {
	Name   string
	Tuning Tuning
}

// ProfileRef is a lightweight reference to a profile file on disk.
type ProfileRef struct {
	Name string
	Path string
}

// WorkspaceSpec describes where a workspace should be created.
type WorkspaceSpec struct {
	Root string
}
