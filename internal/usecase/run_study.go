package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/ports"
	ucassert "github.com/aalvaropc/numlab/internal/usecase/assert"
)

type RunStudy struct {
	studies  ports.StudyLoader
	profiles ports.ProfileLoader
	solver   ports.Solver
	store    ports.ArtifactStore
	defaults domain.DefaultsConfig
	log      *slog.Logger
}

type RunOption func(*RunStudy)

// WithDefaults sets the workspace defaults every study starts from.
func WithDefaults(d domain.DefaultsConfig) RunOption {
	return func(uc *RunStudy) { uc.defaults = d }
}

func WithLogger(l *slog.Logger) RunOption {
	return func(uc *RunStudy) {
		if l != nil {
			uc.log = l
		}
	}
}

// NewRunStudy wires the run. A nil store disables saving and a nil profile
// loader rejects any profile.
func NewRunStudy(sl ports.StudyLoader, pl ports.ProfileLoader, solver ports.Solver, store ports.ArtifactStore, opts ...RunOption) *RunStudy {
	uc := &RunStudy{
		studies:  sl,
		profiles: pl,
		solver:   solver,
		store:    store,
		defaults: domain.DefaultsConfig{Settings: domain.DefaultSettings()},
		log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute solves every problem of the study in order. An empty profile falls
// back to the workspace default profile, if any.
//
// Problem failures are recorded on their results and do not stop the run.
// Cancellation does: the partial run is returned with the context error.
func (uc *RunStudy) Execute(ctx context.Context, studyPath string, profile string) (domain.RunResult, string, error) {
	st, err := uc.studies.LoadStudy(studyPath)
	if err != nil {
		return domain.RunResult{}, "", err
	}

	prof, err := uc.loadProfile(profile)
	if err != nil {
		return domain.RunResult{}, "", err
	}

	run := domain.RunResult{
		StudyName:   st.Name,
		StudyPath:   studyPath,
		ProfileName: prof.Name,
		StartedAt:   time.Now(),
		Results:     make([]domain.ProblemResult, 0, len(st.Problems)),
	}
	uc.log.Info("study.start", "study", st.Name, "profile", prof.Name, "problems", len(st.Problems))

	for _, p := range st.Problems {
		if err := ctx.Err(); err != nil {
			run.EndedAt = time.Now()
			uc.log.Warn("study.canceled", "study", st.Name, "completed", len(run.Results))
			return run, "", err
		}

		pr := uc.solve(ctx, st, prof, p)
		if pr.Failed() {
			attrs := []any{"problem", pr.Name, "method", pr.Method}
			if pr.Error != nil {
				attrs = append(attrs, "kind", pr.Error.Kind, "error", pr.Error.Message)
			}
			uc.log.Warn("problem.failed", attrs...)
		} else {
			uc.log.Debug("problem.solved", "problem", pr.Name, "iterations", pr.Iterations, "final_error", pr.FinalError)
		}
		run.Results = append(run.Results, pr)
	}

	run.EndedAt = time.Now()
	uc.log.Info("study.done", "study", st.Name, "failures", run.Failures(), "duration_ms", run.EndedAt.Sub(run.StartedAt).Milliseconds())

	if uc.store == nil {
		return run, "", nil
	}
	id, err := uc.store.SaveRun(run)
	if err != nil {
		return run, "", err
	}
	uc.log.Info("run.saved", "id", id)
	return run, id, nil
}

func (uc *RunStudy) solve(ctx context.Context, st domain.Study, prof domain.Profile, p domain.ProblemSpec) domain.ProblemResult {
	s, err := ResolveSettings(uc.defaults.Settings, st.Defaults, p.Tuning, prof.Tuning)
	if err != nil {
		return failed(p, s, err)
	}

	pr, err := uc.solver.Solve(ctx, p, s)
	if err != nil {
		return failed(p, s, err)
	}

	pr.Assertions = ucassert.Evaluate(p.Assert, pr)
	return pr
}

func (uc *RunStudy) loadProfile(name string) (domain.Profile, error) {
	if name == "" {
		name = uc.defaults.Profile
	}
	if name == "" {
		return domain.Profile{}, nil
	}
	if uc.profiles == nil {
		return domain.Profile{}, &domain.OpError{
			Op:   "usecase.run_study",
			Kind: domain.KindInvalidConfig,
			Path: name,
			Err:  domain.ErrInvalidConfig,
		}
	}
	return uc.profiles.LoadProfile(name)
}

// ResolveSettings applies tunings in order over base: later tunings win.
func ResolveSettings(base domain.SolveSettings, tunings ...domain.Tuning) (domain.SolveSettings, error) {
	s := base
	for _, t := range tunings {
		s = s.Apply(t)
	}
	if err := s.Validate(); err != nil {
		return s, &domain.OpError{Op: "usecase.settings", Kind: domain.KindInvalidConfig, Err: err}
	}
	return s, nil
}

func failed(p domain.ProblemSpec, s domain.SolveSettings, err error) domain.ProblemResult {
	return domain.ProblemResult{
		Name:     p.Name,
		Method:   p.Method,
		Settings: s,
		Trace:    domain.Trace{Records: []domain.IterationRecord{}},
		Error:    domain.NewRunError(err),
	}
}
