package runstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aalvaropc/numlab/internal/domain"
)

func sampleRun(start time.Time) domain.RunArtifact {
	root := 1.4142135
	return domain.RunArtifact{
		StudyName:   "Demo Study",
		StudyPath:   "studies/demo.yaml",
		ProfileName: "strict",
		StartedAt:   start,
		EndedAt:     start.Add(2 * time.Second),
		Results: []domain.ProblemResult{
			{
				Name:       "sqrt2",
				Method:     domain.MethodBisection,
				Settings:   domain.DefaultSettings(),
				Converged:  true,
				Root:       &root,
				Iterations: 3,
				FinalError: 0.125,
				Trace: domain.Trace{
					Columns: []string{"lower", "upper", "x", "f(x)"},
					Records: []domain.IterationRecord{
						{Iteration: 1, State: []float64{1, 2, 1.5, 0.25}, Error: 0.5},
						{Iteration: 2, State: []float64{1, 1.5, 1.25, -0.4375}, Error: 0.25},
						{Iteration: 3, State: []float64{1.25, 1.5, 1.375, -0.109375}, Error: 0.125},
					},
				},
				LatencyMS: 1,
				Assertions: []domain.AssertionResult{
					{Name: "converged", Passed: true, Message: "ok"},
				},
			},
		},
	}
}

func TestSaveRun_CreatesJSONFile(t *testing.T) {
	tmp := t.TempDir()

	cfg := domain.DefaultConfig()
	cfg.Paths.RunsDir = "runs"

	store := NewJSONStore(tmp, cfg)

	start := time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC)
	id, err := store.SaveRun(sampleRun(start))
	if err != nil {
		t.Fatalf("SaveRun error: %v", err)
	}
	if id != "20260203T101112Z_demo-study" {
		t.Fatalf("unexpected id: %q", id)
	}

	wantFile := filepath.Join(tmp, "runs", "20260203T101112Z_demo-study.json")
	b, err := os.ReadFile(wantFile)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	var decoded domain.RunResult
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.StudyName != "Demo Study" {
		t.Fatalf("expected study name, got %q", decoded.StudyName)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].Trace.Len() != 3 {
		t.Fatalf("expected full trace, got %+v", decoded.Results)
	}
	if decoded.Results[0].Root == nil || *decoded.Results[0].Root != 1.4142135 {
		t.Fatalf("expected root preserved, got %v", decoded.Results[0].Root)
	}

	if _, err := os.Stat(wantFile + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected tmp file removed, stat err=%v", err)
	}
}

func TestSaveRun_SlugFallsBackToStudyFile(t *testing.T) {
	tmp := t.TempDir()
	store := NewJSONStore(tmp, domain.DefaultConfig())

	run := sampleRun(time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC))
	run.StudyName = ""
	run.StudyPath = "studies/Linear Systems.yaml"

	id, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun error: %v", err)
	}
	if id != "20260203T101112Z_linear-systems" {
		t.Fatalf("unexpected id: %q", id)
	}
}

func TestSaveRun_ZeroStartUsesNow(t *testing.T) {
	tmp := t.TempDir()
	now := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	store := NewJSONStore(tmp, domain.DefaultConfig(), WithNow(func() time.Time { return now }))

	run := sampleRun(time.Time{})
	id, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun error: %v", err)
	}
	if id != "20260506T070809Z_demo-study" {
		t.Fatalf("unexpected id: %q", id)
	}
}

func TestSaveRun_TraceLimitKeepsNewestRecords(t *testing.T) {
	tmp := t.TempDir()
	store := NewJSONStore(tmp, domain.DefaultConfig(), WithTraceLimit(1))

	run := sampleRun(time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC))
	id, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun error: %v", err)
	}
	if run.Results[0].Trace.Len() != 3 {
		t.Fatalf("expected original run not mutated")
	}

	b, err := os.ReadFile(filepath.Join(tmp, "runs", id+".json"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var decoded domain.RunResult
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	recs := decoded.Results[0].Trace.Records
	if len(recs) != 1 || recs[0].Iteration != 3 {
		t.Fatalf("expected only iteration 3, got %+v", recs)
	}
}

func TestSaveRun_UsesUniqueFilenameOnCollision(t *testing.T) {
	tmp := t.TempDir()
	store := NewJSONStore(tmp, domain.DefaultConfig())

	run := sampleRun(time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC))

	id1, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun #1 error: %v", err)
	}
	id2, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun #2 error: %v", err)
	}
	if id2 != id1+"_2" {
		t.Fatalf("expected second id %q, got %q", id1+"_2", id2)
	}
	for _, id := range []string{id1, id2} {
		if _, err := os.Stat(filepath.Join(tmp, "runs", id+".json")); err != nil {
			t.Fatalf("expected file for %s, stat err=%v", id, err)
		}
	}
}

func TestListRuns_ReadsIndexNewestFirst(t *testing.T) {
	tmp := t.TempDir()
	store := NewJSONStore(tmp, domain.DefaultConfig(), WithIndex(true))

	older := sampleRun(time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC))
	newer := sampleRun(time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC))
	newer.Results[0].Error = &domain.RunError{Kind: domain.KindExhausted, Message: "boom"}

	if _, err := store.SaveRun(older); err != nil {
		t.Fatalf("SaveRun older: %v", err)
	}
	if _, err := store.SaveRun(newer); err != nil {
		t.Fatalf("SaveRun newer: %v", err)
	}

	refs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns error: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(refs))
	}
	if refs[0].ID != "20260204T100000Z_demo-study" {
		t.Fatalf("expected newest first, got %q", refs[0].ID)
	}
	if refs[0].Failures != 1 || refs[1].Failures != 0 {
		t.Fatalf("unexpected failures: %+v", refs)
	}
	if refs[0].Profile != "strict" || refs[0].File != refs[0].ID+".json" {
		t.Fatalf("unexpected ref: %+v", refs[0])
	}
}

func TestListRuns_MissingIndexIsEmpty(t *testing.T) {
	store := NewJSONStore(t.TempDir(), domain.DefaultConfig())

	refs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("expected no runs, got %d", len(refs))
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Demo Study":       "demo-study",
		"  Newton -- x^2 ": "newton-x-2",
		"__":               "",
		"Jacobi_3x3.v2":    "jacobi-3x3-v2",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q): expected %q, got %q", in, want, got)
		}
	}
}
