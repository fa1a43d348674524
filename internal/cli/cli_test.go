package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/infra/fsworkspace"
)

// --- looksLikePath ---

func TestLooksLikePath(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"demo", false},
		{"demo.yaml", false},
		{"./demo.yaml", true},
		{"studies/demo.yaml", true},
		{"/abs/path/demo.yaml", true},
	}
	for _, c := range cases {
		if got := looksLikePath(c.input); got != c.want {
			t.Errorf("looksLikePath(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

// --- hasYAMLExt ---

func TestHasYAMLExt(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"demo.yaml", true},
		{"demo.yml", true},
		{"DEMO.YAML", true},
		{"demo.json", false},
		{"demo", false},
		{"", false},
	}
	for _, c := range cases {
		if got := hasYAMLExt(c.input); got != c.want {
			t.Errorf("hasYAMLExt(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

// --- fileExists ---

func TestFileExists(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "exists.txt")
	if err := os.WriteFile(p, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !fileExists(p) {
		t.Errorf("expected fileExists=true for %s", p)
	}
	if fileExists(filepath.Join(tmp, "not_there.txt")) {
		t.Error("expected fileExists=false for non-existent file")
	}
}

// --- parsing ---

func TestParseVector(t *testing.T) {
	cases := []struct {
		input   string
		want    []float64
		wantErr bool
	}{
		{"1,2", []float64{1, 2}, false},
		{" 1.5 , -2e-1 ,", []float64{1.5, -0.2}, false},
		{"", nil, true},
		{"1,x", nil, true},
	}
	for _, c := range cases {
		got, err := parseVector(c.input)
		if (err != nil) != c.wantErr {
			t.Fatalf("parseVector(%q): unexpected error state: %v", c.input, err)
		}
		if !c.wantErr && !reflect.DeepEqual(got, c.want) {
			t.Errorf("parseVector(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestParseMatrix(t *testing.T) {
	got, err := parseMatrix("4,-1; -1,4;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]float64{{4, -1}, {-1, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if _, err := parseMatrix("1,2;3,a"); err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("expected row 2 error, got %v", err)
	}
}

func TestReadSystem(t *testing.T) {
	p := filepath.Join(t.TempDir(), "system.yaml")
	content := "a:\n  - [4, 1]\n  - [1, 3]\nb: [1, 2]\nomega: 1.2\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	sys, err := readSystem(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sys.A) != 2 || sys.B[1] != 2 || sys.Omega == nil || *sys.Omega != 1.2 {
		t.Fatalf("unexpected system: %+v", sys)
	}

	if _, err := readSystem(filepath.Join(t.TempDir(), "missing.yaml")); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

// --- printRun ---

func sampleRun() domain.RunResult {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	root := 1.25
	return domain.RunResult{
		StudyName:   "Demo",
		ProfileName: "strict",
		StartedAt:   now,
		EndedAt:     now.Add(100 * time.Millisecond),
		Results: []domain.ProblemResult{
			{
				Name:       "sqrt2",
				Method:     domain.MethodNewton,
				Settings:   domain.DefaultSettings(),
				Converged:  true,
				Root:       &root,
				Iterations: 5,
				Trace: domain.Trace{
					Columns: []string{"x", "f(x)", "f'(x)"},
					Records: []domain.IterationRecord{{Iteration: 1, State: []float64{1.5, 0.25, 3}, Error: 0.5}},
				},
				Assertions: []domain.AssertionResult{
					{Name: "converged", Passed: true, Message: "converged=true"},
					{Name: "max_iterations", Passed: false, Message: "expected iterations <= 3, got 5"},
				},
			},
			{
				Name:     "flat",
				Method:   domain.MethodSecant,
				Settings: domain.DefaultSettings(),
				Error:    &domain.RunError{Kind: domain.KindDegenerate, Message: "secant step is flat"},
			},
		},
	}
}

func TestPrintRun_JSON_ValidOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := printRun(&buf, sampleRun(), "abc123", "json", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if payload["run_id"] != "abc123" {
		t.Errorf("expected run_id=abc123, got %v", payload["run_id"])
	}
	if payload["run"] == nil {
		t.Error("expected 'run' key in JSON output")
	}
}

func TestPrintRun_Pretty(t *testing.T) {
	var buf bytes.Buffer
	if err := printRun(&buf, sampleRun(), "run-42", "pretty", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Demo",
		"run-42",
		"[FAIL] sqrt2 (newton)",
		"root: 1.25",
		"1 pass / 1 fail",
		"secant step is flat (numeric_degeneracy)",
		"2 problem(s), 2 failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in pretty output, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "f'(x)") {
		t.Errorf("expected no trace without --trace, got:\n%s", out)
	}
}

func TestPrintRun_Trace(t *testing.T) {
	var buf bytes.Buffer
	if err := printRun(&buf, sampleRun(), "", "", true); err != nil {
		t.Fatalf("empty format should behave like pretty, got error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "f'(x)") || !strings.Contains(out, "error") {
		t.Errorf("expected trace table headers, got:\n%s", out)
	}
}

func TestPrintRun_UnknownFormat_ReturnsError(t *testing.T) {
	var buf bytes.Buffer
	err := printRun(&buf, domain.RunResult{}, "", "xml", false)
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "xml") {
		t.Errorf("expected error to mention format, got: %v", err)
	}
}

func TestCountAssertionPassFail(t *testing.T) {
	pass, fail := countAssertionPassFail([]domain.AssertionResult{{Passed: true}, {Passed: false}, {Passed: true}})
	if pass != 2 || fail != 1 {
		t.Errorf("expected pass=2 fail=1, got pass=%d fail=%d", pass, fail)
	}
}

func TestPrintComparison(t *testing.T) {
	root := 1.41421356
	cmp := domain.Comparison{
		Problem:  "sqrt2",
		Settings: domain.DefaultSettings(),
		Entries: []domain.ComparisonEntry{
			{Method: domain.MethodNewton, Converged: true, Root: &root, Iterations: 5},
			{Method: domain.MethodFixedPoint, Error: &domain.RunError{Kind: domain.KindInvalidConfig}},
		},
	}

	var buf bytes.Buffer
	if err := printComparison(&buf, cmp, "pretty"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Best: newton") {
		t.Errorf("expected best method, got:\n%s", out)
	}
	if !strings.Contains(out, "invalid_config") {
		t.Errorf("expected failure kind, got:\n%s", out)
	}
}

func TestDescribeExpr(t *testing.T) {
	at := 2.0
	var buf bytes.Buffer
	if err := describeExpr(&buf, "x^2", &at, "pretty"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "f(2) = 4") {
		t.Errorf("expected value line, got:\n%s", out)
	}

	if err := describeExpr(&buf, "\\sinh(x)", nil, "pretty"); err == nil {
		t.Fatal("expected sinh to be rejected")
	}
}

func TestDescribeExpr_NonFiniteValue(t *testing.T) {
	at := -1.0
	tests := []struct {
		format string
		want   string
	}{
		{"json", `"value_error"`},
		{"pretty", "f(-1) is undefined"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := describeExpr(&buf, "\\sqrt{x}", &at, tt.format); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.format, err)
		}
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("%s: expected %q in output, got:\n%s", tt.format, tt.want, buf.String())
		}
		if tt.format == "json" && !json.Valid(buf.Bytes()) {
			t.Errorf("expected valid JSON, got:\n%s", buf.String())
		}
	}
}

// --- command structure ---

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, expected := range []string{
		"init", "run", "validate", "compare", "root", "linear", "expr",
		"serve", "studies", "profiles", "runs", "version",
	} {
		if !names[expected] {
			t.Errorf("expected subcommand %q to be registered", expected)
		}
	}
}

func TestRunCmd_Flags(t *testing.T) {
	cmd := runCmd()
	if cmd.Use != "run" {
		t.Errorf("expected Use=run, got %q", cmd.Use)
	}
	for _, flag := range []string{"study", "profile", "workspace", "server", "no-save", "format", "trace", "chart"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag on run command", flag)
		}
	}
}

func TestRootFindCmd_Flags(t *testing.T) {
	cmd := rootFindCmd()
	for _, flag := range []string{"f", "g", "a", "b", "x0", "x1", "multiple", "tol", "max-iter", "error-type", "server"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag on root command", flag)
		}
	}
}

func TestListCommands_HaveListSubcommand(t *testing.T) {
	for name, parent := range map[string]func() []string{
		"studies":  func() []string { return subNames(studiesCmd().Commands()) },
		"profiles": func() []string { return subNames(profilesCmd().Commands()) },
		"runs":     func() []string { return subNames(runsCmd().Commands()) },
	} {
		found := false
		for _, n := range parent() {
			if n == "list" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected 'list' subcommand under %s", name)
		}
	}
}

func TestInitCmd_Flags(t *testing.T) {
	cmd := initCmd()
	if cmd.Flags().Lookup("path") == nil {
		t.Error("expected --path flag on init command")
	}
	if cmd.Flags().Lookup("force") == nil {
		t.Error("expected --force flag on init command")
	}
}

// --- resolveWorkspaceRoot ---

func TestResolveWorkspaceRoot_ExplicitPath(t *testing.T) {
	tmp := t.TempDir()
	got, err := resolveWorkspaceRoot(tmp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != tmp {
		t.Errorf("expected %q, got %q", tmp, got)
	}
}

func TestResolveWorkspaceRoot_RelativePath(t *testing.T) {
	got, err := resolveWorkspaceRoot(".")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}
}

// --- against a real workspace ---

func newWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := fsworkspace.NewInitializer().Init(domain.WorkspaceSpec{Root: root}, false); err != nil {
		t.Fatalf("init workspace: %v", err)
	}
	return root
}

func TestResolveStudyPath(t *testing.T) {
	root := newWorkspace(t)
	ws, err := loadWorkspace(root)
	if err != nil {
		t.Fatalf("loadWorkspace: %v", err)
	}

	want := filepath.Join(root, "studies", "demo.yaml")
	for _, in := range []string{"demo", "demo.yaml", "Demo", "studies/demo.yaml"} {
		got, err := resolveStudyPath(ws, in)
		if err != nil {
			t.Fatalf("resolveStudyPath(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("resolveStudyPath(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := resolveStudyPath(ws, "nope"); err == nil {
		t.Fatal("expected error for unknown study")
	}
}

func TestValidateCommand(t *testing.T) {
	root := newWorkspace(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"validate", "-w", root, "-s", "demo"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
}

func TestRootCommand_SolvesAdHoc(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"root", "bisection", "-w", t.TempDir(), "--f", "x^2 - 2", "--a", "1", "--b", "2", "--tol", "1e-6", "--format", "json"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("root failed: %v", err)
	}
}

func TestRootCommand_ReportsFailure(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"root", "bisection", "-w", t.TempDir(), "--f", "x^2 + 1", "--a", "-1", "--b", "1"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "precondition") {
		t.Fatalf("expected precondition failure, got %v", err)
	}
}

func TestLinearCommand_RejectsRootMethod(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"linear", "newton", "--a", "4,1;1,3", "--b", "1,2"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for non-linear method")
	}
}

func subNames(cmds []*cobra.Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Name()
	}
	return out
}
