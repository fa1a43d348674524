package yamlstudy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aalvaropc/numlab/internal/domain"
)

func TestLoadStudy_Valid(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "demo.yaml")

	content := []byte(`
name: Demo
defaults:
  tolerance: 1.0e-6
problems:
  - name: sqrt2
    method: newton
    f: "x^2 - 2"
    x0: 1
    assert:
      converged: true
      max_iterations: 10
`)
	if err := os.WriteFile(p, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := NewLoader()
	st, err := l.LoadStudy(p)
	if err != nil {
		t.Fatalf("LoadStudy error: %v", err)
	}

	if st.Name != "Demo" {
		t.Fatalf("expected name=Demo, got=%s", st.Name)
	}
	if len(st.Problems) != 1 {
		t.Fatalf("expected 1 problem, got=%d", len(st.Problems))
	}
	if st.Problems[0].Root == nil || *st.Problems[0].Root.X0 != 1 {
		t.Fatalf("expected x0=1 to map")
	}
	if st.Problems[0].Assert.MaxIterations == nil || *st.Problems[0].Assert.MaxIterations != 10 {
		t.Fatalf("expected max_iterations assertion to map")
	}
}

func TestLoadStudy_InvalidMethod(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "bad.yaml")

	content := []byte(`
name: Demo
problems:
  - name: p
    method: golden_section
    f: "x"
`)
	if err := os.WriteFile(p, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := NewLoader().LoadStudy(p)
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestLoadStudy_MalformedYAML(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "bad.yaml")
	if err := os.WriteFile(p, []byte("name: [unterminated\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := NewLoader().LoadStudy(p)
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestListStudies_SortedWithFallbackNames(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "cases")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files := map[string]string{
		"b.yaml":    "name: Zeta\n",
		"a.yml":     "problems: []\n",
		"notes.txt": "ignored",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	refs, err := NewLoader(WithStudiesDir("cases")).ListStudies(root)
	if err != nil {
		t.Fatalf("ListStudies error: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 studies, got %d", len(refs))
	}
	if refs[0].Name != "Zeta" || refs[1].Name != "a" {
		t.Fatalf("expected [Zeta a], got [%s %s]", refs[0].Name, refs[1].Name)
	}
}

func TestListStudies_MissingDir(t *testing.T) {
	_, err := NewLoader().ListStudies(t.TempDir())
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
