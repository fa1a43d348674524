package fsworkspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var testEntries = []string{"runs/", "charts/", ".numlab/"}

func TestMergeIgnore(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		want     string
		changed  bool
	}{
		{
			name:    "empty file",
			want:    "# numlab\nruns/\ncharts/\n.numlab/\n",
			changed: true,
		},
		{
			name:     "keeps existing lines",
			existing: "node_modules/",
			want:     "node_modules/\n\n# numlab\nruns/\ncharts/\n.numlab/\n",
			changed:  true,
		},
		{
			name:     "only missing entries",
			existing: "# numlab\nruns/\n",
			want:     "# numlab\nruns/\n\ncharts/\n.numlab/\n",
			changed:  true,
		},
		{
			name:     "nothing missing",
			existing: "runs/\n  charts/\n.numlab/\n",
			want:     "runs/\n  charts/\n.numlab/\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := mergeIgnore(tt.existing, testEntries)
			if changed != tt.changed {
				t.Fatalf("expected changed=%v, got %v", tt.changed, changed)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEnsureGitignore_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	entries := NewInitializer().ignoreEntries()

	for i := 0; i < 2; i++ {
		if err := ensureGitignore(tmp, entries); err != nil {
			t.Fatalf("ensureGitignore error: %v", err)
		}
	}

	b, err := os.ReadFile(filepath.Join(tmp, ".gitignore"))
	if err != nil {
		t.Fatalf("read .gitignore: %v", err)
	}
	s := string(b)

	if strings.Count(s, ignoreHeader) != 1 {
		t.Fatalf("expected 1 header, got:\n%s", s)
	}
	for _, w := range []string{"runs/", "charts/", ".numlab/", "profiles/*.local.yaml"} {
		if strings.Count(s, w) != 1 {
			t.Fatalf("expected .gitignore to contain %q once, got:\n%s", w, s)
		}
	}
}
