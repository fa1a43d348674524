package workspacefinder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aalvaropc/numlab/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "ws")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ConfigFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return root
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	// Partial config (only the profile)
	root := writeConfig(t, "numlab:\n  defaults:\n    profile: strict\n")

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Defaults.Profile != "strict" {
		t.Fatalf("expected profile=strict, got=%s", cfg.Defaults.Profile)
	}
	if cfg.Defaults.Settings != domain.DefaultSettings() {
		t.Fatalf("expected default settings, got=%+v", cfg.Defaults.Settings)
	}
	if cfg.Paths.StudiesDir != "studies" {
		t.Fatalf("expected studies dir=studies, got=%s", cfg.Paths.StudiesDir)
	}
	if cfg.Paths.ProfilesDir != "profiles" {
		t.Fatalf("expected profiles dir=profiles, got=%s", cfg.Paths.ProfilesDir)
	}
	if cfg.Paths.RunsDir != "runs" {
		t.Fatalf("expected runs dir=runs, got=%s", cfg.Paths.RunsDir)
	}
	if cfg.Server.Timeout != 10*time.Second {
		t.Fatalf("expected timeout=10s, got=%s", cfg.Server.Timeout)
	}
}

func TestLoadConfig_OverridesEverything(t *testing.T) {
	root := writeConfig(t, `numlab:
  defaults:
    tolerance: 1.0e-9
    max_iterations: 250
    error_type: rel
  paths:
    studies_dir: s
    profiles_dir: p
    runs_dir: r
    charts_dir: c
  server:
    addr: ":9000"
    timeout: 3s
`)

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	want := domain.SolveSettings{Tolerance: 1e-9, MaxIterations: 250, ErrorType: domain.ErrorRelative}
	if cfg.Defaults.Settings != want {
		t.Fatalf("expected %+v, got %+v", want, cfg.Defaults.Settings)
	}
	if cfg.Paths.StudiesDir != "s" || cfg.Paths.ProfilesDir != "p" || cfg.Paths.RunsDir != "r" || cfg.Paths.ChartsDir != "c" {
		t.Fatalf("unexpected paths %+v", cfg.Paths)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.Timeout != 3*time.Second {
		t.Fatalf("unexpected server %+v", cfg.Server)
	}
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	cases := []struct {
		content string
		field   string
	}{
		{"numlab:\n  defaults:\n    error_type: percent\n", "defaults.error_type"},
		{"numlab:\n  defaults:\n    max_iterations: 5000\n", "defaults"},
		{"numlab:\n  server:\n    timeout: soon\n", "server.timeout"},
		{"numlab:\n  server:\n    timeout: -1s\n", "server.timeout"},
	}
	for _, c := range cases {
		root := writeConfig(t, c.content)
		_, err := LoadConfig(root)
		if !domain.IsKind(err, domain.KindInvalidConfig) {
			t.Fatalf("expected invalid config for %q, got %v", c.content, err)
		}
		if !strings.Contains(err.Error(), c.field) {
			t.Fatalf("expected field %s in error, got %v", c.field, err)
		}
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}
