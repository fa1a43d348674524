package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_WritesJSONLines(t *testing.T) {
	tmp := t.TempDir()

	cleanup, err := Setup(Config{Root: tmp})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	if err := IsReady(); err != nil {
		t.Fatalf("expected ready logger, got %v", err)
	}

	L().Info("study.start", "study", "demo")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup error: %v", err)
	}
	if IsReady() == nil {
		t.Fatalf("expected logger reset after cleanup")
	}

	b, err := os.ReadFile(filepath.Join(tmp, ".numlab", "logs", "numlab.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), b)
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["msg"] != "study.start" || rec["study"] != "demo" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if ts, _ := rec["time"].(string); !strings.HasSuffix(ts, "Z") {
		t.Fatalf("expected UTC timestamp, got %q", ts)
	}
}

func TestSetup_DebugEnablesDebugLevel(t *testing.T) {
	tmp := t.TempDir()

	cleanup, err := Setup(Config{Root: tmp, Debug: true})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	L().Debug("problem.solve")
	_ = cleanup()

	b, err := os.ReadFile(filepath.Join(tmp, ".numlab", "logs", "numlab.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "problem.solve") || !strings.Contains(string(b), `"source"`) {
		t.Fatalf("expected debug record with source, got:\n%s", b)
	}
}

func TestSetup_ConsoleMirrorsToStderr(t *testing.T) {
	tmp := t.TempDir()

	var buf bytes.Buffer
	prev := stderr
	stderr = &buf
	t.Cleanup(func() { stderr = prev })

	cleanup, err := Setup(Config{Root: tmp, Console: true})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	L().Info("http.listen", "addr", "127.0.0.1:0")
	_ = cleanup()

	if !strings.Contains(buf.String(), "http.listen") {
		t.Fatalf("expected console output, got %q", buf.String())
	}

	b, err := os.ReadFile(filepath.Join(tmp, ".numlab", "logs", "numlab.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "http.listen") {
		t.Fatalf("expected file output, got:\n%s", b)
	}
}

func TestRotate_MovesLargeLogAside(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numlab.log")
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), 64), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := rotate(path, 128); err != nil {
		t.Fatalf("rotate error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected small log kept, got %v", err)
	}

	if err := rotate(path, 32); err != nil {
		t.Fatalf("rotate error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected log moved, got %v", err)
	}
	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected previous generation, got %v", err)
	}

	if err := rotate(filepath.Join(t.TempDir(), "missing.log"), 1); err != nil {
		t.Fatalf("expected missing log ignored, got %v", err)
	}
}
