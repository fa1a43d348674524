package runstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/ports"
)

const (
	defaultRunsDir = "runs"
	indexFile      = "index.jsonl"
)

type JSONStore struct {
	rootDir     string
	runsDirName string
	writeIndex  bool
	traceLimit  int
	now         func() time.Time
}

type Option func(*JSONStore)

// WithIndex enables a simple JSONL index: runs/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithTraceLimit keeps only the newest n records of each trace. Zero keeps
// everything.
func WithTraceLimit(n int) Option {
	return func(s *JSONStore) {
		if n >= 0 {
			s.traceLimit = n
		}
	}
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

func NewJSONStore(root string, cfg domain.Config, opts ...Option) *JSONStore {
	runsDir := cfg.Paths.RunsDir
	if strings.TrimSpace(runsDir) == "" {
		runsDir = defaultRunsDir
	}

	s := &JSONStore{
		rootDir:     root,
		runsDirName: runsDir,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	_ ports.ArtifactStore = (*JSONStore)(nil)
	_ ports.RunCatalog    = (*JSONStore)(nil)
)

func (s *JSONStore) SaveRun(run domain.RunArtifact) (string, error) {
	dir := filepath.Join(s.rootDir, s.runsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	ts := run.StartedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	toSave := run
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = ts
	}
	studyPart := run.StudyName
	if strings.TrimSpace(studyPart) == "" {
		studyPart = strings.TrimSuffix(filepath.Base(run.StudyPath), filepath.Ext(run.StudyPath))
	}
	slug := slugify(studyPart)
	if slug == "" {
		slug = "run"
	}

	id := uniqueID(dir, fmt.Sprintf("%s_%s", ts.Format("20060102T150405Z"), slug))
	filename := id + ".json"
	path := filepath.Join(dir, filename)

	if s.traceLimit > 0 {
		toSave = trimTraces(toSave, s.traceLimit)
	}

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "runstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "runstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(dir, domain.RunRef{
			ID:        id,
			File:      filename,
			Study:     run.StudyName,
			Profile:   run.ProfileName,
			StartedAt: toSave.StartedAt,
			Failures:  run.Failures(),
		})
	}

	return id, nil
}

// ListRuns reads the index, newest first. A missing index yields no runs.
func (s *JSONStore) ListRuns() ([]domain.RunRef, error) {
	path := filepath.Join(s.rootDir, s.runsDirName, indexFile)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &domain.OpError{Op: "runstore.list", Kind: domain.KindExecution, Path: path, Err: err}
	}
	defer f.Close()

	var out []domain.RunRef
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ref domain.RunRef
		if err := json.Unmarshal([]byte(line), &ref); err != nil {
			// Skip lines from a torn append.
			continue
		}
		out = append(out, ref)
	}
	if err := sc.Err(); err != nil {
		return nil, &domain.OpError{Op: "runstore.list", Kind: domain.KindExecution, Path: path, Err: err}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (s *JSONStore) appendIndex(dir string, ref domain.RunRef) error {
	line, err := json.Marshal(ref)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, indexFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

// uniqueID appends _2, _3, ... until no file with that id exists.
func uniqueID(dir, base string) string {
	id := base
	for n := 2; ; n++ {
		if _, err := os.Stat(filepath.Join(dir, id+".json")); errors.Is(err, os.ErrNotExist) {
			return id
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

// trimTraces returns a copy whose traces keep at most the newest n records
// (does NOT mutate the input).
func trimTraces(run domain.RunArtifact, n int) domain.RunArtifact {
	out := run
	out.Results = make([]domain.ProblemResult, len(run.Results))
	for i, pr := range run.Results {
		c := pr
		if k := len(pr.Trace.Records); k > n {
			c.Trace.Records = append([]domain.IterationRecord(nil), pr.Trace.Records[k-n:]...)
		}
		out.Results[i] = c
	}
	return out
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
