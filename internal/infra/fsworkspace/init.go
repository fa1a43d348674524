package fsworkspace

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/ports"
)

const ignoreHeader = "# numlab"

// Initializer scaffolds a workspace from the embedded templates.
type Initializer struct {
	paths domain.PathsConfig
}

func NewInitializer() *Initializer {
	return &Initializer{paths: domain.DefaultConfig().Paths}
}

var _ ports.WorkspaceInitializer = (*Initializer)(nil)

// Init creates the workspace directories and writes every template that is
// missing. With force, existing files are overwritten.
func (i *Initializer) Init(spec domain.WorkspaceSpec, force bool) error {
	root := filepath.Clean(spec.Root)

	for _, d := range []string{i.paths.StudiesDir, i.paths.ProfilesDir, i.paths.RunsDir, i.paths.ChartsDir, filepath.Join(".numlab", "logs")} {
		dir := filepath.Join(root, d)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &domain.OpError{Op: "fsworkspace.mkdir", Kind: domain.KindExecution, Path: dir, Err: err}
		}
	}

	if err := ensureGitignore(root, i.ignoreEntries()); err != nil {
		return &domain.OpError{Op: "fsworkspace.gitignore", Kind: domain.KindExecution, Path: root, Err: err}
	}

	err := fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		return writeTemplate(p, filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(p, "templates/"))), force)
	})
	if err != nil {
		return &domain.OpError{Op: "fsworkspace.templates", Kind: domain.KindExecution, Path: root, Err: err}
	}
	return nil
}

// ignoreEntries lists generated output that should stay out of version control.
func (i *Initializer) ignoreEntries() []string {
	return []string{
		path.Clean(filepath.ToSlash(i.paths.RunsDir)) + "/",
		path.Clean(filepath.ToSlash(i.paths.ChartsDir)) + "/",
		".numlab/",
		path.Clean(filepath.ToSlash(i.paths.ProfilesDir)) + "/*.local.yaml",
	}
}

func writeTemplate(src, dst string, force bool) error {
	if !force {
		if _, err := os.Stat(dst); err == nil {
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	b, err := fs.ReadFile(templatesFS, src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, b, 0o644)
}

func ensureGitignore(root string, entries []string) error {
	p := filepath.Join(root, ".gitignore")

	b, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	out, changed := mergeIgnore(string(b), entries)
	if !changed {
		return nil
	}
	return os.WriteFile(p, []byte(out), 0o644)
}

// mergeIgnore appends the entries missing from existing under a single
// numlab header. It reports whether anything was added.
func mergeIgnore(existing string, entries []string) (string, bool) {
	present := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			present[s] = true
		}
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return existing, false
	}

	var out strings.Builder
	out.WriteString(existing)
	if existing != "" {
		if !strings.HasSuffix(existing, "\n") {
			out.WriteByte('\n')
		}
		out.WriteByte('\n')
	}
	if !present[ignoreHeader] {
		out.WriteString(ignoreHeader + "\n")
	}
	for _, e := range missing {
		out.WriteString(e + "\n")
	}
	return out.String(), true
}
