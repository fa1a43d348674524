package workspacefinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aalvaropc/numlab/internal/domain"
)

// EnvWorkspace pins the workspace root and skips the upward search.
const EnvWorkspace = "NUMLAB_WORKSPACE"

// Finder resolves the workspace root for a start directory.
type Finder struct {
	ConfigFile string
	Getenv     func(string) string
}

func NewFinder() *Finder {
	return &Finder{ConfigFile: ConfigFile, Getenv: os.Getenv}
}

// FindRoot returns the nearest ancestor of startDir (or startDir itself)
// holding a regular config file. A NUMLAB_WORKSPACE value wins when set.
func (f *Finder) FindRoot(startDir string) (string, error) {
	const op = "workspacefinder.findroot"

	if f.Getenv != nil {
		if pinned := f.Getenv(EnvWorkspace); pinned != "" {
			if !f.hasConfig(pinned) {
				return "", &domain.OpError{
					Op:   op,
					Kind: domain.KindNotFound,
					Path: pinned,
					Err:  fmt.Errorf("%s set but %s is missing: %w", EnvWorkspace, f.ConfigFile, domain.ErrNotFound),
				}
			}
			return filepath.Abs(pinned)
		}
	}

	if startDir == "" {
		return "", &domain.OpError{Op: op, Kind: domain.KindInvalidConfig, Err: errors.New("start directory is empty")}
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", &domain.OpError{Op: op, Kind: domain.KindExecution, Err: err}
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for dir = filepath.Clean(dir); ; {
		if f.hasConfig(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &domain.OpError{Op: op, Kind: domain.KindNotFound, Path: startDir, Err: domain.ErrNotFound}
		}
		dir = parent
	}
}

func (f *Finder) hasConfig(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, f.ConfigFile))
	return err == nil && info.Mode().IsRegular()
}
