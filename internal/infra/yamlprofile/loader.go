package yamlprofile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/infra/config"
	"github.com/aalvaropc/numlab/internal/ports"
)

type Loader struct {
	rootDir     string
	profilesDir string
	localSuffix string
}

type Option func(*Loader)

func WithProfilesDir(dir string) Option {
	return func(l *Loader) { l.profilesDir = dir }
}

func NewLoader(root string, opts ...Option) *Loader {
	l := &Loader{
		rootDir:     root,
		profilesDir: "profiles",
		localSuffix: ".local.yaml",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var (
	_ ports.ProfileLoader  = (*Loader)(nil)
	_ ports.ProfileCatalog = (*Loader)(nil)
)

// LoadProfile accepts either a profile name (e.g., "strict") or a full path to a YAML file.
// A sibling <name>.local.yaml, when present, overrides individual settings.
func (l *Loader) LoadProfile(nameOrPath string) (domain.Profile, error) {
	var path string
	if strings.HasSuffix(nameOrPath, ".yaml") || strings.HasSuffix(nameOrPath, ".yml") || strings.Contains(nameOrPath, string(filepath.Separator)) {
		path = filepath.Clean(nameOrPath)
	} else {
		path = filepath.Join(l.rootDir, l.profilesDir, nameOrPath+".yaml")
	}

	base, err := config.LoadProfile(path)
	if err != nil {
		return domain.Profile{}, err
	}

	localPath := strings.TrimSuffix(path, filepath.Ext(path)) + l.localSuffix
	local, err := l.readOptional(localPath)
	if err != nil {
		return domain.Profile{}, err
	}

	return domain.Profile{
		Name:   base.Name,
		Tuning: overlay(base.Tuning, local),
	}, nil
}

func (l *Loader) ListProfiles(root string) ([]domain.ProfileRef, error) {
	dir := filepath.Join(root, l.profilesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlprofile.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.ProfileRef
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, l.localSuffix) {
			continue
		}
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		refs = append(refs, domain.ProfileRef{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(dir, name),
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func (l *Loader) readOptional(path string) (domain.Tuning, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Tuning{}, nil
		}
		return domain.Tuning{}, &domain.OpError{
			Op:   "yamlprofile.local",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	p, err := config.LoadProfile(path)
	if err != nil {
		return domain.Tuning{}, fmt.Errorf("failed to load local overrides: %w", err)
	}
	return p.Tuning, nil
}

func overlay(base, top domain.Tuning) domain.Tuning {
	if top.Tolerance != nil {
		base.Tolerance = top.Tolerance
	}
	if top.MaxIterations != nil {
		base.MaxIterations = top.MaxIterations
	}
	if top.ErrorType != nil {
		base.ErrorType = top.ErrorType
	}
	return base
}
