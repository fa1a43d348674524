package yamlstudy

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/infra/config"
	"github.com/aalvaropc/numlab/internal/ports"
	"gopkg.in/yaml.v3"
)

type Loader struct {
	studiesDir string
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{studiesDir: "studies"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type Option func(*Loader)

func WithStudiesDir(dir string) Option {
	return func(l *Loader) { l.studiesDir = dir }
}

var _ ports.StudyLoader = (*Loader)(nil)

func (l *Loader) LoadStudy(path string) (domain.Study, error) {
	return config.LoadStudy(path)
}

func (l *Loader) ListStudies(root string) ([]domain.StudyRef, error) {
	dir := filepath.Join(root, l.studiesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlstudy.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.StudyRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		p := filepath.Join(dir, name)
		n, _ := readStudyName(p)
		if strings.TrimSpace(n) == "" {
			n = strings.TrimSuffix(name, filepath.Ext(name))
		}

		refs = append(refs, domain.StudyRef{Name: n, Path: p})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func readStudyName(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var v struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(b, &v); err != nil {
		return "", err
	}
	return v.Name, nil
}
