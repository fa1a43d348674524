package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/infra/chart"
	"github.com/aalvaropc/numlab/internal/infra/httpclient"
	"github.com/aalvaropc/numlab/internal/infra/httprunner"
	"github.com/aalvaropc/numlab/internal/infra/localrunner"
	"github.com/aalvaropc/numlab/internal/infra/logger"
	"github.com/aalvaropc/numlab/internal/infra/runstore"
	"github.com/aalvaropc/numlab/internal/infra/workspacefinder"
	"github.com/aalvaropc/numlab/internal/infra/yamlprofile"
	"github.com/aalvaropc/numlab/internal/infra/yamlstudy"
	"github.com/aalvaropc/numlab/internal/ports"
)

type workspaceCtx struct {
	root string
	cfg  domain.Config

	studies  *yamlstudy.Loader
	profiles *yamlprofile.Loader

	solver  ports.Solver
	checker ports.ProblemChecker
	store   *runstore.JSONStore
	charts  ports.ChartRenderer
}

func loadWorkspace(workspaceFlag string) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := workspacefinder.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	local := localrunner.New()
	return &workspaceCtx{
		root:     root,
		cfg:      cfg,
		studies:  yamlstudy.NewLoader(yamlstudy.WithStudiesDir(cfg.Paths.StudiesDir)),
		profiles: yamlprofile.NewLoader(root, yamlprofile.WithProfilesDir(cfg.Paths.ProfilesDir)),
		solver:   local,
		checker:  local,
		store:    runstore.NewJSONStore(root, cfg, runstore.WithIndex(true)),
		charts:   chart.New(),
	}, nil
}

// optionalWorkspace loads the workspace when one is found and falls back to
// the built-in configuration otherwise. Ad-hoc commands work anywhere.
func optionalWorkspace(workspaceFlag string) *workspaceCtx {
	ws, err := loadWorkspace(workspaceFlag)
	if err == nil {
		return ws
	}
	wd, _ := os.Getwd()
	local := localrunner.New()
	return &workspaceCtx{
		root:    wd,
		cfg:     domain.DefaultConfig(),
		solver:  local,
		checker: local,
		charts:  chart.New(),
	}
}

// useServer switches solving to a remote numlab server.
func (ws *workspaceCtx) useServer(url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	ws.solver = remoteSolver(url, ws.cfg.Server.Timeout)
}

// remoteSolver leaves the client some slack over the server's own timeout.
func remoteSolver(url string, serverTimeout time.Duration) ports.Solver {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = serverTimeout + 5*time.Second
	return httprunner.New(url, httpclient.New(cfg))
}

func (ws *workspaceCtx) chartsDir() string {
	return filepath.Join(ws.root, ws.cfg.Paths.ChartsDir)
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	locator := workspacefinder.NewFinder()
	root, err := locator.FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `numlab init`): %w", wd, err)
	}
	return root, nil
}

func resolveStudyPath(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return "", fmt.Errorf("study is required (use --study or -s)")
	}

	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	studiesDir := filepath.Join(ws.root, ws.cfg.Paths.StudiesDir)

	if hasYAMLExt(in) {
		p := filepath.Join(studiesDir, in)
		if fileExists(p) {
			return p, nil
		}
	}

	for _, ext := range []string{".yaml", ".yml"} {
		if p := filepath.Join(studiesDir, in+ext); fileExists(p) {
			return p, nil
		}
	}

	// Last resort: match by the study "name" field.
	refs, err := ws.studies.ListStudies(ws.root)
	if err == nil {
		for _, r := range refs {
			if strings.EqualFold(r.Name, in) {
				return r.Path, nil
			}
		}
	}

	return "", fmt.Errorf("study %q not found in %q", in, studiesDir)
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, string(filepath.Separator))
}

func hasYAMLExt(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// startLogging writes the JSON log under the workspace and, with console
// set, mirrors it to stderr.
func startLogging(cmd *cobra.Command, root string, console bool) func() {
	debug, _ := cmd.Flags().GetBool("debug")
	cleanup, err := logger.Setup(logger.Config{Root: root, Debug: debug, Console: console})
	if err != nil || cleanup == nil {
		return func() {}
	}
	return func() { _ = cleanup() }
}
