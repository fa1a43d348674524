package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aalvaropc/numlab/internal/infra/runstore"
	"github.com/aalvaropc/numlab/internal/infra/workspacefinder"
	"github.com/aalvaropc/numlab/internal/infra/yamlprofile"
	"github.com/aalvaropc/numlab/internal/infra/yamlstudy"
	"github.com/aalvaropc/numlab/internal/ports"
	"github.com/aalvaropc/numlab/internal/usecase"
)

const runTimeout = 5 * time.Minute

func cmdRefreshWorkspace(deps Deps) tea.Cmd {
	return func() tea.Msg {
		wd, err := os.Getwd()
		if err != nil {
			return workspaceRefreshedMsg{found: false, err: fmt.Errorf("getwd: %w", err)}
		}
		if deps.WorkspaceLocator == nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: errors.New("WorkspaceLocator is nil")}
		}

		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr != nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: findErr}
		}
		return workspaceRefreshedMsg{cwd: wd, found: true, root: root}
	}
}

func cmdInitWorkspaceHere(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.WorkspaceInitializer == nil {
			return initWorkspaceDoneMsg{root: root, err: errors.New("WorkspaceInitializer is nil")}
		}
		abs, err := usecase.NewInitWorkspace(deps.WorkspaceInitializer).Execute(root, false)
		if err != nil {
			return initWorkspaceDoneMsg{root: root, err: err}
		}
		return initWorkspaceDoneMsg{root: abs}
	}
}

func cmdLoadStudies(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return studiesLoadedMsg{root: root, err: err}
		}
		loader := yamlstudy.NewLoader(yamlstudy.WithStudiesDir(cfg.Paths.StudiesDir))
		refs, err := loader.ListStudies(root)
		return studiesLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdLoadRuns(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return runsLoadedMsg{err: err}
		}
		refs, err := runstore.NewJSONStore(root, cfg).ListRuns()
		return runsLoadedMsg{refs: refs, err: err}
	}
}

func listenRunner(ch <-chan runnerDoneMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return runnerDoneMsg{err: errors.New("runner channel closed")}
		}
		return msg
	}
}

// startRunAsync runs a study in the background with the workspace defaults
// and saves the artifact.
func startRunAsync(workspaceRoot, studyPath string, solver ports.Solver, log *slog.Logger, debug bool) (chan runnerDoneMsg, tea.Cmd) {
	ch := make(chan runnerDoneMsg, 1)

	if log == nil {
		log = slog.Default()
	}

	go func() {
		defer close(ch)

		log.Info("tui.run.start", "workspace", workspaceRoot, "study_path", studyPath, "debug", debug)

		cfg, err := workspacefinder.LoadConfig(workspaceRoot)
		if err != nil {
			log.Error("tui.run.load_config.failed", "err", err)
			ch <- runnerDoneMsg{err: err}
			return
		}

		uc := usecase.NewRunStudy(
			yamlstudy.NewLoader(yamlstudy.WithStudiesDir(cfg.Paths.StudiesDir)),
			yamlprofile.NewLoader(workspaceRoot, yamlprofile.WithProfilesDir(cfg.Paths.ProfilesDir)),
			solver,
			runstore.NewJSONStore(workspaceRoot, cfg, runstore.WithIndex(true)),
			usecase.WithDefaults(cfg.Defaults),
			usecase.WithLogger(log),
		)

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		run, id, execErr := uc.Execute(ctx, studyPath, "")
		if execErr != nil {
			log.Error("tui.run.failed", "err", execErr, "saved_id", id)
		} else {
			log.Info("tui.run.ok", "saved_id", id, "failures", run.Failures())
		}

		ch <- runnerDoneMsg{run: run, id: id, err: execErr}
	}()

	return ch, listenRunner(ch)
}
