package tui

import "github.com/aalvaropc/numlab/internal/domain"

type workspaceRefreshedMsg struct {
	cwd   string
	found bool
	root  string
	err   error
}

type initWorkspaceDoneMsg struct {
	root string
	err  error
}

type studiesLoadedMsg struct {
	root string
	refs []domain.StudyRef
	err  error
}

type runsLoadedMsg struct {
	refs []domain.RunRef
	err  error
}

type runnerDoneMsg struct {
	run domain.RunResult
	id  string
	err error
}
