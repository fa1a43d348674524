package tui

import (
	"log/slog"

	"github.com/aalvaropc/numlab/internal/infra/localrunner"
	"github.com/aalvaropc/numlab/internal/ports"
)

type Deps struct {
	WorkspaceLocator     ports.WorkspaceLocator
	WorkspaceInitializer ports.WorkspaceInitializer

	// Solver runs study problems. Nil means the in-process engines.
	Solver ports.Solver

	Logger *slog.Logger
	Debug  bool
}

func (d Deps) solver() ports.Solver {
	if d.Solver != nil {
		return d.Solver
	}
	return localrunner.New()
}
