package ports

import "github.com/aalvaropc/numlab/internal/domain"

// ChartRenderer draws convergence charts for a run and returns the written files.
type ChartRenderer interface {
	RenderRun(run domain.RunResult, dir string) ([]string, error)
}
