package ports

import "github.com/aalvaropc/numlab/internal/domain"

// ArtifactStore persists run artifacts for reproducibility.
type ArtifactStore interface {
	SaveRun(run domain.RunArtifact) (id string, err error)
}

// RunCatalog lists previously saved runs.
type RunCatalog interface {
	ListRuns() ([]domain.RunRef, error)
}
