package ports

import "github.com/aalvaropc/numlab/internal/domain"

// WorkspaceLocator resolves the root holding numlab.yaml for a directory
// inside it.
type WorkspaceLocator interface {
	FindRoot(startDir string) (string, error)
}

// WorkspaceInitializer writes the directories and template files of a new
// workspace.
type WorkspaceInitializer interface {
	Init(spec domain.WorkspaceSpec, force bool) error
}
