package usecase

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/ports"
)

type InitWorkspace struct {
	initializer ports.WorkspaceInitializer
}

func NewInitWorkspace(initializer ports.WorkspaceInitializer) *InitWorkspace {
	return &InitWorkspace{initializer: initializer}
}

// Execute scaffolds the workspace at path and returns its absolute root.
// Existing files are kept unless force is set.
func (uc *InitWorkspace) Execute(path string, force bool) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &domain.OpError{Op: "usecase.initworkspace", Kind: domain.KindInvalidConfig, Err: errors.New("workspace path is empty")}
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return "", &domain.OpError{Op: "usecase.initworkspace", Kind: domain.KindInvalidConfig, Path: path, Err: err}
	}
	if err := uc.initializer.Init(domain.WorkspaceSpec{Root: root}, force); err != nil {
		return "", err
	}
	return root, nil
}
