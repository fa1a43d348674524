package ports

import "github.com/aalvaropc/numlab/internal/domain"

// ProfileLoader loads a named set of setting overrides.
type ProfileLoader interface {
	LoadProfile(path string) (domain.Profile, error)
}

type ProfileCatalog interface {
	ListProfiles(root string) ([]domain.ProfileRef, error)
}
