package ports

import "github.com/aalvaropc/numlab/internal/domain"

// StudyLoader loads studies from a source (e.g., filesystem).
type StudyLoader interface {
	LoadStudy(path string) (domain.Study, error)
	ListStudies(root string) ([]domain.StudyRef, error)
}
