package config

import (
	"os"

	"github.com/aalvaropc/numlab/internal/domain"
	"gopkg.in/yaml.v3"
)

func LoadStudy(path string) (domain.Study, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Study{}, &domain.OpError{
			Op:   "config.load_study",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var dto YAMLStudy
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return domain.Study{}, &domain.OpError{
			Op:   "config.load_study",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return MapStudy(path, dto)
}

func LoadProfile(path string) (domain.Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Profile{}, &domain.OpError{
			Op:   "config.load_profile",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var dto YAMLProfile
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return domain.Profile{}, &domain.OpError{
			Op:   "config.load_profile",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return MapProfile(path, dto)
}
