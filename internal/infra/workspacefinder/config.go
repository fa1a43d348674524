package workspacefinder

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aalvaropc/numlab/internal/domain"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the workspace marker and configuration file.
const ConfigFile = "numlab.yaml"

// LoadConfig loads numlab.yaml from the workspace root and applies defaults.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, ConfigFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	invalid := func(field string, err error) error {
		return &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("field numlab.%s: %v: %w", field, err, domain.ErrInvalidConfig),
		}
	}

	// Apply parsed values on top of defaults.
	d := y.Numlab.Defaults
	if d.Profile != "" {
		cfg.Defaults.Profile = d.Profile
	}
	if d.Tolerance != nil {
		cfg.Defaults.Settings.Tolerance = *d.Tolerance
	}
	if d.MaxIterations != nil {
		cfg.Defaults.Settings.MaxIterations = *d.MaxIterations
	}
	if d.ErrorType != "" {
		et, err := domain.ParseErrorType(d.ErrorType)
		if err != nil {
			return cfg, invalid("defaults.error_type", err)
		}
		cfg.Defaults.Settings.ErrorType = et
	}
	if err := cfg.Defaults.Settings.Validate(); err != nil {
		return cfg, invalid("defaults", err)
	}

	p := y.Numlab.Paths
	if p.StudiesDir != "" {
		cfg.Paths.StudiesDir = p.StudiesDir
	}
	if p.ProfilesDir != "" {
		cfg.Paths.ProfilesDir = p.ProfilesDir
	}
	if p.RunsDir != "" {
		cfg.Paths.RunsDir = p.RunsDir
	}
	if p.ChartsDir != "" {
		cfg.Paths.ChartsDir = p.ChartsDir
	}

	s := y.Numlab.Server
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.Timeout != "" {
		dur, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return cfg, invalid("server.timeout", err)
		}
		if dur <= 0 {
			return cfg, invalid("server.timeout", fmt.Errorf("must be positive, got %s", dur))
		}
		cfg.Server.Timeout = dur
	}

	return cfg, nil
}

type yamlConfig struct {
	Numlab struct {
		Defaults struct {
			Profile       string   `yaml:"profile"`
			Tolerance     *float64 `yaml:"tolerance"`
			MaxIterations *int     `yaml:"max_iterations"`
			ErrorType     string   `yaml:"error_type"`
		} `yaml:"defaults"`

		Paths struct {
			StudiesDir  string `yaml:"studies_dir"`
			ProfilesDir string `yaml:"profiles_dir"`
			RunsDir     string `yaml:"runs_dir"`
			ChartsDir   string `yaml:"charts_dir"`
		} `yaml:"paths"`

		Server struct {
			Addr    string `yaml:"addr"`
			Timeout string `yaml:"timeout"`
		} `yaml:"server"`
	} `yaml:"numlab"`
}
