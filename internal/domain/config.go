package domain

import "time"

// Config represents the numlab configuration loaded from numlab.yaml.
type Config struct {
	Defaults DefaultsConfig
	Paths    PathsConfig
	Server   ServerConfig
}

type DefaultsConfig struct {
	Profile  string
	Settings SolveSettings
}

type PathsConfig struct {
	StudiesDir  string
	ProfilesDir string
	RunsDir     string
	ChartsDir   string
}

type ServerConfig struct {
	Addr    string
	Timeout time.Duration
}

// DefaultConfig provides sane defaults if numlab.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Defaults: DefaultsConfig{
			Settings: DefaultSettings(),
		},
		Paths: PathsConfig{
			StudiesDir:  "studies",
			ProfilesDir: "profiles",
			RunsDir:     "runs",
			ChartsDir:   "charts",
		},
		Server: ServerConfig{
			Addr:    "127.0.0.1:8086",
			Timeout: 10 * time.Second,
		},
	}
}
