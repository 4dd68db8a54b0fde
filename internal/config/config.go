// Package config defines the host's on-disk YAML configuration, loaded
// at startup and optionally hot-reloaded by internal/hostcfg.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend selects the persistence implementation.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

// Config is the full host configuration.
type Config struct {
	ReferenceDirectory  string        `yaml:"reference_directory"`
	PersistentDirectory string        `yaml:"persistent_directory"`
	BaseHubFiles        []string      `yaml:"base_hub_files"`
	Workers             int           `yaml:"workers"`
	PollInterval        time.Duration `yaml:"poll_interval"`
	Backend             Backend       `yaml:"persistent_backend"`
	TrackWrittenFileEdges bool        `yaml:"track_written_file_edges"`
	HTTPAddr            string        `yaml:"http_addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ReferenceDirectory:  ".",
		PersistentDirectory: ".pipewatch",
		Workers:             0,
		PollInterval:        250 * time.Millisecond,
		Backend:             BackendJSON,
		HTTPAddr:            "127.0.0.1:7787",
	}
}

// Load reads and parses a YAML config file, filling in defaults for any
// field the file omits.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = Default().PollInterval
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendJSON
	}
	return cfg, nil
}
