// Package config loads the CLI configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the CLI settings. Every field has a usable default so the
// tool works without a config file.
type Config struct {
	// StorePath is the SQLite database location.
	StorePath string `yaml:"store_path"`
	// DefaultCalendar is used when a command does not name one.
	DefaultCalendar string `yaml:"default_calendar"`
	// LogLevel may be debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		StorePath: filepath.Join(home, ".upcoming", "upcoming.db"),
		LogLevel:  "info",
	}
}

// DefaultPath is where Load looks when no explicit path is given and
// UPCOMING_CONFIG is unset.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".upcoming", "config.yaml")
}

// Load reads the config file at path. An empty path falls back to
// UPCOMING_CONFIG, then DefaultPath. A missing file yields defaults; the
// UPCOMING_STORE environment variable overrides the store path either way.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("UPCOMING_CONFIG")
	}
	if path == "" {
		path = DefaultPath()
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// no file, defaults apply
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if store := os.Getenv("UPCOMING_STORE"); store != "" {
		cfg.StorePath = store
	}
	return cfg, nil
}
