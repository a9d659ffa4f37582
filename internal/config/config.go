// Package config holds pillbox client configuration, loaded from a YAML
// file with environment overrides for the values that differ per machine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all pillbox client configuration.
type Config struct {
	// DataDir is where the preference store and logs live.
	DataDir string `yaml:"data_dir"`

	// API configures the backend connection.
	API APIConfig `yaml:"api"`

	// Appearance configures the system appearance signal.
	Appearance AppearanceConfig `yaml:"appearance"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug"`
}

// APIConfig configures the backend request service.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// TimeoutDuration parses the timeout, falling back to 15s for absent or
// malformed values.
func (c APIConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// AppearanceConfig selects the appearance signal source. When WatchFile is
// set, the client follows that file for live light/dark changes; otherwise
// it probes the terminal once at startup.
type AppearanceConfig struct {
	WatchFile string `yaml:"watch_file"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		DataDir: filepath.Join(home, ".pillbox"),
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: "15s",
		},
	}
}

// Load reads the config file at path, applying defaults for absent fields
// and environment overrides last. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = Default().DataDir
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PILLBOX_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("PILLBOX_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("PILLBOX_APPEARANCE_FILE"); v != "" {
		cfg.Appearance.WatchFile = v
	}
	if os.Getenv("PILLBOX_DEBUG") == "1" {
		cfg.Debug = true
	}
}
