// Package config provides configuration file parsing for lumen.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// Config holds the user-tunable settings. Every field has a sensible
// default, so a missing or partial config file is not an error.
type Config struct {
	// IconTheme is the name of the preferred icon theme directory.
	IconTheme string `yaml:"icon_theme"`

	// IconSize is the edge length in pixels for rendered icons.
	IconSize int `yaml:"icon_size"`

	// Terminal is the emulator used to run terminal applications.
	Terminal string `yaml:"terminal"`

	// ExtraApplicationDirs are scanned in addition to the standard
	// application directories, at lower precedence.
	ExtraApplicationDirs []string `yaml:"extra_application_dirs"`

	// ResultLimit caps how many results a query returns. Zero means
	// unlimited.
	ResultLimit int `yaml:"result_limit"`

	// SimilarityFloor is the minimum similarity for a result to be kept.
	// Zero disables the cutoff entirely.
	SimilarityFloor float64 `yaml:"similarity_floor"`

	// UsageWindowDays is how far back launch history counts toward ranking.
	UsageWindowDays int `yaml:"usage_window_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		IconTheme:       "hicolor",
		IconSize:        48,
		Terminal:        "xterm",
		ResultLimit:     0,
		SimilarityFloor: 0.3,
		UsageWindowDays: 30,
	}
}

// Dir returns the lumen config directory, respecting XDG_CONFIG_HOME.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, "lumen")
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(Dir(), configFileName)
}

// Load reads the config file at Path. A missing file returns the defaults
// without an error; a malformed file is an error so silent misconfiguration
// does not change ranking or icon behavior unnoticed.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads a config file from an explicit location.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to Path, creating the directory if needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(Dir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(Path(), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.IconSize <= 0 {
		return fmt.Errorf("icon_size must be positive, got %d", c.IconSize)
	}
	if c.SimilarityFloor < 0 || c.SimilarityFloor > 1 {
		return fmt.Errorf("similarity_floor must be in [0,1], got %g", c.SimilarityFloor)
	}
	if c.UsageWindowDays < 0 {
		return fmt.Errorf("usage_window_days must not be negative, got %d", c.UsageWindowDays)
	}
	if c.ResultLimit < 0 {
		return fmt.Errorf("result_limit must not be negative, got %d", c.ResultLimit)
	}
	return nil
}
