// Package config loads tablequery settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourceDir    = "dir"
	SourceSQLite = "sqlite"
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	Source              string `yaml:"source"`
	TablesDir           string `yaml:"tables_dir"`
	Database            string `yaml:"database"`
	ContentDir          string `yaml:"content_dir"`
	ContentURL          string `yaml:"content_url"`
	DownloadDescription string `yaml:"download_description"`
	Locale              string `yaml:"locale"`
	DefaultFormat       string `yaml:"default_format"`
	LogLevel            string `yaml:"log_level"`
	LogFormat           string `yaml:"log_format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Source:              SourceDir,
		TablesDir:           "tables",
		Database:            "tables.db",
		ContentDir:          "content",
		ContentURL:          "/content",
		DownloadDescription: "Download",
		Locale:              "nl",
		DefaultFormat:       "table",
		LogLevel:            "warn",
		LogFormat:           "text",
	}
}

// Load reads path over the defaults. A missing file is not an error; the
// defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks the fields that have a closed set of values.
func (c Config) Validate() error {
	switch strings.ToLower(c.Source) {
	case SourceDir, SourceSQLite:
	default:
		return fmt.Errorf("invalid source %q (want %q or %q)", c.Source, SourceDir, SourceSQLite)
	}
	if c.Locale != "" && !strings.EqualFold(c.Locale, "nl") {
		return fmt.Errorf("unsupported locale %q", c.Locale)
	}
	return nil
}
