// Package config loads the optional project-local devsmoke configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config controls the repository layout devsmoke consumes and how built
// containers are labeled. Every field has a default matching the standard
// dev-container template repository layout.
type Config struct {
	// TemplatesDir is the segment under the project root holding one
	// directory per template id.
	TemplatesDir string `yaml:"templates_dir"`
	// TestDir is the segment under the project root holding per-template
	// smoke test directories.
	TestDir string `yaml:"test_dir"`
	// UtilsDir is the shared utilities directory under TestDir, overlaid
	// on top of every per-template test directory.
	UtilsDir string `yaml:"utils_dir"`
	// WorkspaceTestDir is the directory inside a built workspace that
	// receives the test overlay.
	WorkspaceTestDir string `yaml:"workspace_test_dir"`
	// SmokeScript is the script executed inside the running container.
	SmokeScript string `yaml:"smoke_script"`
	// LabelKey is the container label key used to find containers for a
	// template id during cleanup.
	LabelKey string `yaml:"label_key"`
	// HistoryPath, when set, enables the sqlite run-history store.
	HistoryPath string `yaml:"history_path"`
}

func DefaultConfigPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".devsmoke", "config.yaml")
}

// LoadConfig reads the config file at configPath, returning defaults when
// the file does not exist.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = "src"
	}
	if cfg.TestDir == "" {
		cfg.TestDir = "test"
	}
	if cfg.UtilsDir == "" {
		cfg.UtilsDir = "utils"
	}
	if cfg.WorkspaceTestDir == "" {
		cfg.WorkspaceTestDir = "test"
	}
	if cfg.SmokeScript == "" {
		cfg.SmokeScript = "test.sh"
	}
	if cfg.LabelKey == "" {
		cfg.LabelKey = "test-container"
	}

	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		TemplatesDir:     "src",
		TestDir:          "test",
		UtilsDir:         "utils",
		WorkspaceTestDir: "test",
		SmokeScript:      "test.sh",
		LabelKey:         "test-container",
	}
}
