package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath("/repo")
	assert.Equal(t, filepath.Join("/repo", ".devsmoke", "config.yaml"), path)
}

func TestLoadConfig_NotFound(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "src", cfg.TemplatesDir)
	assert.Equal(t, "test", cfg.TestDir)
	assert.Equal(t, "utils", cfg.UtilsDir)
	assert.Equal(t, "test", cfg.WorkspaceTestDir)
	assert.Equal(t, "test.sh", cfg.SmokeScript)
	assert.Equal(t, "test-container", cfg.LabelKey)
	assert.Empty(t, cfg.HistoryPath)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("templates_dir: [broken"), 0644)
	require.NoError(t, err)

	_, err = LoadConfig(configPath)
	assert.Error(t, err)
}

func TestLoadConfig_Valid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
templates_dir: templates
label_key: smoke-test
history_path: .devsmoke/history.db
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "templates", cfg.TemplatesDir)
	assert.Equal(t, "smoke-test", cfg.LabelKey)
	assert.Equal(t, ".devsmoke/history.db", cfg.HistoryPath)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("smoke_script: smoke.sh\n"), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "smoke.sh", cfg.SmokeScript)
	assert.Equal(t, "src", cfg.TemplatesDir)
	assert.Equal(t, "test-container", cfg.LabelKey)
}
