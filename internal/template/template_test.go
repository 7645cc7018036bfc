package template

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devsmoke/pkg/actionerr"
)

func writeWorkspace(t *testing.T, descriptor string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DescriptorName), []byte(descriptor), 0644))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "${templateOption:imageVariant}", Placeholder("imageVariant"))
}

func TestLoadDescriptor_Missing(t *testing.T) {
	_, err := LoadDescriptor(t.TempDir())
	require.Error(t, err)

	actionErr, ok := actionerr.As(err)
	require.True(t, ok)
	assert.Equal(t, actionerr.ReasonMissingPath, actionErr.Reason)
}

func TestLoadDescriptor_WithComments(t *testing.T) {
	dir := writeWorkspace(t, `{
	// The template id.
	"id": "go",
	"options": {
		"imageVariant": { "type": "string", "default": "1.22-bookworm" },
	}
}`, nil)

	desc, err := LoadDescriptor(dir)
	require.NoError(t, err)
	assert.Equal(t, "go", desc.ID)
	assert.Equal(t, "1.22-bookworm", desc.Options["imageVariant"].Default)
}

func TestConfigureOptions_NoOptionsIsNoop(t *testing.T) {
	dir := writeWorkspace(t, `{"id": "alpine"}`, map[string]string{
		"Dockerfile": "FROM ${templateOption:imageVariant}\n",
	})

	require.NoError(t, ConfigureOptions(dir))

	data, err := os.ReadFile(filepath.Join(dir, "Dockerfile"))
	require.NoError(t, err)
	assert.Equal(t, "FROM ${templateOption:imageVariant}\n", string(data))
}

func TestConfigureOptions_SubstitutesAllTokens(t *testing.T) {
	dir := writeWorkspace(t, `{
	"id": "ubuntu",
	"options": {
		"imageVariant": { "type": "string", "default": "jammy" },
		"installZsh": { "type": "boolean", "default": true },
		"upgradePackages": { "type": "boolean", "default": false },
		"timeout": { "type": "string", "default": 30 }
	}
}`, map[string]string{
		".devcontainer/devcontainer.json": `{
	"image": "ubuntu-${templateOption:imageVariant}",
	"features": { "zsh": "${templateOption:installZsh}" }
}`,
		".devcontainer/Dockerfile": "ARG UPGRADE=${templateOption:upgradePackages}\nARG TIMEOUT=${templateOption:timeout}\n",
	})

	require.NoError(t, ConfigureOptions(dir))

	devcontainer, err := os.ReadFile(filepath.Join(dir, ".devcontainer", "devcontainer.json"))
	require.NoError(t, err)
	assert.Contains(t, string(devcontainer), "ubuntu-jammy")
	assert.Contains(t, string(devcontainer), `"zsh": "true"`)
	assert.NotContains(t, string(devcontainer), "${templateOption:")

	dockerfile, err := os.ReadFile(filepath.Join(dir, ".devcontainer", "Dockerfile"))
	require.NoError(t, err)
	assert.Equal(t, "ARG UPGRADE=false\nARG TIMEOUT=30\n", string(dockerfile))
}

func TestConfigureOptions_DescriptorItselfIsSubstituted(t *testing.T) {
	dir := writeWorkspace(t, `{
	"id": "go",
	"name": "Go (${templateOption:imageVariant})",
	"options": {
		"imageVariant": { "type": "string", "default": "1.22" }
	}
}`, nil)

	require.NoError(t, ConfigureOptions(dir))

	data, err := os.ReadFile(filepath.Join(dir, DescriptorName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Go (1.22)")
}

func TestConfigureOptions_MissingDefault(t *testing.T) {
	dir := writeWorkspace(t, `{
	"id": "go",
	"options": {
		"imageVariant": { "type": "string" }
	}
}`, nil)

	err := ConfigureOptions(dir)
	require.Error(t, err)

	actionErr, ok := actionerr.As(err)
	require.True(t, ok)
	assert.Equal(t, actionerr.ReasonBadOption, actionErr.Reason)
	assert.Contains(t, actionErr.Message, "imageVariant")
}

func TestConfigureOptions_BlankDefault(t *testing.T) {
	dir := writeWorkspace(t, `{
	"id": "go",
	"options": {
		"imageVariant": { "type": "string", "default": "   " }
	}
}`, nil)

	err := ConfigureOptions(dir)
	require.Error(t, err)

	actionErr, ok := actionerr.As(err)
	require.True(t, ok)
	assert.Equal(t, actionerr.ReasonBadOption, actionErr.Reason)
	assert.Contains(t, actionErr.Message, "imageVariant")
}

func TestConfigureOptions_NoRollbackOnLaterFailure(t *testing.T) {
	// Keys are processed in sorted order: aVariant succeeds before
	// bBroken fails, and its substitution must remain in place.
	dir := writeWorkspace(t, `{
	"id": "go",
	"options": {
		"aVariant": { "type": "string", "default": "ok" },
		"bBroken": { "type": "string", "default": "" }
	}
}`, map[string]string{
		"Dockerfile": "A=${templateOption:aVariant}\nB=${templateOption:bBroken}\n",
	})

	err := ConfigureOptions(dir)
	require.Error(t, err)

	data, err2 := os.ReadFile(filepath.Join(dir, "Dockerfile"))
	require.NoError(t, err2)
	assert.Contains(t, string(data), "A=ok")
	assert.Contains(t, string(data), "B=${templateOption:bBroken}")
}

func TestConfigureOptions_Idempotent(t *testing.T) {
	dir := writeWorkspace(t, `{
	"id": "go",
	"options": {
		"imageVariant": { "type": "string", "default": "1.22" }
	}
}`, map[string]string{
		"Dockerfile": "FROM golang:${templateOption:imageVariant}\n",
	})

	require.NoError(t, ConfigureOptions(dir))

	path := filepath.Join(dir, "Dockerfile")
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, past, past))

	require.NoError(t, ConfigureOptions(dir))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past), "second run must not rewrite anything")
}
