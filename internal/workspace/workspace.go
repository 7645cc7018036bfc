// Package workspace prepares ephemeral build workspaces from dev-container
// templates.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"devsmoke/internal/template"
	"devsmoke/pkg/actionerr"
	"devsmoke/pkg/config"
	"devsmoke/pkg/fsutil"
	"devsmoke/pkg/logging"
)

// Prepare copies the template's source directory into a fresh temporary
// workspace and substitutes its declared option defaults. The workspace is
// nested one level under the temporary directory and named after the
// template id. The caller owns the returned path and is responsible for
// removing it once the build-test cycle completes.
func Prepare(cfg *config.Config, projectRoot, templateID string) (string, error) {
	logger := logging.GetLogger("workspace")

	sourceDir := filepath.Join(projectRoot, cfg.TemplatesDir, templateID)
	if _, err := os.Stat(sourceDir); err != nil {
		if os.IsNotExist(err) {
			return "", actionerr.New(actionerr.ReasonMissingPath, "source template directory not found: %s", sourceDir)
		}
		return "", fmt.Errorf("failed to stat %s: %w", sourceDir, err)
	}

	tmpDir, err := os.MkdirTemp("", "smoke_")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	workspaceDir := filepath.Join(tmpDir, templateID)
	logger.Debug().Str("workspace", workspaceDir).Msg("preparing workspace")

	if err := fsutil.CopyTree(sourceDir, workspaceDir); err != nil {
		return "", fmt.Errorf("failed to copy template %q: %w", templateID, err)
	}
	if err := template.ConfigureOptions(workspaceDir); err != nil {
		return "", err
	}

	return workspaceDir, nil
}

// CopyTestDirectory overlays the template's smoke test assets into the
// workspace's test directory, then layers the shared utils directory on
// top, so shared utility files win over per-template files of the same
// name. A template without a test directory is a silent no-op.
func CopyTestDirectory(cfg *config.Config, projectRoot, templateID, workspaceDir string) error {
	logger := logging.GetLogger("workspace")

	testDir := filepath.Join(projectRoot, cfg.TestDir, templateID)
	info, err := os.Stat(testDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	logger.Debug().Str("template", templateID).Msg("copying test directory")
	destDir := filepath.Join(workspaceDir, cfg.WorkspaceTestDir)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", destDir, err)
	}
	if err := fsutil.CopyContents(testDir, destDir); err != nil {
		return fmt.Errorf("failed to copy test files for %q: %w", templateID, err)
	}

	utilsDir := filepath.Join(projectRoot, cfg.TestDir, cfg.UtilsDir)
	if info, err := os.Stat(utilsDir); err == nil && info.IsDir() {
		if err := fsutil.CopyContents(utilsDir, destDir); err != nil {
			return fmt.Errorf("failed to copy shared test utils: %w", err)
		}
	}

	return nil
}

// Remove deletes a workspace and its parent temporary directory.
// Best-effort: callers treat failures as non-fatal.
func Remove(workspaceDir string) error {
	if workspaceDir == "" {
		return nil
	}
	parent := filepath.Dir(workspaceDir)
	if strings.HasPrefix(filepath.Base(parent), "smoke_") {
		return os.RemoveAll(parent)
	}
	return os.RemoveAll(workspaceDir)
}
