// Package action orchestrates the build and test cycles for a template:
// workspace preparation, external CLI invocations, pipeline output, and
// best-effort cleanup.
package action

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"devsmoke/internal/devcontainer"
	"devsmoke/internal/docker"
	"devsmoke/internal/workspace"
	"devsmoke/pkg/actionerr"
	"devsmoke/pkg/config"
	"devsmoke/pkg/history"
	"devsmoke/pkg/logging"
)

// OutputFileEnv names the environment variable holding the pipeline output
// file. When set, Build appends workspace=<path> to it; otherwise the
// workspace path is printed to stdout.
const OutputFileEnv = "GITHUB_OUTPUT"

// newRunner is swapped out in tests to point the CLI invocations at stub
// executables.
var newRunner = devcontainer.NewRunner

// Build prepares a workspace for templateID under projectRoot, overlays
// its test assets, ensures the devcontainer CLI is installed, and starts
// the container. It returns the workspace path for the later test phase.
func Build(ctx context.Context, cfg *config.Config, projectRoot, templateID string) (string, error) {
	logger := logging.GetLogger("action")
	started := time.Now()

	workspaceDir, err := buildWorkspace(ctx, cfg, projectRoot, templateID)
	record(cfg, history.Run{
		TemplateID: templateID,
		Action:     "build",
		StartedAt:  started,
		DurationMS: time.Since(started).Milliseconds(),
		Success:    err == nil,
		ErrorKind:  errorKind(err),
	})
	if err != nil {
		return "", err
	}

	logger.Debug().Str("workspace", workspaceDir).Msg("build completed")
	return workspaceDir, nil
}

func buildWorkspace(ctx context.Context, cfg *config.Config, projectRoot, templateID string) (string, error) {
	workspaceDir, err := workspace.Prepare(cfg, projectRoot, templateID)
	if err != nil {
		return "", err
	}
	if err := workspace.CopyTestDirectory(cfg, projectRoot, templateID, workspaceDir); err != nil {
		return "", err
	}

	runner := newRunner()
	if err := runner.EnsureCLI(ctx); err != nil {
		return "", err
	}
	if _, err := runner.Up(ctx, workspaceDir, idLabel(cfg, templateID)); err != nil {
		return "", err
	}

	return workspaceDir, nil
}

// Test executes the smoke script inside the container built for
// workspaceDir. The container and the workspace are cleaned up afterwards
// regardless of the test outcome; cleanup failures are logged, never
// returned.
func Test(ctx context.Context, cfg *config.Config, templateID, workspaceDir string, out io.Writer) error {
	logger := logging.GetLogger("action")
	started := time.Now()

	if workspaceDir == "" {
		return actionerr.New(actionerr.ReasonInvalidInput, "the --workspace flag is required for the test action")
	}

	runner := newRunner()
	output, err := runner.Exec(ctx, workspaceDir, idLabel(cfg, templateID), smokeScript(cfg))
	if err == nil && output != "" {
		fmt.Fprintln(out, output)
	}

	record(cfg, history.Run{
		TemplateID: templateID,
		Action:     "test",
		StartedAt:  started,
		DurationMS: time.Since(started).Milliseconds(),
		Success:    err == nil,
		ErrorKind:  errorKind(err),
	})

	cleanupContainers(ctx, cfg, templateID)

	logger.Debug().Str("workspace", workspaceDir).Msg("cleaning up workspace directory")
	if rmErr := workspace.Remove(workspaceDir); rmErr != nil {
		logger.Warn().Err(rmErr).Msg("failed to remove workspace")
	}

	if err != nil {
		return err
	}
	logger.Debug().Msg("test completed")
	return nil
}

// smokeScript builds the in-container command: run the smoke script when
// present, otherwise report that there is nothing to run.
func smokeScript(cfg *config.Config) string {
	script := cfg.WorkspaceTestDir + "/" + cfg.SmokeScript
	return fmt.Sprintf("if [ -f %s ]; then chmod +x %s && %s; else echo 'No tests to run'; fi", script, script, script)
}

func idLabel(cfg *config.Config, templateID string) string {
	return cfg.LabelKey + "=" + templateID
}

func cleanupContainers(ctx context.Context, cfg *config.Config, templateID string) {
	logger := logging.GetLogger("action")

	cleaner, err := docker.NewCleaner()
	if err != nil {
		logger.Warn().Err(err).Msg("skipping container cleanup")
		return
	}
	defer cleaner.Close()

	cleaner.RemoveLabeled(ctx, cfg.LabelKey, templateID)
}

// EmitWorkspace publishes the built workspace path for downstream pipeline
// steps: appended to the file named by GITHUB_OUTPUT when set, printed to
// out otherwise. A failed append is a classified failure.
func EmitWorkspace(workspaceDir string, out io.Writer) error {
	logger := logging.GetLogger("action")

	outputFile := os.Getenv(OutputFileEnv)
	if outputFile == "" {
		logger.Debug().Msg(OutputFileEnv + " not set")
		fmt.Fprintln(out, workspaceDir)
		return nil
	}

	logger.Debug().Str("file", outputFile).Msg("writing workspace path to pipeline output")
	f, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return actionerr.Wrap(err, actionerr.ReasonOutputWrite, "failed to open pipeline output file %s", outputFile)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "workspace=%s\n", workspaceDir); err != nil {
		return actionerr.Wrap(err, actionerr.ReasonOutputWrite, "failed to write pipeline output file %s", outputFile)
	}
	return nil
}

// record persists a run when the history store is configured. Never fatal.
func record(cfg *config.Config, run history.Run) {
	if cfg.HistoryPath == "" {
		return
	}
	logger := logging.GetLogger("action")

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to open history store")
		return
	}
	defer store.Close()

	if err := store.Record(run); err != nil {
		logger.Warn().Err(err).Msg("failed to record run")
	}
}

func errorKind(err error) string {
	if err == nil {
		return ""
	}
	if actionErr, ok := actionerr.As(err); ok {
		return string(actionErr.Reason)
	}
	return "UNEXPECTED"
}
