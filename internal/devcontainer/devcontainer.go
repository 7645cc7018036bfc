// Package devcontainer drives the @devcontainers/cli tool to build, start,
// and exec into containers for a prepared template workspace.
package devcontainer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"devsmoke/pkg/actionerr"
	"devsmoke/pkg/logging"
)

// CLIPackage is the npm package providing the devcontainer binary.
const CLIPackage = "@devcontainers/cli"

// Runner invokes the devcontainer CLI as blocking subprocesses with
// captured output. Env is the base environment for every invocation;
// DOCKER_BUILDKIT=1 is always appended on top of it.
type Runner struct {
	// Bin is the devcontainer executable. Resolved from PATH when empty.
	Bin string
	// Npm is the npm executable used to install the CLI.
	Npm string
	// Env is the base environment. Defaults to the process environment.
	Env []string

	log zerolog.Logger
}

func NewRunner() *Runner {
	return &Runner{
		Env: os.Environ(),
		log: logging.GetLogger("devcontainer"),
	}
}

// EnsureCLI installs the devcontainer CLI globally via npm. A missing npm
// binary is a classified failure; an install error propagates as-is.
func (r *Runner) EnsureCLI(ctx context.Context) error {
	npm := r.Npm
	if npm == "" {
		found, err := exec.LookPath("npm")
		if err != nil {
			return actionerr.New(actionerr.ReasonMissingTool, "npm is required but was not found on PATH")
		}
		npm = found
	}

	r.log.Debug().Msg("installing " + CLIPackage)
	if _, err := r.run(ctx, npm, "install", "-g", CLIPackage); err != nil {
		return fmt.Errorf("failed to install %s: %w", CLIPackage, err)
	}
	return nil
}

// Up starts the dev container for workspaceDir, labeling it with idLabel
// (key=value) for later discovery. Success is decided by the CLI's exit
// status. The captured output is returned for logging.
func (r *Runner) Up(ctx context.Context, workspaceDir, idLabel string) (string, error) {
	r.log.Debug().Str("workspace", workspaceDir).Msg("building dev container")

	out, err := r.run(ctx, r.bin(),
		"up",
		"--id-label", idLabel,
		"--workspace-folder", workspaceDir,
	)
	if err != nil {
		return out, actionerr.Wrap(err, actionerr.ReasonBuildFailed, "container failed to start")
	}

	r.log.Debug().Msg("container started")
	return out, nil
}

// Exec runs script with /bin/sh -c inside the container identified by
// idLabel. The devcontainer CLI has been observed exiting zero while
// reporting "No such container" on its output, so that marker is treated
// as a failure in addition to a non-zero exit status.
func (r *Runner) Exec(ctx context.Context, workspaceDir, idLabel, script string) (string, error) {
	out, err := r.run(ctx, r.bin(),
		"exec",
		"--workspace-folder", workspaceDir,
		"--id-label", idLabel,
		"/bin/sh", "-c", script,
	)
	if err != nil || strings.Contains(out, "No such container") {
		return out, actionerr.Wrap(err, actionerr.ReasonTestFailed, "tests failed inside the dev container")
	}
	return out, nil
}

func (r *Runner) bin() string {
	if r.Bin != "" {
		return r.Bin
	}
	if found, err := exec.LookPath("devcontainer"); err == nil {
		return found
	}
	return "devcontainer"
}

// run executes one blocking subprocess, returning its combined trimmed
// output. Stdout is preferred; stderr is returned when stdout is empty so
// diagnostics of quiet tools still surface. A non-zero exit produces an
// error carrying the captured stderr.
func (r *Runner) run(ctx context.Context, name string, args ...string) (string, error) {
	r.log.Debug().Str("cmd", name+" "+strings.Join(args, " ")).Msg("running")

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(append([]string{}, r.env()...), "DOCKER_BUILDKIT=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		if detail != "" {
			return output(&stdout, &stderr), fmt.Errorf("%s failed: %w: %s", name, err, detail)
		}
		return output(&stdout, &stderr), fmt.Errorf("%s failed: %w", name, err)
	}

	return output(&stdout, &stderr), nil
}

func (r *Runner) env() []string {
	if r.Env != nil {
		return r.Env
	}
	return os.Environ()
}

func output(stdout, stderr *bytes.Buffer) string {
	if s := strings.TrimSpace(stdout.String()); s != "" {
		return s
	}
	return strings.TrimSpace(stderr.String())
}
