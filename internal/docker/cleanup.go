// Package docker removes the containers a smoke-test run leaves behind,
// discovering them by label.
package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/rs/zerolog"

	"devsmoke/pkg/logging"
)

// Cleaner finds and force-removes labeled containers.
type Cleaner struct {
	cli *client.Client
	log zerolog.Logger
}

func NewCleaner() (*Cleaner, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Cleaner{cli: cli, log: logging.GetLogger("docker")}, nil
}

// NewCleanerWithClient creates a Cleaner around an existing client (for
// testing).
func NewCleanerWithClient(cli *client.Client) *Cleaner {
	return &Cleaner{cli: cli, log: logging.GetLogger("docker")}
}

func (c *Cleaner) Close() error {
	return c.cli.Close()
}

// RemoveLabeled force-removes every container (running or not) carrying
// labelKey=labelValue. Best-effort: absence of matches and individual
// removal failures are logged, never returned as errors.
func (c *Cleaner) RemoveLabeled(ctx context.Context, labelKey, labelValue string) {
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to list containers")
		return
	}

	matched := 0
	for _, cont := range containers {
		if cont.Labels[labelKey] != labelValue {
			continue
		}
		matched++

		c.log.Debug().Str("container", cont.ID).Msg("removing container")
		err := c.cli.ContainerRemove(ctx, cont.ID, container.RemoveOptions{
			Force:         true,
			RemoveVolumes: true,
		})
		if err != nil && !client.IsErrNotFound(err) {
			c.log.Warn().Err(err).Str("container", cont.ID).Msg("failed to remove container")
		}
	}

	if matched == 0 {
		c.log.Debug().Str("label", labelKey+"="+labelValue).Msg("no containers found")
	}
}
