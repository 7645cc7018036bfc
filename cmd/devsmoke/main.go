package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"devsmoke/internal/action"
	"devsmoke/pkg/actionerr"
	"devsmoke/pkg/config"
	"devsmoke/pkg/logging"
)

var (
	verbosity     int
	workspaceFlag string
	configFlag    string
)

var rootCmd = &cobra.Command{
	Use:           "devsmoke",
	Short:         "Build and smoke-test dev container templates",
	Long:          `Builds a dev container image from a template with its default options applied, then executes the template's smoke test inside the running container.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbosity)
	},
}

var buildCmd = &cobra.Command{
	Use:   "build <template-id>",
	Short: "Prepare a workspace and start its dev container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		templateID := args[0]

		projectRoot, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(projectRoot)
		if err != nil {
			return err
		}

		workspaceDir, err := action.Build(context.Background(), cfg, projectRoot, templateID)
		if err != nil {
			return err
		}
		return action.EmitWorkspace(workspaceDir, cmd.OutOrStdout())
	},
}

var testCmd = &cobra.Command{
	Use:   "test <template-id>",
	Short: "Run the smoke test inside a previously built container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		templateID := args[0]

		projectRoot, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(projectRoot)
		if err != nil {
			return err
		}

		return action.Test(context.Background(), cfg, templateID, workspaceFlag, cmd.OutOrStdout())
	},
}

func loadConfig(projectRoot string) (*config.Config, error) {
	path := configFlag
	if path == "" {
		path = config.DefaultConfigPath(projectRoot)
	}
	return config.LoadConfig(path)
}

func main() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default .devsmoke/config.yaml)")
	testCmd.Flags().StringVarP(&workspaceFlag, "workspace", "t", "", "workspace path returned by a previous build")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(testCmd)

	if err := rootCmd.Execute(); err != nil {
		logger := logging.GetLogger("main")
		if actionErr, ok := actionerr.As(err); ok {
			logger.Error().Err(actionErr.Wrapped).Str("reason", string(actionErr.Reason)).Msg(actionErr.Message)
		} else {
			logger.Error().Err(err).Msg("unhandled error")
		}
		os.Exit(1)
	}
}
