package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"devsmoke/pkg/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent build and test runs",
	Example: `  devsmoke history            # last 20 runs
  devsmoke history --limit 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		projectRoot, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(projectRoot)
		if err != nil {
			return err
		}
		if cfg.HistoryPath == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "history is disabled: set history_path in the config file")
			return nil
		}

		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tTEMPLATE\tACTION\tDURATION\tRESULT")
		for _, r := range runs {
			result := "ok"
			if !r.Success {
				result = r.ErrorKind
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.StartedAt.Format(time.RFC3339),
				r.TemplateID,
				r.Action,
				(time.Duration(r.DurationMS) * time.Millisecond).String(),
				result,
			)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
