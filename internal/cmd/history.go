package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/config"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/history"
)

// NewTaskHistoryCommand creates the task history command
func NewTaskHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent workflow runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			configPath, _ := cmd.Flags().GetString("config")

			var cfg *config.Config
			var err error
			if configPath != "" {
				cfg, err = config.LoadConfig(configPath)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}

			dbPath, err := cfg.ResolveHistoryDBPath()
			if err != nil {
				return err
			}
			store, err := history.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			okMark := color.New(color.FgGreen).Sprint("ok")
			failMark := color.New(color.FgRed).Sprint("failed")

			for _, run := range runs {
				status := okMark
				if !run.Success {
					status = failMark
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-7s %s (%d/%d tasks, %d command error(s), %s)\n",
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					status,
					run.WorkflowFile,
					run.CompletedTasks,
					run.TotalTasks,
					run.FailedCommands,
					run.Duration.Round(time.Millisecond),
				)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	cmd.Flags().String("config", "", "Path to config file (default: $ATLASAI_HOME/config.yaml)")

	return cmd
}
