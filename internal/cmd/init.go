package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/filelock"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/parser"
)

// NewTaskInitCommand creates the task init command
func NewTaskInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [output-file]",
		Short: "Generate a workflow template",
		Long: `Write a starter workflow file with numbered placeholder tasks.

The generated document parses back into a valid dependency graph and can
be edited in place. The default output file is workflow.md.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := "workflow.md"
			if len(args) == 1 {
				output = args[0]
			}

			numTasks, _ := cmd.Flags().GetInt("tasks")
			if numTasks < 1 {
				return fmt.Errorf("--tasks must be at least 1")
			}

			force, _ := cmd.Flags().GetBool("force")
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", output)
				}
			}

			template := parser.GenerateTemplate(numTasks)
			if err := filelock.AtomicWrite(output, []byte(template)); err != nil {
				return fmt.Errorf("failed to write template: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d task(s)\n", output, numTasks)
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().Int("tasks", 3, "Number of placeholder tasks to generate")
	cmd.Flags().Bool("force", false, "Overwrite the output file if it exists")

	return cmd
}
