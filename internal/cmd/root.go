// Package cmd wires the atlasai command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for atlasai
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atlasai",
		Short: "AI-assisted task workflow runner",
		Long: `AtlasAI executes task workflows described in Markdown documents.

A workflow file declares tasks with [TASK id="..." depends="..."] markers.
AtlasAI builds the dependency graph, resolves execution order, and runs
each task's commands: shell commands through the system shell, and
AI-directed commands through the configured model.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewTaskCommand())
	cmd.AddCommand(NewChatCommand())

	return cmd
}
