package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/config"
)

// NewTaskCommand groups the workflow subcommands under "atlasai task"
func NewTaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Work with task workflow files",
	}

	cmd.AddCommand(NewTaskRunCommand())
	cmd.AddCommand(NewTaskValidateCommand())
	cmd.AddCommand(NewTaskInitCommand())
	cmd.AddCommand(NewTaskHistoryCommand())

	return cmd
}

// loadConfigWithFlags loads the configuration and applies command-level
// overrides. Flags take precedence over the config file.
func loadConfigWithFlags(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if cmd.Flags().Changed("model") {
		cfg.Model, _ = cmd.Flags().GetString("model")
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL, _ = cmd.Flags().GetString("base-url")
	}
	if cmd.Flags().Changed("language") {
		cfg.Language, _ = cmd.Flags().GetString("language")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("no-verify") {
		noVerify, _ := cmd.Flags().GetBool("no-verify")
		cfg.VerifyCommands = !noVerify
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// addAgentFlags registers the flags shared by commands that talk to the
// AI backend.
func addAgentFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: $ATLASAI_HOME/config.yaml)")
	cmd.Flags().String("model", "", "Model name to query (overrides config)")
	cmd.Flags().String("base-url", "", "AI provider base URL (overrides config)")
	cmd.Flags().String("language", "", "Response language: en or es (overrides config)")
	cmd.Flags().String("log-level", "", "Logging verbosity: trace, debug, info, warn, error")
}
