package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/agent"
)

// NewChatCommand creates the chat command
func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask the AI assistant",
		Long: `Send a question to the configured AI model.

With an argument, sends a single question and exits. Without arguments,
starts an interactive session; type "exit" or "quit" to leave. Sessions
hold no memory: each question stands alone.`,
		Args:         cobra.ArbitraryArgs,
		RunE:         runChat,
		SilenceUsage: true,
	}

	addAgentFlags(cmd)

	return cmd
}

// runChat implements the chat command logic
func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigWithFlags(cmd)
	if err != nil {
		return err
	}

	client := agent.NewClient(agent.Config{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
		Language: cfg.Language,
	})

	if err := client.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("AI backend at %s is not reachable: %w", cfg.BaseURL, err)
	}

	out := cmd.OutOrStdout()
	stream := func(chunk string) { fmt.Fprint(out, chunk) }

	// One-shot mode.
	if len(args) > 0 {
		question := strings.Join(args, " ")
		if _, err := client.Ask(cmd.Context(), question, stream); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return nil
	}

	prompt := color.New(color.FgBlue, color.Bold).Sprint("you> ")
	fmt.Fprintf(out, "Chatting with %s. Type \"exit\" to leave.\n", cfg.Model)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		if _, err := client.Ask(cmd.Context(), question, stream); err != nil {
			fmt.Fprintf(out, "%s %v\n", color.New(color.FgRed).Sprint("error:"), err)
			continue
		}
		fmt.Fprintln(out)
	}
}
