package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/agent"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/config"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/executor"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/filelock"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/history"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/logger"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/models"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/parser"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/runner"
)

// countingReporter forwards events to the console reporter while keeping
// counts the run record needs.
type countingReporter struct {
	inner        executor.Reporter
	errors       int
	restricted   int
	tasksStarted int
}

func (cr *countingReporter) Emit(event executor.Event) {
	switch event.Kind {
	case executor.KindError:
		cr.errors++
	case executor.KindRestricted:
		cr.restricted++
	case executor.KindTaskStart:
		cr.tasksStarted++
	}
	cr.inner.Emit(event)
}

// NewTaskRunCommand creates the task run command
func NewTaskRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <workflow-file>",
		Short: "Execute a task workflow file",
		Long: `Parse a workflow file and execute its tasks in dependency order.

Each task's fenced code blocks are executed line by line. Lines starting
with "atlasai --query" are sent to the AI model; everything else runs
through the system shell inside the selected working directory.

Restricted commands (destructive operations like recursive root removal
or privilege escalation) are blocked. With verification enabled and an
interactive terminal, blocked commands can be confirmed and re-executed.

Examples:
  atlasai task run workflow.md
  atlasai task run --dir ./project workflow.md
  atlasai task run --model qwen3:8b --no-verify workflow.md`,
		Args:         cobra.ExactArgs(1),
		RunE:         runWorkflow,
		SilenceUsage: true,
	}

	addAgentFlags(cmd)
	cmd.Flags().String("dir", ".", "Working directory for shell commands")
	cmd.Flags().Bool("no-verify", false, "Skip interactive confirmation for restricted commands")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the history database")

	return cmd
}

// runWorkflow implements the task run command logic
func runWorkflow(cmd *cobra.Command, args []string) error {
	workflowFile := args[0]

	cfg, err := loadConfigWithFlags(cmd)
	if err != nil {
		return err
	}

	workingDir, _ := cmd.Flags().GetString("dir")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	graph, err := parser.ParseFile(workflowFile)
	if err != nil {
		return fmt.Errorf("failed to load workflow file: %w", err)
	}
	if graph.Size() == 0 {
		return fmt.Errorf("workflow %s contains no tasks", workflowFile)
	}

	// One run per workflow file at a time.
	lock, err := filelock.AcquireRunLock(workflowFile)
	if err != nil {
		return err
	}
	defer lock.Release()

	console := logger.NewConsoleReporter(cmd.OutOrStdout(), cfg.LogLevel)
	reporter := &countingReporter{inner: console}

	client := agent.NewClient(agent.Config{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
		Language: cfg.Language,
	})

	exec, err := executor.New(graph, workingDir, client, runner.NewShellRunner(), reporter)
	if err != nil {
		return err
	}
	exec.VerifyCommands = cfg.VerifyCommands
	if cfg.VerifyCommands && isInteractive() {
		exec.Confirm = promptConfirm(cmd)
	}

	started := time.Now()
	ok := exec.Execute(cmd.Context(), nil)

	result := models.ExecutionResult{
		TotalTasks: graph.Size(),
		Completed:  reporter.tasksStarted,
		Failed:     reporter.errors,
		Duration:   time.Since(started),
		Success:    ok,
	}
	console.LogInfo(fmt.Sprintf("%d/%d task(s) completed, %d command error(s), took %s",
		result.Completed, result.TotalTasks, result.Failed, result.Duration.Round(time.Millisecond)))

	if !noHistory {
		if err := recordRun(cmd.Context(), cfg, &history.Run{
			WorkflowFile:   workflowFile,
			WorkingDir:     workingDir,
			TotalTasks:     result.TotalTasks,
			CompletedTasks: result.Completed,
			FailedCommands: result.Failed,
			Success:        result.Success,
			Duration:       result.Duration,
			StartedAt:      started.UTC(),
		}); err != nil {
			console.LogWarn(fmt.Sprintf("could not record run history: %v", err))
		}
	}

	if !ok {
		return fmt.Errorf("workflow execution failed")
	}
	return nil
}

// recordRun appends the run to the history database.
func recordRun(ctx context.Context, cfg *config.Config, run *history.Run) error {
	dbPath, err := cfg.ResolveHistoryDBPath()
	if err != nil {
		return err
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordRun(ctx, run)
}

// promptConfirm returns a confirmation func reading y/n answers from the
// command's input stream.
func promptConfirm(cmd *cobra.Command) func(string) bool {
	reader := bufio.NewReader(cmd.InOrStdin())
	return func(prompt string) bool {
		fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
