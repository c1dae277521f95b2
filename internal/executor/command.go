package executor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/agent"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/models"
)

// aiCommandPrefix marks commands routed to the query capability instead of
// the shell.
const aiCommandPrefix = "atlasai"

// isAICommand reports whether a command string is AI-directed.
func isAICommand(command string) bool {
	return strings.HasPrefix(command, aiCommandPrefix)
}

// parseAICommand extracts the query payload from an AI-directed command of
// the form `atlasai --query "<text>"`. Surrounding quotes are stripped.
func parseAICommand(command string) (string, error) {
	parts := strings.SplitN(command, " ", 3)
	if len(parts) < 3 || parts[1] != "--query" {
		return "", fmt.Errorf("invalid atlasai command format, expected: atlasai --query \"<text>\"")
	}
	return strings.Trim(parts[2], `"'`), nil
}

// executeAICommand forwards the command payload to the query capability,
// streaming every chunk to the operator channel and the caller callback.
// A malformed command is reported and skipped.
func (we *WorkflowExecutor) executeAICommand(ctx context.Context, taskID, command string, callback agent.ChunkFunc) {
	we.reporter.Emit(Event{Kind: KindCommand, TaskID: taskID, Command: command, Message: "Executing AtlasAI command"})

	query, err := parseAICommand(command)
	if err != nil {
		we.reportCommandError(NewTaskError(taskID, command, "malformed AI command", err), callback)
		return
	}

	if we.querier == nil {
		we.reportCommandError(NewTaskError(taskID, command, "no query capability configured", nil), callback)
		return
	}

	collect := func(chunk string) {
		we.reporter.Emit(Event{Kind: KindChunk, TaskID: taskID, Message: chunk})
		if callback != nil {
			callback(chunk)
		}
	}

	if _, err := we.querier.Ask(ctx, query, collect); err != nil {
		we.reportCommandError(NewTaskError(taskID, command, "query failed", err), callback)
	}
}

// executeShellCommand runs one shell command with the executor's working
// directory as current directory. The directory switch is scoped: the
// previous directory is restored on every exit path, including panics from
// the runner.
func (we *WorkflowExecutor) executeShellCommand(ctx context.Context, taskID, command string, callback agent.ChunkFunc) {
	we.reporter.Emit(Event{Kind: KindCommand, TaskID: taskID, Command: command, Message: "Executing command"})

	result, err := we.runInWorkingDir(ctx, command)
	if err != nil {
		we.reportCommandError(NewTaskError(taskID, command, "failed to switch working directory", err), callback)
		return
	}

	switch result.Outcome {
	case models.OutcomeDenied:
		we.handleRestricted(ctx, taskID, command, result, callback)
	case models.OutcomeFailed:
		we.reporter.Emit(Event{Kind: KindError, TaskID: taskID, Command: command, Message: result.Output})
		if callback != nil {
			callback(result.Output)
		}
	default:
		// Successful shell output is operator-facing only.
		we.reporter.Emit(Event{Kind: KindOutput, TaskID: taskID, Command: command, Message: result.Output})
	}
}

// runInWorkingDir acquires the working-directory resource, switches into
// the configured directory, runs the command, and unconditionally restores
// the previous directory.
func (we *WorkflowExecutor) runInWorkingDir(ctx context.Context, command string) (models.CommandResult, error) {
	we.wdMu.Lock()
	defer we.wdMu.Unlock()

	prevDir, err := we.getwd()
	if err != nil {
		return models.CommandResult{}, err
	}
	if err := we.chdir(we.workingDir); err != nil {
		return models.CommandResult{}, err
	}
	defer func() {
		// Restore even when the runner panics.
		_ = we.chdir(prevDir)
	}()

	return we.runner.Run(ctx, []string{command}), nil
}

// handleRestricted surfaces a policy denial and, in verify mode, offers an
// interactive override that re-executes the command without policy checks.
func (we *WorkflowExecutor) handleRestricted(ctx context.Context, taskID, command string, result models.CommandResult, callback agent.ChunkFunc) {
	we.reporter.Emit(Event{Kind: KindRestricted, TaskID: taskID, Command: command, Message: result.Output})
	if callback != nil {
		callback(result.Output)
	}

	if !we.VerifyCommands || we.Confirm == nil {
		return
	}
	if !we.Confirm(fmt.Sprintf("Command %q was blocked (%s). Execute it anyway?", command, result.Reason)) {
		return
	}

	we.wdMu.Lock()
	defer we.wdMu.Unlock()

	prevDir, err := we.getwd()
	if err != nil {
		we.reportCommandError(NewTaskError(taskID, command, "failed to resolve working directory", err), callback)
		return
	}
	if err := we.chdir(we.workingDir); err != nil {
		we.reportCommandError(NewTaskError(taskID, command, "failed to switch working directory", err), callback)
		return
	}
	defer func() { _ = we.chdir(prevDir) }()

	override := we.runner.RunUnchecked(ctx, []string{command})
	we.reporter.Emit(Event{Kind: KindOutput, TaskID: taskID, Command: command, Message: override.Output})
}

func defaultChdir(dir string) error { return os.Chdir(dir) }

func defaultGetwd() (string, error) { return os.Getwd() }
