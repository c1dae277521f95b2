// Package executor drives a task graph to completion: it validates
// acyclicity, computes ready sets, and dispatches each task's commands to
// the shell runner or the AI query capability.
package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/agent"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/models"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/runner"
)

// ConfirmFunc asks the operator a yes/no question and returns the answer.
// A nil ConfirmFunc means overrides are never offered.
type ConfirmFunc func(prompt string) bool

// WorkflowExecutor executes the tasks of one graph in dependency order.
// It owns the graph exclusively for the duration of a run.
type WorkflowExecutor struct {
	graph      *models.TaskGraph
	workingDir string
	querier    agent.Querier
	runner     runner.CommandRunner
	reporter   Reporter

	// VerifyCommands enables the interactive override offer when a
	// command is denied by the safety policy.
	VerifyCommands bool

	// Confirm is consulted for restricted-command overrides.
	Confirm ConfirmFunc

	// wdMu serializes working-directory ownership: only one command in
	// the whole run may hold the process current directory at a time.
	wdMu sync.Mutex

	// chdir/getwd indirection for tests.
	chdir func(string) error
	getwd func() (string, error)
}

// New creates a WorkflowExecutor. The working directory is made absolute
// so later chdirs are unambiguous. reporter may be nil.
func New(graph *models.TaskGraph, workingDir string, querier agent.Querier, cmdRunner runner.CommandRunner, reporter Reporter) (*WorkflowExecutor, error) {
	if graph == nil {
		return nil, fmt.Errorf("workflow executor requires a task graph")
	}
	if cmdRunner == nil {
		return nil, fmt.Errorf("workflow executor requires a command runner")
	}

	absDir, err := filepath.Abs(workingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	if reporter == nil {
		reporter = NopReporter{}
	}

	return &WorkflowExecutor{
		graph:      graph,
		workingDir: absDir,
		querier:    querier,
		runner:     cmdRunner,
		reporter:   reporter,
		chdir:      defaultChdir,
		getwd:      defaultGetwd,
	}, nil
}

// Execute runs every task in the graph honoring dependency order.
// Returns true only if every task reached completion through the ready-set
// loop. Structural errors (cycle, stuck ready set) abort the run and are
// reported; per-command failures are reported and absorbed.
//
// The callback, when non-nil, receives every chunk of output produced by
// AI-directed commands as it is produced, plus per-command failure
// reports. Successful shell output does not reach the callback.
func (we *WorkflowExecutor) Execute(ctx context.Context, callback agent.ChunkFunc) bool {
	if we.graph.Size() == 0 {
		we.reporter.Emit(Event{Kind: KindError, Message: "no tasks found to execute"})
		return false
	}

	order, err := we.graph.ExecutionOrder()
	if err != nil {
		we.reporter.Emit(Event{Kind: KindError, Message: err.Error()})
		return false
	}

	we.reporter.Emit(Event{
		Kind:    KindPlan,
		Message: fmt.Sprintf("Executing %d tasks\nExecution order: %s", len(order), strings.Join(order, " -> ")),
	})

	for !we.graph.AllCompleted() {
		if err := ctx.Err(); err != nil {
			we.reporter.Emit(Event{Kind: KindError, Message: fmt.Sprintf("run aborted: %v", err)})
			return false
		}

		ready := we.graph.NextTasks()
		if len(ready) == 0 {
			stuck := &StuckError{Remaining: we.pendingTasks()}
			we.reporter.Emit(Event{Kind: KindError, Message: stuck.Error()})
			return false
		}

		for _, id := range ready {
			task := we.graph.Tasks[id]

			we.reporter.Emit(Event{
				Kind:    KindTaskStart,
				TaskID:  id,
				Message: fmt.Sprintf("%s\n\n%s", task.Title, task.Description),
			})

			we.runCommands(ctx, task, callback)

			// Completion is unconditional: individual command outcomes
			// never hold a task back.
			we.graph.MarkCompleted(id)
			we.reporter.Emit(Event{Kind: KindTaskDone, TaskID: id, Message: fmt.Sprintf("Task %s completed", id)})
		}
	}

	we.reporter.Emit(Event{Kind: KindSummary, Message: "All tasks have been completed successfully"})
	return true
}

// runCommands dispatches every command of a task in document order.
// Errors, including panics from the runner or querier, are converted to
// reported events and execution continues with the next command.
func (we *WorkflowExecutor) runCommands(ctx context.Context, task *models.TaskDefinition, callback agent.ChunkFunc) {
	for _, command := range task.Commands {
		we.dispatchOne(ctx, task.ID, command, callback)
	}
}

// dispatchOne classifies and executes a single command, recovering from
// any panic raised by the collaborators.
func (we *WorkflowExecutor) dispatchOne(ctx context.Context, taskID, command string, callback agent.ChunkFunc) {
	defer func() {
		if r := recover(); r != nil {
			taskErr := NewTaskError(taskID, command, "command dispatch panicked", fmt.Errorf("%v", r))
			we.reportCommandError(taskErr, callback)
		}
	}()

	if isAICommand(command) {
		we.executeAICommand(ctx, taskID, command, callback)
		return
	}
	we.executeShellCommand(ctx, taskID, command, callback)
}

// pendingTasks lists the ids of non-completed tasks, sorted for stable
// error messages.
func (we *WorkflowExecutor) pendingTasks() []string {
	var pending []string
	for _, id := range we.graph.TaskOrder() {
		if !we.graph.Tasks[id].IsCompleted() {
			pending = append(pending, id)
		}
	}
	return pending
}

// reportCommandError surfaces a per-command error to the operator channel
// and to the machine callback.
func (we *WorkflowExecutor) reportCommandError(err *TaskError, callback agent.ChunkFunc) {
	we.reporter.Emit(Event{Kind: KindError, TaskID: err.TaskID, Command: err.Command, Message: err.Error()})
	if callback != nil {
		callback(fmt.Sprintf("Error: %s", err.Error()))
	}
}
