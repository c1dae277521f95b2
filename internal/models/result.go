package models

import (
	"fmt"
	"strings"
	"time"
)

// CommandOutcome classifies the result of one shell command dispatch.
// The executor branches on this tag instead of scanning output text.
type CommandOutcome int

const (
	// OutcomeOK means the command ran and exited successfully.
	OutcomeOK CommandOutcome = iota
	// OutcomeDenied means the command was rejected by the safety policy
	// before execution.
	OutcomeDenied
	// OutcomeFailed means the command ran but exited non-zero, or could
	// not be started.
	OutcomeFailed
)

// String returns the string representation of the outcome.
func (o CommandOutcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeDenied:
		return "denied"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CommandResult is the structured result of running a shell command.
type CommandResult struct {
	Outcome CommandOutcome // How the dispatch ended
	Output  string         // Combined stdout/stderr text
	Reason  string         // For OutcomeDenied, the policy rule that matched
}

// ExecutionResult summarizes one workflow run.
type ExecutionResult struct {
	TotalTasks int           // Number of tasks in the graph
	Completed  int           // Tasks that reached Completed
	Failed     int           // Commands that reported failure or denial
	Duration   time.Duration // Wall-clock time of the run
	Success    bool          // True only if every task reached Completed
}

// CycleError reports a dependency cycle detected before any task ran.
type CycleError struct {
	Members []string // Task ids on the cycle, in walk order
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	if len(e.Members) == 0 {
		return "dependency cycle detected"
	}
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Members, " -> "))
}
