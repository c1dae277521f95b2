package executor

import (
	"fmt"
	"strings"
	"time"
)

// StuckError reports a ready-set computation that produced no eligible
// tasks while the graph was not fully completed. This can only happen if
// the acyclicity check was bypassed or the graph was mutated unexpectedly;
// it is fatal to the run.
type StuckError struct {
	Remaining []string // Ids of tasks still pending when the run stalled
}

// Error implements the error interface.
func (e *StuckError) Error() string {
	return fmt.Sprintf("no executable tasks but %d remain pending: %s",
		len(e.Remaining), strings.Join(e.Remaining, ", "))
}

// TaskError represents an error raised while dispatching one command of a
// task. Task errors are reported and absorbed; they never abort the owning
// task or the workflow.
type TaskError struct {
	TaskID    string    // Id of the task whose command failed
	Command   string    // Command text that produced the error
	Message   string    // Human-readable error message
	Err       error     // Underlying error (optional)
	Timestamp time.Time // When the error occurred
}

// NewTaskError creates a TaskError with the current timestamp.
func NewTaskError(taskID, command, msg string, err error) *TaskError {
	return &TaskError{
		TaskID:    taskID,
		Command:   command,
		Message:   msg,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "task %s: %s", e.TaskID, e.Message)
	if e.Command != "" {
		fmt.Fprintf(&sb, " (command: %s)", e.Command)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *TaskError) Unwrap() error {
	return e.Err
}
