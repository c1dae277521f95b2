package models

import "errors"

// TaskDefinition represents a single task in a workflow document
type TaskDefinition struct {
	ID          string   // Unique task identifier within a workflow
	Title       string   // Short human-readable label
	Description string   // Free text shown before execution
	DependsOn   []string // Task ids this task waits on (may be empty)
	Commands    []string // Command strings, executed in document order
	Completed   bool     // Mutated only by the executor, initially false
}

// Validate checks if the task has all required fields
func (t *TaskDefinition) Validate() error {
	if t.ID == "" {
		return errors.New("task id is required")
	}
	if t.Title == "" {
		return errors.New("task title is required")
	}
	return nil
}

// IsCompleted returns true if the task has been marked completed
func (t *TaskDefinition) IsCompleted() bool {
	return t.Completed
}
