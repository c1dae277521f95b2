// Package filelock guards workflow files against concurrent runs and
// provides atomic writes for generated files.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrWorkflowBusy is returned when another process is already executing
// the same workflow file.
var ErrWorkflowBusy = errors.New("workflow is already being executed by another process")

// RunLock holds an exclusive advisory lock for a workflow file while it
// is being executed. The lock file lives next to the workflow file with a
// ".lock" suffix.
type RunLock struct {
	flock        *flock.Flock
	workflowPath string
}

// AcquireRunLock takes an exclusive non-blocking lock for the workflow
// file. It returns ErrWorkflowBusy if another process holds the lock.
// The caller must Release the lock when the run finishes.
func AcquireRunLock(workflowPath string) (*RunLock, error) {
	lock := &RunLock{
		flock:        flock.New(workflowPath + ".lock"),
		workflowPath: workflowPath,
	}

	acquired, err := lock.flock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", workflowPath, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%s: %w", workflowPath, ErrWorkflowBusy)
	}
	return lock, nil
}

// Release drops the lock and removes the lock file.
func (rl *RunLock) Release() error {
	if err := rl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock %s: %w", rl.workflowPath, err)
	}
	// Best effort: a dangling lock file is harmless but untidy.
	os.Remove(rl.workflowPath + ".lock")
	return nil
}

// AtomicWrite writes data to path via a temp file and rename, so readers
// never observe a partial file. The temp file is created in the target
// directory to keep the rename on one filesystem.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	// Rename is atomic within a filesystem.
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}
