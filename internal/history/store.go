// Package history persists workflow run records to a local SQLite database.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run represents a single workflow execution record
type Run struct {
	ID             string
	WorkflowFile   string
	WorkingDir     string
	TotalTasks     int
	CompletedTasks int
	FailedCommands int
	Success        bool
	Duration       time.Duration
	StartedAt      time.Time
}

// Store manages the SQLite database for run history
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	// Handle in-memory database
	if dbPath == ":memory:" {
		return openAndInitStore(dbPath)
	}

	// Ensure parent directory exists for file-based databases
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	return openAndInitStore(dbPath)
}

// openAndInitStore opens the database connection and initializes schema
func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure SQLite for concurrent access.
	// Set busy_timeout FIRST so subsequent operations wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}

		// Only retry on "database is locked" errors
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		delay := baseDelay * time.Duration(1<<attempt)
		time.Sleep(delay)
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun records a workflow execution in the database. If the run has
// no ID yet, a new one is generated and written back to the record.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	query := `INSERT INTO workflow_runs
		(id, workflow_file, working_dir, total_tasks, completed_tasks, failed_commands, success, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.WorkflowFile,
		run.WorkingDir,
		run.TotalTasks,
		run.CompletedTasks,
		run.FailedCommands,
		run.Success,
		run.Duration.Milliseconds(),
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert workflow run: %w", err)
	}

	return nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
// A limit of zero or less defaults to 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, workflow_file, working_dir, total_tasks, completed_tasks, failed_commands, success, duration_ms, started_at
		FROM workflow_runs
		ORDER BY started_at DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query workflow runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var durationMS int64
		if err := rows.Scan(
			&run.ID,
			&run.WorkflowFile,
			&run.WorkingDir,
			&run.TotalTasks,
			&run.CompletedTasks,
			&run.FailedCommands,
			&run.Success,
			&durationMS,
			&run.StartedAt,
		); err != nil {
			return nil, fmt.Errorf("scan workflow run: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflow runs: %w", err)
	}

	return runs, nil
}

// LastRunForFile returns the most recent run for a workflow file, or nil
// if none has been recorded.
func (s *Store) LastRunForFile(ctx context.Context, workflowFile string) (*Run, error) {
	query := `SELECT id, workflow_file, working_dir, total_tasks, completed_tasks, failed_commands, success, duration_ms, started_at
		FROM workflow_runs
		WHERE workflow_file = ?
		ORDER BY started_at DESC
		LIMIT 1`

	var run Run
	var durationMS int64
	err := s.db.QueryRowContext(ctx, query, workflowFile).Scan(
		&run.ID,
		&run.WorkflowFile,
		&run.WorkingDir,
		&run.TotalTasks,
		&run.CompletedTasks,
		&run.FailedCommands,
		&run.Success,
		&durationMS,
		&run.StartedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
