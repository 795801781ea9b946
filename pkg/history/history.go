// Package history keeps a SQLite log of check runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/computerscienceiscool/gocheck/pkg/check"
	"github.com/computerscienceiscool/gocheck/pkg/diagnostics"
)

// Run summarizes one gocheck check invocation
type Run struct {
	ID        string        `json:"id" yaml:"id"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp"`
	File      string        `json:"file" yaml:"file"`
	Mode      string        `json:"mode" yaml:"mode"`
	Errors    int           `json:"errors" yaml:"errors"`
	Warnings  int           `json:"warnings" yaml:"warnings"`
	Infos     int           `json:"infos" yaml:"infos"`
	Missing   []string      `json:"missing,omitempty" yaml:"missing,omitempty"`
	Failures  []string      `json:"failures,omitempty" yaml:"failures,omitempty"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// FromReport builds a Run from a check report
func FromReport(report check.Report, mode string) Run {
	run := Run{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		File:      report.File,
		Mode:      mode,
		Duration:  report.Duration,
	}
	for _, d := range report.Diagnostics {
		switch d.Severity {
		case diagnostics.SeverityError:
			run.Errors++
		case diagnostics.SeverityWarning:
			run.Warnings++
		default:
			run.Infos++
		}
	}
	for _, m := range report.Missing {
		run.Missing = append(run.Missing, m.Tool)
	}
	for _, f := range report.Failures {
		run.Failures = append(run.Failures, f.Tool)
	}
	return run
}

// Store is a SQLite-backed run history
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS check_runs (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		file TEXT NOT NULL,
		mode TEXT NOT NULL,
		errors INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		infos INTEGER NOT NULL,
		missing TEXT,
		failures TEXT,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON check_runs(timestamp);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return nil
}

// Record stores a run
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	query := `
		INSERT INTO check_runs (id, timestamp, file, mode, errors, warnings, infos, missing, failures, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.Timestamp.UTC(), run.File, run.Mode,
		run.Errors, run.Warnings, run.Infos,
		strings.Join(run.Missing, ","), strings.Join(run.Failures, ","),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record check run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, timestamp, file, mode, errors, warnings, infos, missing, failures, duration_ms
		FROM check_runs
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query check runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			missing, failures sql.NullString
			durationMs        int64
		)
		if err := rows.Scan(&run.ID, &run.Timestamp, &run.File, &run.Mode,
			&run.Errors, &run.Warnings, &run.Infos, &missing, &failures, &durationMs); err != nil {
			return nil, err
		}
		run.Missing = splitList(missing.String)
		run.Failures = splitList(failures.String)
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
