package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store records build runs in a SQLite database so past builds can be
// inspected after the fact.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one completed build.
type Run struct {
	ID          int64
	BuildID     string
	StartedAt   time.Time
	FinishedAt  time.Time
	Experiences int
	Pages       int
	Rebuilt     int
	Forced      bool
}

// UnitChange is one rebuilt unit within a run. Detail holds the changed
// category summary for experiences and "context" for pages.
type UnitChange struct {
	RunID  int64
	Unit   string
	Kind   string
	Detail string
}

const (
	// KindExperience marks a unit change row for an experience.
	KindExperience = "experience"
	// KindPage marks a unit change row for a page.
	KindPage = "page"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    build_id TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    experiences INTEGER NOT NULL DEFAULT 0,
    pages INTEGER NOT NULL DEFAULT 0,
    rebuilt INTEGER NOT NULL DEFAULT 0,
    forced INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS unit_changes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    unit TEXT NOT NULL,
    kind TEXT NOT NULL,
    detail TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_unit_changes_run ON unit_changes(run_id);
`

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun persists a run and its unit changes in one transaction and
// returns the run's row id.
func (s *Store) RecordRun(ctx context.Context, run Run, changes []UnitChange) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (build_id, started_at, finished_at, experiences, pages, rebuilt, forced)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.BuildID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Experiences,
		run.Pages,
		run.Rebuilt,
		boolToInt(run.Forced),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	for _, change := range changes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO unit_changes (run_id, unit, kind, detail) VALUES (?, ?, ?, ?)`,
			runID, change.Unit, change.Kind, change.Detail,
		); err != nil {
			return 0, fmt.Errorf("insert unit change %s: %w", change.Unit, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// returns everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, build_id, started_at, finished_at, experiences, pages, rebuilt, forced
              FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, finishedAt string
		var forced int
		if err := rows.Scan(&run.ID, &run.BuildID, &startedAt, &finishedAt,
			&run.Experiences, &run.Pages, &run.Rebuilt, &forced); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		run.Forced = forced != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ChangesForRun returns the unit changes recorded for one run.
func (s *Store) ChangesForRun(ctx context.Context, runID int64) ([]UnitChange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, unit, kind, detail FROM unit_changes WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list unit changes: %w", err)
	}
	defer rows.Close()

	var changes []UnitChange
	for rows.Next() {
		var change UnitChange
		if err := rows.Scan(&change.RunID, &change.Unit, &change.Kind, &change.Detail); err != nil {
			return nil, fmt.Errorf("scan unit change: %w", err)
		}
		changes = append(changes, change)
	}
	return changes, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
