// Package history records build and test outcomes per template in a local
// sqlite database. Recording is optional and best-effort; a CI job can
// inspect the database to spot chronically failing templates.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded build or test invocation.
type Run struct {
	ID         int64
	TemplateID string
	Action     string
	StartedAt  time.Time
	DurationMS int64
	Success    bool
	ErrorKind  string
}

// Store persists runs in a sqlite database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path, creating parent
// directories as needed.
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
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		template_id TEXT NOT NULL,
		action TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER,
		success BOOLEAN,
		error_kind TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_template ON runs(template_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record inserts one run.
func (s *Store) Record(r Run) error {
	_, err := s.db.Exec(`
	INSERT INTO runs (template_id, action, started_at, duration_ms, success, error_kind)
	VALUES (?, ?, ?, ?, ?, ?)`,
		r.TemplateID, r.Action, r.StartedAt, r.DurationMS, r.Success, r.ErrorKind,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
	SELECT id, template_id, action, started_at, duration_ms, success, error_kind
	FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.TemplateID, &r.Action, &r.StartedAt, &r.DurationMS, &r.Success, &r.ErrorKind); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
