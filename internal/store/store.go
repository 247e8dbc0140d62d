package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the run-history database and provides access to repositories.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunRepo returns a RunRepo backed by this store.
func (s *Store) RunRepo() RunRepo {
	return &runRepo{db: s.db, seq: s.seq}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		sequence    INTEGER NOT NULL UNIQUE,
		started_at  TIMESTAMP NOT NULL,
		source      TEXT NOT NULL,
		seed        INTEGER,
		students    INTEGER NOT NULL,
		records     INTEGER NOT NULL,
		rejected    INTEGER NOT NULL,
		repaired    INTEGER NOT NULL,
		excluded    INTEGER NOT NULL,
		gaps        INTEGER NOT NULL,
		issues      TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS topic_scores (
		run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		student_id      TEXT NOT NULL,
		topic           TEXT NOT NULL,
		accuracy        REAL NOT NULL,
		mean_time       REAL NOT NULL,
		mean_confidence REAL NOT NULL,
		attempts        INTEGER NOT NULL,
		level           TEXT NOT NULL,
		label           TEXT NOT NULL,
		PRIMARY KEY (run_id, student_id, topic)
	)`,
	`CREATE TABLE IF NOT EXISTS summaries (
		run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		student_id TEXT NOT NULL,
		accuracy   REAL NOT NULL,
		mean_time  REAL NOT NULL,
		attempts   INTEGER NOT NULL,
		level      TEXT NOT NULL,
		label      TEXT NOT NULL,
		PRIMARY KEY (run_id, student_id)
	)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		student_id    TEXT NOT NULL,
		rank          INTEGER NOT NULL,
		topic         TEXT NOT NULL,
		priority      INTEGER NOT NULL,
		score         REAL NOT NULL,
		justification TEXT NOT NULL,
		action        TEXT NOT NULL,
		PRIMARY KEY (run_id, student_id, rank)
	)`,
}

func migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. STUDENTPERF_DB environment variable
// 2. $XDG_DATA_HOME/studentperf/runs.db
// 3. ~/.local/share/studentperf/runs.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("STUDENTPERF_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "studentperf", "runs.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
