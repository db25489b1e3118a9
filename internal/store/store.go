package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the database handle and provides access to repositories.
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
	// One connection keeps in-memory databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
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

// MasteryRepo returns a MasteryRepo backed by this store.
func (s *Store) MasteryRepo() MasteryRepo {
	return &masteryRepo{db: s.db}
}

// ReviewRepo returns a ReviewRepo backed by this store.
func (s *Store) ReviewRepo() ReviewRepo {
	return &reviewRepo{db: s.db}
}

// SnapshotRepo returns a SnapshotRepo backed by this store.
func (s *Store) SnapshotRepo() SnapshotRepo {
	return &snapshotRepo{db: s.db}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// applyPragmas configures SQLite for optimal single-user performance.
// ResetUser deletes every mastery score, review state and attempt of a
// user in one transaction. Cache snapshots are shared and kept.
func (s *Store) ResetUser(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()
	for _, table := range []string{"mastery", "review_states", "attempt_events"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return tx.Commit()
}

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
	`CREATE TABLE IF NOT EXISTS mastery (
		user_id    TEXT NOT NULL,
		mood       TEXT NOT NULL,
		tense      TEXT NOT NULL,
		lemma      TEXT NOT NULL DEFAULT '',
		score      REAL NOT NULL,
		attempts   INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, mood, tense, lemma)
	)`,
	`CREATE TABLE IF NOT EXISTS review_states (
		user_id          TEXT NOT NULL,
		mood             TEXT NOT NULL,
		tense            TEXT NOT NULL,
		person           TEXT NOT NULL,
		stage            INTEGER NOT NULL DEFAULT 0,
		consecutive_hits INTEGER NOT NULL DEFAULT 0,
		graduated        INTEGER NOT NULL DEFAULT 0,
		next_review      INTEGER NOT NULL,
		last_review      INTEGER NOT NULL,
		PRIMARY KEY (user_id, mood, tense, person)
	)`,
	`CREATE INDEX IF NOT EXISTS review_states_due ON review_states (user_id, next_review)`,
	`CREATE TABLE IF NOT EXISTS cache_snapshots (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		pool       TEXT NOT NULL,
		version    TEXT NOT NULL,
		data       BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attempt_events (
		sequence   INTEGER PRIMARY KEY,
		user_id    TEXT NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		lemma      TEXT NOT NULL,
		mood       TEXT NOT NULL,
		tense      TEXT NOT NULL,
		person     TEXT NOT NULL,
		correct    INTEGER NOT NULL,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		method     TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS attempt_events_user ON attempt_events (user_id, sequence)`,
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
// 1. CONJUGA_DB environment variable
// 2. $XDG_DATA_HOME/conjuga/conjuga.db
// 3. ~/.local/share/conjuga/conjuga.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("CONJUGA_DB"); p != "" {
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

	p := filepath.Join(dataHome, "conjuga", "conjuga.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
