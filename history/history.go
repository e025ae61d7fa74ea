// Package history persists evaluation history in SQLite.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded evaluation.
type Entry struct {
	ID         int64
	Expression string
	Result     float64
	Failed     bool
	Error      string
	Duration   time.Duration
	At         time.Time
}

// Store handles SQLite storage for evaluation history.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Open opens (and if needed creates) a history database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS evaluations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		expression TEXT NOT NULL,
		result REAL,
		failed INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		duration_us INTEGER NOT NULL,
		at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordResult stores a successful evaluation.
func (s *Store) RecordResult(expression string, result float64, duration time.Duration) error {
	return s.record(Entry{
		Expression: expression,
		Result:     result,
		Duration:   duration,
		At:         time.Now().UTC(),
	})
}

// RecordError stores a failed evaluation.
func (s *Store) RecordError(expression string, evalErr error, duration time.Duration) error {
	return s.record(Entry{
		Expression: expression,
		Failed:     true,
		Error:      evalErr.Error(),
		Duration:   duration,
		At:         time.Now().UTC(),
	})
}

func (s *Store) record(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO evaluations (expression, result, failed, error, duration_us, at) VALUES (?, ?, ?, ?, ?, ?)",
		e.Expression, e.Result, e.Failed, e.Error, e.Duration.Microseconds(), e.At.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording evaluation: %w", err)
	}
	return nil
}

// Recent returns up to n most recent entries, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		"SELECT id, expression, result, failed, error, duration_us, at FROM evaluations ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationUs int64
		var at string
		if err := rows.Scan(&e.ID, &e.Expression, &e.Result, &e.Failed, &e.Error, &durationUs, &at); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Duration = time.Duration(durationUs) * time.Microsecond
		if parsed, err := time.Parse(time.RFC3339Nano, at); err == nil {
			e.At = parsed
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of recorded evaluations.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM evaluations").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}

// Clear deletes all recorded evaluations.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM evaluations"); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}
