package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a path has no report entry.
var ErrNotFound = errors.New("not found")

// Status records the outcome of an extraction attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Entry is the per-path extraction record: the content digest at the time
// of the attempt and how the attempt ended.
type Entry struct {
	Path      string
	Digest    string
	Status    Status
	Error     string
	UpdatedAt time.Time
}

// Store persists extraction outcomes so re-runs can skip documents that
// were already indexed with unchanged content.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS report (
    path       TEXT PRIMARY KEY,
    digest     TEXT NOT NULL,
    status     TEXT NOT NULL,
    error      TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_report_status ON report(status);
`

// Open opens (creating if necessary) the report database at dbPath.
// Pass ":memory:" for an ephemeral store.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open report database: %w", err)
	}

	// WAL mode for concurrent readers; SQLite wants a single writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply report schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the report entry for a path.
func (s *Store) Save(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO report (path, digest, status, error, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			digest = excluded.digest,
			status = excluded.status,
			error = excluded.error,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		entry.Path, entry.Digest, string(entry.Status), entry.Error, time.Now().UTC()); err != nil {
		return fmt.Errorf("save report entry for %q: %w", entry.Path, err)
	}
	return nil
}

// Get returns the report entry for a path, or ErrNotFound.
func (s *Store) Get(ctx context.Context, path string) (*Entry, error) {
	query := `
		SELECT path, digest, status, error, updated_at
		FROM report
		WHERE path = ?
	`
	var entry Entry
	var status string
	err := s.db.QueryRowContext(ctx, query, path).Scan(
		&entry.Path, &entry.Digest, &status, &entry.Error, &entry.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report entry for %q: %w", path, err)
	}
	entry.Status = Status(status)
	return &entry, nil
}

// Skip reports whether a path was already extracted successfully with the
// same content digest, so a re-run can pass over it.
func (s *Store) Skip(ctx context.Context, path, contentDigest string) (bool, error) {
	entry, err := s.Get(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return entry.Status == StatusSuccess && entry.Digest == contentDigest, nil
}
