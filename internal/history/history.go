// Package history keeps a record of builds in a SQLite database.
package history

import (
	"context"
	"database/sql"
	derrors "errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Record is one finished build.
type Record struct {
	BuildID     string
	StartedAt   time.Time
	Duration    time.Duration
	Outcome     string
	Version     int
	Pages       int
	Failures    int
	BrokenLinks int
	Error       string
}

// Store persists build records.
type Store interface {
	Add(ctx context.Context, rec Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
	Get(ctx context.Context, buildID string) (Record, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

const schema = `
CREATE TABLE IF NOT EXISTS builds (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	build_id TEXT NOT NULL UNIQUE,
	started_at INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	version INTEGER NOT NULL,
	pages INTEGER NOT NULL,
	failures INTEGER NOT NULL,
	broken_links INTEGER NOT NULL,
	error TEXT
);
CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
`

const selectColumns = "SELECT build_id, started_at, duration_ms, outcome, version, pages, failures, broken_links, error FROM builds"

// Open opens (creating if needed) the database at dbPath. Use ":memory:"
// for a throwaway store.
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "create history directory").
				WithContext("path", dbPath).
				Build()
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "open history database").
			WithContext("path", dbPath).
			Build()
	}
	// ":memory:" databases exist per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.CategoryStorage, "initialize history schema").Build()
	}
	return &SQLiteStore{db: db}, nil
}

// Add stores rec.
func (s *SQLiteStore) Add(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, started_at, duration_ms, outcome, version, pages, failures, broken_links, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rec.BuildID, rec.StartedAt.UnixMilli(), rec.Duration.Milliseconds(), rec.Outcome,
		rec.Version, rec.Pages, rec.Failures, rec.BrokenLinks, rec.Error,
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "insert build record").
			WithContext("build_id", rec.BuildID).
			Build()
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY started_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "query build records").Build()
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "iterate build records").Build()
	}
	return out, nil
}

// Get returns the record of one build.
func (s *SQLiteStore) Get(ctx context.Context, buildID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectColumns+" WHERE build_id = ?", buildID))
	if derrors.Is(err, sql.ErrNoRows) {
		return Record{}, errors.NotFoundError("build not found").WithContext("build_id", buildID).Build()
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec        Record
		startedMS  int64
		durationMS int64
		errText    sql.NullString
	)
	err := row.Scan(&rec.BuildID, &startedMS, &durationMS, &rec.Outcome, &rec.Version,
		&rec.Pages, &rec.Failures, &rec.BrokenLinks, &errText)
	if derrors.Is(err, sql.ErrNoRows) {
		return Record{}, err
	}
	if err != nil {
		return Record{}, errors.WrapError(err, errors.CategoryStorage, "scan build record").Build()
	}
	rec.StartedAt = time.UnixMilli(startedMS)
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.Error = errText.String
	return rec, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
