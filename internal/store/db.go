// Package store owns the persisted job set: a sqlite database keyed by
// content fingerprint, the single source of truth read by every downstream
// consumer. Writes go through one transaction per run so an interrupted run
// leaves the previous state intact.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

func Open(path string) (*Store, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{
		db:   db,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AcquireRunLock serializes whole runs on the store. The merge/persist
// critical section must never execute concurrently for the same database.
func (s *Store) AcquireRunLock(ctx context.Context) error {
	ok, err := s.lock.TryLockContext(ctx, 250*time.Millisecond)
	if err != nil {
		return fmt.Errorf("store lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("store lock: not acquired")
	}
	return nil
}

func (s *Store) ReleaseRunLock() error {
	return s.lock.Unlock()
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  fingerprint TEXT PRIMARY KEY,
  source_id   TEXT NOT NULL,
  title       TEXT NOT NULL,
  organization TEXT NOT NULL,
  location    TEXT NOT NULL,
  description TEXT NOT NULL,
  url         TEXT NOT NULL DEFAULT '',
  donor_tags  TEXT NOT NULL DEFAULT '[]',
  first_seen  TEXT NOT NULL,
  last_seen   TEXT NOT NULL,
  score       INTEGER NOT NULL DEFAULT 0,
  breakdown   TEXT NOT NULL DEFAULT '',
  status      TEXT NOT NULL,
  diagnostics TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_jobs_status_score ON jobs(status, score DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_last_seen ON jobs(last_seen DESC);
`)
	return err
}
