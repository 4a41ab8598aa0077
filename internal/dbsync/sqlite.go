package dbsync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens an embedded SQLite database at path and makes sure the
// block table exists.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	// optional tuning, failures are ignored
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")
	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout=5000;")

	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the block table laid out like the db-sync one, with
// time stored as unix seconds.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmt := `
CREATE TABLE IF NOT EXISTS block (
  block_no INTEGER PRIMARY KEY,
  hash BLOB NOT NULL UNIQUE,
  epoch_no INTEGER NOT NULL,
  slot_no INTEGER NOT NULL,
  time INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_block_slot_no ON block (slot_no);
CREATE INDEX IF NOT EXISTS idx_block_time ON block (time);`
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create block schema: %w", err)
	}
	return nil
}
