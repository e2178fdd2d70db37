// Package store builds and queries the on-disk drug database. The database
// is a single SQLite file containing the Orange Book product, patent and
// exclusivity records, the Purple Book biologic records, and FTS5 indexes
// over the searchable name columns.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is a read handle over a built drug database file.
type Store struct {
	db   *sql.DB
	path string
}

// dsn builds the connection string for a database file. WAL keeps readers
// from blocking the builder and busy_timeout covers the handoff window when
// a fresh build replaces the file.
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}

// Open opens an existing database file for querying.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// A single connection serializes access and keeps SQLite lock errors out
	// of concurrent tool calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", path, err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
