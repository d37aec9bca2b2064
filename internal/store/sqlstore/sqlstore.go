// Package sqlstore implements a Store backed by a SQL database accessed
// through database/sql, using modernc.org/sqlite as the default pure-Go
// driver.
//
// What: a key/value table (page index -> payload blob) exposed through
// the Store contract.
// How: a single prepared schema (CREATE TABLE IF NOT EXISTS) and two
// statements, upsert and select, run against a *sql.DB.
// Why: SQL backends let a deployment reuse existing database
// infrastructure (replication, backup tooling, managed hosting) instead
// of a bespoke file format.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nblockd/pagecached/internal/store"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	page_index INTEGER PRIMARY KEY,
	data BLOB NOT NULL
);
`

// SQLStore persists pages as rows in a SQL table.
type SQLStore struct {
	db       *sql.DB
	size     uint64
	pageSize uint64
}

// Open opens (creating if necessary) a sqlite database at dsn and
// ensures its schema exists.
func Open(dsn string, size, pageSize uint64) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", dsn, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: create schema: %w", err)
	}
	return &SQLStore{db: db, size: size, pageSize: pageSize}, nil
}

// Close closes the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Get(ctx context.Context, index uint32) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM pages WHERE page_index = ?`, index).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlstore: get %d: %w", index, err)
	}
	return data, true, nil
}

func (s *SQLStore) Set(ctx context.Context, index uint32, data []byte) error {
	if err := store.CheckBounds(s, index, len(data)); err != nil {
		return fmt.Errorf("sqlstore: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pages (page_index, data) VALUES (?, ?)
		 ON CONFLICT(page_index) DO UPDATE SET data = excluded.data`,
		index, data)
	if err != nil {
		return fmt.Errorf("sqlstore: set %d: %w", index, err)
	}
	return nil
}

func (s *SQLStore) Size() uint64     { return s.size }
func (s *SQLStore) PageSize() uint64 { return s.pageSize }

var _ store.Store = (*SQLStore)(nil)
