// Package boltstore implements a Store backed by an embedded key/value
// database (go.etcd.io/bbolt), the Go ecosystem analog of an embedded
// KV engine such as sled: a single-file, transactional B+Tree with no
// external server process.
package boltstore

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/nblockd/pagecached/internal/store"
	bolt "go.etcd.io/bbolt"
)

var pagesBucket = []byte("pages")

// BoltStore persists pages as key/value entries in a bbolt database,
// keyed by big-endian page index.
type BoltStore struct {
	db       *bolt.DB
	size     uint64
	pageSize uint64
}

// Open opens (creating if necessary) a bbolt database at path.
func Open(path string, size, pageSize uint64) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(pagesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: create bucket: %w", err)
	}
	return &BoltStore{db: db, size: size, pageSize: pageSize}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func indexKey(index uint32) []byte {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], index)
	return key[:]
}

func (s *BoltStore) Get(_ context.Context, index uint32) ([]byte, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(pagesBucket).Get(indexKey(index))
		if v == nil {
			return nil
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("boltstore: get %d: %w", index, err)
	}
	if data == nil {
		return nil, false, nil
	}
	return data, true, nil
}

func (s *BoltStore) Set(_ context.Context, index uint32, data []byte) error {
	if err := store.CheckBounds(s, index, len(data)); err != nil {
		return fmt.Errorf("boltstore: %w", err)
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pagesBucket).Put(indexKey(index), data)
	})
	if err != nil {
		return fmt.Errorf("boltstore: set %d: %w", index, err)
	}
	return nil
}

func (s *BoltStore) Size() uint64     { return s.size }
func (s *BoltStore) PageSize() uint64 { return s.pageSize }

var _ store.Store = (*BoltStore)(nil)
