// Package filestore implements a Store backed by its own PageMap, so a
// backend can itself be a local file with the same per-page CRC and
// header bookkeeping as the cache's own map.
package filestore

import (
	"context"
	"fmt"

	"github.com/nblockd/pagecached/internal/pagemap"
	"github.com/nblockd/pagecached/internal/store"
)

// FileStore persists pages in a local file via a PageMap.
type FileStore struct {
	pm   *pagemap.PageMap
	size uint64
}

// Open constructs a FileStore at path with the given geometry.
func Open(path string, size, pageSize uint64) (*FileStore, error) {
	pm, err := pagemap.Open(path, size, pageSize)
	if err != nil {
		return nil, fmt.Errorf("filestore: open %s: %w", path, err)
	}
	return &FileStore{pm: pm, size: size}, nil
}

// Close releases the underlying PageMap.
func (s *FileStore) Close() error {
	return s.pm.Close()
}

func (s *FileStore) Get(_ context.Context, index uint32) ([]byte, bool, error) {
	if index >= s.pm.PageCount() {
		return nil, false, fmt.Errorf("filestore: get %d: %w", index, store.ErrPageIndexOutOfRange)
	}
	p := s.pm.At(index)
	if !p.Header().Occupied {
		return nil, false, nil
	}
	out := make([]byte, len(p.Data()))
	copy(out, p.Data())
	return out, true, nil
}

func (s *FileStore) Set(_ context.Context, index uint32, data []byte) error {
	if err := store.CheckBounds(s, index, len(data)); err != nil {
		return fmt.Errorf("filestore: %w", err)
	}

	p := s.pm.AtMut(index)
	copy(p.DataMut(), data)
	p.SetHeader(pagemap.Header{PageID: index, Occupied: true})
	p.UpdateCRC()

	// FileStore flushes each write immediately: it is a backend, not
	// the cache, and has no separate dirty-range coalescing of its own.
	return s.pm.FlushPage(index)
}

func (s *FileStore) Size() uint64     { return s.size }
func (s *FileStore) PageSize() uint64 { return s.pm.PageSize() }

var _ store.Store = (*FileStore)(nil)
