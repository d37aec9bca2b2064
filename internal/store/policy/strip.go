package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/nblockd/pagecached/internal/store"
)

// ErrStoresNotSameSize is returned when Strip or Mirror member stores
// disagree on total size.
var ErrStoresNotSameSize = errors.New("policy: member stores must all have the same size")

// Strip stripes pages round-robin across equally-sized member stores,
// RAID0-style. Once a Strip is in use, its member set must not change:
// every offset depends on the part count.
type Strip struct {
	parts    []store.Store
	pageSize uint64
	size     uint64
}

// NewStrip builds a Strip over parts, which must all share the same
// size and page size.
func NewStrip(parts []store.Store) (*Strip, error) {
	if len(parts) == 0 {
		return nil, ErrNoParts
	}
	size := parts[0].Size()
	ps := parts[0].PageSize()
	for _, p := range parts {
		if p.Size() != size {
			return nil, fmt.Errorf("policy: strip: %w", ErrStoresNotSameSize)
		}
		if p.PageSize() != ps {
			return nil, fmt.Errorf("policy: strip: %w", store.ErrInvalidPageSize)
		}
	}
	return &Strip{parts: parts, pageSize: ps, size: size * uint64(len(parts))}, nil
}

func (s *Strip) split(index uint32) (store.Store, uint32, error) {
	if uint64(index) >= store.PageCount(s) {
		return nil, 0, fmt.Errorf("policy: strip: index %d: %w", index, store.ErrPageIndexOutOfRange)
	}
	n := uint32(len(s.parts))
	outer := index % n
	inner := index / n
	return s.parts[outer], inner, nil
}

func (s *Strip) Get(ctx context.Context, index uint32) ([]byte, bool, error) {
	p, inner, err := s.split(index)
	if err != nil {
		return nil, false, err
	}
	return p.Get(ctx, inner)
}

func (s *Strip) Set(ctx context.Context, index uint32, data []byte) error {
	p, inner, err := s.split(index)
	if err != nil {
		return err
	}
	return p.Set(ctx, inner, data)
}

func (s *Strip) Size() uint64     { return s.size }
func (s *Strip) PageSize() uint64 { return s.pageSize }

var _ store.Store = (*Strip)(nil)
