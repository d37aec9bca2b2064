package policy

import (
	"context"
	"fmt"

	"github.com/nblockd/pagecached/internal/store"
	"golang.org/x/sync/errgroup"
)

// Mirror writes every page to all member stores concurrently and reads
// from the first member that answers with a value, falling through to
// the next on a miss or error. Size equals a single member's size.
type Mirror struct {
	parts    []store.Store
	pageSize uint64
	size     uint64
}

// NewMirror builds a Mirror over parts, which must all share the same
// size and page size.
func NewMirror(parts []store.Store) (*Mirror, error) {
	if len(parts) == 0 {
		return nil, ErrNoParts
	}
	size := parts[0].Size()
	ps := parts[0].PageSize()
	for _, p := range parts {
		if p.Size() != size {
			return nil, fmt.Errorf("policy: mirror: %w", ErrStoresNotSameSize)
		}
		if p.PageSize() != ps {
			return nil, fmt.Errorf("policy: mirror: %w", store.ErrInvalidPageSize)
		}
	}
	return &Mirror{parts: parts, pageSize: ps, size: size}, nil
}

// Set writes data to every member store concurrently. It fails if any
// member's write fails.
func (m *Mirror) Set(ctx context.Context, index uint32, data []byte) error {
	if uint64(index) >= store.PageCount(m) {
		return fmt.Errorf("policy: mirror: index %d: %w", index, store.ErrPageIndexOutOfRange)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range m.parts {
		p := p
		g.Go(func() error {
			return p.Set(gctx, index, data)
		})
	}
	return g.Wait()
}

// Get queries every member store concurrently and returns the first
// successful hit. If every member misses, Get reports a miss; if every
// member that was queried errored, the last error is returned.
func (m *Mirror) Get(ctx context.Context, index uint32) ([]byte, bool, error) {
	if uint64(index) >= store.PageCount(m) {
		return nil, false, fmt.Errorf("policy: mirror: index %d: %w", index, store.ErrPageIndexOutOfRange)
	}

	type result struct {
		data []byte
		ok   bool
		err  error
	}
	results := make([]result, len(m.parts))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range m.parts {
		i, p := i, p
		g.Go(func() error {
			data, ok, err := p.Get(gctx, index)
			results[i] = result{data: data, ok: ok, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var lastErr error
	for _, r := range results {
		if r.err != nil {
			lastErr = r.err
			continue
		}
		if r.ok {
			return r.data, true, nil
		}
	}
	if lastErr != nil {
		return nil, false, fmt.Errorf("policy: mirror: all stores failed or missed: %w", lastErr)
	}
	return nil, false, nil
}

func (m *Mirror) Size() uint64     { return m.size }
func (m *Mirror) PageSize() uint64 { return m.pageSize }

var _ store.Store = (*Mirror)(nil)
