// Package policy implements Store compositions over other Stores:
// concat (stack multiple stores end-to-end), strip (RAID0-style
// round-robin), and mirror (write to all, read from the first to
// answer).
package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/nblockd/pagecached/internal/store"
)

// ErrNoParts is returned when a composition policy is constructed with
// zero member stores.
var ErrNoParts = errors.New("policy: at least one store is required")

// Concat stacks multiple stores end-to-end: size is the sum of the
// members' sizes, and a page index above the first store's page count
// spills into the next.
type Concat struct {
	parts    []store.Store
	pageSize uint64
}

// NewConcat builds a Concat over parts, which must all share the same
// page size.
func NewConcat(parts []store.Store) (*Concat, error) {
	if len(parts) == 0 {
		return nil, ErrNoParts
	}
	ps := parts[0].PageSize()
	for _, p := range parts {
		if p.PageSize() != ps {
			return nil, fmt.Errorf("policy: concat: %w", store.ErrInvalidPageSize)
		}
	}
	return &Concat{parts: parts, pageSize: ps}, nil
}

func (c *Concat) locate(index uint32) (store.Store, uint32, error) {
	i := uint64(index)
	for _, p := range c.parts {
		pc := store.PageCount(p)
		if i < pc {
			return p, uint32(i), nil
		}
		i -= pc
	}
	return nil, 0, fmt.Errorf("policy: concat: index %d: %w", index, store.ErrPageIndexOutOfRange)
}

func (c *Concat) Get(ctx context.Context, index uint32) ([]byte, bool, error) {
	p, inner, err := c.locate(index)
	if err != nil {
		return nil, false, err
	}
	return p.Get(ctx, inner)
}

func (c *Concat) Set(ctx context.Context, index uint32, data []byte) error {
	p, inner, err := c.locate(index)
	if err != nil {
		return err
	}
	return p.Set(ctx, inner, data)
}

func (c *Concat) Size() uint64 {
	var total uint64
	for _, p := range c.parts {
		total += p.Size()
	}
	return total
}

func (c *Concat) PageSize() uint64 { return c.pageSize }

var _ store.Store = (*Concat)(nil)
