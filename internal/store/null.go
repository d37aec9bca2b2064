package store

import "context"

// Null is a Store whose Get always reports a miss and whose Set
// silently discards its payload. It exists to exercise the cache's
// cold-miss zero-fill path without any real backend.
type Null struct {
	size     uint64
	pageSize uint64
}

// NewNull builds a Null store reporting the given geometry.
func NewNull(size, pageSize uint64) *Null {
	return &Null{size: size, pageSize: pageSize}
}

func (n *Null) Get(_ context.Context, _ uint32) ([]byte, bool, error) {
	return nil, false, nil
}

func (n *Null) Set(_ context.Context, index uint32, data []byte) error {
	return CheckBounds(n, index, len(data))
}

func (n *Null) Size() uint64     { return n.size }
func (n *Null) PageSize() uint64 { return n.pageSize }

var _ Store = (*Null)(nil)
