package store

import "context"

// Memory is an in-process Store backed by a plain map, useful for tests
// and for backends composed in policy tests without touching disk.
type Memory struct {
	pageSize uint64
	size     uint64
	pages    map[uint32][]byte
}

// NewMemory builds a Memory store with the given total size and page
// size. size must be a multiple of pageSize; callers are expected to
// have validated geometry upstream (this type has no constructor error
// return since it never touches the filesystem).
func NewMemory(size, pageSize uint64) *Memory {
	return &Memory{
		pageSize: pageSize,
		size:     size,
		pages:    make(map[uint32][]byte),
	}
}

func (m *Memory) Get(_ context.Context, index uint32) ([]byte, bool, error) {
	data, ok := m.pages[index]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, index uint32, data []byte) error {
	if err := CheckBounds(m, index, len(data)); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.pages[index] = buf
	return nil
}

func (m *Memory) Size() uint64     { return m.size }
func (m *Memory) PageSize() uint64 { return m.pageSize }

var _ Store = (*Memory)(nil)
