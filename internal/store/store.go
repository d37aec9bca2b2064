// Package store defines the backend contract that the cache warms pages
// from and writes dirty pages back to: a logical, page-indexed key/value
// space. Concrete backends (file, SQL, embedded KV) and composition
// policies (concat, strip, mirror) live in subpackages.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors returned by Store implementations in this package and
// its subpackages.
var (
	// ErrInvalidPageSize is returned by Set when the provided payload's
	// length does not equal the store's configured page size.
	ErrInvalidPageSize = errors.New("store: invalid page size")

	// ErrPageIndexOutOfRange is returned when index is >= the store's
	// page count.
	ErrPageIndexOutOfRange = errors.New("store: page index out of range")
)

// Store is a logical pagewise key/value contract indexed by a uint32
// page index. Implementations may be backed by a local file, an
// embedded KV store, a SQL database, or a composition of other Stores.
type Store interface {
	// Get returns the bytes stored under index, or ok=false if index
	// has never been set (the cache treats that as zero-filled).
	Get(ctx context.Context, index uint32) (data []byte, ok bool, err error)

	// Set persists data under index. len(data) must equal PageSize();
	// otherwise Set fails with ErrInvalidPageSize. Fails with
	// ErrPageIndexOutOfRange if index is out of bounds.
	Set(ctx context.Context, index uint32, data []byte) error

	// Size returns the total logical byte capacity of the backend.
	Size() uint64

	// PageSize returns the page size this store was configured with. It
	// must match the PageMap and Cache configuration.
	PageSize() uint64
}

// PageCount is a convenience helper returning s.Size() / s.PageSize().
func PageCount(s Store) uint64 {
	return s.Size() / s.PageSize()
}

// CheckBounds validates index and the length of a payload being set
// against a store's geometry. Concrete Store implementations call this
// at the top of Set to produce uniform errors.
func CheckBounds(s Store, index uint32, payloadLen int) error {
	if uint64(payloadLen) != s.PageSize() {
		return fmt.Errorf("store: payload length %d, want %d: %w", payloadLen, s.PageSize(), ErrInvalidPageSize)
	}
	if uint64(index) >= PageCount(s) {
		return fmt.Errorf("store: index %d >= page count %d: %w", index, PageCount(s), ErrPageIndexOutOfRange)
	}
	return nil
}
