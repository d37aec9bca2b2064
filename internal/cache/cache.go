// Package cache implements the LRU that sits between the byte-range
// Device and the persistent PageMap, demand-loading pages from a
// backend Store on miss and writing dirty pages back under eviction.
package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nblockd/pagecached/internal/pagemap"
	"github.com/nblockd/pagecached/internal/store"
)

// Cache maps logical page-ids to PageMap slot addresses, backed by a
// Store for demand-load and write-back. Not safe for concurrent use
// without external synchronization; the Device's single owner
// serializes all calls that reach it.
type Cache struct {
	lru   *lru.Cache[uint32, uint32] // page-id -> slot address
	pm    *pagemap.PageMap
	store store.Store

	devicePageCount uint32
	loads           atomic.Int64
}

// Open builds (or re-opens) the PageMap at path with the given geometry
// and constructs a Cache over it backed by store. Every slot whose
// header has Occupied set is loaded into the LRU, per the reload-scan
// contract.
func Open(path string, dataSize, pageSize uint64, backend store.Store) (*Cache, error) {
	if backend.PageSize() != pageSize {
		return nil, fmt.Errorf("cache: open %s: backend page size %d, cache page size %d: %w",
			path, backend.PageSize(), pageSize, ErrBackendPageSizeMismatch)
	}

	pm, err := pagemap.Open(path, dataSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	l, err := lru.New[uint32, uint32](int(pm.PageCount()))
	if err != nil {
		pm.Close()
		return nil, fmt.Errorf("cache: construct lru: %w", err)
	}

	for p := range pm.Iter() {
		h := p.Header()
		if h.Occupied {
			l.Add(h.PageID, p.Address())
		}
	}

	return &Cache{
		lru:             l,
		pm:              pm,
		store:           backend,
		devicePageCount: uint32(store.PageCount(backend)),
	}, nil
}

// Close unmaps and closes the underlying PageMap without an explicit
// msync. It does not flush
// dirty pages to the backend Store; callers that want a clean shutdown
// should Evict first.
func (c *Cache) Close() error {
	return c.pm.Close()
}

// PageSize returns the configured page size in bytes.
func (c *Cache) PageSize() uint64 { return c.pm.PageSize() }

// Loads returns the cumulative number of backend fetches triggered by
// cache misses.
func (c *Cache) Loads() int64 { return c.loads.Load() }

func (c *Cache) checkPage(page uint32) error {
	if page >= c.devicePageCount {
		return fmt.Errorf("cache: page %d >= device page count %d: %w", page, c.devicePageCount, ErrPageIndexOutOfRange)
	}
	return nil
}

// Get returns a read-only view of the given logical page, demand-loading
// it on a cache miss.
func (c *Cache) Get(ctx context.Context, page uint32) (pagemap.Page, error) {
	if err := c.checkPage(page); err != nil {
		return pagemap.Page{}, err
	}
	if addr, ok := c.lru.Get(page); ok {
		return c.pm.At(addr), nil
	}
	addr, err := c.warm(ctx, page)
	if err != nil {
		return pagemap.Page{}, err
	}
	return c.pm.At(addr), nil
}

// GetMut is like Get but returns a mutable view. Callers must set the
// slot's Dirty flag after mutating the payload; GetMut does not do this
// automatically because not every GetMut call ends in a write.
func (c *Cache) GetMut(ctx context.Context, page uint32) (pagemap.PageMut, error) {
	if err := c.checkPage(page); err != nil {
		return pagemap.PageMut{}, err
	}
	if addr, ok := c.lru.Get(page); ok {
		return c.pm.AtMut(addr), nil
	}
	addr, err := c.warm(ctx, page)
	if err != nil {
		return pagemap.PageMut{}, err
	}
	return c.pm.AtMut(addr), nil
}

// warm is the miss path: pick a slot (free, or the LRU victim), write
// back the victim if dirty, re-initialize the slot for the incoming
// page, fetch from the backend (zero-filling on a miss), and insert the
// new mapping into the LRU, implicitly evicting the victim.
func (c *Cache) warm(ctx context.Context, page uint32) (uint32, error) {
	c.loads.Add(1)
	var addr uint32

	if c.lru.Len() < int(c.pm.PageCount()) {
		addr = uint32(c.lru.Len())
	} else {
		victimPage, victimAddr, ok := c.lru.GetOldest()
		if !ok {
			return 0, fmt.Errorf("cache: warm page %d: lru unexpectedly empty", page)
		}
		addr = victimAddr

		victim := c.pm.At(victimAddr)
		if victim.Header().Dirty {
			if err := c.store.Set(ctx, victimPage, victim.Data()); err != nil {
				return 0, fmt.Errorf("cache: warm page %d: writeback victim %d: %w", page, victimPage, err)
			}
		}
	}

	// Re-initialize the slot for the incoming page before touching the
	// backend, so a failed fetch still leaves the slot zero-filled
	// rather than carrying over a victim's stale bytes.
	slot := c.pm.AtMut(addr)
	slot.SetHeader(pagemap.Header{PageID: page, Occupied: true, Dirty: false})
	data := slot.DataMut()
	for i := range data {
		data[i] = 0
	}

	fetched, ok, err := c.store.Get(ctx, page)
	if err != nil {
		slot.UpdateCRC()
		return addr, fmt.Errorf("cache: warm page %d: fetch: %w", page, err)
	}
	if ok {
		copy(slot.DataMut(), fetched)
	}
	slot.UpdateCRC()

	c.lru.Add(page, addr)
	return addr, nil
}

// Flush performs a non-blocking msync of the entire map.
func (c *Cache) Flush() error {
	return c.pm.FlushAsync()
}

// FlushRange performs a non-blocking msync over n contiguous slots
// starting at slot address addr, plus their header/CRC prefix.
func (c *Cache) FlushRange(addr, n uint32) error {
	return c.pm.FlushRangeAsync(addr, n)
}

// Evict opportunistically writes back dirty slots to the backend Store,
// walking the LRU from coldest to hottest, until budget has elapsed.
// No guarantee is made that any specific page is evicted.
func (c *Cache) Evict(ctx context.Context, budget time.Duration) error {
	deadline := time.Now().Add(budget)
	for _, page := range c.lru.Keys() {
		if time.Now().After(deadline) {
			return nil
		}
		addr, ok := c.lru.Peek(page)
		if !ok {
			continue
		}
		slot := c.pm.At(addr)
		h := slot.Header()
		if !h.Dirty {
			continue
		}
		if err := c.store.Set(ctx, page, slot.Data()); err != nil {
			return fmt.Errorf("cache: evict page %d: %w", page, err)
		}
		h.Dirty = false
		c.pm.AtMut(addr).SetHeader(h)
	}
	return nil
}
