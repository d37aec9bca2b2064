// Package device adapts byte-addressable (offset, length) I/O, as a
// kernel block-device transport would issue it, to the page-granular
// operations of the cache: page-aligned read/write loops, dirty-range
// flush coalescing, and idle-triggered opportunistic eviction.
package device

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nblockd/pagecached/internal/cache"
)

// ControlKind distinguishes the two messages a Device's Control
// operation accepts.
type ControlKind int

const (
	// ControlShutdown requests an orderly shutdown; it is a no-op for
	// the core (the surrounding transport owns process lifecycle).
	ControlShutdown ControlKind = iota
	// ControlEvict requests an opportunistic eviction sweep if the
	// device has been idle longer than Idle.
	ControlEvict
)

// Control is the message type accepted by Device.Control.
type Control struct {
	Kind ControlKind
	Idle time.Duration
}

// evictBudget bounds how long a single idle-triggered eviction sweep may
// run before yielding back to the transport.
const evictBudget = 50 * time.Millisecond

// Device translates byte-range I/O into page-granular Cache operations.
// It is not safe for concurrent use: a single owner must serialize
// Read, Write, Flush, and Control calls, matching the cooperative
// single-task scheduling model the core assumes. Stats may be read
// concurrently from another goroutine, such as a metrics scrape.
type Device struct {
	cache *cache.Cache
	flush FlushRange
	atime time.Time

	Stats Stats
}

// New wraps cache with a Device. The device's atime starts at the time
// of construction.
func New(c *cache.Cache) *Device {
	return &Device{cache: c, atime: time.Now()}
}

func translateErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, cache.ErrPageIndexOutOfRange) {
		return fmt.Errorf("device: %s: %w: %v", op, ErrInvalidInput, err)
	}
	return fmt.Errorf("device: %s: %w", op, err)
}

// Read copies len(buf) bytes starting at the logical byte offset into
// buf, demand-loading any pages not already cached.
func (d *Device) Read(ctx context.Context, offset uint64, buf []byte) (int, error) {
	ps := d.cache.PageSize()
	startPage := offset / ps
	if startPage > math.MaxUint32 {
		d.Stats.Errors.Add(1)
		return 0, fmt.Errorf("device: read at %d: %w: page index overflows uint32", offset, ErrInvalidInput)
	}

	i := uint32(startPage)
	inner := offset % ps
	pos := 0
	for pos < len(buf) {
		page, err := d.cache.Get(ctx, i)
		if err != nil {
			d.Stats.Errors.Add(1)
			return pos, translateErr("read", err)
		}
		n := copy(buf[pos:], page.Data()[inner:])
		pos += n
		inner = 0
		i++
	}

	d.atime = time.Now()
	d.Stats.Reads.Add(1)
	d.Stats.BytesRead.Add(int64(len(buf)))
	return len(buf), nil
}

// Write copies buf into the device starting at the logical byte offset,
// marking every touched page dirty and registering it with the pending
// flush-range coalescer.
func (d *Device) Write(ctx context.Context, offset uint64, buf []byte) (int, error) {
	ps := d.cache.PageSize()
	startPage := offset / ps
	if startPage > math.MaxUint32 {
		d.Stats.Errors.Add(1)
		return 0, fmt.Errorf("device: write at %d: %w: page index overflows uint32", offset, ErrInvalidInput)
	}

	i := uint32(startPage)
	inner := offset % ps
	pos := 0
	for pos < len(buf) {
		page, err := d.cache.GetMut(ctx, i)
		if err != nil {
			d.Stats.Errors.Add(1)
			return pos, translateErr("write", err)
		}
		n := copy(page.DataMut()[inner:], buf[pos:])
		page.UpdateCRC()
		h := page.Header()
		h.Dirty = true
		page.SetHeader(h)

		if r, closed := d.flush.Append(page.Address()); closed {
			if err := d.cache.FlushRange(r.Start, r.Len()); err != nil {
				d.Stats.Errors.Add(1)
				return pos + n, translateErr("write: flush range", err)
			}
		}

		pos += n
		inner = 0
		i++
	}

	d.atime = time.Now()
	d.Stats.Writes.Add(1)
	d.Stats.BytesWrite.Add(int64(len(buf)))
	return len(buf), nil
}

// LoadCount returns the cumulative number of backend fetches triggered
// by cache misses across the device's lifetime.
func (d *Device) LoadCount() int64 {
	return d.cache.Loads()
}

// Flush performs a non-blocking msync of the entire underlying map.
func (d *Device) Flush() error {
	err := d.cache.Flush()
	if err != nil {
		d.Stats.Errors.Add(1)
		return translateErr("flush", err)
	}
	d.Stats.Flushes.Add(1)
	return nil
}

// Control handles a Shutdown or Evict(duration) message. Shutdown is a
// no-op; Evict runs an opportunistic, budget-bounded write-back sweep
// only if the device has been idle longer than msg.Idle.
func (d *Device) Control(ctx context.Context, msg Control) error {
	switch msg.Kind {
	case ControlShutdown:
		return nil
	case ControlEvict:
		if time.Since(d.atime) <= msg.Idle {
			return nil
		}
		if err := d.cache.Evict(ctx, evictBudget); err != nil {
			d.Stats.Errors.Add(1)
			return translateErr("control evict", err)
		}
		d.Stats.Evictions.Add(1)
		return nil
	default:
		return fmt.Errorf("device: control: unknown message kind %d", msg.Kind)
	}
}
