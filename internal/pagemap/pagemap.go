// Package pagemap implements the persistent, memory-mapped page table that
// backs the cache: a fixed-size array of slots, each holding a Header, a
// CRC-64 checksum, and a page-sized data payload, addressed by slot
// address and flushed to disk with msync.
package pagemap

import (
	"fmt"
	"hash/crc64"
	"io"
	"iter"
	"os"
)

// MaxPageSize is the largest page size this package accepts, per the
// on-disk format contract.
const MaxPageSize = 5 * 1024 * 1024

var crcTable = crc64.MakeTable(crc64.ISO)

// PageMap is a memory-mapped, fixed-geometry table of pages. It is not
// safe for concurrent use from multiple goroutines without external
// synchronization; callers (the Cache) enforce single-owner discipline.
type PageMap struct {
	file *os.File
	data []byte // the full mmap'd region

	pageSize  uint64
	dataSize  uint64
	pageCount uint32

	headersOff uint64
	crcsOff    uint64
	dataOff    uint64
}

// Open constructs or re-opens the PageMap file at path with the given
// geometry, following the construction contract: validate parameters,
// open-or-create, verify or extend to the computed size, best-effort
// disable copy-on-write, preallocate, mmap, and write-or-validate Meta.
func Open(path string, dataSize, pageSize uint64) (*PageMap, error) {
	if dataSize == 0 {
		return nil, fmt.Errorf("pagemap: open %s: %w", path, ErrZeroSize)
	}
	if pageSize == 0 || pageSize > MaxPageSize || pageSize > dataSize {
		return nil, fmt.Errorf("pagemap: open %s: %w", path, ErrInvalidPageSize)
	}
	if dataSize%pageSize != 0 {
		return nil, fmt.Errorf("pagemap: open %s: %w", path, ErrSizeNotMultipleOfPageSize)
	}
	pc64 := dataSize / pageSize
	if pc64 > (1 << 32) {
		return nil, fmt.Errorf("pagemap: open %s: %w", path, ErrPageCountTooBig)
	}
	pc := uint32(pc64)

	totalSize := MetaSize + pc64*HeaderSize + pc64*8 + dataSize

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("pagemap: open %s: %w", path, err)
	}
	closeOnErr := true
	defer func() {
		if closeOnErr {
			f.Close()
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("pagemap: stat %s: %w", path, err)
	}

	isNew := fi.Size() == 0
	if !isNew && uint64(fi.Size()) != totalSize {
		return nil, fmt.Errorf("pagemap: open %s: existing size %d, computed %d: %w",
			path, fi.Size(), totalSize, ErrSizeChanged)
	}

	disableCOW(f)

	if err := preallocate(f, int64(totalSize)); err != nil {
		return nil, fmt.Errorf("pagemap: preallocate %s: %w", path, err)
	}

	data, err := mmapFile(f, int64(totalSize))
	if err != nil {
		return nil, fmt.Errorf("pagemap: mmap %s: %w", path, err)
	}

	pm := &PageMap{
		file:       f,
		data:       data,
		pageSize:   pageSize,
		dataSize:   dataSize,
		pageCount:  pc,
		headersOff: MetaSize,
		crcsOff:    MetaSize + pc64*HeaderSize,
		dataOff:    MetaSize + pc64*HeaderSize + pc64*8,
	}

	if isNew {
		newMeta(pageSize, dataSize).write(pm.data[:MetaSize])
	} else {
		m, err := load(pm.data[:MetaSize])
		if err != nil {
			munmapData(pm.data)
			return nil, fmt.Errorf("pagemap: %s: %w", path, err)
		}
		if err := m.validateAgainst(pageSize, dataSize); err != nil {
			munmapData(pm.data)
			return nil, fmt.Errorf("pagemap: %s: %w", path, err)
		}
	}

	closeOnErr = false
	return pm, nil
}

// Close unmaps and closes the underlying file.
func (pm *PageMap) Close() error {
	if err := munmapData(pm.data); err != nil {
		pm.file.Close()
		return fmt.Errorf("pagemap: munmap: %w", err)
	}
	return pm.file.Close()
}

// PageCount returns the slot count (pc in the format spec).
func (pm *PageMap) PageCount() uint32 { return pm.pageCount }

// PageSize returns the configured page size in bytes.
func (pm *PageMap) PageSize() uint64 { return pm.pageSize }

func (pm *PageMap) checkAddr(a uint32) {
	if a >= pm.pageCount {
		panic(fmt.Sprintf("pagemap: slot address %d out of range [0,%d)", a, pm.pageCount))
	}
}

func (pm *PageMap) headerBytes(a uint32) []byte {
	off := pm.headersOff + uint64(a)*HeaderSize
	return pm.data[off : off+HeaderSize]
}

func (pm *PageMap) crcBytes(a uint32) []byte {
	off := pm.crcsOff + uint64(a)*8
	return pm.data[off : off+8]
}

func (pm *PageMap) dataBytes(a uint32) []byte {
	off := pm.dataOff + uint64(a)*pm.pageSize
	return pm.data[off : off+pm.pageSize]
}

// At returns a read-only view of the slot at address a. Panics if a is
// out of range; callers must pre-check.
func (pm *PageMap) At(a uint32) Page {
	pm.checkAddr(a)
	return Page{pm: pm, addr: a}
}

// AtMut returns a mutable view of the slot at address a. Panics if a is
// out of range; callers must pre-check.
func (pm *PageMap) AtMut(a uint32) PageMut {
	pm.checkAddr(a)
	return PageMut{Page{pm: pm, addr: a}}
}

// Iter yields every slot in address order.
func (pm *PageMap) Iter() iter.Seq[Page] {
	return func(yield func(Page) bool) {
		for a := uint32(0); a < pm.pageCount; a++ {
			if !yield(Page{pm: pm, addr: a}) {
				return
			}
		}
	}
}

// FlushPage flushes a single slot: synchronous for the payload, combined
// with a non-blocking flush of the header/CRC prefix.
func (pm *PageMap) FlushPage(a uint32) error {
	return pm.FlushRange(a, 1)
}

// FlushRange flushes n contiguous slots starting at a: synchronous msync
// over the payload bytes `[a*ps, (a+n)*ps)`, plus a non-blocking msync of
// the header/CRC prefix covering those same slots.
func (pm *PageMap) FlushRange(a, n uint32) error {
	if n == 0 {
		return nil
	}
	pm.checkAddr(a)
	last := a + n - 1
	pm.checkAddr(last)

	payloadStart := pm.dataOff + uint64(a)*pm.pageSize
	payloadEnd := pm.dataOff + uint64(a+n)*pm.pageSize
	if err := msyncRange(pm.data, payloadStart, payloadEnd, true); err != nil {
		return fmt.Errorf("pagemap: flush range payload: %w", err)
	}

	prefixStart := pm.headersOff + uint64(a)*HeaderSize
	headerEnd := pm.headersOff + uint64(a+n)*HeaderSize
	if err := msyncRange(pm.data, prefixStart, headerEnd, false); err != nil {
		return fmt.Errorf("pagemap: flush range header: %w", err)
	}
	crcStart := pm.crcsOff + uint64(a)*8
	crcEnd := pm.crcsOff + uint64(a+n)*8
	if err := msyncRange(pm.data, crcStart, crcEnd, false); err != nil {
		return fmt.Errorf("pagemap: flush range crc: %w", err)
	}
	return nil
}

// FlushRangeAsync flushes n contiguous slots starting at a, entirely
// non-blocking (payload and header/CRC prefix alike).
func (pm *PageMap) FlushRangeAsync(a, n uint32) error {
	if n == 0 {
		return nil
	}
	pm.checkAddr(a)
	pm.checkAddr(a + n - 1)

	payloadStart := pm.dataOff + uint64(a)*pm.pageSize
	payloadEnd := pm.dataOff + uint64(a+n)*pm.pageSize
	if err := msyncRange(pm.data, payloadStart, payloadEnd, false); err != nil {
		return fmt.Errorf("pagemap: flush range async payload: %w", err)
	}
	prefixStart := pm.headersOff + uint64(a)*HeaderSize
	crcEnd := pm.crcsOff + uint64(a+n)*8
	if err := msyncRange(pm.data, prefixStart, crcEnd, false); err != nil {
		return fmt.Errorf("pagemap: flush range async prefix: %w", err)
	}
	return nil
}

// FlushAsync flushes the entire map, non-blocking.
func (pm *PageMap) FlushAsync() error {
	if err := msyncRange(pm.data, 0, uint64(len(pm.data)), false); err != nil {
		return fmt.Errorf("pagemap: flush async: %w", err)
	}
	return nil
}

// Page is a read-only view of one slot.
type Page struct {
	pm   *PageMap
	addr uint32
}

// Address returns this page's slot address.
func (p Page) Address() uint32 { return p.addr }

// Header returns the slot's current header.
func (p Page) Header() Header {
	return UnmarshalHeader(p.pm.headerBytes(p.addr))
}

// Data returns the slot's payload bytes. The returned slice aliases the
// underlying mmap; it must not be retained past the PageMap's lifetime.
func (p Page) Data() []byte {
	return p.pm.dataBytes(p.addr)
}

// CRC returns the slot's stored CRC-64/GO-ISO checksum.
func (p Page) CRC() uint64 {
	return readUint64(p.pm.crcBytes(p.addr))
}

// IsCRCOK reports whether the stored CRC matches the current payload.
func (p Page) IsCRCOK() bool {
	return p.CRC() == crc64.Checksum(p.Data(), crcTable)
}

// PageMut is a mutable view of one slot.
type PageMut struct {
	Page
}

// SetHeader overwrites the slot's header.
func (p PageMut) SetHeader(h Header) {
	MarshalHeader(h, p.pm.headerBytes(p.addr))
}

// DataMut returns the slot's payload bytes for mutation. The returned
// slice aliases the underlying mmap.
func (p PageMut) DataMut() []byte {
	return p.pm.dataBytes(p.addr)
}

// UpdateCRC recomputes the CRC over the current payload and stores it.
func (p PageMut) UpdateCRC() {
	c := crc64.Checksum(p.Data(), crcTable)
	writeUint64(p.pm.crcBytes(p.addr), c)
}

func readUint64(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func writeUint64(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}

var _ io.Closer = (*PageMap)(nil)
