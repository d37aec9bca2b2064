package device

// FlushLength is the maximum number of contiguous slot addresses
// coalesced into a single pending flush range.
const FlushLength = 4

// Range is a closed-and-snapshotted half-open interval [Start, End) of
// slot addresses, ready to be flushed.
type Range struct {
	Start, End uint32
}

// Len returns the number of slots covered by r.
func (r Range) Len() uint32 { return r.End - r.Start }

// FlushRange tracks a single pending half-open interval [start, end) of
// slot addresses written since the last flush, coalescing sequential
// writes into runs of up to FlushLength slots.
type FlushRange struct {
	start, end uint32
	open       bool
}

// Append registers a write to slot address addr. It returns the closed
// range and true if appending addr closed a previously open run (either
// because addr was non-contiguous or the run reached FlushLength); the
// caller is expected to flush that range. Otherwise it returns
// (Range{}, false) and the write has been folded into the still-open
// run.
func (f *FlushRange) Append(addr uint32) (Range, bool) {
	if f.open && addr >= f.start && addr < f.end {
		return Range{}, false
	}
	if f.open && addr == f.end && f.end-f.start < FlushLength {
		f.end++
		return Range{}, false
	}

	var closed Range
	hadClosed := false
	if f.open && f.end > f.start {
		closed = Range{Start: f.start, End: f.end}
		hadClosed = true
	}
	f.start = addr
	f.end = addr + 1
	f.open = true
	return closed, hadClosed
}
