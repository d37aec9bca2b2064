package pagemap

import "encoding/binary"

// HeaderSize is the on-disk size, in bytes, of a single Header entry.
const HeaderSize = 8

// Header flag bits, packed into the upper 32 bits of the on-disk word.
const (
	// FlagOccupied marks a slot as holding a valid page mapping.
	FlagOccupied uint32 = 1 << 0
	// FlagDirty marks a slot's payload as modified since it was last
	// written back to the backend Store.
	FlagDirty uint32 = 1 << 1
)

// Header is the in-memory view of a single slot's control word: which
// logical page (if any) currently occupies the slot, and whether that
// slot holds writes not yet written back to the backend Store.
//
// On disk a Header is a single little-endian uint64: the low 32 bits are
// the page ID, the high 32 bits are flag bits.
type Header struct {
	PageID   uint32
	Occupied bool
	Dirty    bool
}

// MarshalHeader writes h into the first HeaderSize bytes of buf.
func MarshalHeader(h Header, buf []byte) {
	if len(buf) < HeaderSize {
		panic("pagemap: buffer too small for Header")
	}
	var flags uint32
	if h.Occupied {
		flags |= FlagOccupied
	}
	if h.Dirty {
		flags |= FlagDirty
	}
	binary.LittleEndian.PutUint32(buf[0:4], h.PageID)
	binary.LittleEndian.PutUint32(buf[4:8], flags)
}

// UnmarshalHeader reads a Header from the first HeaderSize bytes of buf.
func UnmarshalHeader(buf []byte) Header {
	flags := binary.LittleEndian.Uint32(buf[4:8])
	return Header{
		PageID:   binary.LittleEndian.Uint32(buf[0:4]),
		Occupied: flags&FlagOccupied != 0,
		Dirty:    flags&FlagDirty != 0,
	}
}
