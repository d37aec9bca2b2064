package pagemap

import (
	"encoding/binary"
	"fmt"
)

// MetaSize is the on-disk size, in bytes, of the Meta preamble.
const MetaSize = 24

// metaMagic identifies a valid cache file. Arbitrary but fixed.
const metaMagic uint32 = 0x70474243 // "pGBC"

// metaVersion is the current on-disk format version.
const metaVersion uint32 = 1

// Meta is the fixed preamble written at offset 0 of every cache file. All
// fields are big-endian on disk, independent of the host's native byte
// order; the headers and CRCs that follow are stored little-endian.
type Meta struct {
	Magic    uint32
	Version  uint32
	PageSize uint64
	DataSize uint64
}

// newMeta builds the Meta for a freshly created cache file of the given
// geometry.
func newMeta(pageSize, dataSize uint64) Meta {
	return Meta{
		Magic:    metaMagic,
		Version:  metaVersion,
		PageSize: pageSize,
		DataSize: dataSize,
	}
}

// write serializes m into the first MetaSize bytes of buf, big-endian.
func (m Meta) write(buf []byte) {
	if len(buf) < MetaSize {
		panic("pagemap: buffer too small for Meta")
	}
	binary.BigEndian.PutUint32(buf[0:4], m.Magic)
	binary.BigEndian.PutUint32(buf[4:8], m.Version)
	binary.BigEndian.PutUint64(buf[8:16], m.PageSize)
	binary.BigEndian.PutUint64(buf[16:24], m.DataSize)
}

// load parses a Meta preamble from buf and validates its magic. Geometry
// fields (version, page size, data size) are returned unchecked; the
// caller compares them against the expected construction parameters.
func load(buf []byte) (Meta, error) {
	if len(buf) < MetaSize {
		return Meta{}, fmt.Errorf("pagemap: load meta: %w", ErrInvalidMetaSize)
	}
	m := Meta{
		Magic:    binary.BigEndian.Uint32(buf[0:4]),
		Version:  binary.BigEndian.Uint32(buf[4:8]),
		PageSize: binary.BigEndian.Uint64(buf[8:16]),
		DataSize: binary.BigEndian.Uint64(buf[16:24]),
	}
	if m.Magic != metaMagic {
		return Meta{}, fmt.Errorf("pagemap: load meta: %w", ErrInvalidMetaMagic)
	}
	return m, nil
}

// validateAgainst checks a loaded Meta against the geometry requested by
// the caller opening an existing cache file.
func (m Meta) validateAgainst(pageSize, dataSize uint64) error {
	if m.Version != metaVersion {
		return fmt.Errorf("pagemap: meta version %d, want %d: %w", m.Version, metaVersion, ErrInvalidMetaVersion)
	}
	if m.PageSize != pageSize {
		return fmt.Errorf("pagemap: meta page_size %d, want %d: %w", m.PageSize, pageSize, ErrInvalidMetaPageSize)
	}
	if m.DataSize != dataSize {
		return fmt.Errorf("pagemap: meta data_size %d, want %d: %w", m.DataSize, dataSize, ErrInvalidMetaDataSize)
	}
	return nil
}
