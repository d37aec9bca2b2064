package pagemap

import "errors"

// Error kinds returned by this package. Callers should compare with
// errors.Is; constructors wrap these with fmt.Errorf for context.
var (
	// ErrZeroSize is returned when a cache or component size is zero.
	ErrZeroSize = errors.New("pagemap: size cannot be zero")

	// ErrInvalidPageSize is returned when the page size is zero, exceeds
	// MaxPageSize, or exceeds the map's data size.
	ErrInvalidPageSize = errors.New("pagemap: invalid page size")

	// ErrSizeNotMultipleOfPageSize is returned when data size is not an
	// integer multiple of page size.
	ErrSizeNotMultipleOfPageSize = errors.New("pagemap: data size must be a multiple of page size")

	// ErrPageCountTooBig is returned when the computed slot count would
	// exceed 2^32.
	ErrPageCountTooBig = errors.New("pagemap: page count exceeds maximum")

	// ErrPageIndexOutOfRange is returned when a slot address is >= page count.
	ErrPageIndexOutOfRange = errors.New("pagemap: page index out of range")

	// ErrSizeChanged is returned when an existing cache file's length
	// disagrees with the size computed from the requested geometry.
	ErrSizeChanged = errors.New("pagemap: existing file size disagrees with computed geometry")

	// ErrInvalidMetaSize is returned when a buffer is too small to hold Meta.
	ErrInvalidMetaSize = errors.New("pagemap: invalid meta size")

	// ErrInvalidMetaMagic is returned when the Meta preamble's magic doesn't match.
	ErrInvalidMetaMagic = errors.New("pagemap: invalid meta magic")

	// ErrInvalidMetaVersion is returned when the on-disk format version is unsupported.
	ErrInvalidMetaVersion = errors.New("pagemap: invalid meta version")

	// ErrInvalidMetaPageSize is returned when the on-disk page size disagrees with the request.
	ErrInvalidMetaPageSize = errors.New("pagemap: invalid meta page size")

	// ErrInvalidMetaDataSize is returned when the on-disk data size disagrees with the request.
	ErrInvalidMetaDataSize = errors.New("pagemap: invalid meta data size")
)
