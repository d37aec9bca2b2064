package cache

import "errors"

var (
	// ErrPageIndexOutOfRange is returned when a logical page id is >=
	// the device's page count.
	ErrPageIndexOutOfRange = errors.New("cache: page index out of range")

	// ErrBackendPageSizeMismatch is returned at construction time when
	// the backend Store's page size disagrees with the Cache's.
	ErrBackendPageSizeMismatch = errors.New("cache: backend page size does not match cache page size")
)
