//go:build unix

package pagemap

import (
	"os"

	"golang.org/x/sys/unix"
)

func mmapFile(f *os.File, size int64) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func munmapData(data []byte) error {
	if data == nil {
		return nil
	}
	return unix.Munmap(data)
}

// msyncRange flushes the byte range [start, end) of data to disk.
// POSIX msync requires a page-aligned address, so the range is rounded
// outward to the host's page-size boundary before the syscall. When
// sync is false, MS_ASYNC is used and the call returns once the flush
// has been scheduled rather than completed.
func msyncRange(data []byte, start, end uint64, sync bool) error {
	if end <= start {
		return nil
	}
	pageSize := uint64(os.Getpagesize())
	alignedStart := start - (start % pageSize)
	alignedEnd := end
	if rem := end % pageSize; rem != 0 {
		alignedEnd = end + (pageSize - rem)
	}
	if alignedEnd > uint64(len(data)) {
		alignedEnd = uint64(len(data))
	}

	flags := unix.MS_ASYNC
	if sync {
		flags = unix.MS_SYNC
	}
	return unix.Msync(data[alignedStart:alignedEnd], flags)
}
