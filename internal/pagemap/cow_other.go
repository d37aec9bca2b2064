//go:build !linux

package pagemap

import "os"

// disableCOW is a no-op outside Linux: FS_NOCOW_FL is a Btrfs/ext4
// extension with no portable equivalent.
func disableCOW(_ *os.File) {}

// preallocate falls back to a plain truncate; platforms without
// fallocate still get a correctly-sized file, just without the
// ENOSPC-avoidance guarantee on first write.
func preallocate(f *os.File, size int64) error {
	return f.Truncate(size)
}
