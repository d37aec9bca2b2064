//go:build linux

package pagemap

import (
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// fsNoCOWFlag is FS_NOCOW_FL, the inode attribute that best-effort
// disables copy-on-write on filesystems that support it (notably Btrfs).
// The cache file benefits from this because COW would otherwise
// fragment it badly under the random-write pattern of page eviction.
const fsNoCOWFlag = 0x00800000

// disableCOW attempts to set FS_NOCOW_FL on f. Failure is logged and
// ignored: not every filesystem honors or even recognizes this flag.
func disableCOW(f *os.File) {
	fd := int(f.Fd())
	attrs, err := unix.IoctlGetInt(fd, unix.FS_IOC_GETFLAGS)
	if err != nil {
		logrus.WithError(err).Debug("pagemap: could not read inode flags, leaving copy-on-write as-is")
		return
	}
	attrs |= fsNoCOWFlag
	if err := unix.IoctlSetPointerInt(fd, unix.FS_IOC_SETFLAGS, attrs); err != nil {
		logrus.WithError(err).Debug("pagemap: could not disable copy-on-write")
	}
}

// preallocate reserves size bytes for f on the filesystem so that later
// writes into the mmap cannot fail with ENOSPC.
func preallocate(f *os.File, size int64) error {
	err := unix.Fallocate(int(f.Fd()), 0, 0, size)
	if err != nil {
		// Some filesystems (e.g. overlayfs, tmpfs variants) reject
		// fallocate outright; fall back to a plain truncate so the
		// file at least reaches the required length.
		return f.Truncate(size)
	}
	return nil
}
