//go:build linux

package platform

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// CreationTime returns the birth time of name without following symlinks.
// Kernels or filesystems that do not record it yield
// ErrCreationTimeUnsupported.
func CreationTime(name string, _ os.FileInfo) (time.Time, error) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, name, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx)
	if err != nil {
		if err == unix.ENOSYS {
			return time.Time{}, ErrCreationTimeUnsupported
		}
		return time.Time{}, &os.PathError{Op: "statx", Path: name, Err: err}
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, ErrCreationTimeUnsupported
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), nil
}
