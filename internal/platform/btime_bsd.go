//go:build darwin || freebsd

package platform

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// CreationTime returns the birth time of name without following symlinks.
func CreationTime(name string, _ os.FileInfo) (time.Time, error) {
	var st unix.Stat_t
	if err := unix.Lstat(name, &st); err != nil {
		return time.Time{}, &os.PathError{Op: "lstat", Path: name, Err: err}
	}
	return time.Unix(st.Btim.Unix()), nil
}
