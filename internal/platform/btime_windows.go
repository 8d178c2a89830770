//go:build windows

package platform

import (
	"os"
	"syscall"
	"time"
)

// CreationTime returns the creation time recorded in the file attributes
// that os.Lstat already read.
func CreationTime(name string, info os.FileInfo) (time.Time, error) {
	if info == nil {
		var err error
		if info, err = os.Lstat(name); err != nil {
			return time.Time{}, err
		}
	}
	attrs, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return time.Time{}, ErrCreationTimeUnsupported
	}
	return time.Unix(0, attrs.CreationTime.Nanoseconds()), nil
}
