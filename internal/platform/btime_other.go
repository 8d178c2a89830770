//go:build !linux && !darwin && !freebsd && !windows

package platform

import (
	"os"
	"time"
)

func CreationTime(name string, _ os.FileInfo) (time.Time, error) {
	return time.Time{}, ErrCreationTimeUnsupported
}
