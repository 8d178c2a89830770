package platform

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

// DiskFree returns the bytes available to unprivileged users on the
// filesystem holding path.
func DiskFree(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read disk usage of %s: %w", path, err)
	}
	return usage.Free, nil
}
