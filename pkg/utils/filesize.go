package utils

import (
	"fmt"
	"strings"
)

const (
	B   = 1
	KiB = 1024 * B
	MiB = 1024 * KiB
	GiB = 1024 * MiB
	TiB = 1024 * GiB
	PiB = 1024 * TiB
)

// FormatBytes converts a byte count to a human-readable string using binary
// units (KiB, MiB, ...) with two decimals.
func FormatBytes(bytes uint64) string {
	switch {
	case bytes >= PiB:
		return fmt.Sprintf("%.2f PiB", float64(bytes)/float64(PiB))
	case bytes >= TiB:
		return fmt.Sprintf("%.2f TiB", float64(bytes)/float64(TiB))
	case bytes >= GiB:
		return fmt.Sprintf("%.2f GiB", float64(bytes)/float64(GiB))
	case bytes >= MiB:
		return fmt.Sprintf("%.2f MiB", float64(bytes)/float64(MiB))
	case bytes >= KiB:
		return fmt.Sprintf("%.2f KiB", float64(bytes)/float64(KiB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// ParseSize converts a human-readable size ("10MB", "512KiB", "1g") to bytes.
// Decimal and binary suffixes are both read as powers of 1024.
func ParseSize(size string) (int64, error) {
	var value float64
	var unit string

	trimmed := strings.TrimSpace(size)
	if trimmed == "" {
		return 0, fmt.Errorf("invalid size format: %q", size)
	}

	n, err := fmt.Sscanf(trimmed, "%f%s", &value, &unit)
	if err != nil && n == 0 {
		return 0, fmt.Errorf("invalid size format: %s", size)
	}
	if value < 0 {
		return 0, fmt.Errorf("size must not be negative: %s", size)
	}

	switch strings.ToLower(unit) {
	case "", "b":
		return int64(value), nil
	case "kb", "kib", "k":
		return int64(value * KiB), nil
	case "mb", "mib", "m":
		return int64(value * MiB), nil
	case "gb", "gib", "g":
		return int64(value * GiB), nil
	case "tb", "tib", "t":
		return int64(value * TiB), nil
	default:
		return 0, fmt.Errorf("unknown unit: %s", unit)
	}
}
