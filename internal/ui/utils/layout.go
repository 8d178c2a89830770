package utils

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// MinTerminalWidth is used when the terminal size cannot be read
const MinTerminalWidth = 80

// TerminalWidth returns the width of the terminal attached to f
func TerminalWidth(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return MinTerminalWidth
}

// TruncatePath shortens path to at most maxWidth bytes. The file name is
// kept and directories are dropped from the middle first.
func TruncatePath(path string, maxWidth int) string {
	if len(path) <= maxWidth {
		return path
	}

	if maxWidth < 10 {
		// Too small to show anything meaningful
		return "..."
	}

	sep := string(filepath.Separator)
	dir, file := filepath.Split(path)

	// If filename alone is too long, keep its tail
	if len(file) > maxWidth-4 {
		return "..." + file[len(file)-(maxWidth-4):]
	}

	parts := strings.Split(strings.TrimSuffix(dir, sep), sep)
	head := parts[0]
	if head == "" && len(parts) > 1 {
		head = sep + parts[1]
		parts = parts[1:]
	}

	// Keep as many trailing directories as fit: head/.../d1/d2/file
	tail := file
	for i := len(parts) - 1; i > 0; i-- {
		candidate := parts[i] + sep + tail
		if len(head)+len(sep)+3+len(sep)+len(candidate) > maxWidth {
			break
		}
		tail = candidate
	}

	result := head + sep + "..." + sep + tail
	if len(result) > maxWidth {
		return "..." + sep + file
	}
	return result
}

// TruncateString truncates a string to maxLen, adding ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
