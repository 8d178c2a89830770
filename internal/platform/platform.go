package platform

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform represents the operating system platform
type Platform string

const (
	MacOS   Platform = "darwin"
	Linux   Platform = "linux"
	Windows Platform = "windows"
	Unknown Platform = "unknown"
)

// Info contains platform-specific information and paths
type Info struct {
	OS       Platform
	HomeDir  string
	Username string
	// TempDirs are the machine-wide temporary directories.
	TempDirs []string
	// UsersDir holds one home directory per user. Unused on Windows,
	// where profiles come from WMI.
	UsersDir string
	// SkipUsers are entries of UsersDir that are not user homes.
	SkipUsers []string
	// UserTempSubdir is joined to every user home to form a root.
	UserTempSubdir string
	// UserTrashInfoSubdir holds the .trashinfo records of the items in
	// UserTempSubdir, for freedesktop.org trash roots.
	UserTrashInfoSubdir string
	// ProtectedPaths may never be used as a cleaning root.
	ProtectedPaths []string
}

// Detect returns the current platform
func Detect() Platform {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	case "windows":
		return Windows
	default:
		return Unknown
	}
}

// GetInfo returns platform-specific information
func GetInfo() (*Info, error) {
	platform := Detect()

	// Get current user info
	currentUser, err := user.Current()
	if err != nil {
		return nil, err
	}

	homeDir := currentUser.HomeDir
	username := currentUser.Username

	var info *Info

	switch platform {
	case MacOS:
		info = getMacOSInfo(homeDir, username)
	case Linux:
		info = getLinuxInfo(homeDir, username)
	case Windows:
		info = getWindowsInfo(homeDir, username)
	default:
		return nil, ErrUnsupportedPlatform
	}

	return info, nil
}

// TempRoots returns the temporary directories of the machine and of every
// user on it. Roots are returned whether or not they exist. Failing to
// enumerate users is an error: a partial list would silently skip homes.
func TempRoots(info *Info) ([]string, error) {
	roots := append([]string(nil), info.TempDirs...)

	homes, err := userHomes(info)
	if err != nil {
		return nil, &DiscoveryError{Source: info.usersSource(), Err: err}
	}

	// The caller's own home may live outside UsersDir (/root, /var/root).
	// Windows profiles already include it.
	if info.OS != Windows && info.HomeDir != "" {
		homes = append(homes, info.HomeDir)
	}

	for _, home := range homes {
		roots = append(roots, filepath.Join(home, filepath.FromSlash(info.UserTempSubdir)))
	}

	return Dedupe(roots, info.OS), nil
}

// TrashInfoDir returns the directory holding the .trashinfo records of the
// items in root, when root is a per-user freedesktop.org trash directory.
func TrashInfoDir(info *Info, root string) (string, bool) {
	if info == nil || info.UserTrashInfoSubdir == "" || info.UserTempSubdir == "" {
		return "", false
	}

	suffix := string(filepath.Separator) + filepath.FromSlash(info.UserTempSubdir)
	if !strings.HasSuffix(root, suffix) {
		return "", false
	}
	home := strings.TrimSuffix(root, suffix)
	return filepath.Join(home, filepath.FromSlash(info.UserTrashInfoSubdir)), true
}

// Dedupe removes repeated paths, keeping the first occurrence. Paths are
// compared after cleaning, and case-insensitively on Windows.
func Dedupe(paths []string, p Platform) []string {
	seen := make(map[string]bool, len(paths))
	result := make([]string, 0, len(paths))

	for _, path := range paths {
		key := filepath.Clean(path)
		if p == Windows {
			key = strings.ToLower(key)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, filepath.Clean(path))
	}

	return result
}

func userHomes(info *Info) ([]string, error) {
	if info.OS == Windows {
		return windowsProfiles()
	}
	return listHomes(info.UsersDir, info.SkipUsers)
}

// listHomes returns every directory directly under usersDir except the
// names in skip.
func listHomes(usersDir string, skip []string) ([]string, error) {
	entries, err := os.ReadDir(usersDir)
	if err != nil {
		return nil, err
	}

	var homes []string
	for _, entry := range entries {
		if !entry.IsDir() || contains(skip, entry.Name()) {
			continue
		}
		homes = append(homes, filepath.Join(usersDir, entry.Name()))
	}

	return homes, nil
}

func (info *Info) usersSource() string {
	if info.OS == Windows {
		return "Win32_UserProfile"
	}
	return info.UsersDir
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Errors
var (
	ErrUnsupportedPlatform     = &PlatformError{"unsupported platform"}
	ErrCreationTimeUnsupported = errors.New("creation time is not supported on this platform or filesystem")
)

// PlatformError represents a platform-related error
type PlatformError struct {
	Message string
}

func (e *PlatformError) Error() string {
	return e.Message
}

// DiscoveryError reports a failure to enumerate user temp locations
type DiscoveryError struct {
	Source string
	Err    error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to enumerate users from %s", e.Source)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}
