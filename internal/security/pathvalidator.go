package security

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Characters that are never accepted in a root or in a value that ends up
// inside a generated script.
var dangerousChars = []string{";", "&", "|", "$", "`", "<", ">", "\n", "\r", "\x00"}

// PathValidator decides whether a directory may be used as a cleaning root
type PathValidator struct {
	protectedPaths []string
	foldCase       bool
}

// NewPathValidator creates a PathValidator that refuses the given paths and
// every ancestor of them.
func NewPathValidator(protected []string) *PathValidator {
	pv := &PathValidator{foldCase: runtime.GOOS == "windows"}
	for _, path := range protected {
		pv.AddProtectedPath(path)
	}
	return pv
}

// ValidateRoot performs the checks a directory must pass before its contents
// are cleaned. This is the single source of truth for root validation.
func (pv *PathValidator) ValidateRoot(path string) error {
	// Step 1: Path must be absolute
	if !filepath.IsAbs(path) {
		return fmt.Errorf("root must be absolute: %s", path)
	}

	// Step 2: Path must already be clean
	if filepath.Clean(path) != path {
		return fmt.Errorf("root contains suspicious elements: %s", path)
	}

	// Step 3: Check for dangerous shell metacharacters
	if err := ValidateShellArgument(path); err != nil {
		return err
	}

	// Step 4: Check the path and, when it is a symlink, its target
	if err := pv.checkProtectedPaths(path); err != nil {
		return err
	}

	resolvedPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		// A missing or unreachable root is handled when it is cleaned: a
		// missing one is skipped and an unreadable one counts one error.
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil
		}
		return fmt.Errorf("failed to resolve symlinks: %w", err)
	}
	if resolvedPath != path {
		if err := pv.checkProtectedPaths(filepath.Clean(resolvedPath)); err != nil {
			return err
		}
	}

	return nil
}

// checkProtectedPaths refuses a protected path and any directory that
// contains one, since cleaning it would remove the protected path too.
func (pv *PathValidator) checkProtectedPaths(cleanPath string) error {
	for _, protected := range pv.protectedPaths {
		if pv.equal(cleanPath, protected) {
			return fmt.Errorf("refusing to clean protected path: %s", cleanPath)
		}
		if pv.isAncestor(cleanPath, protected) {
			return fmt.Errorf("refusing to clean %s: it contains protected path %s", cleanPath, protected)
		}
	}

	return nil
}

// AddProtectedPath adds a custom protected path
func (pv *PathValidator) AddProtectedPath(path string) {
	cleanPath := filepath.Clean(path)
	pv.protectedPaths = append(pv.protectedPaths, cleanPath)
}

func (pv *PathValidator) equal(a, b string) bool {
	if pv.foldCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// isAncestor reports whether dir strictly contains path
func (pv *PathValidator) isAncestor(dir, path string) bool {
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if len(path) <= len(prefix) {
		return false
	}
	return pv.equal(path[:len(prefix)], prefix)
}

// ValidateShellArgument rejects values carrying shell metacharacters
func ValidateShellArgument(value string) error {
	for _, char := range dangerousChars {
		if strings.Contains(value, char) {
			return fmt.Errorf("path contains dangerous characters: %q", value)
		}
	}
	return nil
}

// ValidateGlobPattern validates an exclude pattern. Patterns are matched
// with go-wildcard: '*' is any run of characters, '/' included, '?' is
// exactly one character, and everything else is literal. Bracket classes
// would only ever match literally, so they are refused.
func ValidateGlobPattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("glob pattern is empty")
	}

	if strings.ContainsAny(pattern, "[]") {
		return fmt.Errorf("character classes are not supported: %s", pattern)
	}

	if strings.ContainsRune(pattern, 0) {
		return fmt.Errorf("glob pattern contains a NUL byte: %q", pattern)
	}

	return nil
}
