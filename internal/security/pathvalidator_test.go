package security

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

var testProtected = []string{"/", "/etc", "/usr", "/var", "/home", "/private/var"}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
}

func TestValidateRoot(t *testing.T) {
	skipOnWindows(t)
	pv := NewPathValidator(testProtected)

	tests := []struct {
		name        string
		path        string
		shouldError bool
		errorMsg    string
	}{
		{"tmp", "/tmp", false, ""},
		{"var tmp", "/var/tmp", false, ""},
		{"user trash", "/home/alice/.local/share/Trash", false, ""},
		{"macos var tmp", "/private/var/tmp", false, ""},
		{"relative path", "tmp", true, "must be absolute"},
		{"empty path", "", true, "must be absolute"},
		{"filesystem root", "/", true, "protected path"},
		{"protected directory", "/etc", true, "protected path"},
		{"ancestor of protected", "/private", true, "contains protected path"},
		{"dot segments", "/tmp/../etc", true, "suspicious elements"},
		{"double slashes", "/tmp//cache", true, "suspicious elements"},
		{"trailing slash", "/tmp/", true, "suspicious elements"},
		{"semicolon", "/tmp/a;rm", true, "dangerous characters"},
		{"newline", "/tmp/a\nb", true, "dangerous characters"},
		{"spaces allowed", "/srv/my temp", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pv.ValidateRoot(tt.path)

			if tt.shouldError {
				if err == nil {
					t.Errorf("expected error for root %q, got nil", tt.path)
				} else if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("expected no error for root %q, got: %v", tt.path, err)
			}
		})
	}
}

func TestValidateRootSymlinkToProtected(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	protected := filepath.Join(dir, "system")
	if err := os.Mkdir(protected, 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "innocent")
	if err := os.Symlink(protected, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	resolved, err := filepath.EvalSymlinks(protected)
	if err != nil {
		t.Fatal(err)
	}
	pv := NewPathValidator([]string{resolved})

	if err := pv.ValidateRoot(link); err == nil {
		t.Error("expected symlink to protected path to be refused")
	}
}

func TestValidateRootUnreachable(t *testing.T) {
	skipOnWindows(t)
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	dir := t.TempDir()
	locked := filepath.Join(dir, "alice")
	if err := os.Mkdir(locked, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	pv := NewPathValidator(testProtected)
	if err := pv.ValidateRoot(filepath.Join(locked, "trash")); err != nil {
		t.Errorf("an unreadable root should be left to the run, got %v", err)
	}
	if err := pv.ValidateRoot(filepath.Join(locked, "trash") + "/"); err == nil {
		t.Error("lexical checks still apply to an unreadable root")
	}
}

func TestAddProtectedPath(t *testing.T) {
	skipOnWindows(t)
	pv := NewPathValidator(nil)

	if err := pv.ValidateRoot("/srv/data"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pv.AddProtectedPath("/srv/data/")
	if err := pv.ValidateRoot("/srv/data"); err == nil {
		t.Error("expected custom protected path to be refused")
	}
	if err := pv.ValidateRoot("/srv"); err == nil {
		t.Error("expected ancestor of custom protected path to be refused")
	}
	if err := pv.ValidateRoot("/srv/data/tmp"); err != nil {
		t.Errorf("expected child of protected path to be allowed, got %v", err)
	}
}

func TestValidateGlobPattern(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		shouldError bool
	}{
		{"simple wildcard", "*.txt", false},
		{"double wildcard", "**/*.log", false},
		{"question mark", "file?.txt", false},
		{"absolute path pattern", "/tmp/keep/*", false},
		{"literal dots", "../*.txt", false},
		{"empty pattern", "", true},
		{"character class", "[abc]*.txt", true},
		{"unmatched bracket", "[abc", true},
		{"nul byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGlobPattern(tt.pattern)

			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error for pattern '%s', got nil", tt.pattern)
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error for pattern '%s', got: %v", tt.pattern, err)
				}
			}
		})
	}
}

func TestValidateShellArgument(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		hasError bool
	}{
		{"clean path", "/var/log/tempclean.log", false},
		{"path with spaces", "/var/log/temp clean.log", false},
		{"windows path", `C:\Logs\tempclean.log`, false},
		{"semicolon", "/tmp/a;b", true},
		{"pipe", "/tmp/a|b", true},
		{"dollar sign", "/tmp/$HOME", true},
		{"backtick", "/tmp/`id`", true},
		{"carriage return", "/tmp/a\rb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateShellArgument(tt.value)
			if (err != nil) != tt.hasError {
				t.Errorf("ValidateShellArgument(%q) error = %v, wantErr %v", tt.value, err, tt.hasError)
			}
		})
	}
}
