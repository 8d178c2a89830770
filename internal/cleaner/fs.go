package cleaner

import (
	"os"
	"time"

	"github.com/fenilsonani/tempclean/internal/platform"
)

// FileSystem is the set of filesystem operations the walker needs. It lets
// tests inject failures and creation times without touching real metadata.
type FileSystem interface {
	ReadDir(name string) ([]os.DirEntry, error)
	Lstat(name string) (os.FileInfo, error)
	CreationTime(name string, info os.FileInfo) (time.Time, error)
	// Remove deletes a file or a symbolic link.
	Remove(name string) error
	// RemoveDir deletes an empty directory. It never removes contents.
	RemoveDir(name string) error
}

// OSFileSystem implements FileSystem on top of the os package.
type OSFileSystem struct{}

func (OSFileSystem) ReadDir(name string) ([]os.DirEntry, error) {
	return os.ReadDir(name)
}

func (OSFileSystem) Lstat(name string) (os.FileInfo, error) {
	return os.Lstat(name)
}

func (OSFileSystem) CreationTime(name string, info os.FileInfo) (time.Time, error) {
	return platform.CreationTime(name, info)
}

func (OSFileSystem) Remove(name string) error {
	return os.Remove(name)
}

// RemoveDir relies on os.Remove refusing to delete a directory that still
// has entries.
func (OSFileSystem) RemoveDir(name string) error {
	return os.Remove(name)
}

// Entry is a filesystem item visited during one traversal step.
type Entry struct {
	Path  string
	IsDir bool
	// Size is the file length in bytes. Directories report 0: their own
	// metadata size is not content that gets freed.
	Size       uint64
	Created    time.Time
	CreatedErr error
}

func newEntry(path string, info os.FileInfo) Entry {
	entry := Entry{
		Path:  path,
		IsDir: info.IsDir(),
	}
	if !entry.IsDir && info.Size() > 0 {
		entry.Size = uint64(info.Size())
	}
	return entry
}
