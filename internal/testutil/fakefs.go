package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNoCreationTime is returned by FakeFS for paths without a recorded
// creation time.
var ErrNoCreationTime = errors.New("no creation time recorded")

// FakeFS is a filesystem over a real directory tree whose creation times
// and failures are scripted per path. Tests need it because birth times
// cannot be set on most filesystems.
type FakeFS struct {
	mu sync.Mutex

	created    map[string]time.Time
	createdErr map[string]error
	listErr    map[string]error
	lstatErr   map[string]error
	removeErr  map[string]error

	// DefaultCreated is used for paths without a recorded creation time
	// when non-zero.
	DefaultCreated time.Time

	removed []string
	listed  []string
}

// NewFakeFS creates an empty FakeFS
func NewFakeFS() *FakeFS {
	return &FakeFS{
		created:    make(map[string]time.Time),
		createdErr: make(map[string]error),
		listErr:    make(map[string]error),
		lstatErr:   make(map[string]error),
		removeErr:  make(map[string]error),
	}
}

// SetCreated records the creation time reported for path
func (f *FakeFS) SetCreated(path string, t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created[filepath.Clean(path)] = t
}

// FailCreated makes reading the creation time of path fail
func (f *FakeFS) FailCreated(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdErr[filepath.Clean(path)] = err
}

// FailList makes listing path fail
func (f *FakeFS) FailList(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr[filepath.Clean(path)] = err
}

// FailLstat makes reading the metadata of path fail
func (f *FakeFS) FailLstat(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lstatErr[filepath.Clean(path)] = err
}

// FailRemove makes removing path fail
func (f *FakeFS) FailRemove(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeErr[filepath.Clean(path)] = err
}

// Removed returns the paths removed so far, in order
func (f *FakeFS) Removed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

// Listed returns the directories listed so far, in order
func (f *FakeFS) Listed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.listed...)
}

func (f *FakeFS) ReadDir(name string) ([]os.DirEntry, error) {
	f.mu.Lock()
	err := f.listErr[filepath.Clean(name)]
	f.listed = append(f.listed, name)
	f.mu.Unlock()

	if err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return os.ReadDir(name)
}

func (f *FakeFS) Lstat(name string) (os.FileInfo, error) {
	f.mu.Lock()
	err := f.lstatErr[filepath.Clean(name)]
	f.mu.Unlock()

	if err != nil {
		return nil, &os.PathError{Op: "lstat", Path: name, Err: err}
	}
	return os.Lstat(name)
}

func (f *FakeFS) CreationTime(name string, _ os.FileInfo) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := filepath.Clean(name)
	if err, ok := f.createdErr[key]; ok {
		return time.Time{}, err
	}
	if t, ok := f.created[key]; ok {
		return t, nil
	}
	if !f.DefaultCreated.IsZero() {
		return f.DefaultCreated, nil
	}
	return time.Time{}, ErrNoCreationTime
}

func (f *FakeFS) Remove(name string) error {
	return f.remove(name)
}

func (f *FakeFS) RemoveDir(name string) error {
	return f.remove(name)
}

func (f *FakeFS) remove(name string) error {
	f.mu.Lock()
	err := f.removeErr[filepath.Clean(name)]
	f.mu.Unlock()

	if err != nil {
		return &os.PathError{Op: "remove", Path: name, Err: err}
	}
	if err := os.Remove(name); err != nil {
		return err
	}

	f.mu.Lock()
	f.removed = append(f.removed, name)
	f.mu.Unlock()
	return nil
}

// FixedClock returns a clock that always reports t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
