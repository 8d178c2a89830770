package cleaner

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/fenilsonani/tempclean/internal/config"
)

// Walker removes the contents of a directory tree, depth first, honoring the
// age cutoff and the dry-run setting of its config.
type Walker struct {
	config   *config.Config
	fs       FileSystem
	filter   *AgeFilter
	excluder *Excluder
	remover  *Remover
	logger   Logger
	observer Observer
}

// New creates a Walker operating on the real filesystem
func New(cfg *config.Config, logger Logger) *Walker {
	if logger == nil {
		logger = nopLogger{}
	}

	w := &Walker{
		config:   cfg,
		filter:   NewAgeFilter(cfg.Since),
		excluder: NewExcluder(cfg.ExcludePatterns),
		logger:   logger,
	}
	w.SetFileSystem(OSFileSystem{})
	return w
}

// SetFileSystem replaces the filesystem the walker operates on
func (w *Walker) SetFileSystem(fs FileSystem) {
	w.fs = fs
	w.remover = NewRemover(fs, w.config.DryRun, w.logger)
}

// SetClock overrides the time source used for age checks
func (w *Walker) SetClock(now func() time.Time) {
	w.filter.now = now
}

// SetObserver registers an observer for traversal events
func (w *Walker) SetObserver(o Observer) {
	w.observer = o
}

// Clean removes the eligible contents of path and returns what it did.
//
// A non-nil error means path itself could not be listed; nothing below it
// was touched. Every other failure is counted in Stats.ErrorsTotal, logged,
// and traversal moves on. When skipDateCheck is true every entry is
// eligible regardless of age; it is set for the contents of a directory that
// already qualified. Top-level callers pass false.
func (w *Walker) Clean(path string, skipDateCheck bool) (Stats, error) {
	dirEntries, err := w.fs.ReadDir(path)
	if err != nil {
		return Stats{}, &ListError{Path: path, Err: err}
	}

	var stats Stats

	for _, dirEntry := range dirEntries {
		entryPath := filepath.Join(path, dirEntry.Name())
		w.notifyVisited(entryPath)

		entry, err := w.readEntry(entryPath, skipDateCheck)
		if err != nil {
			stats.ErrorsTotal++
			w.recordError(entryPath, err)
			continue
		}

		if w.excluder.Matches(entry.Path) {
			w.logger.Debug("Excluded %s", entry.Path)
			continue
		}

		if !w.filter.IsEligible(entry.Created, entry.CreatedErr, skipDateCheck) {
			// CreatedErr is only set when the filter needed the time.
			if entry.CreatedErr != nil {
				stats.Warnings++
				w.logger.Warn("Skipping %s: creation time unavailable: %v", entry.Path, entry.CreatedErr)
			}
			continue
		}

		if entry.IsDir {
			subStats, err := w.Clean(entry.Path, true)
			if err != nil {
				// The subtree is unreadable; abandon the rest of this level.
				stats.ErrorsTotal++
				w.recordError(entry.Path, err)
				return stats, nil
			}
			stats.Add(subStats)
		}

		if err := w.remover.Remove(entry); err != nil {
			stats.ErrorsTotal++
			w.recordError(entry.Path, err)
			continue
		}

		stats.RemovedBytes += entry.Size
		stats.RemovedCount++
		if w.observer != nil {
			w.observer.EntryRemoved(entry.Path, entry.Size)
		}
	}

	return stats, nil
}

// readEntry reads metadata without following symlinks. The creation time is
// only fetched when the age filter will consult it.
func (w *Walker) readEntry(path string, skipDateCheck bool) (Entry, error) {
	info, err := w.fs.Lstat(path)
	if err != nil {
		return Entry{}, &MetadataError{Path: path, Err: err}
	}

	entry := newEntry(path, info)
	if w.filter.NeedsCreationTime(skipDateCheck) {
		entry.Created, entry.CreatedErr = w.fs.CreationTime(path, info)
	}
	return entry, nil
}

func (w *Walker) recordError(path string, err error) {
	w.logger.PrintError(err)
	var remErr *RemovalError
	if errors.As(err, &remErr) {
		w.logger.Debug("%s", remErr.UserMessage())
	}
	if w.observer != nil {
		w.observer.ErrorRecorded(path, err)
	}
}

func (w *Walker) notifyVisited(path string) {
	if w.observer != nil {
		w.observer.EntryVisited(path)
	}
}
