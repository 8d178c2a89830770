package runner

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/tempclean/internal/cleaner"
)

const trashInfoExt = ".trashinfo"

// pruneTrashInfo removes the records in infoDir whose trashed item is no
// longer in filesDir. Failures are counted like any other removal failure.
func (r *Runner) pruneTrashInfo(fs cleaner.FileSystem, filesDir, infoDir string) cleaner.Stats {
	var stats cleaner.Stats

	entries, err := fs.ReadDir(infoDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			stats.ErrorsTotal++
			r.logger.PrintError(&cleaner.ListError{Path: infoDir, Err: err})
		}
		return stats
	}

	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), trashInfoExt)
		if !ok || entry.IsDir() {
			continue
		}
		if _, err := fs.Lstat(filepath.Join(filesDir, name)); !errors.Is(err, os.ErrNotExist) {
			continue
		}

		path := filepath.Join(infoDir, entry.Name())
		if err := fs.Remove(path); err != nil {
			stats.ErrorsTotal++
			r.logger.PrintError(cleaner.CategorizeError(path, false, err))
			continue
		}
		r.logger.Debug("Removed trash record %s", path)
	}

	return stats
}
