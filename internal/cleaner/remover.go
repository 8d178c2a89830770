package cleaner

// Remover deletes single entries. Directories are removed non-recursively;
// the walker empties them first.
type Remover struct {
	fs     FileSystem
	dryRun bool
	logger Logger
}

// NewRemover creates a Remover
func NewRemover(fs FileSystem, dryRun bool, logger Logger) *Remover {
	return &Remover{
		fs:     fs,
		dryRun: dryRun,
		logger: logger,
	}
}

// Remove deletes entry, or only logs it in dry-run mode. Failures come back
// as *RemovalError and are never swallowed here.
func (r *Remover) Remove(entry Entry) error {
	dryRunTag := ""
	if r.dryRun {
		dryRunTag = " (dry run)"
	}
	r.logger.Debug("Removing%s %s", dryRunTag, entry.Path)

	if r.dryRun {
		return nil
	}

	var err error
	if entry.IsDir {
		err = r.fs.RemoveDir(entry.Path)
	} else {
		err = r.fs.Remove(entry.Path)
	}
	if err != nil {
		return CategorizeError(entry.Path, entry.IsDir, err)
	}
	return nil
}
