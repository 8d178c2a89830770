// Package runner drives one cleaning run: it resolves the roots, cleans
// each of them in turn and collects the results into a report.
package runner

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fenilsonani/tempclean/internal/cleaner"
	"github.com/fenilsonani/tempclean/internal/config"
	"github.com/fenilsonani/tempclean/internal/duration"
	"github.com/fenilsonani/tempclean/internal/platform"
	"github.com/fenilsonani/tempclean/internal/progress"
	"github.com/fenilsonani/tempclean/internal/reporter"
	"github.com/fenilsonani/tempclean/internal/security"
	"github.com/fenilsonani/tempclean/pkg/utils"
)

// Runner cleans every root of a run sequentially
type Runner struct {
	config   *config.Config
	logger   cleaner.Logger
	progress *progress.ProgressReporter
	info     *platform.Info
	fs       cleaner.FileSystem
}

// New creates a Runner for cfg. cfg must already be validated.
func New(cfg *config.Config, logger cleaner.Logger) *Runner {
	return &Runner{
		config: cfg,
		logger: logger,
	}
}

// SetProgress publishes traversal events to pr
func (r *Runner) SetProgress(pr *progress.ProgressReporter) {
	r.progress = pr
}

// SetPlatformInfo overrides the detected platform information
func (r *Runner) SetPlatformInfo(info *platform.Info) {
	r.info = info
}

// SetFileSystem overrides the filesystem the walker operates on
func (r *Runner) SetFileSystem(fs cleaner.FileSystem) {
	r.fs = fs
}

func (r *Runner) fileSystem() cleaner.FileSystem {
	if r.fs != nil {
		return r.fs
	}
	return cleaner.OSFileSystem{}
}

func (r *Runner) platformInfo() (*platform.Info, error) {
	if r.info != nil {
		return r.info, nil
	}

	info, err := platform.GetInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get platform info: %w", err)
	}
	r.info = info
	return info, nil
}

// Roots returns the validated roots of the run: the discovered temporary
// directories followed by the configured extra roots, without duplicates.
// Roots are returned whether or not they exist.
func (r *Runner) Roots() ([]string, error) {
	info, err := r.platformInfo()
	if err != nil {
		return nil, err
	}

	var roots []string
	if !r.config.SkipDiscovery {
		discovered, err := platform.TempRoots(info)
		if err != nil {
			return nil, fmt.Errorf("failed to discover temporary directories: %w", err)
		}
		roots = append(roots, discovered...)
	}
	roots = append(roots, r.config.ExtraRoots...)
	roots = platform.Dedupe(roots, info.OS)

	protected := make([]string, 0, len(info.ProtectedPaths)+len(r.config.ProtectedPaths))
	protected = append(protected, info.ProtectedPaths...)
	protected = append(protected, r.config.ProtectedPaths...)
	validator := security.NewPathValidator(protected)

	for _, root := range roots {
		if err := validator.ValidateRoot(root); err != nil {
			return nil, fmt.Errorf("invalid root: %w", err)
		}
	}

	return roots, nil
}

// Run cleans every root and returns the report of the run. An error means
// the run could not start; failures inside a root are counted in its stats.
func (r *Runner) Run() (*reporter.Report, error) {
	if r.progress != nil {
		r.progress.Discovering()
	}

	roots, err := r.Roots()
	if err != nil {
		return nil, err
	}

	r.logIntro()

	walker := cleaner.New(r.config, r.logger)
	walker.SetFileSystem(r.fileSystem())
	if r.progress != nil {
		walker.SetObserver(r.progress)
	}

	report := reporter.NewReport(r.config.DryRun, r.config.Since)
	for i, root := range roots {
		if r.progress != nil {
			r.progress.StartRoot(root, i, len(roots))
		}
		report.Add(r.cleanRoot(walker, root))
	}
	report.Finish()

	return report, nil
}

func (r *Runner) logIntro() {
	if r.config.Since == nil {
		r.logger.Info("Removing all temporary files and directories")
	} else {
		r.logger.Info("Removing temporary files and directories older than %s", duration.Format(*r.config.Since))
	}

	if r.config.DryRun {
		r.logger.Info("Dry run: nothing will be removed")
	}
	if !platform.IsElevated() {
		r.logger.Debug("Not running elevated; entries owned by other users may fail to be removed")
	}
}

func (r *Runner) cleanRoot(walker *cleaner.Walker, root string) reporter.RootResult {
	result := reporter.RootResult{Root: root}

	// Only a root that is known to be absent is skipped. One that cannot be
	// reached is cleaned and fails to list, which counts as one error.
	if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
		r.logger.Debug("Skipping %s: does not exist", root)
		return result
	}
	result.Existed = true

	start := time.Now()
	if free, err := platform.DiskFree(root); err == nil {
		result.FreeBefore = free
	} else {
		r.logger.Debug("Cannot read free space of %s: %v", root, err)
	}

	stats, err := walker.Clean(root, false)
	if err != nil {
		r.logger.PrintError(err)
		stats.ErrorsTotal++
		result.Error = err.Error()
	} else if infoDir, ok := platform.TrashInfoDir(r.info, root); ok && !r.config.DryRun {
		stats.Add(r.pruneTrashInfo(r.fileSystem(), root, infoDir))
	}

	if free, err := platform.DiskFree(root); err == nil {
		result.FreeAfter = free
	}
	result.Stats = stats
	result.Duration = time.Since(start)

	r.logSummary(root, stats)
	return result
}

func (r *Runner) logSummary(root string, stats cleaner.Stats) {
	line := fmt.Sprintf("Removed %d entries (%s) with %d errors from path %s",
		stats.RemovedCount,
		utils.FormatBytes(stats.RemovedBytes),
		stats.ErrorsTotal,
		root)
	if stats.Warnings > 0 {
		line += fmt.Sprintf(" (%d skipped, creation time unavailable)", stats.Warnings)
	}
	r.logger.Info("%s", line)
}
