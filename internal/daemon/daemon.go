package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fenilsonani/tempclean/internal/cleaner"
	"github.com/fenilsonani/tempclean/internal/config"
	"github.com/fenilsonani/tempclean/internal/reporter"
	"github.com/fenilsonani/tempclean/internal/runner"
	"github.com/fenilsonani/tempclean/pkg/utils"
)

// ErrBusy is returned when a job fires while another run is in progress
var ErrBusy = errors.New("a cleaning run is already in progress")

// RunFunc performs one cleaning run with the given config
type RunFunc func(cfg *config.Config, logger cleaner.Logger) (*reporter.Report, error)

// Daemon runs cleaning jobs on their cron schedules until stopped
type Daemon struct {
	config      *config.Config
	scheduler   *Scheduler
	logger      cleaner.Logger
	run         RunFunc
	running     bool
	shutdownCtx context.Context
	cancelFunc  context.CancelFunc
	mu          sync.RWMutex
	// runMu serializes cleaning runs across all jobs
	runMu sync.Mutex
}

// New creates a new daemon instance
func New(cfg *config.Config, logger cleaner.Logger) (*Daemon, error) {
	if cfg.Daemon == nil || len(cfg.Daemon.Schedules) == 0 {
		return nil, fmt.Errorf("no daemon schedules configured")
	}

	// Create context for shutdown
	ctx, cancel := context.WithCancel(context.Background())

	daemon := &Daemon{
		config:      cfg,
		logger:      logger,
		run:         runCleanup,
		shutdownCtx: ctx,
		cancelFunc:  cancel,
	}

	// Initialize scheduler
	daemon.scheduler = NewScheduler(daemon, cfg.Daemon.Schedules)

	return daemon, nil
}

func runCleanup(cfg *config.Config, logger cleaner.Logger) (*reporter.Report, error) {
	return runner.New(cfg, logger).Run()
}

// Scheduler returns the daemon's scheduler
func (d *Daemon) Scheduler() *Scheduler {
	return d.scheduler
}

// Start runs the daemon in the foreground. It returns once Stop is called
// or SIGINT/SIGTERM is received.
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon already running")
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	d.logger.Info("Starting tempclean daemon")

	if pidFile := d.pidFile(); pidFile != "" {
		// Check lock file
		if err := d.acquireLock(); err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		defer d.releaseLock()

		// Write PID file
		if err := d.writePidFile(); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer d.removePidFile()
	}

	// Setup signal handlers
	stopSignals := d.setupSignalHandlers()
	defer stopSignals()

	// Start scheduler
	if err := d.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer d.scheduler.Stop()

	d.logger.Info("Daemon started successfully")

	// Wait for shutdown signal
	<-d.shutdownCtx.Done()

	d.logger.Info("Daemon shutting down")
	return nil
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	if d.cancelFunc != nil {
		d.cancelFunc()
	}
}

// IsRunning returns whether the daemon is running
func (d *Daemon) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// RunCleanupJob executes a cleanup job. It returns ErrBusy without doing
// anything when another run has not finished yet.
func (d *Daemon) RunCleanupJob(job *CleanupJob) error {
	if !d.runMu.TryLock() {
		d.logger.Warn("Skipping job %s: previous run still in progress", job.Name)
		return ErrBusy
	}
	defer d.runMu.Unlock()

	d.logger.Info("Running cleanup job: %s", job.Name)
	startTime := time.Now()

	// Create job-specific config
	jobConfig := d.createJobConfig(job)

	report, err := d.run(jobConfig, d.logger)
	if err != nil {
		d.logger.Error("Cleanup failed for job %s: %v", job.Name, err)
		return fmt.Errorf("cleanup failed: %w", err)
	}

	// Log results
	duration := time.Since(startTime)
	d.logger.Info("Cleanup job %s completed in %v: removed %d entries (%s), %d errors",
		job.Name,
		duration.Round(time.Millisecond),
		report.Totals.RemovedCount,
		utils.FormatBytes(report.Totals.RemovedBytes),
		report.Totals.ErrorsTotal)

	return nil
}

// createJobConfig creates a config for a specific job
func (d *Daemon) createJobConfig(job *CleanupJob) *config.Config {
	// Copy base config
	cfg := d.config.Clone()

	// Override dry-run
	if job.DryRun {
		cfg.DryRun = true
	}

	return cfg
}

// setupSignalHandlers sets up signal handlers for graceful shutdown
func (d *Daemon) setupSignalHandlers() func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			d.logger.Info("Received shutdown signal: %v", sig)
			d.Stop()
		case <-d.shutdownCtx.Done():
		}
	}()

	return func() { signal.Stop(sigChan) }
}

func (d *Daemon) pidFile() string {
	return d.config.Daemon.PidFile
}

// acquireLock acquires the lock file
func (d *Daemon) acquireLock() error {
	lockFile := d.pidFile() + ".lock"

	file, err := os.OpenFile(lockFile, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("daemon already running (lock file %s exists)", lockFile)
		}
		return err
	}

	pid := os.Getpid()
	_, err = fmt.Fprintf(file, "%d\n", pid)
	file.Close()
	return err
}

// releaseLock releases the lock file
func (d *Daemon) releaseLock() error {
	return os.Remove(d.pidFile() + ".lock")
}

// writePidFile writes the PID file
func (d *Daemon) writePidFile() error {
	pid := os.Getpid()
	return os.WriteFile(d.pidFile(), []byte(fmt.Sprintf("%d\n", pid)), 0644)
}

// removePidFile removes the PID file
func (d *Daemon) removePidFile() error {
	return os.Remove(d.pidFile())
}
