package daemon

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fenilsonani/tempclean/internal/cleaner"
	"github.com/fenilsonani/tempclean/internal/config"
	"github.com/robfig/cron/v3"
)

// CleanupJob represents a scheduled cleanup job
type CleanupJob struct {
	Name     string
	Schedule string
	DryRun   bool
	NextRun  time.Time
	LastRun  time.Time
}

// Scheduler manages scheduled cleanup jobs
type Scheduler struct {
	daemon    *Daemon
	cron      *cron.Cron
	parser    cron.Parser
	jobs      map[string]cron.EntryID
	jobsMu    sync.RWMutex
	running   bool
	schedules []config.CleanupSchedule
}

// NewScheduler creates a new scheduler
func NewScheduler(daemon *Daemon, schedules []config.CleanupSchedule) *Scheduler {
	// Standard five-field specs plus @daily style descriptors
	parser := cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)

	logger := cronLogger{daemon.logger}
	c := cron.New(cron.WithParser(parser), cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	return &Scheduler{
		daemon:    daemon,
		cron:      c,
		parser:    parser,
		jobs:      make(map[string]cron.EntryID),
		schedules: schedules,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	// Add all configured schedules
	for _, schedule := range s.schedules {
		if err := s.addJob(schedule); err != nil {
			return fmt.Errorf("failed to add schedule %s: %w", schedule.Name, err)
		}
	}

	// Start cron
	s.cron.Start()
	s.running = true

	s.daemon.logger.Info("Scheduler started with %d jobs", len(s.jobs))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		// Clean shutdown
	case <-time.After(10 * time.Second):
		s.daemon.logger.Warn("Scheduler stop timed out")
	}

	s.running = false
	s.daemon.logger.Info("Scheduler stopped")
}

// addJob registers schedule with cron. Callers hold jobsMu.
func (s *Scheduler) addJob(schedule config.CleanupSchedule) error {
	if _, exists := s.jobs[schedule.Name]; exists {
		return fmt.Errorf("job %s already exists", schedule.Name)
	}

	job := newJob(schedule)

	jobFunc := func() {
		s.daemon.logger.Info("Executing scheduled job: %s", job.Name)
		job.LastRun = time.Now()

		if err := s.daemon.RunCleanupJob(job); err != nil && !errors.Is(err, ErrBusy) {
			s.daemon.logger.Error("Job %s failed: %v", job.Name, err)
		}
	}

	id, err := s.cron.AddFunc(schedule.Schedule, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.jobs[schedule.Name] = id

	// cron only fills in Entry.Next once it is running
	job.NextRun = s.cron.Entry(id).Schedule.Next(time.Now())

	s.daemon.logger.Info("Added job: %s (%s), next run: %v", schedule.Name, schedule.Schedule, job.NextRun)
	return nil
}

func newJob(schedule config.CleanupSchedule) *CleanupJob {
	return &CleanupJob{
		Name:     schedule.Name,
		Schedule: schedule.Schedule,
		DryRun:   schedule.DryRun,
	}
}

func (s *Scheduler) find(name string) (config.CleanupSchedule, bool) {
	for _, schedule := range s.schedules {
		if schedule.Name == name {
			return schedule, true
		}
	}
	return config.CleanupSchedule{}, false
}

// GetNextRun returns the next time the named job fires after now. It works
// whether or not the scheduler has been started.
func (s *Scheduler) GetNextRun(name string) (time.Time, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	schedule, ok := s.find(name)
	if !ok {
		return time.Time{}, fmt.Errorf("job %s not found", name)
	}

	spec, err := s.parser.Parse(schedule.Schedule)
	if err != nil {
		return time.Time{}, fmt.Errorf("job %s: invalid schedule: %w", name, err)
	}
	return spec.Next(time.Now()), nil
}

// ListJobs returns the configured jobs in config order. PrevRun is only set
// for jobs that have fired since Start.
func (s *Scheduler) ListJobs() []JobInfo {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	now := time.Now()
	jobs := make([]JobInfo, 0, len(s.schedules))
	for _, schedule := range s.schedules {
		info := JobInfo{
			Name:     schedule.Name,
			Schedule: schedule.Schedule,
			DryRun:   schedule.DryRun,
		}
		if spec, err := s.parser.Parse(schedule.Schedule); err == nil {
			info.NextRun = spec.Next(now)
		}
		if id, ok := s.jobs[schedule.Name]; ok {
			info.PrevRun = s.cron.Entry(id).Prev
		}
		jobs = append(jobs, info)
	}

	return jobs
}

// TriggerJob runs a configured job immediately
func (s *Scheduler) TriggerJob(name string) error {
	s.jobsMu.RLock()
	schedule, ok := s.find(name)
	s.jobsMu.RUnlock()

	if !ok {
		return fmt.Errorf("job %s not found", name)
	}

	s.daemon.logger.Info("Manually triggering job: %s", name)
	return s.daemon.RunCleanupJob(newJob(schedule))
}

// JobInfo describes a configured job for listing
type JobInfo struct {
	Name     string
	Schedule string
	DryRun   bool
	NextRun  time.Time
	PrevRun  time.Time
}

// cronLogger routes cron's own messages to the daemon logger
type cronLogger struct {
	logger cleaner.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: %s: %v %v", msg, err, keysAndValues)
}
