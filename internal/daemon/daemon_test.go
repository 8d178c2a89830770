package daemon

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fenilsonani/tempclean/internal/cleaner"
	"github.com/fenilsonani/tempclean/internal/config"
	"github.com/fenilsonani/tempclean/internal/reporter"
	"github.com/fenilsonani/tempclean/internal/testutil"
)

func testConfig(schedules ...config.CleanupSchedule) *config.Config {
	cfg := config.GetDefault()
	cfg.Daemon = &config.DaemonConfig{Schedules: schedules}
	return cfg
}

var hourly = config.CleanupSchedule{Name: "hourly", Schedule: "@every 1h"}

// recordingRun stands in for a cleaning run and remembers the configs it saw
type recordingRun struct {
	mu      sync.Mutex
	configs []*config.Config
	err     error
	block   chan struct{}
}

func (r *recordingRun) run(cfg *config.Config, _ cleaner.Logger) (*reporter.Report, error) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = append(r.configs, cfg)
	if r.err != nil {
		return nil, r.err
	}
	report := reporter.NewReport(cfg.DryRun, cfg.Since)
	report.Finish()
	return report, nil
}

func newTestDaemon(t *testing.T, cfg *config.Config) (*Daemon, *recordingRun, *testutil.CaptureLogger) {
	t.Helper()

	logger := testutil.NewCaptureLogger()
	d, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	rec := &recordingRun{}
	d.run = rec.run
	return d, rec, logger
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNewRequiresSchedules(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"no daemon section", config.GetDefault()},
		{"empty schedules", testConfig()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, testutil.NewCaptureLogger()); err == nil {
				t.Error("New() should fail without schedules")
			}
		})
	}
}

// =============================================================================
// Job Tests
// =============================================================================

func TestRunCleanupJobDryRunOverride(t *testing.T) {
	cfg := testConfig(hourly)
	d, rec, _ := newTestDaemon(t, cfg)

	if err := d.RunCleanupJob(&CleanupJob{Name: "preview", DryRun: true}); err != nil {
		t.Fatalf("RunCleanupJob() error = %v", err)
	}
	if err := d.RunCleanupJob(&CleanupJob{Name: "real"}); err != nil {
		t.Fatalf("RunCleanupJob() error = %v", err)
	}

	if len(rec.configs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(rec.configs))
	}
	if !rec.configs[0].DryRun || rec.configs[1].DryRun {
		t.Errorf("dry run flags = %v, %v; want true, false", rec.configs[0].DryRun, rec.configs[1].DryRun)
	}
	if cfg.DryRun {
		t.Error("job override must not change the base config")
	}
}

func TestRunCleanupJobSkipsOverlap(t *testing.T) {
	d, rec, logger := newTestDaemon(t, testConfig(hourly))
	rec.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- d.RunCleanupJob(&CleanupJob{Name: "first"})
	}()

	// Wait until the first run holds the lock
	deadline := time.Now().Add(5 * time.Second)
	for !logger.Contains("Running cleanup job: first") {
		if time.Now().After(deadline) {
			t.Fatal("first job never started")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := d.RunCleanupJob(&CleanupJob{Name: "second"}); !errors.Is(err, ErrBusy) {
		t.Errorf("overlapping run error = %v, want ErrBusy", err)
	}

	close(rec.block)
	if err := <-done; err != nil {
		t.Errorf("first run error = %v", err)
	}
	if len(rec.configs) != 1 {
		t.Errorf("expected exactly one run, got %d", len(rec.configs))
	}
}

func TestRunCleanupJobFailure(t *testing.T) {
	d, rec, logger := newTestDaemon(t, testConfig(hourly))
	rec.err = errors.New("invalid root")

	if err := d.RunCleanupJob(&CleanupJob{Name: "broken"}); err == nil {
		t.Error("RunCleanupJob() should return the run error")
	}
	if !logger.Contains("Cleanup failed for job broken") {
		t.Error("failure should be logged")
	}
}

func TestRunCleanupJobCleansRoots(t *testing.T) {
	f := testutil.NewFixture(t)
	file := f.CreateSizedFile("stale.tmp", 10)

	cfg := testConfig(hourly)
	cfg.SkipDiscovery = true
	cfg.ExtraRoots = []string{f.RootDir}

	d, err := New(cfg, testutil.NewCaptureLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := d.Scheduler().TriggerJob("hourly"); err != nil {
		t.Fatalf("TriggerJob() error = %v", err)
	}
	f.AssertFileNotExists(file)
}

// =============================================================================
// Scheduler Tests
// =============================================================================

func TestSchedulerJobs(t *testing.T) {
	nightly := config.CleanupSchedule{Name: "nightly", Schedule: "0 3 * * *", DryRun: true}
	d, _, _ := newTestDaemon(t, testConfig(hourly, nightly))
	s := d.Scheduler()

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if err := s.Start(); err == nil {
		t.Error("second Start() should fail")
	}

	jobs := s.ListJobs()
	if len(jobs) != 2 {
		t.Fatalf("ListJobs() returned %d jobs, want 2", len(jobs))
	}
	if jobs[1].Name != "nightly" || !jobs[1].DryRun || jobs[1].Schedule != "0 3 * * *" {
		t.Errorf("second job = %+v", jobs[1])
	}

	next, err := s.GetNextRun("nightly")
	if err != nil {
		t.Fatalf("GetNextRun() error = %v", err)
	}
	if next.Hour() != 3 || next.Minute() != 0 {
		t.Errorf("nightly next run = %v, want 03:00", next)
	}
	if _, err := s.GetNextRun("weekly"); err == nil {
		t.Error("GetNextRun() should fail for an unknown job")
	}
}

func TestSchedulerListsJobsBeforeStart(t *testing.T) {
	d, _, _ := newTestDaemon(t, testConfig(hourly))

	before := time.Now()
	jobs := d.Scheduler().ListJobs()
	if len(jobs) != 1 {
		t.Fatalf("ListJobs() returned %d jobs, want 1", len(jobs))
	}

	next := jobs[0].NextRun
	if next.Before(before.Add(59*time.Minute)) || next.After(time.Now().Add(61*time.Minute)) {
		t.Errorf("hourly next run = %v, want about an hour from now", next)
	}
	if !jobs[0].PrevRun.IsZero() {
		t.Errorf("job that never ran has PrevRun %v", jobs[0].PrevRun)
	}
}

func TestSchedulerInvalidSpec(t *testing.T) {
	d, _, _ := newTestDaemon(t, testConfig(config.CleanupSchedule{Name: "bad", Schedule: "every tuesday"}))
	if err := d.Scheduler().Start(); err == nil {
		t.Error("Start() should fail on an invalid cron spec")
	}
}

func TestTriggerUnknownJob(t *testing.T) {
	d, _, _ := newTestDaemon(t, testConfig(hourly))
	if err := d.Scheduler().TriggerJob("weekly"); err == nil {
		t.Error("TriggerJob() should fail for an unknown job")
	}
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestStartStopWritesPidFile(t *testing.T) {
	f := testutil.NewFixture(t)
	cfg := testConfig(hourly)
	cfg.Daemon.PidFile = filepath.Join(f.RootDir, "tempclean.pid")

	d, _, _ := newTestDaemon(t, cfg)

	done := make(chan error, 1)
	go func() { done <- d.Start() }()

	deadline := time.Now().Add(5 * time.Second)
	for !f.FileExists(cfg.Daemon.PidFile) {
		if time.Now().After(deadline) {
			t.Fatal("PID file never written")
		}
		time.Sleep(10 * time.Millisecond)
	}
	f.AssertFileExists(cfg.Daemon.PidFile + ".lock")

	d.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("daemon did not stop")
	}

	f.AssertFileNotExists(cfg.Daemon.PidFile)
	f.AssertFileNotExists(cfg.Daemon.PidFile + ".lock")
	if d.IsRunning() {
		t.Error("daemon should not be running after Stop")
	}
}

func TestStartRefusesExistingLock(t *testing.T) {
	f := testutil.NewFixture(t)
	cfg := testConfig(hourly)
	cfg.Daemon.PidFile = filepath.Join(f.RootDir, "tempclean.pid")
	f.CreateFile("tempclean.pid.lock", []byte("1\n"))

	d, _, _ := newTestDaemon(t, cfg)
	if err := d.Start(); err == nil {
		t.Error("Start() should fail while the lock file exists")
	}
}
