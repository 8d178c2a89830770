package task

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fenilsonani/tempclean/internal/config"
	"github.com/fenilsonani/tempclean/internal/platform"
	"github.com/fenilsonani/tempclean/internal/testutil"
)

// =============================================================================
// Argument Tests
// =============================================================================

func TestBuildArgs(t *testing.T) {
	cutoff := 10*24*time.Hour + 2*time.Hour

	tests := []struct {
		name  string
		setup func(cfg *config.Config)
		want  []string
	}{
		{
			name:  "defaults",
			setup: func(cfg *config.Config) {},
			want:  nil,
		},
		{
			name: "flags",
			setup: func(cfg *config.Config) {
				cfg.DryRun = true
				cfg.Quiet = true
				cfg.Verbose = true
			},
			want: []string{"--dry-run", "--quiet", "--verbose"},
		},
		{
			name: "cutoff",
			setup: func(cfg *config.Config) {
				cfg.Since = &cutoff
			},
			want: []string{"--created-before", "10days 2h"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GetDefault()
			tt.setup(cfg)

			got, err := BuildArgs(cfg)
			if err != nil {
				t.Fatalf("BuildArgs() error = %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("BuildArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildArgsPassesConfigFile(t *testing.T) {
	f := testutil.NewFixture(t)
	cfgPath := f.CreateFile("config.yaml", []byte("extra_roots: []\n"))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.DryRun = true

	got, err := BuildArgs(cfg)
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}
	want := []string{"--dry-run", "--config", cfgPath}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("BuildArgs() = %q, want %q", got, want)
	}
}

func TestBuildArgsConfigFileMadeAbsolute(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg := config.GetDefault()
	cfg.ConfigFile = "tempclean.yaml"

	got, err := BuildArgs(cfg)
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}
	if len(got) != 2 || got[0] != "--config" || !filepath.IsAbs(got[1]) || filepath.Base(got[1]) != "tempclean.yaml" {
		t.Errorf("BuildArgs() = %q, want an absolute --config path", got)
	}

	cfg.ConfigFile = filepath.Join(dir, "it's.yaml")
	if _, err := BuildArgs(cfg); err == nil {
		t.Error("BuildArgs() should refuse a config path with quotes")
	}
}

func TestBuildArgsLogProbeRemovesNewFile(t *testing.T) {
	f := testutil.NewFixture(t)
	logPath := f.Path("logs/tempclean.log")
	f.CreateDir("logs")

	cfg := config.GetDefault()
	cfg.LogPath = logPath

	args, err := BuildArgs(cfg)
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}
	if len(args) != 2 || args[0] != "--log" || args[1] != logPath {
		t.Errorf("BuildArgs() = %q", args)
	}
	f.AssertFileNotExists(logPath)
}

func TestBuildArgsLogProbeKeepsExistingFile(t *testing.T) {
	f := testutil.NewFixture(t)
	logPath := f.CreateFile("tempclean.log", []byte("previous run\n"))

	cfg := config.GetDefault()
	cfg.LogPath = logPath

	if _, err := BuildArgs(cfg); err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil || string(data) != "previous run\n" {
		t.Errorf("existing log changed: %q (err %v)", data, err)
	}
}

func TestBuildArgsLogRelativeMadeAbsolute(t *testing.T) {
	f := testutil.NewFixture(t)
	t.Chdir(f.RootDir)

	cfg := config.GetDefault()
	cfg.LogPath = "run.log"

	args, err := BuildArgs(cfg)
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}
	if !filepath.IsAbs(args[1]) {
		t.Errorf("log path %q should be absolute", args[1])
	}
}

func TestBuildArgsLogErrors(t *testing.T) {
	f := testutil.NewFixture(t)
	dir := f.CreateDir("a-directory")

	tests := []struct {
		name    string
		logPath string
	}{
		{"directory", dir},
		{"missing parent", f.Path("missing/tempclean.log")},
		{"metacharacters", f.Path("log;rm")},
		{"quote", f.Path(`log"name`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GetDefault()
			cfg.LogPath = tt.logPath
			if _, err := BuildArgs(cfg); err == nil {
				t.Errorf("BuildArgs() should fail for %s", tt.logPath)
			}
		})
	}
}

// =============================================================================
// Script Tests
// =============================================================================

func TestRenderWindows(t *testing.T) {
	script, err := Render(platform.Windows, `C:\Tools\tempclean.exe`, []string{"--quiet", "--created-before", "10days 2h"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if script.Interpreter != "powershell.exe" {
		t.Errorf("Interpreter = %s", script.Interpreter)
	}
	if script.Args[len(script.Args)-1] != "-" {
		t.Error("script should be read from stdin")
	}

	for _, want := range []string{
		`-Execute "C:\Tools\tempclean.exe"`,
		"-Argument \"--quiet --created-before `\"10days 2h`\"\"",
		"New-ScheduledTaskTrigger -AtStartup",
		`-TaskName "tempclean"`,
		"-User SYSTEM",
	} {
		if !strings.Contains(script.Body, want) {
			t.Errorf("script missing %q:\n%s", want, script.Body)
		}
	}
}

func TestRenderCrontab(t *testing.T) {
	script, err := Render(platform.Linux, "/usr/local/bin/tempclean", []string{"--created-before", "7days"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if script.Interpreter != "sh" {
		t.Errorf("Interpreter = %s", script.Interpreter)
	}
	for _, want := range []string{
		"@reboot",
		`'\''/usr/local/bin/tempclean'\''`,
		`'\''7days'\''`,
		"# tempclean",
		"grep -v -F '# tempclean'",
		"crontab -",
	} {
		if !strings.Contains(script.Body, want) {
			t.Errorf("script missing %q:\n%s", want, script.Body)
		}
	}
}

func TestRenderRejects(t *testing.T) {
	if _, err := Render(platform.Unknown, "/bin/tempclean", nil); err == nil {
		t.Error("Render() should fail on an unknown platform")
	}
	if _, err := Render(platform.Linux, "/bin/temp$clean", nil); err == nil {
		t.Error("Render() should refuse metacharacters in the executable")
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"with space", "'with space'"},
		{"it's", `'it'\''s'`},
	}

	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

// =============================================================================
// Execution Tests
// =============================================================================

func TestRunDrainsOutput(t *testing.T) {
	testutil.SkipOnWindows(t)

	logger := testutil.NewCaptureLogger()
	i := &Installer{config: config.GetDefault(), logger: logger}

	err := i.run(context.Background(), Script{
		Interpreter: "sh",
		Args:        []string{"-s"},
		Body:        "echo registered\necho warning >&2\n",
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if len(logger.Infos) != 1 || logger.Infos[0] != "registered" {
		t.Errorf("Infos = %q", logger.Infos)
	}
	if len(logger.Errors) != 1 || logger.Errors[0] != "warning" {
		t.Errorf("Errors = %q", logger.Errors)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	testutil.SkipOnWindows(t)

	i := &Installer{config: config.GetDefault(), logger: testutil.NewCaptureLogger()}
	err := i.run(context.Background(), Script{
		Interpreter: "sh",
		Args:        []string{"-s"},
		Body:        "exit 3\n",
	})
	if err == nil {
		t.Error("run() should fail on a non-zero exit status")
	}
}

func TestInstallFailsWithoutInterpreter(t *testing.T) {
	i := &Installer{
		config:     config.GetDefault(),
		logger:     testutil.NewCaptureLogger(),
		platform:   platform.Linux,
		executable: "/usr/local/bin/tempclean",
	}
	t.Setenv("PATH", t.TempDir())

	if err := i.Install(context.Background()); err == nil {
		t.Error("Install() should fail when the interpreter cannot be started")
	}
}
