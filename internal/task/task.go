// Package task registers tempclean to run at system startup: a scheduled
// task on Windows, an @reboot crontab entry elsewhere.
package task

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fenilsonani/tempclean/internal/cleaner"
	"github.com/fenilsonani/tempclean/internal/config"
	"github.com/fenilsonani/tempclean/internal/duration"
	"github.com/fenilsonani/tempclean/internal/logging"
	"github.com/fenilsonani/tempclean/internal/platform"
	"github.com/fenilsonani/tempclean/internal/security"
)

// Name identifies the installed task and its crontab entry
const Name = "tempclean"

// Script is a script together with the interpreter that reads it on stdin
type Script struct {
	Interpreter string
	Args        []string
	Body        string
}

// Installer registers the startup task for a config
type Installer struct {
	config     *config.Config
	logger     cleaner.Logger
	platform   platform.Platform
	executable string
}

// NewInstaller creates an Installer for the current platform and binary
func NewInstaller(cfg *config.Config, logger cleaner.Logger) (*Installer, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate the executable: %w", err)
	}

	return &Installer{
		config:     cfg,
		logger:     logger,
		platform:   platform.Detect(),
		executable: exe,
	}, nil
}

// Install registers the task. The interpreter's output is logged line by
// line; a non-zero exit status is an error.
func (i *Installer) Install(ctx context.Context) error {
	args, err := BuildArgs(i.config)
	if err != nil {
		return err
	}

	script, err := Render(i.platform, i.executable, args)
	if err != nil {
		return err
	}

	i.logger.Debug("Registering startup task with %s", script.Interpreter)
	if err := i.run(ctx, script); err != nil {
		return fmt.Errorf("failed to register the startup task: %w", err)
	}

	i.logger.Info("Installed startup task %s: %s %s", Name, i.executable, strings.Join(args, " "))
	return nil
}

func (i *Installer) run(ctx context.Context, script Script) error {
	cmd := exec.CommandContext(ctx, script.Interpreter, script.Args...)
	cmd.Stdin = strings.NewReader(script.Body)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", script.Interpreter, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go drain(&wg, stdout, func(line string) { i.logger.Info("%s", line) })
	go drain(&wg, stderr, func(line string) { i.logger.Error("%s", line) })
	wg.Wait()

	return cmd.Wait()
}

func drain(wg *sync.WaitGroup, r io.Reader, emit func(string)) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			emit(line)
		}
	}
}

// BuildArgs returns the command line the task runs with. The options file
// the config came from is passed along so the task sees the same roots and
// patterns. A log path is made absolute and must be creatable; a probe file is removed again if the log
// did not exist before.
func BuildArgs(cfg *config.Config) ([]string, error) {
	var args []string

	if cfg.DryRun {
		args = append(args, "--dry-run")
	}
	if cfg.Quiet {
		args = append(args, "--quiet")
	}
	if cfg.Verbose {
		args = append(args, "--verbose")
	}
	if cfg.Since != nil {
		args = append(args, "--created-before", duration.Format(*cfg.Since))
	}

	if cfg.ConfigFile != "" {
		configFile, err := filepath.Abs(cfg.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		if err := checkArgument(configFile); err != nil {
			return nil, err
		}
		args = append(args, "--config", configFile)
	}

	if cfg.LogPath != "" {
		logPath, err := filepath.Abs(cfg.LogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve log path: %w", err)
		}
		if err := checkArgument(logPath); err != nil {
			return nil, err
		}
		if err := probeLog(logPath); err != nil {
			return nil, fmt.Errorf("unable to create or open the log file %s: %w", logPath, err)
		}
		args = append(args, "--log", logPath)
	}

	return args, nil
}

func probeLog(path string) error {
	_, statErr := os.Stat(path)
	existed := statErr == nil

	f, err := logging.OpenLogFile(path)
	if err != nil {
		return err
	}
	f.Close()

	if !existed {
		return os.Remove(path)
	}
	return nil
}

// checkArgument refuses values that cannot be embedded in a script safely
func checkArgument(value string) error {
	if err := security.ValidateShellArgument(value); err != nil {
		return err
	}
	if strings.ContainsAny(value, `"'`) {
		return fmt.Errorf("quotes are not allowed in %q", value)
	}
	return nil
}

// Render builds the registration script for p
func Render(p platform.Platform, executable string, args []string) (Script, error) {
	if err := checkArgument(executable); err != nil {
		return Script{}, fmt.Errorf("invalid executable path: %w", err)
	}

	switch p {
	case platform.Windows:
		return windowsScript(executable, args), nil
	case platform.Linux, platform.MacOS:
		return crontabScript(executable, args), nil
	default:
		return Script{}, platform.ErrUnsupportedPlatform
	}
}

func windowsScript(executable string, args []string) Script {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if strings.ContainsAny(arg, " \t") {
			arg = "`\"" + arg + "`\""
		}
		quoted[i] = arg
	}

	var b strings.Builder
	b.WriteString("$ErrorActionPreference = \"Stop\"\n")
	fmt.Fprintf(&b, "$action = New-ScheduledTaskAction -Execute \"%s\" -Argument \"%s\"\n", executable, strings.Join(quoted, " "))
	b.WriteString("$trigger = New-ScheduledTaskTrigger -AtStartup\n")
	b.WriteString("$settings = New-ScheduledTaskSettingsSet\n")
	b.WriteString("$task = New-ScheduledTask -Action $action -Trigger $trigger -Settings $settings\n")
	fmt.Fprintf(&b, "Register-ScheduledTask -Force -TaskPath \"\\%s\\\" -TaskName \"%s\" -InputObject $task -User SYSTEM\n", Name, Name)

	return Script{
		Interpreter: "powershell.exe",
		Args:        []string{"-NoProfile", "-NonInteractive", "-WindowStyle", "Hidden", "-Command", "-"},
		Body:        b.String(),
	}
}

// crontabScript replaces any previous entry, so installing twice leaves a
// single line.
func crontabScript(executable string, args []string) Script {
	marker := "# " + Name

	fields := []string{shellQuote(executable)}
	for _, arg := range args {
		fields = append(fields, shellQuote(arg))
	}
	line := "@reboot " + strings.Join(fields, " ") + " " + marker

	var b strings.Builder
	fmt.Fprintf(&b, "line=%s\n", shellQuote(line))
	fmt.Fprintf(&b, "{ crontab -l 2>/dev/null | grep -v -F %s || true; echo \"$line\"; } | crontab -\n", shellQuote(marker))

	return Script{
		Interpreter: "sh",
		Args:        []string{"-s"},
		Body:        b.String(),
	}
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
