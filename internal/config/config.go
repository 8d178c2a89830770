package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fenilsonani/tempclean/internal/duration"
	"github.com/fenilsonani/tempclean/internal/security"
	"github.com/fenilsonani/tempclean/pkg/utils"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Output formats accepted for the run report
var OutputFormats = []string{"summary", "json", "yaml", "none"}

// Config represents the application configuration. It is read from the
// options file, overridden by command line flags, and then treated as
// read-only for the duration of a run.
type Config struct {
	// CreatedBefore is the age cutoff as written by the user ("10d2h").
	// Validate parses it into Since.
	CreatedBefore string `yaml:"created_before,omitempty"`
	// Since is the parsed cutoff. nil disables age filtering; zero is a
	// real cutoff that every entry with a readable creation time passes.
	Since *time.Duration `yaml:"-"`

	DryRun      bool `yaml:"dry_run"`
	Verbose     bool `yaml:"verbose"`
	Quiet       bool `yaml:"quiet"`
	InstallTask bool `yaml:"-"`
	NoProgress  bool `yaml:"no_progress"`

	LogPath       string `yaml:"log_file,omitempty"`
	LogMaxSize    string `yaml:"log_max_size"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`
	LogCompress   bool   `yaml:"log_compress"`

	ExtraRoots      []string `yaml:"extra_roots"`
	SkipDiscovery   bool     `yaml:"skip_discovery"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	ProtectedPaths  []string `yaml:"protected_paths"`

	Output     string `yaml:"output"`
	ReportFile string `yaml:"report_file,omitempty"`

	Daemon *DaemonConfig `yaml:"daemon,omitempty"`

	// ConfigFile is the options file this config was read from, empty when
	// no file existed.
	ConfigFile string `yaml:"-"`
}

// DaemonConfig holds daemon mode configuration
type DaemonConfig struct {
	PidFile   string            `yaml:"pid_file,omitempty"`
	Schedules []CleanupSchedule `yaml:"schedules"`
}

// CleanupSchedule defines a scheduled cleaning run
type CleanupSchedule struct {
	Name     string `yaml:"name"`
	Schedule string `yaml:"schedule"` // Cron expression
	DryRun   bool   `yaml:"dry_run"`
}

// Load loads configuration from a file
func Load(configPath string) (*Config, error) {
	// If config doesn't exist, return default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := GetDefault()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.ConfigFile = configPath

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration and resolves CreatedBefore into Since
func (c *Config) Validate() error {
	if err := c.resolveCutoff(); err != nil {
		return err
	}

	if _, err := utils.ParseSize(c.LogMaxSize); err != nil {
		return fmt.Errorf("invalid log_max_size: %w", err)
	}
	if c.LogMaxBackups < 0 {
		return fmt.Errorf("log_max_backups must be >= 0")
	}
	if c.LogMaxAgeDays < 0 {
		return fmt.Errorf("log_max_age_days must be >= 0")
	}

	if !isOutputFormat(c.Output) {
		return fmt.Errorf("unknown output format %q (expected one of %v)", c.Output, OutputFormats)
	}

	// Validate exclude patterns (wildcard syntax)
	for _, pattern := range c.ExcludePatterns {
		if err := security.ValidateGlobPattern(pattern); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	for _, path := range c.ExtraRoots {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("extra root must be absolute: %s", path)
		}
	}

	for _, path := range c.ProtectedPaths {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("protected path must be absolute: %s", path)
		}
	}

	if c.SkipDiscovery && len(c.ExtraRoots) == 0 {
		return fmt.Errorf("skip_discovery requires at least one extra root")
	}

	if c.Daemon != nil {
		seen := make(map[string]bool)
		for _, sched := range c.Daemon.Schedules {
			if sched.Name == "" {
				return fmt.Errorf("daemon schedule without a name")
			}
			if sched.Schedule == "" {
				return fmt.Errorf("daemon schedule %s has no cron expression", sched.Name)
			}
			if _, err := cron.ParseStandard(sched.Schedule); err != nil {
				return fmt.Errorf("daemon schedule %s: invalid cron expression: %w", sched.Name, err)
			}
			if seen[sched.Name] {
				return fmt.Errorf("duplicate daemon schedule name: %s", sched.Name)
			}
			seen[sched.Name] = true
		}
	}

	return nil
}

func (c *Config) resolveCutoff() error {
	if c.CreatedBefore == "" {
		c.Since = nil
		return nil
	}

	since, err := duration.Parse(c.CreatedBefore)
	if err != nil {
		return fmt.Errorf("invalid created_before value: %w", err)
	}
	c.Since = &since
	return nil
}

// Clone returns a copy of the configuration that can be modified without
// affecting c. Slices are copied; the daemon section is shared.
func (c *Config) Clone() *Config {
	cfg := *c
	cfg.ExtraRoots = append([]string(nil), c.ExtraRoots...)
	cfg.ExcludePatterns = append([]string(nil), c.ExcludePatterns...)
	cfg.ProtectedPaths = append([]string(nil), c.ProtectedPaths...)
	if c.Since != nil {
		since := *c.Since
		cfg.Since = &since
	}
	return &cfg
}

// LogMaxSizeMB returns the log rotation threshold in whole megabytes,
// never less than 1.
func (c *Config) LogMaxSizeMB() int {
	size, err := utils.ParseSize(c.LogMaxSize)
	if err != nil {
		return 1
	}
	mb := int(size / utils.MiB)
	if mb < 1 {
		return 1
	}
	return mb
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "tempclean", "config.yaml"), nil
}

func isOutputFormat(format string) bool {
	for _, f := range OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}
