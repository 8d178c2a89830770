package config

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		DryRun:          false,
		Verbose:         false,
		Quiet:           false,
		LogMaxSize:      "10MB",
		LogMaxBackups:   3,
		LogMaxAgeDays:   28,
		LogCompress:     false,
		ExtraRoots:      []string{},
		ExcludePatterns: []string{},
		ProtectedPaths:  []string{},
		Output:          "summary",
	}
}

// GetExampleConfig returns an example configuration with comments
func GetExampleConfig() string {
	return `# tempclean configuration file
# Command line flags override every value set here.

# Only remove entries created before this age (60s, 10m, 10h, 10d, 10d2h, 1y).
# Leave empty to remove everything.
created_before: 7d

# Log what would be removed without removing anything
dry_run: false

verbose: false
quiet: false

# Append the log to this file as well (rotated by size)
log_file: ""
log_max_size: 10MB
log_max_backups: 3
log_max_age_days: 28
log_compress: false

# Additional directories to clean; absolute paths only
extra_roots: []

# Clean only extra_roots and skip the system/user temp discovery
skip_discovery: false

# Entries whose path or name matches one of these wildcards are left alone
exclude_patterns:
  - "*.lock"

# Paths that may never be used as a root, on top of the built-in list
protected_paths: []

# Report format printed after a run: summary, json, yaml, none
output: summary

# Cron schedules used by "tempclean daemon"
daemon:
  schedules:
    - name: nightly
      schedule: "0 3 * * *"
      dry_run: false
`
}
