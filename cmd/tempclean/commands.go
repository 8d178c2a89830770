package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fenilsonani/tempclean/internal/config"
	"github.com/fenilsonani/tempclean/internal/daemon"
	"github.com/fenilsonani/tempclean/internal/logging"
	"github.com/fenilsonani/tempclean/internal/runner"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRootsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "roots",
		Short: "List the directories a run would clean",
		Long:  `Lists the discovered temporary directories and the configured extra roots, whether or not they exist.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			roots, err := runner.New(cfg, logging.NewLogger(os.Stderr, logging.LevelInfo)).Roots()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, root := range roots {
				marker := ""
				if _, err := os.Stat(root); os.IsNotExist(err) {
					marker = " (missing)"
				}
				fmt.Fprintf(out, "%s%s\n", root, marker)
			}
			return nil
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Display current configuration",
		Long:  `Shows the config file path and the effective configuration, flags included.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := configPath(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# Config file: %s\n", cfgPath)
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				fmt.Fprintln(out, "# Config file does not exist. Using default configuration.")
				fmt.Fprintln(out, "# Run 'tempclean config init' to create one.")
			}

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write an example config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := configPath(opts)
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config file %s already exists", cfgPath)
			}

			if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := os.WriteFile(cfgPath, []byte(config.GetExampleConfig()), 0644); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", cfgPath)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "save",
		Short: "Write the effective configuration, flags included, to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := configPath(opts)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			if err := config.Save(cfg, cfgPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", cfgPath)
			return nil
		},
	})

	return configCmd
}

func newDaemonCmd(opts *options) *cobra.Command {
	var list bool
	var runNow string

	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run cleanups on the configured schedules",
		Long: `Runs in the foreground and performs a cleaning run on every cron schedule
listed under daemon.schedules in the config file, until interrupted.

With --list the schedules and their next run times are printed instead.
With --run-now the named schedule runs once and the command exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			if list {
				return listJobs(cmd.OutOrStdout(), cfg)
			}

			if runNow == "" && cfg.Daemon != nil && isRunning(cfg.Daemon.PidFile) {
				return fmt.Errorf("daemon is already running")
			}

			logger, err := logging.New(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer logger.Close()

			d, err := daemon.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}

			if runNow != "" {
				return d.Scheduler().TriggerJob(runNow)
			}
			return d.Start()
		},
	}

	daemonCmd.Flags().BoolVar(&list, "list", false, "print the configured schedules and exit")
	daemonCmd.Flags().StringVar(&runNow, "run-now", "", "run the named schedule once and exit")
	daemonCmd.MarkFlagsMutuallyExclusive("list", "run-now")

	return daemonCmd
}

func listJobs(out io.Writer, cfg *config.Config) error {
	d, err := daemon.New(cfg, logging.NewLogger(io.Discard, logging.LevelInfo))
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	for _, job := range d.Scheduler().ListJobs() {
		mode := ""
		if job.DryRun {
			mode = " (dry run)"
		}
		fmt.Fprintf(out, "%s\t%s\tnext: %s%s\n", job.Name, job.Schedule, job.NextRun.Format(time.RFC3339), mode)
	}
	return nil
}

func configPath(opts *options) (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}
	return config.GetConfigPath()
}

// isRunning reports whether the process named in pidFile is alive
func isRunning(pidFile string) bool {
	if pidFile == "" {
		return false
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		return false
	}

	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return false
	}

	// Check if process exists
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
