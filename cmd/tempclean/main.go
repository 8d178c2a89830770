package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fenilsonani/tempclean/internal/config"
	"github.com/fenilsonani/tempclean/internal/logging"
	"github.com/fenilsonani/tempclean/internal/progress"
	"github.com/fenilsonani/tempclean/internal/reporter"
	"github.com/fenilsonani/tempclean/internal/runner"
	"github.com/fenilsonani/tempclean/internal/task"
	"github.com/fenilsonani/tempclean/internal/ui"
	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// options holds the values of the command line flags
type options struct {
	configPath    string
	createdBefore string
	dryRun        bool
	verbose       bool
	quiet         bool
	logPath       string
	installTask   bool
	output        string
	reportFile    string
	noProgress    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.FormatChain(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "tempclean",
		Short: "Remove old temporary files and directories",
		Long: `tempclean discovers the temporary directories of the machine and of every
user on it, and removes their contents. With --created-before only entries
created before the given age are removed.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runClean(cmd, cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file path")
	flags.StringVarP(&opts.createdBefore, "created-before", "b", "", "only remove entries created before this age (e.g. 10d, 1d 2h, 1month)")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "report what would be removed without removing anything")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every removal")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "do not log to the console")
	flags.StringVarP(&opts.logPath, "log", "l", "", "append log output to this file")
	flags.StringVarP(&opts.output, "output", "o", "", "report format (summary, json, yaml, none)")
	flags.StringVar(&opts.reportFile, "report-file", "", "also save the report to this file")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "disable the live progress view")
	rootCmd.Flags().BoolVar(&opts.installTask, "install-task", false, "install a task that runs tempclean with these flags at startup")

	rootCmd.AddCommand(newRootsCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newDaemonCmd(opts))

	return rootCmd
}

// loadConfig builds the run config: defaults, then the options file, then
// the flags the user actually set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyFlags(cmd, cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *options) {
	changed := cmd.Flags().Changed

	if changed("created-before") {
		cfg.CreatedBefore = opts.createdBefore
	}
	if changed("dry-run") {
		cfg.DryRun = opts.dryRun
	}
	if changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if changed("quiet") {
		cfg.Quiet = opts.quiet
	}
	if changed("log") {
		cfg.LogPath = opts.logPath
	}
	if changed("output") {
		cfg.Output = opts.output
	}
	if changed("report-file") {
		cfg.ReportFile = opts.reportFile
	}
	if changed("no-progress") {
		cfg.NoProgress = opts.noProgress
	}
	if changed("install-task") {
		cfg.InstallTask = opts.installTask
	}
}

func runClean(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	console := ui.NewConsole(consoleWriter(cmd, cfg))
	logger, err := logging.New(cfg, console)
	if err != nil {
		return err
	}
	defer logger.Close()

	if cfg.InstallTask {
		installer, err := task.NewInstaller(cfg, logger)
		if err != nil {
			return err
		}
		return installer.Install(cmd.Context())
	}

	r := runner.New(cfg, logger)

	var report *reporter.Report
	work := func() error {
		var err error
		report, err = r.Run()
		return err
	}

	if ui.ShouldShowProgress(cfg, os.Stderr) {
		pr := progress.NewProgressReporter()
		r.SetProgress(pr)
		err = ui.RunLive(pr, console, work)
	} else {
		err = work()
	}
	if err != nil {
		return err
	}

	return writeReport(out, cfg, report, logger)
}

// consoleWriter returns where console log lines go. A json or yaml report
// owns stdout, so the log moves to stderr.
func consoleWriter(cmd *cobra.Command, cfg *config.Config) io.Writer {
	switch reporter.OutputFormat(cfg.Output) {
	case reporter.FormatJSON, reporter.FormatYAML:
		return cmd.ErrOrStderr()
	default:
		return cmd.OutOrStdout()
	}
}

// writeReport prints the report and saves it when asked to. A quiet run
// prints no summary; machine readable formats are still written.
func writeReport(out io.Writer, cfg *config.Config, report *reporter.Report, logger *logging.Logger) error {
	format := reporter.OutputFormat(cfg.Output)
	if cfg.Quiet && format == reporter.FormatSummary {
		format = reporter.FormatNone
	}

	if err := reporter.New(out, format).Report(report); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if cfg.ReportFile != "" {
		if err := reporter.SaveToFile(report, cfg.ReportFile, reporter.FormatForPath(cfg.ReportFile)); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		logger.Info("Report saved to %s", cfg.ReportFile)
	}

	return nil
}
