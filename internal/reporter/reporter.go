package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fenilsonani/tempclean/internal/cleaner"
	"github.com/fenilsonani/tempclean/internal/duration"
	"github.com/fenilsonani/tempclean/internal/ui/styles"
	"github.com/fenilsonani/tempclean/pkg/utils"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatSummary OutputFormat = "summary"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatNone    OutputFormat = "none"
)

// RootResult is the outcome of cleaning one root
type RootResult struct {
	Root    string        `json:"root" yaml:"root"`
	Existed bool          `json:"existed" yaml:"existed"`
	Stats   cleaner.Stats `json:"stats" yaml:"stats"`
	// Error is set when the root itself could not be listed.
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration   time.Duration `json:"-" yaml:"-"`
	Elapsed    string        `json:"elapsed,omitempty" yaml:"elapsed,omitempty"`
	FreeBefore uint64        `json:"free_before,omitempty" yaml:"free_before,omitempty"`
	FreeAfter  uint64        `json:"free_after,omitempty" yaml:"free_after,omitempty"`
}

// Report describes a whole cleaning run
type Report struct {
	ID            string        `json:"id" yaml:"id"`
	StartedAt     time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt    time.Time     `json:"finished_at" yaml:"finished_at"`
	DryRun        bool          `json:"dry_run" yaml:"dry_run"`
	CreatedBefore string        `json:"created_before,omitempty" yaml:"created_before,omitempty"`
	Roots         []RootResult  `json:"roots" yaml:"roots"`
	Totals        cleaner.Stats `json:"totals" yaml:"totals"`
}

// NewReport starts a report for a run with the given settings
func NewReport(dryRun bool, cutoff *time.Duration) *Report {
	report := &Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		DryRun:    dryRun,
		Roots:     make([]RootResult, 0),
	}
	if cutoff != nil {
		report.CreatedBefore = duration.Format(*cutoff)
	}
	return report
}

// Add records the result of one root and folds its stats into the totals
func (r *Report) Add(result RootResult) {
	if result.Duration > 0 && result.Elapsed == "" {
		result.Elapsed = result.Duration.Round(time.Millisecond).String()
	}
	r.Roots = append(r.Roots, result)
	r.Totals.Add(result.Stats)
}

// Finish stamps the end of the run
func (r *Report) Finish() {
	r.FinishedAt = time.Now()
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// Report writes report in the reporter's format
func (r *Reporter) Report(report *Report) error {
	switch r.format {
	case FormatSummary:
		return r.reportSummary(report)
	case FormatJSON:
		return r.reportJSON(report)
	case FormatYAML:
		return r.reportYAML(report)
	case FormatNone:
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// reportSummary renders a table with one row per cleaned root
func (r *Reporter) reportSummary(report *Report) error {
	title := "Cleanup Summary"
	if report.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintln(r.writer, styles.TitleStyle.Render(title))

	rows := make([][]string, 0, len(report.Roots))
	for _, root := range report.Roots {
		if !root.Existed {
			continue
		}
		status := strconv.FormatUint(root.Stats.ErrorsTotal, 10)
		if root.Error != "" {
			status = "unreadable"
		}
		rows = append(rows, []string{
			root.Root,
			strconv.FormatUint(root.Stats.RemovedCount, 10),
			utils.FormatBytes(root.Stats.RemovedBytes),
			status,
			strconv.FormatUint(root.Stats.Warnings, 10),
		})
	}

	if len(rows) == 0 {
		fmt.Fprintln(r.writer, styles.DimStyle.Render("No temporary directories found."))
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
		Headers("ROOT", "REMOVED", "SIZE", "ERRORS", "WARNINGS").
		Rows(rows...)
	fmt.Fprintln(r.writer, t.String())

	totals := fmt.Sprintf("Total: %d entries, %s", report.Totals.RemovedCount, utils.FormatBytes(report.Totals.RemovedBytes))
	fmt.Fprintln(r.writer, styles.SuccessStyle.Render(totals))

	if report.Totals.ErrorsTotal > 0 {
		fmt.Fprintln(r.writer, styles.ErrorStyle.Render(fmt.Sprintf("Errors: %d", report.Totals.ErrorsTotal)))
	}
	if report.Totals.Warnings > 0 {
		fmt.Fprintln(r.writer, styles.WarningStyle.Render(
			fmt.Sprintf("Skipped %d entries with unknown creation time", report.Totals.Warnings)))
	}

	if freed, ok := report.FreedSpace(); ok {
		fmt.Fprintln(r.writer, styles.DimStyle.Render("Disk space change: "+freed))
	}

	return nil
}

// FreedSpace sums the free-space change measured around each root. Roots
// without both measurements are ignored.
func (r *Report) FreedSpace() (string, bool) {
	var delta int64
	measured := false
	for _, root := range r.Roots {
		if root.FreeBefore == 0 || root.FreeAfter == 0 {
			continue
		}
		delta += int64(root.FreeAfter) - int64(root.FreeBefore)
		measured = true
	}
	if !measured {
		return "", false
	}
	if delta >= 0 {
		return "+" + utils.FormatBytes(uint64(delta)), true
	}
	return "-" + utils.FormatBytes(uint64(-delta)), true
}

// reportJSON generates a JSON report
func (r *Reporter) reportJSON(report *Report) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// reportYAML generates a YAML report
func (r *Reporter) reportYAML(report *Report) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(report)
}

// FormatForPath picks a report format from a file extension
func FormatForPath(path string) OutputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatSummary
	}
}

// SaveToFile saves the report to a file
func SaveToFile(report *Report, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	reporter := New(file, format)
	return reporter.Report(report)
}
