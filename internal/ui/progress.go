package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	bar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/fenilsonani/tempclean/internal/config"
	"github.com/fenilsonani/tempclean/internal/progress"
	"github.com/fenilsonani/tempclean/internal/ui/styles"
	"github.com/fenilsonani/tempclean/internal/ui/utils"
	pkgutils "github.com/fenilsonani/tempclean/pkg/utils"
)

// ErrInterrupted is returned by RunLive when the user quits the live view
var ErrInterrupted = errors.New("interrupted")

type progressMsg progress.CleanProgress

type logLineMsg string

type doneMsg struct{}

// LiveModel renders a single cleaning run: one spinner line for the root
// being cleaned, the entry currently visited, and a bar over the roots.
type LiveModel struct {
	spinner     spinner.Model
	bar         bar.Model
	state       progress.CleanProgress
	width       int
	done        bool
	interrupted bool
}

// NewLiveModel creates a live view sized for a terminal of the given width
func NewLiveModel(width int) LiveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	b := bar.New(bar.WithDefaultGradient(), bar.WithoutPercentage())
	m := LiveModel{
		spinner: s,
		bar:     b,
		state:   progress.CleanProgress{Phase: progress.PhaseDiscovering, StartTime: time.Now()},
	}
	m.resize(width)
	return m
}

func (m *LiveModel) resize(width int) {
	if width <= 0 {
		width = utils.MinTerminalWidth
	}
	m.width = width
	m.bar.Width = width - 4
	if m.bar.Width > 60 {
		m.bar.Width = 60
	}
}

// Init starts the spinner
func (m LiveModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles incoming messages
func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.done = true
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width)
		return m, nil

	case progressMsg:
		m.state = progress.CleanProgress(msg)
		return m, nil

	case logLineMsg:
		return m, tea.Println(string(msg))

	case doneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the live view. It is empty once the run is over so the
// final report starts on a clean line.
func (m LiveModel) View() string {
	if m.done {
		return ""
	}

	p := m.state
	var b strings.Builder

	switch p.Phase {
	case progress.PhaseCleaning:
		fmt.Fprintf(&b, "%s Cleaning %s (%d/%d)\n",
			m.spinner.View(),
			utils.TruncatePath(p.Root, m.width-20),
			p.RootsDone+1,
			p.RootsTotal)
	default:
		fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), progress.FormatCleanProgress(p))
	}

	current := p.CurrentPath
	if current == "" {
		current = p.Root
	}
	b.WriteString("  " + styles.FilePathStyle.Render(utils.TruncatePath(current, m.width-4)) + "\n")
	b.WriteString("  " + m.bar.ViewAs(m.percent()) + "\n")
	stats := fmt.Sprintf("%d removed (%s), %d errors [%s]",
		p.Removed,
		pkgutils.FormatBytes(p.RemovedBytes),
		p.Errors,
		progress.FormatDuration(time.Since(p.StartTime)))
	b.WriteString("  " + styles.DimStyle.Render(utils.TruncateString(stats, m.width-4)))
	b.WriteString("\n")

	return b.String()
}

func (m LiveModel) percent() float64 {
	if m.state.RootsTotal == 0 {
		return 0
	}
	pct := float64(m.state.RootsDone) / float64(m.state.RootsTotal)
	if pct > 1 {
		pct = 1
	}
	return pct
}

// ShouldShowProgress reports whether the live view should be drawn on f
func ShouldShowProgress(cfg *config.Config, f *os.File) bool {
	if cfg.Quiet || cfg.Verbose || cfg.NoProgress {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// RunLive runs work while drawing the live view on stderr. Log lines
// written to console are printed above the view. The view closes when
// work returns; its error is returned unchanged.
func RunLive(pr *progress.ProgressReporter, console *Console, work func() error) error {
	m := NewLiveModel(utils.TerminalWidth(os.Stderr))
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))

	updates := pr.Subscribe()
	go func() {
		for snap := range updates {
			p.Send(progressMsg(snap))
		}
	}()

	console.Attach(p)

	errCh := make(chan error, 1)
	go func() {
		err := work()
		pr.Finish(err)
		errCh <- err
		p.Send(doneMsg{})
	}()

	final, runErr := p.Run()
	console.Detach()
	pr.Unsubscribe(updates)

	if fm, ok := final.(LiveModel); ok && fm.interrupted {
		return ErrInterrupted
	}

	err := <-errCh
	if err == nil && runErr != nil {
		return fmt.Errorf("progress display failed: %w", runErr)
	}
	return err
}
