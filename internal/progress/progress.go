package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/fenilsonani/tempclean/pkg/utils"
)

// Phase represents the current phase of operation
type Phase string

const (
	PhaseDiscovering Phase = "discovering"
	PhaseCleaning    Phase = "cleaning"
	PhaseComplete    Phase = "complete"
	PhaseError       Phase = "error"
)

// CleanProgress is a snapshot of a cleaning run
type CleanProgress struct {
	Phase        Phase
	Root         string
	RootsDone    int
	RootsTotal   int
	CurrentPath  string
	Visited      uint64
	Removed      uint64
	RemovedBytes uint64
	Errors       uint64
	StartTime    time.Time
	Error        error
}

// ProgressReporter provides thread-safe progress reporting. It receives
// walker events as a cleaner.Observer and fans snapshots out to
// subscribers without ever blocking the walker.
type ProgressReporter struct {
	mu        sync.RWMutex
	current   CleanProgress
	listeners []chan CleanProgress
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		current: CleanProgress{
			Phase:     PhaseDiscovering,
			StartTime: time.Now(),
		},
		listeners: make([]chan CleanProgress, 0),
	}
}

// Subscribe returns a channel that receives progress updates
func (pr *ProgressReporter) Subscribe() <-chan CleanProgress {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	ch := make(chan CleanProgress, 10)
	pr.listeners = append(pr.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (pr *ProgressReporter) Unsubscribe(ch <-chan CleanProgress) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	for i, listener := range pr.listeners {
		if listener == ch {
			close(listener)
			pr.listeners = append(pr.listeners[:i], pr.listeners[i+1:]...)
			return
		}
	}
}

// Discovering marks the start of root discovery
func (pr *ProgressReporter) Discovering() {
	pr.update(func(p *CleanProgress) {
		p.Phase = PhaseDiscovering
		p.StartTime = time.Now()
	})
}

// StartRoot marks the beginning of the index-th root out of total
func (pr *ProgressReporter) StartRoot(root string, index, total int) {
	pr.update(func(p *CleanProgress) {
		p.Phase = PhaseCleaning
		p.Root = root
		p.RootsDone = index
		p.RootsTotal = total
		p.CurrentPath = root
	})
}

// Finish marks the run as complete, or failed when err is non-nil
func (pr *ProgressReporter) Finish(err error) {
	pr.update(func(p *CleanProgress) {
		p.RootsDone = p.RootsTotal
		p.CurrentPath = ""
		if err != nil {
			p.Phase = PhaseError
			p.Error = err
			return
		}
		p.Phase = PhaseComplete
	})
}

// EntryVisited implements cleaner.Observer
func (pr *ProgressReporter) EntryVisited(path string) {
	pr.update(func(p *CleanProgress) {
		p.CurrentPath = path
		p.Visited++
	})
}

// EntryRemoved implements cleaner.Observer
func (pr *ProgressReporter) EntryRemoved(path string, size uint64) {
	pr.update(func(p *CleanProgress) {
		p.Removed++
		p.RemovedBytes += size
	})
}

// ErrorRecorded implements cleaner.Observer
func (pr *ProgressReporter) ErrorRecorded(path string, err error) {
	pr.update(func(p *CleanProgress) {
		p.Errors++
	})
}

// GetCleanProgress returns the current progress
func (pr *ProgressReporter) GetCleanProgress() CleanProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.current
}

func (pr *ProgressReporter) update(apply func(p *CleanProgress)) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	apply(&pr.current)

	// Notify all listeners (non-blocking). Sending under the lock keeps
	// Unsubscribe from closing a channel mid-send.
	for _, listener := range pr.listeners {
		select {
		case listener <- pr.current:
		default:
			// Skip if channel is full
		}
	}
}

// FormatCleanProgress returns a human-readable clean progress string
func FormatCleanProgress(p CleanProgress) string {
	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseDiscovering:
		return "Discovering temporary directories..."
	case PhaseCleaning:
		return fmt.Sprintf("Cleaning %s (%d/%d)... %d removed (%s), %d errors [%s]",
			p.Root,
			p.RootsDone+1,
			p.RootsTotal,
			p.Removed,
			utils.FormatBytes(p.RemovedBytes),
			p.Errors,
			FormatDuration(elapsed))
	case PhaseComplete:
		return fmt.Sprintf("Cleanup complete: %d entries removed (%s) in %s",
			p.Removed,
			utils.FormatBytes(p.RemovedBytes),
			FormatDuration(elapsed))
	case PhaseError:
		return fmt.Sprintf("Cleanup error: %v", p.Error)
	default:
		return "Preparing cleanup..."
	}
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
