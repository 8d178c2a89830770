package ui

import (
	"bytes"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Console is the log sink for the terminal. While a live view is attached
// complete lines are handed to it so they print above the view; otherwise
// writes go straight to the underlying writer.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	program *tea.Program
	pending []byte
}

// NewConsole creates a console writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Write implements io.Writer
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.program == nil {
		return c.out.Write(p)
	}

	c.pending = append(c.pending, p...)
	for {
		i := bytes.IndexByte(c.pending, '\n')
		if i < 0 {
			break
		}
		line := string(c.pending[:i])
		c.pending = c.pending[i+1:]
		c.program.Send(logLineMsg(line))
	}
	return len(p), nil
}

// Attach routes subsequent writes through program
func (c *Console) Attach(program *tea.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.program = program
}

// Detach restores direct writes and flushes any partial line
func (c *Console) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.program = nil
	if len(c.pending) > 0 {
		c.out.Write(c.pending)
		c.pending = nil
	}
}
