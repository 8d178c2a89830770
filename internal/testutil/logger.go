package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// CaptureLogger records every message per level
type CaptureLogger struct {
	mu     sync.Mutex
	Debugs []string
	Infos  []string
	Warns  []string
	Errors []string
	// Errs holds the errors passed to PrintError
	Errs []error
}

// NewCaptureLogger creates an empty CaptureLogger
func NewCaptureLogger() *CaptureLogger {
	return &CaptureLogger{}
}

func (l *CaptureLogger) Debug(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, fmt.Sprintf(format, args...))
}

func (l *CaptureLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, fmt.Sprintf(format, args...))
}

func (l *CaptureLogger) Warn(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, fmt.Sprintf(format, args...))
}

func (l *CaptureLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, fmt.Sprintf(format, args...))
}

func (l *CaptureLogger) PrintError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errs = append(l.Errs, err)
	l.Errors = append(l.Errors, err.Error())
}

// Contains reports whether any recorded message contains substr
func (l *CaptureLogger) Contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, lines := range [][]string{l.Debugs, l.Infos, l.Warns, l.Errors} {
		for _, line := range lines {
			if strings.Contains(line, substr) {
				return true
			}
		}
	}
	return false
}
