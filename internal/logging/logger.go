package logging

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fenilsonani/tempclean/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is the minimum severity a Logger writes
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
)

// Logger is a leveled logger writing to the console, a rotated log file, or
// both.
type Logger struct {
	logger *log.Logger
	level  Level
	closer io.Closer
}

// NewLogger creates a logger writing to w
func NewLogger(w io.Writer, level Level) *Logger {
	return &Logger{
		logger: log.New(w, "", log.LstdFlags),
		level:  level,
	}
}

// New creates the logger for a run described by cfg. The console sink is
// dropped when quiet, except while installing the task, whose output is
// meant for the person running it. The file sink is not used while
// installing the task: the log path belongs to the installed command.
func New(cfg *config.Config, console io.Writer) (*Logger, error) {
	level := LevelInfo
	if cfg.Verbose {
		level = LevelDebug
	}

	var sinks []io.Writer
	if !cfg.Quiet || cfg.InstallTask {
		sinks = append(sinks, console)
	}

	var closer io.Closer
	if cfg.LogPath != "" && !cfg.InstallTask {
		file, err := OpenLogFile(cfg.LogPath)
		if err != nil {
			return nil, err
		}
		file.Close()

		rotated := &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    cfg.LogMaxSizeMB(),
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			LocalTime:  true,
			Compress:   cfg.LogCompress,
		}
		sinks = append(sinks, rotated)
		closer = rotated
	}

	var w io.Writer = io.Discard
	switch len(sinks) {
	case 0:
	case 1:
		w = sinks[0]
	default:
		w = io.MultiWriter(sinks...)
	}

	logger := NewLogger(w, level)
	logger.closer = closer
	return logger, nil
}

// OpenLogFile opens path for appending, creating it when absent. A path
// naming a directory is an error.
func OpenLogFile(path string) (*os.File, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("log path %s is a directory", path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level <= LevelDebug {
		l.logger.Printf("[DEBUG] "+format, args...)
	}
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Printf("[INFO] "+format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logger.Printf("[WARN] "+format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Printf("[ERROR] "+format, args...)
}

// PrintError logs err followed by one line per wrapped cause
func (l *Logger) PrintError(err error) {
	if err == nil {
		return
	}
	l.logger.Print("[ERROR] " + FormatChain(err))
}

// FormatChain renders err as an "Error:" line followed by a "  Cause:" line
// for every error it wraps.
func FormatChain(err error) string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(err.Error())

	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		b.WriteString("\n  Cause: ")
		b.WriteString(cause.Error())
	}
	return b.String()
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
