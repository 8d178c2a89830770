package cleaner

// Logger is the reporting sink the walker writes to. internal/logging
// provides the process implementation; tests substitute a capturing one.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	// PrintError logs err followed by each wrapped cause.
	PrintError(err error)
}

// Observer receives traversal events as they happen.
type Observer interface {
	EntryVisited(path string)
	EntryRemoved(path string, size uint64)
	ErrorRecorded(path string, err error)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) PrintError(error)             {}
