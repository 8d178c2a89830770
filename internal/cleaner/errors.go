package cleaner

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ErrorReason categorizes why a removal failed
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorFileInUse
	ErrorFileNotFound
	ErrorDirectoryNotEmpty
	ErrorInvalidPath
	ErrorUnknown
)

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorFileInUse:
		return "File is in use"
	case ErrorFileNotFound:
		return "File not found"
	case ErrorDirectoryNotEmpty:
		return "Directory not empty"
	case ErrorInvalidPath:
		return "Invalid path"
	case ErrorUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// RemovalError is returned when a file or directory could not be removed.
// The OS error is kept as the cause.
type RemovalError struct {
	Path     string
	IsDir    bool
	Reason   ErrorReason
	Original error
}

// Error implements the error interface
func (e *RemovalError) Error() string {
	kind := "file"
	if e.IsDir {
		kind = "directory"
	}
	return fmt.Sprintf("failed to remove %s %s: %s", kind, e.Path, e.Reason)
}

func (e *RemovalError) Unwrap() error {
	return e.Original
}

// UserMessage returns a user-friendly error message
func (e *RemovalError) UserMessage() string {
	switch e.Reason {
	case ErrorPermissionDenied:
		return fmt.Sprintf("Permission denied: %s", e.Path)
	case ErrorFileInUse:
		return fmt.Sprintf("File is being used: %s (close the application and run again)", e.Path)
	case ErrorFileNotFound:
		return fmt.Sprintf("Already deleted: %s", e.Path)
	case ErrorDirectoryNotEmpty:
		return fmt.Sprintf("Directory still has contents: %s", e.Path)
	case ErrorInvalidPath:
		return fmt.Sprintf("Invalid or unsafe path: %s", e.Path)
	default:
		return fmt.Sprintf("Error removing %s: %v", e.Path, e.Original)
	}
}

// CategorizeError analyzes a removal error and returns a categorized RemovalError
func CategorizeError(path string, isDir bool, err error) *RemovalError {
	if err == nil {
		return nil
	}

	remErr := &RemovalError{
		Path:     path,
		IsDir:    isDir,
		Original: err,
		Reason:   ErrorUnknown,
	}

	// Check syscall errors first, they are more specific than the os helpers
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM:
			remErr.Reason = ErrorPermissionDenied
		case syscall.EBUSY, syscall.ETXTBSY:
			remErr.Reason = ErrorFileInUse
		case syscall.ENOENT:
			remErr.Reason = ErrorFileNotFound
		case syscall.ENOTEMPTY, syscall.EEXIST:
			remErr.Reason = ErrorDirectoryNotEmpty
		case syscall.EINVAL, syscall.ENAMETOOLONG:
			remErr.Reason = ErrorInvalidPath
		}
		if remErr.Reason != ErrorUnknown {
			return remErr
		}
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		remErr.Reason = ErrorFileNotFound
	case errors.Is(err, os.ErrPermission):
		remErr.Reason = ErrorPermissionDenied
	}

	return remErr
}

// ListError means a directory's entries could not be read. It aborts the
// cleaning of that directory only.
type ListError struct {
	Path string
	Err  error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("can't read dir %s", e.Path)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// MetadataError means an entry's metadata could not be read.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("can't read metadata %s", e.Path)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}
