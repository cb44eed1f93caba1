// Package packaging composes generated SCORM files and media into a deliverable archive.
package packaging

import "fmt"

// DuplicatePathError indicates two inputs claimed the same package path
type DuplicatePathError struct {
	Path string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("duplicate package path: %s", e.Path)
}

// InvalidPathError indicates a package path that would escape the archive root or is empty
type InvalidPathError struct {
	Path string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid package path: %q", e.Path)
}

// WriteError represents a failure writing the archive
type WriteError struct {
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to write package: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to write package: %s", e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
