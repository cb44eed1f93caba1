// Package scorm generates SCORM 1.2 and 2004 manifests and runtimes, and models the runtime
// bookmarking/completion state machine.
package scorm

import "fmt"

// GenerateError represents a failure rendering a manifest or runtime
type GenerateError struct {
	Artifact string
	Message  string
	Cause    error
}

func (e *GenerateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to generate %s: %s: %v", e.Artifact, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to generate %s: %s", e.Artifact, e.Message)
}

func (e *GenerateError) Unwrap() error {
	return e.Cause
}

// NavigationError represents a move to a unit that does not exist
type NavigationError struct {
	Index int
	Total int
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("unit index %d out of range (0..%d)", e.Index, e.Total-1)
}
