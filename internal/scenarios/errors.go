// Package scenarios normalizes heterogeneous question/answer records into canonical scenario items.
package scenarios

import "fmt"

// EmptyResultError indicates that no usable scenario survived normalization
type EmptyResultError struct {
	Source string
}

func (e *EmptyResultError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("no scenarios found in %s", e.Source)
	}
	return "no scenarios found"
}

// ParseError represents scenario input that is not valid JSON or not shaped like a scenario set
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scenario parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("scenario parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
