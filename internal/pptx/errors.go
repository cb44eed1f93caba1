// Package pptx decodes OOXML presentations into the ordered slide model.
package pptx

import "fmt"

// SlideParseError represents a slide part that could not be parsed; the slide becomes a placeholder
type SlideParseError struct {
	Index int
	Path  string
	Cause error
}

func (e *SlideParseError) Error() string {
	return fmt.Sprintf("slide %d (%s) could not be parsed: %v", e.Index, e.Path, e.Cause)
}

func (e *SlideParseError) Unwrap() error {
	return e.Cause
}

// RelationshipParseError represents a relationships part that could not be parsed
type RelationshipParseError struct {
	SlideNumber int
	Path        string
	Cause       error
}

func (e *RelationshipParseError) Error() string {
	return fmt.Sprintf("relationships for slide %d (%s) could not be parsed: %v", e.SlideNumber, e.Path, e.Cause)
}

func (e *RelationshipParseError) Unwrap() error {
	return e.Cause
}

// MediaExtractError represents an image that could not be extracted; the image is omitted
type MediaExtractError struct {
	Path  string
	Cause error
}

func (e *MediaExtractError) Error() string {
	return fmt.Sprintf("media %s could not be extracted: %v", e.Path, e.Cause)
}

func (e *MediaExtractError) Unwrap() error {
	return e.Cause
}

// EmptyResultError indicates the presentation produced no slides
type EmptyResultError struct {
	SourceName string
}

func (e *EmptyResultError) Error() string {
	if e.SourceName != "" {
		return fmt.Sprintf("no slides found in %s", e.SourceName)
	}
	return "no slides found in presentation"
}
