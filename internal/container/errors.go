// Package container opens zip-based OOXML containers from in-memory buffers.
package container

import "fmt"

// InvalidFormatError indicates the buffer is not a zip container at all
type InvalidFormatError struct {
	Message string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid container format: %s; re-export the file as .pptx and try again", e.Message)
}

// CorruptedArchiveError indicates the zip signature is present but the archive cannot be read
type CorruptedArchiveError struct {
	Message           string
	PasswordProtected bool
	Cause             error
}

func (e *CorruptedArchiveError) Error() string {
	hint := "the file is possibly corrupted or truncated"
	if e.PasswordProtected {
		hint = "the file is possibly password-protected; remove the password and export again"
	}
	if e.Cause != nil {
		return fmt.Sprintf("corrupted archive: %s (%s): %v", e.Message, hint, e.Cause)
	}
	return fmt.Sprintf("corrupted archive: %s (%s)", e.Message, hint)
}

func (e *CorruptedArchiveError) Unwrap() error {
	return e.Cause
}

// MissingPartError indicates a part required by the container type is absent
type MissingPartError struct {
	Part string
}

func (e *MissingPartError) Error() string {
	return fmt.Sprintf("missing required part: %s", e.Part)
}

// UnsupportedFileTypeError indicates the file type is rejected before any decode attempt
type UnsupportedFileTypeError struct {
	Extension string
	Message   string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q: %s", e.Extension, e.Message)
}
