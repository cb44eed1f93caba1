// Package rendering produces the HTML course page and stylesheet for a SCORM package.
package rendering

import "fmt"

// TemplateError reports a course page template that could not be read, parsed or executed.
// Path is empty for the built-in template.
type TemplateError struct {
	Path  string
	Stage string
	Cause error
}

func (e *TemplateError) Error() string {
	name := e.Path
	if name == "" {
		name = "built-in"
	}
	return fmt.Sprintf("template error: cannot %s %s page: %v", e.Stage, name, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// NoUnitsError is returned when there is nothing to put on the course page
type NoUnitsError struct {
	Source string
}

func (e *NoUnitsError) Error() string {
	return fmt.Sprintf("render error: %s has no units to render", e.Source)
}
