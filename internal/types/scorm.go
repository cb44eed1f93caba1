//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ScormVersion selects the SCORM edition a package targets
type ScormVersion string

// Supported SCORM versions
const (
	Scorm12   ScormVersion = "1.2"
	Scorm2004 ScormVersion = "2004"
)

// CompletionCriteria decides when the runtime reports the course as completed
type CompletionCriteria string

// Completion criteria
const (
	CompletionOnLastItem CompletionCriteria = "onLastItem"
	CompletionOnButton   CompletionCriteria = "onButton"
)

// ScormSettings is the immutable configuration passed by value into the generators
type ScormSettings struct {
	Version            ScormVersion       `json:"version" validate:"required,oneof=1.2 2004"`
	CourseTitle        string             `json:"course_title" validate:"required,min=1"`
	CompletionCriteria CompletionCriteria `json:"completion_criteria" validate:"required,oneof=onLastItem onButton"`
}

// Validate validates the settings using the validator.
func (s ScormSettings) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// ParseScormVersion accepts the common spellings of the two supported versions
func ParseScormVersion(value string) (ScormVersion, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1.2", "12", "scorm12", "scorm 1.2", "scorm_1.2":
		return Scorm12, nil
	case "2004", "scorm2004", "scorm 2004", "scorm_2004", "2004 3rd edition":
		return Scorm2004, nil
	default:
		return "", fmt.Errorf("unsupported SCORM version %q (expected 1.2 or 2004)", value)
	}
}

// ParseCompletionCriteria accepts the long and short spellings ("onLastItem"/"last", "onButton"/"button")
func ParseCompletionCriteria(value string) (CompletionCriteria, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "onlastitem", "last", "lastitem", "last_item", "":
		return CompletionOnLastItem, nil
	case "onbutton", "button":
		return CompletionOnButton, nil
	default:
		return "", fmt.Errorf("unsupported completion criteria %q (expected onLastItem or onButton)", value)
	}
}

// ScormPackage maps relative file paths to their content
type ScormPackage map[string][]byte

// Paths returns the package paths in sorted order
func (p ScormPackage) Paths() []string {
	paths := make([]string, 0, len(p))
	for path := range p {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// TotalSize returns the sum of all file sizes in bytes
func (p ScormPackage) TotalSize() int {
	total := 0
	for _, content := range p {
		total += len(content)
	}
	return total
}
