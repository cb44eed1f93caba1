package scorm

import (
	"strings"
	"text/template"

	"github.com/jonathan/scorm-packager/internal/types"
)

// MaxParentDepth bounds API discovery through ancestor frames
const MaxParentDepth = 10

// Calls names the runtime API functions of one SCORM edition
type Calls struct {
	Initialize string
	Terminate  string
	GetValue   string
	SetValue   string
	Commit     string
}

// Dialect is the runtime API surface of a SCORM version.
// When SuspendKey is set the location key holds only the unit index and the
// responses go to SuspendKey; otherwise the whole bookmark is stored under LocationKey.
type Dialect struct {
	APIName     string
	StatusKey   string
	LocationKey string
	SuspendKey  string
	Calls       Calls
}

// SCORM 1.2 data model limits
const (
	LessonLocationLimit = 255
	SuspendDataLimit    = 4096
)

var dialects = map[types.ScormVersion]Dialect{
	types.Scorm2004: {
		APIName:     "API_1484_11",
		StatusKey:   "cmi.completion_status",
		LocationKey: "cmi.location",
		Calls: Calls{
			Initialize: "Initialize",
			Terminate:  "Terminate",
			GetValue:   "GetValue",
			SetValue:   "SetValue",
			Commit:     "Commit",
		},
	},
	types.Scorm12: {
		APIName:     "API",
		StatusKey:   "cmi.core.lesson_status",
		LocationKey: "cmi.core.lesson_location",
		SuspendKey:  "cmi.suspend_data",
		Calls: Calls{
			Initialize: "LMSInitialize",
			Terminate:  "LMSFinish",
			GetValue:   "LMSGetValue",
			SetValue:   "LMSSetValue",
			Commit:     "LMSCommit",
		},
	},
}

// DialectFor returns the API surface for a version; unknown versions get the 2004 surface
func DialectFor(version types.ScormVersion) Dialect {
	if d, ok := dialects[version]; ok {
		return d
	}
	return dialects[types.Scorm2004]
}

var runtimeTemplate = template.Must(template.ParseFS(templateFS, "templates/runtime.js"))

type runtimeData struct {
	Dialect
	Version        types.ScormVersion
	Completion     types.CompletionCriteria
	MaxParentDepth int
}

// GenerateRuntime renders scorm.js for the settings' version and completion criteria
func GenerateRuntime(settings types.ScormSettings) (string, error) {
	if err := settings.Validate(); err != nil {
		return "", &GenerateError{Artifact: RuntimeFile, Message: "invalid settings", Cause: err}
	}

	data := runtimeData{
		Dialect:        DialectFor(settings.Version),
		Version:        settings.Version,
		Completion:     settings.CompletionCriteria,
		MaxParentDepth: MaxParentDepth,
	}

	var sb strings.Builder
	if err := runtimeTemplate.Execute(&sb, data); err != nil {
		return "", &GenerateError{Artifact: RuntimeFile, Message: "template execution failed", Cause: err}
	}
	return sb.String(), nil
}
