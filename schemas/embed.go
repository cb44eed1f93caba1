// Package schemas holds the JSON Schemas for scenario input, SCORM settings and extracted presentations.
package schemas

import "embed"

// Schema file names
const (
	ScenarioSet   = "scenario_set.schema.json"
	ScormSettings = "scorm_settings.schema.json"
	Presentation  = "presentation.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Load returns the raw content of an embedded schema
func Load(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists the embedded schema files
func Names() []string {
	return []string{ScenarioSet, ScormSettings, Presentation}
}
