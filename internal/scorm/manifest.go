package scorm

import (
	"embed"
	"regexp"
	"strings"
	"text/template"

	"github.com/jonathan/scorm-packager/internal/types"
)

// Files every package contains
const (
	ManifestFile = "imsmanifest.xml"
	LaunchFile   = "index.html"
	RuntimeFile  = "scorm.js"
	StylesFile   = "styles.css"
)

// ContentFiles are the generated files declared by the single SCO resource
var ContentFiles = []string{LaunchFile, RuntimeFile, StylesFile}

//go:embed templates/*
var templateFS embed.FS

var (
	manifestTemplates = map[types.ScormVersion]*template.Template{
		types.Scorm2004: template.Must(template.ParseFS(templateFS, "templates/manifest_2004.xml")),
		types.Scorm12:   template.Must(template.ParseFS(templateFS, "templates/manifest_12.xml")),
	}

	identifierUnsafe = regexp.MustCompile(`[^a-z0-9]+`)
)

type manifestData struct {
	Identifier     string
	OrganizationID string
	ItemID         string
	ResourceID     string
	CourseTitle    string
	LaunchFile     string
	Files          []string
}

// GenerateManifest renders imsmanifest.xml for the settings' SCORM version.
// The course title is inserted verbatim; callers escape XML-reserved characters.
// Output depends only on settings, so identical settings give identical bytes.
func GenerateManifest(settings types.ScormSettings) (string, error) {
	if err := settings.Validate(); err != nil {
		return "", &GenerateError{Artifact: ManifestFile, Message: "invalid settings", Cause: err}
	}

	tmpl, ok := manifestTemplates[settings.Version]
	if !ok {
		return "", &GenerateError{Artifact: ManifestFile, Message: "unsupported version " + string(settings.Version)}
	}

	id := Identifier(settings.CourseTitle)
	data := manifestData{
		Identifier:     id,
		OrganizationID: id + "-org",
		ItemID:         id + "-item",
		ResourceID:     id + "-resource",
		CourseTitle:    settings.CourseTitle,
		LaunchFile:     LaunchFile,
		Files:          ContentFiles,
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", &GenerateError{Artifact: ManifestFile, Message: "template execution failed", Cause: err}
	}
	return sb.String(), nil
}

// Identifier derives a stable XML identifier from a course title
func Identifier(title string) string {
	slug := strings.Trim(identifierUnsafe.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(slug) > 48 {
		slug = strings.TrimRight(slug[:48], "-")
	}
	if slug == "" {
		return "course"
	}
	return "course-" + slug
}
