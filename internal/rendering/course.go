package rendering

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path"
	"strings"

	"github.com/jonathan/scorm-packager/internal/types"
)

// Unit kinds
const (
	KindSlide     = "slide"
	KindScenario  = "scenario"
	KindKnowledge = "knowledge"
)

// MediaDir is the package directory holding embedded slide images
const MediaDir = "media/"

const defaultResponsePrompt = "How confident are you with this topic?"

var defaultRatingScale = []int{1, 2, 3, 4, 5}

//go:embed templates/index.html templates/styles.css
var templateFS embed.FS

// Content is the rendered course page with the media it references
type Content struct {
	IndexHTML string
	Styles    string
	// Media maps package paths (media/<name>) to image bytes
	Media map[string][]byte
}

// TemplateData is the data passed to the course page template
type TemplateData struct {
	CourseTitle        string
	Completion         types.CompletionCriteria
	Kind               string
	Units              []Unit
	GateNext           bool
	ShowCompleteButton bool
	ResponsePrompt     string
	RatingScale        []int
}

// Unit is one navigable block of the course page; Index is zero-based
type Unit struct {
	Index    int
	Kind     string
	Title    string
	Category string
	Lines    []string
	Answer   string
	Images   []Image
	Visuals  []string
	Response bool
	Failed   bool
}

// Image is an img element pointing into the package media directory
type Image struct {
	Src string
	Alt string
}

// MediaPath maps a container media path to its package path
func MediaPath(resourcePath string) string {
	return MediaDir + path.Base(resourcePath)
}

// Styles returns the course stylesheet
func Styles() string {
	data, err := templateFS.ReadFile("templates/styles.css")
	if err != nil {
		return ""
	}
	return string(data)
}

// RenderSlides renders one unit per slide. Slide images are returned in Content.Media.
// An empty templatePath uses the built-in page.
func RenderSlides(p *types.Presentation, settings types.ScormSettings, templatePath string) (*Content, error) {
	if p == nil || len(p.Slides) == 0 {
		return nil, &NoUnitsError{Source: "presentation"}
	}

	onButton := settings.CompletionCriteria == types.CompletionOnButton
	media := make(map[string][]byte)
	units := make([]Unit, 0, len(p.Slides))

	for i, slide := range p.Slides {
		unit := Unit{
			Index:    i,
			Kind:     KindSlide,
			Title:    slide.Title,
			Lines:    bodyLines(slide.Title, slide.ContentLines),
			Response: onButton,
			Failed:   slide.Failed,
		}

		for _, img := range slide.Images {
			src := MediaPath(img.Path)
			media[src] = img.Data
			unit.Images = append(unit.Images, Image{Src: src, Alt: slide.Title})
		}

		for _, v := range slide.VisualElements {
			if v != types.VisualImage && !containsString(unit.Visuals, string(v)) {
				unit.Visuals = append(unit.Visuals, string(v))
			}
		}

		units = append(units, unit)
	}

	html, err := render(templatePath, newTemplateData(settings, KindSlide, units))
	if err != nil {
		return nil, err
	}

	return &Content{IndexHTML: html, Styles: Styles(), Media: media}, nil
}

// RenderScenarios renders one unit per scenario; every unit carries a response form
func RenderScenarios(items []types.ScenarioItem, settings types.ScormSettings, templatePath string) (*Content, error) {
	if len(items) == 0 {
		return nil, &NoUnitsError{Source: "scenario set"}
	}

	units := make([]Unit, 0, len(items))
	for i, item := range items {
		unit := Unit{
			Index:    i,
			Category: item.Category,
			Response: true,
		}
		if item.IsKnowledge() {
			unit.Kind = KindKnowledge
			unit.Title = item.Category
			if unit.Title == "" {
				unit.Title = fmt.Sprintf("Key point %d", i+1)
			}
			unit.Category = ""
			unit.Lines = splitParagraphs(item.Content)
		} else {
			unit.Kind = KindScenario
			unit.Title = item.Question
			if unit.Title == "" {
				unit.Title = fmt.Sprintf("Scenario %d", i+1)
			}
			unit.Answer = item.Answer
		}
		units = append(units, unit)
	}

	html, err := render(templatePath, newTemplateData(settings, KindScenario, units))
	if err != nil {
		return nil, err
	}

	return &Content{IndexHTML: html, Styles: Styles(), Media: map[string][]byte{}}, nil
}

func newTemplateData(settings types.ScormSettings, kind string, units []Unit) *TemplateData {
	onButton := settings.CompletionCriteria == types.CompletionOnButton
	return &TemplateData{
		CourseTitle:        settings.CourseTitle,
		Completion:         settings.CompletionCriteria,
		Kind:               kind,
		Units:              units,
		GateNext:           onButton && len(units) > 0 && units[0].Response,
		ShowCompleteButton: onButton,
		ResponsePrompt:     defaultResponsePrompt,
		RatingScale:        defaultRatingScale,
	}
}

func render(templatePath string, data *TemplateData) (string, error) {
	tmpl, err := parseTemplate(templatePath)
	if err != nil {
		return "", err
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return "", &TemplateError{Path: templatePath, Stage: "execute", Cause: err}
	}
	return result.String(), nil
}

// parseTemplate reads a course page template from disk, or the built-in one when path is empty
func parseTemplate(templatePath string) (*template.Template, error) {
	var content []byte
	var err error

	if templatePath == "" {
		content, err = templateFS.ReadFile("templates/index.html")
		if err != nil {
			return nil, &TemplateError{Stage: "read", Cause: err}
		}
	} else {
		content, err = os.ReadFile(templatePath)
		if err != nil {
			return nil, &TemplateError{Path: templatePath, Stage: "read", Cause: err}
		}
	}

	tmpl, err := template.New("index").Parse(string(content))
	if err != nil {
		return nil, &TemplateError{Path: templatePath, Stage: "parse", Cause: err}
	}

	return tmpl, nil
}

// bodyLines drops the first line when it repeats the title
func bodyLines(title string, lines []string) []string {
	if len(lines) > 0 && lines[0] == title {
		return append([]string{}, lines[1:]...)
	}
	return append([]string{}, lines...)
}

func splitParagraphs(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
