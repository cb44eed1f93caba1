package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/scorm-packager/internal/scenarios"
	"github.com/jonathan/scorm-packager/internal/types"
)

// DefaultScenarioCount is how many scenarios are requested when the caller does not say
const DefaultScenarioCount = 6

// ScenarioGenerator drafts training scenarios from presentation text
type ScenarioGenerator struct {
	client        Client
	fallbackLimit int
}

// NewScenarioGenerator wraps client. fallbackLimit caps the scenarios recovered from
// responses that are not valid scenario JSON; zero uses scenarios.DefaultFallbackLimit.
func NewScenarioGenerator(client Client, fallbackLimit int) *ScenarioGenerator {
	if fallbackLimit <= 0 {
		fallbackLimit = scenarios.DefaultFallbackLimit
	}
	return &ScenarioGenerator{client: client, fallbackLimit: fallbackLimit}
}

// Generate asks the model for count scenarios covering the presentation.
// A response that does not parse as scenario JSON falls back to free-text recovery.
func (g *ScenarioGenerator) Generate(ctx context.Context, presentation *types.Presentation, count int) ([]types.ScenarioItem, error) {
	if presentation == nil {
		return nil, fmt.Errorf("presentation is nil")
	}
	if count <= 0 {
		count = DefaultScenarioCount
	}

	text := PresentationText(presentation)
	if strings.TrimSpace(text) == "" {
		return nil, &scenarios.EmptyResultError{Source: presentation.SourceName}
	}

	prompt, err := BuildExtractionPrompt(ScenarioSchema(count), text)
	if err != nil {
		return nil, err
	}
	tier := TierForText(len(text))
	log.Printf("[LLM] Requesting %d scenarios from %s (%d chars of slide text)", count, g.client.GetModel(tier), len(text))

	response, err := g.client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return nil, fmt.Errorf("scenario generation failed: %w", err)
	}

	items, err := scenarios.Parse([]byte(response), "model response")
	if err == nil {
		return items, nil
	}

	log.Printf("[LLM] Response is not scenario JSON (%v); recovering from free text", err)
	items = scenarios.FromText(response, g.fallbackLimit)
	if len(items) == 0 {
		return nil, &scenarios.EmptyResultError{Source: "model response"}
	}
	return items, nil
}

// PresentationText flattens slides into the plain-text form sent to the model.
// Placeholder slides are skipped.
func PresentationText(presentation *types.Presentation) string {
	var sb strings.Builder
	for _, slide := range presentation.Slides {
		if slide.Failed {
			continue
		}
		if slide.Title == "" && len(slide.ContentLines) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("Slide %d: %s\n", slide.Index, slide.Title))
		for _, line := range slide.ContentLines {
			sb.WriteString("- " + line + "\n")
		}
	}
	return sb.String()
}
