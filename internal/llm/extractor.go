package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/scorm-packager/internal/prompts"
	"github.com/jonathan/scorm-packager/internal/types"
)

// ExtractionSchema describes one structured-output request: what to do, the JSON shape
// to answer with (as an example value), and rules listed before the input.
type ExtractionSchema struct {
	Name        string
	Description string
	Example     any
	Rules       []string
}

// BuildExtractionPrompt renders schema followed by the input wrapped in <input> tags.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) (string, error) {
	example, err := json.MarshalIndent(schema.Example, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s example: %w", schema.Name, err)
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(schema.Description))
	sb.WriteString("\n\nAnswer with JSON shaped like this example:\n")
	sb.Write(example)
	sb.WriteString("\n\nRules:\n")
	for i, rule := range schema.Rules {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, rule)
	}
	fmt.Fprintf(&sb, "%d. Return only the JSON, without markdown or commentary.\n\n", len(schema.Rules)+1)

	sb.WriteString("<input>\n")
	sb.WriteString(strings.TrimSpace(inputText))
	sb.WriteString("\n</input>\n")
	return sb.String(), nil
}

// ScenarioSchema returns the extraction schema for drafting count training scenarios.
func ScenarioSchema(count int) ExtractionSchema {
	rules, err := prompts.Lines(prompts.Scenarios, "draft-scenarios-rules")
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	rules = append(rules, prompts.MustGet(prompts.Scenarios, "draft-scenarios-field"))

	return ExtractionSchema{
		Name: "TrainingScenarios",
		Description: prompts.Format(prompts.MustGet(prompts.Scenarios, "draft-scenarios"), map[string]string{
			"Count": strconv.Itoa(count),
		}),
		Example: types.ScenarioSet{Scenarios: []types.ScenarioItem{{
			Question: "A visitor asks to borrow your badge to reach the lab. What do you do?",
			Answer:   "Decline and escort them to reception to get a visitor pass.",
			Category: "Site access",
		}}},
		Rules: rules,
	}
}
