package scenarios

import (
	"log"
	"regexp"
	"strings"

	"github.com/jonathan/scorm-packager/internal/ingestion"
	"github.com/jonathan/scorm-packager/internal/types"
)

// DefaultFallbackLimit caps scenarios recovered from free text when no limit is configured
const DefaultFallbackLimit = 4

var (
	questionLine = regexp.MustCompile(`(?i)^(?:\d+[.)]\s*)?(?:\*\*)?(?:question|query|inquiry|scenario|q)\s*\d*\s*(?:\*\*)?\s*[:.)-]\s*(?:\*\*)?\s*(.*)$`)
	answerLine   = regexp.MustCompile(`(?i)^(?:\*\*)?(?:answer|response|solution|a)\s*\d*\s*(?:\*\*)?\s*[:.)-]\s*(?:\*\*)?\s*(.*)$`)
	listMarker   = regexp.MustCompile(`^(?:#+\s*|[-*•·]\s+|\d+[.)]\s+)`)
)

// FromText recovers scenarios from free-text model output that was not valid JSON.
// Explicit "Question:"/"Answer:" lines are paired first; otherwise each blank-line separated
// block becomes one scenario whose first line is the question. At most limit items are returned.
func FromText(text string, limit int) []types.ScenarioItem {
	if limit <= 0 {
		limit = DefaultFallbackLimit
	}

	cleaned := ingestion.CleanText(text)
	if cleaned == "" {
		return []types.ScenarioItem{}
	}

	items := pairedItems(cleaned)
	if len(items) == 0 {
		items = blockItems(cleaned)
	}

	if len(items) > limit {
		log.Printf("[SCENARIOS] Free-text fallback produced %d scenarios, keeping the first %d", len(items), limit)
		items = items[:limit]
	}
	return items
}

// pairedItems collects labelled question/answer lines; unlabelled lines continue the current field
func pairedItems(text string) []types.ScenarioItem {
	var items []types.ScenarioItem
	var current *types.ScenarioItem
	inAnswer := false

	flush := func() {
		if current != nil && current.Question != "" {
			items = append(items, *current)
		}
		current = nil
		inAnswer = false
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := questionLine.FindStringSubmatch(line); m != nil {
			flush()
			current = &types.ScenarioItem{Question: strings.TrimSpace(m[1])}
			continue
		}
		if current == nil {
			continue
		}
		if m := answerLine.FindStringSubmatch(line); m != nil {
			current.Answer = joinText(current.Answer, m[1])
			inAnswer = true
			continue
		}
		if inAnswer {
			current.Answer = joinText(current.Answer, line)
		} else {
			current.Question = joinText(current.Question, line)
		}
	}
	flush()

	return items
}

func blockItems(text string) []types.ScenarioItem {
	var items []types.ScenarioItem
	for _, block := range strings.Split(text, "\n\n") {
		var lines []string
		for _, raw := range strings.Split(block, "\n") {
			line := strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(raw), ""))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}
		items = append(items, types.ScenarioItem{
			Question: lines[0],
			Answer:   strings.Join(lines[1:], " "),
		})
	}
	return items
}

func joinText(existing, addition string) string {
	addition = strings.TrimSpace(addition)
	switch {
	case addition == "":
		return existing
	case existing == "":
		return addition
	default:
		return existing + " " + addition
	}
}
