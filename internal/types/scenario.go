//nolint:revive // types is a standard Go package name pattern
package types

// ScenarioItem is a normalized scenario record.
// Question/Answer items are comprehension scenarios; Content items come from knowledge-base input.
type ScenarioItem struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Category string `json:"category,omitempty"`
	Content  string `json:"content,omitempty"`
}

// IsKnowledge reports whether the item is in knowledge-base form
func (s ScenarioItem) IsKnowledge() bool {
	return s.Question == "" && s.Answer == "" && s.Content != ""
}

// IsEmpty reports whether the item carries no usable text
func (s ScenarioItem) IsEmpty() bool {
	return s.Question == "" && s.Answer == "" && s.Content == ""
}

// ScenarioSet wraps scenarios as they appear in request bodies and files
type ScenarioSet struct {
	Scenarios []ScenarioItem `json:"scenarios"`
}
