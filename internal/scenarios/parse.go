package scenarios

import (
	"bytes"
	"encoding/json"
	"log"

	"github.com/jonathan/scorm-packager/internal/schemas"
	"github.com/jonathan/scorm-packager/internal/types"
)

// Parse validates raw scenario JSON against the scenario set schema and normalizes it.
// Input may be a bare array of records or an object with a "scenarios" array.
func Parse(data []byte, source string) ([]types.ScenarioItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &EmptyResultError{Source: source}
	}
	if !json.Valid(trimmed) {
		return nil, &ParseError{Message: "input is not valid JSON"}
	}

	if err := schemas.ValidateScenarioSet(trimmed); err != nil {
		return nil, err
	}

	records, err := decodeRecords(trimmed)
	if err != nil {
		return nil, err
	}

	items := NormalizeRecords(records)
	if dropped := len(records) - len(items); dropped > 0 {
		log.Printf("[SCENARIOS] Dropped %d record(s) without question, answer or content", dropped)
	}
	if len(items) == 0 {
		return nil, &EmptyResultError{Source: source}
	}

	return items, nil
}

func decodeRecords(data []byte) ([]map[string]interface{}, error) {
	if data[0] == '[' {
		var records []map[string]interface{}
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, &ParseError{Message: "failed to decode scenario array", Cause: err}
		}
		return records, nil
	}

	var wrapper struct {
		Scenarios []map[string]interface{} `json:"scenarios"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, &ParseError{Message: "failed to decode scenario set", Cause: err}
	}
	return wrapper.Scenarios, nil
}
