package scenarios

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/scorm-packager/internal/types"
)

// Canonical field names
const (
	FieldQuestion = "question"
	FieldAnswer   = "answer"
	FieldCategory = "category"
	FieldContent  = "content"
)

// fieldSynonyms maps lower-cased input field names to canonical names
var fieldSynonyms = map[string]string{
	"question": FieldQuestion,
	"query":    FieldQuestion,
	"inquiry":  FieldQuestion,
	"answer":   FieldAnswer,
	"response": FieldAnswer,
	"solution": FieldAnswer,
	"category": FieldCategory,
	"type":     FieldCategory,
	"topic":    FieldCategory,
	"content":  FieldContent,
	"text":     FieldContent,
	"body":     FieldContent,
}

// CanonicalField returns the canonical name for an input field, matched case-insensitively
func CanonicalField(name string) (string, bool) {
	canonical, ok := fieldSynonyms[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}

// NormalizeRecord maps one heterogeneous record to a scenario item.
// When several synonyms of the same field are present, the canonical spelling wins, then the
// alphabetically first synonym, so the result does not depend on map iteration order.
func NormalizeRecord(record map[string]interface{}) types.ScenarioItem {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := isCanonicalSpelling(keys[i]), isCanonicalSpelling(keys[j])
		if ci != cj {
			return ci
		}
		return keys[i] < keys[j]
	})

	values := make(map[string]string, 4)
	for _, k := range keys {
		canonical, ok := CanonicalField(k)
		if !ok {
			continue
		}
		if _, taken := values[canonical]; taken {
			continue
		}
		if v := stringValue(record[k]); v != "" {
			values[canonical] = v
		}
	}

	return types.ScenarioItem{
		Question: values[FieldQuestion],
		Answer:   values[FieldAnswer],
		Category: values[FieldCategory],
		Content:  values[FieldContent],
	}
}

func isCanonicalSpelling(key string) bool {
	switch key {
	case FieldQuestion, FieldAnswer, FieldCategory, FieldContent:
		return true
	}
	return false
}

// stringValue renders scalar JSON values as trimmed text; null becomes empty
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%g", val))
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// NormalizeRecords normalizes every record and drops the ones without usable text
func NormalizeRecords(records []map[string]interface{}) []types.ScenarioItem {
	items := make([]types.ScenarioItem, 0, len(records))
	for _, record := range records {
		item := NormalizeRecord(record)
		if item.IsEmpty() {
			continue
		}
		items = append(items, item)
	}
	return items
}
