// Package schemas provides JSON Schema validation for scenario input and generated artifacts.
package schemas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	schemafiles "github.com/jonathan/scorm-packager/schemas"
)

// FieldError is one schema violation. Field is "(root)" for the document itself.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError reports a schema that is missing or not a valid JSON Schema
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// DocumentError reports a document that could not be read as JSON
type DocumentError struct {
	Name  string
	Cause error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("cannot validate %s: %v", e.Name, e.Cause)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

var (
	embeddedMu sync.Mutex
	embedded   = map[string]*gojsonschema.Schema{}
)

// compiledEmbedded compiles an embedded schema once per process
func compiledEmbedded(name string) (*gojsonschema.Schema, error) {
	embeddedMu.Lock()
	defer embeddedMu.Unlock()

	if schema, ok := embedded[name]; ok {
		return schema, nil
	}

	content, err := schemafiles.Load(name)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "embedded schema not found", Cause: err}
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(content))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "invalid schema", Cause: err}
	}
	embedded[name] = schema
	return schema, nil
}

// ResolveSchemaPath finds a schema file in the working directory or up to two parents.
// Returns "" when none exists.
func ResolveSchemaPath(relativePath string) string {
	for _, candidate := range []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	} {
		absPath, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if _, err := os.Stat(absPath); err == nil {
			return absPath
		}
	}
	return ""
}

// IsEmbedded reports whether name is one of the built-in schemas
func IsEmbedded(name string) bool {
	for _, embeddedName := range schemafiles.Names() {
		if name == embeddedName {
			return true
		}
	}
	return false
}

// ValidateJSON validates a JSON file against a JSON Schema file
func ValidateJSON(schemaPath, jsonPath string) error {
	schemaContent, err := os.ReadFile(schemaPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("schema file not found: %s", schemaPath)
		}
		return &SchemaLoadError{Path: schemaPath, Message: "unreadable", Cause: err}
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaContent))
	if err != nil {
		return &SchemaLoadError{Path: schemaPath, Message: "invalid schema", Cause: err}
	}

	document, err := os.ReadFile(jsonPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("JSON file not found: %s", jsonPath)
		}
		return fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}
	return check(schema, filepath.Base(jsonPath), gojsonschema.NewBytesLoader(document))
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaContent))
	if err != nil {
		return &SchemaLoadError{Path: "(string schema)", Message: "invalid schema", Cause: err}
	}
	return check(schema, "(string document)", gojsonschema.NewStringLoader(jsonContent))
}

// ValidateEmbedded validates a JSON document against one of the schemas compiled into the binary
func ValidateEmbedded(schemaName string, document []byte) error {
	schema, err := compiledEmbedded(schemaName)
	if err != nil {
		return err
	}
	return check(schema, "document", gojsonschema.NewBytesLoader(document))
}

// ValidateScenarioSet validates raw scenario input before normalization
func ValidateScenarioSet(document []byte) error {
	return ValidateEmbedded(schemafiles.ScenarioSet, document)
}

// ValidateGoValue validates any JSON-serializable value against an embedded schema
func ValidateGoValue(schemaName string, value any) error {
	schema, err := compiledEmbedded(schemaName)
	if err != nil {
		return err
	}
	return check(schema, fmt.Sprintf("%T", value), gojsonschema.NewGoLoader(value))
}

func check(schema *gojsonschema.Schema, name string, document gojsonschema.JSONLoader) error {
	result, err := schema.Validate(document)
	if err != nil {
		return &DocumentError{Name: name, Cause: err}
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return validationErr
}
