// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/scorm-packager/internal/types"
)

// Defaults
const (
	DefaultVersion              = "2004"
	DefaultCompletion           = "last"
	DefaultMaxUploadBytes       = 50 * 1024 * 1024
	DefaultMaxFallbackScenarios = 4
	DefaultMediaWorkers         = 4
	DefaultPort                 = 8080
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	// Package settings
	Version     string `json:"version,omitempty" validate:"omitempty,oneof=1.2 2004"`
	CourseTitle string `json:"course_title,omitempty"`
	Completion  string `json:"completion,omitempty" validate:"omitempty,oneof=last button onLastItem onButton"`
	Template    string `json:"template,omitempty"` // Path to a custom index.html template

	// Limits
	MaxUploadBytes       int64 `json:"max_upload_bytes,omitempty" validate:"gte=0"`
	MaxFallbackScenarios int   `json:"max_fallback_scenarios,omitempty" validate:"gte=0"`
	MediaWorkers         int   `json:"media_workers,omitempty" validate:"gte=0,lte=64"`

	// Services
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	Port        int    `json:"port,omitempty" validate:"gte=0,lte=65535"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Version:              DefaultVersion,
		Completion:           DefaultCompletion,
		MaxUploadBytes:       DefaultMaxUploadBytes,
		MaxFallbackScenarios: DefaultMaxFallbackScenarios,
		MediaWorkers:         DefaultMediaWorkers,
		Port:                 DefaultPort,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are not checked here since CLI flags may still supply them.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Version == "" {
		result.Version = defaults.Version
	}
	if result.CourseTitle == "" {
		result.CourseTitle = defaults.CourseTitle
	}
	if result.Completion == "" {
		result.Completion = defaults.Completion
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}

	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.MaxFallbackScenarios == 0 {
		result.MaxFallbackScenarios = defaults.MaxFallbackScenarios
	}
	if result.MediaWorkers == 0 {
		result.MediaWorkers = defaults.MediaWorkers
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so CLI flags always win

	return result
}

// ApplyEnv fills service settings from the environment when the config leaves them empty:
// DATABASE_URL, GEMINI_API_KEY and PORT.
func (c *Config) ApplyEnv() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Port == 0 {
		if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
			c.Port = port
		}
	}
}

// ScormSettings converts the package fields into validated generator settings.
// An empty course title falls back to fallbackTitle.
func (c *Config) ScormSettings(fallbackTitle string) (types.ScormSettings, error) {
	version, err := types.ParseScormVersion(c.Version)
	if err != nil {
		return types.ScormSettings{}, err
	}
	completion, err := types.ParseCompletionCriteria(c.Completion)
	if err != nil {
		return types.ScormSettings{}, err
	}

	title := c.CourseTitle
	if title == "" {
		title = fallbackTitle
	}

	settings := types.ScormSettings{
		Version:            version,
		CourseTitle:        title,
		CompletionCriteria: completion,
	}
	if err := settings.Validate(); err != nil {
		return types.ScormSettings{}, fmt.Errorf("invalid SCORM settings: %w", err)
	}
	return settings, nil
}
