package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/scorm-packager/internal/types"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"version": "1.2",
		"course_title": "Fire Safety",
		"completion": "button",
		"max_fallback_scenarios": 6,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "1.2", cfg.Version)
	assert.Equal(t, "Fire Safety", cfg.CourseTitle)
	assert.Equal(t, "button", cfg.Completion)
	assert.Equal(t, 6, cfg.MaxFallbackScenarios)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Version: "2004", Completion: "last", MediaWorkers: 8}, ""},
		{"empty is valid", Config{}, ""},
		{"unknown version", Config{Version: "1.3"}, "Version"},
		{"unknown completion", Config{Completion: "whenever"}, "Completion"},
		{"negative upload limit", Config{MaxUploadBytes: -1}, "MaxUploadBytes"},
		{"too many workers", Config{MediaWorkers: 65}, "MediaWorkers"},
		{"missing template", Config{Template: "/nonexistent/index.html"}, "template file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		Version:     "1.2",
		CourseTitle: "Custom",
	}

	merged := partial.MergeWithDefaults(Defaults())

	assert.Equal(t, "1.2", merged.Version)
	assert.Equal(t, "Custom", merged.CourseTitle)
	assert.Equal(t, DefaultCompletion, merged.Completion)
	assert.Equal(t, int64(DefaultMaxUploadBytes), merged.MaxUploadBytes)
	assert.Equal(t, DefaultMaxFallbackScenarios, merged.MaxFallbackScenarios)
	assert.Equal(t, DefaultMediaWorkers, merged.MediaWorkers)
	assert.Equal(t, DefaultPort, merged.Port)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{CourseTitle: "Test"}
	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "Test", merged.CourseTitle)
	assert.Empty(t, merged.Version)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("PORT", "9090")

	cfg := Config{APIKey: "file-key"}
	cfg.ApplyEnv()

	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, "file-key", cfg.APIKey, "file values win over the environment")
	assert.Equal(t, 9090, cfg.Port)
}

func TestScormSettings(t *testing.T) {
	cfg := Config{Version: "1.2", Completion: "last"}

	settings, err := cfg.ScormSettings("deck")
	require.NoError(t, err)
	assert.Equal(t, types.ScormSettings{
		Version:            types.Scorm12,
		CourseTitle:        "deck",
		CompletionCriteria: types.CompletionOnLastItem,
	}, settings)

	cfg.Version = "3"
	_, err = cfg.ScormSettings("deck")
	assert.Error(t, err)

	cfg = Config{Version: "2004"}
	_, err = cfg.ScormSettings("")
	assert.Error(t, err, "a title is required")
}
