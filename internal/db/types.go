package db

import (
	"time"

	"github.com/google/uuid"
)

// Run kinds
const (
	KindSlides    = "slides"
	KindScenarios = "scenarios"
)

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run represents one packaging run
type Run struct {
	ID           uuid.UUID  `json:"id"`
	Kind         string     `json:"kind"`
	SourceName   string     `json:"source_name"`
	SourceHash   string     `json:"source_hash,omitempty"`
	CourseTitle  string     `json:"course_title"`
	ScormVersion string     `json:"scorm_version"`
	Completion   string     `json:"completion"`
	Status       string     `json:"status"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	ItemCount    int        `json:"item_count"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// RunInput holds the fields recorded when a run starts
type RunInput struct {
	Kind         string
	SourceName   string
	SourceHash   string
	CourseTitle  string
	ScormVersion string
	Completion   string
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	Kind   string
	Status string
	Limit  int
}

// ArtifactName constants for JSON artifacts saved per run
const (
	ArtifactPresentation = "presentation"
	ArtifactScenarios    = "scenarios"
	ArtifactMetadata     = "source_metadata"
)

// PackageRecord describes a stored SCORM zip
type PackageRecord struct {
	RunID     uuid.UUID `json:"run_id"`
	FileCount int       `json:"file_count"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
	Zip       []byte    `json:"-"`
}
