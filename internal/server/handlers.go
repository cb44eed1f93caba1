package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/scorm-packager/internal/config"
	"github.com/jonathan/scorm-packager/internal/db"
	"github.com/jonathan/scorm-packager/internal/ingestion"
	"github.com/jonathan/scorm-packager/internal/llm"
	"github.com/jonathan/scorm-packager/internal/pipeline"
	"github.com/jonathan/scorm-packager/internal/pptx"
	"github.com/jonathan/scorm-packager/internal/scenarios"
	"github.com/jonathan/scorm-packager/internal/schemas"
	"github.com/jonathan/scorm-packager/internal/types"
	schemafiles "github.com/jonathan/scorm-packager/schemas"
)

// multipartMemory is how much of a multipart form is held in memory before spilling to disk
const multipartMemory = 8 << 20

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SettingsRequest carries package settings in JSON bodies
type SettingsRequest struct {
	Version     string `json:"version"`
	CourseTitle string `json:"course_title"`
	Completion  string `json:"completion"`
}

// ConvertScenariosRequest is the body of POST /convert/scenarios.
// The scenarios field accepts any record shape the scenario parser does.
type ConvertScenariosRequest struct {
	Settings SettingsRequest `json:"settings"`
}

// PackageSummary describes a finished package in JSON responses
type PackageSummary struct {
	RunID         string   `json:"run_id,omitempty"`
	Status        string   `json:"status"`
	FileCount     int      `json:"file_count"`
	SizeBytes     int      `json:"size_bytes"`
	Warnings      []string `json:"warnings"`
	DownloadToken string   `json:"download_token,omitempty"`
	DownloadURL   string   `json:"download_url,omitempty"`
}

// RunDetail is the response of GET /runs/{id}
type RunDetail struct {
	db.Run
	Steps    []db.RunStep `json:"steps"`
	Warnings []string     `json:"warnings"`
}

// handleConvertPresentation packages an uploaded presentation and returns the zip
func (s *Server) handleConvertPresentation(w http.ResponseWriter, r *http.Request) {
	data, meta, err := s.readPresentation(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	settings, err := s.settings(formSettings(r), titleFromFilename(meta.Filename))
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := pipeline.PackageSlides(r.Context(), data, meta, s.pipelineOptions(settings, nil))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writePackage(w, result)
}

// handleConvertPresentationStream packages an upload and reports progress as Server-Sent Events
func (s *Server) handleConvertPresentationStream(w http.ResponseWriter, r *http.Request) {
	data, meta, err := s.readPresentation(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	settings, err := s.settings(formSettings(r), titleFromFilename(meta.Filename))
	if err != nil {
		s.writeError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	onProgress := func(event pipeline.ProgressEvent) {
		if err := sse.WriteStep(event); err != nil {
			log.Printf("[SERVER] Warning: failed to write progress event: %v", err)
		}
	}

	result, err := pipeline.PackageSlides(r.Context(), data, meta, s.pipelineOptions(settings, onProgress))
	if err != nil {
		sse.WriteError(err)
		return
	}

	sse.WriteComplete(s.summarize(result))
}

// handleConvertScenarios packages scenarios posted as JSON
func (s *Server) handleConvertScenarios(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		s.writeError(w, uploadError(err, s.cfg.MaxUploadBytes))
		return
	}

	var req ConvertScenariosRequest
	if len(strings.TrimSpace(string(body))) > 0 && body[0] == '{' {
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, &scenarios.ParseError{Message: "invalid request body", Cause: err})
			return
		}
	}

	items, err := scenarios.Parse(body, "request body")
	if err != nil {
		s.writeError(w, err)
		return
	}

	settings, err := s.settings(req.Settings, "Training Scenarios")
	if err != nil {
		s.writeError(w, err)
		return
	}

	meta := ingestion.NewMetadata(body, "scenarios.json")
	result, err := pipeline.PackageScenarios(r.Context(), items, meta, s.pipelineOptions(settings, nil))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writePackage(w, result)
}

// handleExtract decodes an upload and returns the slide model without image payloads
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	data, meta, err := s.readPresentation(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	presentation, err := pptx.Decode(r.Context(), data, meta.Filename, pptx.Options{MediaWorkers: s.cfg.MediaWorkers})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"metadata":     meta,
		"presentation": presentation,
	})
}

// handleGenerateScenarios drafts scenarios from the text of an uploaded presentation
func (s *Server) handleGenerateScenarios(w http.ResponseWriter, r *http.Request) {
	if s.drafter == nil {
		s.writeError(w, &ErrUnavailable{Feature: "scenario generation", Reason: "GEMINI_API_KEY is not set"})
		return
	}

	data, meta, err := s.readPresentation(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	count := llm.DefaultScenarioCount
	if raw := r.FormValue("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			s.writeError(w, &ErrValidation{Field: "count", Message: "must be an integer between 1 and 50"})
			return
		}
		count = n
	}

	presentation, err := pptx.Decode(r.Context(), data, meta.Filename, pptx.Options{MediaWorkers: s.cfg.MediaWorkers})
	if err != nil {
		s.writeError(w, err)
		return
	}

	items, err := s.drafter.Generate(r.Context(), presentation, count)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.ScenarioSet{Scenarios: items})
}

// handleListRuns lists recent runs, optionally filtered by kind and status
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errNoHistory)
		return
	}

	filters := db.RunFilters{
		Kind:   r.URL.Query().Get("kind"),
		Status: r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			s.writeError(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		filters.Limit = limit
	}

	runs, err := s.store.ListRuns(r.Context(), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

// handleGetRun returns a run with its steps and warnings
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errNoHistory)
		return
	}

	runID, err := parseRunID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if run == nil {
		s.writeError(w, fmt.Errorf("run %s: %w", runID, db.ErrNotFound))
		return
	}

	steps, err := s.store.ListRunSteps(r.Context(), runID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	warnings, err := s.store.ListWarnings(r.Context(), runID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if steps == nil {
		steps = []db.RunStep{}
	}
	if warnings == nil {
		warnings = []string{}
	}

	s.jsonResponse(w, http.StatusOK, RunDetail{Run: *run, Steps: steps, Warnings: warnings})
}

// handleRunPackage streams a stored package zip
func (s *Server) handleRunPackage(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errNoHistory)
		return
	}

	runID, err := parseRunID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	record, err := s.store.GetPackage(r.Context(), runID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if record == nil {
		s.writeError(w, fmt.Errorf("package for run %s: %w", runID, db.ErrNotFound))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="scorm-%s.zip"`, runID))
	w.Header().Set("Content-Length", strconv.Itoa(len(record.Zip)))
	if _, err := w.Write(record.Zip); err != nil {
		log.Printf("[SERVER] Warning: failed to write package: %v", err)
	}
}

var errNoHistory = &ErrUnavailable{Feature: "run history", Reason: "DATABASE_URL is not set"}

// readPresentation reads the multipart "file" field under the upload limit
func (s *Server) readPresentation(w http.ResponseWriter, r *http.Request) ([]byte, *ingestion.Metadata, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, nil, uploadError(err, s.cfg.MaxUploadBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, &ErrValidation{Field: "file", Message: "a presentation upload is required"}
		}
		return nil, nil, uploadError(err, s.cfg.MaxUploadBytes)
	}
	defer func(f multipart.File) {
		_ = f.Close()
	}(file)

	return ingestion.ReadPresentation(file, header.Filename, s.cfg.MaxUploadBytes)
}

// uploadError turns body read failures into typed errors
func uploadError(err error, limit int64) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) || strings.Contains(err.Error(), "request body too large") {
		return &ingestion.TooLargeError{Limit: limit}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

func formSettings(r *http.Request) SettingsRequest {
	return SettingsRequest{
		Version:     r.FormValue("version"),
		CourseTitle: r.FormValue("course_title"),
		Completion:  r.FormValue("completion"),
	}
}

// settings resolves request settings against the server defaults and the settings schema
func (s *Server) settings(req SettingsRequest, fallbackTitle string) (types.ScormSettings, error) {
	resolved := SettingsRequest{
		Version:     firstNonEmpty(req.Version, s.cfg.DefaultVersion, config.DefaultVersion),
		CourseTitle: firstNonEmpty(req.CourseTitle, fallbackTitle),
		Completion:  firstNonEmpty(req.Completion, s.cfg.DefaultCompletion, config.DefaultCompletion),
	}
	if err := schemas.ValidateGoValue(schemafiles.ScormSettings, resolved); err != nil {
		return types.ScormSettings{}, err
	}

	c := config.Config{Version: resolved.Version, CourseTitle: resolved.CourseTitle, Completion: resolved.Completion}
	settings, err := c.ScormSettings(fallbackTitle)
	if err != nil {
		return types.ScormSettings{}, &ErrValidation{Field: "settings", Message: err.Error()}
	}
	return settings, nil
}

func (s *Server) pipelineOptions(settings types.ScormSettings, onProgress pipeline.ProgressCallback) pipeline.Options {
	opts := pipeline.Options{
		Settings:     settings,
		TemplatePath: s.cfg.TemplatePath,
		MediaWorkers: s.cfg.MediaWorkers,
		OnProgress:   onProgress,
	}
	if s.store != nil {
		opts.Store = s.store
	}
	return opts
}

// summarize describes a result and issues a download token for persisted runs
func (s *Server) summarize(result *pipeline.Result) PackageSummary {
	summary := PackageSummary{
		Status:    db.RunStatusCompleted,
		FileCount: len(result.Package),
		SizeBytes: len(result.Zip),
		Warnings:  result.Warnings,
	}
	if summary.Warnings == nil {
		summary.Warnings = []string{}
	}
	if result.RunID == uuid.Nil {
		return summary
	}

	summary.RunID = result.RunID.String()
	summary.DownloadURL = "/runs/" + summary.RunID + "/package"
	if s.tokens != nil {
		token, _, err := s.tokens.GenerateToken(result.RunID)
		if err != nil {
			log.Printf("[SERVER] Warning: failed to issue download token: %v", err)
			return summary
		}
		summary.DownloadToken = token
		summary.DownloadURL += "?token=" + token
	}
	return summary
}

// writePackage sends the zip with run headers
func (s *Server) writePackage(w http.ResponseWriter, result *pipeline.Result) {
	summary := s.summarize(result)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, packageFileName(result.Settings.CourseTitle)))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Zip)))
	w.Header().Set("X-Warning-Count", strconv.Itoa(len(summary.Warnings)))
	if summary.RunID != "" {
		w.Header().Set("X-Run-ID", summary.RunID)
	}
	if summary.DownloadToken != "" {
		w.Header().Set("X-Download-Token", summary.DownloadToken)
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Zip); err != nil {
		log.Printf("[SERVER] Warning: failed to write package: %v", err)
	}
}

func parseRunID(r *http.Request) (uuid.UUID, error) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "run ID must be a UUID"}
	}
	return runID, nil
}

// titleFromFilename derives a course title from an upload name
func titleFromFilename(name string) string {
	base := filepath.Base(name)
	title := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	title = strings.NewReplacer("_", " ", "-", " ").Replace(title)
	if title == "" || title == "." {
		return "Course"
	}
	return title
}

// packageFileName returns a header-safe zip name for a course title
func packageFileName(title string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(title, "-"), "-.")
	if name == "" {
		return "scorm-package"
	}
	return name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
