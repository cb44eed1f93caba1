package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/scorm-packager/internal/config"
	"github.com/jonathan/scorm-packager/internal/db"
	"github.com/jonathan/scorm-packager/internal/packaging"
	"github.com/jonathan/scorm-packager/internal/pptx/pptxtest"
	"github.com/jonathan/scorm-packager/internal/scorm"
	"github.com/jonathan/scorm-packager/internal/server/ratelimit"
	"github.com/jonathan/scorm-packager/internal/types"
)

// memoryStore is an in-memory RunStore
type memoryStore struct {
	mu       sync.Mutex
	runs     map[uuid.UUID]*db.Run
	steps    map[uuid.UUID][]db.RunStep
	warnings map[uuid.UUID][]string
	packages map[uuid.UUID]*db.PackageRecord
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		runs:     map[uuid.UUID]*db.Run{},
		steps:    map[uuid.UUID][]db.RunStep{},
		warnings: map[uuid.UUID][]string{},
		packages: map[uuid.UUID]*db.PackageRecord{},
	}
}

func (m *memoryStore) CreateRun(_ context.Context, input db.RunInput) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.runs[id] = &db.Run{
		ID:           id,
		Kind:         input.Kind,
		SourceName:   input.SourceName,
		CourseTitle:  input.CourseTitle,
		ScormVersion: input.ScormVersion,
		Completion:   input.Completion,
		Status:       db.RunStatusRunning,
		CreatedAt:    time.Now(),
	}
	return id, nil
}

func (m *memoryStore) CompleteRun(_ context.Context, runID uuid.UUID, status string, itemCount int, errorMsg *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run := m.runs[runID]
	run.Status, run.ItemCount, run.ErrorMessage = status, itemCount, errorMsg
	return nil
}

func (m *memoryStore) StartRunStep(_ context.Context, runID uuid.UUID, step string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[runID] = append(m.steps[runID], db.RunStep{RunID: runID, Step: step, Status: db.StepStatusInProgress})
	return nil
}

func (m *memoryStore) FinishRunStep(_ context.Context, runID uuid.UUID, step string, status string, errorMsg *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.steps[runID] {
		if m.steps[runID][i].Step == step {
			m.steps[runID][i].Status = status
			m.steps[runID][i].ErrorMessage = errorMsg
		}
	}
	return nil
}

func (m *memoryStore) SaveArtifact(context.Context, uuid.UUID, string, any) error { return nil }

func (m *memoryStore) SaveWarnings(_ context.Context, runID uuid.UUID, warnings []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings[runID] = warnings
	return nil
}

func (m *memoryStore) SavePackage(_ context.Context, runID uuid.UUID, fileCount int, zip []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packages[runID] = &db.PackageRecord{RunID: runID, FileCount: fileCount, SizeBytes: len(zip), Zip: zip}
	return nil
}

func (m *memoryStore) GetRun(_ context.Context, runID uuid.UUID) (*db.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[runID], nil
}

func (m *memoryStore) ListRuns(_ context.Context, filters db.RunFilters) ([]db.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var runs []db.Run
	for _, run := range m.runs {
		if filters.Kind != "" && run.Kind != filters.Kind {
			continue
		}
		runs = append(runs, *run)
	}
	return runs, nil
}

func (m *memoryStore) ListWarnings(_ context.Context, runID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.warnings[runID], nil
}

func (m *memoryStore) ListRunSteps(_ context.Context, runID uuid.UUID) ([]db.RunStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.steps[runID], nil
}

func (m *memoryStore) GetPackage(_ context.Context, runID uuid.UUID) (*db.PackageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.packages[runID], nil
}

type fakeDrafter struct {
	items []types.ScenarioItem
	err   error
	count int
}

func (d *fakeDrafter) Generate(_ context.Context, _ *types.Presentation, count int) ([]types.ScenarioItem, error) {
	d.count = count
	return d.items, d.err
}

func testServer(t *testing.T, deps dependencies) *Server {
	t.Helper()
	if deps.limits == nil {
		deps.limits = &ratelimit.Config{Enabled: false}
	}
	s := newServer(Config{MediaWorkers: 2}, deps)
	t.Cleanup(s.Close)
	return s
}

func deck() []byte {
	return pptxtest.New().
		Slide(1, pptxtest.TextShape("Welcome", "Agenda"), pptxtest.PictureShape("rId2")).
		Rels(1, pptxtest.Rel{ID: "rId2", Target: "../media/image1.png"}).
		Slide(2, pptxtest.TextShape("Wrap up")).
		Media("image1.png", pptxtest.PNG).
		MustBytes()
}

func uploadRequest(t *testing.T, path, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	s := testServer(t, dependencies{})

	w := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["run_history"])
}

func TestConvertPresentation(t *testing.T) {
	s := testServer(t, dependencies{})
	req := uploadRequest(t, "/convert/presentation", "intro_deck.pptx", deck(), map[string]string{"version": "1.2"})

	w := serve(s, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="intro-deck.zip"`)
	assert.Empty(t, w.Header().Get("X-Run-ID"), "no run id without a store")

	pkg, err := packaging.ReadZip(w.Body.Bytes())
	require.NoError(t, err)
	assert.Contains(t, string(pkg[scorm.ManifestFile]), "<schemaversion>1.2</schemaversion>")
	assert.Contains(t, string(pkg[scorm.ManifestFile]), "intro deck")
	assert.Contains(t, pkg, "media/image1.png")
}

func TestConvertPresentation_Errors(t *testing.T) {
	s := testServer(t, dependencies{})

	tests := []struct {
		name     string
		filename string
		data     []byte
		fields   map[string]string
		want     int
	}{
		{"legacy format", "deck.ppt", deck(), nil, http.StatusUnsupportedMediaType},
		{"not a zip", "deck.pptx", []byte(strings.Repeat("junk", 100)), nil, http.StatusUnprocessableEntity},
		{"bad version", "deck.pptx", deck(), map[string]string{"version": "3"}, http.StatusBadRequest},
		{"bad completion", "deck.pptx", deck(), map[string]string{"completion": "never"}, http.StatusBadRequest},
		{"missing file", "", nil, nil, http.StatusBadRequest},
		{"empty file", "deck.pptx", nil, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(s, uploadRequest(t, "/convert/presentation", tt.filename, tt.data, tt.fields))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.NotEmpty(t, errorBody(t, w))
		})
	}
}

func TestConvertPresentation_TooLarge(t *testing.T) {
	s := newServer(Config{MaxUploadBytes: 512}, dependencies{limits: &ratelimit.Config{Enabled: false}})
	defer s.Close()

	w := serve(s, uploadRequest(t, "/convert/presentation", "deck.pptx", deck(), nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestConvertPresentation_PersistsAndIssuesToken(t *testing.T) {
	store := newMemoryStore()
	tokens := NewDownloadTokenService(&config.DownloadTokenConfig{Secret: "server-test-secret", ExpirationMinutes: 5})
	s := testServer(t, dependencies{store: store, tokens: tokens})

	w := serve(s, uploadRequest(t, "/convert/presentation", "deck.pptx", deck(), nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	runID := w.Header().Get("X-Run-ID")
	token := w.Header().Get("X-Download-Token")
	require.NotEmpty(t, runID)
	require.NotEmpty(t, token)

	id := uuid.MustParse(runID)
	assert.Equal(t, db.RunStatusCompleted, store.runs[id].Status)
	assert.Equal(t, 2, store.runs[id].ItemCount)

	download := serve(s, httptest.NewRequest(http.MethodGet, "/runs/"+runID+"/package?token="+token, nil))
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, w.Body.Bytes(), download.Body.Bytes())

	unauthorized := serve(s, httptest.NewRequest(http.MethodGet, "/runs/"+runID+"/package", nil))
	assert.Equal(t, http.StatusUnauthorized, unauthorized.Code)

	other := serve(s, httptest.NewRequest(http.MethodGet, "/runs/"+uuid.NewString()+"/package?token="+token, nil))
	assert.Equal(t, http.StatusForbidden, other.Code)
}

func TestConvertPresentationStream(t *testing.T) {
	s := testServer(t, dependencies{store: newMemoryStore()})

	w := serve(s, uploadRequest(t, "/convert/presentation/stream", "deck.pptx", deck(), nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "id: 1\nevent: step\n"), body)
	assert.Contains(t, body, `"step":"decode"`)
	assert.Contains(t, body, "event: complete\n")
	assert.Contains(t, body, `"file_count":5`)
	assert.Contains(t, body, `"download_url":"/runs/`)
}

func TestConvertPresentationStream_DecodeErrorIsEvent(t *testing.T) {
	s := testServer(t, dependencies{})

	w := serve(s, uploadRequest(t, "/convert/presentation/stream", "deck.pptx", []byte(strings.Repeat("junk", 100)), nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: error\n")
	assert.Contains(t, w.Body.String(), `"status":422`)
}

func TestConvertScenarios(t *testing.T) {
	s := testServer(t, dependencies{})
	body := `{"scenarios":[{"query":"What is SCORM?","response":"A packaging standard"},{"Question":"Why?","Answer":"LMS"}],
		"settings":{"version":"2004","course_title":"Onboarding","completion":"button"}}`

	w := serve(s, httptest.NewRequest(http.MethodPost, "/convert/scenarios", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pkg, err := packaging.ReadZip(w.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, pkg, 4)
	assert.Contains(t, string(pkg[scorm.ManifestFile]), "Onboarding")
	assert.Contains(t, string(pkg[scorm.LaunchFile]), "What is SCORM?")
}

func TestConvertScenarios_BareArrayUsesDefaults(t *testing.T) {
	s := testServer(t, dependencies{})

	w := serve(s, httptest.NewRequest(http.MethodPost, "/convert/scenarios", strings.NewReader(`[{"content":"Fire exits are marked in green."}]`)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pkg, err := packaging.ReadZip(w.Body.Bytes())
	require.NoError(t, err)
	assert.Contains(t, string(pkg[scorm.ManifestFile]), "Training Scenarios")
}

func TestConvertScenarios_Errors(t *testing.T) {
	s := testServer(t, dependencies{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", `scenarios please`, http.StatusBadRequest},
		{"empty list", `{"scenarios":[]}`, http.StatusBadRequest},
		{"no usable records", `{"scenarios":[{"question":"  "}]}`, http.StatusUnprocessableEntity},
		{"bad settings", `{"scenarios":[{"question":"a","answer":"b"}],"settings":{"version":"9"}}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(s, httptest.NewRequest(http.MethodPost, "/convert/scenarios", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestExtract(t *testing.T) {
	s := testServer(t, dependencies{})

	w := serve(s, uploadRequest(t, "/extract", "deck.pptx", deck(), nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Presentation types.Presentation `json:"presentation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Presentation.SlideCount)
	assert.Equal(t, "Welcome", body.Presentation.Slides[0].Title)
	assert.NotContains(t, w.Body.String(), `"data"`, "image payloads are not serialized")
}

func TestGenerateScenarios(t *testing.T) {
	t.Run("unavailable without a drafter", func(t *testing.T) {
		s := testServer(t, dependencies{})
		w := serve(s, uploadRequest(t, "/generate-scenarios", "deck.pptx", deck(), nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, errorBody(t, w), "GEMINI_API_KEY")
	})

	t.Run("drafts scenarios", func(t *testing.T) {
		drafter := &fakeDrafter{items: []types.ScenarioItem{{Question: "q", Answer: "a"}}}
		s := testServer(t, dependencies{drafter: drafter})

		w := serve(s, uploadRequest(t, "/generate-scenarios", "deck.pptx", deck(), map[string]string{"count": "3"}))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 3, drafter.count)
		var set types.ScenarioSet
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &set))
		assert.Equal(t, drafter.items, set.Scenarios)
	})

	t.Run("bad count", func(t *testing.T) {
		s := testServer(t, dependencies{drafter: &fakeDrafter{}})
		w := serve(s, uploadRequest(t, "/generate-scenarios", "deck.pptx", deck(), map[string]string{"count": "zero"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upstream failure is hidden", func(t *testing.T) {
		s := testServer(t, dependencies{drafter: &fakeDrafter{err: errors.New("quota exceeded for key abc")}})
		w := serve(s, uploadRequest(t, "/generate-scenarios", "deck.pptx", deck(), nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", errorBody(t, w))
	})
}

func TestRuns(t *testing.T) {
	t.Run("unavailable without a database", func(t *testing.T) {
		s := testServer(t, dependencies{})
		for _, path := range []string{"/runs", "/runs/" + uuid.NewString(), "/runs/" + uuid.NewString() + "/package"} {
			w := serve(s, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		}
	})

	store := newMemoryStore()
	s := testServer(t, dependencies{store: store})

	convert := serve(s, uploadRequest(t, "/convert/presentation", "deck.pptx", deck(), nil))
	require.Equal(t, http.StatusOK, convert.Code)
	runID := convert.Header().Get("X-Run-ID")

	t.Run("list", func(t *testing.T) {
		w := serve(s, httptest.NewRequest(http.MethodGet, "/runs?kind=slides", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Runs  []db.Run `json:"runs"`
			Count int      `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Count)
		assert.Equal(t, runID, body.Runs[0].ID.String())
	})

	t.Run("bad limit", func(t *testing.T) {
		w := serve(s, httptest.NewRequest(http.MethodGet, "/runs?limit=-1", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("detail", func(t *testing.T) {
		w := serve(s, httptest.NewRequest(http.MethodGet, "/runs/"+runID, nil))
		require.Equal(t, http.StatusOK, w.Code)
		var detail RunDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
		assert.Equal(t, db.RunStatusCompleted, detail.Status)
		assert.Len(t, detail.Steps, 6)
		assert.NotNil(t, detail.Warnings)
	})

	t.Run("package without tokens configured", func(t *testing.T) {
		w := serve(s, httptest.NewRequest(http.MethodGet, "/runs/"+runID+"/package", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, convert.Body.Bytes(), w.Body.Bytes())
	})

	t.Run("unknown and invalid ids", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(s, httptest.NewRequest(http.MethodGet, "/runs/"+uuid.NewString(), nil)).Code)
		assert.Equal(t, http.StatusNotFound, serve(s, httptest.NewRequest(http.MethodGet, "/runs/"+uuid.NewString()+"/package", nil)).Code)
		assert.Equal(t, http.StatusBadRequest, serve(s, httptest.NewRequest(http.MethodGet, "/runs/nope", nil)).Code)
	})
}

func TestRateLimit(t *testing.T) {
	s := testServer(t, dependencies{limits: &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/extract", Method: http.MethodPost, Limit: 1, Window: time.Hour, Burst: 1},
		},
	}})

	first := serve(s, uploadRequest(t, "/extract", "deck.pptx", deck(), nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := serve(s, uploadRequest(t, "/extract", "deck.pptx", deck(), nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	health := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := testServer(t, dependencies{})

	w := serve(s, httptest.NewRequest(http.MethodOptions, "/convert/presentation", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Download-Token")
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "quarterly review", titleFromFilename("/tmp/quarterly_review.pptx"))
	assert.Equal(t, "Course", titleFromFilename(".pptx"))
	assert.Equal(t, "Safety-101-Basics", packageFileName("Safety 101: Basics"))
	assert.Equal(t, "scorm-package", packageFileName("???"))
	assert.Equal(t, "b", firstNonEmpty("", "  ", "b", "c"))
}
