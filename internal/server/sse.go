package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/scorm-packager/internal/pipeline"
)

// Event names on the conversion stream
const (
	eventStep     = "step"
	eventError    = "error"
	eventComplete = "complete"
)

// SSEWriter writes a conversion run as Server-Sent Events. Events carry increasing ids.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// NewSSEWriter sets the event-stream headers. It fails when w cannot flush.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher, nextID: 1}, nil
}

// WriteEvent sends one named event with a JSON payload
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}

	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		return err
	}
	s.nextID++
	s.flusher.Flush()
	return nil
}

// WriteStep forwards a pipeline progress event
func (s *SSEWriter) WriteStep(event pipeline.ProgressEvent) error {
	return s.WriteEvent(eventStep, event)
}

// WriteError sends the error with the HTTP status a plain request would have received
func (s *SSEWriter) WriteError(err error) {
	_ = s.WriteEvent(eventError, map[string]any{
		"error":  publicMessage(err),
		"status": HTTPStatus(err),
	})
}

// WriteComplete sends the final event of a stream
func (s *SSEWriter) WriteComplete(summary PackageSummary) {
	_ = s.WriteEvent(eventComplete, summary)
}
