package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"
)

// Metadata describes one ingested upload
type Metadata struct {
	Filename    string `json:"filename,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
	Size        int    `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	Timestamp   string `json:"timestamp"` // RFC3339 format
	Hash        string `json:"hash"`      // SHA256 hex digest
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(data []byte, filename string) *Metadata {
	return &Metadata{
		Filename:    filepath.Base(filename),
		Size:        len(data),
		ContentType: http.DetectContentType(data),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Hash:        computeHash(data),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
