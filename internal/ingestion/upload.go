package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/scorm-packager/internal/container"
)

// TooLargeError indicates an upload exceeded the configured byte limit
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("upload exceeds the %d byte limit", e.Limit)
}

// EmptyUploadError indicates an upload carried no bytes
type EmptyUploadError struct {
	Filename string
}

func (e *EmptyUploadError) Error() string {
	return fmt.Sprintf("upload %q is empty", e.Filename)
}

// ReadUpload reads r into memory, enforcing limit when it is positive.
func ReadUpload(r io.Reader, filename string, limit int64) ([]byte, *Metadata, error) {
	reader := r
	if limit > 0 {
		reader = io.LimitReader(r, limit+1)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, nil, fmt.Errorf("failed to read upload %s: %w", filename, err)
	}
	if limit > 0 && int64(buf.Len()) > limit {
		return nil, nil, &TooLargeError{Limit: limit}
	}
	if buf.Len() == 0 {
		return nil, nil, &EmptyUploadError{Filename: filename}
	}

	data := buf.Bytes()
	return data, NewMetadata(data, filename), nil
}

// ReadPresentation checks the file name and reads a presentation upload
func ReadPresentation(r io.Reader, filename string, limit int64) ([]byte, *Metadata, error) {
	if err := container.CheckFileName(filename); err != nil {
		return nil, nil, err
	}
	return ReadUpload(r, filename, limit)
}

// IngestFromFile reads a local file through the same size checks as an upload
func IngestFromFile(path string, limit int64) ([]byte, *Metadata, error) {
	f, err := openLocal(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadUpload(f, path, limit)
}

// IngestPresentationFile reads a local presentation; the file type is checked before reading
func IngestPresentationFile(path string, limit int64) ([]byte, *Metadata, error) {
	if err := container.CheckFileName(path); err != nil {
		return nil, nil, err
	}
	f, err := openLocal(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadUpload(f, path, limit)
}

func openLocal(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// WriteOutput writes data to path and its metadata next to it as <name>.meta.json
func WriteOutput(path string, data []byte, metadata *Metadata) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if metadata == nil {
		return nil
	}

	metaJSON, err := metadata.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	metaPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".meta.json"
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}
