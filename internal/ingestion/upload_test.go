package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/scorm-packager/internal/container"
)

func TestReadUpload(t *testing.T) {
	data, meta, err := ReadUpload(strings.NewReader("hello"), "note.txt", 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "note.txt", meta.Filename)
	assert.Equal(t, 5, meta.Size)
}

func TestReadUpload_ExactLimit(t *testing.T) {
	data, _, err := ReadUpload(strings.NewReader("12345"), "a.bin", 5)
	require.NoError(t, err)
	assert.Len(t, data, 5)
}

func TestReadUpload_TooLarge(t *testing.T) {
	_, _, err := ReadUpload(strings.NewReader("123456"), "a.bin", 5)

	var tooLarge *TooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, int64(5), tooLarge.Limit)
}

func TestReadUpload_NoLimit(t *testing.T) {
	data, _, err := ReadUpload(strings.NewReader(strings.Repeat("x", 4096)), "a.bin", 0)
	require.NoError(t, err)
	assert.Len(t, data, 4096)
}

func TestReadUpload_Empty(t *testing.T) {
	_, _, err := ReadUpload(strings.NewReader(""), "empty.pptx", 10)

	var empty *EmptyUploadError
	assert.True(t, errors.As(err, &empty))
}

func TestReadPresentation_RejectsLegacyFormat(t *testing.T) {
	_, _, err := ReadPresentation(strings.NewReader("whatever"), "slides.ppt", 0)

	var unsupported *container.UnsupportedFileTypeError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, ".ppt", unsupported.Extension)
}

func TestIngestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"q":"a"}]`), 0644))

	data, meta, err := IngestFromFile(path, 0)
	require.NoError(t, err)
	assert.Equal(t, `[{"q":"a"}]`, string(data))
	assert.Equal(t, "scenarios.json", meta.Filename)
}

func TestIngestPresentationFile_ChecksFileType(t *testing.T) {
	tests := []struct {
		name      string
		extension string
	}{
		{"legacy binary", ".ppt"},
		{"pdf", ".pdf"},
		{"no extension", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "notes"+tt.extension)
			require.NoError(t, os.WriteFile(path, []byte("binary"), 0644))

			_, _, err := IngestPresentationFile(path, 0)

			var unsupported *container.UnsupportedFileTypeError
			require.True(t, errors.As(err, &unsupported), "got %v", err)
		})
	}
}

func TestIngestPresentationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04"), 0644))

	data, meta, err := IngestPresentationFile(path, 0)
	require.NoError(t, err)
	assert.Len(t, data, 4)
	assert.Equal(t, "deck.pptx", meta.Filename)

	_, _, err = IngestPresentationFile(filepath.Join(t.TempDir(), "missing.pptx"), 0)
	assert.ErrorContains(t, err, "file not found")
}

func TestIngestFromFile_NotFound(t *testing.T) {
	_, _, err := IngestFromFile("/nonexistent/deck.pptx", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "slides.json")
	meta := NewMetadata([]byte("deck"), "deck.pptx")

	require.NoError(t, WriteOutput(path, []byte(`{}`), meta))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(written))

	metaJSON, err := os.ReadFile(filepath.Join(dir, "out", "slides.meta.json"))
	require.NoError(t, err)
	assert.Contains(t, string(metaJSON), `"filename": "deck.pptx"`)
}

func TestWriteOutput_NilMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "course.zip")

	require.NoError(t, WriteOutput(path, []byte("zip"), nil))

	_, err := os.Stat(filepath.Join(dir, "course.meta.json"))
	assert.True(t, os.IsNotExist(err))
}
