package container

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// MinContainerSize is the smallest buffer accepted as a container
	MinContainerSize = 1024

	// localHeaderFlagsOffset is the offset of the general purpose bit flag in a local file header
	localHeaderFlagsOffset = 6
	// flagEncrypted is bit 0 of the general purpose bit flag
	flagEncrypted = 0x1
)

// Well-known OOXML presentation parts
const (
	ContentTypesPart = "[Content_Types].xml"
	PresentationPart = "ppt/presentation.xml"
)

var zipSignature = []byte{0x50, 0x4B}

// Container is an opened zip archive with path lookup.
// It is owned by a single decode operation and is safe for concurrent reads.
type Container struct {
	reader *zip.Reader
	files  map[string]*zip.File
	size   int
}

// Open validates the buffer and opens it as a zip archive
func Open(data []byte) (*Container, error) {
	if len(data) < MinContainerSize {
		return nil, &CorruptedArchiveError{
			Message: fmt.Sprintf("file is too small (%d bytes, minimum %d)", len(data), MinContainerSize),
		}
	}

	if !bytes.HasPrefix(data, zipSignature) {
		return nil, &InvalidFormatError{Message: "file does not start with a zip signature"}
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &CorruptedArchiveError{
			Message:           "central directory could not be read",
			PasswordProtected: localHeaderEncrypted(data),
			Cause:             err,
		}
	}

	files := make(map[string]*zip.File, len(reader.File))
	for _, f := range reader.File {
		if f.Flags&flagEncrypted != 0 {
			return nil, &CorruptedArchiveError{
				Message:           fmt.Sprintf("entry %s is encrypted", f.Name),
				PasswordProtected: true,
			}
		}
		files[f.Name] = f
	}

	return &Container{reader: reader, files: files, size: len(data)}, nil
}

// localHeaderEncrypted reads the encryption bit from the first local file header
func localHeaderEncrypted(data []byte) bool {
	if len(data) < localHeaderFlagsOffset+2 {
		return false
	}
	flags := binary.LittleEndian.Uint16(data[localHeaderFlagsOffset : localHeaderFlagsOffset+2])
	return flags&flagEncrypted != 0
}

// RequireParts fails with MissingPartError on the first absent part
func (c *Container) RequireParts(parts ...string) error {
	for _, part := range parts {
		if !c.HasEntry(part) {
			return &MissingPartError{Part: part}
		}
	}
	return nil
}

// HasEntry reports whether the archive contains the path
func (c *Container) HasEntry(path string) bool {
	_, ok := c.files[path]
	return ok
}

// Entry returns the decompressed bytes of an entry, or false when the entry is absent or unreadable
func (c *Container) Entry(path string) ([]byte, bool) {
	data, err := c.Read(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Read returns the decompressed bytes of an entry
func (c *Container) Read(path string) ([]byte, error) {
	f, ok := c.files[path]
	if !ok {
		return nil, fmt.Errorf("entry %s not found", path)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", path, err)
	}
	return data, nil
}

// Text returns an entry as a string
func (c *Container) Text(path string) (string, error) {
	data, err := c.Read(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UncompressedSize returns the declared size of an entry, or -1 when absent
func (c *Container) UncompressedSize(path string) int64 {
	f, ok := c.files[path]
	if !ok {
		return -1
	}
	return int64(f.UncompressedSize64)
}

// Paths returns all entry paths in sorted order
func (c *Container) Paths() []string {
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// PathsWithPrefix returns the sorted entry paths starting with prefix
func (c *Container) PathsWithPrefix(prefix string) []string {
	var paths []string
	for _, path := range c.Paths() {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	return paths
}

// Size returns the size of the underlying buffer
func (c *Container) Size() int {
	return c.size
}

// CheckFileName rejects file types that must not reach the decoder.
// Legacy binary presentations get a dedicated message because they are the most common mistake.
func CheckFileName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pptx", ".pptm", ".potx", ".potm", ".ppsx", ".ppsm":
		return nil
	case ".ppt", ".pps", ".pot":
		return &UnsupportedFileTypeError{
			Extension: ext,
			Message:   "legacy PowerPoint files are not supported; save the file as .pptx",
		}
	case "":
		return &UnsupportedFileTypeError{Extension: ext, Message: "file has no extension; expected .pptx"}
	default:
		return &UnsupportedFileTypeError{Extension: ext, Message: "expected a .pptx presentation"}
	}
}
