package packaging

import (
	"archive/zip"
	"bytes"
	"io"
	"time"

	"github.com/jonathan/scorm-packager/internal/types"
)

// modTime is stamped on every entry so identical packages produce identical archives
var modTime = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// WriteZip writes the package as a zip archive with entries in sorted path order
func WriteZip(pkg types.ScormPackage, w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, name := range pkg.Paths() {
		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modTime,
		}
		header.SetMode(0644)

		fw, err := zw.CreateHeader(header)
		if err != nil {
			return &WriteError{Message: "failed to create entry " + name, Cause: err}
		}
		if _, err := fw.Write(pkg[name]); err != nil {
			return &WriteError{Message: "failed to write entry " + name, Cause: err}
		}
	}

	if err := zw.Close(); err != nil {
		return &WriteError{Message: "failed to finalize archive", Cause: err}
	}
	return nil
}

// ZipBytes returns the package as an in-memory zip archive
func ZipBytes(pkg types.ScormPackage) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteZip(pkg, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadZip loads an archive written by WriteZip back into a package
func ReadZip(data []byte) (types.ScormPackage, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	pkg := make(types.ScormPackage, len(reader.File))
	for _, f := range reader.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, err
		}
		pkg[f.Name] = content
	}
	return pkg, nil
}
