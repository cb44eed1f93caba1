package packaging

import (
	"path"
	"sort"
	"strings"

	"github.com/jonathan/scorm-packager/internal/scorm"
	"github.com/jonathan/scorm-packager/internal/types"
)

// Assemble composes the manifest, runtime, stylesheet, course page and any extra files into a
// package. It only builds the map; a path supplied twice is a DuplicatePathError.
func Assemble(manifest, runtime, styles, content string, extra map[string][]byte) (types.ScormPackage, error) {
	pkg := types.ScormPackage{
		scorm.ManifestFile: []byte(manifest),
		scorm.RuntimeFile:  []byte(runtime),
		scorm.StylesFile:   []byte(styles),
		scorm.LaunchFile:   []byte(content),
	}

	// sorted so the reported duplicate does not depend on map order
	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		clean, err := cleanPath(name)
		if err != nil {
			return nil, err
		}
		if _, exists := pkg[clean]; exists {
			return nil, &DuplicatePathError{Path: clean}
		}
		pkg[clean] = extra[name]
	}

	return pkg, nil
}

// cleanPath normalizes a relative package path and rejects absolute or escaping paths
func cleanPath(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", &InvalidPathError{Path: name}
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", &InvalidPathError{Path: name}
	}
	return clean, nil
}
