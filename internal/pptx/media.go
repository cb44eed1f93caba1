package pptx

import (
	"context"
	"log"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/scorm-packager/internal/container"
	"github.com/jonathan/scorm-packager/internal/types"
)

// DefaultMediaWorkers bounds concurrent media decompression
const DefaultMediaWorkers = 4

const defaultMIMEType = "image/png"

var imageMIMETypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"wmf":  "image/wmf",
	"emf":  "image/emf",
}

// extension returns the lower-cased extension without the dot
func extension(p string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
}

// IsSupportedImage reports whether the path has a known image extension
func IsSupportedImage(p string) bool {
	_, ok := imageMIMETypes[extension(p)]
	return ok
}

// MIMEType returns the fixed MIME type for an image path; unknown extensions map to image/png
func MIMEType(p string) string {
	if mime, ok := imageMIMETypes[extension(p)]; ok {
		return mime
	}
	return defaultMIMEType
}

// ResolveMedia extracts every supported image under ppt/media/.
// Decompression runs on a bounded worker set and is joined before returning, so callers see a
// complete map. Per-image failures are returned as MediaExtractErrors and the image is omitted;
// the returned error is non-nil only when ctx is cancelled.
func ResolveMedia(ctx context.Context, c *container.Container, workers int) (map[string]types.ImageResource, []error, error) {
	if workers <= 0 {
		workers = DefaultMediaWorkers
	}

	var (
		mu        sync.Mutex
		resources = make(map[string]types.ImageResource)
		failures  []*MediaExtractError
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, p := range c.PathsWithPrefix(mediaDir) {
		if !IsSupportedImage(p) {
			continue
		}
		p := p
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			data, err := c.Read(p)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[MEDIA] Skipping %s: %v", p, err)
				failures = append(failures, &MediaExtractError{Path: p, Cause: err})
				return nil
			}
			resources[p] = types.ImageResource{
				Path:     p,
				MIMEType: MIMEType(p),
				Data:     data,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Path < failures[j].Path
	})
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, f)
	}

	return resources, errs, nil
}
