package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/scorm-packager/internal/fetch"
)

// IngestFromURL downloads a presentation and reads it through the upload checks.
func IngestFromURL(ctx context.Context, url string, limit int64) ([]byte, *Metadata, error) {
	opts := fetch.DefaultOptions()
	if limit > 0 {
		opts.MaxBytes = limit
	}

	result, err := fetch.Download(ctx, url, opts)
	if err != nil {
		if errors.Is(err, fetch.ErrTooLarge) {
			return nil, nil, &TooLargeError{Limit: opts.MaxBytes}
		}
		return nil, nil, fmt.Errorf("failed to download presentation: %w", err)
	}

	data, meta, err := ReadPresentation(bytes.NewReader(result.Data), result.Filename, limit)
	if err != nil {
		return nil, nil, err
	}
	meta.SourceURL = result.URL
	return data, meta, nil
}
