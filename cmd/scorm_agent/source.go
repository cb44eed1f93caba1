package main

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/spf13/cobra"

	"github.com/jonathan/scorm-packager/internal/ingestion"
)

// sourceFlags selects a presentation from a local path or a URL
type sourceFlags struct {
	inPath string
	urlStr string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.inPath, "in", "i", "", "Path to the .pptx file")
	cmd.Flags().StringVarP(&s.urlStr, "url", "u", "", "URL to download the .pptx from")
}

func (s *sourceFlags) read(ctx context.Context, limit int64) ([]byte, *ingestion.Metadata, error) {
	if s.inPath == "" && s.urlStr == "" {
		return nil, nil, fmt.Errorf("either --in or --url must be provided")
	}
	if s.inPath != "" && s.urlStr != "" {
		return nil, nil, fmt.Errorf("--in and --url are mutually exclusive; provide only one")
	}

	if s.urlStr != "" {
		data, meta, err := ingestion.IngestFromURL(ctx, s.urlStr, limit)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to ingest from URL: %w", err)
		}
		return data, meta, nil
	}
	return ingestion.IngestPresentationFile(s.inPath, limit)
}

// name is the file name the title falls back to
func (s *sourceFlags) name(meta *ingestion.Metadata) string {
	if meta != nil && meta.Filename != "" {
		return meta.Filename
	}
	if s.inPath != "" {
		return s.inPath
	}
	if u, err := url.Parse(s.urlStr); err == nil {
		return path.Base(u.Path)
	}
	return ""
}
