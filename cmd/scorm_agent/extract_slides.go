package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/scorm-packager/internal/config"
	"github.com/jonathan/scorm-packager/internal/ingestion"
	"github.com/jonathan/scorm-packager/internal/observability"
	"github.com/jonathan/scorm-packager/internal/pptx"
	"github.com/jonathan/scorm-packager/internal/schemas"
	schemafiles "github.com/jonathan/scorm-packager/schemas"
)

func newExtractSlidesCmd() *cobra.Command {
	var (
		source  sourceFlags
		outPath string
		workers int
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "extract-slides",
		Short: "Decode a presentation into the slide model",
		Long:  "Decode a .pptx presentation and write its ordered slides (titles, text lines, image references, visual element tags) as JSON.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			data, meta, err := source.read(ctx, config.DefaultMaxUploadBytes)
			if err != nil {
				return err
			}

			presentation, err := pptx.Decode(ctx, data, meta.Filename, pptx.Options{MediaWorkers: workers})
			if err != nil {
				return err
			}
			if err := schemas.ValidateGoValue(schemafiles.Presentation, presentation); err != nil {
				return fmt.Errorf("extracted presentation failed validation: %w", err)
			}

			out := cmd.OutOrStdout()
			if verbose {
				observability.NewPrinter(out).PrintPresentation(presentation)
			}

			payload, err := json.MarshalIndent(presentation, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal presentation: %w", err)
			}

			if outPath == "" {
				_, _ = fmt.Fprintln(out, string(payload))
				return nil
			}
			if err := ingestion.WriteOutput(outPath, payload, meta); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "Extracted %d slides (%d images) to %s\n", presentation.SlideCount, presentation.ImageCount(), outPath)
			return nil
		},
	}

	source.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output JSON path (defaults to stdout)")
	cmd.Flags().IntVar(&workers, "media-workers", config.DefaultMediaWorkers, "Concurrent media extraction workers")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the slide outline")
	return cmd
}
