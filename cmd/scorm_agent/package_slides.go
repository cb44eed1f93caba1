package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/scorm-packager/internal/config"
	"github.com/jonathan/scorm-packager/internal/pipeline"
)

func newPackageSlidesCmd() *cobra.Command {
	var (
		flags   packageFlags
		source  sourceFlags
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "package-slides",
		Short: "Package a presentation as a SCORM zip",
		Long: `Decode a .pptx presentation and package one learning unit per slide as a SCORM zip.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()

			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			data, meta, err := source.read(ctx, cfg.MaxUploadBytes)
			if err != nil {
				return err
			}

			settings, err := cfg.ScormSettings(titleFromPath(source.name(meta)))
			if err != nil {
				return err
			}

			opts, closeStore, err := pipelineOptions(ctx, cmd, cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			opts.Settings = settings

			result, err := pipeline.PackageSlides(ctx, data, meta, opts)
			if err != nil {
				return err
			}
			return writePackage(cmd, outPath, result)
		},
	}

	flags.register(cmd)
	source.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output zip path (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// pipelineOptions builds run options, connecting run history when a database URL is configured.
// The returned func closes the connection.
func pipelineOptions(ctx context.Context, cmd *cobra.Command, cfg config.Config) (pipeline.Options, func(), error) {
	opts := pipeline.Options{
		TemplatePath: cfg.Template,
		MediaWorkers: cfg.MediaWorkers,
		Verbose:      cfg.Verbose,
		Out:          cmd.OutOrStdout(),
	}

	store, closeStore, err := connectStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return pipeline.Options{}, nil, err
	}
	if store != nil {
		opts.Store = store
	}
	return opts, closeStore, nil
}

func writePackage(cmd *cobra.Command, outPath string, result *pipeline.Result) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, result.Zip, 0644); err != nil {
		return fmt.Errorf("failed to write package: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Successfully packaged SCORM %s course %q\n", result.Settings.Version, result.Settings.CourseTitle)
	_, _ = fmt.Fprintf(out, "Package: %s (%d files, %d bytes)\n", outPath, len(result.Package), len(result.Zip))
	if len(result.Warnings) > 0 {
		_, _ = fmt.Fprintf(out, "Warnings: %d (run with --verbose to list them)\n", len(result.Warnings))
	}
	if result.RunID != uuid.Nil {
		_, _ = fmt.Fprintf(out, "Run ID: %s\n", result.RunID)
	}
	return nil
}

// titleFromPath derives a course title from a file name
func titleFromPath(path string) string {
	base := filepath.Base(path)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(title))
}
