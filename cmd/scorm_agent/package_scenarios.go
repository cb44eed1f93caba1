package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/scorm-packager/internal/ingestion"
	"github.com/jonathan/scorm-packager/internal/pipeline"
	"github.com/jonathan/scorm-packager/internal/scenarios"
	"github.com/jonathan/scorm-packager/internal/types"
)

func newPackageScenariosCmd() *cobra.Command {
	var (
		flags    packageFlags
		inPath   string
		outPath  string
		freeText bool
		maxItems int
	)

	cmd := &cobra.Command{
		Use:   "package-scenarios",
		Short: "Package a scenario set as a SCORM zip",
		Long: `Normalize question/answer or knowledge-base records and package one learning unit per scenario.

Input is JSON (a bare array or an object with a "scenarios" array). With --free-text the input is
plain text and scenarios are recovered from "Question:"/"Answer:" labels or blank-line separated blocks.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()

			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-items") {
				cfg.MaxFallbackScenarios = maxItems
			}

			data, meta, err := ingestion.IngestFromFile(inPath, cfg.MaxUploadBytes)
			if err != nil {
				return err
			}

			var items []types.ScenarioItem
			if freeText {
				items = scenarios.FromText(string(data), cfg.MaxFallbackScenarios)
				if len(items) == 0 {
					return &scenarios.EmptyResultError{Source: meta.Filename}
				}
			} else if items, err = scenarios.Parse(data, meta.Filename); err != nil {
				return err
			}

			settings, err := cfg.ScormSettings(titleFromPath(inPath))
			if err != nil {
				return err
			}

			opts, closeStore, err := pipelineOptions(ctx, cmd, cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			opts.Settings = settings

			result, err := pipeline.PackageScenarios(ctx, items, meta, opts)
			if err != nil {
				return err
			}
			return writePackage(cmd, outPath, result)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "Path to the scenario file (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output zip path (required)")
	cmd.Flags().BoolVar(&freeText, "free-text", false, "Treat the input as plain text instead of JSON")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "Maximum scenarios recovered from free text")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
