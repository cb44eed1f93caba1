package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/scorm-packager/internal/config"
	"github.com/jonathan/scorm-packager/internal/ingestion"
	"github.com/jonathan/scorm-packager/internal/llm"
	"github.com/jonathan/scorm-packager/internal/observability"
	"github.com/jonathan/scorm-packager/internal/pptx"
	"github.com/jonathan/scorm-packager/internal/types"
)

func newGenerateScenariosCmd() *cobra.Command {
	var (
		inPath   string
		outPath  string
		count    int
		apiKey   string
		maxItems int
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "generate-scenarios",
		Short: "Draft training scenarios from a presentation with Gemini",
		Long:  "Decode a .pptx presentation, send its slide text to Gemini and write the drafted question/answer scenarios as JSON ready for package-scenarios.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()

			// API key can be passed as a flag, or read from env var GEMINI_API_KEY
			if apiKey == "" {
				apiKey = os.Getenv("GEMINI_API_KEY")
			}
			if apiKey == "" {
				return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
			}

			data, meta, err := ingestion.IngestFromFile(inPath, config.DefaultMaxUploadBytes)
			if err != nil {
				return err
			}
			presentation, err := pptx.Decode(ctx, data, meta.Filename, pptx.Options{MediaWorkers: config.DefaultMediaWorkers})
			if err != nil {
				return err
			}

			client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
			if err != nil {
				return fmt.Errorf("failed to create LLM client: %w", err)
			}
			defer func() { _ = client.Close() }()

			items, err := llm.NewScenarioGenerator(client, maxItems).Generate(ctx, presentation, count)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if verbose {
				observability.NewPrinter(out).PrintScenarios(items)
			}

			payload, err := json.MarshalIndent(types.ScenarioSet{Scenarios: items}, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal scenarios: %w", err)
			}
			if err := ingestion.WriteOutput(outPath, payload, meta); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "Generated %d scenarios to %s\n", len(items), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inPath, "in", "i", "", "Path to the .pptx file (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output JSON path (required)")
	cmd.Flags().IntVarP(&count, "count", "n", llm.DefaultScenarioCount, "Number of scenarios to request")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	cmd.Flags().IntVar(&maxItems, "max-items", config.DefaultMaxFallbackScenarios, "Maximum scenarios recovered when the response is not valid JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the drafted scenarios")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
