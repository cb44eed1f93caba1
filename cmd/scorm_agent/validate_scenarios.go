package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/scorm-packager/internal/config"
	"github.com/jonathan/scorm-packager/internal/ingestion"
	"github.com/jonathan/scorm-packager/internal/observability"
	"github.com/jonathan/scorm-packager/internal/scenarios"
	"github.com/jonathan/scorm-packager/internal/schemas"
)

func newValidateScenariosCmd() *cobra.Command {
	var (
		inPath     string
		schemaPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "validate-scenarios",
		Short: "Validate a scenario file against the scenario schema",
		Long:  "Validate scenario JSON against the built-in scenario set schema (or --schema) and report how many records normalize into usable scenarios.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, meta, err := ingestion.IngestFromFile(inPath, config.DefaultMaxUploadBytes)
			if err != nil {
				return err
			}

			if err := validateExtraSchema(schemaPath, inPath, data); err != nil {
				return err
			}

			items, err := scenarios.Parse(data, meta.Filename)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if verbose {
				observability.NewPrinter(out).PrintScenarios(items)
			}
			_, _ = fmt.Fprintf(out, "%s is valid: %d scenarios\n", inPath, len(items))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inPath, "in", "i", "", "Path to the scenario JSON file (required)")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "Additional JSON Schema to validate against: a file, or the name of a built-in schema")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the normalized scenarios")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

// validateExtraSchema checks data against a schema file on disk, falling back to a built-in
// schema of that name. An empty schema skips the check.
func validateExtraSchema(schema, inPath string, data []byte) error {
	if schema == "" {
		return nil
	}
	if resolved := schemas.ResolveSchemaPath(schema); resolved != "" {
		return schemas.ValidateJSON(resolved, inPath)
	}
	if schemas.IsEmbedded(schema) {
		return schemas.ValidateEmbedded(schema, data)
	}
	return fmt.Errorf("schema file not found: %s", schema)
}
