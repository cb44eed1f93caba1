// Package main provides the scorm_agent CLI: SCORM packaging of presentations and scenarios.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scorm_agent",
		Short:         "SCORM packager for presentations and training scenarios",
		Long:          "scorm_agent converts .pptx presentations and question/answer scenario sets into SCORM 1.2 or 2004 zip packages, from the command line or over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newExtractSlidesCmd(),
		newPackageSlidesCmd(),
		newPackageScenariosCmd(),
		newValidateScenariosCmd(),
		newGenerateScenariosCmd(),
		newServeCmd(),
	)
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
