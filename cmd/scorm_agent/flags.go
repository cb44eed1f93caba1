package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/scorm-packager/internal/config"
)

// packageFlags are shared by the commands that build packages
type packageFlags struct {
	configPath string
	version    string
	title      string
	completion string
	template   string
	dbURL      string
	maxUpload  int64
	workers    int
	verbose    bool
}

func (f *packageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().StringVar(&f.version, "version", "", "SCORM version: 1.2 or 2004 (default 2004)")
	cmd.Flags().StringVar(&f.title, "title", "", "Course title (defaults to the input file name)")
	cmd.Flags().StringVar(&f.completion, "completion", "", "Completion criteria: last or button (default last)")
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "Path to a custom index.html template")
	cmd.Flags().StringVar(&f.dbURL, "db-url", "", "PostgreSQL connection URL for run history (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().Int64Var(&f.maxUpload, "max-bytes", 0, "Maximum input size in bytes")
	cmd.Flags().IntVar(&f.workers, "media-workers", 0, "Concurrent media extraction workers")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
}

// resolve loads the config file, applies explicitly set flags, fills defaults and validates.
func (f *packageFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	// Command-line args take priority over the config file
	flags := cmd.Flags()
	if flags.Changed("version") {
		cfg.Version = f.version
	}
	if flags.Changed("title") {
		cfg.CourseTitle = f.title
	}
	if flags.Changed("completion") {
		cfg.Completion = f.completion
	}
	if flags.Changed("template") {
		cfg.Template = f.template
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = f.dbURL
	}
	if flags.Changed("max-bytes") {
		cfg.MaxUploadBytes = f.maxUpload
	}
	if flags.Changed("media-workers") {
		cfg.MediaWorkers = f.workers
	}
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if cfg.Verbose && f.configPath != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Loaded config from: %s\n", f.configPath)
	}
	return cfg, nil
}
