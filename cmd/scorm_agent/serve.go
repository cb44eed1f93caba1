package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/scorm-packager/internal/config"
	"github.com/jonathan/scorm-packager/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server that converts uploads into SCORM packages.

DATABASE_URL enables run history, GEMINI_API_KEY enables scenario generation and
DOWNLOAD_TOKEN_SECRET enables signed package download links.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg config.Config
			if configPath != "" {
				loaded, err := config.LoadConfig(configPath)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				cfg = *loaded
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			cfg.ApplyEnv()
			cfg = cfg.MergeWithDefaults(config.Defaults())
			if err := cfg.Validate(); err != nil {
				return err
			}

			srv, err := server.New(server.ConfigFrom(cfg))
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			return srv.Start()
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config.json file")
	cmd.Flags().IntVar(&port, "port", config.DefaultPort, "Port to listen on (defaults to PORT env var or 8080)")
	return cmd
}
