package config

import (
	"fmt"
	"os"
	"strconv"
)

// DownloadTokenConfig holds configuration for signed package download links
type DownloadTokenConfig struct {
	Secret            string
	ExpirationMinutes int
}

// NewDownloadTokenConfig reads DOWNLOAD_TOKEN_SECRET (required) and
// DOWNLOAD_TOKEN_TTL_MINUTES (default: 60) from the environment.
func NewDownloadTokenConfig() (*DownloadTokenConfig, error) {
	secret := os.Getenv("DOWNLOAD_TOKEN_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("DOWNLOAD_TOKEN_SECRET is required but not set")
	}

	ttlStr := os.Getenv("DOWNLOAD_TOKEN_TTL_MINUTES")
	if ttlStr == "" {
		ttlStr = "60"
	}

	ttl, err := strconv.Atoi(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_TOKEN_TTL_MINUTES: %v", err)
	}

	config := &DownloadTokenConfig{
		Secret:            secret,
		ExpirationMinutes: ttl,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *DownloadTokenConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("DOWNLOAD_TOKEN_SECRET cannot be empty")
	}
	if c.ExpirationMinutes < 1 {
		return fmt.Errorf("DOWNLOAD_TOKEN_TTL_MINUTES must be at least 1 minute, got: %d", c.ExpirationMinutes)
	}
	return nil
}
