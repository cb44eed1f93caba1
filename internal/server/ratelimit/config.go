package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit applied to one route.
type EndpointConfig struct {
	Path   string // exact path, or a prefix when it ends in "/"
	Method string
	Limit  int // requests per window
	Window time.Duration
	Burst  int // defaults to Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTimeout     time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig reads rate limiting configuration from RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !envBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: envDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTimeout:     envDuration("RATE_LIMIT_IDLE_TIMEOUT", time.Hour),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(envInt("RATE_LIMIT_CONVERT_PER_HOUR", 60)),
	}
}

// DefaultEndpointConfigs returns the per-route limits. convertPerHour bounds the
// packaging routes; LLM generation gets a tenth of that.
func DefaultEndpointConfigs(convertPerHour int) []EndpointConfig {
	if convertPerHour <= 0 {
		convertPerHour = 60
	}
	burst := max(1, convertPerHour/10)
	llmLimit := max(1, convertPerHour/10)

	return []EndpointConfig{
		// Packaging: decodes archives and builds zips in memory
		{Path: "/convert/presentation", Method: "POST", Limit: convertPerHour, Window: time.Hour, Burst: burst},
		{Path: "/convert/presentation/stream", Method: "POST", Limit: convertPerHour, Window: time.Hour, Burst: burst},
		{Path: "/convert/scenarios", Method: "POST", Limit: convertPerHour, Window: time.Hour, Burst: burst},
		{Path: "/extract", Method: "POST", Limit: convertPerHour, Window: time.Hour, Burst: burst},

		// Paid upstream calls
		{Path: "/generate-scenarios", Method: "POST", Limit: llmLimit, Window: time.Hour, Burst: 1},

		{Path: "/runs/", Method: "GET", Limit: 300, Window: time.Minute, Burst: 30},
	}
}

func envInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func envBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
