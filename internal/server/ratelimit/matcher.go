package ratelimit

import "strings"

// unlimited is returned for routes that are never limited.
var unlimited = &EndpointConfig{Path: "/health", Method: "GET"}

// MatchEndpoint returns the config for path and method, or nil when none applies.
// Exact paths win over prefixes; among prefixes the longest wins.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return unlimited
	}

	var best *EndpointConfig
	for i := range configs {
		cfg := &configs[i]
		if cfg.Method != method {
			continue
		}
		if cfg.Path == path {
			return cfg
		}
		if strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(path, cfg.Path) {
			if best == nil || len(cfg.Path) > len(best.Path) {
				best = cfg
			}
		}
	}
	return best
}
