package config

import (
	"fmt"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path: required")
	}

	if c.Cache.MaxAgeDays < 0 {
		errs = append(errs, fmt.Sprintf("cache.max_age_days: must not be negative, got %d", c.Cache.MaxAgeDays))
	}

	if c.TMDB.RateLimit < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.rate_limit: must not be negative, got %g", c.TMDB.RateLimit))
	}
	if c.TMDB.FetchLimit < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.fetch_limit: must not be negative, got %d", c.TMDB.FetchLimit))
	}
	if c.TMDB.APIKey == "" && c.TMDB.BaseURL != "" {
		errs = append(errs, "tmdb.api_key: required when tmdb is configured")
	}

	return errs
}
