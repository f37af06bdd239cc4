// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Cache.Path == "" {
		errs = append(errs, "cache.path: required")
	}

	if c.Scan.Workers < 1 {
		errs = append(errs, fmt.Sprintf("scan.workers: must be at least 1, got %d", c.Scan.Workers))
	}

	if len(c.Sync.Extensions) == 0 {
		errs = append(errs, "sync.extensions: at least one extension must be listed")
	}
	for _, ext := range c.Sync.Extensions {
		if strings.Trim(ext, ".") == "" || strings.ContainsAny(ext, `/\`) {
			errs = append(errs, fmt.Sprintf("sync.extensions: invalid extension %q", ext))
		}
	}
	if strings.ContainsAny(c.Sync.HiddenPrefix, `/\`) {
		errs = append(errs, fmt.Sprintf("sync.hidden_prefix: must not contain a path separator, got %q", c.Sync.HiddenPrefix))
	}
	for _, pattern := range c.Sync.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Sprintf("sync.exclude: invalid pattern %q", pattern))
		}
	}

	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, "history.path: required when history is enabled")
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if c.Log.MaxSizeMB < 0 {
		errs = append(errs, fmt.Sprintf("log.max_size_mb: must not be negative, got %d", c.Log.MaxSizeMB))
	}
	if c.Log.MaxBackups < 0 {
		errs = append(errs, fmt.Sprintf("log.max_backups: must not be negative, got %d", c.Log.MaxBackups))
	}

	return errs
}
