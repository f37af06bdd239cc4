// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_DefaultIsValid(t *testing.T) {
	assert.Empty(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"empty cache path", func(c *Config) { c.Cache.Path = "" }, "cache.path"},
		{"zero workers", func(c *Config) { c.Scan.Workers = 0 }, "scan.workers"},
		{"no extensions", func(c *Config) { c.Sync.Extensions = nil }, "sync.extensions"},
		{"bare dot extension", func(c *Config) { c.Sync.Extensions = []string{"."} }, "sync.extensions"},
		{"extension with slash", func(c *Config) { c.Sync.Extensions = []string{"a/b"} }, "sync.extensions"},
		{"hidden prefix separator", func(c *Config) { c.Sync.HiddenPrefix = "./" }, "sync.hidden_prefix"},
		{"bad exclude pattern", func(c *Config) { c.Sync.Exclude = []string{"[abc"} }, "sync.exclude"},
		{"history without path", func(c *Config) { c.History.Path = "" }, "history.path"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"negative log size", func(c *Config) { c.Log.MaxSizeMB = -1 }, "log.max_size_mb"},
		{"negative backups", func(c *Config) { c.Log.MaxBackups = -1 }, "log.max_backups"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			errs := cfg.Validate()
			assert.True(t, containsError(errs, tt.want), "expected %s error, got %v", tt.want, errs)
		})
	}
}

func TestValidate_HistoryDisabledNeedsNoPath(t *testing.T) {
	cfg := Default()
	cfg.History.Enabled = false
	cfg.History.Path = ""
	assert.Empty(t, cfg.Validate())
}

func TestValidate_LogLevelCaseInsensitive(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "WARN"
	assert.Empty(t, cfg.Validate())
}

func containsError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
