// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Cache   CacheConfig   `toml:"cache"`
	Scan    ScanConfig    `toml:"scan"`
	Review  ReviewConfig  `toml:"review"`
	Sync    SyncConfig    `toml:"sync"`
	History HistoryConfig `toml:"history"`
	Log     LogConfig     `toml:"log"`
}

type CacheConfig struct {
	Path string `toml:"path"`
}

type ScanConfig struct {
	Workers int  `toml:"workers"`
	Strict  bool `toml:"strict"`
}

type ReviewConfig struct {
	Editor    string `toml:"editor"`
	BufferDir string `toml:"buffer_dir"`
}

type SyncConfig struct {
	Extensions   []string `toml:"extensions"`
	HiddenPrefix string   `toml:"hidden_prefix"`
	Exclude      []string `toml:"exclude"`
	SortAfterAdd bool     `toml:"sort_after_add"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Default returns the configuration used when no file is found. Load
// decodes on top of it, so keys absent from a file keep these values.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{Path: filepath.Join(cacheHome(), "ghettosync", "ghettosync.json")},
		Scan:  ScanConfig{Workers: 1},
		Sync: SyncConfig{
			Extensions:   []string{".flac", ".m4a", ".mp3", ".mp4", ".opus", ".wma"},
			HiddenPrefix: "._",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(dataHome(), "ghettosync", "history.db"),
		},
		Log: LogConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 3},
	}
}

// Load reads, parses and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file without
// validating values. Unresolved environment variables are still an error.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	cfg := Default()
	if _, err := toml.Decode(content, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.expandPaths()
	return cfg, nil
}

// expandPaths resolves a leading "~/" in path settings.
func (c *Config) expandPaths() {
	c.Cache.Path = expandHome(c.Cache.Path)
	c.History.Path = expandHome(c.History.Path)
	c.Log.File = expandHome(c.Log.File)
	c.Review.BufferDir = expandHome(c.Review.BufferDir)
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

func cacheHome() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return "."
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars expands environment references in content. It
// returns the names (or "NAME: message" for ${VAR:?message}) of
// references that could not be resolved; those are left in place.
func substituteEnvVars(content string) (string, []string) {
	var missing []string

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		expr := match[2 : len(match)-1] // Strip ${ and }

		if name, def, ok := strings.Cut(expr, ":-"); ok {
			if value := os.Getenv(name); value != "" {
				return value
			}
			return def
		}

		if name, msg, ok := strings.Cut(expr, ":?"); ok {
			if value := os.Getenv(name); value != "" {
				return value
			}
			missing = append(missing, fmt.Sprintf("%s: %s", name, msg))
			return match
		}

		if value, ok := os.LookupEnv(expr); ok {
			return value
		}
		missing = append(missing, expr)
		return match // Leave unchanged if not found
	})

	return result, missing
}
