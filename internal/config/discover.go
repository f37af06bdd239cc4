package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvVar overrides discovery with an explicit file.
const EnvVar = "GHETTOSYNC_CONFIG"

// ErrNotFound is returned by Discover when no candidate file exists.
var ErrNotFound = errors.New("config not found")

// DefaultPath is $XDG_CONFIG_HOME/ghettosync/config.toml, where
// `config init` writes when given no path.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "ghettosync.toml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "ghettosync", "config.toml")
}

// SearchPaths lists the candidates Discover tries after $GHETTOSYNC_CONFIG.
func SearchPaths() []string {
	return []string{"ghettosync.toml", DefaultPath(), "/etc/ghettosync/config.toml"}
}

// Discover returns the first config file that exists. $GHETTOSYNC_CONFIG,
// when set, must name an existing file.
func Discover() (string, error) {
	if explicit := os.Getenv(EnvVar); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%s: %w", EnvVar, err)
		}
		return explicit, nil
	}

	candidates := SearchPaths()
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (searched %s)", ErrNotFound, strings.Join(candidates, ", "))
}

// Resolve loads the config at path, or discovers one when path is empty.
// It returns the path actually used, "" when running on defaults.
func Resolve(path string) (*Config, string, error) {
	if path == "" {
		found, err := Discover()
		switch {
		case errors.Is(err, ErrNotFound):
			return Default(), "", nil
		case err != nil:
			return nil, "", err
		}
		path = found
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
