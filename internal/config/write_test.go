// internal/config/write_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ghettosync", "config.toml")

	require.NoError(t, WriteDefault(path), "WriteDefault failed")

	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read written file")

	assert.Contains(t, string(content), "[cache]")
	assert.Contains(t, string(content), "[sync]")
	assert.Contains(t, string(content), "${XDG_DATA_HOME:-~/.local/share}")
}

func TestWriteDefault_Loads(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cache", "ghettosync", "ghettosync.json"), cfg.Cache.Path)
	assert.Equal(t, filepath.Join(home, ".local", "share", "ghettosync", "history.db"), cfg.History.Path)
	assert.Equal(t, Default().Sync.Extensions, cfg.Sync.Extensions)
}

func TestConfig_Write(t *testing.T) {
	cfg := Default()
	cfg.Review.Editor = "hx"
	cfg.Scan.Workers = 8

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, cfg.Write(path), "Write failed")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hx", loaded.Review.Editor)
	assert.Equal(t, 8, loaded.Scan.Workers)
}
