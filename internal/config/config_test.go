package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	home := t.TempDir()

	cfg, err := LoadConfig(home)
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "gemini-1.5-flash", cfg.AIModel)
	assert.True(t, cfg.UseStack)
	assert.Equal(t, 200_000, cfg.MaxDiffBytes)

	// file exists on disk after first load
	_, err = os.Stat(filepath.Join(home, ".erk", "config.json"))
	assert.NoError(t, err)
}

func TestLoadConfig_ReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	existing := Config{
		GeminiAPIKey: "test-key",
		GitHubToken:  "ghp_test",
		Language:     "es",
		PlansRepo:    "dagster-io/erk-plans",
		UseStack:     false,
		MaxDiffBytes: 1000,
	}
	data, err := json.Marshal(existing)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, "es", cfg.Language)
	assert.Equal(t, "dagster-io/erk-plans", cfg.PlansRepo)
	assert.False(t, cfg.UseStack)
	assert.Equal(t, 1000, cfg.MaxDiffBytes)
	assert.Equal(t, path, cfg.PathFile)
}

func TestLoadConfig_FillsMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"github_token":"tok"}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, 200_000, cfg.MaxDiffBytes)
	assert.Equal(t, "tok", cfg.GitHubToken)
}

func TestSaveConfig(t *testing.T) {
	t.Run("round trips through disk", func(t *testing.T) {
		home := t.TempDir()
		cfg, err := LoadConfig(home)
		require.NoError(t, err)

		cfg.GeminiAPIKey = "updated"
		require.NoError(t, SaveConfig(cfg))

		reloaded, err := LoadConfig(home)
		require.NoError(t, err)
		assert.Equal(t, "updated", reloaded.GeminiAPIKey)
	})

	t.Run("rejects missing path", func(t *testing.T) {
		cfg := &Config{Language: "en", MaxDiffBytes: 100}
		assert.Error(t, SaveConfig(cfg))
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := &Config{Language: "", MaxDiffBytes: 100, PathFile: "x.json"}
		assert.Error(t, SaveConfig(cfg))
	})
}
