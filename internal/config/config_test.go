package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Browser.Stealth)
	assert.Equal(t, 1280, cfg.Browser.Width)
	assert.Equal(t, 50, cfg.DOM.MaxHighlight)
	assert.Equal(t, "claude", cfg.AI.Provider)
	assert.Equal(t, 10, cfg.LinkedIn.MaxApplications)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
browser:
  headless: true
  width: 1920
  height: 1080
linkedin:
  search_term: "Go Developer"
  max_applications: 3
ai:
  provider: openai
dom:
  max_highlight: 25
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1920, cfg.Browser.Width)
	assert.Equal(t, "Go Developer", cfg.LinkedIn.SearchTerm)
	assert.Equal(t, 3, cfg.LinkedIn.MaxApplications)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, 25, cfg.DOM.MaxHighlight)
	// Untouched sections keep defaults.
	assert.True(t, cfg.Browser.Stealth)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JOBSEEKER_LINKEDIN_EMAIL", "me@example.com")
	t.Setenv("JOBSEEKER_AI_ANTHROPIC_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "me@example.com", cfg.LinkedIn.Email)
	assert.Equal(t, "sk-test", cfg.AI.AnthropicKey)
}

func TestNormalizeSwapsDelays(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
browser:
  min_delay: 5s
  max_delay: 1s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Browser.MinDelay)
	assert.Equal(t, 5*time.Second, cfg.Browser.MaxDelay)
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai:\n  provider: bard\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown ai provider")
}

func TestEnsureDirs(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Storage: StorageConfig{
			DataDir:       filepath.Join(dir, "data"),
			ScreenshotDir: filepath.Join(dir, "shots"),
		},
	}
	require.NoError(t, cfg.EnsureDirs())
	assert.DirExists(t, cfg.Storage.DataDir)
	assert.DirExists(t, cfg.Storage.ScreenshotDir)
}
