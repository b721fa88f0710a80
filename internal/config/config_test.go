package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blogagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithEnvKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	path := writeConfig(t, "logging:\n  level: warn\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "sk-test", cfg.AI.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.OpenAI.Model)
	assert.Equal(t, 120*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 1200*time.Millisecond, cfg.Content.RetryDelay)
	assert.Equal(t, 3, cfg.Content.Attempts)
	assert.Equal(t, 1150, cfg.Content.MinWords)
	assert.Equal(t, 4, cfg.Content.MaxLinks)
	assert.Equal(t, "0 10 * * *", cfg.Scheduler.Cron)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, path, cfg.App.ConfigFile)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("WP_BASE_URL", "https://blog.example.com/")
	t.Setenv("WP_USER", "editor")
	t.Setenv("WP_APP_PASSWORD", "abcd efgh")
	t.Setenv("SCHEDULER_ENABLED", "yes")
	t.Setenv("SCHEDULE_CRON", "30 9 * * 1")
	path := writeConfig(t, `
wordpress:
  base_url: https://ignored.example.com
scheduler:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://blog.example.com", cfg.WordPress.BaseURL)
	assert.Equal(t, "editor", cfg.WordPress.User)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "30 9 * * 1", cfg.Scheduler.Cron)
	assert.NoError(t, cfg.ValidateWordPress())
}

func TestLoad_GeminiRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_AI_API_KEY", "")
	path := writeConfig(t, "ai:\n  provider: gemini\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gemini API key is required")
}

func TestLoad_UnknownProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	path := writeConfig(t, "ai:\n  provider: llama\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown AI provider")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateWordPress_ListsMissing(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateWordPress()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WP_BASE_URL")
	assert.Contains(t, err.Error(), "WP_APP_PASSWORD")
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on "} {
		assert.True(t, IsTruthy(v), v)
	}
	for _, v := range []string{"0", "false", "no", ""} {
		assert.False(t, IsTruthy(v), v)
	}
}
