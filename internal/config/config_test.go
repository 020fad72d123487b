package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HOST", "PORT", "LOG_LEVEL", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"STT_BACKEND", "STT_MODEL", "STT_OPENAI_BASE_URL", "STT_LOCAL_BASE_URL",
		"NUTRITION_PROVIDER", "NUTRITION_MODEL", "NUTRITION_MAX_TOKENS", "NUTRITION_VALIDATE",
		"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL", "STATIC_DIR", "UPSTREAM_TIMEOUT", "MAX_BODY_BYTES",
	} {
		t.Setenv(k, "")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
	assert.Equal(t, "", cfg.OpenAI.APIKey)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "openai", cfg.STT.Backend)
	assert.Equal(t, "whisper-1", cfg.STT.Model)
	assert.Equal(t, cfg.OpenAI.BaseURL, cfg.STT.OpenAIBaseURL)
	assert.Equal(t, "openai", cfg.Nutrition.Provider)
	assert.Equal(t, "gpt-4o", cfg.Nutrition.Model)
	assert.Equal(t, 500, cfg.Nutrition.MaxTokens)
	assert.False(t, cfg.Nutrition.Validate)
	assert.Equal(t, "web", cfg.Static.Dir)
	assert.Equal(t, 60*time.Second, cfg.Limits.UpstreamTimeout)
	assert.Equal(t, int64(35<<20), cfg.Limits.MaxBodyBytes)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("PORT", "3100")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://stub/v1")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NUTRITION_PROVIDER", "anthropic")
	t.Setenv("NUTRITION_VALIDATE", "true")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3100, cfg.Server.Port)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "http://stub/v1", cfg.STT.OpenAIBaseURL)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, "anthropic", cfg.Nutrition.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Nutrition.Model)
	assert.True(t, cfg.Nutrition.Validate)
	assert.Equal(t, 5*time.Second, cfg.Limits.UpstreamTimeout)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "abc"},
		{"PORT", "70000"},
		{"STT_BACKEND", "deepgram"},
		{"NUTRITION_PROVIDER", "gemini"},
		{"NUTRITION_MAX_TOKENS", "0"},
		{"UPSTREAM_TIMEOUT", "soon"},
		{"NUTRITION_VALIDATE", "maybe"},
		{"LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			chdir(t, t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
