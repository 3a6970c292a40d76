package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"translation-agent/backend/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RELAY_DATA_DIR", "")
	t.Setenv("RELAY_PROVIDER", "")
	t.Setenv("RELAY_MODEL", "")
	t.Setenv("OPENAI_BASE_URL", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "data/relay.db", cfg.DBPath)
	require.Equal(t, config.ProviderGemini, cfg.Provider)
	require.Equal(t, 1000, cfg.MaxOutputTokens)
	require.Equal(t, 10, cfg.AIQPS)
	require.Equal(t, 7*24*time.Hour, cfg.CacheTTL)
	require.True(t, cfg.AllowKeyOverride)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)

	openai, ok := cfg.ProviderConfig(config.ProviderOpenAI)
	require.True(t, ok)
	require.Equal(t, "https://api.openai.com/v1", openai.BaseURL)
}

func TestLoad_ModelOverrideAppliesToDefaultProvider(t *testing.T) {
	t.Setenv("RELAY_PROVIDER", "OpenAI")
	t.Setenv("RELAY_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, config.ProviderOpenAI, cfg.Provider)

	openai, _ := cfg.ProviderConfig(config.ProviderOpenAI)
	require.Equal(t, "gpt-4o-mini", openai.Model)
	require.Equal(t, "sk-test", openai.APIKey)

	gemini, _ := cfg.ProviderConfig(config.ProviderGemini)
	require.Empty(t, gemini.Model)
}

func TestLoad_InvalidProvider(t *testing.T) {
	t.Setenv("RELAY_PROVIDER", "mistral")

	_, err := config.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "RELAY_PROVIDER")
}

func TestLoad_InvalidNumbers(t *testing.T) {
	t.Setenv("RELAY_AI_QPS", "many")
	_, err := config.Load()
	require.Error(t, err)

	t.Setenv("RELAY_AI_QPS", "")
	t.Setenv("RELAY_CACHE_TTL", "a week")
	_, err = config.Load()
	require.Error(t, err)

	t.Setenv("RELAY_CACHE_TTL", "")
	t.Setenv("RELAY_MAX_OUTPUT_TOKENS", "0")
	_, err = config.Load()
	require.Error(t, err)
}

func TestLoad_CORSOriginsList(t *testing.T) {
	t.Setenv("RELAY_CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}
