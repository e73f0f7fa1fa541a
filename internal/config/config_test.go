package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoadServerConfigVariants(t *testing.T) {
	cases := []struct {
		port string
		want string
	}{
		{"9090", ":9090"},
		{":9090", ":9090"},
		{"127.0.0.1:9090", "127.0.0.1:9090"},
	}

	for _, tc := range cases {
		t.Run(tc.port, func(t *testing.T) {
			t.Setenv("PORT", tc.port)

			cfg, err := loadServerConfig()
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.Addr)
		})
	}
}

func TestLoadServerConfigInvalid(t *testing.T) {
	t.Setenv("PORT", "80 80")

	_, err := loadServerConfig()
	require.Error(t, err)
}

func TestAIConfigEnabled(t *testing.T) {
	assert.False(t, AIConfig{}.Enabled())
	assert.False(t, AIConfig{APIKey: "key"}.Enabled())
	assert.False(t, AIConfig{Model: "doubao"}.Enabled())
	assert.True(t, AIConfig{Model: "doubao", APIKey: "key"}.Enabled())
	assert.True(t, AIConfig{Model: "doubao", AccessKey: "ak", SecretKey: "sk"}.Enabled())
	assert.False(t, AIConfig{Model: "doubao", AccessKey: "ak"}.Enabled())
}

func TestLoadAIConfigOptionalKnobs(t *testing.T) {
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("ARK_MODEL", "doubao")
	t.Setenv("ARK_TEMPERATURE", "0.7")
	t.Setenv("ARK_MAX_TOKENS", "512")

	cfg, err := loadAIConfig()
	require.NoError(t, err)

	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.7, *cfg.Temperature)
	require.NotNil(t, cfg.MaxTokens)
	assert.Equal(t, 512, *cfg.MaxTokens)
	assert.Nil(t, cfg.TopP)
	assert.True(t, cfg.Enabled())
}

func TestLoadAIConfigInvalidTemperature(t *testing.T) {
	t.Setenv("ARK_TEMPERATURE", "hot")

	_, err := loadAIConfig()
	require.Error(t, err)
}

func TestLoadMarketConfigDefaults(t *testing.T) {
	t.Setenv("MARKET_BASE_URL", "")
	t.Setenv("MARKET_TIMEOUT", "")

	cfg, err := loadMarketConfig()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoadMarketConfigOverrides(t *testing.T) {
	t.Setenv("MARKET_BASE_URL", "http://localhost:9000/")
	t.Setenv("MARKET_TIMEOUT", "30")

	cfg, err := loadMarketConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadMarketConfigInvalidTimeout(t *testing.T) {
	cases := []string{"abc", "0", "-5"}
	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("MARKET_TIMEOUT", raw)

			_, err := loadMarketConfig()
			require.Error(t, err)
		})
	}
}
