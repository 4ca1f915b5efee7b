package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8200", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Store config
	assert.Equal(t, "https://store.connhub.io/api/v1", cfg.Store.BaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Store.RefreshInterval)
	assert.Equal(t, 10*time.Second, cfg.Store.RequestTimeout)

	// Modules / data dirs
	assert.Equal(t, "./modules", cfg.Modules.Dir)
	assert.Equal(t, "./data", cfg.Data.Dir)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadOrDefault(t *testing.T) {
	// Should return default when no env vars set
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8200", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                   "9000",
		"HOST":                   "127.0.0.1",
		"STORE_URL":              "http://store.local/api",
		"STORE_REFRESH_INTERVAL": "5m",
		"STORE_REQUEST_TIMEOUT":  "3s",
		"MODULES_DIR":            "/var/lib/connhub/modules",
		"DATA_DIR":               "/var/lib/connhub/data",
		"LOG_LEVEL":              "debug",
		"LOG_DEV":                "true",
		"RATE_LIMIT_RPS":         "500",
		"RATE_LIMIT_BURST":       "1000",
		"RATE_LIMIT_ENABLED":     "false",
	}

	for key, value := range envVars {
		err := os.Setenv(key, value)
		require.NoError(t, err)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	// Verify server config
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// Verify store config
	assert.Equal(t, "http://store.local/api", cfg.Store.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Store.RefreshInterval)
	assert.Equal(t, 3*time.Second, cfg.Store.RequestTimeout)

	// Verify directories
	assert.Equal(t, "/var/lib/connhub/modules", cfg.Modules.Dir)
	assert.Equal(t, "/var/lib/connhub/data", cfg.Data.Dir)

	// Verify logging config
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	// Verify rate limit config
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	err := os.Setenv("PORT", "3000")
	require.NoError(t, err)
	defer os.Unsetenv("PORT")

	err = os.Setenv("LOG_LEVEL", "warn")
	require.NoError(t, err)
	defer os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)

	// Verify overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Verify default values still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "https://store.connhub.io/api/v1", cfg.Store.BaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Store.RefreshInterval)
}

func TestStoreConfig(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		interval     string
		wantURL      string
		wantInterval time.Duration
	}{
		{
			name:         "default values",
			wantURL:      "https://store.connhub.io/api/v1",
			wantInterval: 15 * time.Minute,
		},
		{
			name:         "custom url",
			url:          "http://mirror.internal/api",
			wantURL:      "http://mirror.internal/api",
			wantInterval: 15 * time.Minute,
		},
		{
			name:         "custom interval",
			interval:     "1h",
			wantURL:      "https://store.connhub.io/api/v1",
			wantInterval: time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("STORE_URL")
			os.Unsetenv("STORE_REFRESH_INTERVAL")

			if tt.url != "" {
				err := os.Setenv("STORE_URL", tt.url)
				require.NoError(t, err)
				defer os.Unsetenv("STORE_URL")
			}
			if tt.interval != "" {
				err := os.Setenv("STORE_REFRESH_INTERVAL", tt.interval)
				require.NoError(t, err)
				defer os.Unsetenv("STORE_REFRESH_INTERVAL")
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantURL, cfg.Store.BaseURL)
			assert.Equal(t, tt.wantInterval, cfg.Store.RefreshInterval)
		})
	}
}

func TestRateLimitConfig(t *testing.T) {
	tests := []struct {
		name        string
		rps         string
		burst       string
		enabled     string
		wantRPS     int
		wantBurst   int
		wantEnabled bool
	}{
		{
			name:        "default values",
			wantRPS:     100,
			wantBurst:   200,
			wantEnabled: true,
		},
		{
			name:        "high limits",
			rps:         "1000",
			burst:       "2000",
			wantRPS:     1000,
			wantBurst:   2000,
			wantEnabled: true,
		},
		{
			name:        "disabled",
			enabled:     "false",
			wantRPS:     100,
			wantBurst:   200,
			wantEnabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("RATE_LIMIT_RPS")
			os.Unsetenv("RATE_LIMIT_BURST")
			os.Unsetenv("RATE_LIMIT_ENABLED")

			if tt.rps != "" {
				err := os.Setenv("RATE_LIMIT_RPS", tt.rps)
				require.NoError(t, err)
				defer os.Unsetenv("RATE_LIMIT_RPS")
			}
			if tt.burst != "" {
				err := os.Setenv("RATE_LIMIT_BURST", tt.burst)
				require.NoError(t, err)
				defer os.Unsetenv("RATE_LIMIT_BURST")
			}
			if tt.enabled != "" {
				err := os.Setenv("RATE_LIMIT_ENABLED", tt.enabled)
				require.NoError(t, err)
				defer os.Unsetenv("RATE_LIMIT_ENABLED")
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantRPS, cfg.RateLimit.RequestsPerSecond)
			assert.Equal(t, tt.wantBurst, cfg.RateLimit.Burst)
			assert.Equal(t, tt.wantEnabled, cfg.RateLimit.Enabled)
		})
	}
}
