package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 200, cfg.History.Capacity)
	require.Equal(t, 60*time.Second, cfg.Inference.TextTimeout())
	require.Equal(t, 120*time.Second, cfg.Inference.FileTimeout())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9999
history:
  capacity: 100
inference:
  provider: none
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, 100, cfg.History.Capacity)
	require.Equal(t, "none", cfg.Inference.Provider)
	// Untouched sections keep their defaults.
	require.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadInterpolatesEnvVars(t *testing.T) {
	t.Setenv("NG_TEST_API_KEY", "sk-test-123")

	path := writeConfig(t, `
inference:
  provider: openai
  api_key: ${NG_TEST_API_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "sk-test-123", cfg.Inference.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "config file not found")
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad provider", func(c *Config) { c.Inference.Provider = "gemini" }},
		{"openai without key", func(c *Config) { c.Inference.Provider = "openai"; c.Inference.APIKey = "" }},
		{"http without base url", func(c *Config) { c.Inference.BaseURL = "" }},
		{"zero capacity", func(c *Config) { c.History.Capacity = 0 }},
		{"zero timeout", func(c *Config) { c.Inference.TextTimeoutSeconds = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestGenerateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, GenerateSample(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
}
