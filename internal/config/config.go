// Package config handles application configuration from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Inference InferenceConfig `yaml:"inference"`
	History   HistoryConfig   `yaml:"history"`
	RateLimit RateLimitConfig `yaml:"rate_limits"`
	Logging   LoggingConfig   `yaml:"logging"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type StorageConfig struct {
	Path string `yaml:"path"` // sqlite file backing the local key-value store
}

type InferenceConfig struct {
	Provider           string `yaml:"provider"` // http, openai, none
	BaseURL            string `yaml:"base_url"` // for http
	APIKey             string `yaml:"api_key"`  // for openai
	Model              string `yaml:"model"`    // for openai
	TextTimeoutSeconds int    `yaml:"text_timeout_seconds"`
	FileTimeoutSeconds int    `yaml:"file_timeout_seconds"`
}

// TextTimeout returns the inline text submission deadline.
func (c InferenceConfig) TextTimeout() time.Duration {
	return time.Duration(c.TextTimeoutSeconds) * time.Second
}

// FileTimeout returns the file job deadline.
func (c InferenceConfig) FileTimeout() time.Duration {
	return time.Duration(c.FileTimeoutSeconds) * time.Second
}

type HistoryConfig struct {
	Capacity        int `yaml:"capacity"`
	CSVPreviewChars int `yaml:"csv_preview_chars"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"default_requests_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type DefaultsConfig struct {
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "./data/newsguard.db",
		},
		Inference: InferenceConfig{
			Provider:           "http",
			BaseURL:            "http://127.0.0.1:5000",
			TextTimeoutSeconds: 60,
			FileTimeoutSeconds: 120,
		},
		History: HistoryConfig{
			Capacity:        200,
			CSVPreviewChars: 280,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Defaults: DefaultsConfig{
			Model:    "balanced",
			Language: "auto",
		},
	}
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run with --generate-config to create one)", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Interpolate environment variables
	content := interpolateEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// GenerateSample creates a sample configuration file.
func GenerateSample(path string) error {
	sample := `# NewsGuard Configuration
# See documentation for all options

server:
  port: 8080

storage:
  path: ./data/newsguard.db

inference:
  provider: http  # http, openai, or none (heuristic-only demo mode)
  base_url: http://127.0.0.1:5000
  text_timeout_seconds: 60
  file_timeout_seconds: 120

  # For OpenAI-backed classification:
  # provider: openai
  # model: gpt-4o-mini
  # api_key: ${OPENAI_API_KEY}

history:
  capacity: 200
  csv_preview_chars: 280

rate_limits:
  default_requests_per_minute: 60

logging:
  level: info  # debug, info, warn, error
  format: json # json or text

defaults:
  model: balanced  # fast, balanced, accurate, multilingual
  language: auto
`
	return os.WriteFile(path, []byte(sample), 0644)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	validProviders := map[string]bool{"http": true, "openai": true, "none": true}
	if !validProviders[c.Inference.Provider] {
		return fmt.Errorf("unsupported inference provider: %s", c.Inference.Provider)
	}

	switch c.Inference.Provider {
	case "http":
		if c.Inference.BaseURL == "" {
			return fmt.Errorf("inference base URL is required")
		}
	case "openai":
		if c.Inference.APIKey == "" {
			return fmt.Errorf("OpenAI API key is required")
		}
	}

	if c.Inference.TextTimeoutSeconds <= 0 || c.Inference.FileTimeoutSeconds <= 0 {
		return fmt.Errorf("inference timeouts must be positive")
	}

	if c.History.Capacity < 1 {
		return fmt.Errorf("history capacity must be at least 1, got %d", c.History.Capacity)
	}
	if c.History.CSVPreviewChars < 1 {
		return fmt.Errorf("csv preview length must be at least 1, got %d", c.History.CSVPreviewChars)
	}

	return nil
}

// interpolateEnvVars replaces ${VAR_NAME} with environment variable values.
func interpolateEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match // Keep original if not set
	})
}
