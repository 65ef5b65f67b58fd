// Package config provides configuration structures for model backends
package config

import (
	"os"
	"strconv"
)

// Config provides explicit configuration for model providers
type Config struct {
	// API credentials
	APIKey string

	// Model configuration
	Model       string
	MaxTokens   int
	Temperature float64

	// Service configuration
	BaseURL string
}

// ProviderOption allows optional configuration updates
type ProviderOption func(*Config)

// WithAPIKey sets the API key
func WithAPIKey(apiKey string) ProviderOption {
	return func(c *Config) {
		c.APIKey = apiKey
	}
}

// WithModel sets the model name
func WithModel(model string) ProviderOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithMaxTokens sets the maximum tokens for responses
func WithMaxTokens(maxTokens int) ProviderOption {
	return func(c *Config) {
		c.MaxTokens = maxTokens
	}
}

// WithTemperature sets the temperature for sampling
func WithTemperature(temperature float64) ProviderOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

// WithBaseURL sets the backend base URL
func WithBaseURL(baseURL string) ProviderOption {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// NewConfig creates a new configuration with defaults
func NewConfig(options ...ProviderOption) Config {
	config := Config{
		MaxTokens:   1024,
		Temperature: 0.7,
	}

	for _, option := range options {
		option(&config)
	}

	return config
}

// FromEnvironment loads configuration from environment variables
func FromEnvironment(prefix string) Config {
	if prefix != "" && prefix[len(prefix)-1] != '_' {
		prefix = prefix + "_"
	}

	return Config{
		APIKey:      os.Getenv(prefix + "API_KEY"),
		Model:       os.Getenv(prefix + "MODEL"),
		BaseURL:     os.Getenv(prefix + "BASE_URL"),
		MaxTokens:   parseEnvInt(prefix+"MAX_TOKENS", 1024),
		Temperature: parseEnvFloat(prefix+"TEMPERATURE", 0.7),
	}
}

// Merge combines this configuration with another, with the other taking precedence
func (c Config) Merge(other Config) Config {
	result := c

	if other.APIKey != "" {
		result.APIKey = other.APIKey
	}
	if other.Model != "" {
		result.Model = other.Model
	}
	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.MaxTokens != 0 {
		result.MaxTokens = other.MaxTokens
	}
	if other.Temperature != 0 {
		result.Temperature = other.Temperature
	}

	return result
}

// WithOptions returns a new Config with options applied
func (c Config) WithOptions(options ...ProviderOption) Config {
	result := c
	for _, option := range options {
		option(&result)
	}
	return result
}

func parseEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func parseEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}
