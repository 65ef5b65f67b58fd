// Package provider defines the model backend interface used by prompt chains
package provider

import (
	"context"

	"github.com/mmichie/pipes/pkg/config"
)

//go:generate mockgen -destination=./mocks/mock_provider.go -package=mocks github.com/mmichie/pipes/pkg/provider Provider

// Provider represents a language-model backend
type Provider interface {
	// GenerateResponse sends one prompt and waits for the complete answer
	GenerateResponse(ctx context.Context, request Request) (Response, error)

	// Information methods
	Name() string
	Model() string
	Capabilities() []string
}

// Request contains all parameters for a generation request
type Request struct {
	// Prompt is the fully rendered prompt text
	Prompt string

	// Temperature controls randomness (0.0-1.0); zero means the provider default
	Temperature float64

	// MaxTokens limits the response length; zero means the provider default
	MaxTokens int
}

// Response contains the output from a provider
type Response struct {
	// Content is the text response, exactly as the backend returned it
	Content string

	// Usage contains token usage information when the backend reports it
	Usage *UsageInfo

	// Model identifies the model used
	Model string

	// Provider identifies the provider used
	Provider string
}

// UsageInfo contains token usage statistics
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ProviderFactory creates Provider instances
type ProviderFactory interface {
	// Name returns the name of this provider factory
	Name() string

	// Create returns a new Provider instance
	Create(cfg config.Config) (Provider, error)

	// GetAvailableModels returns the models this factory knows about
	GetAvailableModels() []string

	// GetCapabilities returns a list of capabilities supported by this provider
	GetCapabilities() []string
}

func pick(value, fallback float64) float64 {
	if value > 0 {
		return value
	}
	return fallback
}

func pickInt(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
