package provider

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/mmichie/pipes/pkg/config"
	perrors "github.com/mmichie/pipes/pkg/errors"
)

const (
	// DefaultOllamaModel is the model the step-by-step pipeline is bound to
	DefaultOllamaModel = "llama3.2"

	defaultOllamaURL = "http://localhost:11434"
)

// OllamaProvider answers prompts with a locally hosted Ollama model
type OllamaProvider struct {
	llm         llms.Model
	model       string
	temperature float64
	maxTokens   int
}

// OllamaFactory creates Ollama providers
type OllamaFactory struct{}

// Name returns the provider name
func (f *OllamaFactory) Name() string {
	return "ollama"
}

// Create returns a new Ollama provider. No request is sent until the first prompt.
func (f *OllamaFactory) Create(cfg config.Config) (Provider, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, perrors.New("ollama", "create", errors.Wrap(err, "failed to create ollama client"))
	}

	return NewOllamaProvider(llm, model, cfg), nil
}

// GetAvailableModels returns the models pipelines bind to on Ollama
func (f *OllamaFactory) GetAvailableModels() []string {
	return []string{DefaultOllamaModel}
}

// GetCapabilities returns Ollama capabilities
func (f *OllamaFactory) GetCapabilities() []string {
	return []string{"text", "local"}
}

// NewOllamaProvider wraps any langchaingo model as an Ollama-named provider
func NewOllamaProvider(llm llms.Model, model string, cfg config.Config) *OllamaProvider {
	return &OllamaProvider{
		llm:         llm,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Model returns the bound model
func (p *OllamaProvider) Model() string {
	return p.model
}

// Capabilities returns supported capabilities
func (p *OllamaProvider) Capabilities() []string {
	return []string{"text"}
}

// GenerateResponse sends a single prompt to Ollama and waits for the completion
func (p *OllamaProvider) GenerateResponse(ctx context.Context, request Request) (Response, error) {
	opts := []llms.CallOption{
		llms.WithTemperature(pick(request.Temperature, p.temperature)),
	}
	if maxTokens := pickInt(request.MaxTokens, p.maxTokens); maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}

	content, err := llms.GenerateFromSinglePrompt(ctx, p.llm, request.Prompt, opts...)
	if err != nil {
		return Response{}, perrors.New("ollama", "generate_response", err)
	}

	return Response{
		Content:  content,
		Model:    p.model,
		Provider: "ollama",
	}, nil
}

func init() {
	if err := Register(&OllamaFactory{}); err != nil {
		panic(err)
	}
	if err := SetDefault("ollama"); err != nil {
		panic(err)
	}
}
