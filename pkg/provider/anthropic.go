package provider

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mmichie/pipes/pkg/config"
	perrors "github.com/mmichie/pipes/pkg/errors"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicProvider implements the Provider interface for the Anthropic messages API
type AnthropicProvider struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int
}

// AnthropicFactory creates Anthropic providers
type AnthropicFactory struct{}

// Name returns the provider name
func (f *AnthropicFactory) Name() string {
	return "anthropic"
}

// Create returns a new Anthropic provider
func (f *AnthropicFactory) Create(cfg config.Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, perrors.New("anthropic", "create", perrors.ErrInvalidConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicProvider{
		client:      anthropic.NewClient(opts...),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// GetAvailableModels returns the default Anthropic model
func (f *AnthropicFactory) GetAvailableModels() []string {
	return []string{defaultAnthropicModel}
}

// GetCapabilities returns Anthropic capabilities
func (f *AnthropicFactory) GetCapabilities() []string {
	return []string{"text"}
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Model returns the current model
func (p *AnthropicProvider) Model() string {
	return p.model
}

// Capabilities returns supported capabilities
func (p *AnthropicProvider) Capabilities() []string {
	return []string{"text"}
}

// GenerateResponse sends the prompt as a single user message
func (p *AnthropicProvider) GenerateResponse(ctx context.Context, request Request) (Response, error) {
	// The messages API requires max_tokens
	maxTokens := pickInt(request.MaxTokens, pickInt(p.maxTokens, 1024))

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(pick(request.Temperature, p.temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(request.Prompt)),
		},
	})
	if err != nil {
		return Response{}, perrors.New("anthropic", "generate_response", err)
	}

	if len(msg.Content) == 0 {
		return Response{}, perrors.New("anthropic", "generate_response", perrors.ErrEmptyResponse)
	}

	var content strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	input := int(msg.Usage.InputTokens)
	output := int(msg.Usage.OutputTokens)

	return Response{
		Content:  content.String(),
		Model:    p.model,
		Provider: "anthropic",
		Usage: &UsageInfo{
			PromptTokens:     input,
			CompletionTokens: output,
			TotalTokens:      input + output,
		},
	}, nil
}

func init() {
	if err := Register(&AnthropicFactory{}); err != nil {
		panic(err)
	}
}
