package provider

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mmichie/pipes/pkg/config"
	perrors "github.com/mmichie/pipes/pkg/errors"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider implements the Provider interface for OpenAI chat completions
type OpenAIProvider struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
}

// OpenAIFactory creates OpenAI providers
type OpenAIFactory struct{}

// Name returns the provider name
func (f *OpenAIFactory) Name() string {
	return "openai"
}

// Create returns a new OpenAI provider
func (f *OpenAIFactory) Create(cfg config.Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, perrors.New("openai", "create", perrors.ErrInvalidConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIProvider{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// GetAvailableModels returns the default OpenAI model
func (f *OpenAIFactory) GetAvailableModels() []string {
	return []string{defaultOpenAIModel}
}

// GetCapabilities returns OpenAI capabilities
func (f *OpenAIFactory) GetCapabilities() []string {
	return []string{"text"}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Model returns the current model
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Capabilities returns supported capabilities for the current model
func (p *OpenAIProvider) Capabilities() []string {
	return []string{"text"}
}

// GenerateResponse sends a request to OpenAI and returns the response
func (p *OpenAIProvider) GenerateResponse(ctx context.Context, request Request) (Response, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(request.Prompt),
		},
		Temperature: openai.Float(pick(request.Temperature, p.temperature)),
	}
	if maxTokens := pickInt(request.MaxTokens, p.maxTokens); maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(maxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, perrors.New("openai", "generate_response", err)
	}

	if len(completion.Choices) == 0 {
		return Response{}, perrors.New("openai", "generate_response", perrors.ErrEmptyResponse)
	}

	return Response{
		Content:  completion.Choices[0].Message.Content,
		Model:    p.model,
		Provider: "openai",
		Usage: &UsageInfo{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}

func init() {
	if err := Register(&OpenAIFactory{}); err != nil {
		panic(err)
	}
}
