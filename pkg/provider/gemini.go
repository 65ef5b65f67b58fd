package provider

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/mmichie/pipes/pkg/config"
	perrors "github.com/mmichie/pipes/pkg/errors"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiProvider implements the Provider interface for Google Gemini
type GeminiProvider struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// GeminiFactory creates Gemini providers
type GeminiFactory struct{}

// Name returns the provider name
func (f *GeminiFactory) Name() string {
	return "gemini"
}

// Create returns a new Gemini provider. The caller owns the returned client and must Close it.
func (f *GeminiFactory) Create(cfg config.Config) (Provider, error) {
	p, err := newGeminiProvider(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// newGeminiProvider builds the client from cfg; opts are appended after the
// options derived from cfg.
func newGeminiProvider(ctx context.Context, cfg config.Config, opts ...option.ClientOption) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, perrors.New("gemini", "create", perrors.ErrInvalidConfig)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, perrors.New("gemini", "create", errors.Wrap(err, "failed to create Gemini client"))
	}

	model := client.GenerativeModel(modelName)
	if cfg.Temperature > 0 {
		model.SetTemperature(float32(cfg.Temperature))
	}
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}

	return &GeminiProvider{
		client:    client,
		model:     model,
		modelName: modelName,
	}, nil
}

// GetAvailableModels returns the default Gemini model
func (f *GeminiFactory) GetAvailableModels() []string {
	return []string{defaultGeminiModel}
}

// GetCapabilities returns Gemini capabilities
func (f *GeminiFactory) GetCapabilities() []string {
	return []string{"text"}
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Model returns the current model
func (p *GeminiProvider) Model() string {
	return p.modelName
}

// Capabilities returns supported capabilities
func (p *GeminiProvider) Capabilities() []string {
	return []string{"text"}
}

// GenerateResponse sends one prompt to Gemini. Per-request sampling overrides are not applied.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, request Request) (Response, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(request.Prompt))
	if err != nil {
		return Response{}, perrors.New("gemini", "generate_response", errors.Wrap(err, "error generating content"))
	}

	if len(resp.Candidates) == 0 {
		return Response{}, perrors.New("gemini", "generate_response", perrors.ErrEmptyResponse)
	}

	// Only the first candidate is the answer; its text parts are joined.
	var content strings.Builder
	if candidate := resp.Candidates[0]; candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content.WriteString(string(text))
			}
		}
	}

	response := Response{
		Content:  content.String(),
		Model:    p.modelName,
		Provider: "gemini",
	}
	if usage := resp.UsageMetadata; usage != nil {
		response.Usage = &UsageInfo{
			PromptTokens:     int(usage.PromptTokenCount),
			CompletionTokens: int(usage.CandidatesTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
		}
	}

	return response, nil
}

// Close releases the underlying gRPC connection
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func init() {
	if err := Register(&GeminiFactory{}); err != nil {
		panic(err)
	}
}
