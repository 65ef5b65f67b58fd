package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmichie/pipes/pkg/config"
	perrors "github.com/mmichie/pipes/pkg/errors"
)

// mockFactory is a test factory
type mockFactory struct {
	name         string
	models       []string
	capabilities []string
	createError  error
}

func (f *mockFactory) Name() string {
	return f.name
}

func (f *mockFactory) Create(cfg config.Config) (Provider, error) {
	if f.createError != nil {
		return nil, f.createError
	}
	return &mockProvider{name: f.name, model: cfg.Model}, nil
}

func (f *mockFactory) GetAvailableModels() []string {
	return f.models
}

func (f *mockFactory) GetCapabilities() []string {
	return f.capabilities
}

// mockProvider is a test provider
type mockProvider struct {
	name  string
	model string
}

func (p *mockProvider) GenerateResponse(ctx context.Context, request Request) (Response, error) {
	return Response{Content: request.Prompt}, nil
}

func (p *mockProvider) Name() string {
	return p.name
}

func (p *mockProvider) Model() string {
	return p.model
}

func (p *mockProvider) Capabilities() []string {
	return []string{"test"}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	factory1 := &mockFactory{name: "test1", models: []string{"model1"}, capabilities: []string{"cap1"}}
	factory2 := &mockFactory{name: "test2", models: []string{"model2"}, capabilities: []string{"cap2"}}

	require.NoError(t, reg.RegisterFactory(factory1))

	defaultFactory, err := reg.GetDefaultFactory()
	require.NoError(t, err)
	assert.Equal(t, "test1", defaultFactory.Name(), "first factory should be default")

	require.NoError(t, reg.RegisterFactory(factory2))
	assert.Error(t, reg.RegisterFactory(factory1), "duplicate registration")

	assert.Equal(t, []string{"test1", "test2"}, reg.ListProviders())

	f, err := reg.GetFactory("test2")
	require.NoError(t, err)
	assert.Equal(t, "test2", f.Name())

	_, err = reg.GetFactory("missing")
	assert.Error(t, err)

	require.NoError(t, reg.SetDefaultFactory("test2"))
	info, err := reg.GetProviderInfo("test2")
	require.NoError(t, err)
	assert.True(t, info.IsDefault)
	assert.Equal(t, []string{"model2"}, info.Models)

	assert.Error(t, reg.SetDefaultFactory("missing"))
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	reg := NewRegistry()

	err := reg.RegisterFactory(&mockFactory{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, &perrors.ProviderError{Op: "register_factory"}))
}

func TestRegistryEmptyDefault(t *testing.T) {
	_, err := NewRegistry().GetDefaultFactory()
	assert.Error(t, err)
}

func TestCreateProvider(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterFactory(&mockFactory{name: "ok"}))
	require.NoError(t, reg.RegisterFactory(&mockFactory{name: "broken", createError: perrors.ErrInvalidConfig}))

	p, err := reg.CreateProvider("ok", config.NewConfig(config.WithModel("m")))
	require.NoError(t, err)
	assert.Equal(t, "ok", p.Name())
	assert.Equal(t, "m", p.Model())

	_, err = reg.CreateProvider("broken", config.NewConfig())
	assert.ErrorIs(t, err, perrors.ErrInvalidConfig)

	_, err = reg.CreateProvider("missing", config.NewConfig())
	assert.Error(t, err)
}

func TestGlobalRegistryBackends(t *testing.T) {
	assert.Equal(t, []string{"anthropic", "gemini", "ollama", "openai"}, List())

	def, err := GetDefault()
	require.NoError(t, err)
	assert.Equal(t, "ollama", def.Name())

	info, err := Info("ollama")
	require.NoError(t, err)
	assert.Contains(t, info.Models, DefaultOllamaModel)
}

func TestFactoriesRequireAPIKey(t *testing.T) {
	for _, name := range []string{"openai", "anthropic", "gemini"} {
		t.Run(name, func(t *testing.T) {
			_, err := Create(name, config.NewConfig())
			assert.ErrorIs(t, err, perrors.ErrInvalidConfig)
		})
	}
}
