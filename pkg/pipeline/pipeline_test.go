package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmichie/pipes/pkg/chain"
	perrors "github.com/mmichie/pipes/pkg/errors"
	"github.com/mmichie/pipes/pkg/provider"
	"github.com/mmichie/pipes/pkg/provider/mocks"
)

const renderedQuestion = "Question: What is 2+2?\n\nAnswer: Let's think step by step."

func echo(ctx context.Context, req provider.Request) (provider.Response, error) {
	return provider.Response{Content: req.Prompt}, nil
}

func newEchoPipeline(t *testing.T) (*ChainPipeline, *mocks.MockProvider) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mp := mocks.NewMockProvider(ctrl)
	mp.EXPECT().Name().Return("mock").AnyTimes()
	mp.EXPECT().Model().Return("echo").AnyTimes()

	p := NewChainPipeline("langchain", "Echo", func(ctx context.Context) (*chain.Chain, error) {
		return chain.StepByStep(mp)
	})
	return p, mp
}

func TestChainPipelineCountsCalls(t *testing.T) {
	p, mp := newEchoPipeline(t)
	mp.EXPECT().GenerateResponse(gomock.Any(), gomock.Any()).DoAndReturn(echo).Times(5)

	ctx := context.Background()
	require.NoError(t, p.Startup(ctx))

	for i := 0; i < 5; i++ {
		_, err := p.Pipe(ctx, Request{UserMessage: "q"})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(5), p.Index())
}

func TestChainPipelineBeforeStartup(t *testing.T) {
	p, _ := newEchoPipeline(t)

	answer, err := p.Pipe(context.Background(), Request{UserMessage: "What is 2+2?"})

	assert.Empty(t, answer)
	assert.ErrorIs(t, err, perrors.ErrNotStarted)
	assert.True(t, perrors.IsNotStarted(err))
	assert.Equal(t, StateUninitialized, p.State())
	assert.Equal(t, int64(1), p.Index(), "failed calls are still counted")
}

func TestChainPipelineEchoesRenderedTemplate(t *testing.T) {
	p, mp := newEchoPipeline(t)
	mp.EXPECT().GenerateResponse(gomock.Any(), provider.Request{Prompt: renderedQuestion}).DoAndReturn(echo)

	ctx := context.Background()
	require.NoError(t, p.Startup(ctx))
	assert.Equal(t, StateReady, p.State())

	answer, err := p.Pipe(ctx, Request{UserMessage: "What is 2+2?"})
	require.NoError(t, err)
	assert.Equal(t, renderedQuestion, answer)
}

func TestChainPipelineIgnoresModelMessagesAndBody(t *testing.T) {
	p, mp := newEchoPipeline(t)
	mp.EXPECT().GenerateResponse(gomock.Any(), provider.Request{Prompt: renderedQuestion}).DoAndReturn(echo).Times(3)

	ctx := context.Background()
	require.NoError(t, p.Startup(ctx))

	requests := []Request{
		{UserMessage: "What is 2+2?"},
		{UserMessage: "What is 2+2?", ModelID: "gpt-4o", Body: map[string]any{"stream": true, "temperature": 2}},
		{UserMessage: "What is 2+2?", ModelID: "other", Messages: []Message{
			{Role: "system", Content: "Answer in French."},
			{Role: "user", Content: "Hello"},
		}},
	}

	for _, req := range requests {
		answer, err := p.Pipe(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, renderedQuestion, answer)
	}
}

func TestChainPipelinePropagatesBackendError(t *testing.T) {
	p, mp := newEchoPipeline(t)
	backendErr := perrors.New("ollama", "generate_response", errors.New("connection refused"))
	mp.EXPECT().GenerateResponse(gomock.Any(), gomock.Any()).Return(provider.Response{}, backendErr)

	ctx := context.Background()
	require.NoError(t, p.Startup(ctx))

	_, err := p.Pipe(ctx, Request{UserMessage: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, perrors.ErrBackend)
	assert.ErrorIs(t, err, backendErr)

	var pe *perrors.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "ollama", pe.Provider)
}

func TestChainPipelineStartupIsIdempotent(t *testing.T) {
	builds := 0
	p := NewChainPipeline("langchain", "Echo", func(ctx context.Context) (*chain.Chain, error) {
		builds++
		return chain.StepByStep(&closingProvider{})
	})

	ctx := context.Background()
	require.NoError(t, p.Startup(ctx))
	require.NoError(t, p.Startup(ctx))
	assert.Equal(t, 1, builds)
}

func TestChainPipelineStartupFailureCanRetry(t *testing.T) {
	fail := true
	p := NewChainPipeline("langchain", "Echo", func(ctx context.Context) (*chain.Chain, error) {
		if fail {
			return nil, perrors.ErrInvalidConfig
		}
		return chain.StepByStep(&closingProvider{})
	})

	ctx := context.Background()
	err := p.Startup(ctx)
	assert.ErrorIs(t, err, perrors.ErrInvalidConfig)
	assert.Equal(t, StateUninitialized, p.State())

	fail = false
	require.NoError(t, p.Startup(ctx))
	assert.Equal(t, StateReady, p.State())
}

func TestChainPipelineNilBuilder(t *testing.T) {
	p := NewChainPipeline("broken", "Broken", nil)
	assert.Error(t, p.Startup(context.Background()))
}

// closingProvider answers with a fixed string and counts Close calls
type closingProvider struct {
	mu     sync.Mutex
	closes int
}

func (c *closingProvider) GenerateResponse(ctx context.Context, req provider.Request) (provider.Response, error) {
	return provider.Response{Content: "ok"}, nil
}
func (c *closingProvider) Name() string           { return "closing" }
func (c *closingProvider) Model() string          { return "none" }
func (c *closingProvider) Capabilities() []string { return nil }
func (c *closingProvider) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return errors.New("already closed")
}

func TestChainPipelineShutdownRepeatable(t *testing.T) {
	ctx := context.Background()

	t.Run("Before startup", func(t *testing.T) {
		p, _ := newEchoPipeline(t)
		for i := 0; i < 3; i++ {
			assert.NoError(t, p.Shutdown(ctx))
		}
	})

	t.Run("Closes provider once", func(t *testing.T) {
		cp := &closingProvider{}
		p := NewChainPipeline("langchain", "Closing", func(ctx context.Context) (*chain.Chain, error) {
			return chain.StepByStep(cp)
		})
		require.NoError(t, p.Startup(ctx))

		for i := 0; i < 3; i++ {
			assert.NoError(t, p.Shutdown(ctx))
		}
		assert.Equal(t, 1, cp.closes)
	})
}

func TestCounterPipeline(t *testing.T) {
	p := NewCounterPipeline(CounterID, "Counter")
	ctx := context.Background()
	require.NoError(t, p.Startup(ctx))
	assert.Equal(t, StateReady, p.State())

	for _, want := range []string{"Index at 1", "Index at 2", "Index at 3"} {
		got, err := p.Pipe(ctx, Request{UserMessage: "anything", ModelID: "ignored"})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, int64(3), p.Index())

	assert.NoError(t, p.Shutdown(ctx))
	assert.NoError(t, p.Shutdown(ctx))
}

func TestCounterPipelineWithoutStartup(t *testing.T) {
	p := NewCounterPipeline(CounterID, "Counter")

	got, err := p.Pipe(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "Index at 1", got)
	assert.Equal(t, StateUninitialized, p.State())
}

func TestConcurrentPipeCounts(t *testing.T) {
	const workers, calls = 8, 50

	p, mp := newEchoPipeline(t)
	mp.EXPECT().GenerateResponse(gomock.Any(), gomock.Any()).DoAndReturn(echo).Times(workers * calls)

	ctx := context.Background()
	require.NoError(t, p.Startup(ctx))
	counter := NewCounterPipeline(CounterID, "Counter")

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < calls; i++ {
				_, _ = p.Pipe(ctx, Request{UserMessage: "q"})
				_, _ = counter.Pipe(ctx, Request{})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers*calls), p.Index())
	assert.Equal(t, int64(workers*calls), counter.Index())
}
