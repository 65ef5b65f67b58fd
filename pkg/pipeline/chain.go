package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/mmichie/pipes/pkg/chain"
	perrors "github.com/mmichie/pipes/pkg/errors"
	"github.com/mmichie/pipes/pkg/prompt"
)

// ChainBuilder constructs the chain a ChainPipeline answers with
type ChainBuilder func(ctx context.Context) (*chain.Chain, error)

// ChainPipeline forwards each user message through a prompt chain
type ChainPipeline struct {
	id     string
	name   string
	build  ChainBuilder
	logger zerolog.Logger

	index atomic.Int64
	chain atomic.Pointer[chain.Chain]

	mu     sync.Mutex
	closed bool
}

// Option configures a ChainPipeline
type Option func(*ChainPipeline)

// WithLogger sets the logger used for lifecycle events
func WithLogger(l zerolog.Logger) Option {
	return func(p *ChainPipeline) {
		p.logger = l
	}
}

// NewChainPipeline creates a pipeline whose chain is built by build on Startup
func NewChainPipeline(id, name string, build ChainBuilder, opts ...Option) *ChainPipeline {
	p := &ChainPipeline{
		id:     id,
		name:   name,
		build:  build,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *ChainPipeline) ID() string   { return p.id }
func (p *ChainPipeline) Name() string { return p.name }

// Startup builds the chain once. A failed build leaves the pipeline
// uninitialized so a later call can try again.
func (p *ChainPipeline) Startup(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.chain.Load() != nil {
		return nil
	}
	if p.build == nil {
		return perrors.New("pipeline", "startup", fmt.Errorf("%s: no chain builder", p.id))
	}

	c, err := p.build(ctx)
	if err != nil {
		return perrors.New("pipeline", "startup", fmt.Errorf("%s: %w", p.id, err))
	}
	if c == nil {
		return perrors.New("pipeline", "startup", fmt.Errorf("%s: builder returned no chain", p.id))
	}

	p.chain.Store(c)
	p.logger.Info().
		Str("pipeline", p.id).
		Str("provider", c.Provider().Name()).
		Str("model", c.Provider().Model()).
		Msg("pipeline started")
	return nil
}

// Shutdown closes the provider if it holds resources. It never fails.
func (p *ChainPipeline) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	c := p.chain.Load()
	if c == nil {
		return nil
	}
	p.closed = true

	if closer, ok := c.Provider().(io.Closer); ok {
		if err := closer.Close(); err != nil {
			p.logger.Warn().Err(err).Str("pipeline", p.id).Msg("closing provider")
		}
	}
	p.logger.Debug().Str("pipeline", p.id).Int64("index", p.index.Load()).Msg("pipeline stopped")
	return nil
}

// Pipe counts the call, then asks the chain. ModelID, Messages and Body are ignored.
func (p *ChainPipeline) Pipe(ctx context.Context, req Request) (string, error) {
	p.index.Add(1)

	c := p.chain.Load()
	if c == nil {
		return "", perrors.New("pipeline", "pipe", fmt.Errorf("%s: %w", p.id, perrors.ErrNotStarted))
	}

	answer, err := c.Invoke(ctx, map[string]any{prompt.QuestionVar: req.UserMessage})
	if err != nil {
		return "", fmt.Errorf("%w: %w", perrors.ErrBackend, err)
	}
	return answer, nil
}

func (p *ChainPipeline) Index() int64 {
	return p.index.Load()
}

func (p *ChainPipeline) State() State {
	if p.chain.Load() != nil {
		return StateReady
	}
	return StateUninitialized
}
