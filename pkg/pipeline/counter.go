package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
)

// CounterPipeline never consults a model. It answers with its call count.
type CounterPipeline struct {
	id    string
	name  string
	index atomic.Int64
	ready atomic.Bool
}

// NewCounterPipeline creates a counter pipeline
func NewCounterPipeline(id, name string) *CounterPipeline {
	return &CounterPipeline{id: id, name: name}
}

func (p *CounterPipeline) ID() string   { return p.id }
func (p *CounterPipeline) Name() string { return p.name }

// Startup marks the pipeline ready; there is nothing to build
func (p *CounterPipeline) Startup(ctx context.Context) error {
	p.ready.Store(true)
	return nil
}

// Shutdown has no effect
func (p *CounterPipeline) Shutdown(ctx context.Context) error {
	return nil
}

// Pipe returns "Index at N" where N counts this call. It works before Startup too.
func (p *CounterPipeline) Pipe(ctx context.Context, req Request) (string, error) {
	n := p.index.Add(1)
	return fmt.Sprintf("Index at %d", n), nil
}

func (p *CounterPipeline) Index() int64 {
	return p.index.Load()
}

func (p *CounterPipeline) State() State {
	if p.ready.Load() {
		return StateReady
	}
	return StateUninitialized
}
