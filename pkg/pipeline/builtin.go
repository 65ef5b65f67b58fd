package pipeline

import (
	"context"

	"github.com/mmichie/pipes/pkg/chain"
	"github.com/mmichie/pipes/pkg/config"
	"github.com/mmichie/pipes/pkg/provider"
)

// Builtin pipeline identifiers
const (
	LangchainID = "langchain"
	CounterID   = "test"
)

// NewStepByStep creates the step-by-step question pipeline. The provider is
// created from the named factory when the pipeline starts.
func NewStepByStep(id, providerName string, cfg config.Config, opts ...Option) *ChainPipeline {
	build := func(ctx context.Context) (*chain.Chain, error) {
		p, err := provider.Create(providerName, cfg)
		if err != nil {
			return nil, err
		}
		return chain.StepByStep(p)
	}
	return NewChainPipeline(id, "Step-by-step ("+providerName+")", build, opts...)
}

// RegisterBuiltins adds the step-by-step pipeline on providerName and the counter pipeline
func RegisterBuiltins(r *Registry, providerName string, cfg config.Config, opts ...Option) error {
	if err := r.Register(NewStepByStep(LangchainID, providerName, cfg, opts...)); err != nil {
		return err
	}
	return r.Register(NewCounterPipeline(CounterID, "Counter"))
}
