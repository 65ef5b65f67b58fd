// Package chain composes a prompt template with a model provider
package chain

import (
	"context"
	"errors"

	perrors "github.com/mmichie/pipes/pkg/errors"
	"github.com/mmichie/pipes/pkg/prompt"
	"github.com/mmichie/pipes/pkg/provider"
)

// Chain renders a template and sends the result to one provider.
// It holds no mutable state and is safe for concurrent Invoke calls.
type Chain struct {
	template *prompt.Template
	provider provider.Provider
}

// New binds a template to a provider
func New(tmpl *prompt.Template, p provider.Provider) (*Chain, error) {
	if tmpl == nil {
		return nil, perrors.New("chain", "new", errors.New("no template configured"))
	}
	if p == nil {
		return nil, perrors.New("chain", "new", errors.New("no provider configured"))
	}

	return &Chain{template: tmpl, provider: p}, nil
}

// StepByStep binds the builtin step-by-step question template to p
func StepByStep(p provider.Provider) (*Chain, error) {
	tmpl, err := prompt.Get(prompt.BuiltinTemplates.StepByStep)
	if err != nil {
		return nil, err
	}
	return New(tmpl, p)
}

// Invoke renders the template with values and returns the model's answer verbatim.
// Provider errors are returned as they are.
func (c *Chain) Invoke(ctx context.Context, values map[string]any) (string, error) {
	rendered, err := c.template.Execute(values)
	if err != nil {
		return "", err
	}

	resp, err := c.provider.GenerateResponse(ctx, provider.Request{Prompt: rendered})
	if err != nil {
		return "", err
	}

	return resp.Content, nil
}

// Template returns the bound template
func (c *Chain) Template() *prompt.Template {
	return c.template
}

// Provider returns the bound provider
func (c *Chain) Provider() provider.Provider {
	return c.provider
}
