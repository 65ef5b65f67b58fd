// Package pipeline hosts single-turn prompt pipelines.
//
// A pipeline is started once by its host, answers any number of Pipe calls,
// and is shut down once. Every Pipe call bumps a per-pipeline counter.
package pipeline

import (
	"context"
)

// Pipeline is the lifecycle and invocation contract a host drives
type Pipeline interface {
	// ID is the stable identifier used for routing
	ID() string

	// Name is a human readable label
	Name() string

	// Startup prepares the pipeline. Calling it again after success is a no-op.
	Startup(ctx context.Context) error

	// Shutdown releases resources. It may be called any number of times.
	Shutdown(ctx context.Context) error

	// Pipe answers one user message
	Pipe(ctx context.Context, req Request) (string, error)

	// Index reports how many times Pipe has been called
	Index() int64

	// State reports whether Startup has completed
	State() State
}

// Request is one inbound chat turn.
//
// Only UserMessage reaches the model. ModelID, Messages and Body are carried
// so hosts can pass what they received, but no pipeline reads them: the
// model is fixed when the pipeline starts and no history is forwarded.
type Request struct {
	UserMessage string         `json:"user_message"`
	ModelID     string         `json:"model_id,omitempty"`
	Messages    []Message      `json:"messages,omitempty"`
	Body        map[string]any `json:"body,omitempty"`
}

// Message is a single conversation turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State is the lifecycle state of a pipeline
type State int

const (
	StateUninitialized State = iota
	StateReady
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Info is a point-in-time summary of a registered pipeline
type Info struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
	Index int64  `json:"index"`
}

func infoOf(p Pipeline) Info {
	return Info{
		ID:    p.ID(),
		Name:  p.Name(),
		Ready: p.State() == StateReady,
		Index: p.Index(),
	}
}
