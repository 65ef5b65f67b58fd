// Package errors provides domain-specific error types for pipes
package errors

import (
	"errors"
	"fmt"
)

// Standard errors that can be used with errors.Is()
var (
	// ErrNotStarted indicates a pipeline was invoked before its chain was built
	ErrNotStarted = errors.New("pipeline not started")

	// ErrUnknownPipeline indicates no pipeline is registered under the requested id
	ErrUnknownPipeline = errors.New("unknown pipeline")

	// ErrInvalidConfig indicates a configuration error
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrBackend indicates the model backend failed to answer
	ErrBackend = errors.New("model backend failure")

	// ErrEmptyResponse indicates the backend answered without any text
	ErrEmptyResponse = errors.New("empty response from model")
)

// ProviderError wraps provider-related errors with context
type ProviderError struct {
	// Provider is the name of the component (e.g., "ollama", "pipeline")
	Provider string

	// Op is the operation being performed (e.g., "generate_response", "pipe")
	Op string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// New creates a new ProviderError
func New(provider, op string, err error) error {
	return &ProviderError{
		Provider: provider,
		Op:       op,
		Err:      err,
	}
}

// Wrap adds provider context to an existing error
func Wrap(err error, provider, op string) error {
	if err == nil {
		return nil
	}
	return &ProviderError{
		Provider: provider,
		Op:       op,
		Err:      err,
	}
}

// Is enables matching on provider and operation
func (e *ProviderError) Is(target error) bool {
	if errors.Is(e.Err, target) {
		return true
	}

	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}

	if t.Provider != "" && t.Provider != e.Provider {
		return false
	}
	if t.Op != "" && t.Op != e.Op {
		return false
	}
	if t.Provider != "" || t.Op != "" {
		return true
	}

	return errors.Is(e.Err, t.Err)
}

// IsNotStarted reports whether err comes from a pipeline that has no chain yet
func IsNotStarted(err error) bool {
	return errors.Is(err, ErrNotStarted)
}

// IsUnknownPipeline reports whether err refers to an unregistered pipeline
func IsUnknownPipeline(err error) bool {
	return errors.Is(err, ErrUnknownPipeline)
}
