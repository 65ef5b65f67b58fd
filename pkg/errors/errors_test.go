package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestProviderError(t *testing.T) {
	baseErr := errors.New("connection refused")
	err := New("ollama", "generate_response", baseErr)

	expected := "provider ollama: generate_response: connection refused"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if unwrapped := errors.Unwrap(err); unwrapped != baseErr {
		t.Errorf("Expected unwrapped error %v, got %v", baseErr, unwrapped)
	}

	notStarted := New("pipeline", "pipe", ErrNotStarted)
	if !errors.Is(notStarted, ErrNotStarted) {
		t.Error("errors.Is failed with standard error")
	}

	pattern := &ProviderError{Provider: "ollama"}
	if !errors.Is(err, pattern) {
		t.Error("errors.Is failed with provider pattern matching")
	}

	wrongProvider := &ProviderError{Provider: "openai"}
	if errors.Is(err, wrongProvider) {
		t.Error("errors.Is incorrectly matched different provider")
	}

	opPattern := &ProviderError{Op: "generate_response"}
	if !errors.Is(err, opPattern) {
		t.Error("errors.Is failed with operation pattern matching")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ollama", "generate") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	wrapped := Wrap(ErrBackend, "anthropic", "generate_response")
	if !errors.Is(wrapped, ErrBackend) {
		t.Error("Wrapped error should match original with errors.Is")
	}

	var provErr *ProviderError
	if !errors.As(wrapped, &provErr) {
		t.Fatal("Wrapped error should be a ProviderError")
	}
	if provErr.Provider != "anthropic" || provErr.Op != "generate_response" {
		t.Errorf("Expected provider 'anthropic' and op 'generate_response', got %q and %q",
			provErr.Provider, provErr.Op)
	}
}

func TestHelpers(t *testing.T) {
	err := fmt.Errorf("pipe step-by-step: %w", New("pipeline", "pipe", ErrNotStarted))
	if !IsNotStarted(err) {
		t.Error("IsNotStarted should see through fmt wrapping")
	}
	if IsUnknownPipeline(err) {
		t.Error("IsUnknownPipeline matched a not-started error")
	}

	unknown := New("registry", "pipe", fmt.Errorf("%w: %q", ErrUnknownPipeline, "nope"))
	if !IsUnknownPipeline(unknown) {
		t.Error("IsUnknownPipeline failed")
	}
}
