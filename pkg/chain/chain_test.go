package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/mmichie/pipes/pkg/errors"
	"github.com/mmichie/pipes/pkg/prompt"
	"github.com/mmichie/pipes/pkg/provider"
	"github.com/mmichie/pipes/pkg/provider/mocks"
)

func TestNewRejectsMissingParts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tmpl, err := prompt.Get(prompt.BuiltinTemplates.StepByStep)
	require.NoError(t, err)

	_, err = New(nil, mocks.NewMockProvider(ctrl))
	assert.Error(t, err)

	_, err = New(tmpl, nil)
	assert.Error(t, err)
}

func TestStepByStepInvoke(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockProvider := mocks.NewMockProvider(ctrl)
	c, err := StepByStep(mockProvider)
	require.NoError(t, err)
	assert.Equal(t, prompt.StepByStepContent, c.Template().Content())
	assert.Same(t, mockProvider, c.Provider())

	ctx := context.Background()

	t.Run("Sends the rendered template", func(t *testing.T) {
		want := provider.Request{Prompt: "Question: What is 2+2?\n\nAnswer: Let's think step by step."}
		mockProvider.EXPECT().GenerateResponse(ctx, want).Return(provider.Response{Content: "2+2 is 4."}, nil)

		answer, err := c.Invoke(ctx, map[string]any{prompt.QuestionVar: "What is 2+2?"})

		assert.NoError(t, err)
		assert.Equal(t, "2+2 is 4.", answer)
	})

	t.Run("Returns content without post-processing", func(t *testing.T) {
		mockProvider.EXPECT().GenerateResponse(ctx, gomock.Any()).Return(provider.Response{Content: "\n  spaced  \n"}, nil)

		answer, err := c.Invoke(ctx, map[string]any{prompt.QuestionVar: "q"})

		assert.NoError(t, err)
		assert.Equal(t, "\n  spaced  \n", answer)
	})

	t.Run("Propagates backend errors", func(t *testing.T) {
		backendErr := perrors.New("ollama", "generate_response", errors.New("model \"llama3.2\" not found"))
		mockProvider.EXPECT().GenerateResponse(ctx, gomock.Any()).Return(provider.Response{}, backendErr)

		answer, err := c.Invoke(ctx, map[string]any{prompt.QuestionVar: "q"})

		assert.Empty(t, answer)
		assert.Same(t, backendErr, err)
	})

	t.Run("Missing question never reaches the backend", func(t *testing.T) {
		_, err := c.Invoke(ctx, map[string]any{})

		assert.Error(t, err)
	})
}
