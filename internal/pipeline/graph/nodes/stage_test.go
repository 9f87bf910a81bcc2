package nodes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia-assistant/server/internal/pipeline/model"
)

func TestRunStage_HandledFailureBecomesStateError(t *testing.T) {
	in := model.NewState(model.RunInput{UserInput: "   "})

	out, err := runStage(context.Background(), NewInputValidator(), in)
	require.NoError(t, err)
	assert.False(t, out.InputValid)
	assert.Equal(t, "Por favor ingresa una pregunta o mensaje", out.Error)
}

func TestRunStage_UnexpectedErrorPropagates(t *testing.T) {
	boom := errors.New("disk on fire")
	in := model.State{UserInput: "hola"}

	out, err := runStage(context.Background(), failingStage{err: boom}, in)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnexpected)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, in, out)
}

func TestRunStage_RecoversPanics(t *testing.T) {
	_, err := runStage(context.Background(), panickingStage{}, model.State{})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnexpected)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestInputValidator(t *testing.T) {
	t.Run("trims and counts words", func(t *testing.T) {
		in := model.State{UserInput: "  What is 2+2?  ", Error: "stale"}

		out, err := NewInputValidator().Run(context.Background(), in)
		require.NoError(t, err)
		assert.True(t, out.InputValid)
		assert.Equal(t, "What is 2+2?", out.ProcessedInput)
		assert.Equal(t, 3, out.InputLength)
		assert.Empty(t, out.Error)
		assert.Equal(t, "  What is 2+2?  ", out.UserInput)
	})

	t.Run("leaves trimmed input unchanged", func(t *testing.T) {
		in := model.State{UserInput: "What is 2+2?"}

		out, err := NewInputValidator().Run(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, in.UserInput, out.ProcessedInput)

		again, err := NewInputValidator().Run(context.Background(), model.State{UserInput: out.ProcessedInput})
		require.NoError(t, err)
		assert.Equal(t, out.ProcessedInput, again.ProcessedInput)
	})

	t.Run("rejects blank input", func(t *testing.T) {
		for _, input := range []string{"", "   ", "\n\t"} {
			out, err := NewInputValidator().Run(context.Background(), model.State{UserInput: input})
			se, ok := model.AsStageError(err)
			require.True(t, ok, "input %q", input)
			assert.Equal(t, model.KindValidation, se.Kind)
			assert.Equal(t, "Por favor ingresa una pregunta o mensaje", se.Message)
			assert.False(t, out.InputValid)
			assert.Empty(t, out.ProcessedInput)
		}
	})
}
