package nodes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia-assistant/server/internal/pipeline/model"
)

var testAnswerConfig = model.AnswerModelConfig{
	Provider:    ProviderGroq,
	Model:       "llama-3.3-70b-versatile",
	MaxTokens:   1024,
	Temperature: 0.7,
	Timeout:     time.Second,
}

func TestAnswerGenerator_Success(t *testing.T) {
	cm := replying("4")
	cm.reply.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 20, CompletionTokens: 1, TotalTokens: 21}}
	in := model.State{InputValid: true, ProcessedInput: "What is 2+2?", Error: "stale"}

	out, err := NewAnswerGenerator(cm, testAnswerConfig).Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "4", out.LLMResponse)
	assert.Equal(t, "llama-3.3-70b-versatile", out.ModelUsed)
	assert.Empty(t, out.Error)

	require.Len(t, cm.messages, 2)
	assert.Equal(t, schema.System, cm.messages[0].Role)
	assert.Equal(t, "What is 2+2?", cm.messages[1].Content)

	require.NotNil(t, cm.options.Temperature)
	assert.InDelta(t, 0.7, *cm.options.Temperature, 1e-6)
	require.NotNil(t, cm.options.MaxTokens)
	assert.Equal(t, 1024, *cm.options.MaxTokens)
	require.NotNil(t, cm.options.Model)
	assert.Equal(t, "llama-3.3-70b-versatile", *cm.options.Model)
}

func TestAnswerGenerator_SkipsInvalidInput(t *testing.T) {
	cm := replying("never")
	in := model.State{InputValid: false, Error: "Por favor ingresa una pregunta o mensaje"}

	out, err := NewAnswerGenerator(cm, testAnswerConfig).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Zero(t, cm.calls)
}

func TestAnswerGenerator_Failures(t *testing.T) {
	cases := []struct {
		name    string
		cm      *fakeChatModel
		wantMsg string
	}{
		{
			name:    "provider error",
			cm:      &fakeChatModel{err: errors.New("rate limited")},
			wantMsg: "Error al generar respuesta: rate limited",
		},
		{
			name:    "empty completion",
			cm:      replying("   "),
			wantMsg: "Error al generar respuesta: model returned an empty completion",
		},
		{
			name:    "nil completion",
			cm:      &fakeChatModel{},
			wantMsg: "Error al generar respuesta: model returned an empty completion",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := model.State{InputValid: true, ProcessedInput: "What is 2+2?"}

			out, err := NewAnswerGenerator(tc.cm, testAnswerConfig).Run(context.Background(), in)
			se, ok := model.AsStageError(err)
			require.True(t, ok)
			assert.Equal(t, model.KindDependency, se.Kind)
			assert.Equal(t, tc.wantMsg, se.Message)
			assert.Empty(t, out.LLMResponse)
			assert.Empty(t, out.ModelUsed)
		})
	}
}
