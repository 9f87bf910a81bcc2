package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia-assistant/server/internal/pipeline/model"
)

func TestClassifyFeedback(t *testing.T) {
	cases := map[string]model.Sentiment{
		"Muy bueno, gracias":     model.SentimentPositive,
		"EXCELENTE":              model.SentimentPositive,
		"bueno pero algo malo":   model.SentimentPositive,
		"terrible respuesta":     model.SentimentNegative,
		"Me pareció MAL":         model.SentimentNegative,
		"ok":                     model.SentimentNeutral,
		"no tengo comentarios":   model.SentimentNeutral,
		"la respuesta fue útil.": model.SentimentPositive,
	}
	for text, want := range cases {
		assert.Equal(t, want, ClassifyFeedback(text), text)
	}
}

func TestFeedbackRecorder(t *testing.T) {
	t.Run("with feedback", func(t *testing.T) {
		in := model.State{UserFeedback: "  Muy bueno  ", Error: "Error al enviar email: x"}

		out, err := NewFeedbackRecorder().Run(context.Background(), in)
		require.NoError(t, err)
		assert.True(t, out.FeedbackReceived)
		assert.True(t, out.FeedbackProcessed)
		assert.Equal(t, "Muy bueno", out.FeedbackText)
		assert.Equal(t, model.SentimentPositive, out.FeedbackSentiment)
		assert.Equal(t, "Error al enviar email: x", out.Error)
	})

	t.Run("without feedback", func(t *testing.T) {
		for _, fb := range []string{"", "   "} {
			out, err := NewFeedbackRecorder().Run(context.Background(), model.State{UserFeedback: fb})
			require.NoError(t, err)
			assert.False(t, out.FeedbackReceived)
			assert.False(t, out.FeedbackProcessed)
			assert.Empty(t, out.FeedbackSentiment)
		}
	})
}

func TestRouteAfterRender(t *testing.T) {
	assert.Equal(t, NodeDeliverDocument, RouteAfterRender(model.State{RecipientEmail: "x@y.com"}))
	assert.Equal(t, NodeCaptureFeedback, RouteAfterRender(model.State{}))
	assert.Equal(t, NodeCaptureFeedback, RouteAfterRender(model.State{RecipientEmail: "   "}))

	next, err := NewDeliveryCondition()(context.Background(), model.State{RecipientEmail: "x@y.com"})
	require.NoError(t, err)
	assert.True(t, DeliveryBranchTargets()[next])
}
