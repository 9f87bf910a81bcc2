package nodes

import (
	"context"
	"strings"

	"github.com/ia-assistant/server/internal/pipeline/model"
	logx "github.com/ia-assistant/server/pkg/logger"
)

// FeedbackRecorder classifies the optional feedback text. It never fails.
type FeedbackRecorder struct{}

func NewFeedbackRecorder() *FeedbackRecorder { return &FeedbackRecorder{} }

func (f *FeedbackRecorder) Name() string { return NodeCaptureFeedback }

func (f *FeedbackRecorder) Run(ctx context.Context, s model.State) (model.State, error) {
	text := strings.TrimSpace(s.UserFeedback)
	if text == "" {
		return s.Merge(model.Patch{
			FeedbackReceived:  model.Ptr(false),
			FeedbackProcessed: model.Ptr(false),
		}), nil
	}

	sentiment := ClassifyFeedback(text)
	logx.Info().Str("run_id", logx.RunID(ctx)).Str("sentiment", sentiment.String()).Msg("feedback captured")

	return s.Merge(model.Patch{
		FeedbackReceived:  model.Ptr(true),
		FeedbackText:      model.Ptr(text),
		FeedbackSentiment: model.Ptr(sentiment),
		FeedbackProcessed: model.Ptr(true),
	}), nil
}

// ClassifyFeedback matches keywords case-insensitively as substrings.
// Positive keywords win over negative ones.
func ClassifyFeedback(text string) model.Sentiment {
	lower := strings.ToLower(text)
	if containsAny(lower, model.PositiveKeywords) {
		return model.SentimentPositive
	}
	if containsAny(lower, model.NegativeKeywords) {
		return model.SentimentNegative
	}
	return model.SentimentNeutral
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
