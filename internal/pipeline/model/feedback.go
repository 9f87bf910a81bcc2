package model

// Sentiment is the coarse classification of user feedback.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

func (s Sentiment) String() string {
	return string(s)
}

// Keyword lists are checked in declaration order: positive first, then negative.
var (
	PositiveKeywords = []string{"bueno", "excelente", "útil", "gracias", "bien"}
	NegativeKeywords = []string{"malo", "terrible", "inútil", "mal"}
)
