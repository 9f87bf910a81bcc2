package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunInput is the raw caller input for one run.
type RunInput struct {
	ID             uuid.UUID `json:"id"`
	UserInput      string    `json:"user_input"`
	RecipientEmail string    `json:"recipient_email,omitempty"`
	UserFeedback   string    `json:"user_feedback,omitempty"`
}

// RunRecord is the summary of a finished run kept for the result page.
type RunRecord struct {
	ID                uuid.UUID `json:"id"`
	Question          string    `json:"question"`
	Answer            string    `json:"answer,omitempty"`
	ModelUsed         string    `json:"model_used,omitempty"`
	ArtifactFilename  string    `json:"artifact_filename,omitempty"`
	IsTextFile        bool      `json:"is_text_file,omitempty"`
	RecipientEmail    string    `json:"recipient_email,omitempty"`
	EmailSent         bool      `json:"email_sent"`
	FeedbackProcessed bool      `json:"feedback_processed"`
	FeedbackSentiment Sentiment `json:"feedback_sentiment,omitempty"`
	Error             string    `json:"error,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewRunRecord summarises the terminal state of a run.
func NewRunRecord(in RunInput, s State, at time.Time) RunRecord {
	return RunRecord{
		ID:                in.ID,
		Question:          in.UserInput,
		Answer:            s.LLMResponse,
		ModelUsed:         s.ModelUsed,
		ArtifactFilename:  s.PDFFilename,
		IsTextFile:        s.IsTextFile,
		RecipientEmail:    in.RecipientEmail,
		EmailSent:         s.EmailSent,
		FeedbackProcessed: s.FeedbackProcessed,
		FeedbackSentiment: s.FeedbackSentiment,
		Error:             s.Error,
		CreatedAt:         at,
	}
}

type RunRepository interface {
	// Save stores the record, replacing any record with the same ID
	Save(ctx context.Context, record RunRecord) error

	// Find loads a record by ID
	Find(ctx context.Context, id uuid.UUID) (*RunRecord, error)

	// Recent returns up to limit records, newest first
	Recent(ctx context.Context, limit int) ([]RunRecord, error)
}
