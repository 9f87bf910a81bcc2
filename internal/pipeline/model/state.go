package model

import "strings"

// State is the record threaded through one run of the pipeline.
//
// Ownership model:
//   - A State is created by the caller from a RunInput, passed by value from
//     node to node and returned to the caller once the graph reaches END.
//   - Nodes never modify the value they receive; they derive the next value
//     with Merge. No State is shared between runs, so no locking is needed.
//   - Text fields use the empty string for "absent" and flags use false.
type State struct {
	// Caller input
	UserInput      string `json:"user_input"`
	RecipientEmail string `json:"recipient_email,omitempty"`
	UserFeedback   string `json:"user_feedback,omitempty"`

	// Input validation
	InputValid     bool   `json:"input_valid"`
	ProcessedInput string `json:"processed_input,omitempty"`
	InputLength    int    `json:"input_length,omitempty"`

	// Answer generation
	LLMResponse string `json:"llm_response,omitempty"`
	ModelUsed   string `json:"model_used,omitempty"`

	// Document rendering
	PDFPath     string `json:"pdf_path,omitempty"`
	PDFFilename string `json:"pdf_filename,omitempty"`
	PDFPages    int    `json:"pdf_pages,omitempty"`
	IsTextFile  bool   `json:"is_text_file,omitempty"`

	// Document delivery
	EmailSent bool   `json:"email_sent"`
	Recipient string `json:"recipient,omitempty"`

	// Feedback capture
	FeedbackReceived  bool      `json:"feedback_received"`
	FeedbackText      string    `json:"feedback_text,omitempty"`
	FeedbackSentiment Sentiment `json:"feedback_sentiment,omitempty"`
	FeedbackProcessed bool      `json:"feedback_processed"`

	// Last error reported by any stage; empty means no error.
	Error string `json:"error,omitempty"`
}

// Patch lists the fields a stage overwrites. Nil fields are left untouched,
// so a merge can only ever add or replace values, never drop one.
type Patch struct {
	InputValid     *bool
	ProcessedInput *string
	InputLength    *int

	LLMResponse *string
	ModelUsed   *string

	PDFPath     *string
	PDFFilename *string
	PDFPages    *int
	IsTextFile  *bool

	EmailSent *bool
	Recipient *string

	FeedbackReceived  *bool
	FeedbackText      *string
	FeedbackSentiment *Sentiment
	FeedbackProcessed *bool

	Error *string
}

// NewState builds the initial state of a run from the caller's input.
func NewState(in RunInput) State {
	return State{
		UserInput:      in.UserInput,
		RecipientEmail: in.RecipientEmail,
		UserFeedback:   in.UserFeedback,
	}
}

// Merge returns a copy of s with every non-nil field of p applied.
func (s State) Merge(p Patch) State {
	apply(&s.InputValid, p.InputValid)
	apply(&s.ProcessedInput, p.ProcessedInput)
	apply(&s.InputLength, p.InputLength)
	apply(&s.LLMResponse, p.LLMResponse)
	apply(&s.ModelUsed, p.ModelUsed)
	apply(&s.PDFPath, p.PDFPath)
	apply(&s.PDFFilename, p.PDFFilename)
	apply(&s.PDFPages, p.PDFPages)
	apply(&s.IsTextFile, p.IsTextFile)
	apply(&s.EmailSent, p.EmailSent)
	apply(&s.Recipient, p.Recipient)
	apply(&s.FeedbackReceived, p.FeedbackReceived)
	apply(&s.FeedbackText, p.FeedbackText)
	apply(&s.FeedbackSentiment, p.FeedbackSentiment)
	apply(&s.FeedbackProcessed, p.FeedbackProcessed)
	apply(&s.Error, p.Error)
	return s
}

// WithError returns a copy of s whose error slot holds msg.
func (s State) WithError(msg string) State {
	return s.Merge(Patch{Error: Ptr(msg)})
}

// HasError reports whether a stage left an error message.
func (s State) HasError() bool { return s.Error != "" }

// HasResponse reports whether the model produced an answer.
func (s State) HasResponse() bool { return s.LLMResponse != "" }

// HasArtifact reports whether a document was rendered.
func (s State) HasArtifact() bool { return s.PDFPath != "" }

// WantsDelivery reports whether the caller asked for the document by mail.
func (s State) WantsDelivery() bool { return strings.TrimSpace(s.RecipientEmail) != "" }

// Failed returns the minimal state reported when a run aborts unexpectedly.
func Failed(msg string) State {
	return State{Error: msg}
}

// Ptr returns a pointer to v; it keeps patch literals on one line.
func Ptr[T any](v T) *T {
	return &v
}

// ClearError is the patch value that marks the error slot absent.
func ClearError() *string {
	return Ptr("")
}

func apply[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
