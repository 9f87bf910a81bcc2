// Package artifacts renders answer documents and keeps them on local disk.
package artifacts

import (
	"io"
	"time"
)

const (
	DocumentTitle    = "Respuesta de IA Assistant"
	QuestionHeading  = "Tu pregunta:"
	AnswerHeading    = "Respuesta:"
	TimestampLayout  = "2006-01-02 15:04:05"
	ContentTypePDF   = "application/pdf"
	ContentTypeBytes = "application/octet-stream"
)

// Document is the content of one rendered artifact.
type Document struct {
	Title     string
	CreatedAt time.Time
	Question  string
	Answer    string
}

// NewDocument builds a Document with the fixed title.
func NewDocument(question, answer string, at time.Time) Document {
	return Document{
		Title:     DocumentTitle,
		CreatedAt: at,
		Question:  question,
		Answer:    answer,
	}
}

// Capability is the result of asking a renderer whether it can run here.
type Capability int

const (
	Unavailable Capability = iota
	Available
)

func (c Capability) String() string {
	if c == Available {
		return "available"
	}
	return "unavailable"
}

// Renderer writes a Document in one concrete format.
type Renderer interface {
	// Capability is an environment check, independent of the document.
	Capability() Capability
	// Extension is the file extension without the dot.
	Extension() string
	// ContentType is the MIME type used when the artifact is attached.
	ContentType() string
	Render(w io.Writer, doc Document) error
}
