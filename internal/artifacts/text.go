package artifacts

import (
	"bufio"
	"fmt"
	"io"
)

// TextRenderer is the plain-text fallback. It is always available.
type TextRenderer struct{}

func NewTextRenderer() *TextRenderer { return &TextRenderer{} }

func (TextRenderer) Capability() Capability { return Available }
func (TextRenderer) Extension() string      { return "txt" }
func (TextRenderer) ContentType() string    { return ContentTypeBytes }

func (TextRenderer) Render(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "=== %s ===\n\n", doc.Title)
	fmt.Fprintf(bw, "Fecha: %s\n\n", doc.CreatedAt.Format(TimestampLayout))
	fmt.Fprintf(bw, "%s\n%s\n\n", QuestionHeading, doc.Question)
	fmt.Fprintf(bw, "%s\n%s", AnswerHeading, doc.Answer)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write text document: %w", err)
	}
	return nil
}
