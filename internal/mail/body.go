package mail

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

// AnswerSubject is the subject line of every answer email.
const AnswerSubject = "Tu respuesta de IA Assistant"

//go:embed template/answer_body.txt
var answerBodyTemplate string

var answerBody = template.Must(template.New("answer_body").Parse(answerBodyTemplate))

// RenderAnswerBody fills the fixed answer email body.
func RenderAnswerBody(question, answer string) (string, error) {
	var sb strings.Builder
	err := answerBody.Execute(&sb, struct {
		Question string
		Answer   string
	}{question, answer})
	if err != nil {
		return "", fmt.Errorf("render answer body: %w", err)
	}
	return sb.String(), nil
}
