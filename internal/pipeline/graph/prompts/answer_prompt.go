package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/answer_system.txt
var answerSystemPrompt string

// AnswerSystemPrompt is the fixed instruction sent ahead of every question.
func AnswerSystemPrompt() string {
	return strings.TrimSpace(answerSystemPrompt)
}

// RenderAnswerMessages builds the system + user messages for one question.
// Rendering goes through the Eino prompt component so prompt callbacks fire.
func RenderAnswerMessages(ctx context.Context, question string) ([]*schema.Message, error) {
	ctx = einocb.ReuseHandlers(ctx, &einocb.RunInfo{
		Name:      "answer_prompt",
		Type:      "ChatTemplate",
		Component: components.ComponentOfPrompt,
	})

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(AnswerSystemPrompt()),
		schema.UserMessage("{{.Question}}"),
	)
	msgs, err := tpl.Format(ctx, map[string]any{"Question": question})
	if err != nil {
		return nil, fmt.Errorf("answer prompt render: %w", err)
	}
	if len(msgs) != 2 {
		return nil, fmt.Errorf("answer prompt render: got %d messages", len(msgs))
	}
	return msgs, nil
}
