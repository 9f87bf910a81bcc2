package nodes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/ia-assistant/server/internal/pipeline/graph/prompts"
	"github.com/ia-assistant/server/internal/pipeline/model"
	logx "github.com/ia-assistant/server/pkg/logger"
)

var errEmptyCompletion = errors.New("model returned an empty completion")

// AnswerGenerator asks the chat model for an answer to the processed input.
type AnswerGenerator struct {
	chatModel einomodel.BaseChatModel
	cfg       model.AnswerModelConfig
}

func NewAnswerGenerator(chatModel einomodel.BaseChatModel, cfg model.AnswerModelConfig) *AnswerGenerator {
	return &AnswerGenerator{chatModel: chatModel, cfg: cfg}
}

func (g *AnswerGenerator) Name() string { return NodeGenerateAnswer }

func (g *AnswerGenerator) Run(ctx context.Context, s model.State) (model.State, error) {
	if !s.InputValid {
		logx.Debug().Str("run_id", logx.RunID(ctx)).Msg("skipping answer generation for invalid input")
		return s, nil
	}

	answer, err := g.generate(ctx, s.ProcessedInput)
	if err != nil {
		return s.Merge(model.Patch{LLMResponse: model.Ptr("")}),
			model.NewStageError(NodeGenerateAnswer, model.KindDependency, fmt.Sprintf("Error al generar respuesta: %v", err), err)
	}

	return s.Merge(model.Patch{
		LLMResponse: model.Ptr(answer),
		ModelUsed:   model.Ptr(g.cfg.Model),
		Error:       model.ClearError(),
	}), nil
}

func (g *AnswerGenerator) generate(ctx context.Context, question string) (string, error) {
	msgs, err := prompts.RenderAnswerMessages(ctx, question)
	if err != nil {
		return "", err
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}
	ctx = einocb.ReuseHandlers(ctx, &einocb.RunInfo{
		Name:      g.cfg.Model,
		Type:      g.cfg.Provider,
		Component: components.ComponentOfChatModel,
	})

	opts := []einomodel.Option{einomodel.WithTemperature(g.cfg.Temperature)}
	if g.cfg.Model != "" {
		opts = append(opts, einomodel.WithModel(g.cfg.Model))
	}
	if g.cfg.MaxTokens > 0 {
		opts = append(opts, einomodel.WithMaxTokens(g.cfg.MaxTokens))
	}

	out, err := g.chatModel.Generate(ctx, msgs, opts...)
	if err != nil {
		return "", err
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", errEmptyCompletion
	}

	logUsage(ctx, g.cfg.Model, out)
	return out.Content, nil
}
