package nodes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/ia-assistant/server/internal/pipeline/model"
	logx "github.com/ia-assistant/server/pkg/logger"
)

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

var errStreamUnsupported = errors.New("streaming is not supported by this chat model")

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	Answer    model.AnswerModelConfig
	Providers model.ProviderConfig
}

// NewChatModel creates the answer model for the configured provider.
func NewChatModel(ctx context.Context, cfg ChatModelConfig) (einomodel.BaseChatModel, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Answer.Provider)) {
	case ProviderGroq, "":
		if cfg.Providers.GroqAPIKey == "" {
			return nil, fmt.Errorf("groq provider selected but GROQ_API_KEY is empty")
		}
		return NewOpenAIChatModel(cfg.Providers.GroqAPIKey, cfg.Providers.GroqBaseURL, cfg.Answer.Model), nil
	case ProviderGemini:
		return newGeminiChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Answer.Provider)
	}
}

func newGeminiChatModel(ctx context.Context, cfg ChatModelConfig) (einomodel.BaseChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.Providers.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Providers.GeminiBaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.Providers.GeminiBaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	temperature := cfg.Answer.Temperature
	maxTokens := cfg.Answer.MaxTokens
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Answer.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating answer model")
		return nil, fmt.Errorf("error creating answer model: %w", err)
	}
	return cm, nil
}

// OpenAIChatModel talks to any OpenAI-compatible chat completions API.
// Groq is served this way.
type OpenAIChatModel struct {
	client *openai.Client
	model  string
}

func NewOpenAIChatModel(apiKey, baseURL, modelName string) *OpenAIChatModel {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIChatModel{client: openai.NewClientWithConfig(cfg), model: modelName}
}

func (m *OpenAIChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (out *schema.Message, err error) {
	o := einomodel.GetCommonOptions(&einomodel.Options{Model: &m.model}, opts...)

	ctx = einocb.OnStart(ctx, &einomodel.CallbackInput{Messages: input})
	defer func() {
		if err != nil {
			einocb.OnError(ctx, err)
		}
	}()

	resp, err := m.client.CreateChatCompletion(ctx, buildCompletionRequest(input, o))
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion: no choices returned")
	}

	choice := resp.Choices[0]
	out = &schema.Message{
		Role:    schema.Assistant,
		Content: choice.Message.Content,
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: string(choice.FinishReason),
			Usage: &schema.TokenUsage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			},
		},
	}
	einocb.OnEnd(ctx, &einomodel.CallbackOutput{Message: out})
	return out, nil
}

func (m *OpenAIChatModel) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errStreamUnsupported
}

// IsCallbacksEnabled tells Eino this component triggers its own callbacks.
func (m *OpenAIChatModel) IsCallbacksEnabled() bool { return true }

func buildCompletionRequest(input []*schema.Message, o *einomodel.Options) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{}
	if o.Model != nil {
		req.Model = *o.Model
	}
	if o.Temperature != nil {
		req.Temperature = *o.Temperature
	}
	if o.MaxTokens != nil {
		req.MaxTokens = *o.MaxTokens
	}
	for _, msg := range input {
		if msg == nil {
			continue
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return req
}
