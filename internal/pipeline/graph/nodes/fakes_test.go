package nodes

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"github.com/ia-assistant/server/internal/artifacts"
	"github.com/ia-assistant/server/internal/mail"
	"github.com/ia-assistant/server/internal/pipeline/model"
)

type fakeChatModel struct {
	reply *schema.Message
	err   error

	calls    int
	messages []*schema.Message
	options  *einomodel.Options
}

func replying(content string) *fakeChatModel {
	return &fakeChatModel{reply: &schema.Message{Role: schema.Assistant, Content: content}}
}

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	m.calls++
	m.messages = input
	m.options = einomodel.GetCommonOptions(&einomodel.Options{}, opts...)
	if m.err != nil {
		return nil, m.err
	}
	return m.reply, nil
}

func (m *fakeChatModel) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type fakeMailer struct {
	err  error
	sent []mail.Message
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// brokenRenderer claims PDF support but fails while writing.
type brokenRenderer struct{ err error }

func (r brokenRenderer) Capability() artifacts.Capability { return artifacts.Available }
func (r brokenRenderer) Extension() string                { return "pdf" }
func (r brokenRenderer) ContentType() string              { return artifacts.ContentTypePDF }
func (r brokenRenderer) Render(io.Writer, artifacts.Document) error {
	return r.err
}

type panickingStage struct{}

func (panickingStage) Name() string { return "panicking" }
func (panickingStage) Run(context.Context, model.State) (model.State, error) {
	panic("kaboom")
}

type failingStage struct{ err error }

func (s failingStage) Name() string { return "failing" }
func (s failingStage) Run(_ context.Context, st model.State) (model.State, error) {
	return st, s.err
}

func newStore(t *testing.T) *artifacts.Store {
	t.Helper()
	s, err := artifacts.NewStore(model.ArtifactConfig{Dir: filepath.Join(t.TempDir(), "pdfs"), Prefix: "respuesta"})
	require.NoError(t, err)
	return s
}

func answered(question, answer string) model.State {
	return model.State{
		UserInput:      question,
		InputValid:     true,
		ProcessedInput: question,
		LLMResponse:    answer,
	}
}
