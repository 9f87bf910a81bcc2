package graph

import (
	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/ia-assistant/server/internal/artifacts"
	"github.com/ia-assistant/server/internal/pipeline/graph/nodes"
	"github.com/ia-assistant/server/internal/pipeline/model"
)

// Dependencies are the collaborators the default stages are built from.
type Dependencies struct {
	ChatModel einomodel.BaseChatModel
	Answer    model.AnswerModelConfig
	PDF       artifacts.Renderer
	Text      artifacts.Renderer
	Store     *artifacts.Store
	Mailer    nodes.Mailer
}

// NewStages wires the default implementation of every stage.
func NewStages(d Dependencies) Stages {
	return Stages{
		Validate: nodes.NewInputValidator(),
		Answer:   nodes.NewAnswerGenerator(d.ChatModel, d.Answer),
		Render:   nodes.NewDocumentRenderer(d.PDF, d.Text, d.Store),
		Deliver:  nodes.NewDocumentDeliverer(d.Mailer, d.Store),
		Feedback: nodes.NewFeedbackRecorder(),
	}
}
