package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/ia-assistant/server/internal/pipeline/model"
	logx "github.com/ia-assistant/server/pkg/logger"
)

const (
	NodeValidateInput   = "validate_input"
	NodeGenerateAnswer  = "generate_answer"
	NodeRenderDocument  = "render_document"
	NodeDeliverDocument = "deliver_document"
	NodeCaptureFeedback = "capture_feedback"
)

// StageNames lists the nodes in execution order.
var StageNames = []string{
	NodeValidateInput,
	NodeGenerateAnswer,
	NodeRenderDocument,
	NodeDeliverDocument,
	NodeCaptureFeedback,
}

// Stage is one unit of the pipeline.
//
// Run returns the next state of the run. A *model.StageError means the
// stage handled a failure: the returned state already carries the stage's
// outcome flags and the node copies the message into State.Error. Any other
// error aborts the run.
type Stage interface {
	Name() string
	Run(ctx context.Context, s model.State) (model.State, error)
}

// NewStageNode adapts a Stage to an Eino lambda node.
func NewStageNode(stage Stage) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.State) (model.State, error) {
		return runStage(ctx, stage, in)
	})
}

// runStage folds handled failures into the state and turns everything else,
// panics included, into an ErrUnexpected error.
func runStage(ctx context.Context, stage Stage, in model.State) (out model.State, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = in
			err = fmt.Errorf("%w: %s panicked: %v", model.ErrUnexpected, stage.Name(), r)
		}
	}()

	out, err = stage.Run(ctx, in)
	if err == nil {
		return out, nil
	}

	if se, ok := model.AsStageError(err); ok {
		logx.Warn().
			Str("run_id", logx.RunID(ctx)).
			Str("node", stage.Name()).
			Str("kind", string(se.Kind)).
			AnErr("cause", se.Err).
			Msg(se.Message)
		return out.WithError(se.Message), nil
	}

	return in, fmt.Errorf("%w: %s: %w", model.ErrUnexpected, stage.Name(), err)
}
