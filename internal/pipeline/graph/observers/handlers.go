package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	"github.com/ia-assistant/server/internal/metrics"
)

// NewAllCallbacks returns the handlers attached to every graph invocation:
// stage timing/outcomes plus model and prompt logging.
func NewAllCallbacks(m *metrics.Metrics) []einocb.Handler {
	componentHandler := callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler()).
		Prompt(newPromptHandler()).
		Handler()

	return []einocb.Handler{newStageHandler(m), componentHandler}
}
