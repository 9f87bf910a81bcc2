package nodes

import (
	"context"

	"github.com/ia-assistant/server/internal/pipeline/model"
)

// RouteAfterRender picks the node that follows document rendering.
func RouteAfterRender(s model.State) string {
	if s.WantsDelivery() {
		return NodeDeliverDocument
	}
	return NodeCaptureFeedback
}

// NewDeliveryCondition is the graph branch condition after rendering.
func NewDeliveryCondition() func(context.Context, model.State) (string, error) {
	return func(_ context.Context, s model.State) (string, error) {
		return RouteAfterRender(s), nil
	}
}

// DeliveryBranchTargets are the nodes the delivery branch may pick.
func DeliveryBranchTargets() map[string]bool {
	return map[string]bool{
		NodeDeliverDocument: true,
		NodeCaptureFeedback: true,
	}
}
