package observers

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"

	"github.com/ia-assistant/server/internal/metrics"
	"github.com/ia-assistant/server/internal/pipeline/graph/nodes"
	"github.com/ia-assistant/server/internal/pipeline/model"
	logx "github.com/ia-assistant/server/pkg/logger"
)

type stageStartKey struct{}

type stageStart struct {
	at        time.Time
	prevError string
}

// newStageHandler times every pipeline stage and classifies how it ended.
// A stage is "degraded" when it leaves a new error message in the state.
func newStageHandler(m *metrics.Metrics) einocb.Handler {
	stages := make(map[string]bool, len(nodes.StageNames))
	for _, n := range nodes.StageNames {
		stages[n] = true
	}
	isStage := func(info *einocb.RunInfo) bool {
		return info != nil && stages[info.Name]
	}

	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, input einocb.CallbackInput) context.Context {
			if !isStage(info) {
				return ctx
			}
			st := stageStart{at: time.Now()}
			if s, ok := asState(input); ok {
				st.prevError = s.Error
			}
			logx.Debug().Str("run_id", logx.RunID(ctx)).Str("node", info.Name).Msg("stage start")
			return context.WithValue(ctx, stageStartKey{}, st)
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, output einocb.CallbackOutput) context.Context {
			if !isStage(info) {
				return ctx
			}
			st, _ := ctx.Value(stageStartKey{}).(stageStart)

			outcome := metrics.OutcomeOK
			if s, ok := asState(output); ok && s.Error != "" && s.Error != st.prevError {
				outcome = metrics.OutcomeDegraded
			}
			observe(m, info.Name, outcome, st)

			logx.Debug().
				Str("run_id", logx.RunID(ctx)).
				Str("node", info.Name).
				Str("outcome", outcome).
				Dur("elapsed", time.Since(st.at)).
				Msg("stage end")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			if !isStage(info) {
				return ctx
			}
			st, _ := ctx.Value(stageStartKey{}).(stageStart)
			observe(m, info.Name, metrics.OutcomeError, st)

			logx.Error().Err(err).Str("run_id", logx.RunID(ctx)).Str("node", info.Name).Msg("stage aborted")
			return ctx
		}).
		Build()
}

func observe(m *metrics.Metrics, stage, outcome string, st stageStart) {
	if m == nil {
		return
	}
	m.StageOutcomes.WithLabelValues(stage, outcome).Inc()
	if !st.at.IsZero() {
		m.StageDuration.WithLabelValues(stage).Observe(time.Since(st.at).Seconds())
	}
}

func asState(v any) (model.State, bool) {
	switch s := v.(type) {
	case model.State:
		return s, true
	case *model.State:
		if s != nil {
			return *s, true
		}
	}
	return model.State{}, false
}
