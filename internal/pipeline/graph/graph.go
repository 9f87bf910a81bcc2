package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	"github.com/ia-assistant/server/internal/metrics"
	"github.com/ia-assistant/server/internal/pipeline/graph/nodes"
	"github.com/ia-assistant/server/internal/pipeline/graph/observers"
	"github.com/ia-assistant/server/internal/pipeline/model"
	logx "github.com/ia-assistant/server/pkg/logger"
)

const (
	graphName   = "ia_assistant_pipeline"
	maxRunSteps = 10

	msgGraphFailed = "Error al ejecutar el grafo: %v"
)

// Runner executes one pipeline run. It never fails: every outcome,
// including an aborted run, is reported through the returned State.
type Runner interface {
	Run(ctx context.Context, in model.RunInput) model.State
}

// Stages are the five units wired into the graph.
type Stages struct {
	Validate nodes.Stage
	Answer   nodes.Stage
	Render   nodes.Stage
	Deliver  nodes.Stage
	Feedback nodes.Stage
}

func (s Stages) validate() error {
	for name, st := range map[string]nodes.Stage{
		nodes.NodeValidateInput:   s.Validate,
		nodes.NodeGenerateAnswer:  s.Answer,
		nodes.NodeRenderDocument:  s.Render,
		nodes.NodeDeliverDocument: s.Deliver,
		nodes.NodeCaptureFeedback: s.Feedback,
	} {
		if st == nil {
			return fmt.Errorf("stage %s is nil", name)
		}
	}
	return nil
}

// Config holds everything needed to build the pipeline graph.
type Config struct {
	Stages  Stages
	Metrics *metrics.Metrics
}

// GraphBuilder handles the construction of the pipeline graph
type GraphBuilder struct {
	config *Config
	graph  *compose.Graph[model.State, model.State]
}

type pipelineRunner struct {
	runnable compose.Runnable[model.State, model.State]
	metrics  *metrics.Metrics
}

func (r *pipelineRunner) Run(ctx context.Context, in model.RunInput) (out model.State) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	ctx = logx.WithRunID(ctx, in.ID.String())

	defer func() {
		if rec := recover(); rec != nil {
			out = r.fail(ctx, fmt.Errorf("%w: panic: %v", model.ErrUnexpected, rec))
		}
	}()

	initial := model.NewState(in)
	logx.Debug().Str("run_id", in.ID.String()).Interface("state", initial).Msg("pipeline start")

	final, err := r.runnable.Invoke(ctx, initial, compose.WithCallbacks(observers.NewAllCallbacks(r.metrics)...))
	if err != nil {
		return r.fail(ctx, err)
	}

	outcome := metrics.OutcomeOK
	if final.HasError() {
		outcome = metrics.OutcomeDegraded
	}
	r.count(outcome)

	logx.Debug().Str("run_id", in.ID.String()).Interface("state", final).Msg("pipeline end")
	return final
}

func (r *pipelineRunner) fail(ctx context.Context, err error) model.State {
	r.count(metrics.OutcomeError)
	logx.Error().Err(err).Str("run_id", logx.RunID(ctx)).Msg("pipeline aborted")
	return model.Failed(fmt.Sprintf(msgGraphFailed, err))
}

func (r *pipelineRunner) count(outcome string) {
	if r.metrics != nil {
		r.metrics.Runs.WithLabelValues(outcome).Inc()
	}
}

// BuildPipelineGraph builds and compiles the graph and returns a Runner.
func BuildPipelineGraph(ctx context.Context, cfg Config) (Runner, error) {
	if err := cfg.Stages.validate(); err != nil {
		return nil, err
	}

	builder := &GraphBuilder{
		config: &cfg,
		graph:  compose.NewGraph[model.State, model.State](),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Pipeline graph built successfully")
	return &pipelineRunner{runnable: runnable, metrics: cfg.Metrics}, nil
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	st := b.config.Stages
	for _, stage := range []nodes.Stage{st.Validate, st.Answer, st.Render, st.Deliver, st.Feedback} {
		key := stage.Name()
		if err := b.graph.AddLambdaNode(key, nodes.NewStageNode(stage), compose.WithNodeName(key)); err != nil {
			return fmt.Errorf("error adding node %s: %w", key, err)
		}
	}
	return nil
}

// addEdges creates the fixed flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeValidateInput},
		{nodes.NodeValidateInput, nodes.NodeGenerateAnswer},
		{nodes.NodeGenerateAnswer, nodes.NodeRenderDocument},
		{nodes.NodeDeliverDocument, nodes.NodeCaptureFeedback},
		{nodes.NodeCaptureFeedback, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches creates the delivery routing after rendering
func (b *GraphBuilder) addBranches() error {
	deliveryBranch := compose.NewGraphBranch(nodes.NewDeliveryCondition(), nodes.DeliveryBranchTargets())
	if err := b.graph.AddBranch(nodes.NodeRenderDocument, deliveryBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding delivery branch")
		return fmt.Errorf("error adding delivery branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.State, model.State], error) {
	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName(graphName),
		compose.WithMaxRunSteps(maxRunSteps),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
