package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/headhunter-core/server/internal/agent/graph/conversations"
	"github.com/headhunter-core/server/internal/agent/graph/nodes"
	"github.com/headhunter-core/server/internal/agent/graph/observers"
	"github.com/headhunter-core/server/internal/agent/model"
	"github.com/headhunter-core/server/internal/tools"
	logx "github.com/headhunter-core/server/pkg/logger"
)

// Runner is a thin wrapper to execute the compiled graph with the public QueryInput.
type Runner interface {
	// Invoke runs one query to completion and returns the terminal result.
	Invoke(ctx context.Context, in model.QueryInput) (*model.RunResult, error)
	// Stream runs one query and delivers the result as an incremental
	// sequence of frames; the stream terminates with the formatter output.
	Stream(ctx context.Context, in model.QueryInput) (*schema.StreamReader[*model.RunResult], error)
}

// Config holds everything needed to compose the full workflow graph
// end-to-end. This is a convenience layer over GraphConfig that also
// constructs ChatModels and the SessionManager.
type Config struct {
	APIKey  string
	BaseURL string

	Classifier model.ClassifierModelConfig
	Enricher   model.EnricherModelConfig
	Specialist model.SpecialistModelConfig
	Synthesis  model.SynthesisModelConfig
	Quality    model.QualityConfig
	Session    model.SessionConfig

	SessionRepo model.SessionRepository
	Toolkit     *tools.Toolkit
}

// GraphConfig holds all configuration needed to build the graph.
type GraphConfig struct {
	ChatModels     *nodes.ChatModels
	SessionManager *conversations.SessionManager
	Toolkit        *tools.Toolkit
	Quality        model.QualityConfig
}

// GraphBuilder handles the construction of the query workflow graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *model.RunResult]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *model.RunResult]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (*model.RunResult, error) {
	return r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
}

func (r *graphRunner) Stream(ctx context.Context, in model.QueryInput) (*schema.StreamReader[*model.RunResult], error) {
	return r.runnable.Stream(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
}

// BuildWorkflowGraph composes ChatModels and the SessionManager, builds the
// graph, and returns a Runner.
func BuildWorkflowGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.SessionRepo == nil {
		return nil, fmt.Errorf("session repo is nil")
	}
	if cfg.Toolkit == nil {
		return nil, fmt.Errorf("toolkit is nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Classifier: &cfg.Classifier,
		Enricher:   &cfg.Enricher,
		Specialist: &cfg.Specialist,
		Synthesis:  &cfg.Synthesis,
	})
	if err != nil {
		return nil, err
	}

	sm := conversations.NewSessionManager(cfg.SessionRepo, cfg.Session)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:     cms,
		SessionManager: sm,
		Toolkit:        cfg.Toolkit,
		Quality:        cfg.Quality,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Workflow graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled workflow graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *model.RunResult], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Classifier == nil || config.ChatModels.Synthesis == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.SessionManager == nil {
		return nil, fmt.Errorf("session manager is nil")
	}
	if config.Toolkit == nil {
		return nil, fmt.Errorf("toolkit is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *model.RunResult](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// setupTools binds each category's tool subset to its specialist model and
// creates the shared executor node over the full tool set.
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	for _, qt := range []model.QueryType{
		model.QueryCandidateSearch,
		model.QueryMarketAnalysis,
		model.QueryWebResearch,
		model.QueryGeneral,
	} {
		toolInfos, err := tools.Infos(ctx, b.config.Toolkit.ForQueryType(qt))
		if err != nil {
			logx.Error().Err(err).Msg("Failed to get tool infos")
			return fmt.Errorf("failed to get tool infos: %w", err)
		}
		if err := b.config.ChatModels.BindSpecialistTools(qt, toolInfos); err != nil {
			return err
		}
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               b.config.Toolkit.AllTools(),
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			// Gracefully handle hallucinated, blocked or malformed tool calls
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			// Best-effort sanitize; never fail hard here
			var m map[string]any
			if err := json.Unmarshal([]byte(arguments), &m); err != nil {
				// keep original if not JSON
				return arguments, nil
			}

			for key, v := range m {
				switch key {
				case "top_k", "max_results":
					// JSON numbers decode as float64
					switch vv := v.(type) {
					case float64:
						m[key] = clampInt(int(vv), 1, 10)
					case string:
						if n, err := strconv.Atoi(strings.TrimSpace(vv)); err == nil {
							m[key] = clampInt(n, 1, 10)
						} else {
							delete(m, key)
						}
					default:
						delete(m, key)
					}
				default:
					if s, ok := v.(string); ok {
						m[key] = strings.TrimSpace(s)
					}
				}
			}

			sanitized, err := json.Marshal(m)
			if err != nil {
				return arguments, nil
			}
			return string(sanitized), nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler()),
		compose.WithStatePostHandler(nodes.NewToolExecutorPostHandler()),
	)

	return nil
}

// addNodes adds all processing nodes to the graph.
func (b *GraphBuilder) addNodes() {
	cms := b.config.ChatModels

	b.graph.AddLambdaNode(nodes.NodeInputLoader,
		nodes.NewInputLoaderNode(b.config.SessionManager),
		compose.WithStatePreHandler(nodes.NewInputLoaderPreHandler()),
	)

	b.graph.AddChatModelNode(nodes.NodeClassifierModel, cms.Classifier,
		compose.WithStatePostHandler(nodes.NewClassifierModelPostHandler(cms.ClassifierModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeClassifierParser,
		nodes.NewClassifierParserNode(),
		compose.WithStatePostHandler(nodes.NewClassifierParserPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeContextEnricher,
		nodes.NewContextEnricherNode(),
	)

	b.graph.AddChatModelNode(nodes.NodeEnricherModel, cms.Enricher,
		compose.WithStatePostHandler(nodes.NewEnricherModelPostHandler(cms.EnricherModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeSpecialistAssembler,
		nodes.NewSpecialistAssemblerNode(),
	)

	b.graph.AddChatModelNode(nodes.NodeCandidateSpecialist, cms.CandidateSpecialist,
		compose.WithStatePostHandler(nodes.NewSpecialistPostHandler(nodes.NodeCandidateSpecialist, cms.SpecialistModelName)),
	)
	b.graph.AddChatModelNode(nodes.NodeMarketSpecialist, cms.MarketSpecialist,
		compose.WithStatePostHandler(nodes.NewSpecialistPostHandler(nodes.NodeMarketSpecialist, cms.SpecialistModelName)),
	)
	b.graph.AddChatModelNode(nodes.NodeWebResearcher, cms.WebResearcher,
		compose.WithStatePostHandler(nodes.NewSpecialistPostHandler(nodes.NodeWebResearcher, cms.SpecialistModelName)),
	)
	b.graph.AddChatModelNode(nodes.NodeGeneralAssistant, cms.GeneralAssistant,
		compose.WithStatePostHandler(nodes.NewSpecialistPostHandler(nodes.NodeGeneralAssistant, cms.SpecialistModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeSynthesisBridge,
		nodes.NewSynthesisBridgeNode(),
	)

	b.graph.AddLambdaNode(nodes.NodeSynthesisAssembler,
		nodes.NewSynthesisAssemblerNode(),
	)

	b.graph.AddChatModelNode(nodes.NodeSynthesisModel, cms.Synthesis,
		compose.WithStatePostHandler(nodes.NewSynthesisModelPostHandler(cms.SynthesisModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeQualityGate,
		nodes.NewQualityGateNode(b.config.Quality),
	)

	b.graph.AddLambdaNode(nodes.NodeFormatter,
		nodes.NewFormatterNode(b.config.SessionManager, b.config.Quality),
	)
}

// addEdges creates the main flow connections between nodes.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeInputLoader},
		{nodes.NodeInputLoader, nodes.NodeClassifierModel},
		{nodes.NodeClassifierModel, nodes.NodeClassifierParser},
		{nodes.NodeClassifierParser, nodes.NodeContextEnricher},
		{nodes.NodeContextEnricher, nodes.NodeEnricherModel},
		{nodes.NodeEnricherModel, nodes.NodeSpecialistAssembler},
		{nodes.NodeToolExecutor, nodes.NodeSynthesisAssembler},
		{nodes.NodeSynthesisBridge, nodes.NodeSynthesisAssembler},
		{nodes.NodeSynthesisAssembler, nodes.NodeSynthesisModel},
		{nodes.NodeSynthesisModel, nodes.NodeQualityGate},
		{nodes.NodeFormatter, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates conditional routing branches.
func (b *GraphBuilder) addBranches() error {
	dispatchBranch := compose.NewGraphBranch(
		nodes.NewSpecialistDispatchCondition(),
		map[string]bool{
			nodes.NodeCandidateSpecialist: true,
			nodes.NodeMarketSpecialist:    true,
			nodes.NodeWebResearcher:       true,
			nodes.NodeGeneralAssistant:    true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeSpecialistAssembler, dispatchBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding specialist dispatch branch")
		return fmt.Errorf("error adding specialist dispatch branch: %w", err)
	}

	for _, specialist := range []string{
		nodes.NodeCandidateSpecialist,
		nodes.NodeMarketSpecialist,
		nodes.NodeWebResearcher,
		nodes.NodeGeneralAssistant,
	} {
		toolBranch := compose.NewGraphBranch(
			nodes.NewToolRoutingCondition(),
			map[string]bool{
				nodes.NodeToolExecutor:    true,
				nodes.NodeSynthesisBridge: true,
			},
		)
		if err := b.graph.AddBranch(specialist, toolBranch); err != nil {
			logx.Error().Err(err).Str("node", specialist).Msg("Error adding tool routing branch")
			return fmt.Errorf("error adding tool routing branch for %s: %w", specialist, err)
		}
	}

	gateBranch := compose.NewGraphBranch(
		nodes.NewQualityGateCondition(),
		map[string]bool{
			nodes.NodeFormatter:       true,
			nodes.NodeContextEnricher: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeQualityGate, gateBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding quality gate branch")
		return fmt.Errorf("error adding quality gate branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *model.RunResult], error) {
	// Limit total run steps so the quality-gate retry loop can never spin
	// past its budget even if the gate misbehaves
	maxSteps := 20 + b.config.Quality.MaxRetries*12
	if maxSteps < 30 {
		maxSteps = 30
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

// clampInt returns v limited to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
