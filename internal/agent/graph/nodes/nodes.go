package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/headhunter-core/server/internal/agent/graph/conversations"
	"github.com/headhunter-core/server/internal/agent/graph/parsers"
	"github.com/headhunter-core/server/internal/agent/graph/prompts"
	"github.com/headhunter-core/server/internal/agent/model"
	"github.com/headhunter-core/server/internal/tools"
	logx "github.com/headhunter-core/server/pkg/logger"
)

// Graph node identifiers.
const (
	NodeInputLoader         = "InputLoader"
	NodeClassifierModel     = "ClassifierModel"
	NodeClassifierParser    = "ClassifierParser"
	NodeContextEnricher     = "ContextEnricher"
	NodeEnricherModel       = "EnricherModel"
	NodeSpecialistAssembler = "SpecialistAssembler"
	NodeCandidateSpecialist = "CandidateSpecialist"
	NodeMarketSpecialist    = "MarketSpecialist"
	NodeWebResearcher       = "WebResearcher"
	NodeGeneralAssistant    = "GeneralAssistant"
	NodeToolExecutor        = "ToolExecutor"
	NodeSynthesisBridge     = "SynthesisBridge"
	NodeSynthesisAssembler  = "SynthesisAssembler"
	NodeSynthesisModel      = "SynthesisModel"
	NodeQualityGate         = "QualityGate"
	NodeFormatter           = "ResponseFormatter"
)

// NewInputLoaderPreHandler creates the pre-handler for the InputLoader node.
// Every field of the per-run state is reset here so one invocation can never
// leak bookkeeping into the next.
func NewInputLoaderPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		s.SessionID = in.SessionID
		s.CustomerQuery = in.Query
		s.QueryType = ""
		s.SearchContext = model.SearchContext{}
		s.Results = model.SynthesisResults{}
		s.History = nil
		s.RetryCount = 0
		s.BestResponse = ""
		s.BestScore = 0
		s.GateDecision = ""
		s.ToolCallIDSeq = 0
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewInputLoaderNode creates the InputLoader node: it persists the user turn,
// renders recent history into the classifier prompt, and emits the messages
// for the classifier model.
func NewInputLoaderNode(sm *conversations.SessionManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) ([]*schema.Message, error) {
		conversationCtx, err := sm.ProcessUserMessage(ctx, input.SessionID, input.Query)
		if err != nil {
			return nil, fmt.Errorf("error getting conversation context: %w", err)
		}

		rendered, err := prompts.RenderClassifier(ctx, conversationCtx)
		if err != nil {
			return nil, fmt.Errorf("render classifier prompt: %w", err)
		}

		messages := []*schema.Message{
			schema.SystemMessage(prompts.SystemPrompt()),
			schema.UserMessage(rendered),
		}

		return messages, nil
	})
}

// NewClassifierModelPostHandler computes usage cost for the classifier call
// and records its reply in the run history.
func NewClassifierModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		applyUsageCost(state, out, NodeClassifierModel, modelName)
		state.History = append(state.History, out)
		return out, nil
	}
}

// NewClassifierParserNode creates the Parser node for the classifier reply.
func NewClassifierParserNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, resp *schema.Message) (model.Classification, error) {
		result, err := parsers.ParseClassification(resp.Content)
		if err != nil {
			logx.Error().Err(err).Msg("Error parsing classifier response")
			return model.Classification{}, err
		}
		return *result, nil
	})
}

// NewClassifierParserPostHandler stores the classified category in state; it
// is the single assignment of QueryType for the whole run.
func NewClassifierParserPostHandler() func(context.Context, model.Classification, *model.AppState) (model.Classification, error) {
	return func(ctx context.Context, out model.Classification, state *model.AppState) (model.Classification, error) {
		state.QueryType = out.Type
		logx.Debug().
			Str("session_id", state.SessionID).
			Str("query_type", out.Type.String()).
			Msg("Query classified")
		return out, nil
	}
}

// NewContextEnricherNode creates the ContextEnricher node, which assembles the
// parameter-extraction prompt. The quality gate's retry edge re-enters here,
// so a rejected synthesis gets a fresh enrichment pass.
func NewContextEnricherNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ model.Classification) ([]*schema.Message, error) {
		var query string
		var qt model.QueryType
		var retry int
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			query = state.CustomerQuery
			qt = state.QueryType
			retry = state.RetryCount
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		if retry > 0 {
			logx.Debug().Int("retry", retry).Msg("Re-enriching context after quality retry")
		}

		rendered, err := prompts.RenderEnricher(ctx, query, qt)
		if err != nil {
			return nil, fmt.Errorf("render enricher prompt: %w", err)
		}

		messages := []*schema.Message{
			schema.SystemMessage(prompts.SystemPrompt()),
			schema.UserMessage(rendered),
		}

		return messages, nil
	})
}

// NewEnricherModelPostHandler computes usage cost and stores the extracted
// search parameters in state.
func NewEnricherModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		applyUsageCost(state, out, NodeEnricherModel, modelName)
		if out != nil {
			state.SearchContext.ExtractedInfo = strings.TrimSpace(out.Content)
		}
		state.History = append(state.History, out)
		return out, nil
	}
}

// NewSpecialistAssemblerNode creates the SpecialistAssembler node, which
// renders the role prompt for whichever specialist the dispatch selects.
func NewSpecialistAssemblerNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ *schema.Message) ([]*schema.Message, error) {
		var qt model.QueryType
		var query, info string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			qt = state.QueryType
			query = state.CustomerQuery
			info = state.SearchContext.ExtractedInfo
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		rendered, err := prompts.RenderSpecialist(ctx, qt, query, info)
		if err != nil {
			return nil, fmt.Errorf("render specialist prompt: %w", err)
		}

		messages := []*schema.Message{
			schema.SystemMessage(prompts.SystemPrompt()),
			schema.UserMessage(rendered),
		}

		return messages, nil
	})
}

// NewSpecialistDispatchCondition routes the assembled prompt to the model
// instance owning the classified category's tool subset.
func NewSpecialistDispatchCondition() func(context.Context, []*schema.Message) (string, error) {
	return func(ctx context.Context, _ []*schema.Message) (string, error) {
		var qt model.QueryType
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			qt = state.QueryType
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}

		node := SpecialistNodeFor(qt)
		logx.Debug().Str("query_type", qt.String()).Str("node", node).Msg("Dispatching to specialist")
		return node, nil
	}
}

// SpecialistNodeFor maps a query category to its specialist node name.
func SpecialistNodeFor(qt model.QueryType) string {
	switch qt {
	case model.QueryCandidateSearch:
		return NodeCandidateSpecialist
	case model.QueryMarketAnalysis:
		return NodeMarketSpecialist
	case model.QueryWebResearch:
		return NodeWebResearcher
	default:
		return NodeGeneralAssistant
	}
}

// NewSpecialistPostHandler computes usage cost, normalizes tool-call IDs and
// records the specialist's reply in the run history.
func NewSpecialistPostHandler(nodeName, modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		applyUsageCost(state, out, nodeName, modelName)
		normalizeToolCallIDs(state, out)
		state.History = append(state.History, out)

		if out != nil && len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Str("node", nodeName).Msg("Calling tools")
		}
		return out, nil
	}
}

// NewToolRoutingCondition sends tool-requesting replies to the executor and
// everything else straight toward synthesis.
func NewToolRoutingCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		if input != nil && len(input.ToolCalls) > 0 {
			return NodeToolExecutor, nil
		}
		return NodeSynthesisBridge, nil
	}
}

// NewToolExecutorPreHandler blocks tool calls outside the classified
// category's subset. Blocked calls keep their ID but get an unroutable name,
// so the executor answers them through its unknown-tool fallback and the
// call/result pairing stays intact.
func NewToolExecutorPreHandler() func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AppState) (*schema.Message, error) {
		if in == nil || len(in.ToolCalls) == 0 {
			return in, nil
		}

		allowed := tools.AllowedSet(state.QueryType)
		for i := range in.ToolCalls {
			name := in.ToolCalls[i].Function.Name
			if _, ok := allowed[name]; ok {
				continue
			}
			logx.Warn().
				Str("tool_name", name).
				Str("query_type", state.QueryType.String()).
				Msg("Tool call outside category scope; blocking")
			in.ToolCalls[i].Function.Name = "blocked:" + name
		}

		return in, nil
	}
}

// NewToolExecutorPostHandler records tool results in the run history.
func NewToolExecutorPostHandler() func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, out []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		state.History = append(state.History, out...)
		logx.Debug().Int("results", len(out)).Msg("Tool execution finished")
		return out, nil
	}
}

// NewSynthesisBridgeNode lifts a specialist reply without tool calls into the
// slice shape the synthesis assembler expects, so both paths join on one node.
func NewSynthesisBridgeNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input *schema.Message) ([]*schema.Message, error) {
		return []*schema.Message{input}, nil
	})
}

// NewSynthesisAssemblerNode creates the SynthesisAssembler node, which
// replays the specialist exchange and appends the synthesis instruction.
func NewSynthesisAssemblerNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in []*schema.Message) ([]*schema.Message, error) {
		var query, info string
		var history []*schema.Message
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			query = state.CustomerQuery
			info = state.SearchContext.ExtractedInfo
			history = copyHistory(state.History)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		var sb strings.Builder
		sb.WriteString("사용자 질문: ")
		sb.WriteString(query)
		if info != "" {
			sb.WriteString("\n\n추출된 검색 조건:\n")
			sb.WriteString(info)
		}

		messages := []*schema.Message{
			schema.SystemMessage(prompts.SystemPrompt()),
			schema.UserMessage(sb.String()),
		}

		// Tool results must be replayed with the assistant message that
		// requested them, or the provider rejects the sequence.
		if len(in) > 0 && in[0] != nil && in[0].Role == schema.Tool {
			if trigger := lastAssistantWithToolCalls(history); trigger != nil {
				messages = append(messages, trigger)
			}
		}
		messages = append(messages, in...)

		synthPrompt, err := prompts.RenderSynthesis(ctx)
		if err != nil {
			return nil, fmt.Errorf("render synthesis prompt: %w", err)
		}
		messages = append(messages, schema.UserMessage(synthPrompt))

		return messages, nil
	})
}

// NewSynthesisModelPostHandler computes usage cost and stores the synthesized
// response for the quality gate.
func NewSynthesisModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		applyUsageCost(state, out, NodeSynthesisModel, modelName)
		if out != nil {
			state.Results.SynthesizedResponse = strings.TrimSpace(out.Content)
		}
		state.History = append(state.History, out)
		return out, nil
	}
}

// NewQualityGateNode creates the QualityGate node. It scores the synthesized
// response, tracks the best attempt so far, and decides between formatting
// and a bounded retry through context enrichment.
func NewQualityGateNode(cfg model.QualityConfig) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ *schema.Message) (model.Classification, error) {
		var verdict model.Classification
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			report := applyQualityVerdict(state, cfg)

			logx.Debug().
				Str("session_id", state.SessionID).
				Float64("quality_score", report.Score).
				Int("retry_count", state.RetryCount).
				Str("decision", string(state.GateDecision)).
				Msg("Quality gate verdict")

			verdict = model.Classification{
				Type:      state.QueryType,
				Rationale: fmt.Sprintf("quality_score=%.2f", report.Score),
			}
			return nil
		})
		if err != nil {
			return model.Classification{}, fmt.Errorf("failed to access state: %w", err)
		}
		return verdict, nil
	})
}

// NewQualityGateCondition routes on the gate's recorded decision.
func NewQualityGateCondition() func(context.Context, model.Classification) (string, error) {
	return func(ctx context.Context, _ model.Classification) (string, error) {
		var decision model.GateDecision
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			decision = state.GateDecision
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}

		if decision == model.GateRetry {
			return NodeContextEnricher, nil
		}
		return NodeFormatter, nil
	}
}

// NewFormatterNode creates the terminal ResponseFormatter node. On retry
// exhaustion it falls back to the best-scoring response observed during the
// run, wraps it in the response frame and persists it as the assistant turn.
func NewFormatterNode(sm *conversations.SessionManager, qcfg model.QualityConfig) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ model.Classification) (*model.RunResult, error) {
		var result *model.RunResult
		var sessionID, formatted string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			response, score := selectFinalResponse(state, qcfg)

			formatted = prompts.FormatFinal(response)
			final := schema.AssistantMessage(formatted, nil)
			state.History = append(state.History, final)

			sessionID = state.SessionID
			result = &model.RunResult{
				FinalMessage: final,
				History:      copyHistory(state.History),
				QueryType:    state.QueryType,
				QualityScore: score,
				TotalCostUSD: state.TotalCostUSD,
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		if err := sm.SaveResponse(ctx, sessionID, formatted); err != nil {
			logx.Error().
				Str("session_id", sessionID).
				Err(err).
				Msg("Error saving assistant response")
		}

		return result, nil
	})
}
