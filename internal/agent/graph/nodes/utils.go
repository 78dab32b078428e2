package nodes

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/headhunter-core/server/internal/agent/graph/quality"
	"github.com/headhunter-core/server/internal/agent/model"
	logx "github.com/headhunter-core/server/pkg/logger"
)

// ===== Small helpers to keep handlers simple/readable =====

// applyUsageCost computes and logs the USD cost of one model call, annotates
// the message Extra, and accumulates the run total into state.
func applyUsageCost(state *model.AppState, out *schema.Message, nodeName, modelName string) {
	if !model.CostEnabled() || out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	pricing := model.ResolvePricing(modelName)
	inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
	if out.Extra == nil {
		out.Extra = map[string]any{}
	}
	out.Extra["usage_cost"] = map[string]any{
		"currency":          "USD",
		"model":             modelName,
		"prompt_tokens":     out.ResponseMeta.Usage.PromptTokens,
		"completion_tokens": out.ResponseMeta.Usage.CompletionTokens,
		"total_tokens":      out.ResponseMeta.Usage.TotalTokens,
		"input_cost":        inC,
		"output_cost":       outC,
		"total_cost":        totalC,
	}
	logx.Debug().
		Str("session_id", state.SessionID).
		Str("node", nodeName).
		Str("model", modelName).
		Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
		Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
		Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")

	// Accumulate only total cost into state
	state.TotalCostUSD += totalC
	out.Extra["usage_cost_total_usd"] = state.TotalCostUSD
}

// normalizeToolCallIDs fills in tool_call IDs the provider omitted. Gemini's
// OpenAI-compat surface sometimes returns calls without IDs, which breaks the
// call/result pairing downstream.
func normalizeToolCallIDs(state *model.AppState, out *schema.Message) {
	if out == nil || len(out.ToolCalls) == 0 {
		return
	}
	for i := range out.ToolCalls {
		if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
			state.ToolCallIDSeq++
			out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
		}
	}
}

// applyQualityVerdict scores the latest synthesis, updates the best-attempt
// tracking, and records the gate's routing decision in state. The retry edge
// is taken only while RetryCount is below the cap; once the budget is spent
// the gate always routes to the formatter.
func applyQualityVerdict(state *model.AppState, cfg model.QualityConfig) quality.Report {
	report := quality.Evaluate(state.Results.SynthesizedResponse)
	state.Results.QualityScore = report.Score

	// >= so the latest attempt wins ties
	if report.Score >= state.BestScore {
		state.BestScore = report.Score
		state.BestResponse = state.Results.SynthesizedResponse
	}

	switch {
	case report.Score >= cfg.Threshold:
		state.GateDecision = model.GateFormat
	case state.RetryCount >= cfg.MaxRetries:
		state.GateDecision = model.GateFormat
		logx.Warn().
			Str("session_id", state.SessionID).
			Int("retry_count", state.RetryCount).
			Float64("best_score", state.BestScore).
			Msg("Retry budget exhausted; formatting best response")
	default:
		state.RetryCount++
		state.GateDecision = model.GateRetry
	}

	return report
}

// selectFinalResponse picks what the formatter emits: the latest synthesis
// when it met the threshold, otherwise the best-scoring attempt of the run.
func selectFinalResponse(state *model.AppState, cfg model.QualityConfig) (string, float64) {
	response := state.Results.SynthesizedResponse
	score := state.Results.QualityScore
	if score < cfg.Threshold && state.BestResponse != "" && state.BestScore > score {
		response = state.BestResponse
		score = state.BestScore
	}
	return response, score
}

// lastAssistantWithToolCalls finds the most recent assistant message that
// requested tools, so tool results can be replayed with their trigger.
func lastAssistantWithToolCalls(history []*schema.Message) *schema.Message {
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
			continue
		}
		return msg
	}
	return nil
}

// copyHistory snapshots the run history so the returned result is detached
// from further state mutation.
func copyHistory(history []*schema.Message) []*schema.Message {
	result := make([]*schema.Message, len(history))
	copy(result, history)
	return result
}
