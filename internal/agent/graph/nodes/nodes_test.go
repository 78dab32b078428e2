package nodes

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headhunter-core/server/internal/agent/model"
	"github.com/headhunter-core/server/internal/tools"
)

func TestInputLoaderPreHandlerResetsState(t *testing.T) {
	state := &model.AppState{
		SessionID:     "stale",
		CustomerQuery: "stale query",
		QueryType:     model.QueryMarketAnalysis,
		RetryCount:    2,
		BestResponse:  "previous best",
		BestScore:     0.9,
		GateDecision:  model.GateRetry,
		ToolCallIDSeq: 7,
		TotalCostUSD:  0.12,
		History:       []*schema.Message{schema.UserMessage("old")},
	}
	state.SearchContext.ExtractedInfo = "old info"
	state.Results.SynthesizedResponse = "old response"

	handler := NewInputLoaderPreHandler()
	in := model.QueryInput{SessionID: "s-new", Query: "Python 개발자"}
	out, err := handler(context.Background(), in, state)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	assert.Equal(t, "s-new", state.SessionID)
	assert.Equal(t, "Python 개발자", state.CustomerQuery)
	assert.Empty(t, state.QueryType)
	assert.Empty(t, state.SearchContext.ExtractedInfo)
	assert.Empty(t, state.Results.SynthesizedResponse)
	assert.Nil(t, state.History)
	assert.Zero(t, state.RetryCount)
	assert.Empty(t, state.BestResponse)
	assert.Zero(t, state.BestScore)
	assert.Empty(t, state.GateDecision)
	assert.Zero(t, state.ToolCallIDSeq)
	assert.Zero(t, state.TotalCostUSD)
}

func TestClassifierModelPostHandlerAccumulatesCost(t *testing.T) {
	state := &model.AppState{SessionID: "s1"}
	handler := NewClassifierModelPostHandler("gemini-2.5-flash-lite")

	out := schema.AssistantMessage("candidate_search", nil)
	out.ResponseMeta = &schema.ResponseMeta{
		Usage: &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000, TotalTokens: 2_000_000},
	}

	got, err := handler(context.Background(), out, state)
	require.NoError(t, err)

	// flash-lite: $0.10/M in + $0.40/M out
	assert.InDelta(t, 0.50, state.TotalCostUSD, 1e-9)
	assert.InDelta(t, 0.50, got.Extra["usage_cost_total_usd"].(float64), 1e-9)
	require.Len(t, state.History, 1)
	assert.Same(t, got, state.History[0])
}

func TestClassifierModelPostHandlerNoUsage(t *testing.T) {
	state := &model.AppState{}
	handler := NewClassifierModelPostHandler("gemini-2.5-flash-lite")

	got, err := handler(context.Background(), schema.AssistantMessage("general", nil), state)
	require.NoError(t, err)
	assert.Zero(t, state.TotalCostUSD)
	assert.Nil(t, got.Extra)
}

func TestClassifierParserPostHandlerStoresQueryType(t *testing.T) {
	state := &model.AppState{}
	handler := NewClassifierParserPostHandler()

	out, err := handler(context.Background(), model.Classification{Type: model.QueryWebResearch}, state)
	require.NoError(t, err)
	assert.Equal(t, model.QueryWebResearch, out.Type)
	assert.Equal(t, model.QueryWebResearch, state.QueryType)
}

func TestSpecialistPostHandlerNormalizesToolCallIDs(t *testing.T) {
	state := &model.AppState{}
	handler := NewSpecialistPostHandler(NodeCandidateSpecialist, "gemini-2.5-flash")

	out := &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{Function: schema.FunctionCall{Name: tools.ToolSearchCandidatesBySkills}},
			{ID: "call_abc", Function: schema.FunctionCall{Name: tools.ToolGetCandidateStatistics}},
			{ID: "  ", Function: schema.FunctionCall{Name: tools.ToolGetCandidateDetails}},
		},
	}

	got, err := handler(context.Background(), out, state)
	require.NoError(t, err)
	assert.Equal(t, "call_1", got.ToolCalls[0].ID)
	assert.Equal(t, "call_abc", got.ToolCalls[1].ID)
	assert.Equal(t, "call_2", got.ToolCalls[2].ID)
	assert.Equal(t, 2, state.ToolCallIDSeq)
	require.Len(t, state.History, 1)
}

func TestSpecialistNodeFor(t *testing.T) {
	assert.Equal(t, NodeCandidateSpecialist, SpecialistNodeFor(model.QueryCandidateSearch))
	assert.Equal(t, NodeMarketSpecialist, SpecialistNodeFor(model.QueryMarketAnalysis))
	assert.Equal(t, NodeWebResearcher, SpecialistNodeFor(model.QueryWebResearch))
	assert.Equal(t, NodeGeneralAssistant, SpecialistNodeFor(model.QueryGeneral))
	assert.Equal(t, NodeGeneralAssistant, SpecialistNodeFor(model.QueryType("unknown")))
}

func TestToolRoutingCondition(t *testing.T) {
	cond := NewToolRoutingCondition()

	withCalls := &schema.Message{
		Role:      schema.Assistant,
		ToolCalls: []schema.ToolCall{{ID: "call_1", Function: schema.FunctionCall{Name: tools.ToolSearchMarketTrends}}},
	}
	node, err := cond(context.Background(), withCalls)
	require.NoError(t, err)
	assert.Equal(t, NodeToolExecutor, node)

	node, err = cond(context.Background(), schema.AssistantMessage("답변", nil))
	require.NoError(t, err)
	assert.Equal(t, NodeSynthesisBridge, node)
}

func TestToolExecutorPreHandlerBlocksOutOfScopeCalls(t *testing.T) {
	state := &model.AppState{QueryType: model.QueryMarketAnalysis}
	handler := NewToolExecutorPreHandler()

	in := &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{ID: "call_1", Function: schema.FunctionCall{Name: tools.ToolSearchMarketTrends}},
			{ID: "call_2", Function: schema.FunctionCall{Name: tools.ToolSearchCandidatesBySkills}},
		},
	}

	got, err := handler(context.Background(), in, state)
	require.NoError(t, err)
	assert.Equal(t, tools.ToolSearchMarketTrends, got.ToolCalls[0].Function.Name)
	assert.Equal(t, "blocked:"+tools.ToolSearchCandidatesBySkills, got.ToolCalls[1].Function.Name)
	// IDs survive so every call still gets a paired result
	assert.Equal(t, "call_2", got.ToolCalls[1].ID)
}

func TestToolExecutorPreHandlerGeneralAllowsAll(t *testing.T) {
	state := &model.AppState{QueryType: model.QueryGeneral}
	handler := NewToolExecutorPreHandler()

	in := &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{ID: "call_1", Function: schema.FunctionCall{Name: tools.ToolSearchCandidatesBySkills}},
			{ID: "call_2", Function: schema.FunctionCall{Name: tools.ToolWebSearchLatestTrends}},
		},
	}

	got, err := handler(context.Background(), in, state)
	require.NoError(t, err)
	assert.Equal(t, tools.ToolSearchCandidatesBySkills, got.ToolCalls[0].Function.Name)
	assert.Equal(t, tools.ToolWebSearchLatestTrends, got.ToolCalls[1].Function.Name)
}

func TestToolExecutorPostHandlerAppendsHistory(t *testing.T) {
	state := &model.AppState{History: []*schema.Message{schema.UserMessage("질문")}}
	handler := NewToolExecutorPostHandler()

	results := []*schema.Message{
		schema.ToolMessage(`{"success":true}`, "call_1"),
		schema.ToolMessage(`{"success":false}`, "call_2"),
	}
	got, err := handler(context.Background(), results, state)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, state.History, 3)
}

func TestEnricherModelPostHandlerStoresExtractedInfo(t *testing.T) {
	state := &model.AppState{}
	handler := NewEnricherModelPostHandler("gemini-2.5-flash-lite")

	out := schema.AssistantMessage("  스킬: Python\n지역: 서울  ", nil)
	_, err := handler(context.Background(), out, state)
	require.NoError(t, err)
	assert.Equal(t, "스킬: Python\n지역: 서울", state.SearchContext.ExtractedInfo)
	assert.Len(t, state.History, 1)
}

func TestSynthesisModelPostHandlerStoresResponse(t *testing.T) {
	state := &model.AppState{}
	handler := NewSynthesisModelPostHandler("gemini-2.5-flash")

	out := schema.AssistantMessage(" 구체적으로 12명이 검색되었고 시니어 위주 접촉을 추천드립니다. ", nil)
	_, err := handler(context.Background(), out, state)
	require.NoError(t, err)
	assert.Equal(t, "구체적으로 12명이 검색되었고 시니어 위주 접촉을 추천드립니다.", state.Results.SynthesizedResponse)
}

const passingResponse = "현재 Python 개발자는 12명이 등록되어 있습니다. 구체적으로는 백엔드 8명, 데이터 4명이며 " +
	"시니어 후보 위주의 접촉을 추천드립니다."

func gateConfig() model.QualityConfig {
	return model.QualityConfig{Threshold: 0.7, MaxRetries: 2}
}

func TestQualityVerdictPassingResponseFormats(t *testing.T) {
	state := &model.AppState{}
	state.Results.SynthesizedResponse = passingResponse

	report := applyQualityVerdict(state, gateConfig())

	assert.InDelta(t, 1.0, report.Score, 1e-9)
	assert.Equal(t, model.GateFormat, state.GateDecision)
	assert.Zero(t, state.RetryCount)
	assert.Equal(t, passingResponse, state.BestResponse)
}

func TestQualityVerdictRetriesUntilCapThenFormats(t *testing.T) {
	state := &model.AppState{}
	state.Results.SynthesizedResponse = "짧은 답"

	// two retries within budget, each incrementing the counter
	applyQualityVerdict(state, gateConfig())
	assert.Equal(t, model.GateRetry, state.GateDecision)
	assert.Equal(t, 1, state.RetryCount)

	applyQualityVerdict(state, gateConfig())
	assert.Equal(t, model.GateRetry, state.GateDecision)
	assert.Equal(t, 2, state.RetryCount)

	// budget spent: the gate must terminate even though the score still fails
	applyQualityVerdict(state, gateConfig())
	assert.Equal(t, model.GateFormat, state.GateDecision)
	assert.Equal(t, 2, state.RetryCount)
}

func TestQualityVerdictTracksBestAttempt(t *testing.T) {
	state := &model.AppState{}

	// first attempt scores 1/3 (long, no markers)
	longButVague := "좋은 질문입니다. 해당 분야의 인재 시장은 꾸준히 성장하고 있으며 수요도 계속 늘어나는 추세입니다."
	state.Results.SynthesizedResponse = longButVague
	applyQualityVerdict(state, gateConfig())
	assert.Equal(t, longButVague, state.BestResponse)
	assert.InDelta(t, 1.0/3.0, state.BestScore, 1e-9)

	// a worse second attempt must not displace the best one
	state.Results.SynthesizedResponse = "짧은 답"
	applyQualityVerdict(state, gateConfig())
	assert.Equal(t, longButVague, state.BestResponse)
	assert.InDelta(t, 1.0/3.0, state.BestScore, 1e-9)

	// an equal-scoring later attempt wins the tie
	longerButVague := longButVague + " 관련 직군 전반에서 비슷한 흐름이 관찰됩니다."
	state.Results.SynthesizedResponse = longerButVague
	applyQualityVerdict(state, gateConfig())
	assert.Equal(t, longerButVague, state.BestResponse)
}

func TestSelectFinalResponseFallsBackToBest(t *testing.T) {
	state := &model.AppState{}
	state.Results.SynthesizedResponse = "짧은 답"
	state.Results.QualityScore = 0
	state.BestResponse = "이전 시도의 더 나은 답변"
	state.BestScore = 1.0 / 3.0

	response, score := selectFinalResponse(state, gateConfig())
	assert.Equal(t, "이전 시도의 더 나은 답변", response)
	assert.InDelta(t, 1.0/3.0, score, 1e-9)
}

func TestSelectFinalResponseKeepsPassingSynthesis(t *testing.T) {
	state := &model.AppState{}
	state.Results.SynthesizedResponse = passingResponse
	state.Results.QualityScore = 1.0
	state.BestResponse = passingResponse
	state.BestScore = 1.0

	response, score := selectFinalResponse(state, gateConfig())
	assert.Equal(t, passingResponse, response)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestLastAssistantWithToolCalls(t *testing.T) {
	withCalls := &schema.Message{
		Role:      schema.Assistant,
		ToolCalls: []schema.ToolCall{{ID: "call_1", Function: schema.FunctionCall{Name: tools.ToolSearchTechNews}}},
	}
	history := []*schema.Message{
		schema.UserMessage("질문"),
		withCalls,
		schema.ToolMessage("{}", "call_1"),
		schema.AssistantMessage("중간 답변", nil),
	}
	assert.Same(t, withCalls, lastAssistantWithToolCalls(history))
	assert.Nil(t, lastAssistantWithToolCalls(nil))
}

func TestCopyHistoryDetaches(t *testing.T) {
	history := []*schema.Message{schema.UserMessage("a")}
	snapshot := copyHistory(history)
	history[0] = schema.UserMessage("b")
	assert.Equal(t, "a", snapshot[0].Content)
}
