package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headhunter-core/server/internal/agent/model"
	"github.com/headhunter-core/server/internal/knowledge"
	"github.com/headhunter-core/server/internal/store"
	"github.com/headhunter-core/server/internal/websearch"
)

type fakeCandidateStore struct {
	candidates []store.Candidate
	stats      *store.Statistics
	err        error
}

func (f *fakeCandidateStore) SearchBySkills(context.Context, store.SkillFilter) ([]store.Candidate, error) {
	return f.candidates, f.err
}
func (f *fakeCandidateStore) SearchByLocation(context.Context, string, bool) ([]store.Candidate, error) {
	return f.candidates, f.err
}
func (f *fakeCandidateStore) SearchBySalaryRange(context.Context, int, int) ([]store.Candidate, error) {
	return f.candidates, f.err
}
func (f *fakeCandidateStore) SearchByWorkType(context.Context, string) ([]store.Candidate, error) {
	return f.candidates, f.err
}
func (f *fakeCandidateStore) SearchByIndustry(context.Context, string) ([]store.Candidate, error) {
	return f.candidates, f.err
}
func (f *fakeCandidateStore) SearchByAvailability(context.Context, string) ([]store.Candidate, error) {
	return f.candidates, f.err
}
func (f *fakeCandidateStore) GetCandidate(context.Context, int64) (*store.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.candidates) == 0 {
		return nil, nil
	}
	return &f.candidates[0], nil
}
func (f *fakeCandidateStore) ComplexSearch(context.Context, store.ComplexFilter) ([]store.Candidate, error) {
	return f.candidates, f.err
}
func (f *fakeCandidateStore) Statistics(context.Context) (*store.Statistics, error) {
	return f.stats, f.err
}

type fakeKnowledge struct {
	hits  []knowledge.Hit
	stats *knowledge.Stats
	err   error
}

func (f *fakeKnowledge) SearchByCategory(context.Context, string, string, int) ([]knowledge.Hit, error) {
	return f.hits, f.err
}
func (f *fakeKnowledge) Search(context.Context, string, int) ([]knowledge.Hit, error) {
	return f.hits, f.err
}
func (f *fakeKnowledge) Add(context.Context, ...knowledge.Document) error { return f.err }
func (f *fakeKnowledge) Stats(context.Context) (*knowledge.Stats, error)  { return f.stats, f.err }

type fakeSearcher struct {
	lastQuery websearch.Query
	resp      *websearch.Response
	err       error
}

func (f *fakeSearcher) Search(_ context.Context, q websearch.Query) (*websearch.Response, error) {
	f.lastQuery = q
	return f.resp, f.err
}

func invoke(t *testing.T, bt tool.BaseTool, args string) map[string]any {
	t.Helper()
	it, ok := bt.(tool.InvokableTool)
	require.True(t, ok)
	raw, err := it.InvokableRun(context.Background(), args)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func findTool(t *testing.T, list []tool.BaseTool, name string) tool.BaseTool {
	t.Helper()
	for _, bt := range list {
		info, err := bt.Info(context.Background())
		require.NoError(t, err)
		if info.Name == name {
			return bt
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

func manyCandidates(n int) []store.Candidate {
	out := make([]store.Candidate, n)
	for i := range out {
		out[i] = store.Candidate{ID: int64(i + 1), Name: fmt.Sprintf("후보 %d", i+1), Location: "서울"}
	}
	return out
}

func TestSearchCandidatesBySkillsCapsPayload(t *testing.T) {
	kit := NewToolkit(&fakeCandidateStore{candidates: manyCandidates(15)}, &fakeKnowledge{}, &fakeSearcher{})
	bt := findTool(t, kit.CandidateTools(), ToolSearchCandidatesBySkills)

	out := invoke(t, bt, `{"skills":["Python","AWS"],"min_experience":3}`)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, float64(15), out["count"])
	assert.Len(t, out["candidates"], 10)
	assert.Contains(t, out["message"], "Python, AWS")
}

func TestCandidateToolSwallowsStoreError(t *testing.T) {
	kit := NewToolkit(&fakeCandidateStore{err: errors.New("db down")}, &fakeKnowledge{}, &fakeSearcher{})
	bt := findTool(t, kit.CandidateTools(), ToolGetCandidateStatistics)

	out := invoke(t, bt, `{}`)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "db down", out["error"])
	assert.NotEmpty(t, out["message"])
}

func TestGetCandidateDetailsNotFound(t *testing.T) {
	kit := NewToolkit(&fakeCandidateStore{}, &fakeKnowledge{}, &fakeSearcher{})
	bt := findTool(t, kit.CandidateTools(), ToolGetCandidateDetails)

	out := invoke(t, bt, `{"candidate_id":99}`)
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["message"], "99")
}

func TestComplexSearchMessageSummarizesConditions(t *testing.T) {
	kit := NewToolkit(&fakeCandidateStore{candidates: manyCandidates(2)}, &fakeKnowledge{}, &fakeSearcher{})
	bt := findTool(t, kit.CandidateTools(), ToolComplexCandidateSearch)

	out := invoke(t, bt, `{"skills":["Go"],"location":"판교","min_salary":6000,"work_type":"remote"}`)
	assert.Equal(t, true, out["success"])
	msg := out["message"].(string)
	assert.Contains(t, msg, "스킬: Go")
	assert.Contains(t, msg, "지역: 판교")
	assert.Contains(t, msg, "근무형태: remote")

	filters := out["filters_applied"].(map[string]any)
	assert.Equal(t, "판교", filters["location"])
	_, hasMax := filters["salary_max"]
	assert.False(t, hasMax)
}

func TestMarketToolEmptyResultIsFailure(t *testing.T) {
	kit := NewToolkit(&fakeCandidateStore{}, &fakeKnowledge{}, &fakeSearcher{})
	bt := findTool(t, kit.MarketTools(), ToolSearchTechInformation)

	out := invoke(t, bt, `{"technology":"COBOL"}`)
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["message"], "COBOL")
}

func TestMarketToolReturnsHits(t *testing.T) {
	kit := NewToolkit(&fakeCandidateStore{}, &fakeKnowledge{hits: []knowledge.Hit{
		{ID: "d1", Category: knowledge.CategoryMarketTrends, Content: "AI 엔지니어 수요 증가", Similarity: 0.92},
	}}, &fakeSearcher{})
	bt := findTool(t, kit.MarketTools(), ToolSearchMarketTrends)

	out := invoke(t, bt, `{"query":"AI 엔지니어 수요"}`)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, float64(1), out["count"])
	assert.Len(t, out["trends"], 1)
}

func TestCompareTechnologies(t *testing.T) {
	kit := NewToolkit(&fakeCandidateStore{}, &fakeKnowledge{hits: []knowledge.Hit{
		{ID: "d1", Content: "정보"},
	}}, &fakeSearcher{})
	bt := findTool(t, kit.MarketTools(), ToolCompareTechnologies)

	out := invoke(t, bt, `{"tech1":"Go","tech2":"Rust"}`)
	assert.Equal(t, true, out["success"])
	comparison := out["comparison"].(map[string]any)
	assert.Equal(t, "Go", comparison["technology_1"].(map[string]any)["name"])
	assert.Equal(t, "Rust", comparison["technology_2"].(map[string]any)["name"])
}

func TestWebToolBuildsQueryAndDomains(t *testing.T) {
	searcher := &fakeSearcher{resp: &websearch.Response{
		Answer: "요약",
		Results: []websearch.Result{
			{Title: "채용공고", URL: "https://example.com", Score: 0.8},
		},
	}}
	kit := NewToolkit(&fakeCandidateStore{}, &fakeKnowledge{}, searcher)
	bt := findTool(t, kit.WebTools(), ToolSearchJobPostings)

	out := invoke(t, bt, `{"position":"백엔드 개발자"}`)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "요약", out["answer"])
	assert.Contains(t, out["message"], "백엔드 개발자")

	assert.Equal(t, "백엔드 개발자 채용 한국 개발자 채용공고", searcher.lastQuery.Query)
	assert.Equal(t, 5, searcher.lastQuery.MaxResults)
	assert.Equal(t, "advanced", searcher.lastQuery.SearchDepth)
	assert.True(t, searcher.lastQuery.IncludeAnswer)
	assert.Equal(t, jobPostingDomains, searcher.lastQuery.IncludeDomains)
}

func TestWebToolSwallowsSearchError(t *testing.T) {
	kit := NewToolkit(&fakeCandidateStore{}, &fakeKnowledge{}, &fakeSearcher{err: errors.New("timeout")})
	bt := findTool(t, kit.WebTools(), ToolWebSearchLatestTrends)

	out := invoke(t, bt, `{"query":"AI 트렌드"}`)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "timeout", out["error"])
}

func TestAllowedToolNamesPerRole(t *testing.T) {
	assert.Len(t, AllowedToolNames(model.QueryCandidateSearch), 9)
	assert.Len(t, AllowedToolNames(model.QueryMarketAnalysis), 7)
	assert.Len(t, AllowedToolNames(model.QueryWebResearch), 6)
	assert.Len(t, AllowedToolNames(model.QueryGeneral), 22)

	set := AllowedSet(model.QueryCandidateSearch)
	_, ok := set[ToolWebSearchLatestTrends]
	assert.False(t, ok)
	_, ok = set[ToolComplexCandidateSearch]
	assert.True(t, ok)
}

func TestToolkitForQueryTypeMatchesRegistry(t *testing.T) {
	kit := NewToolkit(&fakeCandidateStore{}, &fakeKnowledge{}, &fakeSearcher{})

	for _, qt := range []model.QueryType{
		model.QueryCandidateSearch,
		model.QueryMarketAnalysis,
		model.QueryWebResearch,
		model.QueryGeneral,
	} {
		names := AllowedToolNames(qt)
		instances := kit.ForQueryType(qt)
		require.Len(t, instances, len(names), "query type %s", qt)
		for i, bt := range instances {
			info, err := bt.Info(context.Background())
			require.NoError(t, err)
			assert.Equal(t, names[i], info.Name)
		}
	}
}
