package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/headhunter-core/server/internal/agent/model"
	"github.com/headhunter-core/server/internal/knowledge"
	"github.com/headhunter-core/server/internal/store"
	"github.com/headhunter-core/server/internal/websearch"
)

// payloadCap bounds every list payload a tool hands back to the model.
const payloadCap = 10

// Candidate tool names.
const (
	ToolSearchCandidatesBySkills       = "search_candidates_by_skills"
	ToolSearchCandidatesByLocation     = "search_candidates_by_location"
	ToolSearchCandidatesBySalaryRange  = "search_candidates_by_salary_range"
	ToolSearchCandidatesByWorkType     = "search_candidates_by_work_type"
	ToolSearchCandidatesByIndustry     = "search_candidates_by_industry"
	ToolSearchCandidatesByAvailability = "search_candidates_by_availability"
	ToolGetCandidateDetails            = "get_candidate_details"
	ToolComplexCandidateSearch         = "complex_candidate_search"
	ToolGetCandidateStatistics         = "get_candidate_statistics"
)

// Market tool names.
const (
	ToolSearchTechInformation   = "search_tech_information"
	ToolSearchMarketTrends      = "search_market_trends"
	ToolSearchIndustryAnalysis  = "search_industry_analysis"
	ToolSearchSalaryInformation = "search_salary_information"
	ToolGeneralKnowledgeSearch  = "general_knowledge_search"
	ToolCompareTechnologies     = "compare_technologies"
	ToolGetKnowledgeBaseStats   = "get_knowledge_base_stats"
)

// Web tool names.
const (
	ToolWebSearchLatestTrends    = "web_search_latest_trends"
	ToolSearchJobPostings        = "search_job_postings"
	ToolSearchCompanyInformation = "search_company_information"
	ToolSearchSalaryBenchmarks   = "search_salary_benchmarks"
	ToolSearchTechNews           = "search_tech_news"
	ToolSearchStartupFundingNews = "search_startup_funding_news"
)

var candidateToolNames = []string{
	ToolSearchCandidatesBySkills,
	ToolSearchCandidatesByLocation,
	ToolSearchCandidatesBySalaryRange,
	ToolSearchCandidatesByWorkType,
	ToolSearchCandidatesByIndustry,
	ToolSearchCandidatesByAvailability,
	ToolGetCandidateDetails,
	ToolComplexCandidateSearch,
	ToolGetCandidateStatistics,
}

var marketToolNames = []string{
	ToolSearchTechInformation,
	ToolSearchMarketTrends,
	ToolSearchIndustryAnalysis,
	ToolSearchSalaryInformation,
	ToolGeneralKnowledgeSearch,
	ToolCompareTechnologies,
	ToolGetKnowledgeBaseStats,
}

var webToolNames = []string{
	ToolWebSearchLatestTrends,
	ToolSearchJobPostings,
	ToolSearchCompanyInformation,
	ToolSearchSalaryBenchmarks,
	ToolSearchTechNews,
	ToolSearchStartupFundingNews,
}

// AllowedToolNames returns the tool subset a query category may use. The
// general category gets the full combined set.
func AllowedToolNames(qt model.QueryType) []string {
	switch qt {
	case model.QueryCandidateSearch:
		return append([]string(nil), candidateToolNames...)
	case model.QueryMarketAnalysis:
		return append([]string(nil), marketToolNames...)
	case model.QueryWebResearch:
		return append([]string(nil), webToolNames...)
	default:
		all := make([]string, 0, len(candidateToolNames)+len(marketToolNames)+len(webToolNames))
		all = append(all, candidateToolNames...)
		all = append(all, marketToolNames...)
		all = append(all, webToolNames...)
		return all
	}
}

// AllowedSet is AllowedToolNames as a membership set.
func AllowedSet(qt model.QueryType) map[string]struct{} {
	names := AllowedToolNames(qt)
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Toolkit builds the tool adapters over the backing collaborators. Adapters
// are pure reads and never return an error to the executor: backend failures
// come back as {success:false} payloads the model can reason about.
type Toolkit struct {
	Candidates store.CandidateStore
	Knowledge  knowledge.KnowledgeIndex
	Web        websearch.Searcher
}

func NewToolkit(candidates store.CandidateStore, idx knowledge.KnowledgeIndex, web websearch.Searcher) *Toolkit {
	return &Toolkit{Candidates: candidates, Knowledge: idx, Web: web}
}

func (k *Toolkit) CandidateTools() []tool.BaseTool {
	return []tool.BaseTool{
		k.searchCandidatesBySkillsTool(),
		k.searchCandidatesByLocationTool(),
		k.searchCandidatesBySalaryRangeTool(),
		k.searchCandidatesByWorkTypeTool(),
		k.searchCandidatesByIndustryTool(),
		k.searchCandidatesByAvailabilityTool(),
		k.getCandidateDetailsTool(),
		k.complexCandidateSearchTool(),
		k.getCandidateStatisticsTool(),
	}
}

func (k *Toolkit) MarketTools() []tool.BaseTool {
	return []tool.BaseTool{
		k.searchTechInformationTool(),
		k.searchMarketTrendsTool(),
		k.searchIndustryAnalysisTool(),
		k.searchSalaryInformationTool(),
		k.generalKnowledgeSearchTool(),
		k.compareTechnologiesTool(),
		k.getKnowledgeBaseStatsTool(),
	}
}

func (k *Toolkit) WebTools() []tool.BaseTool {
	return []tool.BaseTool{
		k.webSearchLatestTrendsTool(),
		k.searchJobPostingsTool(),
		k.searchCompanyInformationTool(),
		k.searchSalaryBenchmarksTool(),
		k.searchTechNewsTool(),
		k.searchStartupFundingNewsTool(),
	}
}

func (k *Toolkit) AllTools() []tool.BaseTool {
	var all []tool.BaseTool
	all = append(all, k.CandidateTools()...)
	all = append(all, k.MarketTools()...)
	all = append(all, k.WebTools()...)
	return all
}

// Infos collects the ToolInfo declarations for a tool set, for binding to a
// chat model.
func Infos(ctx context.Context, ts []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ForQueryType mirrors AllowedToolNames at the tool instance level.
func (k *Toolkit) ForQueryType(qt model.QueryType) []tool.BaseTool {
	switch qt {
	case model.QueryCandidateSearch:
		return k.CandidateTools()
	case model.QueryMarketAnalysis:
		return k.MarketTools()
	case model.QueryWebResearch:
		return k.WebTools()
	default:
		return k.AllTools()
	}
}
