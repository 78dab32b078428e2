package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/headhunter-core/server/internal/websearch"
	logx "github.com/headhunter-core/server/pkg/logger"
)

// Every web tool issues an advanced-depth search with the AI answer enabled.
const webSearchDepth = "advanced"

var jobPostingDomains = []string{"saramin.co.kr", "jobkorea.co.kr", "wanted.co.kr", "programmers.co.kr"}
var techNewsDomains = []string{"techcrunch.com", "zdnet.co.kr", "bloter.net", "itworld.co.kr"}

// WebSearchOutput is the shared shape of every web tool result.
type WebSearchOutput struct {
	Success bool               `json:"success"`
	Query   string             `json:"query,omitempty"`
	Count   int                `json:"count,omitempty"`
	Results []websearch.Result `json:"results,omitempty"`
	Answer  string             `json:"answer,omitempty"`
	Message string             `json:"message"`
	Error   string             `json:"error,omitempty"`
}

func (k *Toolkit) runWebSearch(ctx context.Context, toolName, query string, maxResults int, domains []string, okMessage func(count int) string, failMessage string) (*WebSearchOutput, error) {
	resp, err := k.Web.Search(ctx, websearch.Query{
		Query:          query,
		MaxResults:     maxResults,
		SearchDepth:    webSearchDepth,
		IncludeAnswer:  true,
		IncludeDomains: domains,
	})
	if err != nil {
		logx.Error().Err(err).Str("tool", toolName).Msg("web tool failed")
		return &WebSearchOutput{Success: false, Error: err.Error(), Message: failMessage}, nil
	}

	results := resp.Results
	if len(results) > payloadCap {
		results = results[:payloadCap]
	}
	return &WebSearchOutput{
		Success: true,
		Query:   query,
		Count:   len(results),
		Results: results,
		Answer:  resp.Answer,
		Message: okMessage(len(results)),
	}, nil
}

type latestTrendsInput struct {
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

func (k *Toolkit) webSearchLatestTrendsTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolWebSearchLatestTrends,
			Desc: "최신 채용 및 개발자 트렌드를 웹에서 검색합니다. 관련성 점수와 AI 요약 답변을 함께 반환합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "검색할 키워드 또는 질문. 예: \"2024 AI 개발자 트렌드\", \"풀스택 개발자 채용 동향\"",
					Required: true,
				},
				"max_results": {Type: "number", Desc: "반환할 최대 검색 결과 수 (기본값: 3, 권장 범위: 1-5)"},
				"include_domains": {
					Type:     "array",
					ElemInfo: &schema.ParameterInfo{Type: "string"},
					Desc:     "검색 범위를 특정 도메인으로 제한. 예: [\"techcrunch.com\", \"zdnet.co.kr\"]",
				},
			}),
		},
		func(ctx context.Context, in *latestTrendsInput) (*WebSearchOutput, error) {
			maxResults := in.MaxResults
			if maxResults <= 0 {
				maxResults = 3
			}
			return k.runWebSearch(ctx, ToolWebSearchLatestTrends, in.Query, maxResults, in.IncludeDomains,
				func(count int) string {
					return fmt.Sprintf("'%s'에 대한 최신 웹 검색 결과 %d건을 찾았습니다.", in.Query, count)
				},
				"웹 검색 중 오류가 발생했습니다.")
		},
	)
}

type jobPostingsInput struct {
	Position   string `json:"position"`
	Location   string `json:"location,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

func (k *Toolkit) searchJobPostingsTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchJobPostings,
			Desc: "한국 주요 채용 플랫폼(사람인, 잡코리아, 원티드, 프로그래머스)에서 개발자 채용공고를 검색합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"position": {
					Type:     "string",
					Desc:     "검색할 포지션. 예: \"백엔드 개발자\", \"AI 엔지니어\"",
					Required: true,
				},
				"location":    {Type: "string", Desc: "지역 (기본값: \"한국\")"},
				"max_results": {Type: "number", Desc: "반환할 최대 채용공고 수 (기본값: 5, 권장 범위: 3-10)"},
			}),
		},
		func(ctx context.Context, in *jobPostingsInput) (*WebSearchOutput, error) {
			location := in.Location
			if location == "" {
				location = "한국"
			}
			maxResults := in.MaxResults
			if maxResults <= 0 {
				maxResults = 5
			}
			query := fmt.Sprintf("%s 채용 %s 개발자 채용공고", in.Position, location)
			return k.runWebSearch(ctx, ToolSearchJobPostings, query, maxResults, jobPostingDomains,
				func(count int) string {
					return fmt.Sprintf("%s의 '%s' 채용공고 %d건을 찾았습니다.", location, in.Position, count)
				},
				"채용공고 검색 중 오류가 발생했습니다.")
		},
	)
}

type companyInformationInput struct {
	CompanyName string `json:"company_name"`
	MaxResults  int    `json:"max_results,omitempty"`
}

func (k *Toolkit) searchCompanyInformationTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchCompanyInformation,
			Desc: "특정 회사의 일반 정보, 채용 현황, 복리후생, 개발 문화를 검색합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"company_name": {
					Type:     "string",
					Desc:     "검색할 회사명. 예: \"카카오\", \"네이버\", \"토스\"",
					Required: true,
				},
				"max_results": {Type: "number", Desc: "반환할 최대 검색 결과 수 (기본값: 3, 권장 범위: 2-5)"},
			}),
		},
		func(ctx context.Context, in *companyInformationInput) (*WebSearchOutput, error) {
			maxResults := in.MaxResults
			if maxResults <= 0 {
				maxResults = 3
			}
			query := fmt.Sprintf("%s 회사 정보 채용 개발자 복리후생", in.CompanyName)
			return k.runWebSearch(ctx, ToolSearchCompanyInformation, query, maxResults, nil,
				func(count int) string {
					return fmt.Sprintf("'%s' 회사 정보 %d건을 찾았습니다.", in.CompanyName, count)
				},
				"회사 정보 검색 중 오류가 발생했습니다.")
		},
	)
}

type salaryBenchmarksInput struct {
	Position   string `json:"position"`
	Location   string `json:"location,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

func (k *Toolkit) searchSalaryBenchmarksTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchSalaryBenchmarks,
			Desc: "특정 포지션의 시장 급여 수준과 경력별 연봉 데이터를 검색합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"position": {
					Type:     "string",
					Desc:     "급여 정보를 검색할 직무. 예: \"시니어 백엔드 개발자\", \"ML 엔지니어 3년차\"",
					Required: true,
				},
				"location":    {Type: "string", Desc: "지역 (기본값: \"한국\"). 예: \"서울\", \"판교\", \"미국\""},
				"max_results": {Type: "number", Desc: "반환할 최대 검색 결과 수 (기본값: 3, 권장 범위: 2-5)"},
			}),
		},
		func(ctx context.Context, in *salaryBenchmarksInput) (*WebSearchOutput, error) {
			location := in.Location
			if location == "" {
				location = "한국"
			}
			maxResults := in.MaxResults
			if maxResults <= 0 {
				maxResults = 3
			}
			query := fmt.Sprintf("%s 연봉 급여 %s 2024", in.Position, location)
			return k.runWebSearch(ctx, ToolSearchSalaryBenchmarks, query, maxResults, nil,
				func(count int) string {
					return fmt.Sprintf("%s의 '%s' 급여 정보 %d건을 찾았습니다.", location, in.Position, count)
				},
				"급여 벤치마크 검색 중 오류가 발생했습니다.")
		},
	)
}

type techNewsInput struct {
	Technology string `json:"technology"`
	MaxResults int    `json:"max_results,omitempty"`
}

func (k *Toolkit) searchTechNewsTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchTechNews,
			Desc: "주요 IT 미디어에서 특정 기술의 최신 뉴스와 트렌드를 검색합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"technology": {
					Type:     "string",
					Desc:     "뉴스를 검색할 기술명. 예: \"Kubernetes\", \"Rust\", \"LLM\"",
					Required: true,
				},
				"max_results": {Type: "number", Desc: "반환할 최대 뉴스 수 (기본값: 3, 권장 범위: 2-5)"},
			}),
		},
		func(ctx context.Context, in *techNewsInput) (*WebSearchOutput, error) {
			maxResults := in.MaxResults
			if maxResults <= 0 {
				maxResults = 3
			}
			query := fmt.Sprintf("%s 기술 뉴스 트렌드 2024", in.Technology)
			return k.runWebSearch(ctx, ToolSearchTechNews, query, maxResults, techNewsDomains,
				func(count int) string {
					return fmt.Sprintf("'%s' 관련 최신 뉴스 %d건을 찾았습니다.", in.Technology, count)
				},
				"기술 뉴스 검색 중 오류가 발생했습니다.")
		},
	)
}

type startupFundingNewsInput struct {
	MaxResults int `json:"max_results,omitempty"`
}

func (k *Toolkit) searchStartupFundingNewsTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchStartupFundingNews,
			Desc: "스타트업 투자 유치와 채용 확대 관련 최신 뉴스를 검색합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"max_results": {Type: "number", Desc: "반환할 최대 뉴스 수 (기본값: 3, 권장 범위: 3-7)"},
			}),
		},
		func(ctx context.Context, in *startupFundingNewsInput) (*WebSearchOutput, error) {
			maxResults := in.MaxResults
			if maxResults <= 0 {
				maxResults = 3
			}
			return k.runWebSearch(ctx, ToolSearchStartupFundingNews, "스타트업 투자 채용 개발자 2024", maxResults, nil,
				func(count int) string {
					return fmt.Sprintf("스타트업 투자/채용 뉴스 %d건을 찾았습니다.", count)
				},
				"스타트업 뉴스 검색 중 오류가 발생했습니다.")
		},
	)
}
