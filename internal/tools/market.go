package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/headhunter-core/server/internal/knowledge"
	logx "github.com/headhunter-core/server/pkg/logger"
)

const defaultMarketTopK = 3

func capHits(hits []knowledge.Hit) []knowledge.Hit {
	if len(hits) > payloadCap {
		return hits[:payloadCap]
	}
	return hits
}

type techInformationInput struct {
	Technology string `json:"technology"`
	TopK       int    `json:"top_k,omitempty"`
}

type techInformationOutput struct {
	Success     bool            `json:"success"`
	Technology  string          `json:"technology,omitempty"`
	Count       int             `json:"count,omitempty"`
	Information []knowledge.Hit `json:"information,omitempty"`
	Message     string          `json:"message"`
	Error       string          `json:"error,omitempty"`
}

func (k *Toolkit) searchTechInformationTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchTechInformation,
			Desc: "지식 베이스에서 특정 기술의 특징, 사용법, 트렌드를 검색합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"technology": {
					Type:     "string",
					Desc:     "검색할 기술명. 예: \"Python\", \"React\", \"AWS\", \"Docker\"",
					Required: true,
				},
				"top_k": {Type: "number", Desc: "반환할 최대 결과 수 (기본값: 3)"},
			}),
		},
		func(ctx context.Context, in *techInformationInput) (*techInformationOutput, error) {
			topK := in.TopK
			if topK <= 0 {
				topK = defaultMarketTopK
			}
			hits, err := k.Knowledge.SearchByCategory(ctx, knowledge.CategoryTechInfo,
				fmt.Sprintf("%s 기술 특징 사용법 트렌드", in.Technology), topK)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolSearchTechInformation).Msg("market tool failed")
				return &techInformationOutput{Success: false, Error: err.Error(), Message: "기술 정보 검색 중 오류가 발생했습니다."}, nil
			}
			if len(hits) == 0 {
				return &techInformationOutput{
					Success: false,
					Message: fmt.Sprintf("'%s' 기술에 대한 정보를 찾을 수 없습니다.", in.Technology),
				}, nil
			}
			return &techInformationOutput{
				Success:     true,
				Technology:  in.Technology,
				Count:       len(hits),
				Information: capHits(hits),
				Message:     fmt.Sprintf("'%s' 기술에 대한 정보 %d건을 찾았습니다.", in.Technology, len(hits)),
			}, nil
		},
	)
}

type marketTrendsInput struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type marketTrendsOutput struct {
	Success bool            `json:"success"`
	Query   string          `json:"query,omitempty"`
	Count   int             `json:"count,omitempty"`
	Trends  []knowledge.Hit `json:"trends,omitempty"`
	Message string          `json:"message"`
	Error   string          `json:"error,omitempty"`
}

func (k *Toolkit) searchMarketTrendsTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchMarketTrends,
			Desc: "지식 베이스에서 개발자 시장 트렌드를 검색합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "시장 트렌드 쿼리. 예: \"개발자 시장\", \"AI 엔지니어 수요\", \"원격근무 트렌드\"",
					Required: true,
				},
				"top_k": {Type: "number", Desc: "반환할 최대 결과 수 (기본값: 3)"},
			}),
		},
		func(ctx context.Context, in *marketTrendsInput) (*marketTrendsOutput, error) {
			topK := in.TopK
			if topK <= 0 {
				topK = defaultMarketTopK
			}
			hits, err := k.Knowledge.SearchByCategory(ctx, knowledge.CategoryMarketTrends, in.Query, topK)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolSearchMarketTrends).Msg("market tool failed")
				return &marketTrendsOutput{Success: false, Error: err.Error(), Message: "시장 트렌드 검색 중 오류가 발생했습니다."}, nil
			}
			if len(hits) == 0 {
				return &marketTrendsOutput{
					Success: false,
					Message: fmt.Sprintf("'%s'에 대한 시장 트렌드 정보를 찾을 수 없습니다.", in.Query),
				}, nil
			}
			return &marketTrendsOutput{
				Success: true,
				Query:   in.Query,
				Count:   len(hits),
				Trends:  capHits(hits),
				Message: fmt.Sprintf("'%s'에 대한 시장 트렌드 %d건을 찾았습니다.", in.Query, len(hits)),
			}, nil
		},
	)
}

type industryAnalysisInput struct {
	Industry string `json:"industry"`
	TopK     int    `json:"top_k,omitempty"`
}

type industryAnalysisOutput struct {
	Success  bool            `json:"success"`
	Industry string          `json:"industry,omitempty"`
	Count    int             `json:"count,omitempty"`
	Analysis []knowledge.Hit `json:"analysis,omitempty"`
	Message  string          `json:"message"`
	Error    string          `json:"error,omitempty"`
}

func (k *Toolkit) searchIndustryAnalysisTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchIndustryAnalysis,
			Desc: "지식 베이스에서 산업 분야별 전망과 분석 정보를 검색합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"industry": {
					Type:     "string",
					Desc:     "산업 분야. 예: \"핀테크\", \"이커머스\", \"게임\", \"AI\"",
					Required: true,
				},
				"top_k": {Type: "number", Desc: "반환할 최대 결과 수 (기본값: 3)"},
			}),
		},
		func(ctx context.Context, in *industryAnalysisInput) (*industryAnalysisOutput, error) {
			topK := in.TopK
			if topK <= 0 {
				topK = defaultMarketTopK
			}
			hits, err := k.Knowledge.SearchByCategory(ctx, knowledge.CategoryIndustryAnalysis,
				fmt.Sprintf("%s 산업 전망 동향 분석", in.Industry), topK)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolSearchIndustryAnalysis).Msg("market tool failed")
				return &industryAnalysisOutput{Success: false, Error: err.Error(), Message: "산업 분석 검색 중 오류가 발생했습니다."}, nil
			}
			if len(hits) == 0 {
				return &industryAnalysisOutput{
					Success: false,
					Message: fmt.Sprintf("'%s' 산업에 대한 분석 정보를 찾을 수 없습니다.", in.Industry),
				}, nil
			}
			return &industryAnalysisOutput{
				Success:  true,
				Industry: in.Industry,
				Count:    len(hits),
				Analysis: capHits(hits),
				Message:  fmt.Sprintf("'%s' 산업 분석 %d건을 찾았습니다.", in.Industry, len(hits)),
			}, nil
		},
	)
}

type salaryInformationInput struct {
	Position string `json:"position"`
	TopK     int    `json:"top_k,omitempty"`
}

type salaryInformationOutput struct {
	Success    bool            `json:"success"`
	Position   string          `json:"position,omitempty"`
	Count      int             `json:"count,omitempty"`
	SalaryInfo []knowledge.Hit `json:"salary_info,omitempty"`
	Message    string          `json:"message"`
	Error      string          `json:"error,omitempty"`
}

func (k *Toolkit) searchSalaryInformationTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchSalaryInformation,
			Desc: "지식 베이스에서 포지션별 급여 수준 정보를 검색합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"position": {
					Type:     "string",
					Desc:     "직무/포지션. 예: \"개발자\", \"AI 엔지니어\", \"데이터 사이언티스트\"",
					Required: true,
				},
				"top_k": {Type: "number", Desc: "반환할 최대 결과 수 (기본값: 3)"},
			}),
		},
		func(ctx context.Context, in *salaryInformationInput) (*salaryInformationOutput, error) {
			topK := in.TopK
			if topK <= 0 {
				topK = defaultMarketTopK
			}
			hits, err := k.Knowledge.SearchByCategory(ctx, knowledge.CategorySalaryInfo,
				fmt.Sprintf("%s 연봉 급여 수준", in.Position), topK)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolSearchSalaryInformation).Msg("market tool failed")
				return &salaryInformationOutput{Success: false, Error: err.Error(), Message: "급여 정보 검색 중 오류가 발생했습니다."}, nil
			}
			if len(hits) == 0 {
				return &salaryInformationOutput{
					Success: false,
					Message: fmt.Sprintf("'%s' 포지션의 급여 정보를 찾을 수 없습니다.", in.Position),
				}, nil
			}
			return &salaryInformationOutput{
				Success:    true,
				Position:   in.Position,
				Count:      len(hits),
				SalaryInfo: capHits(hits),
				Message:    fmt.Sprintf("'%s' 포지션의 급여 정보 %d건을 찾았습니다.", in.Position, len(hits)),
			}, nil
		},
	)
}

type generalKnowledgeInput struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type generalKnowledgeOutput struct {
	Success bool            `json:"success"`
	Query   string          `json:"query,omitempty"`
	Count   int             `json:"count,omitempty"`
	Results []knowledge.Hit `json:"results,omitempty"`
	Message string          `json:"message"`
	Error   string          `json:"error,omitempty"`
}

func (k *Toolkit) generalKnowledgeSearchTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGeneralKnowledgeSearch,
			Desc: "지식 베이스 전체 카테고리에서 자연어 쿼리로 검색합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "검색 쿼리 (자연어 질문 가능)",
					Required: true,
				},
				"top_k": {Type: "number", Desc: "반환할 최대 결과 수 (기본값: 5)"},
			}),
		},
		func(ctx context.Context, in *generalKnowledgeInput) (*generalKnowledgeOutput, error) {
			topK := in.TopK
			if topK <= 0 {
				topK = 5
			}
			hits, err := k.Knowledge.Search(ctx, in.Query, topK)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolGeneralKnowledgeSearch).Msg("market tool failed")
				return &generalKnowledgeOutput{Success: false, Error: err.Error(), Message: "지식 검색 중 오류가 발생했습니다."}, nil
			}
			if len(hits) == 0 {
				return &generalKnowledgeOutput{
					Success: false,
					Message: fmt.Sprintf("'%s'에 대한 정보를 찾을 수 없습니다.", in.Query),
				}, nil
			}
			return &generalKnowledgeOutput{
				Success: true,
				Query:   in.Query,
				Count:   len(hits),
				Results: capHits(hits),
				Message: fmt.Sprintf("'%s'에 대한 정보 %d건을 찾았습니다.", in.Query, len(hits)),
			}, nil
		},
	)
}

type compareTechnologiesInput struct {
	Tech1 string `json:"tech1"`
	Tech2 string `json:"tech2"`
}

type technologyInfo struct {
	Name        string          `json:"name"`
	Information []knowledge.Hit `json:"information"`
}

type technologyComparison struct {
	Technology1 technologyInfo `json:"technology_1"`
	Technology2 technologyInfo `json:"technology_2"`
}

type compareTechnologiesOutput struct {
	Success    bool                  `json:"success"`
	Comparison *technologyComparison `json:"comparison,omitempty"`
	Message    string                `json:"message"`
	Error      string                `json:"error,omitempty"`
}

func (k *Toolkit) compareTechnologiesTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCompareTechnologies,
			Desc: "두 기술의 지식 베이스 정보를 나란히 조회해 비교합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"tech1": {Type: "string", Desc: "첫 번째 기술", Required: true},
				"tech2": {Type: "string", Desc: "두 번째 기술", Required: true},
			}),
		},
		func(ctx context.Context, in *compareTechnologiesInput) (*compareTechnologiesOutput, error) {
			first, err := k.Knowledge.SearchByCategory(ctx, knowledge.CategoryTechInfo,
				fmt.Sprintf("%s 기술 특징", in.Tech1), 2)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolCompareTechnologies).Msg("market tool failed")
				return &compareTechnologiesOutput{Success: false, Error: err.Error(), Message: "기술 비교 중 오류가 발생했습니다."}, nil
			}
			second, err := k.Knowledge.SearchByCategory(ctx, knowledge.CategoryTechInfo,
				fmt.Sprintf("%s 기술 특징", in.Tech2), 2)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolCompareTechnologies).Msg("market tool failed")
				return &compareTechnologiesOutput{Success: false, Error: err.Error(), Message: "기술 비교 중 오류가 발생했습니다."}, nil
			}
			return &compareTechnologiesOutput{
				Success: true,
				Comparison: &technologyComparison{
					Technology1: technologyInfo{Name: in.Tech1, Information: first},
					Technology2: technologyInfo{Name: in.Tech2, Information: second},
				},
				Message: fmt.Sprintf("%s와 %s 기술 비교 정보입니다.", in.Tech1, in.Tech2),
			}, nil
		},
	)
}

type knowledgeStatsInput struct{}

type knowledgeStatsOutput struct {
	Success    bool             `json:"success"`
	Statistics *knowledge.Stats `json:"statistics,omitempty"`
	Message    string           `json:"message"`
	Error      string           `json:"error,omitempty"`
}

func (k *Toolkit) getKnowledgeBaseStatsTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name:        ToolGetKnowledgeBaseStats,
			Desc:        "지식 베이스 통계 조회: 전체 문서 수와 카테고리별 분포.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, _ *knowledgeStatsInput) (*knowledgeStatsOutput, error) {
			stats, err := k.Knowledge.Stats(ctx)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolGetKnowledgeBaseStats).Msg("market tool failed")
				return &knowledgeStatsOutput{Success: false, Error: err.Error(), Message: "지식 베이스 통계 조회 중 오류가 발생했습니다."}, nil
			}
			return &knowledgeStatsOutput{
				Success:    true,
				Statistics: stats,
				Message:    fmt.Sprintf("지식 베이스에 총 %d개의 문서가 있습니다.", stats.TotalDocuments),
			}, nil
		},
	)
}
