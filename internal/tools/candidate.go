package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/headhunter-core/server/internal/store"
	logx "github.com/headhunter-core/server/pkg/logger"
)

// CandidateListOutput is the shared shape of every list-returning candidate
// tool. On failure Success is false and Error carries the cause; the executor
// never sees an error from these adapters.
type CandidateListOutput struct {
	Success    bool              `json:"success"`
	Count      int               `json:"count,omitempty"`
	Candidates []store.Candidate `json:"candidates,omitempty"`
	Message    string            `json:"message"`
	Error      string            `json:"error,omitempty"`
}

func candidateFailure(op string, err error, message string) *CandidateListOutput {
	logx.Error().Err(err).Str("tool", op).Msg("candidate tool failed")
	return &CandidateListOutput{Success: false, Error: err.Error(), Message: message}
}

func capCandidates(candidates []store.Candidate) []store.Candidate {
	if len(candidates) > payloadCap {
		return candidates[:payloadCap]
	}
	return candidates
}

type searchBySkillsInput struct {
	Skills           []string `json:"skills"`
	MinExperience    int      `json:"min_experience,omitempty"`
	ProficiencyLevel string   `json:"proficiency_level,omitempty"`
}

func (k *Toolkit) searchCandidatesBySkillsTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchCandidatesBySkills,
			Desc: "기술 스킬 기반 인재 검색. 스킬 리스트와 최소 경력, 숙련도로 후보자를 찾습니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"skills": {
					Type:     "array",
					ElemInfo: &schema.ParameterInfo{Type: "string"},
					Desc:     "검색할 기술 스킬 리스트. 예: [\"Python\", \"React\", \"AWS\"]",
					Required: true,
				},
				"min_experience": {
					Type: "number",
					Desc: "해당 스킬의 최소 경력 년수 (기본값: 0)",
				},
				"proficiency_level": {
					Type: "string",
					Desc: "숙련도 수준: beginner, intermediate, advanced, expert",
				},
			}),
		},
		func(ctx context.Context, in *searchBySkillsInput) (*CandidateListOutput, error) {
			candidates, err := k.Candidates.SearchBySkills(ctx, store.SkillFilter{
				Skills:        in.Skills,
				MinExperience: in.MinExperience,
				Proficiency:   in.ProficiencyLevel,
			})
			if err != nil {
				return candidateFailure(ToolSearchCandidatesBySkills, err, "인재 검색 중 오류가 발생했습니다."), nil
			}
			return &CandidateListOutput{
				Success:    true,
				Count:      len(candidates),
				Candidates: capCandidates(candidates),
				Message:    fmt.Sprintf("'%s' 스킬을 가진 인재 %d명을 찾았습니다.", strings.Join(in.Skills, ", "), len(candidates)),
			}, nil
		},
	)
}

type searchByLocationInput struct {
	Location   string `json:"location"`
	ExactMatch bool   `json:"exact_match,omitempty"`
}

func (k *Toolkit) searchCandidatesByLocationTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchCandidatesByLocation,
			Desc: "지역 기반 인재 검색. 기본은 부분 일치이며 exact_match로 정확히 일치하는 지역만 조회할 수 있습니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"location": {
					Type:     "string",
					Desc:     "검색할 지역. 예: \"서울\", \"판교\", \"부산\"",
					Required: true,
				},
				"exact_match": {
					Type: "boolean",
					Desc: "true면 지역명이 정확히 일치하는 인재만 반환 (기본값: false)",
				},
			}),
		},
		func(ctx context.Context, in *searchByLocationInput) (*CandidateListOutput, error) {
			candidates, err := k.Candidates.SearchByLocation(ctx, in.Location, in.ExactMatch)
			if err != nil {
				return candidateFailure(ToolSearchCandidatesByLocation, err, "지역 기반 검색 중 오류가 발생했습니다."), nil
			}
			return &CandidateListOutput{
				Success:    true,
				Count:      len(candidates),
				Candidates: capCandidates(candidates),
				Message:    fmt.Sprintf("'%s' 지역의 인재 %d명을 찾았습니다.", in.Location, len(candidates)),
			}, nil
		},
	)
}

type searchBySalaryRangeInput struct {
	MinSalary int `json:"min_salary"`
	MaxSalary int `json:"max_salary"`
}

func (k *Toolkit) searchCandidatesBySalaryRangeTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchCandidatesBySalaryRange,
			Desc: "희망 연봉 범위로 인재를 검색합니다. 금액 단위는 만원입니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"min_salary": {
					Type:     "number",
					Desc:     "최소 연봉 (만원)",
					Required: true,
				},
				"max_salary": {
					Type:     "number",
					Desc:     "최대 연봉 (만원)",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *searchBySalaryRangeInput) (*CandidateListOutput, error) {
			candidates, err := k.Candidates.SearchBySalaryRange(ctx, in.MinSalary, in.MaxSalary)
			if err != nil {
				return candidateFailure(ToolSearchCandidatesBySalaryRange, err, "급여 범위 검색 중 오류가 발생했습니다."), nil
			}
			return &CandidateListOutput{
				Success:    true,
				Count:      len(candidates),
				Candidates: capCandidates(candidates),
				Message:    fmt.Sprintf("연봉 %d-%d만원 범위의 인재 %d명을 찾았습니다.", in.MinSalary, in.MaxSalary, len(candidates)),
			}, nil
		},
	)
}

type searchByWorkTypeInput struct {
	WorkType string `json:"work_type"`
}

var workTypeKorean = map[string]string{
	"remote": "원격근무",
	"hybrid": "하이브리드",
	"onsite": "출근",
}

func (k *Toolkit) searchCandidatesByWorkTypeTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchCandidatesByWorkType,
			Desc: "선호 근무 형태(remote, hybrid, onsite)로 인재를 검색합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"work_type": {
					Type:     "string",
					Desc:     "근무 형태: remote, hybrid, onsite",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *searchByWorkTypeInput) (*CandidateListOutput, error) {
			candidates, err := k.Candidates.SearchByWorkType(ctx, in.WorkType)
			if err != nil {
				return candidateFailure(ToolSearchCandidatesByWorkType, err, "근무 형태 검색 중 오류가 발생했습니다."), nil
			}
			label := in.WorkType
			if ko, ok := workTypeKorean[in.WorkType]; ok {
				label = ko
			}
			return &CandidateListOutput{
				Success:    true,
				Count:      len(candidates),
				Candidates: capCandidates(candidates),
				Message:    fmt.Sprintf("%s를 선호하는 인재 %d명을 찾았습니다.", label, len(candidates)),
			}, nil
		},
	)
}

type searchByIndustryInput struct {
	Industry string `json:"industry"`
}

func (k *Toolkit) searchCandidatesByIndustryTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchCandidatesByIndustry,
			Desc: "희망 산업 분야로 인재를 검색합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"industry": {
					Type:     "string",
					Desc:     "산업 분야. 예: \"Fintech\", \"E-commerce\", \"Gaming\"",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *searchByIndustryInput) (*CandidateListOutput, error) {
			candidates, err := k.Candidates.SearchByIndustry(ctx, in.Industry)
			if err != nil {
				return candidateFailure(ToolSearchCandidatesByIndustry, err, "산업 분야 검색 중 오류가 발생했습니다."), nil
			}
			return &CandidateListOutput{
				Success:    true,
				Count:      len(candidates),
				Candidates: capCandidates(candidates),
				Message:    fmt.Sprintf("'%s' 산업을 희망하는 인재 %d명을 찾았습니다.", in.Industry, len(candidates)),
			}, nil
		},
	)
}

type searchByAvailabilityInput struct {
	AvailabilityStatus string `json:"availability_status"`
}

var availabilityKorean = map[string]string{
	"actively_looking":  "적극적으로 구직중",
	"passively_looking": "소극적으로 구직중",
	"not_looking":       "구직하지 않음",
}

func (k *Toolkit) searchCandidatesByAvailabilityTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchCandidatesByAvailability,
			Desc: "구직 상태(actively_looking, passively_looking, not_looking)로 인재를 검색합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"availability_status": {
					Type:     "string",
					Desc:     "구직 상태: actively_looking, passively_looking, not_looking",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *searchByAvailabilityInput) (*CandidateListOutput, error) {
			candidates, err := k.Candidates.SearchByAvailability(ctx, in.AvailabilityStatus)
			if err != nil {
				return candidateFailure(ToolSearchCandidatesByAvailability, err, "구직 상태 검색 중 오류가 발생했습니다."), nil
			}
			label := in.AvailabilityStatus
			if ko, ok := availabilityKorean[in.AvailabilityStatus]; ok {
				label = ko
			}
			return &CandidateListOutput{
				Success:    true,
				Count:      len(candidates),
				Candidates: capCandidates(candidates),
				Message:    fmt.Sprintf("%s인 인재 %d명을 찾았습니다.", label, len(candidates)),
			}, nil
		},
	)
}

type candidateDetailsInput struct {
	CandidateID int64 `json:"candidate_id"`
}

type candidateDetailsOutput struct {
	Success   bool             `json:"success"`
	Candidate *store.Candidate `json:"candidate,omitempty"`
	Message   string           `json:"message"`
	Error     string           `json:"error,omitempty"`
}

func (k *Toolkit) getCandidateDetailsTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGetCandidateDetails,
			Desc: "특정 인재의 상세 정보를 조회합니다. 검색 결과의 인재 ID를 사용하세요.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"candidate_id": {
					Type:     "number",
					Desc:     "조회할 인재 ID",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *candidateDetailsInput) (*candidateDetailsOutput, error) {
			candidate, err := k.Candidates.GetCandidate(ctx, in.CandidateID)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolGetCandidateDetails).Msg("candidate tool failed")
				return &candidateDetailsOutput{Success: false, Error: err.Error(), Message: "인재 상세 정보 조회 중 오류가 발생했습니다."}, nil
			}
			if candidate == nil {
				return &candidateDetailsOutput{
					Success: false,
					Message: fmt.Sprintf("ID %d인 인재를 찾을 수 없습니다.", in.CandidateID),
				}, nil
			}
			return &candidateDetailsOutput{
				Success:   true,
				Candidate: candidate,
				Message:   fmt.Sprintf("%s님의 상세 정보입니다.", candidate.Name),
			}, nil
		},
	)
}

type complexSearchInput struct {
	Skills       []string `json:"skills,omitempty"`
	Location     string   `json:"location,omitempty"`
	MinSalary    int      `json:"min_salary,omitempty"`
	MaxSalary    int      `json:"max_salary,omitempty"`
	WorkType     string   `json:"work_type,omitempty"`
	Industry     string   `json:"industry,omitempty"`
	Availability string   `json:"availability,omitempty"`
	MinAge       int      `json:"min_age,omitempty"`
	MaxAge       int      `json:"max_age,omitempty"`
}

type complexSearchOutput struct {
	Success        bool              `json:"success"`
	Count          int               `json:"count,omitempty"`
	Candidates     []store.Candidate `json:"candidates,omitempty"`
	FiltersApplied map[string]any    `json:"filters_applied,omitempty"`
	Message        string            `json:"message"`
	Error          string            `json:"error,omitempty"`
}

func (k *Toolkit) complexCandidateSearchTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolComplexCandidateSearch,
			Desc: "여러 조건(스킬, 지역, 연봉, 근무 형태, 산업, 구직 상태, 나이)을 조합한 인재 검색. 지정하지 않은 조건은 무시됩니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"skills": {
					Type:     "array",
					ElemInfo: &schema.ParameterInfo{Type: "string"},
					Desc:     "기술 스킬 리스트",
				},
				"location":     {Type: "string", Desc: "지역"},
				"min_salary":   {Type: "number", Desc: "최소 연봉 (만원)"},
				"max_salary":   {Type: "number", Desc: "최대 연봉 (만원)"},
				"work_type":    {Type: "string", Desc: "근무 형태: remote, hybrid, onsite"},
				"industry":     {Type: "string", Desc: "산업 분야"},
				"availability": {Type: "string", Desc: "구직 상태"},
				"min_age":      {Type: "number", Desc: "최소 나이"},
				"max_age":      {Type: "number", Desc: "최대 나이"},
			}),
		},
		func(ctx context.Context, in *complexSearchInput) (*complexSearchOutput, error) {
			candidates, err := k.Candidates.ComplexSearch(ctx, store.ComplexFilter{
				Skills:       in.Skills,
				Location:     in.Location,
				SalaryMin:    in.MinSalary,
				SalaryMax:    in.MaxSalary,
				WorkType:     in.WorkType,
				Industry:     in.Industry,
				Availability: in.Availability,
				MinAge:       in.MinAge,
				MaxAge:       in.MaxAge,
			})
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolComplexCandidateSearch).Msg("candidate tool failed")
				return &complexSearchOutput{Success: false, Error: err.Error(), Message: "복합 검색 중 오류가 발생했습니다."}, nil
			}

			filters := map[string]any{}
			var conditions []string
			if len(in.Skills) > 0 {
				filters["skills"] = in.Skills
				conditions = append(conditions, "스킬: "+strings.Join(in.Skills, ", "))
			}
			if in.Location != "" {
				filters["location"] = in.Location
				conditions = append(conditions, "지역: "+in.Location)
			}
			if in.MinSalary > 0 || in.MaxSalary > 0 {
				if in.MinSalary > 0 {
					filters["salary_min"] = in.MinSalary
				}
				if in.MaxSalary > 0 {
					filters["salary_max"] = in.MaxSalary
				}
				conditions = append(conditions, fmt.Sprintf("연봉: %d-%d만원", in.MinSalary, in.MaxSalary))
			}
			if in.WorkType != "" {
				filters["work_type"] = in.WorkType
				conditions = append(conditions, "근무형태: "+in.WorkType)
			}
			if in.Industry != "" {
				filters["industry"] = in.Industry
				conditions = append(conditions, "산업: "+in.Industry)
			}
			if in.Availability != "" {
				filters["availability"] = in.Availability
			}
			if in.MinAge > 0 {
				filters["min_age"] = in.MinAge
			}
			if in.MaxAge > 0 {
				filters["max_age"] = in.MaxAge
			}

			conditionText := "모든 조건"
			if len(conditions) > 0 {
				conditionText = strings.Join(conditions, ", ")
			}
			return &complexSearchOutput{
				Success:        true,
				Count:          len(candidates),
				Candidates:     capCandidates(candidates),
				FiltersApplied: filters,
				Message:        fmt.Sprintf("%s에 맞는 인재 %d명을 찾았습니다.", conditionText, len(candidates)),
			}, nil
		},
	)
}

type candidateStatisticsInput struct{}

type candidateStatisticsOutput struct {
	Success    bool              `json:"success"`
	Statistics *store.Statistics `json:"statistics,omitempty"`
	Message    string            `json:"message"`
	Error      string            `json:"error,omitempty"`
}

func (k *Toolkit) getCandidateStatisticsTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name:        ToolGetCandidateStatistics,
			Desc:        "인재 데이터베이스 통계 조회: 전체 인재 수, 지역별 분포, 인기 스킬, 근무 형태 분포.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, _ *candidateStatisticsInput) (*candidateStatisticsOutput, error) {
			stats, err := k.Candidates.Statistics(ctx)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolGetCandidateStatistics).Msg("candidate tool failed")
				return &candidateStatisticsOutput{Success: false, Error: err.Error(), Message: "통계 정보 조회 중 오류가 발생했습니다."}, nil
			}
			return &candidateStatisticsOutput{
				Success:    true,
				Statistics: stats,
				Message:    fmt.Sprintf("총 %d명의 인재가 등록되어 있습니다.", stats.TotalCandidates),
			}, nil
		},
	)
}
