package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryType(t *testing.T) {
	cases := []struct {
		raw  string
		want QueryType
	}{
		{"candidate_search", QueryCandidateSearch},
		{"카테고리: Market_Analysis", QueryMarketAnalysis},
		{"web_research 가 적합합니다", QueryWebResearch},
		{"일반 대화입니다", QueryGeneral},
		{"", QueryGeneral},
		// fixed priority: candidate beats market beats web
		{"candidate or market or web", QueryCandidateSearch},
		{"market, not web", QueryMarketAnalysis},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseQueryType(tc.raw), tc.raw)
	}
}

func TestQueryTypeValid(t *testing.T) {
	for _, qt := range []QueryType{QueryCandidateSearch, QueryMarketAnalysis, QueryWebResearch, QueryGeneral} {
		assert.True(t, qt.Valid())
	}
	assert.False(t, QueryType("other").Valid())
	assert.False(t, QueryType("").Valid())
}
