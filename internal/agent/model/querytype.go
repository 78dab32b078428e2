package model

import "strings"

// QueryType is the closed category set a user query is classified into.
type QueryType string

const (
	QueryCandidateSearch QueryType = "candidate_search"
	QueryMarketAnalysis  QueryType = "market_analysis"
	QueryWebResearch     QueryType = "web_research"
	QueryGeneral         QueryType = "general"
)

func (q QueryType) String() string {
	return string(q)
}

// Valid reports whether q is one of the enumerated categories.
func (q QueryType) Valid() bool {
	switch q {
	case QueryCandidateSearch, QueryMarketAnalysis, QueryWebResearch, QueryGeneral:
		return true
	}
	return false
}

// ParseQueryType maps raw classifier output to a category by testing for
// keyword substrings in fixed priority order (candidate > market > web).
// The parsing is intentionally lossy: no structured output is enforced on the
// classifier, so keyword collisions resolve via first-match priority and
// anything unrecognized falls back to the general category. The result is
// never out of enum.
func ParseQueryType(raw string) QueryType {
	text := strings.ToLower(raw)
	switch {
	case strings.Contains(text, "candidate"):
		return QueryCandidateSearch
	case strings.Contains(text, "market"):
		return QueryMarketAnalysis
	case strings.Contains(text, "web"):
		return QueryWebResearch
	default:
		return QueryGeneral
	}
}
