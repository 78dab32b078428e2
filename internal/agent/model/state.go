package model

import (
	"github.com/cloudwego/eino/schema"
)

// AppState stores per-invocation state for the Eino graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState,
//     so every invocation gets a fresh instance; nothing is shared across sessions
//     or across concurrent runs.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//     Eino serializes access inside those handlers, so no mutex is required.
//   - History is append-only within a run; stages never reorder or drop turns.
type AppState struct {
	SessionID     string
	CustomerQuery string            // original user input, fixed at entry
	QueryType     QueryType         // assigned by the classifier, always in enum by dispatch
	SearchContext SearchContext     // overwritten on each enrichment pass
	Results       SynthesisResults  // overwritten on each synthesis/quality cycle
	History       []*schema.Message // mutated only inside Eino state handlers

	// Quality-gate retry bookkeeping. The reference flow had no cap on the
	// retry edge; RetryCount enforces one, and the best response observed so
	// far is what the formatter falls back to on exhaustion.
	RetryCount   int
	BestResponse string
	BestScore    float64
	GateDecision GateDecision

	ToolCallIDSeq int // synthesizes tool_call_id when the provider omits one

	// Accumulated total LLM cost (USD) across model invocations for this query
	TotalCostUSD float64
}

// SearchContext holds the free-text parameters extracted from the query.
// The extracted text is prompt context for downstream stages, not typed
// filters; the tool adapters parse their own arguments independently.
type SearchContext struct {
	ExtractedInfo string
}

// SynthesisResults is the output of the latest synthesis/quality cycle.
type SynthesisResults struct {
	SynthesizedResponse string
	QualityScore        float64
}

// GateDecision is the quality gate's routing verdict.
type GateDecision string

const (
	GateFormat GateDecision = "format"
	GateRetry  GateDecision = "retry"
)

// Classification is the parsed classifier verdict threaded between nodes.
type Classification struct {
	Type      QueryType `json:"type"`
	Rationale string    `json:"rationale,omitempty"`
}

// QueryInput is the public input for one workflow run.
type QueryInput struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// RunResult is the terminal output of one workflow run: the formatted
// assistant message plus the full in-run message history.
type RunResult struct {
	FinalMessage *schema.Message   `json:"final_message"`
	History      []*schema.Message `json:"history"`
	QueryType    QueryType         `json:"query_type"`
	QualityScore float64           `json:"quality_score"`
	TotalCostUSD float64           `json:"total_cost_usd"`
}
