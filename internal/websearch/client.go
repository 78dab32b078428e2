package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	logx "github.com/headhunter-core/server/pkg/logger"
)

const defaultBaseURL = "https://api.tavily.com"

type Config struct {
	APIKey  string        `envconfig:"TAVILY_API_KEY"`
	BaseURL string        `split_words:"true" default:"https://api.tavily.com"`
	Timeout time.Duration `default:"15s"`
}

// Result is one ranked hit from the search API.
type Result struct {
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	URL           string  `json:"url"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date,omitempty"`
}

// Response carries the hits plus the API's own synthesized answer when
// include_answer was requested.
type Response struct {
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

// Query controls a single search call. Zero values fall back to the API
// defaults (basic depth, 5 results, no answer).
type Query struct {
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results,omitempty"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	IncludeAnswer  bool     `json:"include_answer,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

// Searcher is the interface the web tool adapters consume.
type Searcher interface {
	Search(ctx context.Context, q Query) (*Response, error)
}

// Client talks to a Tavily-compatible search endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	APIKey string `json:"api_key"`
	Query
}

func (c *Client) Search(ctx context.Context, q Query) (*Response, error) {
	body, err := json.Marshal(searchRequest{APIKey: c.apiKey, Query: q})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logx.Error().Err(err).Str("query", q.Query).Msg("web search request failed")
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logx.Error().Int("status", resp.StatusCode).Str("query", q.Query).Msg("web search returned non-200")
		return nil, fmt.Errorf("search API status %d: %s", resp.StatusCode, snippet)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	logx.Debug().Str("query", q.Query).Int("results", len(out.Results)).Msg("web search completed")
	return &out, nil
}

var _ Searcher = (*Client)(nil)
