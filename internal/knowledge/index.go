package knowledge

import (
	"context"
	"fmt"
	"sort"

	"github.com/philippgille/chromem-go"
	"google.golang.org/genai"

	logx "github.com/headhunter-core/server/pkg/logger"
)

// Collection names for the knowledge base. Each document lives in exactly one.
const (
	CategoryTechInfo         = "tech_info"
	CategoryMarketTrends     = "market_trends"
	CategoryIndustryAnalysis = "industry_analysis"
	CategorySalaryInfo       = "salary_info"
)

// Categories lists every collection the index manages, in a stable order.
var Categories = []string{
	CategoryTechInfo,
	CategoryMarketTrends,
	CategoryIndustryAnalysis,
	CategorySalaryInfo,
}

const defaultEmbeddingModel = "text-embedding-004"

type Config struct {
	PersistPath    string `split_words:"true"`
	EmbeddingModel string `split_words:"true" default:"text-embedding-004"`
}

// Document is one knowledge-base entry.
type Document struct {
	ID       string            `json:"id"`
	Category string            `json:"category"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Hit is one similarity-search result.
type Hit struct {
	ID         string            `json:"id"`
	Category   string            `json:"category"`
	Content    string            `json:"content"`
	Similarity float32           `json:"similarity"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Stats summarizes the index contents per category.
type Stats struct {
	TotalDocuments int            `json:"total_documents"`
	ByCategory     map[string]int `json:"by_category"`
}

// KnowledgeIndex is the retrieval interface the market tool adapters consume.
type KnowledgeIndex interface {
	SearchByCategory(ctx context.Context, category, query string, topK int) ([]Hit, error)
	Search(ctx context.Context, query string, topK int) ([]Hit, error)
	Add(ctx context.Context, docs ...Document) error
	Stats(ctx context.Context) (*Stats, error)
}

// Index stores domain knowledge in one chromem collection per category and
// answers similarity queries against them.
type Index struct {
	db        *chromem.DB
	embedding chromem.EmbeddingFunc
}

// NewIndex builds an in-memory index, or a persistent one when cfg.PersistPath
// is set. The embedding function decides the vector space; see GeminiEmbedding.
func NewIndex(cfg Config, embedding chromem.EmbeddingFunc) (*Index, error) {
	var (
		db  *chromem.DB
		err error
	)
	if cfg.PersistPath != "" {
		db, err = chromem.NewPersistentDB(cfg.PersistPath, false)
		if err != nil {
			return nil, fmt.Errorf("open knowledge db at %s: %w", cfg.PersistPath, err)
		}
	} else {
		db = chromem.NewDB()
	}

	idx := &Index{db: db, embedding: embedding}
	for _, category := range Categories {
		if _, err := db.GetOrCreateCollection(category, nil, embedding); err != nil {
			return nil, fmt.Errorf("create collection %s: %w", category, err)
		}
	}
	return idx, nil
}

// GeminiEmbedding embeds text with the Gemini embedding API.
func GeminiEmbedding(client *genai.Client, model string) chromem.EmbeddingFunc {
	if model == "" {
		model = defaultEmbeddingModel
	}
	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := client.Models.EmbedContent(ctx, model, genai.Text(text), nil)
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		if len(resp.Embeddings) == 0 {
			return nil, fmt.Errorf("embed content: empty response")
		}
		return resp.Embeddings[0].Values, nil
	}
}

func (x *Index) collection(category string) (*chromem.Collection, error) {
	for _, c := range Categories {
		if c == category {
			return x.db.GetOrCreateCollection(category, nil, x.embedding)
		}
	}
	return nil, fmt.Errorf("unknown knowledge category: %s", category)
}

func (x *Index) Add(ctx context.Context, docs ...Document) error {
	for _, doc := range docs {
		col, err := x.collection(doc.Category)
		if err != nil {
			return err
		}
		meta := map[string]string{"category": doc.Category}
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		if err := col.AddDocument(ctx, chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: meta,
		}); err != nil {
			return fmt.Errorf("add document %s: %w", doc.ID, err)
		}
	}
	return nil
}

func (x *Index) SearchByCategory(ctx context.Context, category, query string, topK int) ([]Hit, error) {
	col, err := x.collection(category)
	if err != nil {
		return nil, err
	}
	return x.queryCollection(ctx, col, category, query, topK)
}

// Search queries every category and returns the best hits overall, sorted by
// similarity descending.
func (x *Index) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	var hits []Hit
	for _, category := range Categories {
		col, err := x.collection(category)
		if err != nil {
			return nil, err
		}
		categoryHits, err := x.queryCollection(ctx, col, category, query, topK)
		if err != nil {
			return nil, err
		}
		hits = append(hits, categoryHits...)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (x *Index) queryCollection(ctx context.Context, col *chromem.Collection, category, query string, topK int) ([]Hit, error) {
	// chromem rejects nResults above the collection size
	n := col.Count()
	if n == 0 {
		return nil, nil
	}
	if topK <= 0 || topK > n {
		topK = n
	}

	results, err := col.Query(ctx, query, topK, nil, nil)
	if err != nil {
		logx.Error().Err(err).Str("category", category).Msg("knowledge query failed")
		return nil, fmt.Errorf("query %s: %w", category, err)
	}

	hits := make([]Hit, 0, len(results))
	for _, res := range results {
		hits = append(hits, Hit{
			ID:         res.ID,
			Category:   category,
			Content:    res.Content,
			Similarity: res.Similarity,
			Metadata:   res.Metadata,
		})
	}
	return hits, nil
}

func (x *Index) Stats(_ context.Context) (*Stats, error) {
	stats := &Stats{ByCategory: make(map[string]int, len(Categories))}
	for _, category := range Categories {
		col, err := x.collection(category)
		if err != nil {
			return nil, err
		}
		n := col.Count()
		stats.ByCategory[category] = n
		stats.TotalDocuments += n
	}
	return stats, nil
}

var _ KnowledgeIndex = (*Index)(nil)
