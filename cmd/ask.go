package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/headhunter-core/server/internal/agent/graph"
	"github.com/headhunter-core/server/internal/agent/model"
	"github.com/headhunter-core/server/internal/agent/repo"
	"github.com/headhunter-core/server/internal/knowledge"
	"github.com/headhunter-core/server/internal/store"
	"github.com/headhunter-core/server/internal/tools"
	"github.com/headhunter-core/server/internal/websearch"
	logx "github.com/headhunter-core/server/pkg/logger"
)

var (
	askSessionID string
	askStream    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Run one query through the workflow and print the formatted answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ask(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askSessionID, "session", "", "session id for multi-turn context (generated when empty)")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "print the answer incrementally as it is produced")
}

func ask(ctx context.Context, query string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sessionID := askSessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
		logx.Info().Str("session_id", sessionID).Msg("Generated session id")
	}

	ttl, err := time.ParseDuration(cfg.Session.TTL)
	if err != nil {
		return fmt.Errorf("invalid SESSION_TTL %q: %w", cfg.Session.TTL, err)
	}

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		return fmt.Errorf("initialise redis client: %w", err)
	}
	defer rdb.Close()

	candidates, err := store.NewPostgresCandidateStore(cfg.Postgres)
	if err != nil {
		return fmt.Errorf("initialise candidate store: %w", err)
	}
	defer candidates.Close()
	if err := candidates.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	idx, err := buildKnowledgeIndex(ctx, cfg)
	if err != nil {
		return err
	}

	runner, err := graph.BuildWorkflowGraph(ctx, graph.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Classifier:  cfg.Classifier,
		Enricher:    cfg.Enricher,
		Specialist:  cfg.Specialist,
		Synthesis:   cfg.Synthesis,
		Quality:     cfg.Quality,
		Session:     cfg.Session,
		SessionRepo: repo.NewRedisSessionRepository(rdb, ttl),
		Toolkit:     tools.NewToolkit(candidates, idx, websearch.NewClient(cfg.Tavily)),
	})
	if err != nil {
		return fmt.Errorf("build workflow graph: %w", err)
	}

	input := model.QueryInput{
		SessionID: sessionID,
		Query:     query,
	}

	var result *model.RunResult
	if askStream {
		result, err = streamAnswer(ctx, runner, input)
	} else {
		result, err = runner.Invoke(ctx, input)
		if err == nil {
			fmt.Println(result.FinalMessage.Content)
		}
	}
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}
	logx.Info().
		Str("session_id", sessionID).
		Str("query_type", result.QueryType.String()).
		Float64("quality_score", result.QualityScore).
		Float64("total_cost_usd", result.TotalCostUSD).
		Msg("Query completed")

	return nil
}

// streamAnswer drains the incremental result stream, printing answer content
// as frames arrive, and returns the terminal frame.
func streamAnswer(ctx context.Context, runner graph.Runner, in model.QueryInput) (*model.RunResult, error) {
	stream, err := runner.Stream(ctx, in)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var last *model.RunResult
	for {
		frame, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if frame == nil {
			continue
		}
		if frame.FinalMessage != nil {
			fmt.Print(frame.FinalMessage.Content)
		}
		last = frame
	}
	fmt.Println()

	if last == nil {
		return nil, fmt.Errorf("empty result stream")
	}
	return last, nil
}

func buildKnowledgeIndex(ctx context.Context, cfg *AppConfig) (*knowledge.Index, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	idx, err := knowledge.NewIndex(cfg.Knowledge, knowledge.GeminiEmbedding(client, cfg.Knowledge.EmbeddingModel))
	if err != nil {
		return nil, fmt.Errorf("open knowledge index: %w", err)
	}
	return idx, nil
}
