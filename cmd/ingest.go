package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	logx "github.com/headhunter-core/server/pkg/logger"
)

var ingestDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load knowledge-base documents into the vector index",
	Long: "Walks a directory laid out as <dir>/<category>/*.{txt,md,pdf} and embeds " +
		"every document into its category collection. Categories: tech_info, " +
		"market_trends, industry_analysis, salary_info.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return ingest(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "./knowledge_base", "root directory of category subdirectories")
}

func ingest(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Knowledge.PersistPath == "" {
		logx.Warn().Msg("KNOWLEDGE_PERSIST_PATH is empty; ingesting into a throwaway in-memory index")
	}

	idx, err := buildKnowledgeIndex(ctx, cfg)
	if err != nil {
		return err
	}

	count, err := idx.IngestDir(ctx, ingestDir)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", ingestDir, err)
	}

	stats, err := idx.Stats(ctx)
	if err != nil {
		return fmt.Errorf("read index stats: %w", err)
	}

	logx.Info().
		Int("ingested_chunks", count).
		Int("total_documents", stats.TotalDocuments).
		Msg("Knowledge ingestion finished")
	for category, n := range stats.ByCategory {
		fmt.Printf("%-20s %d\n", category, n)
	}

	return nil
}
