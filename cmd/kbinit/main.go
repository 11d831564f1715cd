package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hydroflow/hydroflow/internal/config"
	"github.com/hydroflow/hydroflow/internal/core/usecase"
	"github.com/hydroflow/hydroflow/internal/infrastructure/chunking"
	"github.com/hydroflow/hydroflow/internal/infrastructure/excel"
	"github.com/hydroflow/hydroflow/internal/infrastructure/llm/openai"
	"github.com/hydroflow/hydroflow/internal/infrastructure/ocr/tesseract"
	"github.com/hydroflow/hydroflow/internal/infrastructure/pagerender"
	"github.com/hydroflow/hydroflow/internal/infrastructure/pdfreader"
	"github.com/hydroflow/hydroflow/internal/infrastructure/vector/flatindex"
	"github.com/hydroflow/hydroflow/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()

	var (
		sourceDir string
		indexDir  string
	)

	root := &cobra.Command{
		Use:   "kbinit",
		Short: "Index knowledge base documents into the vector store",
		Long: "Reads PDF and Excel documents from a source directory, extracts their text " +
			"with OCR fallback for scanned pages, and merges the embedded chunks into " +
			"the persisted vector index used by the query service.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), sourceDir, indexDir)
		},
		SilenceUsage: true,
	}
	root.Flags().StringVar(&sourceDir, "source-dir", "./data/knowledge_base", "directory with source documents")
	root.Flags().StringVar(&indexDir, "index-dir", "", "vector index directory (defaults to INDEX_PATH)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, sourceDir, indexDir string) error {
	cfg := config.Load()
	if indexDir == "" {
		indexDir = cfg.IndexPath
	}

	logger := logging.NewJSONLogger("kbinit", cfg.LogLevel)
	slog.SetDefault(logger)

	client := openai.New(cfg.OpenAIURL, cfg.OpenAIAPIKey, cfg.OpenAIChatModel, cfg.OpenAIEmbedModel)
	embedder := openai.NewEmbedder(client, cfg.EmbedRateLimit)

	renderer, err := pagerender.New(cfg.PageRenderDir)
	if err != nil {
		return fmt.Errorf("init page renderer: %w", err)
	}
	recognizer := tesseract.New(cfg.OCRServiceURL, cfg.OCRLanguage)

	ingestor := usecase.NewDocumentIngestor(pdfreader.New(), excel.New(), renderer, recognizer, cfg.MinTextLength)
	indexer := usecase.NewChunkIndexer(
		chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder,
		flatindex.New(indexDir),
	)
	kbInit := usecase.NewKnowledgeBaseInitializer(ingestor, indexer, indexDir)

	summary, err := kbInit.Initialize(ctx, sourceDir)
	if err != nil {
		return fmt.Errorf("initialize knowledge base: %w", err)
	}

	logger.Info("knowledge base initialized",
		"documents", summary.DocumentCount,
		"chunks", summary.ChunkCount,
		"index_path", summary.VectorStorePath,
	)
	fmt.Printf("indexed %d documents (%d chunks) into %s\n",
		summary.DocumentCount, summary.ChunkCount, summary.VectorStorePath)
	return nil
}
