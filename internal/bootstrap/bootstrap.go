package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/hydroflow/hydroflow/internal/config"
	"github.com/hydroflow/hydroflow/internal/core/ports"
	"github.com/hydroflow/hydroflow/internal/core/usecase"
	"github.com/hydroflow/hydroflow/internal/infrastructure/chunking"
	"github.com/hydroflow/hydroflow/internal/infrastructure/excel"
	"github.com/hydroflow/hydroflow/internal/infrastructure/llm/openai"
	"github.com/hydroflow/hydroflow/internal/infrastructure/ocr/tesseract"
	"github.com/hydroflow/hydroflow/internal/infrastructure/pagerender"
	"github.com/hydroflow/hydroflow/internal/infrastructure/pdfreader"
	"github.com/hydroflow/hydroflow/internal/infrastructure/queue/nats"
	"github.com/hydroflow/hydroflow/internal/infrastructure/repository/postgres"
	"github.com/hydroflow/hydroflow/internal/infrastructure/storage/localfs"
	"github.com/hydroflow/hydroflow/internal/infrastructure/vector/flatindex"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Repo     ports.ReportRepository
	Users    ports.UserRepository
	Index    ports.VectorIndex
	UploadUC ports.ReportIngestor
	Process  ports.ReportProcessor
	QueryUC  ports.KnowledgeQueryService
	Quotes   ports.QuotationService
	KBInit   *usecase.KnowledgeBaseInitializer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewReportRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	users := postgres.NewUserRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	client := openai.New(cfg.OpenAIURL, cfg.OpenAIAPIKey, cfg.OpenAIChatModel, cfg.OpenAIEmbedModel)
	generator := openai.NewGenerator(client)
	embedder := openai.NewEmbedder(client, cfg.EmbedRateLimit)

	renderer, err := pagerender.New(cfg.PageRenderDir)
	if err != nil {
		return nil, fmt.Errorf("init page renderer: %w", err)
	}
	recognizer := tesseract.New(cfg.OCRServiceURL, cfg.OCRLanguage)

	index := flatindex.New(cfg.IndexPath)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)

	ingestor := usecase.NewDocumentIngestor(pdfreader.New(), excel.New(), renderer, recognizer, cfg.MinTextLength)
	indexer := usecase.NewChunkIndexer(chunker, embedder, index)
	freshness := time.Duration(cfg.FreshnessMonths) * 30 * 24 * time.Hour
	newWorkflow := func() usecase.WorkflowRunner {
		return usecase.NewWorkflowAgent(generator, freshness)
	}

	uploadUC := usecase.NewUploadReportUseCase(repo, storage, queue)
	processUC := usecase.NewProcessReportUseCase(repo, storage, ingestor, indexer, newWorkflow)
	queryUC := usecase.NewKnowledgeQueryUseCase(embedder, index, generator, cfg.RAGTopK)

	extractor, err := usecase.NewProposalExtractor()
	if err != nil {
		return nil, fmt.Errorf("init proposal extractor: %w", err)
	}
	quotes := usecase.NewQuotationUseCase(queryUC, extractor)
	kbInit := usecase.NewKnowledgeBaseInitializer(ingestor, indexer, cfg.IndexPath)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,
		Users:  users,
		Index:  index,

		UploadUC: uploadUC,
		Process:  processUC,
		QueryUC:  queryUC,
		Quotes:   quotes,
		KBInit:   kbInit,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
