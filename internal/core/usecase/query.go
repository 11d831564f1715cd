package usecase

import (
	"context"
	"errors"

	"github.com/hydroflow/hydroflow/internal/core/domain"
	"github.com/hydroflow/hydroflow/internal/core/ports"
)

// DefaultTopK is how many chunks a query retrieves when the caller does not
// ask for a specific count.
const DefaultTopK = 3

type KnowledgeQueryUseCase struct {
	embedder    ports.Embedder
	index       ports.VectorIndex
	model       ports.CompletionModel
	defaultTopK int
}

func NewKnowledgeQueryUseCase(
	embedder ports.Embedder,
	index ports.VectorIndex,
	model ports.CompletionModel,
	defaultTopK int,
) *KnowledgeQueryUseCase {
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &KnowledgeQueryUseCase{
		embedder:    embedder,
		index:       index,
		model:       model,
		defaultTopK: defaultTopK,
	}
}

func (uc *KnowledgeQueryUseCase) Answer(ctx context.Context, req domain.QueryRequest) (*domain.Answer, error) {
	if req.Query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("empty query"))
	}
	if req.TopK <= 0 {
		req.TopK = uc.defaultTopK
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, req.Query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrieval, "embed query", err)
	}

	chunks, err := uc.index.Search(ctx, queryVector, req.TopK)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrieval, "search index", err)
	}

	answerText, err := uc.model.GenerateText(ctx, answerSystemPrompt, buildAnswerPrompt(req, chunks))
	if err != nil {
		return nil, domain.WrapError(domain.ErrGeneration, "generate answer", err)
	}

	sources := make([]domain.ChunkMetadata, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, chunk.Metadata)
	}

	return &domain.Answer{
		Text:    answerText,
		Sources: sources,
		Chunks:  chunks,
	}, nil
}
