package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/hydroflow/hydroflow/internal/core/domain"
	"github.com/hydroflow/hydroflow/internal/core/ports"
)

// ChunkIndexer splits extracted pages into chunks, embeds them, and merges
// the result into the vector index. Chunk, embedding, and metadata slices
// stay aligned by construction.
type ChunkIndexer struct {
	chunker  ports.Chunker
	embedder ports.Embedder
	index    ports.VectorIndex
}

func NewChunkIndexer(
	chunker ports.Chunker,
	embedder ports.Embedder,
	index ports.VectorIndex,
) *ChunkIndexer {
	return &ChunkIndexer{
		chunker:  chunker,
		embedder: embedder,
		index:    index,
	}
}

func (x *ChunkIndexer) IndexDocument(
	ctx context.Context,
	source string,
	docType domain.DocumentType,
	pages []domain.PageText,
) (*domain.ProcessedDocument, error) {
	var chunks []string
	var metadata []domain.ChunkMetadata
	for _, page := range pages {
		for _, chunk := range x.chunker.Split(page.Text) {
			chunks = append(chunks, chunk)
			metadata = append(metadata, domain.ChunkMetadata{
				Source:     source,
				Page:       page.Number,
				Type:       docType,
				IsOCR:      page.IsOCR,
				HasImage:   page.HasImage,
				Confidence: page.Confidence,
			})
		}
	}
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrIndex, "chunk document", errors.New("chunking produced zero chunks"))
	}

	vectors, err := x.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndex, "embed chunks", err)
	}
	if len(vectors) != len(chunks) {
		return nil, domain.WrapError(domain.ErrIndex, "embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)))
	}

	if err := x.index.Merge(ctx, chunks, vectors, metadata); err != nil {
		return nil, domain.WrapError(domain.ErrIndex, "merge into index", err)
	}

	return &domain.ProcessedDocument{
		Text:       JoinPages(pages),
		Chunks:     chunks,
		Embeddings: vectors,
		Metadata:   metadata,
	}, nil
}
