package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

// KnowledgeBaseInitializer bulk-loads reference documents from a directory
// into the vector index.
type KnowledgeBaseInitializer struct {
	extractor DocumentExtractor
	indexer   DocumentIndexer
	indexPath string
}

func NewKnowledgeBaseInitializer(
	extractor DocumentExtractor,
	indexer DocumentIndexer,
	indexPath string,
) *KnowledgeBaseInitializer {
	return &KnowledgeBaseInitializer{
		extractor: extractor,
		indexer:   indexer,
		indexPath: indexPath,
	}
}

// Initialize indexes every supported file in sourceDir. A file that fails
// extraction fails the run: a partially loaded knowledge base would silently
// skew retrieval.
func (kb *KnowledgeBaseInitializer) Initialize(ctx context.Context, sourceDir string) (*domain.IndexSummary, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}

	summary := &domain.IndexSummary{VectorStorePath: kb.indexPath}
	for _, entry := range entries {
		if entry.IsDir() || !isSupportedExtension(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(sourceDir, entry.Name())
		pages, err := kb.extractor.ExtractDocument(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", entry.Name(), err)
		}

		processed, err := kb.indexer.IndexDocument(ctx, entry.Name(), docTypeForName(entry.Name()), pages)
		if err != nil {
			return nil, fmt.Errorf("index %s: %w", entry.Name(), err)
		}

		summary.DocumentCount++
		summary.ChunkCount += len(processed.Chunks)
		slog.Info("document_indexed",
			"source", entry.Name(),
			"pages", len(pages),
			"chunks", len(processed.Chunks),
		)
	}
	return summary, nil
}

func docTypeForName(name string) domain.DocumentType {
	if strings.Contains(strings.ToLower(name), "report") {
		return domain.DocTypeLabReport
	}
	return domain.DocTypeReference
}
