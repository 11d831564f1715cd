package ports

import (
	"context"
	"io"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

// ReportIngestor is the inbound contract for lab-report upload orchestration.
type ReportIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Report, error)
}

// ReportProcessor runs the full pipeline for an uploaded report.
type ReportProcessor interface {
	ProcessByID(ctx context.Context, reportID string) error
}

// KnowledgeQueryService answers questions against the knowledge base.
type KnowledgeQueryService interface {
	Answer(ctx context.Context, req domain.QueryRequest) (*domain.Answer, error)
}

// QuotationService generates a quotation from a water analysis.
type QuotationService interface {
	Generate(ctx context.Context, req domain.QuotationRequest) (*domain.Quotation, error)
}

// ReportReader is the inbound read model for report metadata and state.
type ReportReader interface {
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	GetWorkflowState(ctx context.Context, id string) (*domain.WorkflowState, error)
}
