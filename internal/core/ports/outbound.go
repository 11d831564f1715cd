package ports

import (
	"context"
	"io"
	"time"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

// ReportRepository persists uploaded lab reports and their workflow runs.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReportStatus, errMessage string) error
	SaveText(ctx context.Context, id, text string) error
	SaveWorkflowState(ctx context.Context, id string, state domain.WorkflowState) error
	GetWorkflowState(ctx context.Context, id string) (*domain.WorkflowState, error)
}

// UserRepository replaces the demo in-memory user store with an injected
// capability set: lookup-by-email, insert, upsert-device.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpsertDevice(ctx context.Context, userID string, device domain.Device) error
	VerifyDevice(ctx context.Context, email, deviceID string, now time.Time) (bool, error)
}

// ObjectStorage stores source documents and temp artifacts on disk.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Path(key string) string
}

// MessageQueue publishes/consumes report-uploaded events.
type MessageQueue interface {
	PublishReportUploaded(ctx context.Context, reportID string) error
	SubscribeReportUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// PageExtractor pulls machine-readable text out of a source file, one entry
// per page. It never attempts recognition; that is the ingestor's call.
type PageExtractor interface {
	ExtractPages(ctx context.Context, path string) ([]domain.PageText, error)
}

// PageRenderer renders one page of a document to an enhanced temp image and
// returns its path. The caller removes the file when done.
type PageRenderer interface {
	RenderPage(ctx context.Context, path string, page int) (string, error)
}

// TextRecognizer runs OCR over a rendered page image.
type TextRecognizer interface {
	Recognize(ctx context.Context, imagePath string) (domain.RecognitionResult, error)
}

// Chunker splits text into bounded overlapping windows.
type Chunker interface {
	Split(text string) []string
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the persisted similarity index. Merge is additive and
// re-persists the full index; Search returns the topK nearest chunks.
type VectorIndex interface {
	Merge(ctx context.Context, chunks []string, vectors [][]float32, metadata []domain.ChunkMetadata) error
	Search(ctx context.Context, queryVector []float32, topK int) ([]domain.RetrievedChunk, error)
	Size() int
}

// CompletionModel is the text-generation endpoint. GenerateJSON requests
// schema-constrained output where the provider supports it.
type CompletionModel interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
	GenerateJSON(ctx context.Context, system, user string) (string, error)
}
