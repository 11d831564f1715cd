package domain

import "time"

type ReportStatus string

const (
	StatusUploaded   ReportStatus = "uploaded"
	StatusProcessing ReportStatus = "processing"
	StatusReady      ReportStatus = "ready"
	StatusFailed     ReportStatus = "failed"
)

type DocumentType string

const (
	DocTypeLabReport DocumentType = "lab_report"
	DocTypeReference DocumentType = "reference"
)

// Report is an uploaded lab report tracked through the pipeline.
type Report struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	MimeType    string       `json:"mime_type"`
	StoragePath string       `json:"storage_path"`
	Status      ReportStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
	Text        string       `json:"text,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PageText is the text of one source page, with the recognition flags the
// ingestor recorded while producing it.
type PageText struct {
	Number     int     `json:"number"`
	Text       string  `json:"text"`
	IsOCR      bool    `json:"is_ocr"`
	HasImage   bool    `json:"has_image"`
	Confidence float64 `json:"confidence,omitempty"`
}

// ChunkMetadata carries per-chunk provenance. Order matches the chunk and
// embedding order of the ProcessedDocument it belongs to.
type ChunkMetadata struct {
	Source     string       `json:"source"`
	Page       int          `json:"page"`
	Type       DocumentType `json:"type"`
	IsOCR      bool         `json:"is_ocr"`
	HasImage   bool         `json:"has_image"`
	Confidence float64      `json:"confidence,omitempty"`
}

// RecognitionResult is OCR output for one rendered page image. Confidence
// is recorded as-is; it never gates acceptance.
type RecognitionResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ProcessedDocument is the indexer's output for one source document.
// Invariant: len(Chunks) == len(Embeddings) == len(Metadata).
// Not mutated after creation.
type ProcessedDocument struct {
	Text       string          `json:"text"`
	Chunks     []string        `json:"chunks"`
	Embeddings [][]float32     `json:"embeddings"`
	Metadata   []ChunkMetadata `json:"metadata"`
}
