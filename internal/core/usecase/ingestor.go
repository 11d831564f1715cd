package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hydroflow/hydroflow/internal/core/domain"
	"github.com/hydroflow/hydroflow/internal/core/ports"
)

// DefaultMinTextLength is the per-page character threshold under which a PDF
// page is assumed to be scanned and is routed through recognition.
const DefaultMinTextLength = 100

// DocumentIngestor turns a source file into page texts. PDFs whose pages
// carry too little machine-readable text fall back to render-and-recognize;
// spreadsheets are read as-is.
type DocumentIngestor struct {
	pdf           ports.PageExtractor
	xlsx          ports.PageExtractor
	renderer      ports.PageRenderer
	recognizer    ports.TextRecognizer
	minTextLength int
}

func NewDocumentIngestor(
	pdf ports.PageExtractor,
	xlsx ports.PageExtractor,
	renderer ports.PageRenderer,
	recognizer ports.TextRecognizer,
	minTextLength int,
) *DocumentIngestor {
	if minTextLength <= 0 {
		minTextLength = DefaultMinTextLength
	}
	return &DocumentIngestor{
		pdf:           pdf,
		xlsx:          xlsx,
		renderer:      renderer,
		recognizer:    recognizer,
		minTextLength: minTextLength,
	}
}

func (d *DocumentIngestor) ExtractDocument(ctx context.Context, path string) ([]domain.PageText, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return d.extractPDF(ctx, path)
	case ".xlsx", ".xls":
		pages, err := d.xlsx.ExtractPages(ctx, path)
		if err != nil {
			return nil, domain.WrapError(domain.ErrExtraction, "extract workbook", err)
		}
		return pages, nil
	default:
		return nil, domain.WrapError(domain.ErrExtraction, "extract document",
			fmt.Errorf("unsupported file type: %s", filepath.Ext(path)))
	}
}

func (d *DocumentIngestor) extractPDF(ctx context.Context, path string) ([]domain.PageText, error) {
	pages, err := d.pdf.ExtractPages(ctx, path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "extract pdf pages", err)
	}

	for i := range pages {
		if len(strings.TrimSpace(pages[i].Text)) >= d.minTextLength {
			continue
		}
		if err := d.recognizePage(ctx, path, &pages[i]); err != nil {
			return nil, err
		}
	}
	return pages, nil
}

func (d *DocumentIngestor) recognizePage(ctx context.Context, path string, page *domain.PageText) error {
	// extracted pages are numbered from 1, the renderer indexes from 0
	imagePath, err := d.renderer.RenderPage(ctx, path, page.Number-1)
	if err != nil {
		return domain.WrapError(domain.ErrRecognition, fmt.Sprintf("render page %d", page.Number), err)
	}
	defer func() {
		_ = os.Remove(imagePath)
	}()

	result, err := d.recognizer.Recognize(ctx, imagePath)
	if err != nil {
		return domain.WrapError(domain.ErrRecognition, fmt.Sprintf("recognize page %d", page.Number), err)
	}

	page.Text = result.Text
	page.IsOCR = true
	page.HasImage = true
	page.Confidence = result.Confidence
	return nil
}

// JoinPages produces the full document text in page order.
func JoinPages(pages []domain.PageText) string {
	parts := make([]string, 0, len(pages))
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		parts = append(parts, page.Text)
	}
	return strings.Join(parts, "\n\n")
}
