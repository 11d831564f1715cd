package pdfreader

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

// Reader extracts page-level text from PDF files. Scanned pages come back
// empty or near-empty; routing those through recognition is the ingestor's
// decision, not this package's.
type Reader struct{}

func New() *Reader {
	return &Reader{}
}

func (r *Reader) ExtractPages(_ context.Context, path string) ([]domain.PageText, error) {
	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	total := doc.NumPage()
	pages := make([]domain.PageText, 0, total)
	for num := 1; num <= total; num++ {
		page := doc.Page(num)
		if page.V.IsNull() {
			pages = append(pages, domain.PageText{Number: num})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A page that fails plain-text extraction is treated as an
			// image page; the ingestor decides whether to OCR it.
			pages = append(pages, domain.PageText{Number: num, HasImage: true})
			continue
		}
		pages = append(pages, domain.PageText{Number: num, Text: text})
	}
	return pages, nil
}
