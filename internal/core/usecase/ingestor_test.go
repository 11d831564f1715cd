package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

type pageExtractorFake struct {
	pages []domain.PageText
	err   error
	calls int
}

func (f *pageExtractorFake) ExtractPages(context.Context, string) ([]domain.PageText, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.PageText, len(f.pages))
	copy(out, f.pages)
	return out, nil
}

type rendererFake struct {
	dir           string
	renderedPages []int
	pageCount     int
	err           error
}

func (f *rendererFake) RenderPage(_ context.Context, _ string, page int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.pageCount > 0 && (page < 0 || page >= f.pageCount) {
		return "", fmt.Errorf("render page %d: page missing", page)
	}
	f.renderedPages = append(f.renderedPages, page)
	path := filepath.Join(f.dir, "page.png")
	if err := os.WriteFile(path, []byte("img"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type recognizerFake struct {
	result domain.RecognitionResult
	err    error
	calls  int
}

func (f *recognizerFake) Recognize(context.Context, string) (domain.RecognitionResult, error) {
	f.calls++
	if f.err != nil {
		return domain.RecognitionResult{}, f.err
	}
	return f.result, nil
}

func TestExtractDocumentRecognizesOnlySparsePages(t *testing.T) {
	pdf := &pageExtractorFake{pages: []domain.PageText{
		{Number: 1, Text: strings.Repeat("readable text ", 20)},
		{Number: 2, Text: "scan", HasImage: true},
	}}
	renderer := &rendererFake{dir: t.TempDir()}
	recognizer := &recognizerFake{result: domain.RecognitionResult{Text: "RECOGNIZED PAGE", Confidence: 87}}
	ingestor := NewDocumentIngestor(pdf, &pageExtractorFake{}, renderer, recognizer, DefaultMinTextLength)

	pages, err := ingestor.ExtractDocument(context.Background(), "/data/report.pdf")
	if err != nil {
		t.Fatalf("ExtractDocument() error = %v", err)
	}

	if pages[0].IsOCR {
		t.Fatalf("page 1 has enough text and must not be recognized")
	}
	if !pages[1].IsOCR || pages[1].Text != "RECOGNIZED PAGE" || pages[1].Confidence != 87 {
		t.Fatalf("expected recognized page 2, got %+v", pages[1])
	}
	if len(renderer.renderedPages) != 1 || renderer.renderedPages[0] != 1 {
		t.Fatalf("expected only page 2 rendered at index 1, got %v", renderer.renderedPages)
	}
}

func TestExtractDocumentRendersZeroBasedPageIndexes(t *testing.T) {
	pageCount := 2
	pdf := &pageExtractorFake{pages: []domain.PageText{
		{Number: 1, Text: ""},
		{Number: 2, Text: ""},
	}}
	renderer := &rendererFake{dir: t.TempDir(), pageCount: pageCount}
	recognizer := &recognizerFake{result: domain.RecognitionResult{Text: "RECOGNIZED PAGE", Confidence: 90}}
	ingestor := NewDocumentIngestor(pdf, &pageExtractorFake{}, renderer, recognizer, DefaultMinTextLength)

	pages, err := ingestor.ExtractDocument(context.Background(), "/data/scan.pdf")
	if err != nil {
		t.Fatalf("ExtractDocument() error = %v", err)
	}

	want := []int{0, 1}
	if len(renderer.renderedPages) != len(want) ||
		renderer.renderedPages[0] != want[0] || renderer.renderedPages[1] != want[1] {
		t.Fatalf("expected render indexes %v for pages 1..%d, got %v", want, pageCount, renderer.renderedPages)
	}
	for i := range pages {
		if !pages[i].IsOCR {
			t.Fatalf("page %d must be recognized, got %+v", pages[i].Number, pages[i])
		}
	}
}

func TestExtractDocumentRoutesWorkbooksWithoutRecognition(t *testing.T) {
	xlsx := &pageExtractorFake{pages: []domain.PageText{{Number: 1, Text: "pH 7.2"}}}
	recognizer := &recognizerFake{}
	ingestor := NewDocumentIngestor(&pageExtractorFake{}, xlsx, &rendererFake{dir: t.TempDir()}, recognizer, DefaultMinTextLength)

	pages, err := ingestor.ExtractDocument(context.Background(), "/data/report.xlsx")
	if err != nil {
		t.Fatalf("ExtractDocument() error = %v", err)
	}
	if xlsx.calls != 1 {
		t.Fatalf("expected workbook extractor call, got %d", xlsx.calls)
	}
	if recognizer.calls != 0 {
		t.Fatalf("workbooks must never be recognized")
	}
	if len(pages) != 1 || pages[0].IsOCR {
		t.Fatalf("unexpected pages: %+v", pages)
	}
}

func TestExtractDocumentRejectsUnsupportedType(t *testing.T) {
	ingestor := NewDocumentIngestor(&pageExtractorFake{}, &pageExtractorFake{}, &rendererFake{dir: t.TempDir()}, &recognizerFake{}, 0)

	_, err := ingestor.ExtractDocument(context.Background(), "/data/report.docx")
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestExtractDocumentWrapsRecognizerFailure(t *testing.T) {
	pdf := &pageExtractorFake{pages: []domain.PageText{{Number: 1, Text: "scan"}}}
	recognizer := &recognizerFake{err: errors.New("sidecar down")}
	ingestor := NewDocumentIngestor(pdf, &pageExtractorFake{}, &rendererFake{dir: t.TempDir()}, recognizer, DefaultMinTextLength)

	_, err := ingestor.ExtractDocument(context.Background(), "/data/report.pdf")
	if !domain.IsKind(err, domain.ErrRecognition) {
		t.Fatalf("expected ErrRecognition, got %v", err)
	}
}
