package usecase

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

type uploadRepoFake struct {
	created *domain.Report
}

func (f *uploadRepoFake) Create(_ context.Context, report *domain.Report) error {
	f.created = report
	return nil
}

func (f *uploadRepoFake) GetByID(context.Context, string) (*domain.Report, error) { return nil, nil }
func (f *uploadRepoFake) UpdateStatus(context.Context, string, domain.ReportStatus, string) error {
	return nil
}
func (f *uploadRepoFake) SaveText(context.Context, string, string) error { return nil }
func (f *uploadRepoFake) SaveWorkflowState(context.Context, string, domain.WorkflowState) error {
	return nil
}
func (f *uploadRepoFake) GetWorkflowState(context.Context, string) (*domain.WorkflowState, error) {
	return nil, nil
}

type uploadStorageFake struct {
	savedKey  string
	savedData []byte
}

func (f *uploadStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	f.savedKey = key
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedData = raw
	return nil
}

func (f *uploadStorageFake) Open(context.Context, string) (io.ReadCloser, error) { return nil, nil }
func (f *uploadStorageFake) Path(key string) string                             { return key }

type uploadQueueFake struct {
	published []string
}

func (f *uploadQueueFake) PublishReportUploaded(_ context.Context, reportID string) error {
	f.published = append(f.published, reportID)
	return nil
}

func (f *uploadQueueFake) SubscribeReportUploaded(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestUploadStoresRecordsAndPublishes(t *testing.T) {
	repo := &uploadRepoFake{}
	storage := &uploadStorageFake{}
	queue := &uploadQueueFake{}
	uc := NewUploadReportUseCase(repo, storage, queue)

	report, err := uc.Upload(context.Background(), "lab report (final).pdf", "application/pdf",
		bytes.NewReader([]byte("%PDF-1.7")))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if report.Status != domain.StatusUploaded {
		t.Fatalf("expected uploaded status, got %s", report.Status)
	}
	if !strings.HasSuffix(storage.savedKey, "_lab_report__final_.pdf") {
		t.Fatalf("unexpected storage key: %q", storage.savedKey)
	}
	if string(storage.savedData) != "%PDF-1.7" {
		t.Fatalf("body must reach storage, got %q", storage.savedData)
	}
	if repo.created == nil || repo.created.ID != report.ID {
		t.Fatalf("expected metadata record, got %+v", repo.created)
	}
	if len(queue.published) != 1 || queue.published[0] != report.ID {
		t.Fatalf("expected one publish for the report, got %v", queue.published)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	uc := NewUploadReportUseCase(&uploadRepoFake{}, &uploadStorageFake{}, &uploadQueueFake{})

	_, err := uc.Upload(context.Background(), "report.docx", "application/msword", bytes.NewReader(nil))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
