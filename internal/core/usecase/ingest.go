package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hydroflow/hydroflow/internal/core/domain"
	"github.com/hydroflow/hydroflow/internal/core/ports"
)

type UploadReportUseCase struct {
	repo    ports.ReportRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewUploadReportUseCase(
	repo ports.ReportRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *UploadReportUseCase {
	return &UploadReportUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

func (uc *UploadReportUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Report, error) {
	if !isSupportedExtension(filename) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload report",
			fmt.Errorf("unsupported file type: %s", filepath.Ext(filename)))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	report := &domain.Report{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report metadata: %w", err)
	}

	if err := uc.queue.PublishReportUploaded(ctx, report.ID); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}

	return report, nil
}

func isSupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".xlsx", ".xls":
		return true
	default:
		return false
	}
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "report.bin"
	}
	return base
}
