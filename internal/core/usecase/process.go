package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hydroflow/hydroflow/internal/core/domain"
	"github.com/hydroflow/hydroflow/internal/core/ports"
)

// DocumentExtractor produces page texts for a stored source file.
type DocumentExtractor interface {
	ExtractDocument(ctx context.Context, path string) ([]domain.PageText, error)
}

// DocumentIndexer chunks, embeds, and merges one document into the index.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, source string, docType domain.DocumentType, pages []domain.PageText) (*domain.ProcessedDocument, error)
}

// WorkflowRunner executes the engineering workflow over report text. Observe
// registers a callback that receives a state snapshot after every transition.
type WorkflowRunner interface {
	Observe(func(domain.WorkflowState))
	Run(ctx context.Context, reportText string) domain.WorkflowState
}

// WorkflowFactory builds a fresh runner for each report; runners hold stage
// state and must never be shared across concurrent runs.
type WorkflowFactory func() WorkflowRunner

type ProcessReportUseCase struct {
	repo        ports.ReportRepository
	storage     ports.ObjectStorage
	ingestor    DocumentExtractor
	indexer     DocumentIndexer
	newWorkflow WorkflowFactory
}

func NewProcessReportUseCase(
	repo ports.ReportRepository,
	storage ports.ObjectStorage,
	ingestor DocumentExtractor,
	indexer DocumentIndexer,
	newWorkflow WorkflowFactory,
) *ProcessReportUseCase {
	return &ProcessReportUseCase{
		repo:        repo,
		storage:     storage,
		ingestor:    ingestor,
		indexer:     indexer,
		newWorkflow: newWorkflow,
	}
}

func (uc *ProcessReportUseCase) ProcessByID(ctx context.Context, reportID string) error {
	if err := uc.markStatus(ctx, reportID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	state, err := uc.processPipeline(ctx, reportID)
	if err != nil {
		if failErr := uc.markFailed(ctx, reportID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if state.Status == domain.WorkflowFailed {
		if err := uc.markStatus(ctx, reportID, domain.StatusFailed, state.Error); err != nil {
			return fmt.Errorf("set status=failed: %w", err)
		}
		return nil
	}

	if err := uc.markStatus(ctx, reportID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessReportUseCase) processPipeline(ctx context.Context, reportID string) (domain.WorkflowState, error) {
	report, err := uc.repo.GetByID(ctx, reportID)
	if err != nil {
		return domain.WorkflowState{}, fmt.Errorf("fetch report by id: %w", err)
	}

	pages, err := uc.ingestor.ExtractDocument(ctx, uc.storage.Path(report.StoragePath))
	if err != nil {
		return domain.WorkflowState{}, err
	}

	text := JoinPages(pages)
	if text == "" {
		return domain.WorkflowState{}, domain.WrapError(domain.ErrExtraction, "extract report",
			errors.New("empty extracted text"))
	}
	if err := uc.repo.SaveText(ctx, reportID, text); err != nil {
		return domain.WorkflowState{}, fmt.Errorf("save report text: %w", err)
	}

	if _, err := uc.indexer.IndexDocument(ctx, report.Filename, domain.DocTypeLabReport, pages); err != nil {
		return domain.WorkflowState{}, err
	}

	workflow := uc.newWorkflow()
	workflow.Observe(func(state domain.WorkflowState) {
		// best effort: a dropped progress write only delays what pollers see
		if err := uc.repo.SaveWorkflowState(ctx, reportID, state); err != nil {
			slog.Warn("persist workflow progress failed", "report_id", reportID, "error", err)
		}
	})

	state := workflow.Run(ctx, text)
	if err := uc.repo.SaveWorkflowState(ctx, reportID, state); err != nil {
		return domain.WorkflowState{}, fmt.Errorf("save workflow state: %w", err)
	}
	return state, nil
}

func (uc *ProcessReportUseCase) markStatus(ctx context.Context, reportID string, status domain.ReportStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, reportID, status, errMessage)
}

func (uc *ProcessReportUseCase) markFailed(ctx context.Context, reportID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, reportID, domain.StatusFailed, processErr.Error())
}
