package usecase

import (
	"context"
	"fmt"

	"github.com/hydroflow/hydroflow/internal/core/domain"
	"github.com/hydroflow/hydroflow/internal/core/ports"
)

// QuotationUseCase builds a complete quotation from two knowledge-base
// passes: one for the system design, one for pricing. The extractor fills
// any field the generated text leaves out.
type QuotationUseCase struct {
	query     ports.KnowledgeQueryService
	extractor *ProposalExtractor
}

func NewQuotationUseCase(query ports.KnowledgeQueryService, extractor *ProposalExtractor) *QuotationUseCase {
	return &QuotationUseCase{
		query:     query,
		extractor: extractor,
	}
}

func (uc *QuotationUseCase) Generate(ctx context.Context, req domain.QuotationRequest) (*domain.Quotation, error) {
	if req.Capacity <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate quotation",
			fmt.Errorf("capacity must be positive, got %v", req.Capacity))
	}

	designQuery := fmt.Sprintf(
		"Recommend a reverse osmosis system design for a capacity of %.1f m3/h at %.1f bar feed pressure. "+
			"Include the system model, recovery rate, number of stages, membrane type, and pre-treatment steps.",
		req.Capacity, req.Pressure,
	)
	designAnswer, err := uc.query.Answer(ctx, domain.QueryRequest{
		Query:       designQuery,
		UseCase:     "system_design",
		WaterParams: &req.WaterAnalysis,
	})
	if err != nil {
		return nil, fmt.Errorf("design query: %w", err)
	}

	pricingQuery := fmt.Sprintf(
		"Estimate equipment, installation, and commissioning costs plus delivery time, warranty, and "+
			"maintenance schedule for a %.1f m3/h reverse osmosis system.",
		req.Capacity,
	)
	pricingAnswer, err := uc.query.Answer(ctx, domain.QueryRequest{
		Query:       pricingQuery,
		UseCase:     "cost_estimation",
		WaterParams: &req.WaterAnalysis,
	})
	if err != nil {
		return nil, fmt.Errorf("pricing query: %w", err)
	}

	designText := designAnswer.Text
	pricingText := pricingAnswer.Text

	return &domain.Quotation{
		SystemDesign: domain.SystemDesignSummary{
			Model:        uc.extractor.SystemModel(designText),
			Capacity:     req.Capacity,
			Pressure:     req.Pressure,
			RecoveryRate: uc.extractor.RecoveryRate(designText),
			Stages:       uc.extractor.Stages(designText),
			Membranes:    uc.extractor.Membranes(designText),
			PreTreatment: uc.extractor.PreTreatment(designText),
		},
		PriceBreakdown: domain.PriceBreakdown{
			Equipment:     uc.extractor.EquipmentCost(pricingText),
			Installation:  uc.extractor.InstallationCost(pricingText),
			Commissioning: uc.extractor.CommissioningCost(pricingText),
			Total:         uc.extractor.TotalCost(pricingText),
		},
		DeliveryWeeks:       uc.extractor.DeliveryWeeks(pricingText),
		Warranty:            uc.extractor.Warranty(pricingText),
		MaintenanceSchedule: uc.extractor.MaintenanceSchedule(pricingText),
	}, nil
}
