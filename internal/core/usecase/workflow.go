package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hydroflow/hydroflow/internal/core/domain"
	"github.com/hydroflow/hydroflow/internal/core/ports"
)

// DefaultFreshnessWindow is how old a sample may be before its analysis is
// treated as budgetary rather than final.
const DefaultFreshnessWindow = 6 * 30 * 24 * time.Hour

// WorkflowAgent drives the fixed three-stage engineering workflow over an
// extracted lab report: lab_analysis, system_design, proposal_generation.
// Each stage output passes a validation gate before the next stage may use
// it; a failed gate fails the whole run.
type WorkflowAgent struct {
	model     ports.CompletionModel
	freshness time.Duration
	now       func() time.Time

	mu       sync.Mutex
	state    domain.WorkflowState
	observer func(domain.WorkflowState)
}

func NewWorkflowAgent(model ports.CompletionModel, freshness time.Duration) *WorkflowAgent {
	if freshness <= 0 {
		freshness = DefaultFreshnessWindow
	}
	return &WorkflowAgent{
		model:     model,
		freshness: freshness,
		now:       time.Now,
		state: domain.WorkflowState{
			Status:  domain.WorkflowPending,
			Results: map[string]domain.StageResult{},
		},
	}
}

// State returns a snapshot of the current run for progress reads.
func (a *WorkflowAgent) State() domain.WorkflowState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneState(a.state)
}

// Observe registers a callback invoked with a snapshot after every state
// transition, so mid-run progress can be persisted for pollers. The callback
// runs outside the state lock and may call State().
func (a *WorkflowAgent) Observe(fn func(domain.WorkflowState)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observer = fn
}

// Run executes all stages in order and returns the final state. The state is
// also kept internally so concurrent State() calls observe progress.
func (a *WorkflowAgent) Run(ctx context.Context, reportText string) domain.WorkflowState {
	a.setState(domain.WorkflowState{
		Status:  domain.WorkflowPending,
		Results: map[string]domain.StageResult{},
	})

	stages := []struct {
		id  string
		run func(ctx context.Context) (domain.StageResult, error)
	}{
		{domain.StageLabAnalysis, func(ctx context.Context) (domain.StageResult, error) {
			return a.runLabAnalysis(ctx, reportText)
		}},
		{domain.StageSystemDesign, a.runSystemDesign},
		{domain.StageProposalGeneration, a.runProposalGeneration},
	}

	for i, stage := range stages {
		a.update(func(s *domain.WorkflowState) {
			s.Status = domain.WorkflowProcessing
			s.CurrentStep = stage.id
		})

		result, err := stage.run(ctx)
		if err != nil {
			a.update(func(s *domain.WorkflowState) {
				s.Status = domain.WorkflowFailed
				s.Error = err.Error()
			})
			return a.State()
		}

		progress := float64(i+1) / float64(len(stages)) * 100
		a.update(func(s *domain.WorkflowState) {
			s.Results[stage.id] = result
			s.StageOrder = append(s.StageOrder, stage.id)
			s.Progress = progress
		})
	}

	a.update(func(s *domain.WorkflowState) {
		s.Status = domain.WorkflowCompleted
		s.Progress = 100
	})
	return a.State()
}

func (a *WorkflowAgent) runLabAnalysis(ctx context.Context, reportText string) (domain.StageResult, error) {
	raw, err := a.model.GenerateJSON(ctx, labAnalysisSystemPrompt, buildLabAnalysisPrompt(reportText))
	if err != nil {
		return domain.StageResult{}, domain.WrapError(domain.ErrGeneration, domain.StageLabAnalysis, err)
	}

	var analysis domain.LabAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return domain.StageResult{}, domain.WrapError(domain.ErrGeneration, domain.StageLabAnalysis,
			fmt.Errorf("parse analysis json: %w", err))
	}
	if analysis.Parameters.IsEmpty() {
		return domain.StageResult{}, domain.WrapError(domain.ErrValidation, domain.StageLabAnalysis,
			errors.New("no water parameters extracted"))
	}

	analysis.AgeStatus = analysis.Parameters.AgeStatus(a.now().UTC(), a.freshness, analysis.AgeStatus)
	return domain.StageResult{LabAnalysis: &analysis}, nil
}

func (a *WorkflowAgent) runSystemDesign(ctx context.Context) (domain.StageResult, error) {
	analysis, err := a.labAnalysis()
	if err != nil {
		return domain.StageResult{}, err
	}

	raw, err := a.model.GenerateJSON(ctx, systemDesignSystemPrompt, buildSystemDesignPrompt(*analysis))
	if err != nil {
		return domain.StageResult{}, domain.WrapError(domain.ErrGeneration, domain.StageSystemDesign, err)
	}

	var design domain.SystemDesign
	if err := json.Unmarshal([]byte(raw), &design); err != nil {
		return domain.StageResult{}, domain.WrapError(domain.ErrGeneration, domain.StageSystemDesign,
			fmt.Errorf("parse design json: %w", err))
	}

	hasDesign := nonEmptyJSON(design.PretreatmentDesign) ||
		nonEmptyJSON(design.ROConfiguration) ||
		nonEmptyJSON(design.PostTreatment)
	if !hasDesign || !nonEmptyJSON(design.Specifications) {
		return domain.StageResult{}, domain.WrapError(domain.ErrValidation, domain.StageSystemDesign,
			errors.New("design or specifications missing"))
	}
	return domain.StageResult{Design: &design}, nil
}

func (a *WorkflowAgent) runProposalGeneration(ctx context.Context) (domain.StageResult, error) {
	analysis, err := a.labAnalysis()
	if err != nil {
		return domain.StageResult{}, err
	}
	design, err := a.systemDesign()
	if err != nil {
		return domain.StageResult{}, err
	}

	raw, err := a.model.GenerateJSON(ctx, proposalSystemPrompt, buildProposalPrompt(*analysis, *design))
	if err != nil {
		return domain.StageResult{}, domain.WrapError(domain.ErrGeneration, domain.StageProposalGeneration, err)
	}

	var proposal domain.ProposalResult
	if err := json.Unmarshal([]byte(raw), &proposal); err != nil {
		return domain.StageResult{}, domain.WrapError(domain.ErrGeneration, domain.StageProposalGeneration,
			fmt.Errorf("parse proposal json: %w", err))
	}
	if !nonEmptyJSON(proposal.Proposal) || !nonEmptyJSON(proposal.CostAnalysis) {
		return domain.StageResult{}, domain.WrapError(domain.ErrValidation, domain.StageProposalGeneration,
			errors.New("proposal or cost analysis missing"))
	}

	proposal.FormattedProposal = formatProposal(proposal)
	return domain.StageResult{Proposal: &proposal}, nil
}

func (a *WorkflowAgent) labAnalysis() (*domain.LabAnalysis, error) {
	result, ok := a.State().Results[domain.StageLabAnalysis]
	if !ok || result.LabAnalysis == nil {
		return nil, domain.WrapError(domain.ErrValidation, domain.StageLabAnalysis,
			errors.New("lab analysis result unavailable"))
	}
	return result.LabAnalysis, nil
}

func (a *WorkflowAgent) systemDesign() (*domain.SystemDesign, error) {
	result, ok := a.State().Results[domain.StageSystemDesign]
	if !ok || result.Design == nil {
		return nil, domain.WrapError(domain.ErrValidation, domain.StageSystemDesign,
			errors.New("system design result unavailable"))
	}
	return result.Design, nil
}

func (a *WorkflowAgent) setState(state domain.WorkflowState) {
	a.mu.Lock()
	a.state = state
	observer, snapshot := a.observer, cloneState(a.state)
	a.mu.Unlock()

	if observer != nil {
		observer(snapshot)
	}
}

func (a *WorkflowAgent) update(apply func(*domain.WorkflowState)) {
	a.mu.Lock()
	apply(&a.state)
	observer, snapshot := a.observer, cloneState(a.state)
	a.mu.Unlock()

	if observer != nil {
		observer(snapshot)
	}
}

func cloneState(state domain.WorkflowState) domain.WorkflowState {
	out := state
	out.Results = make(map[string]domain.StageResult, len(state.Results))
	for k, v := range state.Results {
		out.Results[k] = v
	}
	out.StageOrder = append([]string(nil), state.StageOrder...)
	return out
}

func nonEmptyJSON(raw json.RawMessage) bool {
	trimmed := string(raw)
	switch trimmed {
	case "", "null", "{}", "[]", `""`:
		return false
	default:
		return true
	}
}

func formatProposal(p domain.ProposalResult) string {
	doc := map[string]json.RawMessage{
		"proposal":      p.Proposal,
		"cost_analysis": p.CostAnalysis,
	}
	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ""
	}
	return string(pretty)
}
