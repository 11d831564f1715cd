package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

type scriptedModel struct {
	responses []string
	errs      []error
	calls     int
	onCall    func()
}

func (m *scriptedModel) GenerateText(context.Context, string, string) (string, error) {
	return "answer", nil
}

func (m *scriptedModel) GenerateJSON(context.Context, string, string) (string, error) {
	if m.onCall != nil {
		m.onCall()
	}
	idx := m.calls
	m.calls++
	if idx < len(m.errs) && m.errs[idx] != nil {
		return "", m.errs[idx]
	}
	if idx >= len(m.responses) {
		return "", fmt.Errorf("unexpected call %d", idx)
	}
	return m.responses[idx], nil
}

const labAnalysisJSON = `{
	"parameters": {"ph": 7.8, "tds": 980, "hardness": 320, "iron": 0.4, "manganese": 0.1, "sample_date": "2026-06-15"},
	"concerns": ["high hardness"],
	"pretreatment_recommendations": ["water softener"]
}`

const systemDesignJSON = `{
	"pretreatment_design": {"softener": "duplex"},
	"ro_configuration": {"stages": 2, "recovery_rate": 75},
	"post_treatment": {"ph_correction": true},
	"system_specifications": {"capacity_m3h": 10, "pressure_bar": 12}
}`

const proposalJSON = `{
	"proposal": {"summary": "duplex softener ahead of a 2-stage RO train"},
	"cost_analysis": {"equipment": 38000, "installation": 5000, "commissioning": 2000, "total": 45000}
}`

func newTestAgent(model *scriptedModel) *WorkflowAgent {
	agent := NewWorkflowAgent(model, DefaultFreshnessWindow)
	agent.now = func() time.Time {
		return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	}
	return agent
}

func TestRunCompletesAllStages(t *testing.T) {
	model := &scriptedModel{responses: []string{labAnalysisJSON, systemDesignJSON, proposalJSON}}
	agent := newTestAgent(model)

	state := agent.Run(context.Background(), "TDS: 980 mg/L ...")

	if state.Status != domain.WorkflowCompleted {
		t.Fatalf("expected completed, got %s (error=%s)", state.Status, state.Error)
	}
	if state.Progress != 100 {
		t.Fatalf("expected progress 100, got %v", state.Progress)
	}
	if got := len(state.StageOrder); got != 3 {
		t.Fatalf("expected 3 stages in order, got %d", got)
	}

	analysis := state.Results[domain.StageLabAnalysis].LabAnalysis
	if analysis == nil || analysis.Parameters.TDS != 980 {
		t.Fatalf("expected TDS 980 in lab analysis, got %+v", analysis)
	}
	if analysis.AgeStatus != domain.AgeStatusCurrent {
		t.Fatalf("expected current sample, got %q", analysis.AgeStatus)
	}

	proposal := state.Results[domain.StageProposalGeneration].Proposal
	if proposal == nil || proposal.FormattedProposal == "" {
		t.Fatalf("expected formatted proposal, got %+v", proposal)
	}
}

func TestRunProgressAdvancesMonotonically(t *testing.T) {
	model := &scriptedModel{responses: []string{labAnalysisJSON, systemDesignJSON, proposalJSON}}
	agent := newTestAgent(model)

	var observed []float64
	model.onCall = func() {
		observed = append(observed, agent.State().Progress)
	}

	state := agent.Run(context.Background(), "report text")
	if state.Status != domain.WorkflowCompleted {
		t.Fatalf("expected completed, got %s (error=%s)", state.Status, state.Error)
	}

	want := []float64{0, 100.0 / 3, 200.0 / 3}
	if len(observed) != len(want) {
		t.Fatalf("expected a progress read per stage, got %v", observed)
	}
	for i, got := range observed {
		if diff := got - want[i]; diff < -0.01 || diff > 0.01 {
			t.Fatalf("stage %d saw progress %v, want %v", i+1, got, want[i])
		}
		if i > 0 && got < observed[i-1] {
			t.Fatalf("progress regressed mid-run: %v", observed)
		}
	}
	if state.Progress != 100 {
		t.Fatalf("completed run must end at 100, got %v", state.Progress)
	}
}

func TestRunNotifiesObserverOnEveryTransition(t *testing.T) {
	model := &scriptedModel{responses: []string{labAnalysisJSON, systemDesignJSON, proposalJSON}}
	agent := newTestAgent(model)

	var snapshots []domain.WorkflowState
	agent.Observe(func(state domain.WorkflowState) {
		snapshots = append(snapshots, state)
	})

	agent.Run(context.Background(), "report text")

	// reset + 3x (stage start, stage result) + completion
	if len(snapshots) != 8 {
		t.Fatalf("expected 8 transitions, got %d", len(snapshots))
	}
	var last float64
	for i, snapshot := range snapshots {
		if snapshot.Progress < last {
			t.Fatalf("observer saw progress regress at transition %d", i)
		}
		last = snapshot.Progress
	}
	final := snapshots[len(snapshots)-1]
	if final.Status != domain.WorkflowCompleted || final.Progress != 100 {
		t.Fatalf("last snapshot must be terminal, got %+v", final)
	}
}

func TestRunFailsGateWhenSpecificationsMissing(t *testing.T) {
	noSpecs := `{"pretreatment_design": {"softener": "duplex"}, "ro_configuration": {"stages": 2}}`
	model := &scriptedModel{responses: []string{labAnalysisJSON, noSpecs, proposalJSON}}
	agent := newTestAgent(model)

	state := agent.Run(context.Background(), "report text")

	if state.Status != domain.WorkflowFailed {
		t.Fatalf("expected failed, got %s", state.Status)
	}
	if !strings.Contains(state.Error, domain.StageSystemDesign) {
		t.Fatalf("expected error to name the failed stage, got %q", state.Error)
	}
	if model.calls != 2 {
		t.Fatalf("proposal stage must not run after a failed gate, got %d calls", model.calls)
	}
	if _, ok := state.Results[domain.StageProposalGeneration]; ok {
		t.Fatalf("unexpected proposal result after failed gate")
	}
	if state.Progress >= 50 {
		t.Fatalf("progress must not advance past the failed stage, got %v", state.Progress)
	}
}

func TestRunFailsWhenNoParametersExtracted(t *testing.T) {
	model := &scriptedModel{responses: []string{`{"parameters": {}}`}}
	agent := newTestAgent(model)

	state := agent.Run(context.Background(), "unreadable scan")

	if state.Status != domain.WorkflowFailed {
		t.Fatalf("expected failed, got %s", state.Status)
	}
	if !strings.Contains(state.Error, domain.ErrValidation.Error()) {
		t.Fatalf("expected validation failure, got %q", state.Error)
	}
	if model.calls != 1 {
		t.Fatalf("later stages must not run, got %d calls", model.calls)
	}
}

func TestRunMarksStaleSampleBudgetary(t *testing.T) {
	staleAnalysis := strings.Replace(labAnalysisJSON, "2026-06-15", "2025-11-01", 1)
	model := &scriptedModel{responses: []string{staleAnalysis, systemDesignJSON, proposalJSON}}
	agent := newTestAgent(model)

	state := agent.Run(context.Background(), "report text")

	if state.Status != domain.WorkflowCompleted {
		t.Fatalf("expected completed, got %s (error=%s)", state.Status, state.Error)
	}
	analysis := state.Results[domain.StageLabAnalysis].LabAnalysis
	if analysis.AgeStatus != domain.AgeStatusBudgetary {
		t.Fatalf("expected budgetary age status, got %q", analysis.AgeStatus)
	}
}

func TestRunFailsOnModelError(t *testing.T) {
	model := &scriptedModel{errs: []error{errors.New("model unavailable")}}
	agent := newTestAgent(model)

	state := agent.Run(context.Background(), "report text")

	if state.Status != domain.WorkflowFailed {
		t.Fatalf("expected failed, got %s", state.Status)
	}
	if !strings.Contains(state.Error, domain.ErrGeneration.Error()) {
		t.Fatalf("expected generation failure, got %q", state.Error)
	}
}
