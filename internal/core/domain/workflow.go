package domain

import "encoding/json"

type WorkflowStatus string

const (
	WorkflowPending    WorkflowStatus = "pending"
	WorkflowProcessing WorkflowStatus = "processing"
	WorkflowCompleted  WorkflowStatus = "completed"
	WorkflowFailed     WorkflowStatus = "failed"
)

// Stage identifiers, in execution order.
const (
	StageLabAnalysis        = "lab_analysis"
	StageSystemDesign       = "system_design"
	StageProposalGeneration = "proposal_generation"
)

// LabAnalysis is the validated output of the lab_analysis stage.
type LabAnalysis struct {
	Parameters                   WaterParameters `json:"parameters"`
	AgeStatus                    string          `json:"age_status,omitempty"`
	Concerns                     []string        `json:"concerns,omitempty"`
	PretreatmentRecommendations  []string        `json:"pretreatment_recommendations,omitempty"`
}

// SystemDesign is the validated output of the system_design stage. The
// design sections and specifications come back as model-shaped JSON objects.
type SystemDesign struct {
	PretreatmentDesign json.RawMessage `json:"pretreatment_design,omitempty"`
	ROConfiguration    json.RawMessage `json:"ro_configuration,omitempty"`
	PostTreatment      json.RawMessage `json:"post_treatment,omitempty"`
	Specifications     json.RawMessage `json:"system_specifications,omitempty"`
}

// ProposalResult is the validated output of the proposal_generation stage.
type ProposalResult struct {
	Proposal          json.RawMessage `json:"proposal,omitempty"`
	CostAnalysis      json.RawMessage `json:"cost_analysis,omitempty"`
	FormattedProposal string          `json:"formatted_proposal,omitempty"`
}

// StageResult is the tagged union of validated stage outputs. Exactly one
// field is set, matching the stage that produced it.
type StageResult struct {
	LabAnalysis *LabAnalysis    `json:"lab_analysis,omitempty"`
	Design      *SystemDesign   `json:"system_design,omitempty"`
	Proposal    *ProposalResult `json:"proposal_generation,omitempty"`
}

// WorkflowState tracks a single workflow run. Results are keyed by stage id;
// StageOrder records insertion order (= execution order).
type WorkflowState struct {
	Status      WorkflowStatus         `json:"status"`
	CurrentStep string                 `json:"current_step"`
	Progress    float64                `json:"progress"`
	Results     map[string]StageResult `json:"results"`
	StageOrder  []string               `json:"stage_order,omitempty"`
	Error       string                 `json:"error,omitempty"`
}
