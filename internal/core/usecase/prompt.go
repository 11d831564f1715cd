package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

const labAnalysisSystemPrompt = `You are a water treatment engineer analyzing a laboratory water report.
Return strict JSON object with keys:
parameters (object with numeric ph, tds, hardness, iron, manganese and optional silica, turbidity, chlorides, plus sample_date string),
age_status (string, "current" or "budgetary"),
concerns (array of strings),
pretreatment_recommendations (array of strings).
Use the units as reported. Omit parameters that are not present. No markdown, no extra keys.`

const systemDesignSystemPrompt = `You are a water treatment engineer designing a reverse osmosis system.
Return strict JSON object with keys:
pretreatment_design (object), ro_configuration (object), post_treatment (object), system_specifications (object).
Base the design only on the water parameters given. No markdown, no extra keys.`

const proposalSystemPrompt = `You are preparing a commercial proposal for a water treatment system.
Return strict JSON object with keys:
proposal (object with executive summary, scope, and timeline),
cost_analysis (object with equipment, installation, commissioning, and total costs).
No markdown, no extra keys.`

const answerSystemPrompt = `You are a water treatment knowledge assistant.
Answer the question only from the context below. If the context is insufficient, say so directly.`

func buildLabAnalysisPrompt(reportText string) string {
	const maxReport = 12000
	snippet := reportText
	if len(snippet) > maxReport {
		snippet = snippet[:maxReport]
	}
	return "Lab report:\n" + snippet
}

func buildSystemDesignPrompt(analysis domain.LabAnalysis) string {
	params, _ := json.Marshal(analysis.Parameters)
	var b strings.Builder
	fmt.Fprintf(&b, "Water parameters:\n%s\n", params)
	if analysis.AgeStatus != "" {
		fmt.Fprintf(&b, "Sample age status: %s\n", analysis.AgeStatus)
	}
	if len(analysis.Concerns) > 0 {
		fmt.Fprintf(&b, "Identified concerns: %s\n", strings.Join(analysis.Concerns, "; "))
	}
	if len(analysis.PretreatmentRecommendations) > 0 {
		fmt.Fprintf(&b, "Pretreatment recommendations: %s\n", strings.Join(analysis.PretreatmentRecommendations, "; "))
	}
	return b.String()
}

func buildProposalPrompt(analysis domain.LabAnalysis, design domain.SystemDesign) string {
	params, _ := json.Marshal(analysis.Parameters)
	designJSON, _ := json.Marshal(design)
	return fmt.Sprintf("Water parameters:\n%s\n\nApproved system design:\n%s\n", params, designJSON)
}

func buildAnswerPrompt(req domain.QueryRequest, chunks []domain.RetrievedChunk) string {
	var contextBuilder strings.Builder
	for idx, chunk := range chunks {
		fmt.Fprintf(&contextBuilder,
			"[%d] source=%s page=%d score=%.3f\n%s\n\n",
			idx+1,
			chunk.Metadata.Source,
			chunk.Metadata.Page,
			chunk.Score,
			chunk.Text,
		)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question:\n%s\n\n", req.Query)
	if req.UseCase != "" {
		fmt.Fprintf(&b, "Use case: %s\n\n", req.UseCase)
	}
	if req.WaterParams != nil && !req.WaterParams.IsEmpty() {
		params, _ := json.Marshal(req.WaterParams)
		fmt.Fprintf(&b, "Water parameters:\n%s\n\n", params)
	}
	fmt.Fprintf(&b, "Context:\n%s", contextBuilder.String())
	return b.String()
}
