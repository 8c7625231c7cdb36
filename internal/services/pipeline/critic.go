package pipeline

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
	"github.com/quaesitor-ai/quaesitor/internal/models"
)

// Axis weights for the overall score. They sum to 1.
const (
	weightCoherence     = 0.20
	weightAlignment     = 0.30
	weightHallucination = 0.25
	weightCompleteness  = 0.15
	weightCitation      = 0.10
)

// Critic scores answers on the reasoning tier. The overall score is always
// recomputed locally from the axis scores; the LLM's own arithmetic is never
// trusted. Regeneration triggers on the LLM flag, the overall floor, or a
// critical-axis floor, whichever fires.
type Critic struct {
	llm    interfaces.LLMService
	config *common.PipelineConfig
	logger arbor.ILogger
}

// NewCritic creates the answer validator.
func NewCritic(llm interfaces.LLMService, config *common.PipelineConfig, logger arbor.ILogger) *Critic {
	return &Critic{llm: llm, config: config, logger: logger}
}

type validationResponse struct {
	CoherenceScore         float64  `json:"coherence_score" validate:"gte=0,lte=1"`
	AlignmentScore         float64  `json:"alignment_score" validate:"gte=0,lte=1"`
	HallucinationScore     float64  `json:"hallucination_score" validate:"gte=0,lte=1"`
	CompletenessScore      float64  `json:"completeness_score" validate:"gte=0,lte=1"`
	CitationScore          float64  `json:"citation_score" validate:"gte=0,lte=1"`
	CoherenceReasoning     string   `json:"coherence_reasoning"`
	AlignmentReasoning     string   `json:"alignment_reasoning"`
	HallucinationReasoning string   `json:"hallucination_reasoning"`
	CompletenessReasoning  string   `json:"completeness_reasoning"`
	CitationReasoning      string   `json:"citation_reasoning"`
	OverallAssessment      string   `json:"overall_assessment"`
	NeedsRegeneration      bool     `json:"needs_regeneration"`
	SpecificIssues         []string `json:"specific_issues"`
}

// Validate scores one answer against its passages.
func (c *Critic) Validate(ctx context.Context, query string, answer *models.Answer, passages []models.Passage) (*models.ValidationResult, error) {
	var resp validationResponse
	req := interfaces.CompletionRequest{
		Tier:              interfaces.TierReasoning,
		SystemInstruction: criticSystemPrompt,
		Messages: []interfaces.Message{
			{Role: "user", Content: criticUserPrompt(query, answer, passages)},
		},
		OutputSchema: validationSchema(),
	}

	if err := c.llm.CompleteStructured(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	scores := models.AxisScores{
		Coherence:            resp.CoherenceScore,
		Alignment:            resp.AlignmentScore,
		HallucinationAbsence: resp.HallucinationScore,
		Completeness:         resp.CompletenessScore,
		CitationQuality:      resp.CitationScore,
	}

	result := &models.ValidationResult{
		Scores: scores,
		Feedback: models.AxisFeedback{
			Coherence:            resp.CoherenceReasoning,
			Alignment:            resp.AlignmentReasoning,
			HallucinationAbsence: resp.HallucinationReasoning,
			Completeness:         resp.CompletenessReasoning,
			CitationQuality:      resp.CitationReasoning,
			Overall:              resp.OverallAssessment,
		},
		OverallScore: OverallScore(scores),
		Issues:       resp.SpecificIssues,
	}

	result.NeedsRegeneration = resp.NeedsRegeneration ||
		result.OverallScore < c.config.MinOverallScore ||
		scores.HallucinationAbsence < c.config.MinHallucination ||
		scores.Alignment < c.config.MinAlignment

	c.logger.Debug().
		Float64("overall", result.OverallScore).
		Float64("hallucination", scores.HallucinationAbsence).
		Float64("alignment", scores.Alignment).
		Bool("needs_regeneration", result.NeedsRegeneration).
		Msg("Answer validated")

	return result, nil
}

// OverallScore computes the fixed weighted sum of the axis scores.
func OverallScore(s models.AxisScores) float64 {
	return weightCoherence*s.Coherence +
		weightAlignment*s.Alignment +
		weightHallucination*s.HallucinationAbsence +
		weightCompleteness*s.Completeness +
		weightCitation*s.CitationQuality
}
