package models

// AxisScores holds the five independent quality scores, each in [0,1].
type AxisScores struct {
	Coherence            float64 `json:"coherence"`
	Alignment            float64 `json:"alignment"`
	HallucinationAbsence float64 `json:"hallucination_absence"`
	Completeness         float64 `json:"completeness"`
	CitationQuality      float64 `json:"citation_quality"`
}

// AxisFeedback carries the critic's reasoning text per axis so scoring
// decisions stay auditable.
type AxisFeedback struct {
	Coherence            string `json:"coherence"`
	Alignment            string `json:"alignment"`
	HallucinationAbsence string `json:"hallucination_absence"`
	Completeness         string `json:"completeness"`
	CitationQuality      string `json:"citation_quality"`
	Overall              string `json:"overall"`
}

// ValidationResult is the critic's verdict for one Answer attempt.
// OverallScore is always the fixed weighted sum of the five axis scores.
type ValidationResult struct {
	Scores            AxisScores   `json:"scores"`
	Feedback          AxisFeedback `json:"feedback"`
	OverallScore      float64      `json:"overall_score"`
	NeedsRegeneration bool         `json:"needs_regeneration"`
	Issues            []string     `json:"issues"`
}
