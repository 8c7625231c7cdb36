package models

// Strategy selects how the generator shapes an answer.
type Strategy string

const (
	// StrategyDirect gives a concise answer with per-claim citations.
	StrategyDirect Strategy = "direct"
	// StrategySynthesis merges information across passages into a structured summary.
	StrategySynthesis Strategy = "synthesis"
	// StrategyContrastive organizes the answer as two labeled sides.
	StrategyContrastive Strategy = "contrastive"
	// StrategyConversational answers without passages and never cites.
	StrategyConversational Strategy = "conversational"
)

// StrategyForIntent maps an intent onto its answer-shaping strategy.
// The switch is exhaustive over the closed Intent set.
func StrategyForIntent(intent Intent) Strategy {
	switch intent {
	case IntentSearch:
		return StrategyDirect
	case IntentSummarize:
		return StrategySynthesis
	case IntentCompare:
		return StrategyContrastive
	case IntentGeneral:
		return StrategyConversational
	default:
		// Unreachable for parsed intents; conversational is the only
		// strategy that cannot fabricate citations.
		return StrategyConversational
	}
}

// Answer is one generation attempt. Attempts are numbered from 1 and kept in
// a history list; a regeneration creates a new Answer, never overwrites one.
type Answer struct {
	Text      string   `json:"text"`
	Citations []string `json:"citations"` // Source identifiers referenced in Text
	Attempt   int      `json:"attempt"`
	Strategy  Strategy `json:"strategy"`
}
