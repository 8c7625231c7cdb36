package models

import "fmt"

// Intent is the classified purpose of a user query. The set is closed:
// anything outside the four labels is rejected at the LLM boundary rather
// than defaulted, so a bad classification can never silently route a query.
type Intent string

const (
	// IntentSearch is a specific fact-finding question answered from documents.
	IntentSearch Intent = "search"
	// IntentSummarize asks for a synthesis across multiple documents.
	IntentSummarize Intent = "summarize"
	// IntentCompare asks for a contrastive analysis of two or more concepts.
	IntentCompare Intent = "compare"
	// IntentGeneral is conversational and needs no document retrieval.
	IntentGeneral Intent = "general"
)

// ParseIntent validates a raw intent label returned by the classifier LLM.
func ParseIntent(raw string) (Intent, error) {
	switch Intent(raw) {
	case IntentSearch, IntentSummarize, IntentCompare, IntentGeneral:
		return Intent(raw), nil
	default:
		return "", fmt.Errorf("unknown intent label %q", raw)
	}
}

// NeedsRetrieval reports whether queries with this intent require a
// document search before generation.
func (i Intent) NeedsRetrieval() bool {
	return i != IntentGeneral
}

// Classification is the classifier's verdict for a single query.
// Exactly one Classification exists per query and it is never mutated.
type Classification struct {
	Intent         Intent  `json:"intent"`
	Confidence     float64 `json:"confidence"`
	NeedsRetrieval bool    `json:"needs_retrieval"`
	Reasoning      string  `json:"reasoning"`
}
