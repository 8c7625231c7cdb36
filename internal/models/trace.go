package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TraceStep is one recorded pipeline action. Steps are append-only and
// numbered in execution order starting at 1.
type TraceStep struct {
	StepNumber int                    `json:"step_number"`
	Timestamp  time.Time              `json:"timestamp"`
	Component  string                 `json:"component"`
	Action     string                 `json:"action"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// TraceMetadata aggregates counters across a query's lifetime.
type TraceMetadata struct {
	LLMCalls           int      `json:"total_llm_calls"`
	ComponentsInvolved []string `json:"components_involved"`
	DocumentsRetrieved int      `json:"documents_retrieved"`
	RegenerationCount  int      `json:"regeneration_count"`
}

// Trace is the auditable record of a single query's journey through the
// pipeline. One Trace per query; no state is shared across requests.
type Trace struct {
	SessionID string        `json:"session_id"`
	Query     string        `json:"query"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time,omitempty"`
	Steps     []TraceStep   `json:"steps"`
	Metadata  TraceMetadata `json:"metadata"`
}

// NewTrace starts a trace for the given query with a fresh session ID.
func NewTrace(query string) *Trace {
	return &Trace{
		SessionID: uuid.New().String(),
		Query:     query,
		StartTime: time.Now().UTC(),
		Steps:     []TraceStep{},
	}
}

// AddStep appends an action record and returns it for event publication.
func (t *Trace) AddStep(component, action string, details map[string]interface{}) TraceStep {
	step := TraceStep{
		StepNumber: len(t.Steps) + 1,
		Timestamp:  time.Now().UTC(),
		Component:  component,
		Action:     action,
		Details:    details,
	}
	t.Steps = append(t.Steps, step)
	t.noteComponent(component)
	return step
}

// CountLLMCall increments the LLM call counter.
func (t *Trace) CountLLMCall() { t.Metadata.LLMCalls++ }

// CountRetrieved records how many passages retrieval returned.
func (t *Trace) CountRetrieved(n int) { t.Metadata.DocumentsRetrieved = n }

// CountRegeneration increments the regeneration counter.
func (t *Trace) CountRegeneration() { t.Metadata.RegenerationCount++ }

// Finalize stamps the end time. Safe to call once at pipeline exit.
func (t *Trace) Finalize() {
	t.EndTime = time.Now().UTC()
}

// Duration returns the elapsed wall time, zero if the trace is unfinished.
func (t *Trace) Duration() time.Duration {
	if t.EndTime.IsZero() {
		return 0
	}
	return t.EndTime.Sub(t.StartTime)
}

// Summary renders a human-readable digest of the trace.
func (t *Trace) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", t.SessionID)
	fmt.Fprintf(&b, "Query: %s\n", t.Query)
	fmt.Fprintf(&b, "Duration: %s | LLM calls: %d | Retrieved: %d | Regenerations: %d\n",
		t.Duration().Round(time.Millisecond), t.Metadata.LLMCalls,
		t.Metadata.DocumentsRetrieved, t.Metadata.RegenerationCount)
	for _, s := range t.Steps {
		fmt.Fprintf(&b, "  %2d. [%s] %s\n", s.StepNumber, s.Component, s.Action)
	}
	return b.String()
}

func (t *Trace) noteComponent(component string) {
	for _, c := range t.Metadata.ComponentsInvolved {
		if c == component {
			return
		}
	}
	t.Metadata.ComponentsInvolved = append(t.Metadata.ComponentsInvolved, component)
}
