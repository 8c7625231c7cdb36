package interfaces

import "context"

// Tier selects which provider class handles a completion. The reasoning
// tier carries classification and validation; the speed tier carries
// query expansion and answer generation.
type Tier string

const (
	TierReasoning Tier = "reasoning"
	TierSpeed     Tier = "speed"
)

// Message is a single turn in a completion request.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// CompletionRequest describes one LLM call. When OutputSchema is set the
// provider must return JSON conforming to it; the caller unmarshals and
// validates the result at the boundary.
type CompletionRequest struct {
	Tier              Tier
	SystemInstruction string
	Messages          []Message
	Temperature       float64
	MaxTokens         int
	OutputSchema      map[string]interface{}
}

// LLMService abstracts the two-tier provider layer.
type LLMService interface {
	// Complete returns free-form text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// CompleteStructured unmarshals the provider's JSON output into out
	// and validates it before returning.
	CompleteStructured(ctx context.Context, req CompletionRequest, out interface{}) error
	// Embed returns an L2-normalized embedding vector for the text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// HealthCheck verifies provider reachability.
	HealthCheck(ctx context.Context) error
	Close() error
}
