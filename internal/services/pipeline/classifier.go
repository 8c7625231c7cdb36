package pipeline

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
	"github.com/quaesitor-ai/quaesitor/internal/models"
)

// Classifier assigns one of the four intents to a query using the reasoning
// tier. An out-of-range response is an error here, never a silent default:
// misrouting a query is worse than failing loudly.
type Classifier struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewClassifier creates the intent classifier.
func NewClassifier(llm interfaces.LLMService, logger arbor.ILogger) *Classifier {
	return &Classifier{llm: llm, logger: logger}
}

type classificationResponse struct {
	Intent            string  `json:"intent" validate:"required,oneof=search summarize compare general"`
	Confidence        float64 `json:"confidence" validate:"gte=0,lte=1"`
	RequiresRetrieval bool    `json:"requires_retrieval"`
	Reasoning         string  `json:"reasoning"`
}

// Classify returns the query's classification.
func (c *Classifier) Classify(ctx context.Context, query string) (*models.Classification, error) {
	var resp classificationResponse
	req := interfaces.CompletionRequest{
		Tier:              interfaces.TierReasoning,
		SystemInstruction: classifierSystemPrompt,
		Messages: []interfaces.Message{
			{Role: "user", Content: fmt.Sprintf("Classify this query: %s", query)},
		},
		OutputSchema: classificationSchema(),
	}

	if err := c.llm.CompleteStructured(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	intent, err := models.ParseIntent(resp.Intent)
	if err != nil {
		return nil, err
	}

	classification := &models.Classification{
		Intent:         intent,
		Confidence:     resp.Confidence,
		NeedsRetrieval: intent.NeedsRetrieval(),
		Reasoning:      resp.Reasoning,
	}

	c.logger.Debug().
		Str("query", query).
		Str("intent", string(intent)).
		Float64("confidence", resp.Confidence).
		Msg("Query classified")

	return classification, nil
}
