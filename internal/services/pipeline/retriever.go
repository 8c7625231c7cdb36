package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
	"github.com/quaesitor-ai/quaesitor/internal/models"
)

// Retriever searches the index with intent-specific breadth. Very short
// queries are first expanded by the speed tier; an expansion failure falls
// back to the original query rather than aborting retrieval.
type Retriever struct {
	llm    interfaces.LLMService
	index  interfaces.IndexService
	config *common.PipelineConfig
	logger arbor.ILogger
}

// NewRetriever creates the retriever.
func NewRetriever(llm interfaces.LLMService, index interfaces.IndexService, config *common.PipelineConfig, logger arbor.ILogger) *Retriever {
	return &Retriever{llm: llm, index: index, config: config, logger: logger}
}

type expansionResponse struct {
	ExpandedQuery string   `json:"expanded_query" validate:"required"`
	Keywords      []string `json:"keywords"`
	Reasoning     string   `json:"reasoning"`
}

// Retrieve returns passages for a classified query. General intent never
// reaches here; callers route it past retrieval.
func (r *Retriever) Retrieve(ctx context.Context, query string, classification *models.Classification) ([]models.Passage, error) {
	breadth, ok := r.config.Breadth(string(classification.Intent))
	if !ok {
		return nil, fmt.Errorf("intent %s does not retrieve", classification.Intent)
	}

	searchQuery := r.maybeExpand(ctx, query)

	passages, err := r.index.Search(ctx, searchQuery, breadth.K, breadth.Threshold)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	r.logger.Debug().
		Str("intent", string(classification.Intent)).
		Int("k", breadth.K).
		Float64("threshold", breadth.Threshold).
		Int("passages", len(passages)).
		Msg("Retrieval complete")

	return passages, nil
}

// maybeExpand rewrites queries below the word threshold. The trigger is a
// plain word count, not an LLM judgment, so behavior is deterministic.
func (r *Retriever) maybeExpand(ctx context.Context, query string) string {
	if wordCount(query) >= r.config.ExpandBelowWords {
		return query
	}

	var resp expansionResponse
	req := interfaces.CompletionRequest{
		Tier:              interfaces.TierSpeed,
		SystemInstruction: expansionSystemPrompt,
		Messages: []interfaces.Message{
			{Role: "user", Content: fmt.Sprintf("Expand this query: %s", query)},
		},
		OutputSchema: expansionSchema(),
	}

	if err := r.llm.CompleteStructured(ctx, req, &resp); err != nil {
		r.logger.Warn().Err(err).Str("query", query).Msg("Query expansion failed, using original query")
		return query
	}

	expanded := strings.TrimSpace(resp.ExpandedQuery)
	if wordCount(expanded) < r.config.ExpandBelowWords {
		r.logger.Warn().Str("expanded", expanded).Msg("Expansion too short, using original query")
		return query
	}

	r.logger.Debug().
		Str("original", query).
		Str("expanded", expanded).
		Strs("keywords", resp.Keywords).
		Msg("Query expanded")

	return expanded
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
