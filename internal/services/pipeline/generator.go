package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
	"github.com/quaesitor-ai/quaesitor/internal/models"
)

const notFoundAnswer = "The available documents do not contain information to answer this question."

// citationRe matches [Source N] markers in generated text.
var citationRe = regexp.MustCompile(`\[Source (\d+)\]`)

// Generator produces answers on the speed tier, shaping them by intent
// strategy. Citations are extracted from the answer text and mapped back to
// the supplied passages; a marker pointing outside the passage list is
// dropped, so an answer can never cite a source it was not given.
type Generator struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewGenerator creates the answer generator.
func NewGenerator(llm interfaces.LLMService, logger arbor.ILogger) *Generator {
	return &Generator{llm: llm, logger: logger}
}

// Generate produces the attempt-numbered answer. issues carries the critic
// feedback from a rejected prior attempt and is empty on the first attempt.
func (g *Generator) Generate(ctx context.Context, query string, passages []models.Passage, intent models.Intent, attempt int, issues []string) (*models.Answer, error) {
	strategy := models.StrategyForIntent(intent)

	// A retrieval intent with nothing retrieved gets an explicit refusal
	// instead of a guess.
	if strategy != models.StrategyConversational && len(passages) == 0 {
		return &models.Answer{
			Text:     notFoundAnswer,
			Attempt:  attempt,
			Strategy: strategy,
		}, nil
	}

	req := interfaces.CompletionRequest{
		Tier:              interfaces.TierSpeed,
		SystemInstruction: generatorSystemPrompt(strategy),
		Messages: []interfaces.Message{
			{Role: "user", Content: generatorUserPrompt(query, passages, strategy, issues)},
		},
	}

	text, err := g.llm.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	answer := &models.Answer{
		Text:     text,
		Attempt:  attempt,
		Strategy: strategy,
	}
	if strategy != models.StrategyConversational {
		answer.Citations = extractCitations(text, passages)
	}

	g.logger.Debug().
		Str("strategy", string(strategy)).
		Int("attempt", attempt).
		Int("citations", len(answer.Citations)).
		Msg("Answer generated")

	return answer, nil
}

// extractCitations maps [Source N] markers onto passage source identifiers,
// deduplicated in first-appearance order. Markers outside 1..len(passages)
// are ignored.
func extractCitations(text string, passages []models.Passage) []string {
	matches := citationRe.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var citations []string
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(passages) {
			continue
		}
		source := passages[n-1].Source
		if !seen[source] {
			seen[source] = true
			citations = append(citations, source)
		}
	}
	return citations
}
