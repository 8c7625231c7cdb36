package pipeline

import (
	"fmt"
	"strings"

	"github.com/quaesitor-ai/quaesitor/internal/models"
)

const classifierSystemPrompt = `You classify user queries for a document question-answering system.

Intents:
- "search": a specific fact-finding question answerable from documents.
- "summarize": a request to synthesize information across documents.
- "compare": a request to contrast two or more concepts or entities.
- "general": greetings, meta-questions or small talk needing no documents.

When a query mixes intents, prefer compare over summarize over search.
Set requires_retrieval to false only for general queries.`

const expansionSystemPrompt = `You reformulate terse search queries for semantic retrieval.

Expand the query into a fuller phrasing of at least three words that
preserves its meaning, and list the key terms. Do not invent topics the
query does not mention.`

const criticSystemPrompt = `You are a strict reviewer of answers produced from retrieved passages.

Score each axis in [0,1]:
- coherence: the answer is internally consistent and well structured.
- alignment: the answer addresses the question that was actually asked.
- hallucination: 1.0 when every claim is backed by the passages; lower it
  for any unsupported statement.
- completeness: the answer uses the relevant information available.
- citation: sources are cited where claims need support, and the cited
  sources exist in the passages.

Set needs_regeneration true when the answer should be rewritten, and list
the concrete problems in specific_issues.`

// generatorSystemPrompt returns the strategy-specific instruction.
func generatorSystemPrompt(strategy models.Strategy) string {
	switch strategy {
	case models.StrategySynthesis:
		return `You write structured summaries from retrieved passages.
Organize the main themes, merge overlapping information, and cite the
passages you draw from as [Source N]. Use only the provided passages.`
	case models.StrategyContrastive:
		return `You write comparisons from retrieved passages.
Present each side with its characteristics, then the key similarities and
differences. Cite passages as [Source N]. Use only the provided passages.`
	case models.StrategyConversational:
		return `You are the assistant of a document question-answering system.
Answer briefly and naturally. If asked what you can do, explain that you
answer questions about the loaded document collection.`
	default:
		return `You answer specific questions from retrieved passages.
Be concise and cite the passage supporting each claim as [Source N].
If the passages do not contain the answer, say so plainly. Use only the
provided passages, never outside knowledge.`
	}
}

// buildContext renders passages as numbered source blocks. The numbering is
// 1-based and matches the [Source N] citation format.
func buildContext(passages []models.Passage) string {
	var b strings.Builder
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Source %d] (%s)\n%s", i+1, p.Source, p.Text)
	}
	return b.String()
}

// generatorUserPrompt assembles the user turn for a generation attempt.
// Regeneration attempts carry the critic's issues so the rewrite addresses
// them.
func generatorUserPrompt(query string, passages []models.Passage, strategy models.Strategy, issues []string) string {
	var b strings.Builder

	if strategy != models.StrategyConversational && len(passages) > 0 {
		b.WriteString("Passages:\n\n")
		b.WriteString(buildContext(passages))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Question: %s", query)

	if len(issues) > 0 {
		b.WriteString("\n\nA previous answer was rejected for these problems; avoid them:\n")
		for _, issue := range issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}

	return b.String()
}

// criticUserPrompt assembles the validation request.
func criticUserPrompt(query string, answer *models.Answer, passages []models.Passage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", query)
	fmt.Fprintf(&b, "Answer to review:\n%s\n\n", answer.Text)
	if len(passages) > 0 {
		b.WriteString("Passages the answer must be grounded in:\n\n")
		b.WriteString(buildContext(passages))
	} else {
		b.WriteString("No passages were retrieved; the answer must not assert document facts.")
	}
	return b.String()
}
