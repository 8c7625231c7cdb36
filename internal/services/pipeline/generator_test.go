package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/models"
)

func TestGenerate_CitationsMappedToSources(t *testing.T) {
	llm := &fakeLLM{
		generations: []string{"Packs [Source 1]. Cretaceous [Source 2]. Deserts [Source 3]."},
	}
	g := NewGenerator(llm, common.GetLogger())

	answer, err := g.Generate(context.Background(), "q", samplePassages(), models.IntentSearch, 1, nil)
	require.NoError(t, err)

	// Source 1 and 2 share a file; duplicates collapse in order
	assert.Equal(t, []string{"velociraptor.md", "habitats.md"}, answer.Citations)
	assert.Equal(t, 1, answer.Attempt)
	assert.Equal(t, models.StrategyDirect, answer.Strategy)
}

func TestGenerate_OutOfRangeCitationDropped(t *testing.T) {
	llm := &fakeLLM{
		generations: []string{"Claim [Source 1]. Phantom [Source 9]."},
	}
	g := NewGenerator(llm, common.GetLogger())

	answer, err := g.Generate(context.Background(), "q", samplePassages(), models.IntentSearch, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"velociraptor.md"}, answer.Citations)
}

func TestGenerate_ConversationalNeverCites(t *testing.T) {
	llm := &fakeLLM{
		generations: []string{"Hello! I answer questions, see [Source 1]."},
	}
	g := NewGenerator(llm, common.GetLogger())

	answer, err := g.Generate(context.Background(), "hi", nil, models.IntentGeneral, 1, nil)
	require.NoError(t, err)

	assert.Empty(t, answer.Citations)
	assert.Equal(t, models.StrategyConversational, answer.Strategy)
}

func TestGenerate_EmptyPassagesRefusesWithoutLLM(t *testing.T) {
	llm := &fakeLLM{}
	g := NewGenerator(llm, common.GetLogger())

	answer, err := g.Generate(context.Background(), "q", nil, models.IntentSearch, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, notFoundAnswer, answer.Text)
	assert.Empty(t, answer.Citations)
	assert.Equal(t, 0, llm.generateCalls)
}

func TestGenerate_StrategyPerIntent(t *testing.T) {
	tests := []struct {
		intent models.Intent
		want   models.Strategy
	}{
		{models.IntentSearch, models.StrategyDirect},
		{models.IntentSummarize, models.StrategySynthesis},
		{models.IntentCompare, models.StrategyContrastive},
		{models.IntentGeneral, models.StrategyConversational},
	}

	for _, tt := range tests {
		llm := &fakeLLM{generations: []string{"text"}}
		g := NewGenerator(llm, common.GetLogger())

		answer, err := g.Generate(context.Background(), "q", samplePassages(), tt.intent, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, answer.Strategy, string(tt.intent))
	}
}

func TestBuildContext_NumbersSources(t *testing.T) {
	ctx := buildContext(samplePassages())
	assert.Contains(t, ctx, "[Source 1] (velociraptor.md)")
	assert.Contains(t, ctx, "[Source 2] (velociraptor.md)")
	assert.Contains(t, ctx, "[Source 3] (habitats.md)")
}

func TestExtractCitations_Dedup(t *testing.T) {
	citations := extractCitations("[Source 1] then [Source 1] again [Source 2]", samplePassages())
	assert.Equal(t, []string{"velociraptor.md"}, citations[:1])
	assert.Len(t, citations, 1) // sources 1 and 2 are the same file
}
