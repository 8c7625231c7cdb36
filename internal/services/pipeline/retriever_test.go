package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/models"
)

func newTestRetriever(llm *fakeLLM, index *fakeIndex) *Retriever {
	cfg := common.NewDefaultConfig()
	return NewRetriever(llm, index, &cfg.Pipeline, common.GetLogger())
}

func classified(intent models.Intent) *models.Classification {
	return &models.Classification{
		Intent:         intent,
		Confidence:     0.9,
		NeedsRetrieval: intent.NeedsRetrieval(),
	}
}

func TestRetrieve_BreadthPerIntent(t *testing.T) {
	tests := []struct {
		intent        models.Intent
		wantK         int
		wantThreshold float64
	}{
		{models.IntentSearch, 5, 0.50},
		{models.IntentSummarize, 10, 0.35},
		{models.IntentCompare, 6, 0.30},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			index := &fakeIndex{passages: samplePassages()}
			r := newTestRetriever(&fakeLLM{}, index)

			passages, err := r.Retrieve(context.Background(), "tell me about dinosaur habitats", classified(tt.intent))
			require.NoError(t, err)

			assert.Equal(t, tt.wantK, index.lastK)
			assert.Equal(t, tt.wantThreshold, index.lastMin)
			assert.Len(t, passages, 3)
		})
	}
}

func TestRetrieve_GeneralIntentRejected(t *testing.T) {
	r := newTestRetriever(&fakeLLM{}, &fakeIndex{})

	_, err := r.Retrieve(context.Background(), "hello", classified(models.IntentGeneral))
	assert.Error(t, err)
}

func TestRetrieve_ShortQueryIsExpanded(t *testing.T) {
	llm := &fakeLLM{
		expansion: expansionResponse{
			ExpandedQuery: "characteristics of the velociraptor dinosaur",
			Keywords:      []string{"velociraptor", "characteristics"},
		},
	}
	index := &fakeIndex{}
	r := newTestRetriever(llm, index)

	_, err := r.Retrieve(context.Background(), "velociraptor", classified(models.IntentSearch))
	require.NoError(t, err)

	assert.Equal(t, 1, llm.expandCalls)
	assert.Equal(t, "characteristics of the velociraptor dinosaur", index.lastQuery)
}

func TestRetrieve_LongQueryNotExpanded(t *testing.T) {
	llm := &fakeLLM{}
	index := &fakeIndex{}
	r := newTestRetriever(llm, index)

	query := "how did velociraptor hunt its prey"
	_, err := r.Retrieve(context.Background(), query, classified(models.IntentSearch))
	require.NoError(t, err)

	assert.Equal(t, 0, llm.expandCalls)
	assert.Equal(t, query, index.lastQuery)
}

func TestRetrieve_ExpansionFailureFallsBackToOriginal(t *testing.T) {
	llm := &fakeLLM{expandErr: errors.New("provider down")}
	index := &fakeIndex{}
	r := newTestRetriever(llm, index)

	_, err := r.Retrieve(context.Background(), "velociraptor", classified(models.IntentSearch))
	require.NoError(t, err)

	assert.Equal(t, "velociraptor", index.lastQuery)
}

func TestRetrieve_TooShortExpansionFallsBackToOriginal(t *testing.T) {
	llm := &fakeLLM{
		expansion: expansionResponse{ExpandedQuery: "raptor"},
	}
	index := &fakeIndex{}
	r := newTestRetriever(llm, index)

	_, err := r.Retrieve(context.Background(), "velociraptor", classified(models.IntentSearch))
	require.NoError(t, err)

	assert.Equal(t, "velociraptor", index.lastQuery)
}

func TestRetrieve_EmptyResultIsNotError(t *testing.T) {
	r := newTestRetriever(&fakeLLM{}, &fakeIndex{})

	passages, err := r.Retrieve(context.Background(), "completely unrelated topic", classified(models.IntentSearch))
	require.NoError(t, err)
	assert.Empty(t, passages)
}
