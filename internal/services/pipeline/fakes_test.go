package pipeline

import (
	"context"
	"fmt"

	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
	"github.com/quaesitor-ai/quaesitor/internal/models"
)

// fakeLLM scripts provider behavior per pipeline stage. Structured calls are
// dispatched on the output type, free-form calls feed the generator.
type fakeLLM struct {
	classification classificationResponse
	classifyErr    error
	expansion      expansionResponse
	expandErr      error
	generations    []string
	generationErrs []error
	validations    []validationResponse
	validationErrs []error

	classifyCalls   int
	expandCalls     int
	generateCalls   int
	validateCalls   int
	generatePrompts []string
}

func (f *fakeLLM) Complete(_ context.Context, req interfaces.CompletionRequest) (string, error) {
	idx := f.generateCalls
	f.generateCalls++
	if len(req.Messages) > 0 {
		f.generatePrompts = append(f.generatePrompts, req.Messages[0].Content)
	}
	if idx < len(f.generationErrs) && f.generationErrs[idx] != nil {
		return "", f.generationErrs[idx]
	}
	if idx < len(f.generations) {
		return f.generations[idx], nil
	}
	return "", fmt.Errorf("unexpected generation call %d", idx)
}

func (f *fakeLLM) CompleteStructured(_ context.Context, _ interfaces.CompletionRequest, out interface{}) error {
	switch v := out.(type) {
	case *classificationResponse:
		f.classifyCalls++
		if f.classifyErr != nil {
			return f.classifyErr
		}
		*v = f.classification
		return nil
	case *expansionResponse:
		f.expandCalls++
		if f.expandErr != nil {
			return f.expandErr
		}
		*v = f.expansion
		return nil
	case *validationResponse:
		idx := f.validateCalls
		f.validateCalls++
		if idx < len(f.validationErrs) && f.validationErrs[idx] != nil {
			return f.validationErrs[idx]
		}
		if idx < len(f.validations) {
			*v = f.validations[idx]
			return nil
		}
		return fmt.Errorf("unexpected validation call %d", idx)
	default:
		return fmt.Errorf("unexpected structured output type %T", out)
	}
}

func (f *fakeLLM) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (f *fakeLLM) HealthCheck(context.Context) error { return nil }
func (f *fakeLLM) Close() error                      { return nil }

// fakeIndex returns canned passages and records search calls.
type fakeIndex struct {
	passages    []models.Passage
	searchErr   error
	searchCalls int
	lastQuery   string
	lastK       int
	lastMin     float64
}

func (f *fakeIndex) Search(_ context.Context, query string, k int, threshold float64) ([]models.Passage, error) {
	f.searchCalls++
	f.lastQuery = query
	f.lastK = k
	f.lastMin = threshold
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.passages, nil
}

func (f *fakeIndex) Add(context.Context, []models.Chunk) error { return nil }
func (f *fakeIndex) Count() int                                { return len(f.passages) }

// passingValidation scores every axis high with no regeneration flag.
func passingValidation() validationResponse {
	return validationResponse{
		CoherenceScore:     0.9,
		AlignmentScore:     0.9,
		HallucinationScore: 0.95,
		CompletenessScore:  0.85,
		CitationScore:      0.9,
		OverallAssessment:  "solid",
	}
}

// failingValidation trips the hallucination floor and flags regeneration.
func failingValidation(issues ...string) validationResponse {
	return validationResponse{
		CoherenceScore:     0.8,
		AlignmentScore:     0.7,
		HallucinationScore: 0.4,
		CompletenessScore:  0.6,
		CitationScore:      0.5,
		NeedsRegeneration:  true,
		SpecificIssues:     issues,
	}
}

func searchClassification() classificationResponse {
	return classificationResponse{
		Intent:            "search",
		Confidence:        0.92,
		RequiresRetrieval: true,
		Reasoning:         "specific factual question",
	}
}

func samplePassages() []models.Passage {
	return []models.Passage{
		{ID: "c1", Source: "velociraptor.md", ChunkIndex: 0, Text: "Velociraptor hunted in packs.", Score: 0.88},
		{ID: "c2", Source: "velociraptor.md", ChunkIndex: 3, Text: "It lived in the late Cretaceous.", Score: 0.74},
		{ID: "c3", Source: "habitats.md", ChunkIndex: 1, Text: "Mongolia's deserts preserved many fossils.", Score: 0.61},
	}
}
