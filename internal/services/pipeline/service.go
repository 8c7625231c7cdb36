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

// Service orchestrates the full query pipeline: classify, retrieve,
// generate, validate, regenerate. Each query gets its own trace; nothing is
// shared across requests.
type Service struct {
	classifier *Classifier
	retriever  *Retriever
	generator  *Generator
	critic     *Critic
	events     interfaces.EventService
	config     *common.PipelineConfig
	logger     arbor.ILogger
}

// attemptRecord pairs an answer with its validation for best-attempt
// selection.
type attemptRecord struct {
	answer     *models.Answer
	validation *models.ValidationResult
}

// NewService wires the pipeline components.
func NewService(llm interfaces.LLMService, index interfaces.IndexService, events interfaces.EventService, config *common.PipelineConfig, logger arbor.ILogger) *Service {
	return &Service{
		classifier: NewClassifier(llm, logger),
		retriever:  NewRetriever(llm, index, config, logger),
		generator:  NewGenerator(llm, logger),
		critic:     NewCritic(llm, config, logger),
		events:     events,
		config:     config,
		logger:     logger,
	}
}

// ProcessQuery runs one query through the pipeline.
//
// Errors in classification, retrieval and the first generation attempt are
// fatal. Errors in a later generation or validation attempt fall back to the
// best completed attempt. When every attempt is rejected, the best-scoring
// answer is returned with Accepted=false; ties go to the earlier attempt.
func (s *Service) ProcessQuery(ctx context.Context, query string) (*models.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, stepErr(StepClassify, query, fmt.Errorf("query is empty"))
	}

	trace := models.NewTrace(query)
	defer trace.Finalize()

	// Classify
	classification, err := s.classifier.Classify(ctx, query)
	if err != nil {
		return nil, stepErr(StepClassify, query, err)
	}
	trace.CountLLMCall()
	s.addStep(trace, "classifier", "classified", map[string]interface{}{
		"intent":     string(classification.Intent),
		"confidence": classification.Confidence,
	})

	// Route
	var passages []models.Passage
	if classification.NeedsRetrieval {
		passages, err = s.retriever.Retrieve(ctx, query, classification)
		if err != nil {
			return nil, stepErr(StepRetrieve, query, err)
		}
		trace.CountLLMCall() // expansion may or may not have fired; retrieval embeds regardless
		trace.CountRetrieved(len(passages))
		s.addStep(trace, "retriever", "retrieved", map[string]interface{}{
			"passages": len(passages),
		})
	} else {
		s.addStep(trace, "orchestrator", "routed_general", nil)
	}

	result, err := s.generateAndValidate(ctx, query, classification, passages, trace)
	if err != nil {
		return nil, err
	}

	result.Intent = classification.Intent
	result.Strategy = models.StrategyForIntent(classification.Intent)
	if s.config.IncludeTraceInAPI {
		result.Trace = trace
	}

	s.addStep(trace, "orchestrator", "finished", map[string]interface{}{
		"accepted": result.Accepted,
		"attempts": result.Attempts,
	})

	return result, nil
}

// generateAndValidate runs the attempt loop. Passages are retrieved exactly
// once before this loop; regeneration reuses them.
func (s *Service) generateAndValidate(ctx context.Context, query string, classification *models.Classification, passages []models.Passage, trace *models.Trace) (*models.QueryResult, error) {
	maxAttempts := s.config.MaxAttempts
	if !classification.NeedsRetrieval && s.config.ValidateGeneralOnce {
		// Conversational answers are checked once but never rewritten
		maxAttempts = 1
	}

	var history []attemptRecord
	var accepted *attemptRecord
	var issues []string

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		answer, err := s.generator.Generate(ctx, query, passages, classification.Intent, attempt, issues)
		if err != nil {
			if attempt == 1 {
				return nil, stepErr(StepGenerate, query, err)
			}
			s.logger.Warn().Err(err).Int("attempt", attempt).Msg("Regeneration failed, keeping previous attempt")
			break
		}
		trace.CountLLMCall()
		s.addStep(trace, "generator", "generated", map[string]interface{}{
			"attempt":  attempt,
			"strategy": string(answer.Strategy),
		})

		validation, err := s.critic.Validate(ctx, query, answer, passages)
		if err != nil {
			if attempt == 1 {
				return nil, stepErr(StepValidate, query, err)
			}
			s.logger.Warn().Err(err).Int("attempt", attempt).Msg("Validation failed, keeping previous attempt")
			break
		}
		trace.CountLLMCall()
		s.addStep(trace, "critic", "validated", map[string]interface{}{
			"attempt":            attempt,
			"overall_score":      validation.OverallScore,
			"needs_regeneration": validation.NeedsRegeneration,
		})

		record := attemptRecord{answer: answer, validation: validation}
		history = append(history, record)

		if !validation.NeedsRegeneration {
			accepted = &record
			break
		}

		if attempt < maxAttempts {
			trace.CountRegeneration()
			issues = validation.Issues
			s.addStep(trace, "orchestrator", "regenerating", map[string]interface{}{
				"attempt": attempt,
			})
		}
	}

	best := accepted
	if best == nil {
		best = bestAttempt(history)
	}
	if best == nil {
		return nil, stepErr(StepGenerate, query, fmt.Errorf("no answer produced"))
	}

	return &models.QueryResult{
		Answer:     best.answer.Text,
		Citations:  best.answer.Citations,
		Validation: best.validation,
		Attempts:   len(history),
		Accepted:   accepted != nil,
	}, nil
}

// bestAttempt picks the highest overall score; a strict comparison keeps the
// earlier attempt on ties.
func bestAttempt(history []attemptRecord) *attemptRecord {
	var best *attemptRecord
	for i := range history {
		if best == nil || history[i].validation.OverallScore > best.validation.OverallScore {
			best = &history[i]
		}
	}
	return best
}

// ProcessBatch handles queries sequentially. A failing query is recorded
// and the batch continues.
func (s *Service) ProcessBatch(ctx context.Context, queries []string) (*models.BatchResult, error) {
	batch := &models.BatchResult{}
	for _, query := range queries {
		item := models.BatchItem{Query: query}
		result, err := s.ProcessQuery(ctx, query)
		if err != nil {
			item.Error = err.Error()
			batch.Failed++
		} else {
			item.Result = result
			batch.Succeeded++
		}
		batch.Items = append(batch.Items, item)
	}
	return batch, nil
}

// addStep records a trace step and publishes it as an event.
func (s *Service) addStep(trace *models.Trace, component, action string, details map[string]interface{}) {
	step := trace.AddStep(component, action, details)
	if s.events != nil {
		s.events.Publish(models.StepEvent{
			SessionID: trace.SessionID,
			Query:     trace.Query,
			Component: step.Component,
			Action:    step.Action,
			Step:      step.StepNumber,
			Timestamp: step.Timestamp,
			Details:   step.Details,
		})
	}
}

// FormatWithSources renders an answer with its consulted sources appended.
func FormatWithSources(result *models.QueryResult) string {
	if len(result.Citations) == 0 {
		return result.Answer
	}
	var b strings.Builder
	b.WriteString(result.Answer)
	b.WriteString("\n\nSources consulted:\n")
	for _, source := range result.Citations {
		fmt.Fprintf(&b, "- %s\n", source)
	}
	return b.String()
}
