package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
)

// Service routes completion requests to Claude or Gemini depending on the
// requested tier. Clients are created lazily on first use; each provider has
// its own rate limiter and timeout.
type Service struct {
	llmConfig    *common.LLMConfig
	geminiConfig *common.GeminiConfig
	claudeConfig *common.ClaudeConfig
	logger       arbor.ILogger
	validate     *validator.Validate
	retry        *RetryConfig

	mu            sync.Mutex
	geminiClient  *genai.Client
	claudeClient  anthropic.Client
	claudeReady   bool
	geminiLimiter *rate.Limiter
	claudeLimiter *rate.Limiter
	geminiTimeout time.Duration
	claudeTimeout time.Duration
}

// NewService creates the two-tier LLM service.
func NewService(cfg *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		llmConfig:     &cfg.LLM,
		geminiConfig:  &cfg.Gemini,
		claudeConfig:  &cfg.Claude,
		logger:        logger,
		validate:      validator.New(),
		retry:         NewDefaultRetryConfig(),
		geminiLimiter: limiterFromInterval(cfg.Gemini.RateLimit, 4*time.Second),
		claudeLimiter: limiterFromInterval(cfg.Claude.RateLimit, time.Second),
		geminiTimeout: durationOr(cfg.Gemini.Timeout, 2*time.Minute),
		claudeTimeout: durationOr(cfg.Claude.Timeout, 2*time.Minute),
	}
}

func limiterFromInterval(interval string, fallback time.Duration) *rate.Limiter {
	d := durationOr(interval, fallback)
	return rate.NewLimiter(rate.Every(d), 1)
}

func durationOr(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}

// providerForTier resolves the configured provider for a tier.
func (s *Service) providerForTier(tier interfaces.Tier) common.LLMProvider {
	switch tier {
	case interfaces.TierReasoning:
		return s.llmConfig.ReasoningProvider
	default:
		return s.llmConfig.SpeedProvider
	}
}

// Complete returns free-form text from the tier's provider.
func (s *Service) Complete(ctx context.Context, req interfaces.CompletionRequest) (string, error) {
	provider := s.providerForTier(req.Tier)

	s.logger.Debug().
		Str("tier", string(req.Tier)).
		Str("provider", string(provider)).
		Int("message_count", len(req.Messages)).
		Msg("Generating completion")

	switch provider {
	case common.LLMProviderClaude:
		return s.completeClaude(ctx, req)
	default:
		return s.completeGemini(ctx, req)
	}
}

// CompleteStructured requests JSON conforming to req.OutputSchema, unmarshals
// it into out and validates the struct tags before returning. A response that
// fails validation is an error at this boundary, never a silent default.
func (s *Service) CompleteStructured(ctx context.Context, req interfaces.CompletionRequest, out interface{}) error {
	if req.OutputSchema == nil {
		return fmt.Errorf("structured completion requires an output schema")
	}

	provider := s.providerForTier(req.Tier)

	var raw string
	var err error
	switch provider {
	case common.LLMProviderClaude:
		// Claude has no enforced JSON mode; instruct and parse defensively.
		req.SystemInstruction = strings.TrimSpace(req.SystemInstruction +
			"\n\nRespond with a single JSON object matching the requested fields. No markdown, no commentary.")
		raw, err = s.completeClaude(ctx, req)
	default:
		raw, err = s.completeGemini(ctx, req)
	}
	if err != nil {
		return err
	}

	payload, err := extractJSON(raw)
	if err != nil {
		return fmt.Errorf("structured response from %s: %w", provider, err)
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("failed to unmarshal structured response: %w", err)
	}

	if err := s.validate.Struct(out); err != nil {
		if _, invalid := err.(*validator.InvalidValidationError); invalid {
			return nil
		}
		return fmt.Errorf("structured response failed validation: %w", err)
	}

	return nil
}

// Embed returns an L2-normalized embedding vector for the text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	client, err := s.getGeminiClient(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.geminiLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.geminiTimeout)
	defer cancel()

	outputDim := int32(s.geminiConfig.EmbedDimension)
	result, err := client.Models.EmbedContent(ctx, s.geminiConfig.EmbedModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &outputDim})
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	var embedding []float32
	if result != nil && len(result.Embeddings) > 0 {
		embedding = result.Embeddings[0].Values
	}
	if embedding == nil {
		return nil, fmt.Errorf("no embedding returned from API")
	}
	if len(embedding) != s.geminiConfig.EmbedDimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d",
			s.geminiConfig.EmbedDimension, len(embedding))
	}

	return normalize(embedding), nil
}

// normalize scales a vector to unit length so similarity reduces to a dot
// product. Zero vectors are returned unchanged.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// HealthCheck verifies both providers are configured and reachable clients
// can be constructed.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.claudeConfig.APIKey == "" {
		return fmt.Errorf("claude API key not configured")
	}
	if s.geminiConfig.APIKey == "" {
		return fmt.Errorf("gemini API key not configured")
	}
	if _, err := s.getGeminiClient(ctx); err != nil {
		return err
	}
	if _, err := s.getClaudeClient(); err != nil {
		return err
	}
	return nil
}

// Close releases provider clients.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geminiClient = nil
	s.claudeClient = anthropic.Client{}
	s.claudeReady = false
	return nil
}

func (s *Service) getGeminiClient(ctx context.Context) (*genai.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.geminiClient != nil {
		return s.geminiClient, nil
	}

	if s.geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	s.geminiClient = client
	return client, nil
}

func (s *Service) getClaudeClient() (anthropic.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claudeReady {
		return s.claudeClient, nil
	}

	if s.claudeConfig.APIKey == "" {
		return anthropic.Client{}, fmt.Errorf("anthropic API key not configured")
	}

	s.claudeClient = anthropic.NewClient(option.WithAPIKey(s.claudeConfig.APIKey))
	s.claudeReady = true
	return s.claudeClient, nil
}

func (s *Service) completeClaude(ctx context.Context, req interfaces.CompletionRequest) (string, error) {
	client, err := s.getClaudeClient()
	if err != nil {
		return "", err
	}

	if err := s.claudeLimiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.claudeTimeout)
	defer cancel()

	claudeMessages, systemText, err := convertMessagesToClaude(req.Messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages: %w", err)
	}
	if req.SystemInstruction != "" {
		systemText = req.SystemInstruction
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.claudeConfig.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.claudeConfig.Model),
		MaxTokens: int64(maxTokens),
		Messages:  claudeMessages,
	}

	temp := float32(req.Temperature)
	if temp <= 0 {
		temp = s.claudeConfig.Temperature
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(float64(temp))
	}

	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	var resp *anthropic.Message
	var apiErr error

	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		resp, apiErr = client.Messages.New(ctx, params)
		if apiErr == nil {
			break
		}

		if attempt == s.retry.MaxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * 2 * time.Second
		if IsRateLimitError(apiErr) {
			backoff = s.retry.CalculateBackoff(attempt, 0)
		}

		s.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Claude API call")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	if apiErr != nil {
		return "", fmt.Errorf("Claude API call failed after %d retries: %w", s.retry.MaxRetries, apiErr)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from Claude API")
	}

	return text.String(), nil
}

// buildGeminiConfig assembles generation settings, falling back to the
// configured defaults for temperature and token budget.
func (s *Service) buildGeminiConfig(req interfaces.CompletionRequest, systemText string) (*genai.GenerateContentConfig, error) {
	temp := float32(req.Temperature)
	if temp <= 0 {
		temp = s.geminiConfig.Temperature
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.geminiConfig.MaxTokens
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temp),
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}

	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	// When a schema is provided, Gemini enforces JSON output matching it
	if len(req.OutputSchema) > 0 {
		genaiSchema, err := convertToGenaiSchema(req.OutputSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to convert output schema: %w", err)
		}
		if genaiSchema != nil {
			config.ResponseMIMEType = "application/json"
			config.ResponseSchema = genaiSchema
		}
	}

	return config, nil
}

func (s *Service) completeGemini(ctx context.Context, req interfaces.CompletionRequest) (string, error) {
	client, err := s.getGeminiClient(ctx)
	if err != nil {
		return "", err
	}

	if err := s.geminiLimiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.geminiTimeout)
	defer cancel()

	geminiContents, systemText, err := convertMessagesToGemini(req.Messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages: %w", err)
	}
	if req.SystemInstruction != "" {
		systemText = req.SystemInstruction
	}

	config, err := s.buildGeminiConfig(req, systemText)
	if err != nil {
		return "", err
	}

	var resp *genai.GenerateContentResponse
	var apiErr error

	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		resp, apiErr = client.Models.GenerateContent(ctx, s.geminiConfig.Model, geminiContents, config)
		if apiErr == nil {
			break
		}

		if attempt == s.retry.MaxRetries {
			break
		}

		var backoff time.Duration
		if IsRateLimitError(apiErr) {
			apiDelay := ExtractRetryDelay(apiErr)
			backoff = s.retry.CalculateBackoff(attempt, apiDelay)
		} else {
			backoff = time.Duration(attempt+1) * 2 * time.Second
		}

		s.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Gemini API call")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	if apiErr != nil {
		return "", fmt.Errorf("Gemini API call failed after %d retries: %w", s.retry.MaxRetries, apiErr)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini API")
	}

	responseText := resp.Text()
	if responseText == "" {
		return "", fmt.Errorf("empty text in Gemini response")
	}

	return responseText, nil
}
