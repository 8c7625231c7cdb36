package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", errors.New("Error 429, Message: quota exceeded"), true},
		{"resource exhausted", errors.New("Status: RESOURCE_EXHAUSTED"), true},
		{"anthropic rate limit", errors.New("rate_limit_error"), true},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimitError(tt.err))
		})
	}
}

func TestExtractRetryDelay(t *testing.T) {
	err := errors.New("Error 429, Message: You exceeded your current quota. Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED")
	delay := ExtractRetryDelay(err)
	assert.InDelta(t, 45.387, delay.Seconds(), 0.01)

	assert.Equal(t, time.Duration(0), ExtractRetryDelay(errors.New("no delay here")))
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(nil))
}

func TestCalculateBackoff(t *testing.T) {
	cfg := NewDefaultRetryConfig()

	// API-provided delay gets a small buffer
	b := cfg.CalculateBackoff(0, 10*time.Second)
	assert.Equal(t, 15*time.Second, b)

	// No API delay uses InitialBackoff
	b = cfg.CalculateBackoff(0, 0)
	assert.Equal(t, cfg.InitialBackoff, b)

	// Capped at MaxBackoff
	b = cfg.CalculateBackoff(10, 0)
	assert.Equal(t, cfg.MaxBackoff, b)
}
