package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/interfaces"
	"github.com/quaesitor-ai/quaesitor/internal/models"
)

type fakeLLM struct {
	healthErr error
}

func (f *fakeLLM) Complete(context.Context, interfaces.CompletionRequest) (string, error) {
	return "", nil
}

func (f *fakeLLM) CompleteStructured(context.Context, interfaces.CompletionRequest, interface{}) error {
	return nil
}

func (f *fakeLLM) Embed(context.Context, string) ([]float32, error) { return nil, nil }
func (f *fakeLLM) HealthCheck(context.Context) error                { return f.healthErr }
func (f *fakeLLM) Close() error                                     { return nil }

type fakeIndex struct {
	count int
}

func (f *fakeIndex) Search(context.Context, string, int, float64) ([]models.Passage, error) {
	return nil, nil
}

func (f *fakeIndex) Add(context.Context, []models.Chunk) error { return nil }
func (f *fakeIndex) Count() int                                { return f.count }

func TestHandleStatus_Healthy(t *testing.T) {
	h := NewStatusHandler(&fakeLLM{}, &fakeIndex{count: 42}, common.NewDefaultConfig(), common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	status := body["status"].(map[string]interface{})
	assert.Equal(t, "ok", status["llm"])
	assert.Equal(t, float64(42), status["index_size"])
}

func TestHandleStatus_LLMUnavailable(t *testing.T) {
	h := NewStatusHandler(&fakeLLM{healthErr: errors.New("no key")}, &fakeIndex{}, common.NewDefaultConfig(), common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	status := body["status"].(map[string]interface{})
	assert.Equal(t, "unavailable", status["llm"])
}

func TestHandleHealth(t *testing.T) {
	h := NewStatusHandler(&fakeLLM{}, &fakeIndex{}, common.NewDefaultConfig(), common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
}
